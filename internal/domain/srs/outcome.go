package srs

import (
	"fmt"

	"github.com/revisehq/revise-api/internal/domain"
)

// Quality score bounds and the values derived signals normalize to.
const (
	MinQuality = 0.0
	MaxQuality = 5.0

	// qualityIncorrect is the score for an incorrect answer: below the
	// pass threshold so the review counts as a failure.
	qualityIncorrect = 2.0

	// qualityCorrectSlow is the score for a correct answer that took
	// noticeably long: a bare pass.
	qualityCorrectSlow = 3.0

	// qualityCorrectFast is the score for a prompt correct answer.
	qualityCorrectFast = 5.0
)

// NormalizeOutcome converts a raw review signal into a canonical quality
// score in [0,5]. It accepts either a direct self-rating or a derived signal
// (correctness plus response-time bucket):
//
//   - self-rating r in [0,5] → r
//   - correct=false          → 2 (failing, regardless of latency)
//   - correct=true, fast     → 5
//   - correct=true, slow     → 3
//
// Exactly one of the two forms must be populated. Malformed signals return
// an error wrapping domain.ErrInvalidRawOutcome.
func NormalizeOutcome(raw domain.RawOutcome) (float64, error) {
	hasRating := raw.SelfRating != nil
	hasDerived := raw.Correct != nil

	switch {
	case hasRating && hasDerived:
		return 0, fmt.Errorf("%w: self-rating and correctness are mutually exclusive",
			domain.ErrInvalidRawOutcome)

	case hasRating:
		rating := *raw.SelfRating
		if rating < MinQuality || rating > MaxQuality {
			return 0, fmt.Errorf("%w: self-rating %.2f outside [0,5]",
				domain.ErrInvalidRawOutcome, rating)
		}
		return rating, nil

	case hasDerived:
		if !*raw.Correct {
			return qualityIncorrect, nil
		}

		if raw.Latency == nil {
			return 0, fmt.Errorf("%w: correct answer requires a latency bucket",
				domain.ErrInvalidRawOutcome)
		}

		switch *raw.Latency {
		case domain.LatencyFast:
			return qualityCorrectFast, nil
		case domain.LatencySlow:
			return qualityCorrectSlow, nil
		default:
			return 0, fmt.Errorf("%w: unknown latency bucket %q",
				domain.ErrInvalidRawOutcome, *raw.Latency)
		}

	default:
		return 0, fmt.Errorf("%w: neither self-rating nor correctness supplied",
			domain.ErrInvalidRawOutcome)
	}
}
