package revision

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/domain/srs"
)

// Status is the lifecycle state of a revision session.
type Status string

// Session lifecycle states. Completed and Abandoned are terminal.
const (
	StatusCreated    Status = "created"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

// Common session errors
var (
	// ErrUnknownItem is returned when an outcome references an item that is
	// not in the session's queue.
	ErrUnknownItem = errors.New("item not in session queue")

	// ErrSessionFinished is returned when an operation is attempted on a
	// session that has already completed or been abandoned.
	ErrSessionFinished = errors.New("session already finished")

	// ErrNilService is returned when a session is constructed without a
	// scheduling service.
	ErrNilService = errors.New("scheduling service cannot be nil")
)

// SubmitResult carries everything a single applied outcome produced: the
// canonical quality, the successor scheduling state, the audit event, and
// whether the item was re-enqueued for an in-session re-drill.
type SubmitResult struct {
	Quality   float64
	State     *domain.SchedulingState
	Event     *domain.ReviewEvent
	Requeued  bool
	Remaining int
}

// Stats summarizes a finished session.
type Stats struct {
	SessionID     uuid.UUID     `json:"session_id"`
	ItemsReviewed int           `json:"items_reviewed"` // Outcomes applied, re-drills included
	UniqueItems   int           `json:"unique_items"`   // Distinct items the session started with
	Passes        int           `json:"passes"`
	Failures      int           `json:"failures"`
	PassRate      float64       `json:"pass_rate"` // 0 when nothing was reviewed
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    time.Time     `json:"finished_at"`
	Elapsed       time.Duration `json:"elapsed"`
}

// Session coordinates one bounded review sitting: it snapshots a due queue at
// start, applies outcomes as they arrive, re-drills failed items before the
// session ends, and finalizes aggregate statistics.
//
// The in-session queue is deliberately a separate state layer from the
// persisted scheduling state: a failed item is re-enqueued so the learner
// sees it again now, while its persisted interval independently resets to
// the short cycle. A Session is owned by a single learner sitting; callers
// must serialize SubmitOutcome calls per session.
type Session struct {
	id         uuid.UUID
	status     Status
	queue      []srs.ScheduledItem
	startedAt  time.Time
	finishedAt time.Time

	reviewed int
	passes   int
	failures int
	unique   int

	srsService srs.Service
	params     *srs.Params
}

// NewSession builds a session over the due subset of the candidate pool at
// the given instant, truncated to sessionSize (0 means unbounded). A pool
// with nothing due yields a usable session with an empty queue; deciding
// whether that is an error is the caller's business.
//
// The params decide the pass threshold for in-session re-drills and should
// match the ones the scheduling service was built with; nil uses defaults.
func NewSession(
	srsService srs.Service,
	params *srs.Params,
	candidatePool []srs.ScheduledItem,
	now time.Time,
	sessionSize int,
) (*Session, error) {
	if srsService == nil {
		return nil, ErrNilService
	}
	if params == nil {
		params = srs.NewDefaultParams()
	}

	queue, err := srs.SelectDue(candidatePool, now, sessionSize)
	if err != nil {
		return nil, fmt.Errorf("failed to select due items: %w", err)
	}

	return &Session{
		id:         uuid.New(),
		status:     StatusCreated,
		queue:      queue,
		startedAt:  now,
		unique:     len(queue),
		srsService: srsService,
		params:     params,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Status returns the session's lifecycle state.
func (s *Session) Status() Status { return s.status }

// Remaining returns how many queue entries are still waiting, re-drills
// included.
func (s *Session) Remaining() int { return len(s.queue) }

// Next returns the item at the front of the queue without removing it, or
// false when the queue is empty.
func (s *Session) Next() (srs.ScheduledItem, bool) {
	if len(s.queue) == 0 {
		return srs.ScheduledItem{}, false
	}
	return s.queue[0], true
}

// SubmitOutcome normalizes a raw review signal, applies it to the item's
// scheduling state, and records a review event. A failing quality re-enqueues
// the item at the back of the session queue so the learner drills it again
// before finishing; the persisted reset to the short-cycle interval happens
// independently through the returned state.
//
// Referencing an item that is not in the queue returns ErrUnknownItem.
// Submitting to a finished session returns ErrSessionFinished.
func (s *Session) SubmitOutcome(
	itemID uuid.UUID,
	raw domain.RawOutcome,
	now time.Time,
) (*SubmitResult, error) {
	if s.status == StatusCompleted || s.status == StatusAbandoned {
		return nil, ErrSessionFinished
	}

	idx := -1
	for i, entry := range s.queue {
		if entry.Item.ID == itemID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	entry := s.queue[idx]

	quality, err := srs.NormalizeOutcome(raw)
	if err != nil {
		return nil, err
	}

	newState, err := s.srsService.ApplyReview(entry.State, quality, now)
	if err != nil {
		return nil, err
	}

	event, err := domain.NewReviewEvent(itemID, now, raw, quality, newState)
	if err != nil {
		return nil, err
	}

	s.status = StatusInProgress
	s.queue = append(s.queue[:idx], s.queue[idx+1:]...)

	s.reviewed++
	passed := quality >= s.params.PassThreshold
	requeued := false
	if passed {
		s.passes++
	} else {
		s.failures++
		s.queue = append(s.queue, srs.ScheduledItem{Item: entry.Item, State: newState})
		requeued = true
	}

	return &SubmitResult{
		Quality:   quality,
		State:     newState,
		Event:     event,
		Requeued:  requeued,
		Remaining: len(s.queue),
	}, nil
}

// Complete transitions the session to its terminal Completed state and
// returns the aggregate statistics. Completing an already finished session
// returns ErrSessionFinished.
func (s *Session) Complete(now time.Time) (*Stats, error) {
	if s.status == StatusCompleted || s.status == StatusAbandoned {
		return nil, ErrSessionFinished
	}

	s.status = StatusCompleted
	s.finishedAt = now

	return s.stats(), nil
}

// Abandon transitions the session to its terminal Abandoned state. The
// engine does not enforce a wall-clock timeout itself; the owning caller
// decides when a session is stale.
func (s *Session) Abandon(now time.Time) error {
	if s.status == StatusCompleted || s.status == StatusAbandoned {
		return ErrSessionFinished
	}

	s.status = StatusAbandoned
	s.finishedAt = now
	return nil
}

func (s *Session) stats() *Stats {
	passRate := 0.0
	if s.reviewed > 0 {
		passRate = float64(s.passes) / float64(s.reviewed)
	}

	return &Stats{
		SessionID:     s.id,
		ItemsReviewed: s.reviewed,
		UniqueItems:   s.unique,
		Passes:        s.passes,
		Failures:      s.failures,
		PassRate:      passRate,
		StartedAt:     s.startedAt,
		FinishedAt:    s.finishedAt,
		Elapsed:       s.finishedAt.Sub(s.startedAt),
	}
}
