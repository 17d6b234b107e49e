package srs

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// Core limits
	MinEaseFactor float64
	PassThreshold float64

	// Interval policy for qualifying reviews
	FirstInterval  int // Interval after the first qualifying review
	SecondInterval int // Interval after the second consecutive qualifying review

	// Interval policy for failing reviews
	FailureInterval int

	// MaxIntervalDays caps the geometric interval growth on long pass
	// streaks. Without a cap the interval, and with it the next due date,
	// eventually exceeds what a time.Time can represent.
	MaxIntervalDays int

	// Forgetting-curve half-life adaptation
	HalfLifeGrowth  float64 // Multiplicative nudge on a qualifying review
	HalfLifeShrink  float64 // Multiplicative nudge on a failing review
	MinHalfLifeDays float64
	MaxHalfLifeDays float64

	// RetentionFloor is the minimum retention probability the decay model
	// reports. Downstream ranking divides by retention, so it never
	// reaches zero.
	RetentionFloor float64
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero-valued fields keep their defaults.
type ParamsConfig struct {
	MinEaseFactor float64
	PassThreshold float64

	FirstInterval   int
	SecondInterval  int
	FailureInterval int
	MaxIntervalDays int

	HalfLifeGrowth  float64
	HalfLifeShrink  float64
	MinHalfLifeDays float64
	MaxHalfLifeDays float64

	RetentionFloor float64
}

// NewDefaultParams creates a new Params instance with default values.
// The half-life adaptation rates are reasonable defaults, not canonical
// constants; tune them through ParamsConfig if review data suggests
// otherwise.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: 1.3,
		PassThreshold: 3.0,

		FirstInterval:   1,
		SecondInterval:  6,
		FailureInterval: 1,
		MaxIntervalDays: 36500,

		HalfLifeGrowth:  1.05,
		HalfLifeShrink:  0.85,
		MinHalfLifeDays: 1.0,
		MaxHalfLifeDays: 365.0,

		RetentionFloor: 0.01,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.PassThreshold > 0 {
		params.PassThreshold = config.PassThreshold
	}

	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.FailureInterval > 0 {
		params.FailureInterval = config.FailureInterval
	}
	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}

	if config.HalfLifeGrowth > 0 {
		params.HalfLifeGrowth = config.HalfLifeGrowth
	}
	if config.HalfLifeShrink > 0 {
		params.HalfLifeShrink = config.HalfLifeShrink
	}
	if config.MinHalfLifeDays > 0 {
		params.MinHalfLifeDays = config.MinHalfLifeDays
	}
	if config.MaxHalfLifeDays > 0 {
		params.MaxHalfLifeDays = config.MaxHalfLifeDays
	}

	if config.RetentionFloor > 0 {
		params.RetentionFloor = config.RetentionFloor
	}

	return params
}
