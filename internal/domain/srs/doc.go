// Package srs implements the spaced-repetition scheduling engine: an SM-2
// derived state transition over per-item scheduling state, an exponential
// forgetting-curve decay model with a slowly adapting half-life, and the
// collection-level due-set selection and refresh ranking built on them.
//
// Everything in this package is a pure function over explicitly passed
// state. Persistence, locking, and transport are the surrounding
// application's concern.
package srs
