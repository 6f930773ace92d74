package domain

import (
	"errors"

	"github.com/aretw0/tela/pkg/acceptance"
)

// ErrTooManyMarks is returned when a translation exceeds the mark budget.
// It is the same value as acceptance.ErrTooManyMarks.
var ErrTooManyMarks = acceptance.ErrTooManyMarks

// ErrInvariant is returned when an internal bookkeeping assumption breaks.
var ErrInvariant = errors.New("internal invariant violated")

// ErrMalformedFormula is returned when the builder meets an operator it
// cannot translate, usually a formula that was not normalized.
var ErrMalformedFormula = errors.New("malformed formula")

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrCacheMiss is returned by cache adapters when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// ErrUnsupportedFormat is returned for a request with an unknown format.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrUnsupportedPhase is returned for a request with an unknown phase.
var ErrUnsupportedPhase = errors.New("unsupported phase")
