package livepoll_errors

import (
	"errors"
)

// Common errors
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrAlreadyVoted     = errors.New("already voted")
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrPartialCommit marks a vote that is durable in the ledger but whose
	// tally increment failed. The vote still counts; the reconciler repairs
	// the displayed counter from the ledger.
	ErrPartialCommit = errors.New("ledger entry recorded without tally update")
)
