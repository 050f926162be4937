package services

import "errors"

// Business-rule errors shared across services and the HTTP mapping.
// These are expected outcomes, returned as typed results and shown to
// the end user; storage failures are wrapped separately and surface as
// a generic retryable failure.
var (
	// Lookups
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrParticipantNotFound = errors.New("participant registration not found")
	ErrPrizeNotFound       = errors.New("prize not found")
	ErrUserNotFound        = errors.New("user not found")

	// Entry ledger
	ErrRegistrationClosed = errors.New("tournament registration is closed")
	ErrTournamentFull     = errors.New("tournament is full")
	ErrAlreadyJoined      = errors.New("user is already registered for this tournament")
	ErrInsufficientPoints = errors.New("insufficient points for the entry fee")

	// Score accumulator
	ErrTournamentNotActive = errors.New("tournament is not in progress")

	// Validation of tournament definitions
	ErrTournamentNameRequired     = errors.New("tournament name is required")
	ErrTournamentInvalidDateRange = errors.New("tournament end time must be after start time")
	ErrTournamentInvalidEntryFee  = errors.New("tournament entry fee must be non-negative")
	ErrTournamentInvalidCapacity  = errors.New("tournament player limits must satisfy 0 < min <= max")
	ErrTournamentNotCancellable   = errors.New("only registering tournaments can be cancelled")
)

// Log categories used platform-wide. Attached to records as a
// "category" attribute so the platform's log pipeline can route them.
const (
	LogCategoryGame    = "GAME"
	LogCategoryPayment = "PAYMENT"
	LogCategoryPrize   = "PRIZE"
	LogCategorySystem  = "SYSTEM"
	LogCategoryAPI     = "API"
)
