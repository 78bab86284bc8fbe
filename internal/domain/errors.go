package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrSelfReferral      = errors.New("player cannot refer themselves")
	ErrDuplicateReferral = errors.New("referral already exists")
	ErrUnitLimitReached  = errors.New("all field slots are occupied")
	ErrInsufficientFunds = errors.New("not enough coins")
	ErrInvalidPair       = errors.New("pair must reference two distinct active dogs of the player")
	ErrLevelMismatch     = errors.New("dogs in a pair must have the same level")
	ErrBonusNotReady     = errors.New("offline bonus is not ready yet")
	ErrNoBonusSelected   = errors.New("no bonus selected")
	ErrNoPairs           = errors.New("dog pairs required")
)

// StorageError marks a failure of the backing store. It is transient from
// the caller's point of view: the operation had no effect and may be retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsTransient reports whether err is (or wraps) a StorageError.
func IsTransient(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// ruleViolations are the errors a request causes by breaking a game rule.
var ruleViolations = []error{
	ErrSelfReferral,
	ErrDuplicateReferral,
	ErrUnitLimitReached,
	ErrInsufficientFunds,
	ErrInvalidPair,
	ErrLevelMismatch,
	ErrBonusNotReady,
	ErrNoBonusSelected,
	ErrNoPairs,
}

// RuleViolation returns the game rule err broke, or nil when err is not a
// rule violation.
func RuleViolation(err error) error {
	for _, target := range ruleViolations {
		if errors.Is(err, target) {
			return target
		}
	}
	return nil
}

// PublicMessage is the text of err that is safe to show to a player.
// Storage and unexpected failures are reduced to a generic message.
func PublicMessage(err error) string {
	switch {
	case errors.Is(err, ErrPlayerNotFound):
		return ErrPlayerNotFound.Error()
	case IsTransient(err):
		return "storage unavailable"
	}
	if rule := RuleViolation(err); rule != nil {
		return rule.Error()
	}
	return "internal error"
}
