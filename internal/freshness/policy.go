package freshness

import (
	"errors"
	"time"
)

const (
	negativeAllowedDelayMessageConstant = "allowed delay days must not be negative"
)

// ErrNegativeAllowedDelay indicates a policy with a negative grace period.
var ErrNegativeAllowedDelay = errors.New(negativeAllowedDelayMessageConstant)

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Policy relaxes the freshness check. A nil AllowedDelayDays disables the grace period.
type Policy struct {
	Strict           bool
	AllowedDelayDays *int
}

// AllowedDelay returns a pointer suitable for Policy.AllowedDelayDays.
func AllowedDelay(days int) *int {
	return &days
}

// Validate rejects negative grace periods.
func (policy Policy) Validate() error {
	if policy.AllowedDelayDays != nil && *policy.AllowedDelayDays < 0 {
		return ErrNegativeAllowedDelay
	}
	return nil
}
