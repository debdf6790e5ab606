// Package rtime provides the integer-nanosecond time type and closed-interval
// algebra shared by every model-extraction component.
package rtime

import "fmt"

// Time is a non-negative count of nanoseconds. It supports addition,
// guarded subtraction, integer/float division and multiplication, and
// truncation/rounding to a resolution.
type Time uint64

// Zero is the additive identity.
const Zero Time = 0

// FromNs builds a Time from a raw nanosecond count.
func FromNs(ns uint64) Time { return Time(ns) }

// FromUs builds a Time from a microsecond count.
func FromUs(us float64) Time { return Time(us * 1e3) }

// FromMs builds a Time from a millisecond count.
func FromMs(ms float64) Time { return Time(ms * 1e6) }

// FromSec builds a Time from a second count.
func FromSec(s float64) Time { return Time(s * 1e9) }

// ToNs returns the raw nanosecond count.
func (t Time) ToNs() uint64 { return uint64(t) }

// ToUs returns the time in microseconds.
func (t Time) ToUs() float64 { return float64(t) / 1e3 }

// ToMs returns the time in milliseconds.
func (t Time) ToMs() float64 { return float64(t) / 1e6 }

// ToSec returns the time in seconds.
func (t Time) ToSec() float64 { return float64(t) / 1e9 }

// IsZero reports whether t is the zero duration.
func (t Time) IsZero() bool { return t == 0 }

// Add returns t + u.
func (t Time) Add(u Time) Time { return t + u }

// Sub returns t - u. The caller must guarantee t >= u; subtraction that
// would underflow a uint64 is guarded by a panic rather than wrapping,
// since a wrapped result would silently corrupt every downstream model.
func (t Time) Sub(u Time) Time {
	if u > t {
		panic(fmt.Sprintf("rtime: Sub underflow: %d - %d", t, u))
	}
	return t - u
}

// SatSub returns t - u, or 0 if u > t. Used where the caller cannot
// guarantee ordering (e.g. clamping a computed lower bound at zero).
func (t Time) SatSub(u Time) Time {
	if u > t {
		return 0
	}
	return t - u
}

// DivInt returns t / n for an unsigned scalar n.
func (t Time) DivInt(n uint64) Time {
	if n == 0 {
		panic("rtime: DivInt by zero")
	}
	return t / Time(n)
}

// DivFloat returns t / f, truncated back to an integer nanosecond count.
func (t Time) DivFloat(f float64) Time {
	return Time(float64(t) / f)
}

// MulInt returns t * n.
func (t Time) MulInt(n uint64) Time { return t * Time(n) }

// MulFloat returns t * f, truncated back to an integer nanosecond count.
func (t Time) MulFloat(f float64) Time { return Time(float64(t) * f) }

// Mod returns t % resolution.
func (t Time) Mod(resolution Time) Time { return t % resolution }

// Truncate floors t to the nearest multiple of resolution at or below t.
func (t Time) Truncate(resolution Time) Time {
	return t - (t % resolution)
}

// Round rounds t to the nearest multiple of resolution, half-up.
func (t Time) Round(resolution Time) Time {
	halfway := resolution / 2
	whole := t / resolution
	if t%resolution >= halfway {
		whole++
	}
	return whole * resolution
}

// Min returns the smaller of t and u.
func (t Time) Min(u Time) Time {
	if u < t {
		return u
	}
	return t
}

// Max returns the larger of t and u.
func (t Time) Max(u Time) Time {
	if u > t {
		return u
	}
	return t
}

func (t Time) String() string { return fmt.Sprintf("%dns", uint64(t)) }

// MarshalYAML serializes Time as its raw nanosecond integer.
func (t Time) MarshalYAML() (interface{}, error) {
	return uint64(t), nil
}

// UnmarshalYAML parses Time from a raw nanosecond integer.
func (t *Time) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var ns uint64
	if err := unmarshal(&ns); err != nil {
		return err
	}
	*t = Time(ns)
	return nil
}
