// Package daykey converts instants into user-local calendar days and does
// day arithmetic on them.
package daykey

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the wire and storage format of a DayKey.
const Layout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

var ErrInvalidArgument = errors.New("invalid argument")

// DayKey is a calendar date (YYYY-MM-DD) in the user's local time zone,
// stripped of time of day. Keys order correctly as plain strings.
type DayKey string

// FromTime returns the local wall-clock day of t in loc. A nil loc means UTC.
func FromTime(t time.Time, loc *time.Location) DayKey {
	if loc == nil {
		loc = time.UTC
	}
	return DayKey(t.In(loc).Format(Layout))
}

// FromDate takes the year, month and day of t as they are, ignoring its zone.
// Used for values scanned from DATE columns.
func FromDate(t time.Time) DayKey {
	return DayKey(fmt.Sprintf("%04d-%02d-%02d", t.Year(), t.Month(), t.Day()))
}

func Parse(s string) (DayKey, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return "", fmt.Errorf("%w: malformed day %q: %v", ErrInvalidArgument, s, err)
	}
	// time.Parse accepts nothing looser than the layout, but normalise anyway
	if t.Format(Layout) != s {
		return "", fmt.Errorf("%w: malformed day %q", ErrInvalidArgument, s)
	}
	return DayKey(s), nil
}

// MustParse is Parse for literals; it panics on malformed input.
func MustParse(s string) DayKey {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

func (k DayKey) String() string {
	return string(k)
}

func (k DayKey) Valid() bool {
	_, err := Parse(string(k))
	return err == nil
}

// utcMidnight anchors the key at midnight UTC. UTC days are always exactly
// 24h long, which keeps Difference exact across DST changes.
func (k DayKey) utcMidnight() (time.Time, error) {
	t, err := time.Parse(Layout, string(k))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: malformed day %q", ErrInvalidArgument, string(k))
	}
	return t, nil
}

// Time returns local midnight of the day in loc.
func (k DayKey) Time(loc *time.Location) (time.Time, error) {
	t, err := k.utcMidnight()
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// AddDays returns the key n calendar days later (earlier for negative n).
func (k DayKey) AddDays(n int) (DayKey, error) {
	t, err := k.utcMidnight()
	if err != nil {
		return "", err
	}
	return DayKey(t.AddDate(0, 0, n).Format(Layout)), nil
}

func (k DayKey) Before(other DayKey) bool {
	return k < other
}

func (k DayKey) After(other DayKey) bool {
	return k > other
}

// Difference returns the signed number of calendar days a - b, positive when
// a is the later day.
func Difference(a, b DayKey) (int, error) {
	ta, err := a.utcMidnight()
	if err != nil {
		return 0, err
	}
	tb, err := b.utcMidnight()
	if err != nil {
		return 0, err
	}
	// Unix seconds rather than Sub: a Duration saturates after ~292 years.
	return int((ta.Unix() - tb.Unix()) / secondsPerDay), nil
}

// LoadLocation resolves an IANA zone name, falling back to fallback (or UTC)
// when the name is empty or unknown.
func LoadLocation(name string, fallback *time.Location) *time.Location {
	if fallback == nil {
		fallback = time.UTC
	}
	if name == "" {
		return fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return loc
}
