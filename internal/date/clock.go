package date

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"
)

const minutesPerDay = 24 * 60

// Clock is a wall-clock time of day with minute precision.
type Clock struct {
	minutes int
}

// NewClock creates a Clock from hour and minute.
func NewClock(hour, minute int) Clock {
	return Clock{minutes: hour*60 + minute} //nolint:mnd // minutes per hour
}

// ParseClock parses "HH:MM". Database drivers that return "HH:MM:SS" are
// accepted as well; seconds are dropped.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Clock{}, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return Clock{}, fmt.Errorf("invalid time %q: hour out of range", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return Clock{}, fmt.Errorf("invalid time %q: minute out of range", s)
	}
	return NewClock(h, m), nil
}

// Hour returns the hour component.
func (c Clock) Hour() int { return c.minutes / 60 } //nolint:mnd // minutes per hour

// Minute returns the minute component.
func (c Clock) Minute() int { return c.minutes % 60 } //nolint:mnd // minutes per hour

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int { return c.minutes }

// Add returns the clock shifted by n minutes, wrapping at midnight.
func (c Clock) Add(n int) Clock {
	return Clock{minutes: ((c.minutes+n)%minutesPerDay + minutesPerDay) % minutesPerDay}
}

// Before reports whether c is earlier in the day than o.
func (c Clock) Before(o Clock) bool { return c.minutes < o.minutes }

// String returns the clock as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalYAML implements yaml.Marshaler.
func (c Clock) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// UnmarshalYAML implements yaml.v3 Unmarshaler.
func (c *Clock) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseClock(value.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Clock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
