package date

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestParse(t *testing.T) {
	d, err := Parse("2024-02-15")
	require.NoError(t, err)
	assert.Equal(t, New(2024, time.February, 15), d)

	d, err = Parse("2024-02-15T22:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-15", d.String())

	_, err = Parse("15/02/2024")
	assert.Error(t, err)
}

func TestSameDayIgnoresTime(t *testing.T) {
	morning := Of(time.Date(2024, 3, 4, 8, 0, 0, 0, time.Local))
	evening := Of(time.Date(2024, 3, 4, 23, 59, 0, 0, time.Local))
	assert.True(t, morning.SameDay(evening))
	assert.False(t, morning.SameDay(morning.AddDays(1)))
}

func TestStartOfWeek(t *testing.T) {
	// 2024-03-07 is a Thursday.
	thu := New(2024, time.March, 7)
	assert.Equal(t, "2024-03-04", thu.StartOfWeek(time.Monday).String())
	assert.Equal(t, "2024-03-03", thu.StartOfWeek(time.Sunday).String())

	mon := New(2024, time.March, 4)
	assert.Equal(t, mon, mon.StartOfWeek(time.Monday))
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, c.Hour())
	assert.Equal(t, 30, c.Minute())

	c, err = ParseClock("14:05:00")
	require.NoError(t, err)
	assert.Equal(t, "14:05", c.String())

	for _, bad := range []string{"", "9", "24:00", "12:60", "aa:bb", "1:2:3:4"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestClockAddWraps(t *testing.T) {
	assert.Equal(t, "00:30", NewClock(23, 45).Add(45).String())
	assert.Equal(t, "23:50", NewClock(0, 10).Add(-20).String())
}

func TestEncoding(t *testing.T) {
	type doc struct {
		Day   Date  `json:"day" yaml:"day"`
		Start Clock `json:"start" yaml:"start"`
	}
	in := doc{Day: New(2024, time.May, 1), Start: NewClock(7, 5)}

	js, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2024-05-01","start":"07:05"}`, string(js))

	var fromYAML doc
	require.NoError(t, yaml.Unmarshal([]byte("day: 2024-05-01\nstart: \"07:05\"\n"), &fromYAML))
	assert.Equal(t, in, fromYAML)
}
