package takelast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/flowkit/errors"
	"github.com/c360/flowkit/flow"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`
count: 100
window: 30s
unit: 1ms
delay_error: true
capacity_hint: 256
`)

	cfg, err := ParseConfig(data)
	require.NoError(t, err)

	assert.Equal(t, int64(100), cfg.Count)
	assert.Equal(t, 30*time.Second, cfg.Window)
	assert.Equal(t, time.Millisecond, cfg.Unit)
	assert.True(t, cfg.DelayError)
	assert.Equal(t, 256, cfg.CapacityHint)
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`count: 5`))
	require.NoError(t, err)

	assert.Equal(t, time.Millisecond, cfg.Unit, "unit defaults to milliseconds")
	assert.Zero(t, cfg.Window)
	assert.False(t, cfg.DelayError)
}

func TestParseConfigBadDuration(t *testing.T) {
	_, err := ParseConfig([]byte(`window: soon`))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestParseConfigBadYAML(t *testing.T) {
	_, err := ParseConfig([]byte(`{count:`))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestValidateRequiresABound(t *testing.T) {
	err := Config{}.withDefaults().Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestValidateWindowSmallerThanUnit(t *testing.T) {
	cfg := Config{Window: 500 * time.Microsecond, Unit: time.Millisecond}
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestWindowTicks(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected int64
	}{
		{"unbounded", Config{Unit: time.Millisecond}, 0},
		{"seconds in ms", Config{Window: 2 * time.Second, Unit: time.Millisecond}, 2000},
		{"native unit", Config{Window: 40 * time.Millisecond, Unit: time.Millisecond}, 40},
		{"coarse unit", Config{Window: 90 * time.Second, Unit: time.Minute}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.windowTicks())
		})
	}
}

func TestNewRejectsNilSource(t *testing.T) {
	_, err := New[int](nil, Config{Count: 1})
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New[int](flow.FromSlice([]int{1}), Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}
