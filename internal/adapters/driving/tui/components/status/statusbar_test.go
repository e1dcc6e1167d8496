package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Equal(t, 0, bar.Count())
}

func TestNewBar_NilDependencies(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestBar_ViewStates(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		message  string
		count    int
		expected string
	}{
		{"ready", StateReady, "", 0, "Ready"},
		{"ready with count", StateReady, "", 3, "3 observations"},
		{"working default", StateWorking, "", 0, "Working..."},
		{"saved", StateSaved, "Saved Dipirona 1g", 0, "Saved Dipirona 1g"},
		{"warning", StateWarning, "not persisted", 0, "not persisted"},
		{"error", StateError, "product not found", 0, "Error: product not found"},
		{"prompt", StatePrompt, "Reset all?", 0, "Reset all?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(120)
			bar.SetCount(tt.count)
			bar.Set(tt.state, tt.message)

			assert.Contains(t, bar.View(), tt.expected)
		})
	}
}

func TestBar_Hints(t *testing.T) {
	km := keymap.DefaultKeyMap()
	bar := NewBar(nil, km)
	bar.SetWidth(160)

	bar.SetHints(km.ObservationsHelp())
	assert.Contains(t, bar.View(), "x: export")

	bar.Set(StatePrompt, "Reset all?")
	view := bar.View()
	assert.Contains(t, view, "y: yes")
	assert.NotContains(t, view, "x: export")
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetCount(2)
	bar.Set(StateError, "boom")

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Equal(t, 2, bar.Count())
}
