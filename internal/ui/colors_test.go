package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestColorsAreANSICodes(t *testing.T) {
	tests := []struct {
		name  string
		color lipgloss.Color
		want  string
	}{
		{"success", ColorSuccess, "2"},
		{"error", ColorError, "1"},
		{"warning", ColorWarning, "3"},
		{"info", ColorInfo, "6"},
		{"primary", ColorPrimary, "7"},
		{"secondary", ColorSecondary, "4"},
		{"muted", ColorMuted, "8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(tt.color))
		})
	}
}

func TestDisableColors(t *testing.T) {
	prev := lipgloss.ColorProfile()
	defer lipgloss.SetColorProfile(prev)

	lipgloss.SetColorProfile(termenv.ANSI)
	DisableColors()

	assert.Equal(t, termenv.Ascii, lipgloss.ColorProfile())
	for _, style := range []lipgloss.Style{SuccessStyle(), ErrorStyle(), WarningStyle(), MutedStyle()} {
		assert.Equal(t, "text", style.Render("text"))
	}
}
