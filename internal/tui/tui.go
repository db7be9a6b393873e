// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

const (
	// ThemeDefault uses the base huh theme.
	ThemeDefault Theme = "default"
	// ThemeCharm uses the Charm theme.
	ThemeCharm Theme = "charm"
	// ThemeDracula uses the Dracula theme.
	ThemeDracula Theme = "dracula"
	// ThemeCatppuccin uses the Catppuccin theme.
	ThemeCatppuccin Theme = "catppuccin"
	// ThemeBase16 uses the Base16 theme.
	ThemeBase16 Theme = "base16"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("user cancelled")

type (
	// Theme represents the visual theme for TUI components.
	Theme string

	// Config holds common configuration for TUI components.
	Config struct {
		// Theme specifies the visual theme to use.
		Theme Theme
		// Accessible replaces the full-screen forms with plain line prompts.
		Accessible bool
		// Width specifies the width of the forms (0 for auto).
		Width int
		// Output specifies where prompts are written.
		Output io.Writer
		// Input specifies where answers are read from.
		Input io.Reader
	}
)

// DefaultConfig returns the default configuration for TUI components.
// Accessible mode is enabled when stdin is not a terminal or the ACCESSIBLE
// environment variable is set.
func DefaultConfig() Config {
	return Config{
		Theme:      ThemeCharm,
		Accessible: !isInputTerminal() || os.Getenv("ACCESSIBLE") != "",
		Output:     os.Stdout,
		Input:      os.Stdin,
	}
}

// ThemeForColorScheme maps the ui.color_scheme setting to a theme.
func ThemeForColorScheme(scheme string) Theme {
	switch scheme {
	case "dark":
		return ThemeDracula
	case "light":
		return ThemeBase16
	default:
		return ThemeCharm
	}
}

// isInputTerminal returns true if stdin is connected to a terminal.
func isInputTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// getHuhTheme converts a Theme to a huh.Theme.
func getHuhTheme(t Theme) *huh.Theme {
	switch t {
	case ThemeCharm:
		return huh.ThemeCharm()
	case ThemeDracula:
		return huh.ThemeDracula()
	case ThemeCatppuccin:
		return huh.ThemeCatppuccin()
	case ThemeBase16:
		return huh.ThemeBase16()
	default:
		return huh.ThemeBase()
	}
}
