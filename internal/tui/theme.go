package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme/palette helpers.
//
// The TUI must remain readable on both light and dark terminal backgrounds.
// We use lipgloss.AdaptiveColor where possible and only apply "faint"
// styling on dark backgrounds (faint text on light terminals often becomes
// illegible).

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

// Common semantic colors used across the TUI.
var (
	colorMuted lipgloss.TerminalColor = ac("240", "243")

	// Headings/breadcrumbs and other secondary chrome.
	colorChromeMutedFg lipgloss.TerminalColor = ac("240", "245")

	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorCardBorder lipgloss.TerminalColor = ac("250", "243")

	colorSurfaceBg lipgloss.TerminalColor = ac("255", "235")
	colorSurfaceFg lipgloss.TerminalColor = ac("235", "252")

	// Slightly elevated surface for controls so they remain visible on light
	// terminals.
	colorControlBg lipgloss.TerminalColor = ac("252", "235")

	colorAccent   lipgloss.TerminalColor = ac("27", "62") // blue
	colorAccentFg lipgloss.TerminalColor = ac("255", "235")

	// Pipeline status accents (board column headers, stat cards).
	colorStatusNew       lipgloss.TerminalColor = ac("27", "75")   // blue
	colorStatusContacted lipgloss.TerminalColor = ac("130", "214") // orange
	colorStatusQualified lipgloss.TerminalColor = ac("90", "140")  // purple
	colorStatusConverted lipgloss.TerminalColor = ac("28", "77")   // green
	colorStatusLost      lipgloss.TerminalColor = ac("124", "167") // red

	// Error surfaces (alert modal header, inline fetch errors).
	colorErrorFg lipgloss.TerminalColor = ac("124", "167")

	// Sync badges on board cards.
	colorPendingFg     lipgloss.TerminalColor = ac("130", "214")
	colorReconcilingFg lipgloss.TerminalColor = ac("124", "167")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func statusColor(status string) lipgloss.TerminalColor {
	switch status {
	case "new":
		return colorStatusNew
	case "contacted":
		return colorStatusContacted
	case "qualified":
		return colorStatusQualified
	case "converted":
		return colorStatusConverted
	case "lost":
		return colorStatusLost
	default:
		return colorMuted
	}
}

// applyColorProfilePreference sets Lip Gloss's color profile for the
// interactive TUI.
//
// Note: termenv.EnvColorProfile respects CLICOLOR/CLICOLOR_FORCE, which is
// useful for non-interactive CLI output but can accidentally disable colors
// in a TUI. For the TUI, we only honor NO_COLOR and otherwise follow the
// terminal's capabilities.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	// If TERM/COLORTERM indicate stronger support than the detector reports,
	// trust the env. Color probing under-reports in some terminals.
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") {
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}

	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures Lip Gloss's background detection.
//
// Some terminals don't reliably report their background, which can cause
// lipgloss.AdaptiveColor to pick the wrong variant.
//
// Priority:
// 1) configured theme (config file)
// 2) VALOS_TUI_THEME=light|dark|auto
// 3) VALOS_TUI_DARKBG=true|false
// 4) COLORFGBG heuristic (format like "15;0" = fg;bg)
func applyThemePreference(configured string) {
	if applyThemeName(configured) {
		return
	}
	if applyThemeName(os.Getenv("VALOS_TUI_THEME")) {
		return
	}

	if v := strings.TrimSpace(os.Getenv("VALOS_TUI_DARKBG")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			lipgloss.SetHasDarkBackground(b)
			return
		}
	}

	// COLORFGBG is often "fg;bg" (sometimes more segments); use the last
	// segment as bg. Heuristic, but better than consistently guessing wrong.
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		bgStr := strings.TrimSpace(parts[len(parts)-1])
		if bg, err := strconv.Atoi(bgStr); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}

func applyThemeName(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return true
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return true
	default:
		// "auto", empty and unknown values fall through to heuristics.
		return false
	}
}
