package tui

import (
	"os"
	"strings"
	"sync"
)

// Some terminals and fonts render box and symbol glyphs poorly, so the panel can fall back to
// an ASCII set for its affordances (grip, pin, more, checkboxes).

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

// applyGlyphPreference picks the set from TOOLBAR_TUI_GLYPHS, falling back to the config value.
func applyGlyphPreference(configured string) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("TOOLBAR_TUI_GLYPHS")))
	if v == "" {
		v = strings.ToLower(strings.TrimSpace(configured))
	}
	switch v {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

// glyphGrip is the drag handle. It is exactly handleWidth-1 cells wide in both sets.
func glyphGrip() string {
	if glyphs() == glyphSetASCII {
		return "::"
	}
	return "⋮⋮"
}

// glyphLift replaces the grip of a row that was just picked up. Same width as glyphGrip.
func glyphLift() string {
	if glyphs() == glyphSetASCII {
		return "<>"
	}
	return "⇅⇅"
}

func glyphPinned() string {
	if glyphs() == glyphSetASCII {
		return "#"
	}
	return "⊙"
}

func glyphMore() string {
	if glyphs() == glyphSetASCII {
		return ">"
	}
	return "…"
}

func glyphCheck(on bool) string {
	if glyphs() == glyphSetASCII {
		if on {
			return "[x]"
		}
		return "[ ]"
	}
	if on {
		return "☑"
	}
	return "☐"
}

func glyphHRule() string {
	if glyphs() == glyphSetASCII {
		return "-"
	}
	return "─"
}
