// Package color resolves a color name to the ANSI SGR code that
// highlights a match span.
//
// It is the thin "color name parsing and ANSI escape rendering"
// collaborator the core search engine treats as an external dependency —
// the core only ever sees a xergtypes.ColorName and a resolved Code,
// never a raw string.
package color

import (
	"fmt"

	"github.com/ivoronin/xerg/internal/xergtypes"
)

// Code is a resolved SGR color code ready to bracket a match span.
// A zero Code (sgr == 0, what Resolve returns for xergtypes.ColorNone)
// renders no markers at all,
// mirroring how internal/progress's disabled Bar makes every method a no-op.
type Code struct {
	sgr int
}

// resolved reports whether this Code should wrap spans with markers.
func (c Code) resolved() bool { return c.sgr != 0 }

// Wrap brackets s with this code's on/off marker, or returns s unchanged
// if the code is the no-op (ColorNone) code.
func (c Code) Wrap(s string) string {
	if !c.resolved() {
		return s
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", c.sgr, s)
}

// sgrCodes maps each recognized name to its ANSI Select Graphic Rendition code.
var sgrCodes = map[xergtypes.ColorName]int{
	xergtypes.ColorRed:   31,
	xergtypes.ColorGreen: 32,
	xergtypes.ColorBlue:  34,
	xergtypes.ColorBold:  1,
}

// Resolve returns the Code for name. ColorNone resolves to the no-op Code.
func Resolve(name xergtypes.ColorName) Code {
	return Code{sgr: sgrCodes[name]}
}

// ParseName maps a CLI --color argument to a xergtypes.ColorName. It
// lives here rather than in cmd/xerg so the CLI layer stays pure
// flag-binding glue.
func ParseName(s string) (xergtypes.ColorName, error) {
	switch s {
	case "", "none":
		return xergtypes.ColorNone, nil
	case "red":
		return xergtypes.ColorRed, nil
	case "green":
		return xergtypes.ColorGreen, nil
	case "blue":
		return xergtypes.ColorBlue, nil
	case "bold":
		return xergtypes.ColorBold, nil
	default:
		return xergtypes.ColorNone, fmt.Errorf("unknown color %q (want red, green, blue, or bold)", s)
	}
}
