package fieldsynth

import (
	"fmt"
	"strings"
)

type (
	// ControlSet holds the four continuous controls of the instrument. Each
	// value is a percentage in [0, 100].
	ControlSet struct {
		Blue, Green, White, Red int
	}

	// EngineKind selects one of the four synthesis algorithms.
	EngineKind int

	// Note is a note-on event. Pitch is a MIDI-like note number, and is also
	// the identity of the note for the matching note-off. Velocity 0 means
	// DefaultVelocity.
	Note struct {
		Pitch    byte
		Velocity byte
	}
)

const (
	Poly EngineKind = iota
	FM
	Mono
	String

	NumEngineKinds = 4
)

const DefaultVelocity = 100

var engineKindNames = [NumEngineKinds]string{"poly", "fm", "mono", "string"}

// DefaultControls is the control position of a freshly started instrument:
// every knob at its center.
var DefaultControls = ControlSet{Blue: 50, Green: 50, White: 50, Red: 50}

func (k EngineKind) String() string {
	if k < 0 || k >= NumEngineKinds {
		return fmt.Sprintf("EngineKind(%d)", int(k))
	}
	return engineKindNames[k]
}

// Valid reports whether k is one of the four known algorithms.
func (k EngineKind) Valid() bool {
	return k >= 0 && k < NumEngineKinds
}

// ParseEngineKind parses the lowercase engine names "poly", "fm", "mono" and
// "string" (case insensitive).
func ParseEngineKind(s string) (EngineKind, error) {
	for i, n := range engineKindNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return EngineKind(i), nil
		}
	}
	return Poly, fmt.Errorf("%w: %q", ErrUnknownEngine, s)
}

// Clamp returns the control set with every value limited to [0, 100].
func (c ControlSet) Clamp() ControlSet {
	return ControlSet{
		Blue:  clamp(c.Blue, 0, 100),
		Green: clamp(c.Green, 0, 100),
		White: clamp(c.White, 0, 100),
		Red:   clamp(c.Red, 0, 100),
	}
}

// Normalized returns the controls as fractions in [0, 1], in the order blue,
// green, white, red.
func (c ControlSet) Normalized() (blue, green, white, red float64) {
	c = c.Clamp()
	return float64(c.Blue) / 100, float64(c.Green) / 100, float64(c.White) / 100, float64(c.Red) / 100
}

// Vel returns the velocity of the note as a gain in [0, 1].
func (n Note) Vel() float64 {
	v := n.Velocity
	if v == 0 {
		v = DefaultVelocity
	}
	if v > 127 {
		v = 127
	}
	return float64(v) / 127
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
