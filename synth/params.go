package synth

import (
	"math"

	"github.com/fieldsynth/fieldsynth"
)

type (
	// Params are the synthesis coefficients of one engine kind, derived from
	// the four controls by MapParameters. Only the fields relevant to Kind
	// are set; the rest are zero.
	Params struct {
		Kind fieldsynth.EngineKind
		Env  ADSR

		// poly
		Cutoff float64 // Hz
		Detune float64 // cents, spread across the unison oscillators
		Blend  float64 // 0 = saw, 1 = square

		// fm
		Ratio        float64 // modulator / carrier frequency ratio
		Index        float64 // modulation index
		CarrierBlend float64 // 0 = sine, 1 = triangle

		// mono
		Glide     float64 // seconds
		SubMix    float64
		Resonance float64 // filter Q

		// string
		Brightness float64 // excitation lowpass amount, 1 = unfiltered noise
		Feedback   float64 // loop gain per period
		Stiffness  float64 // allpass dispersion coefficient
		Body       float64 // body resonance mix
	}

	// ADSR describes an envelope: attack, decay and release in seconds,
	// sustain as a level in [0, 1].
	ADSR struct {
		Attack, Decay, Sustain, Release float64
	}
)

// FMRatios are the modulator to carrier ratios selectable with the blue
// control of the fm engine.
var FMRatios = [...]float64{0.5, 1, 1.5, 2, 3, 4, 5, 7}

// MapParameters turns the four controls into the coefficients of the given
// engine kind. It is a pure function: every curve is deterministic and
// monotonic in its control.
func MapParameters(c fieldsynth.ControlSet, kind fieldsynth.EngineKind) Params {
	blue, green, white, red := c.Normalized()
	p := Params{Kind: kind}
	switch kind {
	case fieldsynth.Poly:
		p.Cutoff = 80 * math.Pow(100, blue) // 80 Hz .. 8 kHz
		p.Detune = 30 * green
		p.Blend = white
		p.Env = ADSR{Attack: 0.01, Decay: 0.3, Sustain: 0.7, Release: 0.01 + 2.99*red*red}
	case fieldsynth.FM:
		i := int(blue * float64(len(FMRatios)))
		if i >= len(FMRatios) {
			i = len(FMRatios) - 1
		}
		p.Ratio = FMRatios[i]
		p.Index = 10 * green
		p.CarrierBlend = white
		decay := 0.05 + 3.95*red*red
		p.Env = ADSR{Attack: 0.002, Decay: decay, Sustain: 0.2, Release: decay / 2}
	case fieldsynth.Mono:
		p.Glide = blue * blue
		p.SubMix = green
		p.Resonance = 0.5 + 11.5*white
		p.Env = ADSR{Attack: 0.005, Decay: 0.2, Sustain: red, Release: 0.15}
	case fieldsynth.String:
		p.Brightness = 0.05 + 0.95*blue
		p.Feedback = 0.95 + 0.0495*green
		p.Stiffness = 0.7 * white
		p.Body = red
		p.Env = ADSR{Attack: 0.001, Decay: 0, Sustain: 1, Release: 0.08}
	}
	return p
}
