package synth

import (
	"testing"

	"github.com/fieldsynth/fieldsynth"
)

func TestVoicePoolStealsOldest(t *testing.T) {
	p := newVoicePool(4)
	for n := byte(60); n < 64; n++ {
		if p.trigger(fieldsynth.Note{Pitch: n}, 44100) == nil {
			t.Fatalf("could not trigger note %d", n)
		}
	}
	if p.trigger(fieldsynth.Note{Pitch: 64}, 44100) == nil {
		t.Fatalf("could not trigger a note beyond capacity")
	}
	if p.active() != 4 {
		t.Fatalf("expected 4 active voices, got %d", p.active())
	}
	held := map[byte]bool{}
	for _, v := range p.voices {
		held[v.note] = true
	}
	if held[60] {
		t.Errorf("oldest note 60 was not evicted")
	}
	for n := byte(61); n <= 64; n++ {
		if !held[n] {
			t.Errorf("note %d should still be held", n)
		}
	}
	releasing := 0
	for _, v := range p.tails {
		if !v.env.idle() {
			releasing++
			if v.note != 60 || v.sustain || v.env.stage != envRelease {
				t.Errorf("stolen voice should be note 60 in release, got note %d stage %d", v.note, v.env.stage)
			}
		}
	}
	if releasing != 1 {
		t.Errorf("expected exactly one stolen voice fading out, got %d", releasing)
	}
}

func TestVoicePoolStealsReleasedOldestFirst(t *testing.T) {
	p := newVoicePool(2)
	p.trigger(fieldsynth.Note{Pitch: 60}, 44100)
	p.trigger(fieldsynth.Note{Pitch: 61}, 44100)
	p.release(61, 1, 44100)
	p.trigger(fieldsynth.Note{Pitch: 62}, 44100)
	for _, v := range p.voices {
		if v.note == 60 {
			t.Fatalf("eviction must be strictly by start time: note 60 was the oldest")
		}
	}
}

func TestEnvelopeCompletes(t *testing.T) {
	var e envelope
	adsr := ADSR{Attack: 0.01, Decay: 0.01, Sustain: 0.5, Release: 0.01}
	e.trigger()
	for i := 0; i < 1000; i++ {
		e.next(&adsr, 44100)
	}
	if e.stage != envSustain || e.level != 0.5 {
		t.Fatalf("expected sustain at 0.5, got stage %d level %v", e.stage, e.level)
	}
	e.release(adsr.Release, 44100)
	n := 0
	for !e.idle() {
		e.next(&adsr, 44100)
		n++
		if n > 1000 {
			t.Fatalf("release did not complete")
		}
	}
	if n < 400 || n > 450 {
		t.Errorf("release of 10 ms took %d samples", n)
	}
}

func TestMapParametersMonotonic(t *testing.T) {
	type field func(p Params) float64
	cases := []struct {
		kind    fieldsynth.EngineKind
		control func(c *fieldsynth.ControlSet, v int)
		field   field
		name    string
	}{
		{fieldsynth.Poly, func(c *fieldsynth.ControlSet, v int) { c.Blue = v }, func(p Params) float64 { return p.Cutoff }, "poly cutoff"},
		{fieldsynth.Poly, func(c *fieldsynth.ControlSet, v int) { c.Green = v }, func(p Params) float64 { return p.Detune }, "poly detune"},
		{fieldsynth.Poly, func(c *fieldsynth.ControlSet, v int) { c.White = v }, func(p Params) float64 { return p.Blend }, "poly blend"},
		{fieldsynth.Poly, func(c *fieldsynth.ControlSet, v int) { c.Red = v }, func(p Params) float64 { return p.Env.Release }, "poly release"},
		{fieldsynth.FM, func(c *fieldsynth.ControlSet, v int) { c.Blue = v }, func(p Params) float64 { return p.Ratio }, "fm ratio"},
		{fieldsynth.FM, func(c *fieldsynth.ControlSet, v int) { c.Green = v }, func(p Params) float64 { return p.Index }, "fm index"},
		{fieldsynth.FM, func(c *fieldsynth.ControlSet, v int) { c.White = v }, func(p Params) float64 { return p.CarrierBlend }, "fm carrier"},
		{fieldsynth.FM, func(c *fieldsynth.ControlSet, v int) { c.Red = v }, func(p Params) float64 { return p.Env.Decay }, "fm decay"},
		{fieldsynth.Mono, func(c *fieldsynth.ControlSet, v int) { c.Blue = v }, func(p Params) float64 { return p.Glide }, "mono glide"},
		{fieldsynth.Mono, func(c *fieldsynth.ControlSet, v int) { c.Green = v }, func(p Params) float64 { return p.SubMix }, "mono sub"},
		{fieldsynth.Mono, func(c *fieldsynth.ControlSet, v int) { c.White = v }, func(p Params) float64 { return p.Resonance }, "mono resonance"},
		{fieldsynth.Mono, func(c *fieldsynth.ControlSet, v int) { c.Red = v }, func(p Params) float64 { return p.Env.Sustain }, "mono sustain"},
		{fieldsynth.String, func(c *fieldsynth.ControlSet, v int) { c.Blue = v }, func(p Params) float64 { return p.Brightness }, "string brightness"},
		{fieldsynth.String, func(c *fieldsynth.ControlSet, v int) { c.Green = v }, func(p Params) float64 { return p.Feedback }, "string feedback"},
		{fieldsynth.String, func(c *fieldsynth.ControlSet, v int) { c.White = v }, func(p Params) float64 { return p.Stiffness }, "string stiffness"},
		{fieldsynth.String, func(c *fieldsynth.ControlSet, v int) { c.Red = v }, func(p Params) float64 { return p.Body }, "string body"},
	}
	for _, c := range cases {
		prev := -1.0
		for v := 0; v <= 100; v++ {
			controls := fieldsynth.DefaultControls
			c.control(&controls, v)
			p := MapParameters(controls, c.kind)
			if p != MapParameters(controls, c.kind) {
				t.Fatalf("%s: MapParameters is not deterministic", c.name)
			}
			got := c.field(p)
			if got < prev {
				t.Fatalf("%s: not monotonic at %d: %v < %v", c.name, v, got, prev)
			}
			prev = got
		}
	}
}

func TestMapParametersRanges(t *testing.T) {
	lo := MapParameters(fieldsynth.ControlSet{}, fieldsynth.Poly)
	hi := MapParameters(fieldsynth.ControlSet{Blue: 100, Green: 100, White: 100, Red: 100}, fieldsynth.Poly)
	if lo.Cutoff != 80 || hi.Cutoff < 7999 || hi.Cutoff > 8001 {
		t.Errorf("poly cutoff range is %v..%v, expected 80..8000", lo.Cutoff, hi.Cutoff)
	}
	over := MapParameters(fieldsynth.ControlSet{Blue: 500}, fieldsynth.FM)
	if over.Ratio != FMRatios[len(FMRatios)-1] {
		t.Errorf("out of range control should clamp to the last ratio, got %v", over.Ratio)
	}
}
