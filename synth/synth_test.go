package synth_test

import (
	"testing"

	"github.com/fieldsynth/fieldsynth"
	"github.com/fieldsynth/fieldsynth/synth"
)

const (
	testSampleRate = 44100
	testBlockSize  = 256
	maxBlocks      = 2000
)

var allKinds = []fieldsynth.EngineKind{fieldsynth.Poly, fieldsynth.FM, fieldsynth.Mono, fieldsynth.String}

func newSynth(t *testing.T, kind fieldsynth.EngineKind) synth.Synth {
	t.Helper()
	s, err := synth.Synther{SampleRate: testSampleRate, MaxVoices: 8}.Synth(kind)
	if err != nil {
		t.Fatalf("could not create %v synth: %v", kind, err)
	}
	return s
}

func TestSynthKinds(t *testing.T) {
	for _, kind := range allKinds {
		s := newSynth(t, kind)
		if s.Kind() != kind {
			t.Errorf("Synther.Synth(%v) returned a synth of kind %v", kind, s.Kind())
		}
	}
	if _, err := (synth.Synther{SampleRate: testSampleRate}).Synth(fieldsynth.EngineKind(7)); err == nil {
		t.Errorf("expected an error for an unknown engine kind")
	}
}

func TestNoteOnProducesSound(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			s := newSynth(t, kind)
			buffer := make(fieldsynth.AudioBuffer, testBlockSize)
			s.Render(buffer)
			if !buffer.Silent() {
				t.Fatalf("idle synth rendered sound")
			}
			s.Trigger(fieldsynth.Note{Pitch: 60})
			s.Render(buffer)
			if buffer.Silent() {
				t.Fatalf("synth rendered silence after note on")
			}
			if s.Active() != 1 {
				t.Fatalf("expected 1 active voice, got %d", s.Active())
			}
		})
	}
}

func TestReleaseAllEndsInSilence(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			s := newSynth(t, kind)
			buffer := make(fieldsynth.AudioBuffer, testBlockSize)
			for _, n := range []byte{48, 55, 60, 64} {
				s.Trigger(fieldsynth.Note{Pitch: n, Velocity: 127})
				s.Render(buffer)
			}
			s.ReleaseAll()
			blocks := 0
			for ; s.Active() > 0 && blocks < maxBlocks; blocks++ {
				s.Render(buffer)
			}
			if s.Active() > 0 {
				t.Fatalf("voices still active after %d blocks", maxBlocks)
			}
			s.Render(buffer)
			if !buffer.Silent() {
				t.Fatalf("block after the release completed was not silent")
			}
		})
	}
}

func TestReleaseUnknownNoteIsNoop(t *testing.T) {
	for _, kind := range allKinds {
		s := newSynth(t, kind)
		s.Trigger(fieldsynth.Note{Pitch: 60})
		s.Release(61)
		s.Release(61)
		buffer := make(fieldsynth.AudioBuffer, testBlockSize)
		s.Render(buffer)
		if s.Active() != 1 {
			t.Errorf("%v: releasing an unknown note changed the voice count to %d", kind, s.Active())
		}
	}
}

func TestPolyNeverExceedsMaxVoices(t *testing.T) {
	for _, kind := range []fieldsynth.EngineKind{fieldsynth.Poly, fieldsynth.FM} {
		s := newSynth(t, kind)
		buffer := make(fieldsynth.AudioBuffer, testBlockSize)
		for n := byte(40); n < 60; n++ {
			s.Trigger(fieldsynth.Note{Pitch: n})
			s.Render(buffer)
			if s.Active() > 8 {
				t.Fatalf("%v: %d active voices, max is 8", kind, s.Active())
			}
		}
		if s.Active() != 8 {
			t.Errorf("%v: expected 8 active voices, got %d", kind, s.Active())
		}
	}
}

func TestPolyDuplicateNoteIgnored(t *testing.T) {
	for _, kind := range []fieldsynth.EngineKind{fieldsynth.Poly, fieldsynth.FM} {
		t.Run(kind.String(), func(t *testing.T) {
			s := newSynth(t, kind)
			s.Trigger(fieldsynth.Note{Pitch: 60})
			s.Trigger(fieldsynth.Note{Pitch: 60})
			if s.Active() != 1 {
				t.Fatalf("duplicate held note allocated a second voice: %d active", s.Active())
			}
			s.Release(60)
			s.Trigger(fieldsynth.Note{Pitch: 60})
			if s.Active() != 1 {
				t.Fatalf("note retriggered during its release allocated a second voice: %d active", s.Active())
			}
			buffer := make(fieldsynth.AudioBuffer, testBlockSize)
			for i := 0; s.Active() > 0; i++ {
				if i == maxBlocks {
					t.Fatalf("release did not complete")
				}
				s.Render(buffer)
			}
			s.Trigger(fieldsynth.Note{Pitch: 60})
			s.Trigger(fieldsynth.Note{Pitch: 62})
			if s.Active() != 2 {
				t.Fatalf("expected a new voice after the release completed, got %d active", s.Active())
			}
		})
	}
}

func TestMonophonicEngines(t *testing.T) {
	for _, kind := range []fieldsynth.EngineKind{fieldsynth.Mono, fieldsynth.String} {
		s := newSynth(t, kind)
		buffer := make(fieldsynth.AudioBuffer, testBlockSize)
		for _, n := range []byte{60, 64, 67} {
			s.Trigger(fieldsynth.Note{Pitch: n})
			s.Render(buffer)
			if s.Active() != 1 {
				t.Fatalf("%v: expected exactly one voice, got %d", kind, s.Active())
			}
		}
	}
}

func TestMonoLegatoReturnsToHeldNote(t *testing.T) {
	s := newSynth(t, fieldsynth.Mono)
	buffer := make(fieldsynth.AudioBuffer, testBlockSize)
	s.Trigger(fieldsynth.Note{Pitch: 60})
	s.Trigger(fieldsynth.Note{Pitch: 64})
	s.Release(64)
	for i := 0; i < 100; i++ {
		s.Render(buffer)
	}
	if s.Active() != 1 {
		t.Fatalf("releasing the top note while another is held should keep the voice sounding")
	}
	s.Release(60)
	for i := 0; i < maxBlocks && s.Active() > 0; i++ {
		s.Render(buffer)
	}
	if s.Active() != 0 {
		t.Fatalf("voice did not finish after all notes were released")
	}
}

func TestResetSilencesImmediately(t *testing.T) {
	for _, kind := range allKinds {
		s := newSynth(t, kind)
		s.Trigger(fieldsynth.Note{Pitch: 60})
		s.Reset()
		buffer := make(fieldsynth.AudioBuffer, testBlockSize)
		s.Render(buffer)
		if s.Active() != 0 || !buffer.Silent() {
			t.Errorf("%v: synth not silent after Reset", kind)
		}
	}
}
