package synth

import (
	"fmt"

	"github.com/fieldsynth/fieldsynth"
)

type (
	// Synth is one of the four synthesis algorithms. All the methods are
	// meant to be called from the audio thread only, between rendering
	// blocks; none of them allocate memory.
	Synth interface {
		Kind() fieldsynth.EngineKind
		// Update changes the synthesis coefficients. Params of another kind
		// are ignored.
		Update(p Params)
		// Trigger starts a note, stealing or retriggering a voice if
		// needed.
		Trigger(note fieldsynth.Note)
		// Release starts the release stage of the voice playing the pitch.
		// Unknown or already released pitches are ignored.
		Release(pitch byte)
		// ReleaseAll starts the release stage of every voice.
		ReleaseAll()
		// Reset silences the synth immediately, dropping all voices.
		Reset()
		// Render overwrites the buffer with the next block of audio.
		Render(buffer fieldsynth.AudioBuffer)
		// Active returns the number of voices still producing sound.
		Active() int
	}

	// Synther creates Synths of a given kind. MaxVoices bounds the
	// polyphonic engines; the monophonic ones always have one voice.
	Synther struct {
		SampleRate int
		MaxVoices  int
	}
)

const DefaultMaxVoices = 8

// Synth creates a new Synth of the given kind, initialized with the
// parameters mapped from the default controls.
func (s Synther) Synth(kind fieldsynth.EngineKind) (Synth, error) {
	if s.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", s.SampleRate)
	}
	maxVoices := s.MaxVoices
	if maxVoices <= 0 {
		maxVoices = DefaultMaxVoices
	}
	sr := float64(s.SampleRate)
	var ret Synth
	switch kind {
	case fieldsynth.Poly:
		ret = &PolySynth{sampleRate: sr, pool: newVoicePool(maxVoices)}
	case fieldsynth.FM:
		ret = &FMSynth{sampleRate: sr, pool: newVoicePool(maxVoices)}
	case fieldsynth.Mono:
		ret = &MonoSynth{sampleRate: sr}
	case fieldsynth.String:
		ret = newStringSynth(sr)
	default:
		return nil, fmt.Errorf("%w: %v", fieldsynth.ErrUnknownEngine, kind)
	}
	ret.Update(MapParameters(fieldsynth.DefaultControls, kind))
	return ret, nil
}

// All creates one Synth of every kind, indexed by EngineKind.
func (s Synther) All() (ret [fieldsynth.NumEngineKinds]Synth, err error) {
	for k := range ret {
		if ret[k], err = s.Synth(fieldsynth.EngineKind(k)); err != nil {
			return ret, err
		}
	}
	return ret, nil
}
