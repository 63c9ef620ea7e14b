package synth

import (
	"math"

	"github.com/fieldsynth/fieldsynth"
)

// FMSynth is a polyphonic two-operator FM synth. The modulation depth follows
// the amplitude envelope, so notes get darker as they decay.
type FMSynth struct {
	params     Params
	sampleRate float64
	pool       voicePool
}

const fmGain = 0.3

func (s *FMSynth) Kind() fieldsynth.EngineKind { return fieldsynth.FM }

func (s *FMSynth) Update(p Params) {
	if p.Kind == fieldsynth.FM {
		s.params = p
	}
}

func (s *FMSynth) Trigger(note fieldsynth.Note) {
	v := s.pool.trigger(note, s.sampleRate)
	if v == nil {
		return
	}
	v.freq = noteFreq(note.Pitch)
}

func (s *FMSynth) Release(pitch byte) {
	s.pool.release(pitch, s.params.Env.Release, s.sampleRate)
}

func (s *FMSynth) ReleaseAll() {
	s.pool.releaseAll(s.params.Env.Release, s.sampleRate)
}

func (s *FMSynth) Reset() { s.pool.reset() }

func (s *FMSynth) Active() int { return s.pool.active() }

func (s *FMSynth) Render(buffer fieldsynth.AudioBuffer) {
	buffer.Fill(0)
	blend := s.params.CarrierBlend
	for _, voices := range s.pool.slots() {
		for i := range voices {
			v := &voices[i]
			if v.env.idle() {
				continue
			}
			dt := v.freq / s.sampleRate
			mdt := dt * s.params.Ratio
			for j := range buffer {
				level := v.env.next(&s.params.Env, s.sampleRate)
				mod := s.params.Index * level * sine(v.modPhase)
				pm := mod / (2 * math.Pi)
				p := v.phase[0] + pm
				p -= math.Floor(p)
				x := (1-blend)*sine(p) + blend*triangle(p)
				out := float32(x * level * v.velocity * fmGain)
				buffer[j][0] += out
				buffer[j][1] += out
				v.phase[0] = advance(v.phase[0], dt)
				v.modPhase = advance(v.modPhase, mdt)
				if v.env.idle() {
					break
				}
			}
		}
	}
}
