package synth

import "github.com/fieldsynth/fieldsynth"

// PolySynth is a subtractive synth with three detuned unison oscillators per
// voice, blending saw and square, through a lowpass filter.
type PolySynth struct {
	params     Params
	sampleRate float64
	pool       voicePool
}

const polyGain = 0.25

func (s *PolySynth) Kind() fieldsynth.EngineKind { return fieldsynth.Poly }

func (s *PolySynth) Update(p Params) {
	if p.Kind == fieldsynth.Poly {
		s.params = p
	}
}

func (s *PolySynth) Trigger(note fieldsynth.Note) {
	v := s.pool.trigger(note, s.sampleRate)
	if v == nil {
		return
	}
	v.freq = noteFreq(note.Pitch)
	// spread the starting phases so the unison does not start in phase
	v.phase = [3]float64{0, 1.0 / 3, 2.0 / 3}
}

func (s *PolySynth) Release(pitch byte) {
	s.pool.release(pitch, s.params.Env.Release, s.sampleRate)
}

func (s *PolySynth) ReleaseAll() {
	s.pool.releaseAll(s.params.Env.Release, s.sampleRate)
}

func (s *PolySynth) Reset() { s.pool.reset() }

func (s *PolySynth) Active() int { return s.pool.active() }

func (s *PolySynth) Render(buffer fieldsynth.AudioBuffer) {
	buffer.Fill(0)
	coeffs := makeSVFCoeffs(s.params.Cutoff, 0.707, s.sampleRate)
	spread := [3]float64{cents(-s.params.Detune), 1, cents(s.params.Detune)}
	blend := s.params.Blend
	for _, voices := range s.pool.slots() {
		for i := range voices {
			v := &voices[i]
			if v.env.idle() {
				continue
			}
			var dt [3]float64
			for k := range dt {
				dt[k] = v.freq * spread[k] / s.sampleRate
			}
			for j := range buffer {
				var x float64
				for k := range v.phase {
					x += (1-blend)*saw(v.phase[k], dt[k]) + blend*square(v.phase[k], dt[k])
					v.phase[k] = advance(v.phase[k], dt[k])
				}
				y := v.filter.lowpass(&coeffs, x/3)
				out := float32(y * v.env.next(&s.params.Env, s.sampleRate) * v.velocity * polyGain)
				buffer[j][0] += out
				buffer[j][1] += out
				if v.env.idle() {
					break
				}
			}
		}
	}
}
