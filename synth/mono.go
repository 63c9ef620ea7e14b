package synth

import (
	"math"

	"github.com/fieldsynth/fieldsynth"
)

// MonoSynth is a monophonic lead: a saw with a square sub-oscillator one
// octave below, through a resonant lowpass that opens with the envelope. It
// remembers the held notes, so releasing the newest note glides back to the
// previous one still held.
type MonoSynth struct {
	params     Params
	sampleRate float64
	v          voice
	held       [maxHeld]byte
	numHeld    int
}

const (
	monoGain = 0.35
	maxHeld  = 16
)

func (s *MonoSynth) Kind() fieldsynth.EngineKind { return fieldsynth.Mono }

func (s *MonoSynth) Update(p Params) {
	if p.Kind == fieldsynth.Mono {
		s.params = p
	}
}

func (s *MonoSynth) Trigger(note fieldsynth.Note) {
	s.removeHeld(note.Pitch)
	if s.numHeld == maxHeld {
		copy(s.held[:], s.held[1:])
		s.numHeld--
	}
	s.held[s.numHeld] = note.Pitch
	s.numHeld++
	sounding := !s.v.env.idle()
	s.v.note = note.Pitch
	s.v.velocity = note.Vel()
	s.v.sustain = true
	if sounding && s.params.Glide > 0 {
		s.glideTo(noteFreq(note.Pitch))
	} else {
		s.v.freq = noteFreq(note.Pitch)
		s.v.target = s.v.freq
		s.v.glideLeft = 0
	}
	s.v.env.trigger()
}

func (s *MonoSynth) Release(pitch byte) {
	if !s.removeHeld(pitch) || pitch != s.v.note || !s.v.sustain {
		return
	}
	if s.numHeld > 0 {
		// legato back to the most recent note still held
		s.v.note = s.held[s.numHeld-1]
		if s.params.Glide > 0 {
			s.glideTo(noteFreq(s.v.note))
		} else {
			s.v.freq = noteFreq(s.v.note)
		}
		return
	}
	s.v.sustain = false
	s.v.env.release(s.params.Env.Release, s.sampleRate)
}

func (s *MonoSynth) ReleaseAll() {
	s.numHeld = 0
	s.v.sustain = false
	s.v.env.release(s.params.Env.Release, s.sampleRate)
}

func (s *MonoSynth) Reset() {
	s.numHeld = 0
	s.v = voice{}
}

func (s *MonoSynth) Active() int {
	if s.v.env.idle() {
		return 0
	}
	return 1
}

func (s *MonoSynth) Render(buffer fieldsynth.AudioBuffer) {
	if s.v.env.idle() {
		buffer.Fill(0)
		return
	}
	v := &s.v
	for j := range buffer {
		if v.glideLeft > 0 {
			v.freq *= v.glideStep
			v.glideLeft--
			if v.glideLeft == 0 {
				v.freq = v.target
			}
		}
		dt := v.freq / s.sampleRate
		x := saw(v.phase[0], dt) + s.params.SubMix*square(v.subPhase, dt/2)
		v.phase[0] = advance(v.phase[0], dt)
		v.subPhase = advance(v.subPhase, dt/2)
		level := v.env.next(&s.params.Env, s.sampleRate)
		coeffs := makeSVFCoeffs(v.freq*(2+6*level), s.params.Resonance, s.sampleRate)
		y := v.filter.lowpass(&coeffs, x/(1+s.params.SubMix))
		out := float32(y * level * v.velocity * monoGain)
		buffer[j] = [2]float32{out, out}
	}
}

// glideTo starts an exponential glide from the current frequency to target
// over the configured glide time.
func (s *MonoSynth) glideTo(target float64) {
	n := int(s.params.Glide * s.sampleRate)
	if n < 1 || s.v.freq <= 0 {
		s.v.freq = target
		s.v.target = target
		s.v.glideLeft = 0
		return
	}
	s.v.target = target
	s.v.glideStep = math.Pow(target/s.v.freq, 1/float64(n))
	s.v.glideLeft = n
}

func (s *MonoSynth) removeHeld(pitch byte) bool {
	for i := 0; i < s.numHeld; i++ {
		if s.held[i] == pitch {
			copy(s.held[i:], s.held[i+1:s.numHeld])
			s.numHeld--
			return true
		}
	}
	return false
}
