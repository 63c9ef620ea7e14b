package synth

import (
	"math"

	"github.com/fieldsynth/fieldsynth"
)

// StringSynth is a monophonic plucked string (Karplus-Strong). The delay
// line is excited with filtered noise on every note on; a new note re-plucks
// the string instead of allocating a second voice.
type StringSynth struct {
	params     Params
	sampleRate float64
	v          voice

	line    []float64
	period  int
	pos     int
	apX     float64 // allpass input history
	apY     float64 // allpass output history
	body    svf
	bodyC   svfCoeffs
	exciter noise
}

const (
	stringGain    = 0.6
	lowestString  = 20.0 // Hz, sets the length of the delay line
	bodyFrequency = 220.0
)

func newStringSynth(sampleRate float64) *StringSynth {
	return &StringSynth{
		sampleRate: sampleRate,
		line:       make([]float64, int(sampleRate/lowestString)+2),
		bodyC:      makeSVFCoeffs(bodyFrequency, 2, sampleRate),
	}
}

func (s *StringSynth) Kind() fieldsynth.EngineKind { return fieldsynth.String }

func (s *StringSynth) Update(p Params) {
	if p.Kind == fieldsynth.String {
		s.params = p
	}
}

func (s *StringSynth) Trigger(note fieldsynth.Note) {
	freq := noteFreq(note.Pitch)
	period := int(math.Round(s.sampleRate / freq))
	period = min(max(period, 2), len(s.line))
	sounding := !s.v.env.idle()
	s.v.note = note.Pitch
	s.v.velocity = note.Vel()
	s.v.sustain = true
	s.v.freq = freq
	s.v.env.trigger()
	if !sounding || period != s.period {
		// the old string content has the wrong pitch, start from rest
		clear(s.line[:period])
		s.apX, s.apY = 0, 0
	}
	s.period = period
	s.pos = 0
	var lp float64
	for i := 0; i < period; i++ {
		lp += s.params.Brightness * (s.exciter.next() - lp)
		s.line[i] = 0.5*s.line[i] + lp*s.v.velocity
	}
}

func (s *StringSynth) Release(pitch byte) {
	if !s.v.sustain || pitch != s.v.note {
		return
	}
	s.v.sustain = false
	s.v.env.release(s.params.Env.Release, s.sampleRate)
}

func (s *StringSynth) ReleaseAll() {
	s.v.sustain = false
	s.v.env.release(s.params.Env.Release, s.sampleRate)
}

func (s *StringSynth) Reset() {
	s.v = voice{}
	clear(s.line)
	s.apX, s.apY = 0, 0
	s.body = svf{}
}

func (s *StringSynth) Active() int {
	if s.v.env.idle() {
		return 0
	}
	return 1
}

func (s *StringSynth) Render(buffer fieldsynth.AudioBuffer) {
	if s.v.env.idle() {
		buffer.Fill(0)
		return
	}
	a := s.params.Stiffness
	for j := range buffer {
		cur := s.line[s.pos]
		next := s.line[(s.pos+1)%s.period]
		avg := 0.5 * (cur + next)
		// first order allpass adds dispersion, i.e. stiffness
		y := a*avg + s.apX - a*s.apY
		s.apX, s.apY = avg, y
		s.line[s.pos] = y * s.params.Feedback
		s.pos++
		if s.pos >= s.period {
			s.pos = 0
		}
		level := s.v.env.next(&s.params.Env, s.sampleRate)
		_, band := s.body.process(&s.bodyC, cur)
		x := cur + s.params.Body*2*band
		out := float32(x * level * stringGain)
		buffer[j] = [2]float32{out, out}
	}
}
