package synth

import "github.com/fieldsynth/fieldsynth"

type (
	// voice is the state of one sounding note. The same struct serves every
	// algorithm; each engine only touches the fields it needs.
	voice struct {
		note     byte
		velocity float64
		sustain  bool   // true until the note is released
		started  uint64 // allocation counter, smaller is older
		env      envelope

		freq, target, glideStep float64
		glideLeft               int
		phase                   [3]float64
		modPhase, subPhase      float64
		filter                  svf
	}

	// voicePool is a fixed set of voices. Voices are identified by the
	// triggering note. A pool never allocates after construction: when all
	// voices are taken, the oldest one is moved to a tail slot where it
	// fades out in stealTime, and its slot is reused.
	voicePool struct {
		voices  []voice
		tails   []voice
		counter uint64
	}
)

func newVoicePool(size int) voicePool {
	return voicePool{voices: make([]voice, size), tails: make([]voice, size)}
}

// trigger returns a voice for the note, or nil if a voice of the note is
// still sounding, held or releasing. A stolen voice fading out in a tail slot
// has lost its identity and does not block the note.
func (p *voicePool) trigger(note fieldsynth.Note, sampleRate float64) *voice {
	free := -1
	oldest := -1
	for i := range p.voices {
		v := &p.voices[i]
		if v.note == note.Pitch && !v.env.idle() {
			return nil
		}
		if v.env.idle() {
			if free == -1 {
				free = i
			}
			continue
		}
		if oldest == -1 || v.started < p.voices[oldest].started {
			oldest = i
		}
	}
	if free == -1 {
		p.steal(oldest, sampleRate)
		free = oldest
	}
	p.counter++
	v := &p.voices[free]
	*v = voice{note: note.Pitch, velocity: note.Vel(), sustain: true, started: p.counter}
	v.env.trigger()
	return v
}

// steal moves voice i into a tail slot, forcing it into a fast release.
func (p *voicePool) steal(i int, sampleRate float64) {
	slot := 0
	for j := range p.tails {
		if p.tails[j].env.idle() {
			slot = j
			break
		}
		if p.tails[j].started < p.tails[slot].started {
			slot = j
		}
	}
	p.tails[slot] = p.voices[i]
	p.tails[slot].sustain = false
	p.tails[slot].env.release(stealTime, sampleRate)
	p.voices[i] = voice{}
}

// release starts the release of the held voice playing note. Unknown or
// already released notes are ignored.
func (p *voicePool) release(note byte, seconds, sampleRate float64) {
	for i := range p.voices {
		v := &p.voices[i]
		if v.sustain && v.note == note {
			v.sustain = false
			v.env.release(seconds, sampleRate)
			return
		}
	}
}

func (p *voicePool) releaseAll(seconds, sampleRate float64) {
	for i := range p.voices {
		p.voices[i].sustain = false
		p.voices[i].env.release(seconds, sampleRate)
	}
}

func (p *voicePool) reset() {
	for i := range p.voices {
		p.voices[i] = voice{}
	}
	for i := range p.tails {
		p.tails[i] = voice{}
	}
}

// active counts the voices that still produce sound, not including the tails
// of stolen voices.
func (p *voicePool) active() int {
	n := 0
	for i := range p.voices {
		if !p.voices[i].env.idle() {
			n++
		}
	}
	return n
}

// slots returns the voices and the tails of stolen voices, for rendering.
func (p *voicePool) slots() [2][]voice {
	return [2][]voice{p.voices, p.tails}
}
