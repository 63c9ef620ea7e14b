package synth

type envStage int

const (
	envIdle envStage = iota
	envAttack
	envDecay
	envSustain
	envRelease
)

// stealTime is how long a stolen voice takes to fade out, in seconds.
const stealTime = 0.005

// envelope is a linear attack/decay/sustain/release generator. Attack starts
// from the current level so retriggering a sounding voice does not click.
type envelope struct {
	stage envStage
	level float64
	step  float64 // per-sample change in the release stage
}

func (e *envelope) trigger() {
	e.stage = envAttack
}

// release starts the release stage, reaching zero in the given number of
// seconds.
func (e *envelope) release(seconds, sampleRate float64) {
	if e.stage == envIdle {
		return
	}
	e.stage = envRelease
	e.step = e.level / max(seconds*sampleRate, 1)
}

func (e *envelope) reset() {
	*e = envelope{}
}

func (e *envelope) idle() bool {
	return e.stage == envIdle
}

func (e *envelope) next(p *ADSR, sampleRate float64) float64 {
	switch e.stage {
	case envAttack:
		e.level += 1 / max(p.Attack*sampleRate, 1)
		if e.level >= 1 {
			e.level = 1
			e.stage = envDecay
		}
	case envDecay:
		e.level -= (1 - p.Sustain) / max(p.Decay*sampleRate, 1)
		if e.level <= p.Sustain {
			e.level = p.Sustain
			e.stage = envSustain
		}
	case envSustain:
		e.level = p.Sustain
	case envRelease:
		e.level -= e.step
		if e.level <= 0 {
			e.reset()
		}
	}
	return e.level
}
