package synth

import "math"

// svf is a topology-preserving transform state variable filter (Simper).
type svf struct {
	ic1eq, ic2eq float64
}

type svfCoeffs struct {
	a1, a2, a3 float64
}

func makeSVFCoeffs(cutoff, q, sampleRate float64) svfCoeffs {
	ratio := min(max(cutoff/sampleRate, 0), 0.499)
	g := math.Tan(math.Pi * ratio)
	k := 1 / max(q, 1e-6)
	a1 := 1 / (1 + g*(g+k))
	return svfCoeffs{a1: a1, a2: g * a1, a3: g * g * a1}
}

// process filters one sample, returning the lowpass and bandpass outputs.
func (s *svf) process(c *svfCoeffs, x float64) (lp, bp float64) {
	v3 := x - s.ic2eq
	v1 := c.a1*s.ic1eq + c.a2*v3
	v2 := s.ic2eq + c.a2*s.ic1eq + c.a3*v3
	s.ic1eq = 2*v1 - s.ic1eq
	s.ic2eq = 2*v2 - s.ic2eq
	return v2, v1
}

func (s *svf) lowpass(c *svfCoeffs, x float64) float64 {
	lp, _ := s.process(c, x)
	return lp
}

// polyBLEP reduces aliasing at waveform discontinuities.
func polyBLEP(t, dt float64) float64 {
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}

func saw(phase, dt float64) float64 {
	return 2*phase - 1 - polyBLEP(phase, dt)
}

func square(phase, dt float64) float64 {
	v := -1.0
	if phase < 0.5 {
		v = 1
	}
	v += polyBLEP(phase, dt)
	v -= polyBLEP(math.Mod(phase+0.5, 1), dt)
	return v
}

func triangle(phase float64) float64 {
	return 2*math.Abs(2*phase-1) - 1
}

func sine(phase float64) float64 {
	return math.Sin(2 * math.Pi * phase)
}

// advance moves a phase in [0, 1) forward by dt, wrapping around.
func advance(phase, dt float64) float64 {
	phase += dt
	if phase >= 1 {
		phase -= math.Floor(phase)
	}
	return phase
}

func noteFreq(note byte) float64 {
	return 440 * math.Pow(2, (float64(note)-69)/12)
}

func cents(c float64) float64 {
	return math.Pow(2, c/1200)
}

// noise is a xorshift white noise generator with a fixed seed, so that
// renders are reproducible.
type noise struct {
	state uint32
}

func (n *noise) next() float64 {
	if n.state == 0 {
		n.state = 0x2545f491
	}
	n.state ^= n.state << 13
	n.state ^= n.state >> 17
	n.state ^= n.state << 5
	return float64(n.state)/float64(math.MaxUint32)*2 - 1
}
