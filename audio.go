package fieldsynth

import "unsafe"

type (
	// AudioBuffer is a buffer of stereo audio samples of variable length,
	// each sample represented by [2]float32. [0] is left channel, [1] is
	// right.
	AudioBuffer [][2]float32

	// AudioContext represents the low-level audio device. Play starts
	// pulling blocks from render until the returned CloserWaiter is closed.
	// Opening the device may fail, in which case no audio path is started.
	AudioContext interface {
		Play(render func(buf AudioBuffer) error) (CloserWaiter, error)
		SampleRate() int
	}

	// CloserWaiter wraps a running audio stream: Close stops it, Wait
	// blocks until the device has stopped pulling blocks.
	CloserWaiter interface {
		Close() error
		Wait()
	}
)

// Flat returns the buffer as interleaved samples (L, R, L, R...), sharing the
// underlying memory. Useful for running vectorized operations on the buffer.
func (b AudioBuffer) Flat() []float32 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice(&b[0][0], 2*len(b))
}

// Fill sets all the samples of both channels to v.
func (b AudioBuffer) Fill(v float32) {
	for i := range b {
		b[i] = [2]float32{v, v}
	}
}

// Copy makes a deep copy of the buffer.
func (b AudioBuffer) Copy() AudioBuffer {
	if b == nil {
		return nil
	}
	ret := make(AudioBuffer, len(b))
	copy(ret, b)
	return ret
}

// Silent reports whether every sample in the buffer is exactly zero.
func (b AudioBuffer) Silent() bool {
	for _, s := range b {
		if s[0] != 0 || s[1] != 0 {
			return false
		}
	}
	return true
}
