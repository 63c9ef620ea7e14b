package oto

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/fieldsynth/fieldsynth"
)

type (
	// OtoContext plays audio through the default output device.
	OtoContext struct {
		ctx        *oto.Context
		sampleRate int
		blockSize  int
	}

	// OtoStream is a running output. The device pulls bytes from Read, which
	// renders one block at a time, keeping the frames that did not fit for
	// the next call.
	OtoStream struct {
		player    *oto.Player
		render    atomic.Pointer[renderFunc]
		block     fieldsynth.AudioBuffer
		pos       int // frames of block already handed to the device
		closeOnce sync.Once
		done      chan struct{}
	}

	renderFunc = func(buf fieldsynth.AudioBuffer) error
)

const otoBufferSize = 40 * time.Millisecond

// NewContext opens the default output device. Only one context can exist per
// process.
func NewContext(sampleRate, blockSize int) (*OtoContext, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   otoBufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: cannot create oto context: %w", fieldsynth.ErrDeviceUnavailable, err)
	}
	<-ready
	return &OtoContext{ctx: context, sampleRate: sampleRate, blockSize: blockSize}, nil
}

func (c *OtoContext) SampleRate() int { return c.sampleRate }

// Play starts pulling blocks from render until the returned stream is
// closed. If render returns an error, the stream goes silent.
func (c *OtoContext) Play(render func(buf fieldsynth.AudioBuffer) error) (fieldsynth.CloserWaiter, error) {
	s := newStream(c.blockSize, render)
	s.player = c.ctx.NewPlayer(s)
	s.player.SetBufferSize(2 * c.blockSize * bytesPerFrame)
	s.player.Play()
	if err := c.ctx.Err(); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %w", fieldsynth.ErrDeviceUnavailable, err)
	}
	return s, nil
}

func newStream(blockSize int, render renderFunc) *OtoStream {
	s := &OtoStream{
		block: make(fieldsynth.AudioBuffer, blockSize),
		pos:   blockSize,
		done:  make(chan struct{}),
	}
	s.render.Store(&render)
	return s
}

// Read implements io.Reader for the oto player.
func (s *OtoStream) Read(p []byte) (int, error) {
	render := s.render.Load()
	n := 0
	for render != nil && len(p)-n >= bytesPerFrame {
		if s.pos == len(s.block) {
			if err := (*render)(s.block); err != nil {
				s.render.Store(nil)
				break
			}
			s.pos = 0
		}
		frames := encodeFloat32LE(p[n:], s.block[s.pos:])
		s.pos += frames
		n += frames * bytesPerFrame
	}
	clear(p[n:])
	return len(p), nil
}

// Close stops the stream. A block being rendered while Close is called is
// discarded.
func (s *OtoStream) Close() (err error) {
	s.closeOnce.Do(func() {
		s.render.Store(nil)
		if s.player != nil {
			if err = s.player.Close(); err != nil {
				err = fmt.Errorf("cannot close oto player: %w", err)
			}
		}
		close(s.done)
	})
	return err
}

func (s *OtoStream) Wait() {
	<-s.done
}
