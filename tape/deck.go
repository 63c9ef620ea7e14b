package tape

import (
	"math"

	"github.com/fieldsynth/fieldsynth"
	"github.com/viterin/vek/vek32"
)

type (
	// Deck owns the sample buffers of the four tracks. It is owned by the
	// audio thread: the command surface never touches it directly, but sends
	// messages which the player applies between blocks.
	Deck struct {
		tracks      [NumTracks]track
		record      fieldsynth.AudioBuffer
		recordTrack int
		recording   bool
		scratch     fieldsynth.AudioBuffer
	}

	track struct {
		buffer  fieldsynth.AudioBuffer // frozen once assigned
		cursor  float64
		looping bool
		muted   bool
		volume  float32
	}

	// TrackInfo is a read-only snapshot of a track.
	TrackInfo struct {
		Length    int // in frames; 0 when the track has no buffer
		Looping   bool
		Muted     bool
		Recording bool
		Volume    float32
		Cursor    float64
	}
)

const NumTracks = 4

// NewDeck returns a deck with four empty tracks at full volume. blockSize is
// the largest block Mix is expected to be called with; larger blocks work,
// but allocate.
func NewDeck(blockSize int) *Deck {
	d := &Deck{scratch: make(fieldsynth.AudioBuffer, blockSize)}
	for i := range d.tracks {
		d.tracks[i].volume = 1
	}
	return d
}

// BeginRecording starts recording into buf, which should have zero length
// and the capacity of the longest allowed recording: Append never grows it.
// The previous buffer of the track is dropped right away.
func (d *Deck) BeginRecording(trk int, buf fieldsynth.AudioBuffer) error {
	if err := ValidTrack(trk); err != nil {
		return err
	}
	d.record = buf[:0]
	d.recordTrack = trk
	d.recording = true
	d.tracks[trk].buffer = nil
	d.tracks[trk].cursor = 0
	return nil
}

// Append taps a block of live signal into the recording. It returns the
// number of frames that did not fit and were dropped.
func (d *Deck) Append(block fieldsynth.AudioBuffer) (dropped int) {
	if !d.recording {
		return 0
	}
	n := min(cap(d.record)-len(d.record), len(block))
	d.record = append(d.record, block[:n]...)
	return len(block) - n
}

// EndRecording freezes the recorded buffer and assigns it to the track. The
// returned buffer is shared with the deck and must not be modified. A
// recording of zero frames leaves the track without a buffer and returns nil.
func (d *Deck) EndRecording() (trk int, buf fieldsynth.AudioBuffer, ok bool) {
	if !d.recording {
		return 0, nil, false
	}
	d.recording = false
	n := len(d.record)
	if n > 0 {
		buf = d.record[:n:n]
	}
	d.record = nil
	d.tracks[d.recordTrack].buffer = buf
	d.tracks[d.recordTrack].cursor = 0
	return d.recordTrack, buf, true
}

// Clear drops the buffer of the track and turns its looping off. Clearing an
// empty track does nothing.
func (d *Deck) Clear(trk int) error {
	if err := ValidTrack(trk); err != nil {
		return err
	}
	t := &d.tracks[trk]
	t.buffer = nil
	t.cursor = 0
	t.looping = false
	return nil
}

func (d *Deck) SetLoop(trk int, enabled bool) error {
	if err := ValidTrack(trk); err != nil {
		return err
	}
	d.tracks[trk].looping = enabled
	return nil
}

func (d *Deck) SetMute(trk int, muted bool) error {
	if err := ValidTrack(trk); err != nil {
		return err
	}
	d.tracks[trk].muted = muted
	return nil
}

// SetVolume sets the playback gain of the track, clamped to [0, 1].
func (d *Deck) SetVolume(trk int, volume float64) error {
	if err := ValidTrack(trk); err != nil {
		return err
	}
	if math.IsNaN(volume) {
		volume = 0
	}
	d.tracks[trk].volume = float32(min(max(volume, 0), 1))
	return nil
}

// Rewind moves the play cursors of all tracks to the start.
func (d *Deck) Rewind() {
	for i := range d.tracks {
		d.tracks[i].cursor = 0
	}
}

// Info returns a snapshot of the track. trk must be valid.
func (d *Deck) Info(trk int) TrackInfo {
	t := &d.tracks[trk]
	return TrackInfo{
		Length:    len(t.buffer),
		Looping:   t.looping,
		Muted:     t.muted,
		Recording: d.recording && d.recordTrack == trk,
		Volume:    t.volume,
		Cursor:    t.cursor,
	}
}

// Recorded returns the number of frames recorded so far.
func (d *Deck) Recorded() int {
	return len(d.record)
}

// Mix adds the playback of every audible track into out, advancing each play
// cursor by speed frames per output frame. Tracks that are muted, empty or
// being recorded are skipped.
func (d *Deck) Mix(out fieldsynth.AudioBuffer, speed float64) {
	if !(speed > 0) || len(out) == 0 {
		return
	}
	if len(d.scratch) < len(out) {
		d.scratch = make(fieldsynth.AudioBuffer, len(out))
	}
	tmp := d.scratch[:len(out)]
	for i := range d.tracks {
		t := &d.tracks[i]
		if t.muted || len(t.buffer) == 0 || (d.recording && d.recordTrack == i) {
			continue
		}
		if !t.render(tmp, speed) {
			continue
		}
		flat := tmp.Flat()
		if t.volume != 1 {
			vek32.MulNumber_Inplace(flat, t.volume)
		}
		vek32.Add_Inplace(out.Flat(), flat)
	}
}

// render reads the next len(out) frames of the track into out. It returns
// false, leaving out untouched, if the track has played to its end and is not
// looping.
func (t *track) render(out fieldsynth.AudioBuffer, speed float64) bool {
	n := float64(len(t.buffer))
	if t.cursor >= n {
		if !t.looping {
			return false
		}
		t.cursor = math.Mod(t.cursor, n)
	}
	for j := range out {
		if t.cursor >= n {
			if !t.looping {
				// hold past the end
				out[j] = [2]float32{}
				continue
			}
			t.cursor = math.Mod(t.cursor, n)
		}
		out[j] = t.sample(t.cursor)
		t.cursor += speed
	}
	return true
}

// sample interpolates linearly between the two frames around pos. At integer
// positions it returns the stored frame exactly.
func (t *track) sample(pos float64) [2]float32 {
	i := int(pos)
	a := t.buffer[i]
	frac := float32(pos - float64(i))
	if frac == 0 {
		return a
	}
	var b [2]float32
	switch {
	case i+1 < len(t.buffer):
		b = t.buffer[i+1]
	case t.looping:
		b = t.buffer[0]
	default:
		b = a
	}
	return [2]float32{a[0] + (b[0]-a[0])*frac, a[1] + (b[1]-a[1])*frac}
}
