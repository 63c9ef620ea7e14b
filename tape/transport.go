package tape

import (
	"fmt"

	"github.com/fieldsynth/fieldsynth"
)

type (
	// State is the global transport state. Recording takes precedence over
	// Playing: tape playback may continue while a track is being recorded.
	State int

	// Transport is the record/play state machine. The zero value is a
	// stopped transport. Both the command surface and the audio thread keep
	// a Transport; since the command surface only forwards commands that
	// succeeded on its own copy, the two stay in the same state.
	Transport struct {
		playing     bool
		recording   bool
		recordTrack int
	}
)

const (
	Stopped State = iota
	Playing
	Recording
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Recording:
		return "recording"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (t *Transport) State() State {
	switch {
	case t.recording:
		return Recording
	case t.playing:
		return Playing
	}
	return Stopped
}

func (t *Transport) Playing() bool   { return t.playing }
func (t *Transport) Recording() bool { return t.recording }

// RecordTrack returns the track being recorded, if any.
func (t *Transport) RecordTrack() (int, bool) {
	return t.recordTrack, t.recording
}

// StartRecording makes track the record target. Recording replaces whatever
// the track held before.
func (t *Transport) StartRecording(track int) error {
	if err := ValidTrack(track); err != nil {
		return err
	}
	if t.recording {
		return fmt.Errorf("%w: track %d", fieldsynth.ErrAlreadyRecording, t.recordTrack)
	}
	t.recording = true
	t.recordTrack = track
	return nil
}

// StopRecording ends the recording and returns the track that was recorded.
func (t *Transport) StopRecording() (int, error) {
	if !t.recording {
		return 0, fieldsynth.ErrNotRecording
	}
	t.recording = false
	return t.recordTrack, nil
}

// Play starts tape playback. It returns false if the tape was already
// playing.
func (t *Transport) Play() bool {
	if t.playing {
		return false
	}
	t.playing = true
	return true
}

// Stop stops tape playback. It returns false if the tape was not playing.
func (t *Transport) Stop() bool {
	if !t.playing {
		return false
	}
	t.playing = false
	return true
}

// StopAll returns the transport to Stopped from any state. If a track was
// being recorded, it is returned with wasRecording set, and the caller must
// finalize it exactly like after StopRecording.
func (t *Transport) StopAll() (track int, wasRecording bool) {
	t.playing = false
	if t.recording {
		t.recording = false
		return t.recordTrack, true
	}
	return 0, false
}

// ValidTrack returns ErrInvalidTrack unless 0 <= track < NumTracks.
func ValidTrack(track int) error {
	if track < 0 || track >= NumTracks {
		return fmt.Errorf("%w: %d", fieldsynth.ErrInvalidTrack, track)
	}
	return nil
}
