package player

import "github.com/fieldsynth/fieldsynth"

// Messages from the model to the player. They are applied in the order they
// were sent, all of them at a block boundary.
type (
	EngineKindMsg struct {
		Kind fieldsynth.EngineKind
	}

	ControlsMsg struct {
		Controls fieldsynth.ControlSet
	}

	NoteOnMsg struct {
		fieldsynth.Note
	}

	NoteOffMsg struct {
		Pitch byte
	}

	TapeSpeedMsg struct {
		Speed float64
	}

	// RecordMsg starts recording the live signal into Track. Buffer has zero
	// length and the capacity of the longest recording, so the audio thread
	// never needs to allocate.
	RecordMsg struct {
		Track  int
		Buffer fieldsynth.AudioBuffer
	}

	// StopRecordMsg finalizes the recording. The player answers on Reply,
	// which must have room for one value.
	StopRecordMsg struct {
		Reply chan<- RecordingResult
	}

	IsPlayingMsg struct {
		bool
	}

	// StopAllMsg stops the tape, releases all notes, and finalizes the
	// recording if there is one, answering on Reply like StopRecordMsg.
	StopAllMsg struct {
		Reply chan<- RecordingResult
	}

	TrackLoopMsg struct {
		Track   int
		Enabled bool
	}

	TrackMuteMsg struct {
		Track int
		Muted bool
	}

	TrackVolumeMsg struct {
		Track  int
		Volume float64
	}

	ClearTrackMsg struct {
		Track int
	}

	// PanicMsg silences the synth immediately, without release.
	PanicMsg struct{}

	// RecordingResult is a finalized recording. Buffer is nil if no frames
	// were captured; Ok is false if there was no recording to finalize.
	RecordingResult struct {
		Track  int
		Buffer fieldsynth.AudioBuffer
		Ok     bool
	}

	// Alert is a problem noticed on the audio thread, reported to the model.
	Alert struct {
		Name     string
		Message  string
		Priority AlertPriority
	}

	AlertPriority int
)

const (
	Info AlertPriority = iota
	Warning
	Error
)

func (p AlertPriority) String() string {
	switch p {
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "info"
}
