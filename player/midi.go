package player

import (
	"github.com/fieldsynth/fieldsynth"
	"gitlab.com/gomidi/midi/v2"
)

// HandleMIDI plays note on and note off messages on the live synth, on any
// channel. A note on with zero velocity counts as a note off. It reports
// whether the message was used; everything else is ignored.
func (m *Model) HandleMIDI(msg midi.Message) bool {
	var channel, key, velocity uint8
	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		m.NoteOn(fieldsynth.Note{Pitch: key, Velocity: velocity})
	case msg.GetNoteEnd(&channel, &key):
		m.NoteOff(key)
	default:
		return false
	}
	return true
}
