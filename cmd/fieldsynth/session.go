package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/fieldsynth/fieldsynth"
	"github.com/fieldsynth/fieldsynth/player"
	"github.com/fieldsynth/fieldsynth/tape"
	"gitlab.com/gomidi/midi/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type (
	// session turns key presses into model commands. Terminals do not report
	// key releases, so a note is released once its key has not been seen
	// repeating for noteHold.
	session struct {
		model   *player.Model
		keyMap  map[byte]string
		octave  int
		playing map[byte]heldNote // by key
	}

	heldNote struct {
		pitch    byte
		deadline time.Time
	}
)

const (
	noteHold    = 400 * time.Millisecond
	controlStep = 5
	speedStep   = 0.1
	volumeStep  = 0.1
	defaultOct  = 4
	maxOctave   = 9
)

var (
	title = cases.Title(language.English)
	upper = cases.Upper(language.English)
)

func newSession(model *player.Model, keyMap map[byte]string) *session {
	return &session{model: model, keyMap: keyMap, octave: defaultOct, playing: map[byte]heldNote{}}
}

// handleKey runs the action bound to the key. It returns false when the
// action asks to quit.
func (s *session) handleKey(b byte, now time.Time) bool {
	action, ok := s.keyMap[b]
	if !ok {
		return true
	}
	m := s.model
	status := m.Status()
	var err error
	switch action {
	case "Quit":
		return false
	case "OctaveAdd":
		s.octave = min(s.octave+1, maxOctave)
	case "OctaveSubtract":
		s.octave = max(s.octave-1, 0)
	case "EngineNext":
		s.releaseAll()
		err = m.SetEngineKind((status.Engine + 1) % fieldsynth.NumEngineKinds)
	case "EnginePrevious":
		s.releaseAll()
		err = m.SetEngineKind((status.Engine + fieldsynth.NumEngineKinds - 1) % fieldsynth.NumEngineKinds)
	case "BlueAdd", "BlueSubtract", "GreenAdd", "GreenSubtract", "WhiteAdd", "WhiteSubtract", "RedAdd", "RedSubtract":
		m.SetParameters(adjustControls(status.Controls, action))
	case "SelectTrack0", "SelectTrack1", "SelectTrack2", "SelectTrack3":
		trk, _ := strconv.Atoi(action[len("SelectTrack"):])
		err = m.SelectTrack(trk)
	case "ToggleRecording":
		if status.State == tape.Recording {
			var buf fieldsynth.AudioBuffer
			buf, err = m.StopRecording()
			if err == nil {
				log.Printf("recorded %d frames into track %d", len(buf), status.ActiveTrack+1)
			}
		} else {
			err = m.StartRecording()
		}
	case "TogglePlaying":
		if m.Playing() {
			m.StopTape()
		} else {
			m.PlayTape()
		}
	case "ToggleLoop":
		err = m.SetTrackLoop(status.ActiveTrack, !m.Tracks()[status.ActiveTrack].Looping)
	case "ToggleMute":
		err = m.SetTrackMute(status.ActiveTrack, !m.Tracks()[status.ActiveTrack].Muted)
	case "ClearTrack":
		err = m.ClearTrack(status.ActiveTrack)
	case "VolumeAdd":
		err = m.SetTrackVolume(status.ActiveTrack, float64(m.Tracks()[status.ActiveTrack].Volume)+volumeStep)
	case "VolumeSubtract":
		err = m.SetTrackVolume(status.ActiveTrack, float64(m.Tracks()[status.ActiveTrack].Volume)-volumeStep)
	case "SpeedAdd":
		err = m.SetTapeSpeed(min(status.TapeSpeed+speedStep, fieldsynth.MaxTapeSpeed))
	case "SpeedSubtract":
		err = m.SetTapeSpeed(max(status.TapeSpeed-speedStep, speedStep))
	case "SpeedReset":
		err = m.SetTapeSpeed(1)
	case "StopEverything":
		s.releaseAll()
		err = m.StopEverything()
	case "Panic":
		s.playing = map[byte]heldNote{}
		m.Panic()
	default:
		if strings.HasPrefix(action, "Note") {
			val, convErr := strconv.Atoi(action[len("Note"):])
			if convErr != nil {
				break
			}
			s.noteKey(b, val, now)
		}
	}
	if err != nil {
		log.Printf("%s: %v", action, err)
	}
	return true
}

// noteKey starts a note for the key, or keeps the note playing if the key is
// repeating.
func (s *session) noteKey(b byte, val int, now time.Time) {
	if n, ok := s.playing[b]; ok {
		n.deadline = now.Add(noteHold)
		s.playing[b] = n
		return
	}
	pitch := 12*(s.octave+1) + val - 12
	if pitch < 0 || pitch > 127 {
		return
	}
	s.model.HandleMIDI(midi.NoteOn(0, uint8(pitch), fieldsynth.DefaultVelocity))
	s.playing[b] = heldNote{pitch: byte(pitch), deadline: now.Add(noteHold)}
}

// expire releases the notes whose keys have stopped repeating.
func (s *session) expire(now time.Time) {
	for b, n := range s.playing {
		if now.After(n.deadline) {
			s.model.HandleMIDI(midi.NoteOff(0, n.pitch))
			delete(s.playing, b)
		}
	}
}

func (s *session) releaseAll() {
	for b, n := range s.playing {
		s.model.HandleMIDI(midi.NoteOff(0, n.pitch))
		delete(s.playing, b)
	}
}

func adjustControls(c fieldsynth.ControlSet, action string) fieldsynth.ControlSet {
	step := controlStep
	if strings.HasSuffix(action, "Subtract") {
		step = -controlStep
	}
	switch {
	case strings.HasPrefix(action, "Blue"):
		c.Blue += step
	case strings.HasPrefix(action, "Green"):
		c.Green += step
	case strings.HasPrefix(action, "White"):
		c.White += step
	case strings.HasPrefix(action, "Red"):
		c.Red += step
	}
	return c.Clamp()
}

// statusLine renders the state of the looper as a single line of text.
func (s *session) statusLine(sampleRate int) string {
	st := s.model.Status()
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s o%d b%3d g%3d w%3d r%3d | %-9s x%.1f |",
		upper.String(st.Engine.String()), s.octave,
		st.Controls.Blue, st.Controls.Green, st.Controls.White, st.Controls.Red,
		title.String(st.State.String()), st.TapeSpeed)
	for i, info := range s.model.Tracks() {
		mark := ' '
		if i == st.ActiveTrack {
			mark = '>'
		}
		flags := []byte("---")
		if info.Recording {
			flags[0] = 'R'
		}
		if info.Looping {
			flags[1] = 'L'
		}
		if info.Muted {
			flags[2] = 'M'
		}
		length := float64(info.Length) / float64(sampleRate)
		if info.Recording {
			length = float64(st.Recorded) / float64(sampleRate)
		}
		fmt.Fprintf(&b, " %c%d %s %4.1fs %3.0f%%", mark, i+1, flags, length, info.Volume*100)
	}
	fmt.Fprintf(&b, " | v%d %s", st.ActiveVoices, meter(st.Peak))
	return b.String()
}

func meter(peak float32) string {
	const width = 8
	n := int(peak*width + 0.5)
	n = min(max(n, 0), width)
	return "[" + strings.Repeat("#", n) + strings.Repeat(" ", width-n) + "]"
}
