package player

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/fieldsynth/fieldsynth"
	"github.com/fieldsynth/fieldsynth/synth"
	"github.com/fieldsynth/fieldsynth/tape"
)

type (
	// Model is the command surface of the looper. It validates every command
	// synchronously against its own copy of the transport and the tracks, and
	// forwards the accepted ones to the Player, which applies them at the next
	// block boundary. A Model is owned by a single goroutine, typically the UI
	// loop, and is not safe for concurrent use.
	Model struct {
		broker *Broker
		config fieldsynth.Config

		transport   tape.Transport
		tracks      [tape.NumTracks]tape.TrackInfo
		activeTrack int
		kind        fieldsynth.EngineKind
		controls    fieldsynth.ControlSet
		speed       float64

		sampleRate int
		closer     fieldsynth.CloserWaiter
		status     Status
		alerts     []Alert
	}

	// Status is a snapshot of the looper, as last reported by the player.
	Status struct {
		State        tape.State
		Engine       fieldsynth.EngineKind
		Controls     fieldsynth.ControlSet
		TapeSpeed    float64
		ActiveTrack  int
		ActiveVoices int
		Recorded     int     // frames in the current recording
		Peak         float32 // absolute peak of the last block, after the master gain
	}
)

// how long to wait for the player to hand over a finished recording
const replyTimeout = time.Second

// NewModel creates a model with the engine and tape speed of the config. No
// audio is produced until Initialize.
func NewModel(broker *Broker, config fieldsynth.Config) (*Model, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	kind, _ := fieldsynth.ParseEngineKind(config.Engine)
	m := &Model{
		broker:   broker,
		config:   config,
		kind:     kind,
		controls: fieldsynth.DefaultControls,
		speed:    config.TapeSpeed,
	}
	for i := range m.tracks {
		m.tracks[i].Volume = 1
	}
	return m, nil
}

// Initialize starts the audio output. The tracks start empty and the tape
// stopped, also when initializing again after Shutdown. The engine, the
// controls, the tape speed and the loop, mute and volume of each track carry
// over to the new output. Calling it again after a successful call does
// nothing.
func (m *Model) Initialize(ctx fieldsynth.AudioContext) error {
	if m.closer != nil {
		return nil
	}
	if ctx == nil {
		return fmt.Errorf("%w: no audio context", fieldsynth.ErrDeviceUnavailable)
	}
	config := m.config
	config.SampleRate = ctx.SampleRate()
	config.Engine = m.kind.String()
	config.TapeSpeed = m.speed
	player, err := NewPlayer(m.broker, synth.Synther{SampleRate: config.SampleRate, MaxVoices: config.MaxVoices}, config)
	if err != nil {
		return fmt.Errorf("%w: %w", fieldsynth.ErrDeviceUnavailable, err)
	}
	m.drain()
	m.resetTape()
	m.pushState()
	closer, err := ctx.Play(func(buf fieldsynth.AudioBuffer) error {
		player.Process(buf)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", fieldsynth.ErrDeviceUnavailable, err)
	}
	m.sampleRate = config.SampleRate
	m.closer = closer
	return nil
}

// Shutdown stops the audio output and waits until the last block is done.
// The recorded tracks are gone with the output; a recording in progress is
// discarded.
func (m *Model) Shutdown() error {
	if m.closer == nil {
		return nil
	}
	err := m.closer.Close()
	m.closer.Wait()
	m.closer = nil
	m.resetTape()
	return err
}

// drain throws away the messages a previous player never got, and the
// status it sent last.
func (m *Model) drain() {
	for {
		select {
		case <-m.broker.ToPlayer:
		case <-m.broker.ToModel:
		default:
			m.status = Status{}
			return
		}
	}
}

// resetTape brings the mirror in line with a fresh deck: stopped, all tracks
// empty. Track settings are kept.
func (m *Model) resetTape() {
	m.transport = tape.Transport{}
	for i := range m.tracks {
		m.tracks[i].Recording = false
		m.tracks[i].Length = 0
		m.tracks[i].Cursor = 0
	}
}

// pushState queues the settings a new player does not take from the config.
// The queue was just drained, so these always fit.
func (m *Model) pushState() {
	TrySend[any](m.broker.ToPlayer, ControlsMsg{Controls: m.controls})
	for i, t := range m.tracks {
		TrySend[any](m.broker.ToPlayer, TrackLoopMsg{Track: i, Enabled: t.Looping})
		TrySend[any](m.broker.ToPlayer, TrackMuteMsg{Track: i, Muted: t.Muted})
		TrySend[any](m.broker.ToPlayer, TrackVolumeMsg{Track: i, Volume: float64(t.Volume)})
	}
}

func (m *Model) Initialized() bool { return m.closer != nil }

// SetEngineKind switches the live synth. The change happens at the next
// block boundary: notes of the outgoing engine are released and not heard
// anymore. Recorded tracks are not affected.
func (m *Model) SetEngineKind(kind fieldsynth.EngineKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %v", fieldsynth.ErrUnknownEngine, kind)
	}
	if kind == m.kind {
		return nil
	}
	if err := m.send(EngineKindMsg{Kind: kind}); err != nil {
		return err
	}
	m.kind = kind
	return nil
}

// SetParameters sets the four controls of the live synth. Values outside
// 0..100 are clamped. If the player queue is full, the change is dropped.
func (m *Model) SetParameters(c fieldsynth.ControlSet) {
	c = c.Clamp()
	if m.send(ControlsMsg{Controls: c}) == nil {
		m.controls = c
	}
}

// SetTapeSpeed sets the playback rate of all tracks, 1 being the speed they
// were recorded at. It returns ErrInvalidSpeed unless 0 < speed <= 4.
func (m *Model) SetTapeSpeed(speed float64) error {
	if err := fieldsynth.ValidateTapeSpeed(speed); err != nil {
		return err
	}
	if err := m.send(TapeSpeedMsg{Speed: speed}); err != nil {
		return err
	}
	m.speed = speed
	return nil
}

// NoteOn starts a note. Notes played before Initialize are dropped.
func (m *Model) NoteOn(note fieldsynth.Note) {
	if m.closer != nil {
		m.send(NoteOnMsg{note})
	}
}

func (m *Model) NoteOff(pitch byte) {
	if m.closer != nil {
		m.send(NoteOffMsg{Pitch: pitch})
	}
}

// Panic silences the live synth immediately, without the release stage.
func (m *Model) Panic() {
	if m.closer != nil {
		m.send(PanicMsg{})
	}
}

// SelectTrack makes trk the target of the next recording.
func (m *Model) SelectTrack(trk int) error {
	if err := tape.ValidTrack(trk); err != nil {
		return err
	}
	m.activeTrack = trk
	return nil
}

func (m *Model) ActiveTrack() int { return m.activeTrack }

// StartRecording starts capturing the live synth into the active track,
// replacing its content. The tape keeps playing if it was playing; the
// track being recorded is not played back.
func (m *Model) StartRecording() error {
	if m.closer == nil {
		return fieldsynth.ErrNotInitialized
	}
	trk := m.activeTrack
	t := m.transport
	if err := t.StartRecording(trk); err != nil {
		return err
	}
	cfg := m.config
	cfg.SampleRate = m.sampleRate
	buf := make(fieldsynth.AudioBuffer, 0, cfg.MaxRecordFrames())
	if err := m.send(RecordMsg{Track: trk, Buffer: buf}); err != nil {
		return err
	}
	m.transport = t
	m.tracks[trk].Length = 0
	m.tracks[trk].Recording = true
	return nil
}

// StopRecording finalizes the recording and returns a copy of the captured
// audio, which is now the content of the track. A recording of zero frames
// leaves the track empty and returns nil.
func (m *Model) StopRecording() (fieldsynth.AudioBuffer, error) {
	t := m.transport
	trk, err := t.StopRecording()
	if err != nil {
		return nil, err
	}
	return m.finishRecording(t, trk, StopRecordMsg{})
}

// PlayTape starts the playback of all tracks from the start. It does nothing
// if the tape is already playing.
func (m *Model) PlayTape() {
	if m.transport.Playing() {
		return
	}
	if m.send(IsPlayingMsg{true}) == nil {
		m.transport.Play()
	}
}

// StopTape stops the playback. A recording in progress continues.
func (m *Model) StopTape() {
	if !m.transport.Playing() {
		return
	}
	if m.send(IsPlayingMsg{false}) == nil {
		m.transport.Stop()
	}
}

// StopEverything stops the playback, releases all the notes and finalizes the
// recording, if there is one.
func (m *Model) StopEverything() error {
	t := m.transport
	trk, wasRecording := t.StopAll()
	if !wasRecording {
		if err := m.send(StopAllMsg{}); err != nil {
			return err
		}
		m.transport = t
		return nil
	}
	_, err := m.finishRecording(t, trk, StopAllMsg{})
	return err
}

// finishRecording sends msg, which must be a StopRecordMsg or a StopAllMsg,
// and waits for the player to hand over the recording. t is the transport
// after the stop; it is committed once the player has the message.
func (m *Model) finishRecording(t tape.Transport, trk int, msg any) (fieldsynth.AudioBuffer, error) {
	if m.closer == nil {
		return nil, fieldsynth.ErrNotInitialized
	}
	reply := make(chan RecordingResult, 1)
	switch msg.(type) {
	case StopRecordMsg:
		msg = StopRecordMsg{Reply: reply}
	case StopAllMsg:
		msg = StopAllMsg{Reply: reply}
	}
	if err := m.send(msg); err != nil {
		return nil, fmt.Errorf("could not stop recording track %d: %w", trk, err)
	}
	m.transport = t
	m.tracks[trk].Recording = false
	res, ok := TimeoutReceive(reply, replyTimeout)
	if !ok {
		return nil, fmt.Errorf("%w: recording of track %d was not finalized in time", fieldsynth.ErrDeviceUnavailable, trk)
	}
	if !res.Ok {
		return nil, fieldsynth.ErrNotRecording
	}
	m.tracks[trk].Length = len(res.Buffer)
	m.tracks[trk].Cursor = 0
	return res.Buffer.Copy(), nil
}

func (m *Model) SetTrackLoop(trk int, enabled bool) error {
	if err := tape.ValidTrack(trk); err != nil {
		return err
	}
	if err := m.send(TrackLoopMsg{Track: trk, Enabled: enabled}); err != nil {
		return err
	}
	m.tracks[trk].Looping = enabled
	return nil
}

// ClearTrack empties the track and turns its looping off.
func (m *Model) ClearTrack(trk int) error {
	if err := tape.ValidTrack(trk); err != nil {
		return err
	}
	if err := m.send(ClearTrackMsg{Track: trk}); err != nil {
		return err
	}
	m.tracks[trk].Length = 0
	m.tracks[trk].Looping = false
	m.tracks[trk].Cursor = 0
	return nil
}

func (m *Model) SetTrackMute(trk int, muted bool) error {
	if err := tape.ValidTrack(trk); err != nil {
		return err
	}
	if err := m.send(TrackMuteMsg{Track: trk, Muted: muted}); err != nil {
		return err
	}
	m.tracks[trk].Muted = muted
	return nil
}

// SetTrackVolume sets the playback gain of the track, clamped to 0..1.
func (m *Model) SetTrackVolume(trk int, volume float64) error {
	if err := tape.ValidTrack(trk); err != nil {
		return err
	}
	if math.IsNaN(volume) {
		volume = 0
	}
	volume = min(max(volume, 0), 1)
	if err := m.send(TrackVolumeMsg{Track: trk, Volume: volume}); err != nil {
		return err
	}
	m.tracks[trk].Volume = float32(volume)
	return nil
}

// Tracks returns a snapshot of the four tracks. Cursors are not tracked on
// this side and are reported as zero.
func (m *Model) Tracks() [tape.NumTracks]tape.TrackInfo {
	return m.tracks
}

func (m *Model) State() tape.State { return m.transport.State() }

// Playing reports whether the tape is playing, which it may also do while
// recording.
func (m *Model) Playing() bool { return m.transport.Playing() }

// Status drains the messages from the player and returns the latest status.
// Alerts are logged and kept until TakeAlerts.
func (m *Model) Status() Status {
	for {
		select {
		case msg := <-m.broker.ToModel:
			if msg.HasStatus {
				m.status.ActiveVoices = msg.ActiveVoices
				m.status.Recorded = msg.Recorded
				m.status.Peak = msg.Peak
			}
			if a, ok := msg.Data.(Alert); ok {
				log.Printf("%v: %s: %s", a.Priority, a.Name, a.Message)
				m.alerts = append(m.alerts, a)
			}
		default:
			m.status.State = m.transport.State()
			m.status.Engine = m.kind
			m.status.Controls = m.controls
			m.status.TapeSpeed = m.speed
			m.status.ActiveTrack = m.activeTrack
			return m.status
		}
	}
}

// TakeAlerts returns the alerts received so far and forgets them.
func (m *Model) TakeAlerts() []Alert {
	ret := m.alerts
	m.alerts = nil
	return ret
}

// send forwards msg to the player. Before Initialize there is no player and
// nothing is queued; Initialize hands the player the whole state instead.
func (m *Model) send(msg any) error {
	if m.closer == nil {
		return nil
	}
	if !TrySend(m.broker.ToPlayer, msg) {
		log.Printf("player queue full, dropped %T", msg)
		return fmt.Errorf("%w: dropped %T", fieldsynth.ErrQueueFull, msg)
	}
	return nil
}
