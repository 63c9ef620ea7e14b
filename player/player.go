package player

import (
	"fmt"
	"math"

	"github.com/fieldsynth/fieldsynth"
	"github.com/fieldsynth/fieldsynth/synth"
	"github.com/fieldsynth/fieldsynth/tape"
	"github.com/viterin/vek/vek32"
)

type (
	// Player is the audio thread side of the looper. It owns the synths and
	// the tape deck, and is only ever touched from Process. The Model talks to
	// it through the Broker.
	Player struct {
		broker *Broker

		synths   [fieldsynth.NumEngineKinds]synth.Synth
		synth    synth.Synth // the active one
		controls fieldsynth.ControlSet

		deck      *tape.Deck
		transport tape.Transport
		speed     float64
		gain      float32

		lastLive     [2]float32 // last frame of the live signal, before the tape mix
		declick      [2]float32
		declickDecay float32
		overflowed   bool
	}
)

// time constant of the ramp which bridges the live signal from the last frame
// of an outgoing engine to zero
const declickTime = 0.0005

// below this the declick ramp is cut to zero
const declickFloor = 1e-5

// NewPlayer creates a player with all the synths preallocated. The active
// engine, tape speed and master gain are taken from the config.
func NewPlayer(broker *Broker, synther synth.Synther, config fieldsynth.Config) (*Player, error) {
	kind, err := fieldsynth.ParseEngineKind(config.Engine)
	if err != nil {
		return nil, err
	}
	synths, err := synther.All()
	if err != nil {
		return nil, fmt.Errorf("could not create synths: %w", err)
	}
	speed := config.TapeSpeed
	if fieldsynth.ValidateTapeSpeed(speed) != nil {
		speed = 1
	}
	p := &Player{
		broker:       broker,
		synths:       synths,
		synth:        synths[kind],
		controls:     fieldsynth.DefaultControls,
		deck:         tape.NewDeck(config.BlockSize),
		speed:        speed,
		gain:         float32(config.MasterGain),
		declickDecay: float32(math.Exp(-1 / (declickTime * float64(synther.SampleRate)))),
	}
	return p, nil
}

// Process renders the next block of audio into buffer. All the messages
// waiting in the broker are applied first, in order, so that every change
// takes effect exactly at the block boundary.
func (p *Player) Process(buffer fieldsynth.AudioBuffer) {
	p.processMessages()
	if len(buffer) == 0 {
		return
	}
	p.synth.Render(buffer)
	p.applyDeclick(buffer)
	p.lastLive = buffer[len(buffer)-1]
	if p.transport.Recording() {
		if dropped := p.deck.Append(buffer); dropped > 0 && !p.overflowed {
			p.overflowed = true
			p.alert(Warning, "RecordingFull", "recording reached its maximum length; the rest is not recorded")
		}
	}
	if p.transport.Playing() {
		p.deck.Mix(buffer, p.speed)
	}
	flat := buffer.Flat()
	vek32.MulNumber_Inplace(flat, p.gain)
	vek32.MinimumNumber_Inplace(flat, 1)
	vek32.MaximumNumber_Inplace(flat, -1)
	peak := max(vek32.Max(flat), -vek32.Min(flat))
	p.send(MsgToModel{
		HasStatus:    true,
		State:        p.transport.State(),
		ActiveVoices: p.synth.Active(),
		Recorded:     p.deck.Recorded(),
		Peak:         peak,
	})
}

func (p *Player) processMessages() {
loop:
	for { // process new message
		select {
		case msg := <-p.broker.ToPlayer:
			switch m := msg.(type) {
			case EngineKindMsg:
				p.switchEngine(m.Kind)
			case ControlsMsg:
				p.controls = m.Controls.Clamp()
				p.synth.Update(synth.MapParameters(p.controls, p.synth.Kind()))
			case NoteOnMsg:
				p.synth.Trigger(m.Note)
			case NoteOffMsg:
				p.synth.Release(m.Pitch)
			case TapeSpeedMsg:
				if fieldsynth.ValidateTapeSpeed(m.Speed) == nil {
					p.speed = m.Speed
				}
			case RecordMsg:
				if err := p.transport.StartRecording(m.Track); err != nil {
					p.alert(Error, "RecordFailed", err.Error())
					break
				}
				p.deck.BeginRecording(m.Track, m.Buffer)
				p.overflowed = false
			case StopRecordMsg:
				res := RecordingResult{}
				if _, err := p.transport.StopRecording(); err == nil {
					res.Track, res.Buffer, res.Ok = p.deck.EndRecording()
				}
				TrySend(m.Reply, res)
			case IsPlayingMsg:
				if m.bool {
					if p.transport.Play() {
						p.deck.Rewind()
					}
				} else {
					p.transport.Stop()
				}
			case StopAllMsg:
				res := RecordingResult{}
				if _, wasRecording := p.transport.StopAll(); wasRecording {
					res.Track, res.Buffer, res.Ok = p.deck.EndRecording()
				}
				p.synth.ReleaseAll()
				TrySend(m.Reply, res)
			case TrackLoopMsg:
				p.deck.SetLoop(m.Track, m.Enabled)
			case TrackMuteMsg:
				p.deck.SetMute(m.Track, m.Muted)
			case TrackVolumeMsg:
				p.deck.SetVolume(m.Track, m.Volume)
			case ClearTrackMsg:
				p.deck.Clear(m.Track)
			case PanicMsg:
				p.synth.Reset()
				p.declick = [2]float32{}
			default:
				// ignore unknown messages
			}
		default:
			break loop
		}
	}
}

// switchEngine makes kind the active engine. The outgoing synth releases its
// voices and is no longer rendered; the incoming one starts from silence with
// the current controls mapped through its own curves. The jump in the live
// signal is covered by a short ramp from the last rendered frame to zero.
func (p *Player) switchEngine(kind fieldsynth.EngineKind) {
	if !kind.Valid() || kind == p.synth.Kind() {
		return
	}
	p.synth.ReleaseAll()
	p.declick = p.lastLive
	next := p.synths[kind]
	next.Reset()
	next.Update(synth.MapParameters(p.controls, kind))
	p.synth = next
}

func (p *Player) applyDeclick(buffer fieldsynth.AudioBuffer) {
	if p.declick == [2]float32{} {
		return
	}
	for j := range buffer {
		p.declick[0] *= p.declickDecay
		p.declick[1] *= p.declickDecay
		if abs(p.declick[0]) < declickFloor && abs(p.declick[1]) < declickFloor {
			p.declick = [2]float32{}
			return
		}
		buffer[j][0] += p.declick[0]
		buffer[j][1] += p.declick[1]
	}
}

func (p *Player) alert(priority AlertPriority, name, message string) {
	p.send(MsgToModel{Data: Alert{Name: name, Message: message, Priority: priority}})
}

func (p *Player) send(msg MsgToModel) {
	TrySend(p.broker.ToModel, msg)
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
