package player

import (
	"time"

	"github.com/fieldsynth/fieldsynth/tape"
)

type (
	// Broker carries the messages between the Model, owned by the UI
	// goroutine, and the Player, owned by the audio thread. The player only
	// ever does non-blocking sends and receives, so it can never be blocked
	// by the model. Both channels are single consumer: the player drains
	// ToPlayer at the start of every block; the model drains ToModel.
	Broker struct {
		ToModel  chan MsgToModel
		ToPlayer chan any // one of the *Msg types in messages.go
	}

	// MsgToModel is a message sent to the model. The per-block status is
	// not boxed to avoid allocations; the infrequent messages, like alerts,
	// travel in Data.
	MsgToModel struct {
		HasStatus    bool
		State        tape.State
		ActiveVoices int
		Recorded     int // frames recorded so far in the current recording
		Peak         float32

		Data any
	}
)

const brokerCapacity = 1024

func NewBroker() *Broker {
	return &Broker{
		ToModel:  make(chan MsgToModel, brokerCapacity),
		ToPlayer: make(chan any, brokerCapacity),
	}
}

// TrySend is a helper function to send a value to a channel if it is not full.
// It is guaranteed to be non-blocking. Return true if the value was sent, false
// otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive is a helper function to block until a value is received from a
// channel, or timing out after t. ok will be false if the timeout occurred or
// if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
