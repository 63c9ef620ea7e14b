package fieldsynth

import "errors"

// Errors returned by the command surface. Rejected commands leave the
// instrument in the state it was before the command.
var (
	ErrDeviceUnavailable = errors.New("audio output device unavailable")
	ErrNotInitialized    = errors.New("engine not initialized")
	ErrInvalidSpeed      = errors.New("invalid tape speed")
	ErrInvalidTrack      = errors.New("invalid track index")
	ErrAlreadyRecording  = errors.New("already recording")
	ErrNotRecording      = errors.New("not recording")
	ErrUnknownEngine     = errors.New("unknown engine kind")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrQueueFull         = errors.New("player queue full")
)
