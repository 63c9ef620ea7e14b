package tape_test

import (
	"errors"
	"testing"

	"github.com/fieldsynth/fieldsynth"
	"github.com/fieldsynth/fieldsynth/tape"
)

func TestTransportRecording(t *testing.T) {
	var tr tape.Transport
	if tr.State() != tape.Stopped {
		t.Fatalf("zero transport should be stopped, got %v", tr.State())
	}
	if _, err := tr.StopRecording(); !errors.Is(err, fieldsynth.ErrNotRecording) {
		t.Fatalf("expected ErrNotRecording, got %v", err)
	}
	if err := tr.StartRecording(1); err != nil {
		t.Fatalf("StartRecording failed: %v", err)
	}
	if tr.State() != tape.Recording {
		t.Fatalf("expected Recording, got %v", tr.State())
	}
	if err := tr.StartRecording(2); !errors.Is(err, fieldsynth.ErrAlreadyRecording) {
		t.Fatalf("expected ErrAlreadyRecording, got %v", err)
	}
	if trk, ok := tr.RecordTrack(); !ok || trk != 1 {
		t.Fatalf("rejected StartRecording changed the record target to %d", trk)
	}
	trk, err := tr.StopRecording()
	if err != nil || trk != 1 {
		t.Fatalf("StopRecording returned %d, %v", trk, err)
	}
	if tr.State() != tape.Stopped {
		t.Fatalf("expected Stopped, got %v", tr.State())
	}
}

func TestTransportInvalidTrack(t *testing.T) {
	var tr tape.Transport
	for _, trk := range []int{-1, 4, 100} {
		if err := tr.StartRecording(trk); !errors.Is(err, fieldsynth.ErrInvalidTrack) {
			t.Errorf("track %d: expected ErrInvalidTrack, got %v", trk, err)
		}
	}
	if tr.State() != tape.Stopped {
		t.Fatalf("rejected command changed the state to %v", tr.State())
	}
}

func TestTransportPlayIsIdempotent(t *testing.T) {
	var tr tape.Transport
	if !tr.Play() || tr.Play() {
		t.Fatalf("only the first Play should change the state")
	}
	if tr.State() != tape.Playing {
		t.Fatalf("expected Playing, got %v", tr.State())
	}
	if !tr.Stop() || tr.Stop() {
		t.Fatalf("only the first Stop should change the state")
	}
}

func TestTransportRecordWhilePlaying(t *testing.T) {
	var tr tape.Transport
	tr.Play()
	if err := tr.StartRecording(1); err != nil {
		t.Fatalf("StartRecording while playing failed: %v", err)
	}
	if tr.State() != tape.Recording || !tr.Playing() {
		t.Fatalf("playback should continue while recording")
	}
	trk, was := tr.StopAll()
	if !was || trk != 1 {
		t.Fatalf("StopAll should report the track being recorded, got %d %v", trk, was)
	}
	if tr.State() != tape.Stopped || tr.Playing() {
		t.Fatalf("StopAll should leave the transport stopped")
	}
	if _, was := tr.StopAll(); was {
		t.Fatalf("second StopAll should not report a recording")
	}
}
