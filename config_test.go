package fieldsynth_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/fieldsynth/fieldsynth"
)

func TestDefaultConfigIsValid(t *testing.T) {
	config := fieldsynth.DefaultConfig()
	if err := config.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if config.MaxRecordFrames() != 60*44100 {
		t.Fatalf("expected 60 seconds at 44100 Hz, got %d frames", config.MaxRecordFrames())
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("engine: String\ntapespeed: 0.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	config, err := fieldsynth.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Engine != "String" || config.TapeSpeed != 0.5 || config.SampleRate != 44100 {
		t.Fatalf("unexpected config %+v", config)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := fieldsynth.LoadConfig(filepath.Join(dir, "missing.yml")); err == nil {
		t.Errorf("an explicitly given missing file should be an error")
	}
	for name, content := range map[string]string{
		"unknown.yml": "volume: 11\n",
		"speed.yml":   "tapespeed: 5\n",
		"engine.yml":  "engine: theremin\n",
		"voices.yml":  "maxvoices: 0\n",
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := fieldsynth.LoadConfig(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
	path := filepath.Join(dir, "speed.yml")
	if _, err := fieldsynth.LoadConfig(path); !errors.Is(err, fieldsynth.ErrInvalidConfig) || !errors.Is(err, fieldsynth.ErrInvalidSpeed) {
		t.Errorf("expected ErrInvalidConfig wrapping ErrInvalidSpeed, got %v", err)
	}
}

func TestValidateTapeSpeed(t *testing.T) {
	for _, speed := range []float64{0.01, 0.5, 1, 2, 4} {
		if err := fieldsynth.ValidateTapeSpeed(speed); err != nil {
			t.Errorf("speed %v should be valid: %v", speed, err)
		}
	}
	for _, speed := range []float64{0, -0.5, 4.0001, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if err := fieldsynth.ValidateTapeSpeed(speed); !errors.Is(err, fieldsynth.ErrInvalidSpeed) {
			t.Errorf("speed %v: expected ErrInvalidSpeed, got %v", speed, err)
		}
	}
}
