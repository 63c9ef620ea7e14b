package fieldsynth

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type Config struct {
	SampleRate       int
	BlockSize        int
	MaxVoices        int
	MaxRecordSeconds float64
	MasterGain       float64
	Engine           string
	TapeSpeed        float64
}

const (
	MinTapeSpeed = 0 // exclusive
	MaxTapeSpeed = 4
)

//go:embed config.yml
var defaultConfigYaml []byte

// DefaultConfig returns the configuration embedded in the binary.
func DefaultConfig() Config {
	var config Config
	if err := yaml.UnmarshalStrict(defaultConfigYaml, &config); err != nil {
		panic(fmt.Errorf("failed to unmarshal default config: %w", err))
	}
	return config
}

// LoadConfig returns the default configuration overridden with the values in
// path. If path is empty, config.yml in the user config directory is tried
// instead; a missing file there is not an error.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	explicit := path != ""
	if !explicit {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return config, nil
		}
		path = filepath.Join(configDir, "fieldsynth", "config.yml")
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return config, fmt.Errorf("could not read config %v: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(bytes, &config); err != nil {
		return config, fmt.Errorf("could not parse config %v: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("config %v: %w", path, err)
	}
	return config, nil
}

// Validate checks that all the values are within their supported ranges.
func (c Config) Validate() error {
	switch {
	case c.SampleRate < 8000 || c.SampleRate > 192000:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.SampleRate)
	case c.BlockSize < 16 || c.BlockSize > 8192:
		return fmt.Errorf("%w: block size %d", ErrInvalidConfig, c.BlockSize)
	case c.MaxVoices < 1 || c.MaxVoices > 32:
		return fmt.Errorf("%w: max voices %d", ErrInvalidConfig, c.MaxVoices)
	case c.MaxRecordSeconds <= 0 || c.MaxRecordSeconds > 600:
		return fmt.Errorf("%w: max record seconds %v", ErrInvalidConfig, c.MaxRecordSeconds)
	case c.MasterGain < 0 || c.MasterGain > 2:
		return fmt.Errorf("%w: master gain %v", ErrInvalidConfig, c.MasterGain)
	}
	if _, err := ParseEngineKind(c.Engine); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := ValidateTapeSpeed(c.TapeSpeed); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// MaxRecordFrames is the capacity of a track, in frames.
func (c Config) MaxRecordFrames() int {
	return int(c.MaxRecordSeconds * float64(c.SampleRate))
}

// ValidateTapeSpeed returns ErrInvalidSpeed unless 0 < speed <= MaxTapeSpeed.
func ValidateTapeSpeed(speed float64) error {
	if !(speed > MinTapeSpeed && speed <= MaxTapeSpeed) {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	return nil
}
