package main

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type KeyBinding struct {
	Key    string
	Action string
}

//go:embed keybindings.yml
var defaultKeyBindings []byte

var actions = map[string]bool{
	"Quit": true, "OctaveAdd": true, "OctaveSubtract": true,
	"EngineNext": true, "EnginePrevious": true,
	"BlueAdd": true, "BlueSubtract": true, "GreenAdd": true, "GreenSubtract": true,
	"WhiteAdd": true, "WhiteSubtract": true, "RedAdd": true, "RedSubtract": true,
	"SelectTrack0": true, "SelectTrack1": true, "SelectTrack2": true, "SelectTrack3": true,
	"ToggleRecording": true, "TogglePlaying": true, "ToggleLoop": true, "ToggleMute": true,
	"ClearTrack": true, "VolumeAdd": true, "VolumeSubtract": true,
	"SpeedAdd": true, "SpeedSubtract": true, "SpeedReset": true,
	"StopEverything": true, "Panic": true,
}

func validAction(action string) bool {
	if n, ok := strings.CutPrefix(action, "Note"); ok {
		_, err := strconv.Atoi(n)
		return err == nil
	}
	return actions[action]
}

var namedKeys = map[string]byte{
	"space":     ' ',
	"enter":     '\r',
	"tab":       '\t',
	"backspace": 0x7f,
	"esc":       0x1b,
}

// parseKey returns the byte a raw terminal sends for the key name.
func parseKey(name string) (byte, error) {
	if b, ok := namedKeys[name]; ok {
		return b, nil
	}
	if c, ok := strings.CutPrefix(name, "ctrl+"); ok && len(c) == 1 && c[0] >= 'a' && c[0] <= 'z' {
		return c[0] - 'a' + 1, nil
	}
	if len(name) == 1 && name[0] >= ' ' && name[0] < 0x7f {
		return name[0], nil
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

func decodeKeyBindings(data []byte) ([]KeyBinding, error) {
	var ret []KeyBinding
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// loadKeyMap returns the default bindings, overridden by the user's
// keybindings.yml if there is one. Later bindings of a key win.
func loadKeyMap() (map[byte]string, error) {
	keyBindings, err := decodeKeyBindings(defaultKeyBindings)
	if err != nil {
		panic(fmt.Errorf("failed to unmarshal default keybindings: %w", err))
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		path := filepath.Join(configDir, "fieldsynth", "keybindings.yml")
		if data, err := os.ReadFile(path); err == nil {
			user, err := decodeKeyBindings(data)
			if err != nil {
				return nil, fmt.Errorf("could not parse %v: %w", path, err)
			}
			keyBindings = append(keyBindings, user...)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("could not read %v: %w", path, err)
		}
	}
	return makeKeyMap(keyBindings)
}

func makeKeyMap(keyBindings []KeyBinding) (map[byte]string, error) {
	ret := map[byte]string{}
	for _, kb := range keyBindings {
		b, err := parseKey(kb.Key)
		if err != nil {
			return nil, err
		}
		if kb.Action == "" { // unbind
			delete(ret, b)
			continue
		}
		if !validAction(kb.Action) {
			return nil, fmt.Errorf("unknown action %q for key %q", kb.Action, kb.Key)
		}
		ret[b] = kb.Action
	}
	return ret, nil
}
