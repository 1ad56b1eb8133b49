package preprocessing

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

const StateVersion = 1

// State is the msgpack form of a fitted Preprocessor.
type State struct {
	Version     int             `msgpack:"version"`
	Fingerprint string          `msgpack:"fingerprint"`
	Medians     []MedianImputer `msgpack:"medians"`
	Modes       []ModeImputer   `msgpack:"modes"`
	Family      *FamilyFeatures `msgpack:"family,omitempty"`
	Drop        []string        `msgpack:"drop"`
	OneHot      *OneHotEncoder  `msgpack:"one_hot,omitempty"`
	Exclude     []string        `msgpack:"exclude"`
	Features    []string        `msgpack:"features"`
}

func EncodeState(state State) ([]byte, error) {
	b, err := msgpack.Marshal(&state)
	if err != nil {
		return nil, fmt.Errorf("encoding preprocessing state: %w", err)
	}
	return b, nil
}

func DecodeState(b []byte) (State, error) {
	var state State
	if err := msgpack.Unmarshal(b, &state); err != nil {
		return State{}, fmt.Errorf("decoding preprocessing state: %w", err)
	}
	return state, nil
}

func SaveState(path string, state State) error {
	b, err := EncodeState(state)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func LoadState(path string) (State, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return State{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return DecodeState(b)
}
