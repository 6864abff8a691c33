package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Pinout is the side-file mapping a board's top-level signal names to
// physical pin locations, read and written as YAML the same way the
// teacher's core.YAMLRoot/YAMLCoreProgram load program IR, generalized
// from a CGRA program dump to a pin-constraint file per spec.md §6.
type Pinout struct {
	Board string     `yaml:"board"`
	Pins  []PinEntry `yaml:"pins"`
}

// PinEntry binds one top-level signal (or one bit of a bus, via Bit) to a
// physical pin location string (board-specific, e.g. "P1" or "IOB_X3Y7").
type PinEntry struct {
	Signal string `yaml:"signal"`
	Bit    *int   `yaml:"bit,omitempty"`
	Pin    string `yaml:"pin"`
}

// WritePinout serializes p to path as YAML.
func WritePinout(path string, p Pinout) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("config: marshal pinout: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write pinout %s: %w", path, err)
	}
	return nil
}

// LoadPinout reads and parses a pinout file previously written by
// WritePinout.
func LoadPinout(path string) (Pinout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pinout{}, fmt.Errorf("config: read pinout %s: %w", path, err)
	}
	var p Pinout
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Pinout{}, fmt.Errorf("config: parse pinout %s: %w", path, err)
	}
	return p, nil
}

// Lookup returns the pin bound to signal (and, for a bussed signal, the
// given bit), or ok=false if no such entry exists.
func (p Pinout) Lookup(signal string, bit int) (pin string, ok bool) {
	for _, e := range p.Pins {
		if e.Signal != signal {
			continue
		}
		if e.Bit == nil {
			return e.Pin, true
		}
		if *e.Bit == bit {
			return e.Pin, true
		}
	}
	return "", false
}
