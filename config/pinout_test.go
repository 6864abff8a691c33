package config_test

import (
	"path/filepath"
	"testing"

	"github.com/sarchlab/gohdl/config"
)

func TestPinoutRoundTrip(t *testing.T) {
	bit0 := 0
	p := config.Pinout{
		Board: "upduino",
		Pins: []config.PinEntry{
			{Signal: "Clk", Pin: "P1"},
			{Signal: "Leds", Bit: &bit0, Pin: "P2"},
		},
	}

	path := filepath.Join(t.TempDir(), "pinout.yaml")
	if err := config.WritePinout(path, p); err != nil {
		t.Fatalf("WritePinout: %v", err)
	}

	got, err := config.LoadPinout(path)
	if err != nil {
		t.Fatalf("LoadPinout: %v", err)
	}
	if got.Board != "upduino" || len(got.Pins) != 2 {
		t.Fatalf("unexpected round trip: %+v", got)
	}

	pin, ok := got.Lookup("Clk", 0)
	if !ok || pin != "P1" {
		t.Fatalf("expected Clk -> P1, got %q ok=%v", pin, ok)
	}

	pin, ok = got.Lookup("Leds", 0)
	if !ok || pin != "P2" {
		t.Fatalf("expected Leds[0] -> P2, got %q ok=%v", pin, ok)
	}

	if _, ok := got.Lookup("Leds", 1); ok {
		t.Fatal("expected no binding for Leds[1]")
	}
}
