package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"go-fcb/footswitch"
	"go-fcb/led"
)

var testStyle = LEDStyle{Lit: '●', Dark: '○', None: '·'}

func TestRenderBoard(t *testing.T) {
	var lit [led.NumAddresses]bool
	lit[0] = true // TEN
	lit[3] = true

	out := RenderBoard(lit, map[footswitch.Switch]bool{footswitch.Two: true}, testStyle)
	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}

	if !strings.Contains(lines[0], "10") || !strings.Contains(lines[0], "UP") {
		t.Errorf("top labels = %q", lines[0])
	}
	if !strings.Contains(lines[3], "[2]") || !strings.Contains(lines[3], "DOWN") {
		t.Errorf("bottom labels = %q", lines[3])
	}

	// Top row: 6 7 8 9 dark, 10 lit, UP has no LED.
	if got := strings.Fields(lines[1]); strings.Join(got, "") != "○○○○●·" {
		t.Errorf("top leds = %q", lines[1])
	}
	// Bottom row: only 3 lit.
	if got := strings.Fields(lines[4]); strings.Join(got, "") != "○○●○○·" {
		t.Errorf("bottom leds = %q", lines[4])
	}
}

func TestRenderModes(t *testing.T) {
	var lit [led.NumAddresses]bool
	lit[21] = true

	out := RenderModes([]string{"stomp", "session", "macro", "extra"}, 1, []int{20, 21, 22}, lit, testStyle, lipgloss.NewStyle())
	want := "○ stomp  ● session  ○ macro  · extra"
	if out != want {
		t.Errorf("RenderModes = %q, want %q", out, want)
	}
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{
		Title: "Switches",
		Keys:  []KeyBinding{{Key: "1-0", Desc: "tap"}},
	}})
	if !strings.HasPrefix(out, "Switches\n") || !strings.Contains(out, "1-0") {
		t.Errorf("RenderKeyHelp = %q", out)
	}
}
