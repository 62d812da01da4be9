package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-fcb/footswitch"
	"go-fcb/led"
)

// cellWidth is the width of one switch column.
const cellWidth = 6

// LEDStyle is how lit and dark LEDs are drawn.
type LEDStyle struct {
	On, Off, Label lipgloss.Color
	Lit, Dark      rune
	None           rune // switch without an LED
}

// RenderLED renders a single LED
func RenderLED(lit bool, st LEDStyle) string {
	if lit {
		return lipgloss.NewStyle().Foreground(st.On).Render(string(st.Lit))
	}
	return lipgloss.NewStyle().Foreground(st.Off).Render(string(st.Dark))
}

// RenderBoard draws the switches as the player sees them, the top row
// (6-10, UP) above the bottom row (1-5, DOWN), each label over its LED.
// held marks switches that are currently down.
func RenderBoard(lit [led.NumAddresses]bool, held map[footswitch.Switch]bool, st LEDStyle) string {
	top := append(footswitch.TopRow(), footswitch.Up)
	bottom := append(footswitch.BottomRow(), footswitch.Down)

	var lines []string
	for _, row := range [][]footswitch.Switch{top, bottom} {
		var labels, leds strings.Builder
		for _, s := range row {
			labels.WriteString(pad(label(s, held[s]), st.Label))

			addr, err := s.LEDAddress()
			if err != nil {
				leds.WriteString(pad(string(st.None), st.Off))
				continue
			}
			leds.WriteString(padRendered(RenderLED(lit[addr], st)))
		}
		lines = append(lines, labels.String(), leds.String(), "")
	}
	return strings.Join(lines[:len(lines)-1], "\n")
}

func label(s footswitch.Switch, held bool) string {
	name := s.String()
	if s.Numbered() {
		name = fmt.Sprint(int(s))
	}
	if held {
		name = "[" + name + "]"
	}
	return name
}

func pad(s string, color lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(color).Width(cellWidth).Render(s)
}

func padRendered(s string) string {
	return s + strings.Repeat(" ", max(cellWidth-lipgloss.Width(s), 0))
}

// RenderModes renders the mode list with the indicator LED of each mode
// that has one: "● stomp  ○ session  ○ macro". current is highlighted.
func RenderModes(names []string, current int, indicators []int, lit [led.NumAddresses]bool, st LEDStyle, highlight lipgloss.Style) string {
	var parts []string
	for i, name := range names {
		mark := string(st.None)
		if i < len(indicators) {
			addr := indicators[i]
			if addr >= 0 && addr < led.NumAddresses {
				mark = RenderLED(lit[addr], st)
			}
		}
		if i == current {
			name = highlight.Render(name)
		}
		parts = append(parts, mark+" "+name)
	}
	return strings.Join(parts, "  ")
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
