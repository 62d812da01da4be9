package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-fcb/board"
	"go-fcb/footswitch"
	"go-fcb/led"
	"go-fcb/midi"
	"go-fcb/theme"
	"go-fcb/widgets"
)

const (
	tapDuration  = 100 * time.Millisecond
	holdDuration = time.Second
	logLines     = 8
)

var tapKeys = map[string]footswitch.Switch{
	"1": footswitch.One, "2": footswitch.Two, "3": footswitch.Three,
	"4": footswitch.Four, "5": footswitch.Five, "6": footswitch.Six,
	"7": footswitch.Seven, "8": footswitch.Eight, "9": footswitch.Nine,
	"0": footswitch.Ten,
	"[": footswitch.Up, "]": footswitch.Down,
}

var holdKeys = map[string]footswitch.Switch{
	"!": footswitch.One, "@": footswitch.Two, "#": footswitch.Three,
	"$": footswitch.Four, "%": footswitch.Five, "^": footswitch.Six,
	"&": footswitch.Seven, "*": footswitch.Eight, "(": footswitch.Nine,
	")": footswitch.Ten,
}

// Model is the board monitor. It draws the LEDs the controller was told
// to light and lets the keyboard stand in for the switches.
type Model struct {
	Bus      *footswitch.Bus
	Board    *board.Board
	Mirror   *led.Mirror
	Feed     *Feed
	Devices  <-chan midi.DeviceEvent // may be nil
	Theme    *theme.Theme
	ModeLEDs []int
	Tempo    func() float64 // may be nil

	held     map[footswitch.Switch]bool
	log      []string
	device   string
	quitting bool
}

type ledMsg led.Change

type notificationMsg Notification

type releaseMsg footswitch.Switch

type DeviceEventMsg midi.DeviceEvent

func NewModel(bus *footswitch.Bus, b *board.Board, mirror *led.Mirror, feed *Feed, th *theme.Theme) Model {
	return Model{
		Bus:    bus,
		Board:  b,
		Mirror: mirror,
		Feed:   feed,
		Theme:  th,
		held:   make(map[footswitch.Switch]bool),
	}
}

func ListenForLEDs(mirror *led.Mirror) tea.Cmd {
	return func() tea.Msg {
		return ledMsg(<-mirror.Changes())
	}
}

func ListenForNotifications(feed *Feed) tea.Cmd {
	return func() tea.Msg {
		return notificationMsg(<-feed.Events())
	}
}

func ListenForDevices(devices <-chan midi.DeviceEvent) tea.Cmd {
	if devices == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-devices
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForLEDs(m.Mirror),
		ListenForNotifications(m.Feed),
		ListenForDevices(m.Devices),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		if s, ok := tapKeys[key]; ok {
			return m, m.press(s, tapDuration)
		}
		if s, ok := holdKeys[key]; ok {
			return m, m.press(s, holdDuration)
		}

	case releaseMsg:
		s := footswitch.Switch(msg)
		delete(m.held, s)
		m.Bus.Dispatch(footswitch.RawTransition{Switch: s, Down: false})

	case ledMsg:
		return m, ListenForLEDs(m.Mirror)

	case notificationMsg:
		m.log = append(m.log, m.formatNotification(Notification(msg)))
		if len(m.log) > logLines {
			m.log = m.log[len(m.log)-logLines:]
		}
		return m, ListenForNotifications(m.Feed)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		if event.Type == midi.DeviceConnected {
			m.device = event.ID
		} else if event.ID == m.device {
			m.device = ""
		}
		return m, ListenForDevices(m.Devices)
	}

	return m, nil
}

// press sends DOWN now and schedules the UP. A switch that is already
// down is left alone.
func (m Model) press(s footswitch.Switch, hold time.Duration) tea.Cmd {
	if m.held[s] {
		return nil
	}
	m.held[s] = true
	m.Bus.Dispatch(footswitch.RawTransition{Switch: s, Down: true})
	return tea.Tick(hold, func(time.Time) tea.Msg {
		return releaseMsg(s)
	})
}

func (m Model) formatNotification(n Notification) string {
	mark := m.Theme.Symbols.Delivered
	if !n.Delivered {
		mark = m.Theme.Symbols.Dropped
	}
	return fmt.Sprintf("%s %c %s", n.At.Format("15:04:05.000"), mark, n.Event)
}

func (m Model) ledStyle() widgets.LEDStyle {
	return widgets.LEDStyle{
		On:    m.Theme.LEDOn(),
		Off:   m.Theme.LEDOff(),
		Label: m.Theme.FG(),
		Lit:   m.Theme.Symbols.LEDOn,
		Dark:  m.Theme.Symbols.LEDOff,
		None:  m.Theme.Symbols.NoLED,
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	currentStyle := lipgloss.NewStyle().Foreground(m.Theme.Success()).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	modeName := "-"
	current, mode := m.Board.Current()
	if mode != nil {
		modeName = mode.Name()
	}

	tempo := "---"
	if m.Tempo != nil {
		if bpm := m.Tempo(); bpm > 0 {
			tempo = fmt.Sprintf("%3.0f", bpm)
		}
	}

	device := warnStyle.Render("no controller")
	if m.device != "" {
		device = m.device
	}

	header := headerStyle.Render(fmt.Sprintf("go-fcb  %s  %sbpm", modeName, tempo)) + "  " + device

	lit := m.Mirror.State()
	boardView := widgets.RenderBoard(lit, m.held, m.ledStyle())
	modesView := widgets.RenderModes(m.Board.Names(), current, m.ModeLEDs, lit, m.ledStyle(), currentStyle)

	logView := dimStyle.Render("no events yet")
	if len(m.log) > 0 {
		logView = strings.Join(m.log, "\n")
	}

	help := dimStyle.Render("1-0:tap  shift+1-0:hold  [:up  ]:down  q:quit")

	// Build output
	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(boardView)
	out.WriteString("\n\n")
	out.WriteString(modesView)
	out.WriteString("\n\n")
	out.WriteString(logView)
	out.WriteString("\n\n")
	out.WriteString(help)

	return out.String()
}
