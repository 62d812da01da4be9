package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-fcb/config"
	"go-fcb/footswitch"
	"go-fcb/led"
	"go-fcb/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	defer gomidi.CloseDriver()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}

	match := cfg.Controller.Port
	if len(os.Args) > 2 {
		match = os.Args[2]
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "detect":
		detectController(match)
	case "leds":
		testLEDs(cfg, match)
	case "monitor":
		monitor(match)
	case "poll":
		pollDevices(match)
	default:
		usage()
	}
}

func usage() {
	fmt.Println("FCB1010 Test Scripts")
	fmt.Println("")
	fmt.Println("Usage: fcbtest <command> [port match]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list     - List all MIDI ports")
	fmt.Println("  detect   - Find the foot controller")
	fmt.Println("  leds     - Walk every LED, then blink the bottom row")
	fmt.Println("  monitor  - Print decoded switch transitions")
	fmt.Println("  poll     - Poll for device changes")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ins, outs, err := midi.Ports()
	if err != nil {
		fmt.Println("\nTIMEOUT! The MIDI backend is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return
	}

	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

func detectController(match string) {
	fmt.Printf("Looking for %q...\n", match)

	ins, outs, err := midi.Ports()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	var foundIn, foundOut bool
	for i, p := range ins {
		if midi.MatchesPort(p.String(), match) {
			fmt.Printf("Found input: %d: %s\n", i, p.String())
			foundIn = true
		}
	}
	for i, p := range outs {
		if midi.MatchesPort(p.String(), match) {
			fmt.Printf("Found output: %d: %s\n", i, p.String())
			foundOut = true
		}
	}

	if foundIn && foundOut {
		fmt.Println("\nController detected!")
	} else {
		fmt.Println("\nController not found")
	}
}

func openOutput(match string, channel uint8) (*midi.Output, drivers.Out, bool) {
	out := midi.NewOutput(channel)
	port, err := out.OpenOutput(match)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil, nil, false
	}
	fmt.Printf("Using output: %s\n", port.String())
	return out, port, true
}

func testLEDs(cfg *config.Config, match string) {
	fmt.Println("Testing LED control...")

	out, port, ok := openOutput(match, cfg.Controller.Channel)
	if !ok {
		return
	}
	defer port.Close()

	all := make([]int, led.NumAddresses)
	for i := range all {
		all[i] = i
	}
	leds, err := led.New(out, all...)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer leds.Deactivate()

	fmt.Println("Walking every address...")
	for _, addr := range all {
		leds.On(addr)
		time.Sleep(150 * time.Millisecond)
		leds.Off(addr)
	}

	fmt.Println("Blinking the bottom row (fast and slow)...")
	fast, slow := cfg.BlinkPeriods()
	for i, s := range footswitch.BottomRow() {
		period := slow
		if i%2 == 0 {
			period = fast
		}
		leds.BlinkOn(s.MustLEDAddress(), period)
	}

	fmt.Println("Press Enter to clear...")
	fmt.Scanln()

	for _, addr := range all {
		leds.Off(addr)
	}
	fmt.Println("Done!")
}

func monitor(match string) {
	fmt.Printf("Monitoring %q. Ctrl+C to exit.\n", match)

	fc, err := midi.FindFootController(match, 0, func(msg []byte) {
		stamp := time.Now().Format("15:04:05.000")
		t, err := footswitch.Decode(msg)
		if err == nil {
			fmt.Printf("[%s] %s\n", stamp, t)
			return
		}
		fmt.Printf("[%s] % X  %s\n", stamp, msg, describe(msg))
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer fc.Close()

	select {}
}

// describe labels the messages Decode does not turn into transitions.
func describe(msg []byte) string {
	var ch, cc, val uint8
	if !gomidi.Message(msg).GetControlChange(&ch, &cc, &val) {
		return gomidi.Message(msg).String()
	}
	switch cc {
	case footswitch.ControlExpressionLeft:
		return fmt.Sprintf("expression left = %d", val)
	case footswitch.ControlExpressionRight:
		return fmt.Sprintf("expression right = %d", val)
	case led.ControlOn, led.ControlOff:
		return fmt.Sprintf("led echo %d", val)
	}
	return fmt.Sprintf("cc %d = %d on channel %d", cc, val, ch)
}

func pollDevices(match string) {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect the controller to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		ins, outs, err := midi.Ports()
		if err != nil {
			fmt.Printf("[%s] %v\n", time.Now().Format("15:04:05"), err)
			time.Sleep(2 * time.Second)
			continue
		}

		// Build current state
		var inNames, outNames []string
		for _, p := range ins {
			inNames = append(inNames, p.String())
		}
		for _, p := range outs {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			for _, name := range inNames {
				if midi.MatchesPort(name, match) {
					fmt.Println("  -> Controller detected!")
				}
			}

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
