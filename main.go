package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"go-fcb/config"
	"go-fcb/debug"
	"go-fcb/footswitch"
	"go-fcb/theme"
	"go-fcb/tui"
)

func main() {
	headless := flag.Bool("headless", false, "run without the terminal UI")
	configPath := flag.String("config", "", "config file (default ~/.config/go-fcb/config.{yaml,json})")
	debugFlag := flag.Bool("debug", false, "write a debug log to ~/.config/go-fcb/debug.log")
	palettePath := flag.String("palette", "", "GIMP palette for the UI (built-in plasma if empty)")
	flag.Parse()

	load := func() (*config.Config, error) {
		if *configPath != "" {
			return config.LoadFile(*configPath)
		}
		return config.Load()
	}

	cfg, err := load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Debug || *debugFlag {
		if err := debug.Enable(""); err != nil {
			fmt.Printf("Debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	s, err := newSurface(cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err := s.openHost(); err != nil {
		fmt.Printf("Host output: %v (mode messages will be dropped)\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			if err := s.reload(load); err != nil {
				debug.Log("main", "reload: %v", err)
			}
		}
	}()

	if *headless {
		runHeadless(ctx, s)
	} else if err := runTUI(ctx, stop, s, *palettePath); err != nil {
		fmt.Printf("Error: %v\n", err)
	}

	s.close()
}

func runHeadless(ctx context.Context, s *surface) {
	s.observe(func(ev footswitch.Event, delivered bool) {
		if delivered {
			fmt.Println(ev)
		}
	})

	fmt.Println("go-fcb")
	fmt.Printf("Waiting for %q - connect it any time. Ctrl+C to exit.\n", s.cfg.Controller.Port)
	fmt.Println("")

	go func() {
		for ev := range s.status {
			fmt.Printf("%s %s\n", ev.ID, ev.Type)
		}
	}()
	s.run(ctx)
}

func runTUI(ctx context.Context, stop context.CancelFunc, s *surface, palettePath string) error {
	palette, err := theme.Load(palettePath)
	if err != nil {
		return err
	}

	feed := tui.NewFeed(64)
	s.observe(feed.Observe)

	done := make(chan struct{})
	go func() {
		s.run(ctx)
		close(done)
	}()

	m := tui.NewModel(s.bus, s.board, s.mirror, feed, theme.New(palette))
	m.Devices = s.status
	m.ModeLEDs = s.cfg.LEDs.ModeAddresses
	m.Tempo = s.tempo()

	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, err = p.Run()
	stop()
	<-done
	return err
}
