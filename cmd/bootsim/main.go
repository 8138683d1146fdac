// Command bootsim runs the kernel boot sequence on a simulated machine and
// prints the resulting screen together with a report of the boot.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/term"

	"titanium/internal/render"
	"titanium/internal/sim"
	"titanium/kernel/mem"
)

var errHalted = errors.New("boot halted")

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bootsim: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profilePath := flag.String("profile", "", "Machine profile (YAML). Uses a 128M machine if empty")
	screenshot := flag.String("screenshot", "", "Write the final screen to this PNG file")
	colorMode := flag.String("color", "auto", "Colour output: auto, always or never")
	trace := flag.Bool("trace", false, "Print every privileged CPU operation")
	diagnostics := flag.Bool("diagnostics", false, "Enable optional handoff checks")
	dbg := flag.Bool("debug", false, "Enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Boot the kernel on a simulated machine and report the outcome.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *dbg {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	profile := sim.DefaultProfile()
	if *profilePath != "" {
		var err error
		if profile, err = sim.LoadProfile(*profilePath); err != nil {
			return err
		}
	}
	if *diagnostics {
		profile.Diagnostics = true
	}

	useColor, err := colorEnabled(*colorMode, term.IsTerminal(int(os.Stdout.Fd())))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	res, err := sim.Run(ctx, profile, logger)
	if err != nil {
		return err
	}
	defer res.Close()

	if res.System.Video == nil {
		return fmt.Errorf("boot failed before the display was initialised: %s", res.BootErr.Message)
	}

	screen := render.Screen{Cells: res.System.Video.Cells(), Cols: mem.VideoColumns}
	if useColor {
		err = render.ANSI(os.Stdout, screen)
	} else {
		err = render.Text(os.Stdout, screen)
	}
	if err != nil {
		return fmt.Errorf("rendering screen: %w", err)
	}

	if err := writeReport(os.Stdout, res, *trace); err != nil {
		return err
	}

	if *screenshot != "" {
		if err := saveScreenshot(*screenshot, screen, res); err != nil {
			return err
		}
		slog.Info("screenshot saved", "path", *screenshot)
	}

	if res.Halted() {
		return errHalted
	}

	return nil
}

func colorEnabled(mode string, isTerminal bool) (bool, error) {
	switch mode {
	case "auto":
		return isTerminal, nil
	case "always":
		return true, nil
	case "never":
		return false, nil
	default:
		return false, fmt.Errorf("invalid colour mode %q", mode)
	}
}

func saveScreenshot(path string, screen render.Screen, res *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create screenshot file: %w", err)
	}
	defer f.Close()

	if err := render.Screenshot(f, screen, res.System.Video.Palette()); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}

	return f.Close()
}
