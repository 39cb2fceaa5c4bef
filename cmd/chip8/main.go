package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"

	"github.com/valerio/go-chip8/chip8"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/backend/sdl2"
	"github.com/valerio/go-chip8/chip8/backend/terminal"
	"github.com/valerio/go-chip8/chip8/quirks"
	"github.com/valerio/go-chip8/chip8/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "chip8"
	app.Description = "A CHIP-8 virtual machine"
	app.Usage = "chip8 [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "quirks",
			Usage: "Instruction dialect: classic or superchip",
			Value: "classic",
		},
		cli.IntFlag{
			Name:  "clock",
			Usage: "Instruction rate in instructions per second",
			Value: chip8.DefaultClockHz,
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Display backend: terminal or sdl2",
			Value: "terminal",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Pixel scale factor for the sdl2 backend",
			Value: 10,
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a display",
		},
		cli.IntFlag{
			Name:  "ticks",
			Usage: "Number of 60 Hz ticks to run in headless mode (required for headless)",
			Value: 0,
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N ticks in headless mode (0 = disabled)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
	}
	app.Action = runEmulator

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	profile, err := quirks.Parse(c.String("quirks"))
	if err != nil {
		return err
	}

	machine, err := chip8.NewWithFile(romPath, profile, c.Int("clock"))
	if err != nil {
		return err
	}

	var (
		b       backend.Backend
		limiter timing.Limiter
	)

	if c.Bool("headless") {
		ticks := c.Int("ticks")
		if ticks <= 0 {
			return errors.New("headless mode requires --ticks option with a positive value")
		}

		snapshots, err := headless.CreateSnapshotConfig(
			c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
		if err != nil {
			return err
		}

		b = headless.New(ticks, snapshots)
		limiter = timing.NewNoOpLimiter()
	} else {
		switch name := c.String("backend"); name {
		case "terminal":
			b = terminal.New()
		case "sdl2":
			b = sdl2.New()
		default:
			return fmt.Errorf("unknown backend: %s", name)
		}
		limiter = timing.NewFixedLimiter(chip8.TicksPerSecond)
	}

	emu := chip8.NewEmulator(machine, b, limiter)

	return emu.Run(backend.BackendConfig{
		Title: fmt.Sprintf("chip8 - %s", romName(romPath)),
		Scale: c.Int("scale"),
	})
}

func romName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
