package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/profile"

	"saturn/emu"
	"saturn/emu/log"
	"saturn/hw/hwdefs"
)

// runMain runs the emulator headless for the requested number of frames.
func runMain(args Run) {
	cfg := loadConfig(args.ConfigPath)
	if args.BIOS != "" {
		cfg.General.BIOS = args.BIOS
	}
	if args.Cartridge != "" {
		cfg.Emulation.Cartridge = args.Cartridge
	}
	mask, err := emu.ParseLogModules(cfg.General.Log)
	checkf(err, "invalid log modules in config")
	emu.SetupLogging(mask)

	emulator, err := emu.New(cfg)
	checkf(err, "failed to start emulator")
	defer emulator.AttachLogContext()()

	if args.LoadState != "" {
		checkf(emulator.LoadStateFile(args.LoadState), "failed to load state")
	}

	if args.CPUProfile != "" {
		defer fmt.Println("CPU profile written to", args.CPUProfile)
		defer profile.Start(
			profile.CPUProfile,
			profile.ProfilePath(args.CPUProfile),
			profile.NoShutdownHook,
			profile.Quiet,
		).Stop()
	}

	if args.Trace != nil {
		defer args.Trace.Close()
	}

	start := time.Now()
	frames := 0
	for frames < args.Frames {
		n, brk := emulator.RunFrames(args.Frames - frames)
		frames += n
		if brk.Kind() == hwdefs.BreakNone {
			break
		}
		if args.Trace != nil {
			fmt.Fprintf(args.Trace, "frame %d: %v\n", frames, brk)
		}
	}
	elapsed := time.Since(start)

	log.ModEmu.InfoZ("done").
		Int("frames", frames).
		Uint64("cycles", emulator.Saturn.Sched.Now()).
		Duration("elapsed", elapsed).
		End()

	if args.SaveState != "" {
		checkf(emulator.SaveStateFile(args.SaveState), "failed to save state")
	}
}

func verifyMain(args Verify) {
	cfg := loadConfig(args.ConfigPath)

	var state []byte
	if args.LoadState != "" {
		var err error
		state, err = os.ReadFile(args.LoadState)
		checkf(err, "failed to read state")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	checkf(emu.Verify(ctx, cfg, state, args.Frames, args.Runs), "verification failed")
	fmt.Printf("%d runs of %d frames ended in the same state\n", args.Runs, args.Frames)
}
