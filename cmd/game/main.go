package main

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tomz197/capylabs/internal/audio"
	"github.com/tomz197/capylabs/internal/audio/speakerout"
	"github.com/tomz197/capylabs/internal/config"
	"github.com/tomz197/capylabs/internal/loop"
	"golang.org/x/term"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		logFile string
		noMouse bool
	)
	cmd := &cobra.Command{
		Use:   "capylabs",
		Short: "Arena shooter for the terminal",
		Long: `Hold off the enemies walking in from the edge of the arena until
the clear timer runs out. Environment variables (GAME_FPS, GAME_AUDIO,
GAME_SEED, LOG_LEVEL) provide the defaults for the flags below.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cfg, err := config.Load()
	cmd.PreRunE = func(*cobra.Command, []string) error {
		if err != nil {
			return err
		}
		return cfg.Validate()
	}
	cmd.RunE = func(*cobra.Command, []string) error {
		return run(cfg, logFile, !noMouse)
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.FPS, "fps", cfg.FPS, "frames per second")
	flags.BoolVar(&cfg.Audio, "audio", cfg.Audio, "play sound through the default audio device")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed, 0 for time based")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&logFile, "log-file", "", "write logs to this file instead of discarding them")
	flags.BoolVar(&noMouse, "no-mouse", false, "disable mouse input")
	return cmd
}

func run(cfg config.Config, logFile string, mouse bool) error {
	var logOut io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := cfg.Logger(logOut, "game")
	rng := rand.New(rand.NewSource(cfg.RandSeed(time.Now())))

	fx := audio.New(rand.New(rand.NewSource(rng.Int63())), logger)
	if cfg.Audio {
		if stop, err := speakerout.Start(fx); err != nil {
			logger.Warn("audio unavailable, continuing silently", "err", err)
		} else {
			defer stop()
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	logger.Info("game started", "fps", cfg.FPS, "audio", cfg.Audio)
	return loop.Run(bufio.NewReader(os.Stdin), os.Stdout, loop.Options{
		FPS:    cfg.FPS,
		Logger: logger,
		Rand:   rng,
		FX:     fx,
		Mouse:  mouse,
	})
}
