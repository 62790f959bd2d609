// Package main is the entry point for editlog, a tool that replays a
// scripted editing session through the history engine and prints the
// resulting log.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/editlog/internal/config"
	"github.com/dshills/editlog/internal/config/watcher"
	"github.com/dshills/editlog/internal/engine/history"
	"github.com/dshills/editlog/internal/logging"
)

// Version information (set via ldflags during build).
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  string
		verbose     bool
		watch       bool
		width       int
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	flag.BoolVar(&verbose, "v", false, "Log at debug level")
	flag.BoolVar(&watch, "watch", false, "Replay again whenever the script or config changes")
	flag.IntVar(&width, "width", 100, "Truncate record lines to this many columns (0 for no limit)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "editlog - replay an editing script through the undo log\n\n")
		fmt.Fprintf(os.Stderr, "Usage: editlog [options] script.yaml\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("editlog %s\n", version)
		return 0
	}
	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}

	r := replayer{configPath: configPath, scriptPath: flag.Arg(0), verbose: verbose, width: width}
	code := r.replay(os.Stdout, os.Stderr)
	if !watch {
		return code
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watcher.New()
	paths := []string{r.scriptPath}
	if configPath != "" {
		paths = append(paths, configPath)
	}
	if err := w.Watch(paths...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	err := w.Run(ctx, func(events []watcher.Event) {
		for _, ev := range events {
			fmt.Fprintf(os.Stderr, "%s: %s\n", ev.Op, ev.Path)
		}
		code = r.replay(os.Stdout, os.Stderr)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return code
}

// replayer loads the configuration and script afresh on every replay so
// that edits to either take effect in watch mode.
type replayer struct {
	configPath string
	scriptPath string
	verbose    bool
	width      int
}

func (r replayer) replay(stdout, stderr io.Writer) int {
	cfg, err := config.NewLoader().Load(r.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger := cfg.Logging.Logger(stderr)
	if r.verbose {
		logger.SetLevel(logging.LevelDebug)
	}

	f, err := os.Open(r.scriptPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer f.Close()

	script, err := ParseScript(f)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	sess := NewSession(script.Text, history.NewController(cfg.HistoryOptions(logger)...))
	sess.Width = r.width
	if err := sess.Run(script); err != nil {
		logger.Error("%v", err)
		sess.Report(stdout)
		return 1
	}
	sess.Report(stdout)
	return 0
}
