//go:build linux

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/phuslu/log"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/srodi/memlens/pkg/analyzer"
	"github.com/srodi/memlens/pkg/collector"
	"github.com/srodi/memlens/pkg/config"
	"github.com/srodi/memlens/pkg/export"
	"github.com/srodi/memlens/pkg/logging"
	"github.com/srodi/memlens/pkg/ui"
)

type runConfig struct {
	config.Config
	once  bool
	serve bool
}

func parseConfig() runConfig {
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	interval := flag.Duration("interval", config.DefaultInterval, "sampling interval (e.g. 1s, 500ms)")
	once := flag.Bool("once", false, "print one text report and exit")
	listen := flag.String("listen", "", "serve Prometheus metrics on this address instead of the TUI (e.g. :9740)")
	logLevel := flag.String("log-level", "", "log level: trace, debug, info, warn, error")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	run := runConfig{Config: cfg, once: *once}

	// Flags win over file values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "interval":
			run.Interval = *interval
		case "listen":
			run.Export.ListenAddress = *listen
			run.serve = true
		case "log-level":
			run.Logging.Level = *logLevel
		}
	})
	run.Validate()

	if run.once && run.serve {
		fmt.Fprintln(os.Stderr, "-once and -listen are mutually exclusive")
		os.Exit(1)
	}
	return run
}

func main() {
	run := parseConfig()

	interactive := !run.once && !run.serve && term.IsTerminal(int(os.Stdout.Fd()))
	logging.Setup(logging.Options{
		Level: run.Logging.Level,
		File:  run.Logging.File,
		// The TUI owns the terminal; without a log file, drop logs.
		Discard: interactive && run.Logging.File == "",
	})

	if err := checkPrivileges(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	checkKernelVersion(run.ProcRoot)

	c := collector.New(run.ProcRoot, run.NodeRoot)
	a := analyzer.New()

	if run.serve {
		runServe(run.Config, c, a)
		return
	}

	// Startup sample: with nothing to show yet, a failed cycle is fatal.
	snapshot, err := c.Collect()
	if err != nil {
		log.Fatal().Err(err).Msg("initial collection failed")
	}
	a.Update(snapshot)
	state := a.State()

	if !interactive {
		fmt.Print(ui.Banner())
		ui.WriteReport(os.Stdout, state, 20)
		return
	}

	model := ui.NewModel(c, a, state, run.Interval)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal().Err(err).Msg("terminal UI failed")
	}
}

func runServe(cfg config.Config, c *collector.Collector, a *analyzer.Analyzer) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exporter := export.New(c, a, cfg.Export.TopProcesses)
	if err := export.ListenAndServe(ctx, cfg.Export.ListenAddress, cfg.Export.MetricsPath, exporter); err != nil {
		log.Fatal().Err(err).Msg("metrics server failed")
	}
}

// checkPrivileges ensures the process can read other users'
// smaps_rollup files, which need root.
func checkPrivileges() error {
	if unix.Geteuid() != 0 {
		return fmt.Errorf("memlens requires root privileges to read per-process memory; run with sudo")
	}
	return nil
}

// checkKernelVersion warns below 4.14, where smaps_rollup does not
// exist and every process would be skipped.
func checkKernelVersion(procRoot string) {
	data, err := os.ReadFile(procRoot + "/sys/kernel/osrelease")
	if err != nil {
		return
	}
	parts := strings.Split(strings.TrimSpace(string(data)), ".")
	if len(parts) < 2 {
		return
	}
	major, errMajor := strconv.Atoi(parts[0])
	minor, errMinor := strconv.Atoi(parts[1])
	if errMajor != nil || errMinor != nil {
		return
	}
	if major < 4 || (major == 4 && minor < 14) {
		log.Warn().
			Int("major", major).
			Int("minor", minor).
			Msg("kernel older than 4.14 lacks smaps_rollup; per-process data will be empty")
	}
}
