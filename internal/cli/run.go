package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/opensolutionsgroup/ddi/internal/device"
	"github.com/opensolutionsgroup/ddi/internal/logger"
	"github.com/opensolutionsgroup/ddi/internal/ui"
)

func newRunCommand(version, commit, date string) *cobra.Command {
	var allowUnprivileged bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the interactive console",
		Long: `Starts the full-screen console. Requires root, a terminal of at
least the configured minimum size, and the dd toolchain on PATH.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(version, commit, date, allowUnprivileged)
		},
	}
	cmd.Flags().BoolVar(&allowUnprivileged, "allow-unprivileged", false,
		"skip the root check (device access will likely fail)")
	return cmd
}

func runConsole(version, commit, date string, allowUnprivileged bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Logging.Verbose {
		verbose = true
	}

	if os.Geteuid() != 0 && !allowUnprivileged {
		return fmt.Errorf("root privileges required; run with sudo (or --allow-unprivileged)")
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal")
	}
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return fmt.Errorf("reading terminal size: %w", err)
	}
	if width < cfg.UI.MinWidth || height < cfg.UI.MinHeight {
		return fmt.Errorf("terminal is %dx%d; at least %dx%d required",
			width, height, cfg.UI.MinWidth, cfg.UI.MinHeight)
	}

	log := logger.NewWithCallback("main", isVerbose)
	logFile, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	log.SetWriter(logFile)

	buffer := ui.NewLogBuffer()
	log.SetSink(buffer)
	log.Info("DDI %s starting", version)

	watcher, err := device.NewWatcher("/dev")
	if err != nil {
		log.Warn("hotplug detection unavailable: %v", err)
		watcher = nil
	} else {
		defer watcher.Close()
	}

	return ui.Run(cfg, log, buffer, watcher, version, commit, date)
}
