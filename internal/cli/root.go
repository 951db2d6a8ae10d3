package cli

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/opensolutionsgroup/ddi/internal/config"
	"github.com/opensolutionsgroup/ddi/internal/glyphs"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	asciiOnly bool
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ddi",
		Short: "Operator console for block-device imaging",
		Long: `DDI drives dd through compression pipes to back up, restore and wipe
block devices. It shows live progress as a bar or a per-block error
map, keeps every step in a scrollable log pane, and checks drive
health through SMART before letting you image a failing disk.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			glyphs.SetASCIIOnly(asciiOnly)
			if noColor {
				lipgloss.SetColorProfile(termenv.Ascii)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&asciiOnly, "ascii", false, "ASCII-only glyphs (for limited terminals)")

	rootCmd.AddCommand(newRunCommand(version, commit, date))
	rootCmd.AddCommand(newDevicesCommand())
	rootCmd.AddCommand(newRemoteCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			fmt.Printf("DDI %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// loadConfig resolves the effective configuration, honoring the
// --config and --ascii flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.NewLoader().LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if asciiOnly {
		cfg.UI.ASCIIOnly = true
	}
	glyphs.SetASCIIOnly(cfg.UI.ASCIIOnly)
	return cfg, nil
}

func isVerbose() bool {
	return verbose
}
