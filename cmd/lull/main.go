package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/lull/internal/config"
	"github.com/pders01/lull/internal/debuglog"
	"github.com/pders01/lull/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath    string
	dbPath        string
	debounceFlag  time.Duration
	operationFlag string
	staleGuard    bool
	quiet         bool
)

var rootCmd = &cobra.Command{
	Use:           "lull",
	Short:         "Debounced async actions in the terminal",
	Long:          "lull runs an operation against what you type, once you stop typing, and shows its status next to the input.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer debuglog.Close()

		if !quiet {
			tui.ShowBanner(Version)
		}
		tui.ApplyTheme(cfg.UI.Colors)

		s, err := openSession(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		app := tui.NewApp(s.ctrl, cfg, cfg.Action.Operation)
		p := tea.NewProgram(app, tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lull %s\n", Version)
		fmt.Println("debounced async action controller")
		fmt.Println("github.com/pders01/lull")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to database file (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&debounceFlag, "debounce", 0, "Debounce interval (overrides config)")
	rootCmd.PersistentFlags().StringVar(&operationFlag, "operation", "", "Operation to run: random, feed, available, match")
	rootCmd.PersistentFlags().BoolVar(&staleGuard, "stale-guard", false, "Discard results from superseded input")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "Skip startup banner")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(reserveCmd)
	rootCmd.AddCommand(replayCmd)
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if debounceFlag != 0 {
		cfg.Action.Debounce = debounceFlag
	}
	if operationFlag != "" {
		cfg.Action.Operation = operationFlag
	}
	if cmd != nil && cmd.Flags().Changed("stale-guard") {
		cfg.Action.StaleGuard = staleGuard
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		return nil, fmt.Errorf("setting up log: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
