// ABOUTME: CLI entry point for the clipboard concierge
// ABOUTME: Cobra root with global --config/--verbose; settings load once before any subcommand

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mauromedda/concierge-go/internal/config"
	"github.com/mauromedda/concierge-go/internal/intent"
	"github.com/mauromedda/concierge-go/internal/log"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app carries global flags and the loaded settings to subcommands.
type app struct {
	configPath string
	verbose    bool
	settings   *config.Settings
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "concierge",
		Short:         "Offline clipboard concierge: classifies captured content and suggests follow-ups",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.concierge/config.yaml overlaid by ./.concierge/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newRunCmd(a),
		newClassifyCmd(a),
		newPatternsCmd(a),
		newRecentCmd(a),
		newDispatchesCmd(a),
		newExecCmd(a),
		newVersionCmd(),
	)
	return root
}

// load resolves settings and configures logging.
func (a *app) load(cmd *cobra.Command) error {
	log.SetOutput(cmd.ErrOrStderr())

	var (
		s   *config.Settings
		err error
	)
	if a.configPath != "" {
		s, err = config.LoadFile(a.configPath)
	} else {
		cwd, werr := os.Getwd()
		if werr != nil {
			return fmt.Errorf("resolving working directory: %w", werr)
		}
		s, err = config.Load(cwd)
	}
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if a.verbose {
		level = log.LevelDebug
	}
	log.SetLevel(level)

	a.settings = s
	return nil
}

// labels converts configured label overrides keyed by action id.
func (a *app) labels() map[intent.Action]string {
	if len(a.settings.Labels) == 0 {
		return nil
	}
	out := make(map[intent.Action]string, len(a.settings.Labels))
	for id, label := range a.settings.Labels {
		act, err := intent.ParseAction(id)
		if err != nil {
			log.Warn("config: labels: %v", err)
			continue
		}
		out[act] = label
	}
	return out
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Skip settings loading so version works with a broken config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "concierge %s (%s) built %s\n", version, commit, date)
			return nil
		},
	}
}
