// cmd/scrapelog/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dorontal/scrapelog/internal/config"
	"github.com/dorontal/scrapelog/internal/logging"
	"github.com/dorontal/scrapelog/internal/output"
)

// app carries the state shared by all subcommands
type app struct {
	configPath string
	envFile    string
	outputFmt  string
	logLevel   string

	cfg *config.Config
	log zerolog.Logger
	out output.Renderer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "scrapelog",
		Short: "Verify and inspect scraper session logs",
		Long: `scrapelog reads scraper log files from the end backwards to check that
the most recent session is delimited by START and END lines, and to
summarise it without loading the whole file.

When no log path is given, the newest <YYYY-MM-DD>_<log_name>.log in
log_dir is used.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (.yaml or .toml)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "dotenv file to load before reading the environment")
	root.PersistentFlags().StringVarP(&a.outputFmt, "output", "o", "text", "output format: text, json")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides config)")

	root.AddCommand(
		a.verifyCmd(),
		a.queryCmd(),
		a.sessionCmd(),
		a.tailCmd(),
		a.historyCmd(),
		a.watchCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.envFile != "" {
		if err := config.LoadEnvFile(a.envFile); err != nil {
			return err
		}
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(a.logLevel))
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
	}
	a.cfg = cfg

	a.log = logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	})

	a.out, err = output.New(a.outputFmt, cmd.OutOrStdout())
	return err
}

// logPath picks the file named on the command line, or the newest log.
func (a *app) logPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	path, err := a.cfg.LatestLogPath()
	if err != nil {
		return "", err
	}
	a.log.Debug().Str("path", path).Msg("using latest log")
	return path, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "scrapelog:", err)
		os.Exit(1)
	}
}
