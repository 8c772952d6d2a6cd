// Package cli implements caratctl, the command line for slugs, the
// comparison list, copy, the sitemap and static publishing.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/CaratCompare/internal/config"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaratCompare/pkg/errors"
)

// Set by cmd/caratctl from -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type globalFlags struct {
	configPath string
	logLevel   string
	output     string
	verbose    bool
	noColor    bool
	timeout    time.Duration
}

// CLIContext is what every subcommand receives from the root command.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration
}

type cliContextKey struct{}

// NewRootCommand builds caratctl with its persistent flags and subcommands.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "caratctl",
		Short: "Carat Compare command line",
		Long: `caratctl encodes and decodes comparison slugs, lists the comparison pages,
prints comparison copy, builds the sitemap and pre-renders the site.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "config file (default: first of "+strings.Join(configCandidates(), ", ")+")")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.StringVarP(&flags.output, "output", "o", "text", "output format: "+strings.Join(outputFormats(), ", "))
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging and extra progress output")
	pf.BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	pf.DurationVar(&flags.timeout, "timeout", 5*time.Minute, "deadline for prerender and publish")

	root.AddCommand(
		newSlugCmd(),
		newEnumerateCmd(),
		newDescribeCmd(),
		newSitemapCmd(),
		newPrerenderCmd(),
		newVersionCmd(),
	)
	return root
}

func (f *globalFlags) resolve(cmd *cobra.Command) (*CLIContext, error) {
	format := strings.ToLower(f.output)
	if _, ok := printers[format]; !ok {
		return nil, errors.New(errors.ErrCodeValidation, "unsupported output format").WithDetail(f.output)
	}
	color.NoColor = color.NoColor || f.noColor

	cfg, err := f.loadConfig(cmd)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigError, "load config")
	}

	level := f.logLevel
	if f.verbose {
		level = "debug"
	}
	// Logs go to stderr; stdout carries command output only.
	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigError, "build logger")
	}

	return &CLIContext{
		Config:       cfg,
		Logger:       logger,
		OutputFormat: format,
		Verbose:      f.verbose,
		Timeout:      f.timeout,
	}, nil
}

// loadConfig uses --config when given, then the first existing candidate
// file, then the environment alone.
func (f *globalFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if f.configPath != "" {
		return config.Load(f.configPath)
	}
	for _, path := range configCandidates() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if f.verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "using config %s\n", path)
		}
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

func configCandidates() []string {
	paths := []string{"./caratcompare.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".caratcompare", "config.yaml"))
	}
	return append(paths, "/etc/caratcompare/config.yaml")
}

// GetCLIContext returns the context installed by the root command's
// pre-run hook.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	if ctx := cmd.Context(); ctx != nil {
		if cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext); ok && cliCtx != nil {
			return cliCtx, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInternal, "command was not started through the root command")
}

// Execute runs caratctl against os.Args and prints any failure to stderr.
func Execute() error {
	root := NewRootCommand()
	err := root.Execute()
	PrintError(root, err)
	return err
}
