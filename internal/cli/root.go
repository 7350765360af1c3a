// Package cli implements the datasheet command line.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datasheet/internal/config"
	"github.com/JonMunkholm/datasheet/internal/core"
	"github.com/JonMunkholm/datasheet/internal/logging"
)

// version is set at build time with -ldflags "-X .../internal/cli.version=...".
var version = "dev"

// app carries state shared by every subcommand of one invocation.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "datasheet",
		Short: "Import inventory datasheets into a database",
		Long: `datasheet reads CSV, TSV, TXT and XLSX inventory datasheets, maps their
columns onto id, name, quantity and price, cleans and validates the values
and writes the result to SQLite or PostgreSQL.

Imports are dry runs unless --commit is given.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "TOML config file (default $"+config.EnvConfigFile+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(
		newImportCmd(a),
		newPreviewCmd(a),
		newServeCmd(a),
		newTypesCmd(),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and routes logs to stderr.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())

	a.cfg = cfg
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

func printError(w io.Writer, err error) {
	var failed *tablesFailedError
	switch {
	case errors.As(err, &failed):
		fmt.Fprintln(w, "Error:", failed)
	case core.IsUserFacing(err):
		fmt.Fprintln(w, "Error:", core.FormatUserError(err))
		fmt.Fprintln(w, "Detail:", err)
	default:
		fmt.Fprintln(w, "Error:", err)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		// Skip config loading so version works with a broken config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("datasheet version %s\n", version)
		},
	}
}
