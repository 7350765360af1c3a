package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datasheet/internal/config"
	"github.com/JonMunkholm/datasheet/internal/core"
	"github.com/JonMunkholm/datasheet/internal/store"
)

type importFlags struct {
	db        string
	table     string
	commit    bool
	noAutoFix bool
	removeBad bool
	ifExists  string
	invType   string
}

// tablesFailedError reports that some tables could not be persisted. The
// report has already been printed.
type tablesFailedError struct {
	failed, total int
}

func (e *tablesFailedError) Error() string {
	return fmt.Sprintf("%d of %d tables failed to import", e.failed, e.total)
}

func newImportCmd(a *app) *cobra.Command {
	f := &importFlags{}

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Preview and optionally import a datasheet",
		Long: `Runs the full pipeline over FILE: parse, map columns, sanitize, validate,
auto-fix and revalidate. Without --commit nothing is written and the report
says what would have been.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd, args[0], f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.db, "db", "", "SQLite path or postgres:// URL (default from config)")
	fl.StringVar(&f.table, "table", "", "preferred table name for every table in the file")
	fl.BoolVar(&f.commit, "commit", false, "write to the database (default is a dry run)")
	fl.BoolVar(&f.noAutoFix, "no-auto-fix", false, "disable automatic fixes")
	fl.BoolVar(&f.removeBad, "remove-bad", false, "drop irrecoverable rows when auto-fixing")
	fl.StringVar(&f.ifExists, "if-exists", "", "existing table policy: fail, replace or append (default from config)")
	fl.StringVar(&f.invType, "type", "", "check tables against an inventory type")

	return cmd
}

func (a *app) runImport(cmd *cobra.Command, path string, f *importFlags) error {
	target := f.db
	if target == "" {
		target = a.cfg.Database.Target
	}
	if target == "" {
		return fmt.Errorf("%w: pass --db", core.ErrNoTarget)
	}

	opts := core.ImportOptions{
		TableName:     f.table,
		DryRun:        !f.commit,
		AutoFix:       !f.noAutoFix,
		RemoveBadRows: f.removeBad,
		IfExists:      core.IfExists(a.cfg.Import.IfExists),
		InventoryType: f.invType,
	}
	if f.ifExists != "" {
		opts.IfExists = core.IfExists(f.ifExists)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Import.Timeout)
	defer cancel()

	var persister core.Persister
	if f.commit {
		st, err := a.openStore(ctx, target)
		if err != nil {
			return err
		}
		defer st.Close()
		persister = st
	}

	report, err := core.NewService(persister).ProcessAndImport(ctx, path, opts)
	if err != nil {
		return err
	}

	writeReport(cmd.OutOrStdout(), report)

	failed := 0
	for _, t := range report.Tables {
		if t.Failed() {
			failed++
		}
	}
	if failed > 0 {
		return &tablesFailedError{failed: failed, total: len(report.Tables)}
	}
	return nil
}

func newPreviewCmd(a *app) *cobra.Command {
	var invType string

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Show how a datasheet would be mapped and validated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var schema *core.InventorySchema
			if invType != "" {
				sc, ok := core.LookupSchema(invType)
				if !ok {
					return fmt.Errorf("%w: %s", core.ErrUnknownType, invType)
				}
				schema = &sc
			}

			previews, err := core.NewService(nil).PreviewAndAnalyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			writePreviews(cmd.OutOrStdout(), args[0], previews, schema)
			return nil
		},
	}
	cmd.Flags().StringVar(&invType, "type", "", "check tables against an inventory type")
	return cmd
}

// openStore connects to target and logs which database it is.
func (a *app) openStore(ctx context.Context, target string) (*store.Store, error) {
	st, err := store.Open(ctx, target, a.cfg.Database)
	if err != nil {
		return nil, err
	}
	slog.Info("persistence target opened", "kind", st.Kind(), "target", config.MaskTarget(target))
	return st, nil
}
