package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Helmus101/confluence/internal/app"
	"github.com/Helmus101/confluence/internal/config"
	"github.com/Helmus101/confluence/internal/database"
	"github.com/Helmus101/confluence/internal/logger"
)

// runtime is what every subcommand needs. open is swapped out in tests.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	open   func(ctx context.Context) (*app.App, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	zapLogger, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	rt := &runtime{cfg: cfg, logger: zapLogger}
	rt.open = func(ctx context.Context) (*app.App, error) {
		return app.New(ctx, rt.cfg, rt.logger)
	}

	if err := newRootCmd(rt).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(rt *runtime) *cobra.Command {
	var (
		timeout time.Duration
		cancel  context.CancelFunc = func() {}
	)

	root := &cobra.Command{
		Use:           "confluencectl",
		Short:         "Operator tooling for the Confluence introduction marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if timeout <= 0 {
				return nil
			}
			var ctx context.Context
			ctx, cancel = context.WithTimeout(cmd.Context(), timeout)
			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) { cancel() },
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Abort the command after this long (0 disables)")

	root.AddCommand(
		newMigrateCmd(rt),
		newReportCmd(rt),
		newEnrichCmd(rt),
		newImportCmd(rt),
	)
	return root
}

func newMigrateCmd(rt *runtime) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rt.cfg.Store != "postgres" {
				return fmt.Errorf("migrate requires STORE=postgres, got %q", rt.cfg.Store)
			}
			db, err := database.OpenSQL(rt.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			return database.RunMigrations(db, path, rt.logger)
		},
	}
	cmd.Flags().StringVar(&path, "path", rt.cfg.MigrationsPath, "Directory holding the migration files")
	return cmd
}

func newReportCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print marketplace statistics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Reports.Build(cmd.Context())
			if err != nil {
				return fmt.Errorf("build report: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
}

func newEnrichCmd(rt *runtime) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Enrich every pending contact of one user",
		Long: `Run contact enrichment for one user, the same way POST /api/contacts/enrich does.

Example: confluencectl enrich --user 6f1c0c2e-6b1e-4f7e-9a55-0b8e3c2f4d11`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			owner, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user %q: %w", userID, err)
			}
			a, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.Users.Me(cmd.Context(), owner); err != nil {
				return fmt.Errorf("load user %s: %w", owner, err)
			}
			res, err := a.Contacts.Enrich(cmd.Context(), owner)
			if err != nil {
				return fmt.Errorf("enrich contacts: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Id of the user whose contacts are enriched")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newImportCmd(rt *runtime) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import contacts for one user from a .csv or .xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user %q: %w", userID, err)
			}
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			a, err := rt.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.Users.Me(cmd.Context(), owner); err != nil {
				return fmt.Errorf("load user %s: %w", owner, err)
			}
			n, err := a.Contacts.Import(cmd.Context(), owner, filepath.Base(args[0]), file)
			if err != nil {
				return fmt.Errorf("import contacts: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]int{"imported": n})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Id of the user who owns the contacts")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
