package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/platform/config"
)

// NewMigrateCommand はスキーマのマイグレーションコマンドを生成します。
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:       "migrate <up|down|drop|version|force> [version]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"up", "down", "drop", "version", "force"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(EffectiveConfigPath(opts.ConfigPath))
			if err != nil {
				return err
			}
			if err := RunMigration(cmd.OutOrStdout(), args, dir, cfg.Database.DSN()); err != nil {
				return fmt.Errorf("migration %s failed: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migration %s completed\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "assets/migrations", "directory containing migration files")

	return cmd
}

// EffectiveConfigPath はフラグ、CONFIG_PATH、既定値の順に設定ファイルのパスを決めます。
func EffectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

// RunMigration は dir のマイグレーションを dsn に対して実行します。
func RunMigration(out io.Writer, args []string, dir, dsn string) error {
	action := args[0]
	switch action {
	case "up", "down", "drop", "version":
	case "force":
		if len(args) != 2 {
			return fmt.Errorf("force requires a version")
		}
	default:
		return fmt.Errorf("unsupported action %q", action)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve path for %s: %w", dir, err)
	}
	absDir = filepath.ToSlash(absDir)

	m, err := migrate.New(fmt.Sprintf("file://%s", absDir), dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	switch action {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "drop":
		return m.Drop()
	case "force":
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		return m.Force(version)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Fprintln(out, "no migration applied")
				return nil
			}
			return err
		}
		fmt.Fprintf(out, "version=%d dirty=%t\n", version, dirty)
	}
	return nil
}
