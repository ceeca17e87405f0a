package app

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hitoshi/taskdesk/internal/config"
)

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandSeed は管理者とサンプルデータを投入することを示す。
	CommandSeed Command = "seed"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// MigrateAction はmigrateサブコマンドの操作。
type MigrateAction string

const (
	MigrateUp     MigrateAction = "up"
	MigrateDown   MigrateAction = "down"
	MigrateStatus MigrateAction = "status"
)

// parseMigrateAction はmigrateの引数を解釈する。引数が無い場合はup。
func parseMigrateAction(args []string) (MigrateAction, error) {
	if len(args) == 0 {
		return MigrateUp, nil
	}
	switch a := MigrateAction(args[0]); a {
	case MigrateUp, MigrateDown, MigrateStatus:
		return a, nil
	default:
		return "", fmt.Errorf("unknown migrate action %q (want up, down or status)", args[0])
	}
}

// NewRootCommand はtaskdeskのルートコマンドを生成する。
// サブコマンド未指定の場合はserveとして動作する。
// ログ出力先にはwを使用する。
func NewRootCommand(w io.Writer) *cobra.Command {
	var envFiles []string

	rootCmd := &cobra.Command{
		Use:           "taskdesk",
		Short:         "Team task management API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, w, CommandServe, envFiles, runServe)
		},
	}
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "読み込む.envファイル（複数指定可）")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   string(CommandServe),
			Short: "Start the HTTP API server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runCommand(cmd, w, CommandServe, envFiles, runServe)
			},
		},
		newMigrateCommand(w, &envFiles),
		&cobra.Command{
			Use:   string(CommandSeed),
			Short: "Create the admin user and sample data",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runCommand(cmd, w, CommandSeed, envFiles, runSeed)
			},
		},
		newHealthcheckCommand(),
	)

	return rootCmd
}

// newMigrateCommand はmigrate [up|down|status]サブコマンドを生成する。
func newMigrateCommand(w io.Writer, envFiles *[]string) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:       string(CommandMigrate) + " [up|down|status]",
		Short:     "Apply, roll back or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(MigrateUp), string(MigrateDown), string(MigrateStatus)},
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := parseMigrateAction(args)
			if err != nil {
				return err
			}
			if steps < 0 {
				return fmt.Errorf("--steps must not be negative: %d", steps)
			}
			return runCommand(cmd, w, CommandMigrate, *envFiles, func(_ context.Context, cfg *config.Config) error {
				return runMigrate(cfg, action, steps)
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "downで巻き戻す件数（0はすべて）")
	return cmd
}

// newHealthcheckCommand は軽量なhealthcheckサブコマンドを生成する。
// 設定の読み込みを行わないため、必須環境変数が無くても実行できる。
func newHealthcheckCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   string(CommandHealthcheck),
		Short: "Check the local /health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runHealthcheck(healthcheckPort(port))
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "ポート番号（未指定時はSERVER_PORT、既定は8080）")
	return cmd
}
