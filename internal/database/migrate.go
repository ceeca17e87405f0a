// Package database はデータベース接続とスキーマのマイグレーションを提供する。
package database

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// SchemaStatus は適用済みスキーマの状態。
type SchemaStatus struct {
	Version uint
	Dirty   bool
	Applied bool // 1件以上適用済みか
}

// Migrator はバイナリに埋め込んだSQLでusers/teams/tasks/commentsのスキーマを管理する。
type Migrator struct {
	m      *migrate.Migrate
	logger *slog.Logger
}

// NewMigrator はPostgreSQLの接続URLに対するMigratorを生成する。
func NewMigrator(databaseURL string, logger *slog.Logger) (*Migrator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	src, err := iofs.New(migrationsFS, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return &Migrator{m: m, logger: logger}, nil
}

// Up は未適用のマイグレーションをすべて適用する。最新の場合は何もしない。
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.logger.Info("schema is up to date")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return mg.logStatus("schema migrated up")
}

// Down はstepsの数だけマイグレーションを巻き戻す。stepsが0以下の場合はすべて巻き戻す。
func (mg *Migrator) Down(steps int) error {
	var err error
	if steps > 0 {
		err = mg.m.Steps(-steps)
	} else {
		err = mg.m.Down()
	}
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.logger.Info("no migrations to roll back")
			return nil
		}
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return mg.logStatus("schema migrated down")
}

// Status は現在のスキーマバージョンを返す。
func (mg *Migrator) Status() (SchemaStatus, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return SchemaStatus{}, nil
	}
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("failed to read schema version: %w", err)
	}
	return SchemaStatus{Version: version, Dirty: dirty, Applied: true}, nil
}

// Close はソースとDB接続を閉じる。
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

func (mg *Migrator) logStatus(msg string) error {
	st, err := mg.Status()
	if err != nil {
		return err
	}
	mg.logger.Info(msg,
		slog.Uint64("version", uint64(st.Version)),
		slog.Bool("applied", st.Applied),
	)
	return nil
}

// RunMigrations はすべての未適用マイグレーションを適用する。
func RunMigrations(databaseURL string) error {
	mg, err := NewMigrator(databaseURL, nil)
	if err != nil {
		return err
	}
	defer mg.Close()
	return mg.Up()
}

// EmbeddedVersions は埋め込まれたマイグレーションのバージョンを昇順で返す。
// 各バージョンにupとdownの両方が揃っていない場合はエラーを返す。
func EmbeddedVersions() ([]uint, error) {
	src, err := iofs.New(migrationsFS, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	defer src.Close()

	var versions []uint
	version, err := src.First()
	for err == nil {
		if err := requireBothDirections(src, version); err != nil {
			return nil, err
		}
		versions = append(versions, version)
		version, err = src.Next(version)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to list embedded migrations: %w", err)
	}
	return versions, nil
}

func requireBothDirections(src source.Driver, version uint) error {
	up, _, err := src.ReadUp(version)
	if err != nil {
		return fmt.Errorf("migration %d has no up script: %w", version, err)
	}
	up.Close()
	down, _, err := src.ReadDown(version)
	if err != nil {
		return fmt.Errorf("migration %d has no down script: %w", version, err)
	}
	down.Close()
	return nil
}
