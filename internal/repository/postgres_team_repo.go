package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/taskdesk/internal/access"
	"github.com/hitoshi/taskdesk/internal/model"
)

const teamColumns = `id, name, description, created_by, created_at`

// PostgresTeamRepo はPostgreSQLを使用したチームリポジトリ。
type PostgresTeamRepo struct {
	db *sql.DB
}

// NewPostgresTeamRepo はPostgresTeamRepoを生成する。
func NewPostgresTeamRepo(db *sql.DB) *PostgresTeamRepo {
	return &PostgresTeamRepo{db: db}
}

// FindByID は指定IDのチームを取得する。見つからない場合はnilを返す。
func (r *PostgresTeamRepo) FindByID(ctx context.Context, id string) (*model.Team, error) {
	if !isUUID(id) {
		return nil, nil
	}
	team, err := scanTeam(r.db.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find team by ID: %w", err)
	}
	return team, nil
}

// FindByName はチーム名でチームを検索する。見つからない場合はnilを返す。
func (r *PostgresTeamRepo) FindByName(ctx context.Context, name string) (*model.Team, error) {
	team, err := scanTeam(r.db.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE name = $1 ORDER BY created_at LIMIT 1`,
		name,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find team by name: %w", err)
	}
	return team, nil
}

// Create はチームを作成する。
func (r *PostgresTeamRepo) Create(ctx context.Context, team *model.Team) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO teams (id, name, description, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		team.ID, team.Name, team.Description, team.CreatedBy, team.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}

// List はscopeの範囲のチームを返す。
func (r *PostgresTeamRepo) List(ctx context.Context, scope access.Scope) ([]*model.Team, error) {
	if scope.Empty {
		return []*model.Team{}, nil
	}

	where, args := scopeFilter(scope, "id", 1)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+teamColumns+` FROM teams`+where+` ORDER BY created_at, id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := []*model.Team{}
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teams: %w", err)
	}
	return teams, nil
}

func scanTeam(s rowScanner) (*model.Team, error) {
	team := &model.Team{}
	var description sql.NullString
	if err := s.Scan(&team.ID, &team.Name, &description, &team.CreatedBy, &team.CreatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		team.Description = &description.String
	}
	return team, nil
}

// compile-time interface check
var _ TeamRepository = (*PostgresTeamRepo)(nil)
