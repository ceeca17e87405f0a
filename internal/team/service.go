// Package team はチーム管理のドメインロジックを提供する。
package team

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskdesk/internal/access"
	"github.com/hitoshi/taskdesk/internal/model"
	"github.com/hitoshi/taskdesk/internal/repository"
)

// CreateInput はチーム作成の入力値。
type CreateInput struct {
	Name        string
	Description *string
}

// Service はチーム管理のサービス層。
type Service struct {
	teamRepo repository.TeamRepository
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(teamRepo repository.TeamRepository) *Service {
	return &Service{teamRepo: teamRepo, now: time.Now}
}

// Create はチームを作成する。管理者専用。
// created_byは常に実行した管理者のIDになる。
func (s *Service) Create(ctx context.Context, actor access.Identity, in CreateInput) (*model.Team, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, model.NewValidationError("チーム名は必須です")
	}

	t := &model.Team{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		CreatedBy:   actor.UserID,
		CreatedAt:   s.now(),
	}
	if err := s.teamRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("チームの作成に失敗しました: %w", err)
	}

	slog.Info("team created",
		slog.String("team_id", t.ID),
		slog.String("created_by", t.CreatedBy),
	)
	return t, nil
}

// List はactorから見えるチームを返す。
// 管理者は全チーム、一般ユーザーは自チームのみ、未所属の場合は空になる。
func (s *Service) List(ctx context.Context, actor access.Identity) ([]*model.Team, error) {
	teams, err := s.teamRepo.List(ctx, access.ListScope(actor))
	if err != nil {
		return nil, fmt.Errorf("チーム一覧の取得に失敗しました: %w", err)
	}
	return teams, nil
}

// Get は指定IDのチームを返す。
// 存在しない場合はTEAM_NOT_FOUND、範囲外の場合はFORBIDDENを返す。
func (s *Service) Get(ctx context.Context, actor access.Identity, id string) (*model.Team, error) {
	t, err := s.teamRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("チームの取得に失敗しました: %w", err)
	}
	if t == nil {
		return nil, model.NewTeamNotFoundError(id)
	}
	if err := access.CheckTeamAccess(actor, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}
