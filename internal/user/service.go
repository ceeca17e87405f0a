// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskdesk/internal/access"
	"github.com/hitoshi/taskdesk/internal/model"
	"github.com/hitoshi/taskdesk/internal/repository"
)

// PasswordHasher はパスワードをハッシュ化するインターフェース。
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// CreateInput はユーザー作成の入力値。
type CreateInput struct {
	Email    string
	Name     string
	Password string
	TeamID   *string
	IsAdmin  bool // 初期データ投入時のみ使用する。APIからは指定できない
}

// NormalizeEmail は照合と保存に使うメールアドレスの正規形を返す。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Creator はユーザー作成の共通ロジック。
// 自己登録（auth）と管理者による作成（Service）の双方から使用する。
type Creator struct {
	userRepo repository.UserRepository
	teamRepo repository.TeamRepository
	hasher   PasswordHasher
	now      func() time.Time
}

// NewCreator はCreatorを生成する。
func NewCreator(userRepo repository.UserRepository, teamRepo repository.TeamRepository, hasher PasswordHasher) *Creator {
	return &Creator{
		userRepo: userRepo,
		teamRepo: teamRepo,
		hasher:   hasher,
		now:      time.Now,
	}
}

// Create はユーザーを作成する。
// メールアドレスが登録済みの場合はEMAIL_ALREADY_REGISTERED、
// 指定されたチームが存在しない場合はTEAM_NOT_FOUNDを返す。
func (c *Creator) Create(ctx context.Context, in CreateInput) (*model.User, error) {
	email := NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" {
		return nil, model.NewValidationError("メールアドレスは必須です")
	}
	if name == "" {
		return nil, model.NewValidationError("名前は必須です")
	}
	if in.Password == "" {
		return nil, model.NewValidationError("パスワードは必須です")
	}

	existing, err := c.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailAlreadyRegisteredError()
	}

	var teamID *string
	if in.TeamID != nil && *in.TeamID != "" {
		team, err := c.teamRepo.FindByID(ctx, *in.TeamID)
		if err != nil {
			return nil, fmt.Errorf("チームの取得に失敗しました: %w", err)
		}
		if team == nil {
			return nil, model.NewTeamNotFoundError(*in.TeamID)
		}
		id := team.ID
		teamID = &id
	}

	hash, err := c.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		IsAdmin:      in.IsAdmin,
		TeamID:       teamID,
		CreatedAt:    c.now(),
	}
	if err := c.userRepo.Create(ctx, u); err != nil {
		// FindByEmailとCreateの間に同じメールアドレスで登録された場合
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewEmailAlreadyRegisteredError()
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("user created",
		slog.String("user_id", u.ID),
		slog.String("team_id", u.TeamIDOrEmpty()),
		slog.Bool("is_admin", u.IsAdmin),
	)
	return u, nil
}

// Service はユーザー管理のサービス層。
type Service struct {
	creator  *Creator
	userRepo repository.UserRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(creator *Creator, userRepo repository.UserRepository) *Service {
	return &Service{creator: creator, userRepo: userRepo}
}

// CreateByAdmin は管理者がユーザーを作成する。作成されるユーザーは一般ユーザーとなる。
func (s *Service) CreateByAdmin(ctx context.Context, actor access.Identity, in CreateInput) (*model.User, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	in.IsAdmin = false
	return s.creator.Create(ctx, in)
}

// ListAll は全ユーザーを返す。管理者専用。
func (s *Service) ListAll(ctx context.Context, actor access.Identity) ([]*model.User, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx, access.Scope{All: true})
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// ListVisible はactorから見えるユーザーを返す。
// 管理者は全員、一般ユーザーは同じチームのメンバー、チーム未所属の場合は空になる。
func (s *Service) ListVisible(ctx context.Context, actor access.Identity) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx, access.ListScope(actor))
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// GetByID は指定IDのユーザーを返す。見つからない場合はUSER_NOT_FOUNDを返す。
func (s *Service) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return nil, model.NewUserNotFoundError()
	}
	return u, nil
}
