// Package auth はパスワード認証、アクセストークンの発行と検証を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hitoshi/taskdesk/internal/access"
	"github.com/hitoshi/taskdesk/internal/model"
	"github.com/hitoshi/taskdesk/internal/repository"
	"github.com/hitoshi/taskdesk/internal/user"
)

// PasswordHasher はパスワードハッシュの生成と照合のインターフェース。
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

// TokenCodec はアクセストークンの発行と検証のインターフェース。
type TokenCodec interface {
	// Issue はsubjectに対するトークンを発行する。
	Issue(subject string) (string, error)
	// Parse はトークンを検証しsubjectを返す。
	Parse(token string) (string, error)
}

// LoginObserver はログイン試行の結果を受け取る。メトリクス収集に使用する。
type LoginObserver interface {
	ObserveLogin(success bool)
}

// Token はログイン成功時に返すアクセストークン。
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	creator  *user.Creator
	hasher   PasswordHasher
	tokens   TokenCodec
	observer LoginObserver

	dummyOnce sync.Once
	dummyHash string
}

// NewService はServiceを生成する。observerはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	creator *user.Creator,
	hasher PasswordHasher,
	tokens TokenCodec,
	observer LoginObserver,
) *Service {
	return &Service{
		userRepo: userRepo,
		creator:  creator,
		hasher:   hasher,
		tokens:   tokens,
		observer: observer,
	}
}

// Register はユーザーを自己登録する。登録されるユーザーは常に一般ユーザーとなる。
func (s *Service) Register(ctx context.Context, in user.CreateInput) (*model.User, error) {
	in.IsAdmin = false
	return s.creator.Create(ctx, in)
}

// Login はメールアドレスとパスワードを照合し、アクセストークンを発行する。
// メールアドレスが未登録の場合とパスワード不一致の場合は同一のエラーを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*Token, error) {
	u, err := s.userRepo.FindByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if u == nil {
		// 未登録でも照合処理を行い、応答時間からの存在推測を防ぐ
		_, _ = s.hasher.Compare(s.dummy(), password)
		s.observe(false)
		return nil, model.NewInvalidCredentialsError()
	}

	ok, err := s.hasher.Compare(u.PasswordHash, password)
	if err != nil {
		slog.Warn("password hash comparison failed",
			slog.String("user_id", u.ID),
			slog.String("error", err.Error()),
		)
	}
	if !ok {
		s.observe(false)
		return nil, model.NewInvalidCredentialsError()
	}

	accessToken, err := s.tokens.Issue(u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.observe(true)
	slog.Info("user logged in", slog.String("user_id", u.ID))
	return &Token{AccessToken: accessToken, TokenType: "bearer"}, nil
}

// Authenticate はアクセストークンを検証し、対応するユーザーのIdentityを返す。
// 署名不正・期限切れ・ユーザー不在のいずれの場合もUNAUTHORIZEDを返す。
func (s *Service) Authenticate(ctx context.Context, token string) (access.Identity, error) {
	if token == "" {
		return access.Identity{}, model.NewUnauthorizedError()
	}

	email, err := s.tokens.Parse(token)
	if err != nil {
		slog.Debug("token rejected", slog.String("error", err.Error()))
		return access.Identity{}, model.NewUnauthorizedError()
	}

	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return access.Identity{}, fmt.Errorf("failed to find user: %w", err)
	}
	if u == nil {
		return access.Identity{}, model.NewUnauthorizedError()
	}

	return access.FromUser(u), nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("taskdesk-dummy-password")
		if err != nil {
			slog.Error("failed to prepare dummy hash", slog.String("error", err.Error()))
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func (s *Service) observe(success bool) {
	if s.observer != nil {
		s.observer.ObserveLogin(success)
	}
}
