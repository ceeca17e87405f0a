package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskdesk/internal/access"
	"github.com/hitoshi/taskdesk/internal/model"
	"github.com/hitoshi/taskdesk/internal/repository"
	"github.com/hitoshi/taskdesk/internal/user"
)

const (
	seedAdminName         = "Administrador"
	seedTeamName          = "Equipe Desenvolvimento"
	seedTeamDescription   = "Equipe responsável pelo desenvolvimento de software"
	defaultMemberPassword = "user123"
)

// seedMember はサンプルメンバーの定義。
type seedMember struct {
	Email string
	Name  string
}

var seedMembers = []seedMember{
	{Email: "joao@taskmanager.com", Name: "João Silva"},
	{Email: "maria@taskmanager.com", Name: "Maria Santos"},
	{Email: "pedro@taskmanager.com", Name: "Pedro Oliveira"},
}

// seedTask はサンプルタスクの定義。
type seedTask struct {
	Title       string
	Description string
	Category    string
	Urgency     model.Urgency
}

var seedTasks = []seedTask{
	{
		Title:       "Implementar sistema de login",
		Description: "Desenvolver a funcionalidade de autenticação de usuários",
		Category:    "Desenvolvimento",
		Urgency:     model.UrgencyAlta,
	},
	{
		Title:       "Criar dashboard administrativo",
		Description: "Desenvolver interface para administradores gerenciarem o sistema",
		Category:    "Frontend",
		Urgency:     model.UrgencyMedia,
	},
	{
		Title:       "Configurar banco de dados",
		Description: "Configurar e otimizar a estrutura do banco de dados",
		Category:    "Backend",
		Urgency:     model.UrgencyCritica,
	},
	{
		Title:       "Testes de integração",
		Description: "Implementar testes automatizados para as APIs",
		Category:    "QA",
		Urgency:     model.UrgencyBaixa,
	},
}

var seedStatuses = []model.TaskStatus{
	model.TaskStatusPendente,
	model.TaskStatusEmProgresso,
	model.TaskStatusConcluida,
}

// SeedConfig は初期データ投入の設定。
type SeedConfig struct {
	AdminEmail     string
	AdminPassword  string
	MemberPassword string // 空の場合はdefaultMemberPassword
}

// SeedResult は初期データ投入の結果。
type SeedResult struct {
	AdminID      string
	TeamID       string
	MemberIDs    []string
	TasksCreated int
}

// Seeder は管理者とサンプルデータを投入する。
// 既に存在するデータは作成しないため、繰り返し実行できる。
type Seeder struct {
	users   repository.UserRepository
	teams   repository.TeamRepository
	tasks   repository.TaskRepository
	creator *user.Creator
	logger  *slog.Logger
	now     func() time.Time
}

// NewSeeder はSeederを生成する。loggerがnilの場合はslog.Default()を使用する。
func NewSeeder(
	users repository.UserRepository,
	teams repository.TeamRepository,
	tasks repository.TaskRepository,
	creator *user.Creator,
	logger *slog.Logger,
) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		users:   users,
		teams:   teams,
		tasks:   tasks,
		creator: creator,
		logger:  logger,
		now:     time.Now,
	}
}

// Seed は管理者、サンプルチーム、メンバー、タスクの順に投入する。
// タスクはチームにタスクが1件も無い場合のみ作成する。
func (s *Seeder) Seed(ctx context.Context, cfg SeedConfig) (*SeedResult, error) {
	admin, err := s.ensureUser(ctx, user.CreateInput{
		Email:    cfg.AdminEmail,
		Name:     seedAdminName,
		Password: cfg.AdminPassword,
		IsAdmin:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed admin user: %w", err)
	}

	team, err := s.ensureTeam(ctx, admin.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to seed team: %w", err)
	}

	memberPassword := cfg.MemberPassword
	if memberPassword == "" {
		memberPassword = defaultMemberPassword
	}
	teamID := team.ID
	memberIDs := make([]string, 0, len(seedMembers))
	for _, m := range seedMembers {
		u, err := s.ensureUser(ctx, user.CreateInput{
			Email:    m.Email,
			Name:     m.Name,
			Password: memberPassword,
			TeamID:   &teamID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed member %s: %w", m.Email, err)
		}
		memberIDs = append(memberIDs, u.ID)
	}

	created, err := s.ensureTasks(ctx, team.ID, admin.ID, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to seed tasks: %w", err)
	}

	return &SeedResult{
		AdminID:      admin.ID,
		TeamID:       team.ID,
		MemberIDs:    memberIDs,
		TasksCreated: created,
	}, nil
}

func (s *Seeder) ensureUser(ctx context.Context, in user.CreateInput) (*model.User, error) {
	existing, err := s.users.FindByEmail(ctx, user.NormalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Info("seed user already exists", slog.String("email", existing.Email))
		return existing, nil
	}
	if in.Password == "" {
		return nil, errors.New("password is required to create " + in.Email)
	}

	u, err := s.creator.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("seed user created",
		slog.String("email", u.Email),
		slog.Bool("is_admin", u.IsAdmin),
	)
	return u, nil
}

func (s *Seeder) ensureTeam(ctx context.Context, adminID string) (*model.Team, error) {
	existing, err := s.teams.FindByName(ctx, seedTeamName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Info("seed team already exists", slog.String("team_id", existing.ID))
		return existing, nil
	}

	desc := seedTeamDescription
	team := &model.Team{
		ID:          uuid.New().String(),
		Name:        seedTeamName,
		Description: &desc,
		CreatedBy:   adminID,
		CreatedAt:   s.now(),
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, err
	}
	s.logger.Info("seed team created", slog.String("team_id", team.ID))
	return team, nil
}

func (s *Seeder) ensureTasks(ctx context.Context, teamID, adminID string, memberIDs []string) (int, error) {
	existing, err := s.tasks.List(ctx, access.Scope{TeamID: teamID})
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		s.logger.Info("seed tasks already exist", slog.Int("count", len(existing)))
		return 0, nil
	}
	if len(memberIDs) == 0 {
		return 0, nil
	}

	for i, st := range seedTasks {
		now := s.now()
		desc := st.Description
		t := &model.Task{
			ID:                uuid.New().String(),
			Title:             st.Title,
			Description:       &desc,
			ResponsibleUserID: memberIDs[i%len(memberIDs)],
			Category:          st.Category,
			Urgency:           st.Urgency,
			Status:            seedStatuses[i%len(seedStatuses)],
			RequestedBy:       adminID,
			TeamID:            teamID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := s.tasks.Create(ctx, t); err != nil {
			return i, err
		}
	}
	s.logger.Info("seed tasks created", slog.Int("count", len(seedTasks)))
	return len(seedTasks), nil
}
