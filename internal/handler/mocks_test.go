package handler

import (
	"context"

	"github.com/hitoshi/taskdesk/internal/access"
	"github.com/hitoshi/taskdesk/internal/auth"
	"github.com/hitoshi/taskdesk/internal/comment"
	"github.com/hitoshi/taskdesk/internal/dashboard"
	"github.com/hitoshi/taskdesk/internal/model"
	"github.com/hitoshi/taskdesk/internal/task"
	"github.com/hitoshi/taskdesk/internal/team"
	"github.com/hitoshi/taskdesk/internal/user"
)

// --- サービスのモック ---

type mockAuthService struct {
	registerFn func(ctx context.Context, in user.CreateInput) (*model.User, error)
	loginFn    func(ctx context.Context, email, password string) (*auth.Token, error)
}

func (m *mockAuthService) Register(ctx context.Context, in user.CreateInput) (*model.User, error) {
	return m.registerFn(ctx, in)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.Token, error) {
	return m.loginFn(ctx, email, password)
}

type mockUserService struct {
	getByIDFn       func(ctx context.Context, id string) (*model.User, error)
	createByAdminFn func(ctx context.Context, actor access.Identity, in user.CreateInput) (*model.User, error)
	listAllFn       func(ctx context.Context, actor access.Identity) ([]*model.User, error)
	listVisibleFn   func(ctx context.Context, actor access.Identity) ([]*model.User, error)
}

func (m *mockUserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockUserService) CreateByAdmin(ctx context.Context, actor access.Identity, in user.CreateInput) (*model.User, error) {
	return m.createByAdminFn(ctx, actor, in)
}

func (m *mockUserService) ListAll(ctx context.Context, actor access.Identity) ([]*model.User, error) {
	return m.listAllFn(ctx, actor)
}

func (m *mockUserService) ListVisible(ctx context.Context, actor access.Identity) ([]*model.User, error) {
	return m.listVisibleFn(ctx, actor)
}

type mockTeamService struct {
	createFn func(ctx context.Context, actor access.Identity, in team.CreateInput) (*model.Team, error)
	listFn   func(ctx context.Context, actor access.Identity) ([]*model.Team, error)
	getFn    func(ctx context.Context, actor access.Identity, id string) (*model.Team, error)
}

func (m *mockTeamService) Create(ctx context.Context, actor access.Identity, in team.CreateInput) (*model.Team, error) {
	return m.createFn(ctx, actor, in)
}

func (m *mockTeamService) List(ctx context.Context, actor access.Identity) ([]*model.Team, error) {
	return m.listFn(ctx, actor)
}

func (m *mockTeamService) Get(ctx context.Context, actor access.Identity, id string) (*model.Team, error) {
	return m.getFn(ctx, actor, id)
}

type mockTaskService struct {
	createFn func(ctx context.Context, actor access.Identity, in task.CreateInput) (*model.Task, error)
	listFn   func(ctx context.Context, actor access.Identity) ([]*model.Task, error)
	getFn    func(ctx context.Context, actor access.Identity, id string) (*model.Task, error)
	updateFn func(ctx context.Context, actor access.Identity, id string, upd model.TaskUpdate) (*model.Task, error)
	deleteFn func(ctx context.Context, actor access.Identity, id string) error
}

func (m *mockTaskService) Create(ctx context.Context, actor access.Identity, in task.CreateInput) (*model.Task, error) {
	return m.createFn(ctx, actor, in)
}

func (m *mockTaskService) List(ctx context.Context, actor access.Identity) ([]*model.Task, error) {
	return m.listFn(ctx, actor)
}

func (m *mockTaskService) Get(ctx context.Context, actor access.Identity, id string) (*model.Task, error) {
	return m.getFn(ctx, actor, id)
}

func (m *mockTaskService) Update(ctx context.Context, actor access.Identity, id string, upd model.TaskUpdate) (*model.Task, error) {
	return m.updateFn(ctx, actor, id, upd)
}

func (m *mockTaskService) Delete(ctx context.Context, actor access.Identity, id string) error {
	return m.deleteFn(ctx, actor, id)
}

type mockCommentService struct {
	createFn      func(ctx context.Context, actor access.Identity, in comment.CreateInput) (*model.Comment, error)
	listForTaskFn func(ctx context.Context, actor access.Identity, taskID string) ([]*model.Comment, error)
}

func (m *mockCommentService) Create(ctx context.Context, actor access.Identity, in comment.CreateInput) (*model.Comment, error) {
	return m.createFn(ctx, actor, in)
}

func (m *mockCommentService) ListForTask(ctx context.Context, actor access.Identity, taskID string) ([]*model.Comment, error) {
	return m.listForTaskFn(ctx, actor, taskID)
}

type mockDashboardService struct {
	computeStatsFn func(ctx context.Context, actor access.Identity) (*dashboard.Stats, error)
}

func (m *mockDashboardService) ComputeStats(ctx context.Context, actor access.Identity) (*dashboard.Stats, error) {
	return m.computeStatsFn(ctx, actor)
}

// mockPinger はテスト用のPinger実装。
type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	return m.err
}
