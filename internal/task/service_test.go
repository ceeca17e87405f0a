package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/taskdesk/internal/access"
	"github.com/hitoshi/taskdesk/internal/model"
	"github.com/hitoshi/taskdesk/internal/repository"
	"github.com/hitoshi/taskdesk/internal/security"
)

// --- モック ---

type mockTaskRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.Task, error)
	createFn   func(ctx context.Context, task *model.Task) error
	updateFn   func(ctx context.Context, task *model.Task) error
	deleteFn   func(ctx context.Context, id string) error
	listFn     func(ctx context.Context, scope access.Scope) ([]*model.Task, error)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockTaskRepo) Create(ctx context.Context, task *model.Task) error {
	if m.createFn != nil {
		return m.createFn(ctx, task)
	}
	return nil
}

func (m *mockTaskRepo) Update(ctx context.Context, task *model.Task) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, task)
	}
	return nil
}

func (m *mockTaskRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockTaskRepo) List(ctx context.Context, scope access.Scope) ([]*model.Task, error) {
	if m.listFn != nil {
		return m.listFn(ctx, scope)
	}
	return []*model.Task{}, nil
}

// mockTeamRepo はteamsに登録されたIDのみ存在するチームリポジトリ。
type mockTeamRepo struct {
	teams map[string]bool
}

func (m *mockTeamRepo) FindByID(_ context.Context, id string) (*model.Team, error) {
	if m.teams[id] {
		return &model.Team{ID: id}, nil
	}
	return nil, nil
}
func (m *mockTeamRepo) FindByName(_ context.Context, _ string) (*model.Team, error) { return nil, nil }
func (m *mockTeamRepo) Create(_ context.Context, _ *model.Team) error               { return nil }
func (m *mockTeamRepo) List(_ context.Context, _ access.Scope) ([]*model.Team, error) {
	return nil, nil
}

// mockUserRepo はusersに登録されたユーザーのみ存在するユーザーリポジトリ。
type mockUserRepo struct {
	users map[string]*model.User
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	return m.users[id], nil
}
func (m *mockUserRepo) FindByEmail(_ context.Context, _ string) (*model.User, error) { return nil, nil }
func (m *mockUserRepo) Create(_ context.Context, _ *model.User) error                { return nil }
func (m *mockUserRepo) List(_ context.Context, _ access.Scope) ([]*model.User, error) {
	return nil, nil
}

type sentMessage struct {
	email, subject, body string
}

type recordingSink struct {
	sent []sentMessage
	err  error
}

func (r *recordingSink) Send(_ context.Context, email, subject, body string) error {
	r.sent = append(r.sent, sentMessage{email, subject, body})
	return r.err
}

type countingObserver struct {
	created map[model.Urgency]int
}

func (c *countingObserver) ObserveTaskCreated(u model.Urgency) {
	if c.created == nil {
		c.created = map[model.Urgency]int{}
	}
	c.created[u]++
}

var (
	_ repository.TaskRepository = (*mockTaskRepo)(nil)
	_ repository.TeamRepository = (*mockTeamRepo)(nil)
	_ repository.UserRepository = (*mockUserRepo)(nil)
	_ CreatedObserver           = (*countingObserver)(nil)
)

// --- テストデータ ---

const (
	joaoID  = "3f6c2a1e-8d4b-4c6e-9a57-1b2d3e4f5a60"
	mariaID = "7a9e0c4d-2b1f-4e8a-b6c3-5d4e3f2a1b70"
)

var (
	admin   = access.Identity{UserID: "admin", Email: "admin@taskmanager.com", IsAdmin: true}
	memberA = access.Identity{UserID: joaoID, Email: "joao@taskmanager.com", TeamID: "team-a"}
	lonely  = access.Identity{UserID: "nobody", Email: "nobody@taskmanager.com"}
)

type fixture struct {
	svc      *Service
	tasks    *mockTaskRepo
	sink     *recordingSink
	observer *countingObserver
	stored   map[string]*model.Task
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sink:     &recordingSink{},
		observer: &countingObserver{},
		stored:   map[string]*model.Task{},
		now:      time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	f.tasks = &mockTaskRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Task, error) {
			if task, ok := f.stored[id]; ok {
				copied := *task
				return &copied, nil
			}
			return nil, nil
		},
		createFn: func(_ context.Context, task *model.Task) error {
			f.stored[task.ID] = task
			return nil
		},
		updateFn: func(_ context.Context, task *model.Task) error {
			f.stored[task.ID] = task
			return nil
		},
		deleteFn: func(_ context.Context, id string) error {
			delete(f.stored, id)
			return nil
		},
	}
	users := &mockUserRepo{users: map[string]*model.User{
		"admin": {ID: "admin", Email: "admin@taskmanager.com", IsAdmin: true},
		joaoID:  {ID: joaoID, Email: "joao@taskmanager.com"},
		mariaID: {ID: mariaID, Email: "maria@taskmanager.com"},
	}}
	teams := &mockTeamRepo{teams: map[string]bool{"team-a": true, "team-b": true}}

	f.svc = NewService(f.tasks, teams, users, security.NewTextSanitizer(), f.sink, f.observer)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) put(task *model.Task) {
	f.stored[task.ID] = task
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T (%v)", err, err)
	}
	return apiErr.Code
}

func validInput(teamID string) CreateInput {
	return CreateInput{
		Title:             "Implementar login",
		ResponsibleUserID: joaoID,
		Category:          "Backend",
		Urgency:           model.UrgencyAlta,
		TeamID:            teamID,
	}
}

// --- Create ---

// TestCreate_TeamScope はメンバーが他チームにタスクを作成できないことを検証する。
func TestCreate_TeamScope(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), memberA, validInput("team-b"))
	if code := errorCode(t, err); code != model.ErrCodeForbidden {
		t.Errorf("other team code = %q, want %q", code, model.ErrCodeForbidden)
	}

	_, err = f.svc.Create(context.Background(), lonely, validInput("team-a"))
	if code := errorCode(t, err); code != model.ErrCodeForbidden {
		t.Errorf("no team code = %q, want %q", code, model.ErrCodeForbidden)
	}

	got, err := f.svc.Create(context.Background(), memberA, validInput("team-a"))
	if err != nil {
		t.Fatalf("own team Create returned error: %v", err)
	}
	if got.TeamID != "team-a" {
		t.Errorf("TeamID = %q, want team-a", got.TeamID)
	}
	if len(f.stored) != 1 {
		t.Errorf("stored tasks = %d, want 1", len(f.stored))
	}
}

func TestCreate_Defaults(t *testing.T) {
	f := newFixture(t)

	desc := "<b>Integrar</b> com JWT"
	in := validInput("team-a")
	in.Description = &desc
	got, err := f.svc.Create(context.Background(), memberA, in)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if got.Status != model.TaskStatusPendente {
		t.Errorf("Status = %q, want pendente", got.Status)
	}
	if got.RequestedBy != memberA.UserID {
		t.Errorf("RequestedBy = %q, want actor", got.RequestedBy)
	}
	if got.Description == nil || *got.Description != "Integrar com JWT" {
		t.Errorf("Description = %v, want sanitized text", got.Description)
	}
	if !got.CreatedAt.Equal(f.now) || !got.UpdatedAt.Equal(f.now) {
		t.Errorf("timestamps = %v/%v, want %v", got.CreatedAt, got.UpdatedAt, f.now)
	}
	if f.observer.created[model.UrgencyAlta] != 1 {
		t.Errorf("observer not notified: %v", f.observer.created)
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name     string
		actor    access.Identity
		mutate   func(in *CreateInput)
		wantCode string
	}{
		{"存在しないチーム", admin, func(in *CreateInput) { in.TeamID = "team-x" }, model.ErrCodeTeamNotFound},
		{"未定義の緊急度", memberA, func(in *CreateInput) { in.Urgency = "urgente" }, model.ErrCodeValidation},
		{"未定義のステータス", memberA, func(in *CreateInput) { in.Status = "feito" }, model.ErrCodeValidation},
		{"タイトルなし", memberA, func(in *CreateInput) { in.Title = " " }, model.ErrCodeValidation},
		{"カテゴリなし", memberA, func(in *CreateInput) { in.Category = "" }, model.ErrCodeValidation},
		{"担当者なし", memberA, func(in *CreateInput) { in.ResponsibleUserID = "" }, model.ErrCodeValidation},
		{"UUIDでない担当者", memberA, func(in *CreateInput) { in.ResponsibleUserID = "not-a-uuid" }, model.ErrCodeValidation},
		{"存在しない依頼者", memberA, func(in *CreateInput) { in.RequestedBy = "ghost" }, model.ErrCodeValidation},
		// メンバーが存在しない他チームを指定した場合は範囲外として扱う
		{"メンバーが存在しないチームを指定", memberA, func(in *CreateInput) { in.TeamID = "team-x" }, model.ErrCodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := validInput("team-a")
			tt.mutate(&in)
			_, err := f.svc.Create(context.Background(), tt.actor, in)
			if code := errorCode(t, err); code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
			if len(f.stored) != 0 {
				t.Error("task must not be stored on error")
			}
		})
	}
}

func TestCreate_ExplicitRequester(t *testing.T) {
	f := newFixture(t)
	in := validInput("team-a")
	in.RequestedBy = mariaID

	got, err := f.svc.Create(context.Background(), memberA, in)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if got.RequestedBy != mariaID {
		t.Errorf("RequestedBy = %q, want maria", got.RequestedBy)
	}
}

// TestCreate_NotifiesResponsible は担当者のメールアドレスに通知されることを検証する。
func TestCreate_NotifiesResponsible(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Create(context.Background(), admin, validInput("team-a")); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(f.sink.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(f.sink.sent))
	}
	msg := f.sink.sent[0]
	if msg.email != "joao@taskmanager.com" {
		t.Errorf("email = %q, want responsible user's email", msg.email)
	}
	if msg.subject != "New task: Implementar login" {
		t.Errorf("subject = %q", msg.subject)
	}
	wantBody := `You have been assigned the task "Implementar login" (urgency: alta).`
	if msg.body != wantBody {
		t.Errorf("body = %q, want %q", msg.body, wantBody)
	}
}

// TestCreate_NotificationFailureDoesNotFail は通知の失敗や担当者不在でも作成が成功することを検証する。
func TestCreate_NotificationFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.sink.err = errors.New("smtp down")

	if _, err := f.svc.Create(context.Background(), admin, validInput("team-a")); err != nil {
		t.Errorf("Create with failing sink returned error: %v", err)
	}

	in := validInput("team-a")
	in.ResponsibleUserID = "0b1e7d3c-9f2a-4a5b-8c6d-2e3f4a5b6c7d"
	before := len(f.sink.sent)
	if _, err := f.svc.Create(context.Background(), admin, in); err != nil {
		t.Errorf("Create with unknown responsible returned error: %v", err)
	}
	if len(f.sink.sent) != before {
		t.Error("notification should be skipped when responsible user does not exist")
	}
}

// --- Get / Update / Delete ---

// TestGetUpdateDelete_ScopeScenario はメンバーAがチームBのタスクにアクセスできず、
// 管理者はアクセスできることを検証する。
func TestGetUpdateDelete_ScopeScenario(t *testing.T) {
	f := newFixture(t)
	f.put(&model.Task{ID: "task-b", Title: "B", TeamID: "team-b", Urgency: model.UrgencyBaixa, Status: model.TaskStatusPendente})
	ctx := context.Background()

	if _, err := f.svc.Get(ctx, memberA, "task-b"); errorCode(t, err) != model.ErrCodeForbidden {
		t.Errorf("member Get should be forbidden: %v", err)
	}
	if _, err := f.svc.Update(ctx, memberA, "task-b", model.TaskUpdate{Title: model.Some("X")}); errorCode(t, err) != model.ErrCodeForbidden {
		t.Errorf("member Update should be forbidden: %v", err)
	}
	if err := f.svc.Delete(ctx, memberA, "task-b"); errorCode(t, err) != model.ErrCodeForbidden {
		t.Errorf("member Delete should be forbidden: %v", err)
	}
	if f.stored["task-b"].Title != "B" {
		t.Error("forbidden update must not modify the task")
	}

	got, err := f.svc.Get(ctx, admin, "task-b")
	if err != nil || got.ID != "task-b" {
		t.Errorf("admin Get = (%v, %v)", got, err)
	}
}

// TestNotFoundPrecedesForbidden は存在しないIDでは範囲に関わらずTASK_NOT_FOUNDになることを検証する。
func TestNotFoundPrecedesForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, actor := range []access.Identity{admin, memberA, lonely} {
		if _, err := f.svc.Get(ctx, actor, "missing"); errorCode(t, err) != model.ErrCodeTaskNotFound {
			t.Errorf("Get(%s) err = %v", actor.UserID, err)
		}
		if _, err := f.svc.Update(ctx, actor, "missing", model.TaskUpdate{}); errorCode(t, err) != model.ErrCodeTaskNotFound {
			t.Errorf("Update(%s) err = %v", actor.UserID, err)
		}
		if err := f.svc.Delete(ctx, actor, "missing"); errorCode(t, err) != model.ErrCodeTaskNotFound {
			t.Errorf("Delete(%s) err = %v", actor.UserID, err)
		}
	}
}

// TestUpdate_EmptyOnlyTouchesUpdatedAt は空の更新でupdated_at以外が変わらないことを検証する。
func TestUpdate_EmptyOnlyTouchesUpdatedAt(t *testing.T) {
	f := newFixture(t)
	created := f.now.Add(-time.Hour)
	deadline := f.now.Add(24 * time.Hour)
	desc := "descrição"
	original := model.Task{
		ID: "task-a", Title: "A", Description: &desc, ResponsibleUserID: joaoID, Deadline: &deadline,
		Category: "QA", Urgency: model.UrgencyMedia, Status: model.TaskStatusEmProgresso,
		RequestedBy: "admin", TeamID: "team-a", CreatedAt: created, UpdatedAt: created,
	}
	stored := original
	f.put(&stored)

	got, err := f.svc.Update(context.Background(), memberA, "task-a", model.TaskUpdate{})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	want := original
	want.UpdatedAt = f.now
	if got.Title != want.Title || got.Description != want.Description || got.ResponsibleUserID != want.ResponsibleUserID ||
		got.Deadline != want.Deadline || got.Category != want.Category || got.Urgency != want.Urgency ||
		got.Status != want.Status || got.RequestedBy != want.RequestedBy || got.TeamID != want.TeamID ||
		!got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("Update changed fields: got %+v, want %+v", got, want)
	}
	if !got.UpdatedAt.Equal(f.now) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, f.now)
	}
}

func TestUpdate_AppliesPresentFields(t *testing.T) {
	f := newFixture(t)
	deadline := f.now.Add(24 * time.Hour)
	f.put(&model.Task{
		ID: "task-a", Title: "A", ResponsibleUserID: joaoID, Deadline: &deadline, Category: "QA",
		Urgency: model.UrgencyMedia, Status: model.TaskStatusPendente, TeamID: "team-a",
	})

	got, err := f.svc.Update(context.Background(), memberA, "task-a", model.TaskUpdate{
		Status:   model.Some(model.TaskStatusConcluida),
		Deadline: model.Some[*model.Deadline](nil),
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if got.Status != model.TaskStatusConcluida {
		t.Errorf("Status = %q, want concluida", got.Status)
	}
	if got.Deadline != nil {
		t.Errorf("Deadline = %v, want cleared", got.Deadline)
	}
	if got.Title != "A" || got.Urgency != model.UrgencyMedia {
		t.Errorf("absent fields changed: %+v", got)
	}
}

func TestUpdate_Validation(t *testing.T) {
	tests := []struct {
		name string
		upd  model.TaskUpdate
	}{
		{"未定義の緊急度", model.TaskUpdate{Urgency: model.Some[model.Urgency]("urgente")}},
		{"未定義のステータス", model.TaskUpdate{Status: model.Some[model.TaskStatus]("feito")}},
		{"空のタイトル", model.TaskUpdate{Title: model.Some("")}},
		{"空のカテゴリ", model.TaskUpdate{Category: model.Some("  ")}},
		{"空の担当者", model.TaskUpdate{ResponsibleUserID: model.Some("")}},
		{"UUIDでない担当者", model.TaskUpdate{ResponsibleUserID: model.Some("not-a-uuid")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.put(&model.Task{ID: "task-a", Title: "A", TeamID: "team-a", Urgency: model.UrgencyAlta, Status: model.TaskStatusPendente})
			_, err := f.svc.Update(context.Background(), admin, "task-a", tt.upd)
			if code := errorCode(t, err); code != model.ErrCodeValidation {
				t.Errorf("code = %q, want %q", code, model.ErrCodeValidation)
			}
		})
	}
}

func TestDelete_RemovesTask(t *testing.T) {
	f := newFixture(t)
	f.put(&model.Task{ID: "task-a", TeamID: "team-a"})

	if err := f.svc.Delete(context.Background(), memberA, "task-a"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok := f.stored["task-a"]; ok {
		t.Error("task should be deleted")
	}
}

func TestList_UsesScope(t *testing.T) {
	f := newFixture(t)
	var got access.Scope
	f.tasks.listFn = func(_ context.Context, scope access.Scope) ([]*model.Task, error) {
		got = scope
		return []*model.Task{}, nil
	}

	if _, err := f.svc.List(context.Background(), lonely); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if !got.Empty {
		t.Errorf("scope = %+v, want Empty for user without team", got)
	}
}

func TestRepositoryErrorIsNotAPIError(t *testing.T) {
	f := newFixture(t)
	f.tasks.findByIDFn = func(_ context.Context, _ string) (*model.Task, error) {
		return nil, errors.New("connection refused")
	}

	_, err := f.svc.Get(context.Background(), admin, "task-a")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("infrastructure error should not be an APIError: %v", apiErr)
	}
}
