// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/taskdesk/internal/access"
	"github.com/hitoshi/taskdesk/internal/model"
)

// ErrDuplicateEmail はusers.emailの一意制約違反を表す。
var ErrDuplicateEmail = errors.New("email already exists")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスが重複する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// List はscopeの範囲のユーザーを作成日時順に返す。
	// scope.TeamIDが指定された場合はteam_idで絞り込む。
	List(ctx context.Context, scope access.Scope) ([]*model.User, error)
}

// TeamRepository はチームデータの永続化インターフェース。
type TeamRepository interface {
	// FindByID は指定IDのチームを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Team, error)

	// FindByName はチーム名でチームを検索する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.Team, error)

	// Create はチームを作成する。
	Create(ctx context.Context, team *model.Team) error

	// List はscopeの範囲のチームを返す。
	// scope.TeamIDが指定された場合はそのIDのチームのみを返す。
	List(ctx context.Context, scope access.Scope) ([]*model.Team, error)
}

// TaskRepository はタスクデータの永続化インターフェース。
type TaskRepository interface {
	// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Task, error)

	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// Update はタスクの全カラムを上書き更新する。楽観ロックは行わない（後勝ち）。
	Update(ctx context.Context, task *model.Task) error

	// Delete は指定IDのタスクを削除する。関連コメントはCASCADE削除される。
	Delete(ctx context.Context, id string) error

	// List はscopeの範囲のタスクを作成日時順に返す。
	List(ctx context.Context, scope access.Scope) ([]*model.Task, error)
}

// CommentRepository はコメントデータの永続化インターフェース。
type CommentRepository interface {
	// Create はコメントを作成する。
	Create(ctx context.Context, comment *model.Comment) error

	// ListByTaskID はタスクのコメントを作成日時の昇順で返す。
	ListByTaskID(ctx context.Context, taskID string) ([]*model.Comment, error)
}
