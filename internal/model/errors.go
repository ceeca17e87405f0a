// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, permission, validation, resource, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized           = "UNAUTHORIZED"
	ErrCodeInvalidCredentials     = "INVALID_CREDENTIALS"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeAdminRequired          = "ADMIN_REQUIRED"
	ErrCodeTaskNotFound           = "TASK_NOT_FOUND"
	ErrCodeTeamNotFound           = "TEAM_NOT_FOUND"
	ErrCodeUserNotFound           = "USER_NOT_FOUND"
	ErrCodeEmailAlreadyRegistered = "EMAIL_ALREADY_REGISTERED"
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeInvalidRequest         = "INVALID_REQUEST"
	ErrCodeRateLimited            = "RATE_LIMITED"
	ErrCodeInternal               = "INTERNAL_ERROR"
)

// NewUnauthorizedError はトークンが無効・期限切れ・未指定の場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証情報を検証できませんでした。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewInvalidCredentialsError はメールアドレスまたはパスワードが一致しない場合のエラーを生成する。
// メールアドレスの存在有無によらず同一の内容を返す。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度ログインしてください。",
	}
}

// NewForbiddenError はチームの範囲外のリソースにアクセスした場合のエラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "このチームのリソースにアクセスする権限がありません。",
		Category: "permission",
		Action:   "所属チームのリソースのみ操作できます。",
	}
}

// NewAdminRequiredError は管理者専用の操作を一般ユーザーが実行した場合のエラーを生成する。
func NewAdminRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeAdminRequired,
		Message:  "この操作には管理者権限が必要です。",
		Category: "permission",
		Action:   "管理者に依頼してください。",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
func NewTaskNotFoundError(taskID string) *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  fmt.Sprintf("指定されたタスクが見つかりません: %s", taskID),
		Category: "resource",
		Action:   "タスクIDを確認してください。",
	}
}

// NewTeamNotFoundError はチーム未検出エラーを生成する。
func NewTeamNotFoundError(teamID string) *APIError {
	return &APIError{
		Code:     ErrCodeTeamNotFound,
		Message:  fmt.Sprintf("指定されたチームが見つかりません: %s", teamID),
		Category: "resource",
		Action:   "チームIDを確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "resource",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewEmailAlreadyRegisteredError はメールアドレスが既に登録済みの場合のエラーを生成する。
func NewEmailAlreadyRegisteredError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailAlreadyRegistered,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewValidationError は入力値の検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidRequestError はリクエストボディを解析できない場合のエラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewRateLimitedError はレート制限を超過した場合のエラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
