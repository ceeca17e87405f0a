// Package access は認証済みユーザー（Identity）の権限判定とチーム単位のアクセス範囲を提供する。
//
// 判定ルール:
//   - 管理者はすべてのチームのリソースにアクセスできる
//   - 一般ユーザーは自身のteam_idと一致するリソースのみにアクセスできる
//   - チーム未所属の一般ユーザーはどのチームのリソースにもアクセスできない
package access

import "github.com/hitoshi/taskdesk/internal/model"

// Identity はリクエストを行った認証済みユーザーを表す。
// サービス層の各操作には明示的な引数として渡す。
type Identity struct {
	UserID  string
	Email   string
	IsAdmin bool
	TeamID  string // 未所属の場合は空文字列
}

// FromUser はユーザーレコードからIdentityを生成する。
func FromUser(u *model.User) Identity {
	return Identity{
		UserID:  u.ID,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
		TeamID:  u.TeamIDOrEmpty(),
	}
}

// HasTeam はチームに所属しているかどうかを返す。
func (id Identity) HasTeam() bool {
	return id.TeamID != ""
}

// RequireAdmin は管理者でない場合にADMIN_REQUIREDエラーを返す。
func RequireAdmin(id Identity) error {
	if !id.IsAdmin {
		return model.NewAdminRequiredError()
	}
	return nil
}

// CanAccessTeamResource はidがresourceTeamIDのチームに属するリソースを読み書きできるかを返す。
func CanAccessTeamResource(id Identity, resourceTeamID string) bool {
	if id.IsAdmin {
		return true
	}
	return id.HasTeam() && id.TeamID == resourceTeamID
}

// CheckTeamAccess はCanAccessTeamResourceがfalseの場合にFORBIDDENエラーを返す。
// リソースの存在確認はこの呼び出しより前に済ませておくこと。
func CheckTeamAccess(id Identity, resourceTeamID string) error {
	if !CanAccessTeamResource(id, resourceTeamID) {
		return model.NewForbiddenError()
	}
	return nil
}
