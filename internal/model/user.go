// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// TeamIDがnilの場合はチーム未所属。
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	IsAdmin      bool
	TeamID       *string
	CreatedAt    time.Time
}

// TeamIDOrEmpty はチームIDを返す。未所属の場合は空文字列を返す。
func (u *User) TeamIDOrEmpty() string {
	if u.TeamID == nil {
		return ""
	}
	return *u.TeamID
}
