// Package model はドメインモデルを定義する。
package model

import "time"

// Comment はタスクに付けられたコメントを表す。
// チームIDは保持せず、所属タスクのチームでアクセス範囲を判定する。
type Comment struct {
	ID        string
	TaskID    string
	UserID    string
	Content   string
	CreatedAt time.Time
}
