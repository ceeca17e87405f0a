// Package model はドメインモデルを定義する。
package model

import "time"

// Team はユーザーとタスクの所属単位を表す。
// 管理者のみが作成でき、作成後は変更されない。
type Team struct {
	ID          string
	Name        string
	Description *string
	CreatedBy   string // 作成した管理者のユーザーID
	CreatedAt   time.Time
}
