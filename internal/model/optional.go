// Package model はドメインモデルを定義する。
package model

import "encoding/json"

// Optional は部分更新リクエストの1フィールドを表す。
// JSONにキーが存在した場合のみSetがtrueになる。明示的なnullもSetとして扱う。
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some は値が設定されたOptionalを返す。
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// UnmarshalJSON はjson.Unmarshalerを実装する。
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}
