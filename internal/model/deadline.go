package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// deadlineLayouts は期限として受け付ける書式。先頭から順に試す。
// タイムゾーンを含まない書式はUTCとして解釈する。
var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Deadline はリクエストで受け取るタスクの期限。
// RFC3339に加えて、タイムゾーン無しの日時と日付のみの表記を受け付ける。
type Deadline struct {
	time.Time
}

// ParseDeadline は文字列を期限として解釈する。
func ParseDeadline(s string) (Deadline, error) {
	s = strings.TrimSpace(s)
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Deadline{Time: t}, nil
		}
	}
	return Deadline{}, fmt.Errorf("invalid deadline %q: expected RFC3339 or YYYY-MM-DD", s)
}

// UnmarshalJSON はjson.Unmarshalerを実装する。
func (d *Deadline) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("deadline must be a string: %w", err)
	}
	parsed, err := ParseDeadline(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimePtr は期限をtime.Timeのポインタとして返す。dがnilの場合はnil。
func (d *Deadline) TimePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
