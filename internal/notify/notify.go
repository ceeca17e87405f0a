// Package notify はタスク担当者への通知を提供する。
package notify

import (
	"context"
	"log/slog"
)

// Sink は通知の送信先インターフェース。
type Sink interface {
	Send(ctx context.Context, email, subject, body string) error
}

// LogSink は通知内容を構造化ログとして出力するSink。
// メール送信基盤を持たない環境で使用する。
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink はLogSinkを生成する。loggerがnilの場合はslog.Default()を使用する。
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Send は通知をログに出力する。常にnilを返す。
func (s *LogSink) Send(ctx context.Context, email, subject, body string) error {
	s.logger.InfoContext(ctx, "email notification",
		slog.String("to", email),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}
