package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger はデータベースの疎通確認を行うインターフェース。*sql.DBが実装する。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// healthResponse はヘルスチェックのレスポンス。
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// NewHealthHandler はデータベースの疎通を確認するヘルスチェックハンドラーを返す。
// 疎通できない場合は503を返す。
// GET /health
func NewHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			slog.Warn("health check failed", slog.String("error", err.Error()))
			respondJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Database: "disconnected"})
			return
		}

		respondJSON(w, http.StatusOK, healthResponse{Status: "healthy", Database: "connected"})
	}
}
