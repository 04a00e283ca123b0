package bot

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"leetcode-bot/internal/usecase/notify"
)

// Notifier запускает рассылку задачи дня.
type Notifier interface {
	NotifyAllSubscribers(ctx context.Context) (notify.Report, error)
}

type reminderResponse struct {
	RunID     string `json:"run_id"`
	DateID    int64  `json:"date_id,omitempty"`
	Total     int    `json:"total"`
	Delivered int    `json:"delivered"`
	Failed    int    `json:"failed"`
	Error     string `json:"error,omitempty"`
}

// ReminderHandler: HTTP триггер рассылки для внешнего планировщика.
// 500 возвращается, только если рассылку не удалось начать.
func ReminderHandler(n Notifier, logger zerolog.Logger) http.HandlerFunc {
	log := logger.With().Str("component", "reminder").Logger()
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := n.NotifyAllSubscribers(r.Context())
		resp := reminderResponse{
			RunID:     report.RunID,
			DateID:    report.DateID,
			Total:     report.Total,
			Delivered: report.Delivered,
			Failed:    len(report.Failed),
		}
		status := http.StatusOK
		if err != nil {
			log.Error().Err(err).Str("run_id", report.RunID).Msg("рассылка не запущена")
			resp.Error = err.Error()
			status = http.StatusInternalServerError
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
