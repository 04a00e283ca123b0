package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	TaskFetchSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "task_fetch_seconds",
		Help:    "Время получения задачи дня из LeetCode",
		Buckets: prometheus.DefBuckets,
	})
	TaskFetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "task_fetch_errors_total",
		Help: "Ошибки получения задачи дня",
	}, []string{"reason"})
	TaskLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "task_lookups_total",
		Help: "Откуда была отдана задача: cache, store или upstream",
	}, []string{"tier"})
	BotSendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_send_errors_total",
		Help: "Ошибки отправки сообщений ботом",
	})
	BotUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_updates_total",
		Help: "Обработанные апдейты по типу",
	}, []string{"kind"})
	NotifyDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_deliveries_total",
		Help: "Результаты рассылки подписчикам",
	}, []string{"status"})
	NotifyRunSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "notify_run_seconds",
		Help:    "Длительность одной рассылки",
		Buckets: prometheus.DefBuckets,
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30, 60},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		TaskFetchSeconds,
		TaskFetchErrors,
		TaskLookups,
		BotSendErrors,
		BotUpdates,
		NotifyDeliveries,
		NotifyRunSeconds,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// IncTaskLookup отмечает, каким уровнем была обслужена задача.
func IncTaskLookup(tier string) {
	TaskLookups.WithLabelValues(tier).Inc()
}

// IncTaskFetchError отмечает неудачную загрузку задачи.
func IncTaskFetchError(reason string) {
	TaskFetchErrors.WithLabelValues(reason).Inc()
}

// IncUpdate отмечает обработанный апдейт.
func IncUpdate(kind string) {
	BotUpdates.WithLabelValues(kind).Inc()
}

// ObserveNotifyRun записывает итог рассылки.
func ObserveNotifyRun(duration time.Duration, delivered, failed int) {
	NotifyRunSeconds.Observe(duration.Seconds())
	NotifyDeliveries.WithLabelValues("delivered").Add(float64(delivered))
	NotifyDeliveries.WithLabelValues("failed").Add(float64(failed))
}
