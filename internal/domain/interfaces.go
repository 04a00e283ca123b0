package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTaskNotFound возвращается, если задачи с таким dateId нет в хранилище.
	ErrTaskNotFound = errors.New("task not found")
	// ErrSubscriberNotFound возвращается, если пользователь не найден.
	ErrSubscriberNotFound = errors.New("subscriber not found")
	// ErrEmptyTask возвращается при попытке сохранить маркер «не найдено».
	ErrEmptyTask = errors.New("task has no question id")
)

// TaskFetcher получает задачу дня из внешнего API.
type TaskFetcher interface {
	FetchTaskOfDay(ctx context.Context, date time.Time) (Task, error)
}

// TaskRepo: долговременное хранилище задач.
type TaskRepo interface {
	GetTask(ctx context.Context, dateID int64) (Task, error)
	SaveTask(ctx context.Context, task Task) error
}

// TaskCache: локальный ярус кэша задач. Не является источником истины.
type TaskCache interface {
	GetTask(ctx context.Context, dateID int64) (Task, error)
	// PutTask записывает задачу, только если её ещё нет в кэше.
	PutTask(ctx context.Context, task Task) error
}

// SubscriberRepo управляет пользователями.
type SubscriberRepo interface {
	GetOrCreate(ctx context.Context, profile Subscriber) (Subscriber, error)
	GetSubscriber(ctx context.Context, userID int64) (Subscriber, error)
	SetSubscribed(ctx context.Context, userID int64, subscribed bool) (bool, error)
	ListSubscribed(ctx context.Context) ([]Subscriber, error)
}

// TaskProvider отдаёт задачи слою диспетчеризации и рассыльщику.
type TaskProvider interface {
	GetDailyTask(ctx context.Context) (Task, error)
	GetTaskByID(ctx context.Context, dateID int64) (bool, Task, error)
}

// Sender доставляет сообщение пользователю.
type Sender interface {
	Send(ctx context.Context, msg OutboundMessage) error
}
