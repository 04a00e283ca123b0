package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leetcode-bot/internal/domain"
	"leetcode-bot/internal/infra/metrics"
)

// Postgres реализует репозитории задач и подписчиков на основе pgxpool.
// Без пула адаптер работает в деградированном режиме: чтения ничего не находят,
// записи молча пропускаются.
type Postgres struct {
	pool      *pgxpool.Pool
	connected bool
}

var (
	_ domain.TaskRepo       = (*Postgres)(nil)
	_ domain.SubscriberRepo = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД. pool может быть nil.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, connected: pool != nil}
}

// Connected сообщает, есть ли у адаптера подключение.
func (p *Postgres) Connected() bool {
	return p.connected
}

func (p *Postgres) connCtxWithParent(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// GetTask возвращает задачу по dateId.
func (p *Postgres) GetTask(ctx context.Context, dateID int64) (domain.Task, error) {
	if !p.connected {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var (
		task  domain.Task
		hints string
	)
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT id, questionId, itemId, titleSlug, title, text, hints, difficulty
FROM dailyQuestion WHERE id=$1
`, dateID).Scan(&task.DateID, &task.QuestionID, &task.ItemID, &task.TitleSlug, &task.Title, &task.Content, &hints, &task.Difficulty)
	metrics.ObserveNetworkRequest("postgres", "daily_question_get", "dailyQuestion", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	if err != nil {
		return domain.Task{}, fmt.Errorf("select task %d: %w", dateID, err)
	}
	if task.Hints, err = decodeHints(hints); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// SaveTask записывает задачу, заменяя существующую запись с тем же dateId.
func (p *Postgres) SaveTask(ctx context.Context, task domain.Task) error {
	if !task.Found() {
		return domain.ErrEmptyTask
	}
	if !p.connected {
		return nil
	}
	hints, err := encodeHints(task.Hints)
	if err != nil {
		return err
	}
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	_, err = p.pool.Exec(ctx, `
INSERT INTO dailyQuestion (id, questionId, itemId, titleSlug, title, text, hints, difficulty)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET questionId = EXCLUDED.questionId, itemId = EXCLUDED.itemId, titleSlug = EXCLUDED.titleSlug, title = EXCLUDED.title, text = EXCLUDED.text, hints = EXCLUDED.hints, difficulty = EXCLUDED.difficulty
`, task.DateID, task.QuestionID, task.ItemID, task.TitleSlug, task.Title, task.Content, hints, task.Difficulty)
	metrics.ObserveNetworkRequest("postgres", "daily_question_upsert", "dailyQuestion", start, err)
	if err != nil {
		return fmt.Errorf("upsert task %d: %w", task.DateID, err)
	}
	return nil
}

// GetOrCreate создаёт пользователя при первом обращении и обновляет его профиль.
// Флаг подписки существующего пользователя не меняется.
func (p *Postgres) GetOrCreate(ctx context.Context, profile domain.Subscriber) (domain.Subscriber, error) {
	if !p.connected {
		profile.Subscribed = false
		return profile, nil
	}
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var sub domain.Subscriber
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
INSERT INTO users (id, chat_id, firstName, lastName, username, subscribed)
VALUES ($1, $2, $3, $4, $5, FALSE)
ON CONFLICT (id) DO UPDATE SET chat_id = EXCLUDED.chat_id, firstName = EXCLUDED.firstName, lastName = EXCLUDED.lastName, username = EXCLUDED.username
RETURNING id, chat_id, firstName, lastName, username, subscribed
`, profile.UserID, profile.ChatID, profile.FirstName, profile.LastName, profile.Username).Scan(&sub.UserID, &sub.ChatID, &sub.FirstName, &sub.LastName, &sub.Username, &sub.Subscribed)
	metrics.ObserveNetworkRequest("postgres", "users_upsert", "users", start, err)
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("upsert user %d: %w", profile.UserID, err)
	}
	return sub, nil
}

// GetSubscriber возвращает пользователя по Telegram ID.
func (p *Postgres) GetSubscriber(ctx context.Context, userID int64) (domain.Subscriber, error) {
	if !p.connected {
		return domain.Subscriber{}, domain.ErrSubscriberNotFound
	}
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var sub domain.Subscriber
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT id, chat_id, firstName, lastName, username, subscribed
FROM users WHERE id=$1
`, userID).Scan(&sub.UserID, &sub.ChatID, &sub.FirstName, &sub.LastName, &sub.Username, &sub.Subscribed)
	metrics.ObserveNetworkRequest("postgres", "users_get", "users", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Subscriber{}, domain.ErrSubscriberNotFound
	}
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("select user %d: %w", userID, err)
	}
	return sub, nil
}

// SetSubscribed меняет флаг подписки и сообщает, изменилась ли строка.
func (p *Postgres) SetSubscribed(ctx context.Context, userID int64, subscribed bool) (bool, error) {
	if !p.connected {
		return false, nil
	}
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `UPDATE users SET subscribed=$2 WHERE id=$1 AND subscribed<>$2`, userID, subscribed)
	metrics.ObserveNetworkRequest("postgres", "users_set_subscribed", "users", start, err)
	if err != nil {
		return false, fmt.Errorf("update subscription of %d: %w", userID, err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	if _, err := p.GetSubscriber(ctx, userID); err != nil {
		return false, err
	}
	return false, nil
}

// ListSubscribed возвращает всех подписанных пользователей.
func (p *Postgres) ListSubscribed(ctx context.Context) ([]domain.Subscriber, error) {
	if !p.connected {
		return nil, nil
	}
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, chat_id, firstName, lastName, username, subscribed
FROM users WHERE subscribed ORDER BY id
`)
	metrics.ObserveNetworkRequest("postgres", "users_list_subscribed", "users", start, err)
	if err != nil {
		return nil, fmt.Errorf("select subscribers: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscriber
	for rows.Next() {
		var sub domain.Subscriber
		if err := rows.Scan(&sub.UserID, &sub.ChatID, &sub.FirstName, &sub.LastName, &sub.Username, &sub.Subscribed); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}
	return subs, nil
}
