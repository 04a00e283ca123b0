package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // регистрация драйвера sqlite

	"leetcode-bot/internal/domain"
	"leetcode-bot/migrations"
)

// SQLite реализует те же репозитории поверх локального файла.
// Подходит для разработки и одиночного инстанса. С nil-хендлом работает
// в деградированном режиме, как Postgres.
type SQLite struct {
	db        *sql.DB
	connected bool
}

var (
	_ domain.TaskRepo       = (*SQLite)(nil)
	_ domain.SubscriberRepo = (*SQLite)(nil)
)

// OpenSQLite открывает базу по пути dsn и применяет миграции.
func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Одно соединение: для ":memory:" каждое новое соединение видит свою пустую базу.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrations.Run(db, migrations.SQLite); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLite(db), nil
}

// NewSQLite оборачивает открытую базу. db может быть nil.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db, connected: db != nil}
}

// Connected сообщает, есть ли у адаптера подключение.
func (s *SQLite) Connected() bool {
	return s.connected
}

// Close закрывает базу.
func (s *SQLite) Close() error {
	if !s.connected {
		return nil
	}
	return s.db.Close()
}

// GetTask возвращает задачу по dateId.
func (s *SQLite) GetTask(ctx context.Context, dateID int64) (domain.Task, error) {
	if !s.connected {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	var (
		task  domain.Task
		hints string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, questionId, itemId, titleSlug, title, text, hints, difficulty
		 FROM dailyQuestion WHERE id = ?`, dateID,
	).Scan(&task.DateID, &task.QuestionID, &task.ItemID, &task.TitleSlug, &task.Title, &task.Content, &hints, &task.Difficulty)
	if errors.Is(err, sql.ErrNoRows) {
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
func (s *SQLite) SaveTask(ctx context.Context, task domain.Task) error {
	if !task.Found() {
		return domain.ErrEmptyTask
	}
	if !s.connected {
		return nil
	}
	hints, err := encodeHints(task.Hints)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO dailyQuestion (id, questionId, itemId, titleSlug, title, text, hints, difficulty)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET questionId = excluded.questionId, itemId = excluded.itemId,
		   titleSlug = excluded.titleSlug, title = excluded.title, text = excluded.text,
		   hints = excluded.hints, difficulty = excluded.difficulty`,
		task.DateID, task.QuestionID, task.ItemID, task.TitleSlug, task.Title, task.Content, hints, task.Difficulty,
	)
	if err != nil {
		return fmt.Errorf("upsert task %d: %w", task.DateID, err)
	}
	return nil
}

// GetOrCreate создаёт пользователя при первом обращении и обновляет его профиль.
func (s *SQLite) GetOrCreate(ctx context.Context, profile domain.Subscriber) (domain.Subscriber, error) {
	if !s.connected {
		profile.Subscribed = false
		return profile, nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, chat_id, firstName, lastName, username, subscribed)
		 VALUES (?, ?, ?, ?, ?, 0)
		 ON CONFLICT (id) DO UPDATE SET chat_id = excluded.chat_id, firstName = excluded.firstName,
		   lastName = excluded.lastName, username = excluded.username`,
		profile.UserID, profile.ChatID, profile.FirstName, profile.LastName, profile.Username,
	)
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("upsert user %d: %w", profile.UserID, err)
	}
	return s.GetSubscriber(ctx, profile.UserID)
}

// GetSubscriber возвращает пользователя по Telegram ID.
func (s *SQLite) GetSubscriber(ctx context.Context, userID int64) (domain.Subscriber, error) {
	if !s.connected {
		return domain.Subscriber{}, domain.ErrSubscriberNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, chat_id, firstName, lastName, username, subscribed FROM users WHERE id = ?`, userID,
	)
	sub, err := scanSubscriber(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Subscriber{}, domain.ErrSubscriberNotFound
	}
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("select user %d: %w", userID, err)
	}
	return sub, nil
}

// SetSubscribed меняет флаг подписки и сообщает, изменилась ли строка.
func (s *SQLite) SetSubscribed(ctx context.Context, userID int64, subscribed bool) (bool, error) {
	if !s.connected {
		return false, nil
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET subscribed = ? WHERE id = ? AND subscribed <> ?`,
		boolToInt(subscribed), userID, boolToInt(subscribed),
	)
	if err != nil {
		return false, fmt.Errorf("update subscription of %d: %w", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return true, nil
	}
	if _, err := s.GetSubscriber(ctx, userID); err != nil {
		return false, err
	}
	return false, nil
}

// ListSubscribed возвращает всех подписанных пользователей.
func (s *SQLite) ListSubscribed(ctx context.Context) ([]domain.Subscriber, error) {
	if !s.connected {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, firstName, lastName, username, subscribed
		 FROM users WHERE subscribed = 1 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select subscribers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []domain.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(row scanner) (domain.Subscriber, error) {
	var (
		sub        domain.Subscriber
		subscribed int64
	)
	if err := row.Scan(&sub.UserID, &sub.ChatID, &sub.FirstName, &sub.LastName, &sub.Username, &subscribed); err != nil {
		return domain.Subscriber{}, err
	}
	sub.Subscribed = subscribed != 0
	return sub, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
