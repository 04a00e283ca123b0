// Package leetcode получает задачу дня из GraphQL API LeetCode.
package leetcode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"leetcode-bot/internal/domain"
	"leetcode-bot/internal/infra/metrics"
)

// DefaultURL: адрес GraphQL API LeetCode.
const DefaultURL = "https://leetcode.com/graphql"

// ErrNonPredictable означает, что по списку глав нельзя определить задачу на дату.
// Повторять запрос для той же даты бессмысленно.
var ErrNonPredictable = errors.New("daily task is not predictable")

// Client реализует domain.TaskFetcher.
type Client struct {
	endpoint   *url.URL
	method     string
	httpClient *http.Client
}

// Option настраивает клиент.
type Option func(*Client)

// WithHTTPClient подменяет HTTP клиент.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout задаёт таймаут одного запроса.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithMethod выбирает HTTP метод транспорта: GET или POST.
func WithMethod(method string) Option {
	return func(c *Client) {
		if m := strings.ToUpper(method); m == http.MethodGet || m == http.MethodPost {
			c.method = m
		}
	}
}

// New создаёт клиент для endpoint. Пустой endpoint означает DefaultURL.
func New(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse leetcode url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("leetcode url must be absolute: %q", endpoint)
	}
	client := &Client{
		endpoint:   parsed,
		method:     http.MethodPost,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

var _ domain.TaskFetcher = (*Client)(nil)

type chaptersData struct {
	Chapters []struct {
		Items []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"items"`
	} `json:"chapters"`
}

type itemData struct {
	Item *struct {
		Question *struct {
			TitleSlug string `json:"titleSlug"`
		} `json:"question"`
	} `json:"item"`
}

type questionData struct {
	Question *struct {
		QuestionID    string   `json:"questionId"`
		QuestionTitle string   `json:"questionTitle"`
		Difficulty    string   `json:"difficulty"`
		Content       string   `json:"content"`
		Hints         []string `json:"hints"`
	} `json:"question"`
}

// CardSlug возвращает слаг карточки месячного челленджа, например "february-leetcoding-challenge-2021".
func CardSlug(date time.Time) string {
	return fmt.Sprintf("%s-leetcoding-challenge-%d", strings.ToLower(date.Month().String()), date.Year())
}

// FetchTaskOfDay делает три запроса: главы месяца, элемент дня, условие задачи.
// Тексты возвращаются как есть, без нормализации. DateID не заполняется.
func (c *Client) FetchTaskOfDay(ctx context.Context, date time.Time) (domain.Task, error) {
	start := time.Now()
	task, err := c.fetchTaskOfDay(ctx, date)
	metrics.TaskFetchSeconds.Observe(time.Since(start).Seconds())
	switch {
	case errors.Is(err, ErrNonPredictable):
		metrics.IncTaskFetchError("non_predictable")
	case err != nil:
		metrics.IncTaskFetchError("upstream")
	}
	return task, err
}

func (c *Client) fetchTaskOfDay(ctx context.Context, date time.Time) (domain.Task, error) {
	itemID, err := c.dailyItemID(ctx, date)
	if err != nil {
		return domain.Task{}, err
	}
	titleSlug, err := c.titleSlug(ctx, itemID)
	if err != nil {
		return domain.Task{}, err
	}
	task, err := c.question(ctx, titleSlug)
	if err != nil {
		return domain.Task{}, err
	}
	if task.ItemID, err = strconv.ParseInt(itemID, 10, 64); err != nil {
		return domain.Task{}, fmt.Errorf("parse item id %q: %w", itemID, err)
	}
	return task, nil
}

// dailyItemID ищет элемент дня. Первый элемент каждой главы вводный и не считается.
func (c *Client) dailyItemID(ctx context.Context, date time.Time) (string, error) {
	var data chaptersData
	if err := c.do(ctx, chaptersRequest(CardSlug(date)), &data); err != nil {
		return "", err
	}
	day := date.Day()
	count := 0
	for _, chapter := range data.Chapters {
		for i, item := range chapter.Items {
			if i == 0 {
				continue
			}
			count++
			if count == day {
				return item.ID, nil
			}
		}
	}
	return "", fmt.Errorf("%w: day %d of %s %d, only %d tasks published",
		ErrNonPredictable, day, date.Month(), date.Year(), count)
}

func (c *Client) titleSlug(ctx context.Context, itemID string) (string, error) {
	var data itemData
	if err := c.do(ctx, itemRequest(itemID), &data); err != nil {
		return "", err
	}
	if data.Item == nil || data.Item.Question == nil || data.Item.Question.TitleSlug == "" {
		return "", fmt.Errorf("item %s has no question", itemID)
	}
	return data.Item.Question.TitleSlug, nil
}

func (c *Client) question(ctx context.Context, titleSlug string) (domain.Task, error) {
	var data questionData
	if err := c.do(ctx, questionRequest(titleSlug), &data); err != nil {
		return domain.Task{}, err
	}
	q := data.Question
	if q == nil {
		return domain.Task{}, fmt.Errorf("question %s not found", titleSlug)
	}
	questionID, err := strconv.ParseInt(q.QuestionID, 10, 64)
	if err != nil {
		return domain.Task{}, fmt.Errorf("parse question id %q: %w", q.QuestionID, err)
	}
	hints := q.Hints
	if hints == nil {
		hints = []string{}
	}
	return domain.Task{
		QuestionID: questionID,
		TitleSlug:  titleSlug,
		Title:      q.QuestionTitle,
		Content:    q.Content,
		Hints:      hints,
		Difficulty: q.Difficulty,
	}, nil
}
