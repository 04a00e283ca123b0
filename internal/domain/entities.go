package domain

// Task описывает ежедневную задачу LeetCode.
// DateID равен нулю, если задача не привязана к дате.
type Task struct {
	DateID     int64    `json:"dateId"`
	QuestionID int64    `json:"questionId"`
	ItemID     int64    `json:"itemId"`
	TitleSlug  string   `json:"titleSlug"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Hints      []string `json:"hints"`
	Difficulty string   `json:"difficulty"`
}

// Found сообщает, что задача не является пустым маркером «не найдено».
func (t Task) Found() bool {
	return t.QuestionID != 0
}

// Subscriber описывает пользователя Telegram, общавшегося с ботом.
type Subscriber struct {
	UserID     int64
	ChatID     int64
	Username   string
	FirstName  string
	LastName   string
	Subscribed bool
}

// CallbackType различает виды нажатий inline-кнопок под задачей.
type CallbackType uint8

const (
	// CallbackHint: запрос подсказки по индексу.
	CallbackHint CallbackType = iota
	// CallbackDifficulty: запрос сложности задачи.
	CallbackDifficulty
)

// CallbackData: полезная нагрузка inline-кнопки.
// Telegram ограничивает callback_data 64 байтами, поэтому ключи короткие.
type CallbackData struct {
	DateID int64        `json:"dateId"`
	Hint   int          `json:"hint"`
	Type   CallbackType `json:"type,omitempty"`
}

// OutboundMessage описывает исходящее сообщение в формате метода sendMessage.
type OutboundMessage struct {
	Method      string `json:"method,omitempty"`
	ChatID      int64  `json:"chat_id,omitempty"`
	Text        string `json:"text,omitempty"`
	ParseMode   string `json:"parse_mode,omitempty"`
	ReplyMarkup any    `json:"reply_markup,omitempty"`
}

// Empty сообщает, что отвечать нечем.
func (m OutboundMessage) Empty() bool {
	return m.ChatID == 0 && m.Text == ""
}
