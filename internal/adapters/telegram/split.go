package telegram

import "strings"

// MessageLimit: максимальная длина текста одного сообщения Telegram в символах.
const MessageLimit = 4096

// SplitMessage режет HTML текст на части не длиннее limit символов.
// Сначала ищется перевод строки вне тегов, затем любой перевод строки, затем пробел;
// режем вслепую только длинное слово. Внутрь самого тега разрез не попадает.
// Теги, открытые на месте разреза, закрываются в конце части и открываются заново в следующей,
// так что каждая часть остаётся корректной разметкой.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MessageLimit
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	runes := []rune(trimmed)
	if len(runes) <= limit {
		return []string{trimmed}
	}

	m := scanMarkup(runes)
	var parts []string
	for start := 0; start < len(runes); {
		reopen := m.stack[start].openings()
		end := m.cut(runes, start, limit-len([]rune(reopen)))

		chunk := strings.TrimRight(string(runes[start:end]), " \n")
		if strings.TrimSpace(chunk) != "" {
			parts = append(parts, reopen+chunk+m.stack[end].closings())
		}

		start = end
		for start < len(runes) && (runes[start] == '\n' || (runes[start] == ' ' && m.stack[start] == nil)) {
			start++
		}
	}
	return parts
}

// openTag: элемент неизменяемого стека открытых тегов.
type openTag struct {
	name   string
	raw    string
	parent *openTag
}

func (t *openTag) pop(name string) *openTag {
	for n := t; n != nil; n = n.parent {
		if n.name == name {
			return n.parent
		}
	}
	return t
}

// openings восстанавливает открывающие теги от внешнего к внутреннему.
func (t *openTag) openings() string {
	var raws []string
	for n := t; n != nil; n = n.parent {
		raws = append(raws, n.raw)
	}
	var b strings.Builder
	for i := len(raws) - 1; i >= 0; i-- {
		b.WriteString(raws[i])
	}
	return b.String()
}

// closings закрывает теги от внутреннего к внешнему.
func (t *openTag) closings() string {
	var b strings.Builder
	for n := t; n != nil; n = n.parent {
		b.WriteString("</")
		b.WriteString(n.name)
		b.WriteString(">")
	}
	return b.String()
}

type markup struct {
	// stack[i]: теги, открытые перед символом i.
	stack []*openTag
	// inside[i]: разрез перед символом i попадает внутрь тега.
	inside []bool
}

func scanMarkup(runes []rune) markup {
	m := markup{
		stack:  make([]*openTag, len(runes)+1),
		inside: make([]bool, len(runes)+1),
	}
	var cur *openTag
	for i := 0; i < len(runes); {
		m.stack[i] = cur
		if runes[i] != '<' {
			i++
			continue
		}
		end, ok := tagEnd(runes, i)
		if !ok {
			i++
			continue
		}
		for j := i + 1; j <= end; j++ {
			m.stack[j] = cur
			m.inside[j] = true
		}
		raw := string(runes[i : end+1])
		name, closing, selfClosing := parseTag(raw)
		switch {
		case closing:
			cur = cur.pop(name)
		case !selfClosing:
			cur = &openTag{name: name, raw: raw, parent: cur}
		}
		i = end + 1
	}
	m.stack[len(runes)] = cur
	return m
}

// cut выбирает конец части, начинающейся со start. budget учитывает уже переоткрытые теги.
func (m markup) cut(runes []rune, start, budget int) int {
	n := len(runes)
	fits := func(p int) bool {
		return p > start && !m.inside[p] && p-start+len(m.stack[p].closings()) <= budget
	}
	if fits(n) {
		return n
	}
	hi := start + budget
	if hi > n {
		hi = n
	}
	candidates := []func(p int) bool{
		func(p int) bool { return runes[p-1] == '\n' && m.stack[p] == nil },
		func(p int) bool { return runes[p-1] == '\n' },
		func(p int) bool { return runes[p-1] == ' ' },
		func(int) bool { return true },
	}
	for _, accept := range candidates {
		for p := hi; p > start; p-- {
			if accept(p) && fits(p) {
				return p
			}
		}
	}
	// лимит меньше самой разметки: режем как есть
	if hi <= start {
		return start + 1
	}
	return hi
}

// tagEnd возвращает индекс '>' тега, начатого в i. Одиночный '<' тегом не считается.
func tagEnd(runes []rune, i int) (int, bool) {
	j := i + 1
	if j < len(runes) && runes[j] == '/' {
		j++
	}
	if j >= len(runes) || !isASCIILetter(runes[j]) {
		return 0, false
	}
	for k := j; k < len(runes); k++ {
		switch runes[k] {
		case '>':
			return k, true
		case '<', '\n':
			return 0, false
		}
	}
	return 0, false
}

func parseTag(raw string) (name string, closing, selfClosing bool) {
	body := strings.TrimSuffix(strings.TrimPrefix(raw, "<"), ">")
	closing = strings.HasPrefix(body, "/")
	body = strings.TrimPrefix(body, "/")
	selfClosing = strings.HasSuffix(body, "/")
	if i := strings.IndexAny(body, " \t/"); i >= 0 {
		body = body[:i]
	}
	return strings.ToLower(body), closing, selfClosing
}

func isASCIILetter(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}
