package telegram

import (
	"fmt"
	"strings"

	"leetcode-bot/internal/domain"
)

// tagReplacements применяются строго по порядку.
// Telegram HTML понимает только узкий набор тегов, остальное вырезается или заменяется.
var tagReplacements = [...][2]string{
	{"<p>", ""},
	{"</p>", ""},
	{"<ol>", ""},
	{"</ol>", ""},
	{"<ul>", ""},
	{"</ul>", ""},
	{"</li>", ""},
	{"</sup>", ""},
	{"<em>", ""},
	{"</em>", ""},
	{"\n\n", ""},
	{"<br>", ""},
	{"</br>", ""},
	{"&nbsp;", " "},
	{"<sup>", "**"},
	{"<sub>", "("},
	{"</sub>", ")"},
	{"<li>", " — "},
}

const (
	imgOpen    = "<img"
	imgClose   = "/>"
	srcAttr    = `src="`
	pictureFmt = "\n<a href=\"%s\">Picture %d</a>"
)

// Normalize приводит HTML из LeetCode к подмножеству, которое принимает Telegram.
func Normalize(raw string) string {
	return ReplaceImages(RemoveUnsupportedTags(raw))
}

// RemoveUnsupportedTags вырезает неподдерживаемые теги текстовой заменой.
// Незакрытые и битые теги остаются как есть.
// Проходы повторяются, пока строка меняется: "<</p>p>" после одного прохода снова содержит "<p>".
func RemoveUnsupportedTags(source string) string {
	for {
		next := source
		for _, r := range tagReplacements {
			next = strings.ReplaceAll(next, r[0], r[1])
		}
		if next == source {
			return next
		}
		source = next
	}
}

// ReplaceImages заменяет каждый <img src="..."/> ссылкой "Picture N", N считается с нуля.
// Тег без "/>" или без src остаётся нетронутым, счётчик картинок при этом не растёт.
func ReplaceImages(source string) string {
	var b strings.Builder
	picture := 0
	rest := source
	for {
		start := strings.Index(rest, imgOpen)
		if start < 0 {
			b.WriteString(rest)
			break
		}
		url, end, ok := parseImg(rest[start:])
		if !ok {
			b.WriteString(rest[:start+len(imgOpen)])
			rest = rest[start+len(imgOpen):]
			continue
		}
		b.WriteString(rest[:start])
		fmt.Fprintf(&b, pictureFmt, url, picture)
		picture++
		rest = rest[start+end:]
	}
	return b.String()
}

// parseImg разбирает тег, начинающийся с "<img", и возвращает src и длину тега.
func parseImg(tag string) (string, int, bool) {
	closeAt := strings.Index(tag, imgClose)
	if closeAt < 0 {
		return "", 0, false
	}
	end := closeAt + len(imgClose)
	body := tag[:closeAt]
	if strings.Contains(body[len(imgOpen):], imgOpen) {
		return "", 0, false
	}
	srcAt := strings.Index(body, srcAttr)
	if srcAt < 0 {
		return "", 0, false
	}
	value := body[srcAt+len(srcAttr):]
	quote := strings.IndexByte(value, '"')
	if quote < 0 {
		return "", 0, false
	}
	return value[:quote], end, true
}

// NormalizeTask применяет Normalize к заголовку, условию и каждой подсказке.
func NormalizeTask(title, content string, hints []string) (string, string, []string) {
	normalized := make([]string, len(hints))
	for i, h := range hints {
		normalized[i] = Normalize(h)
	}
	return Normalize(title), Normalize(content), normalized
}

// NormalizedTask возвращает копию задачи с нормализованными текстами.
func NormalizedTask(task domain.Task) domain.Task {
	task.Title, task.Content, task.Hints = NormalizeTask(task.Title, task.Content, task.Hints)
	return task
}
