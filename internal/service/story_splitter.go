package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxDerivedTitleLength = 100

var titlePrefix = regexp.MustCompile(`(?i)^(#+\s*)?(title\s*:\s*)?`)

// GeneratedStory история, выделенная из ответа модели.
type GeneratedStory struct {
	Title   string
	Content string
}

// SplitStories делит ответ модели на истории по маркерам.
// Без маркеров весь текст считается одной историей. Пустые блоки отбрасываются.
func SplitStories(raw string) []GeneratedStory {
	var blocks []string
	if strings.Contains(raw, StoryStartMarker) {
		parts := strings.Split(raw, StoryStartMarker)
		for _, part := range parts[1:] {
			if end := strings.Index(part, StoryEndMarker); end >= 0 {
				part = part[:end]
			}
			blocks = append(blocks, part)
		}
	} else {
		blocks = []string{strings.ReplaceAll(raw, StoryEndMarker, "")}
	}

	stories := make([]GeneratedStory, 0, len(blocks))
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		stories = append(stories, splitTitle(block, len(stories)+1))
	}
	return stories
}

// splitTitle берет заголовок из первой строки, если он пригоден,
// иначе подставляет "Story N" и оставляет блок целиком.
func splitTitle(block string, n int) GeneratedStory {
	firstLine, rest, _ := strings.Cut(block, "\n")
	title := CleanTitle(firstLine)
	rest = strings.TrimSpace(rest)
	if title != "" && utf8.RuneCountInString(title) <= maxDerivedTitleLength && rest != "" {
		return GeneratedStory{Title: title, Content: rest}
	}
	return GeneratedStory{Title: fmt.Sprintf("Story %d", n), Content: block}
}

// CleanTitle убирает markdown-заголовок, префикс "Title:", кавычки и звездочки.
func CleanTitle(line string) string {
	t := strings.TrimSpace(line)
	t = strings.Trim(t, "*_ ")
	t = titlePrefix.ReplaceAllString(t, "")
	return strings.TrimSpace(strings.Trim(t, "\"'“”«»*_ "))
}
