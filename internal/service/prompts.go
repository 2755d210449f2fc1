package service

import (
	"fmt"
	"strings"
)

// Маркеры, которыми модель разделяет варианты историй.
const (
	StoryStartMarker = "[STORY_START]"
	StoryEndMarker   = "[STORY_END]"

	defaultVariantCount = 3
	maxVariantCount     = 5
	defaultLanguage     = "en"
)

var languageNames = map[string]string{
	"en": "English",
	"ru": "Russian",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"uk": "Ukrainian",
	"pl": "Polish",
	"zh": "Chinese",
	"ja": "Japanese",
}

// LanguageName возвращает название языка для промпта; неизвестный код возвращается как есть.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

func storySystemPrompt(language string, variants int) string {
	var b strings.Builder
	b.WriteString("You are a gentle storyteller writing bedtime stories for children aged 3 to 8. ")
	fmt.Fprintf(&b, "Write in %s. Use simple words, short paragraphs separated by blank lines, ", LanguageName(language))
	b.WriteString("a warm tone and a clear, kind lesson. Never include violence, fear or adult themes.\n")
	b.WriteString("Start every story with its title on the first line, then the story text.\n")
	if variants > 1 {
		fmt.Fprintf(&b, "Write %d different stories. Wrap each story in %s and %s markers, ", variants, StoryStartMarker, StoryEndMarker)
		b.WriteString("with nothing outside the markers.\n")
	}
	return b.String()
}

func storyUserPrompt(query string) string {
	return "Story idea: " + strings.TrimSpace(query)
}

func imagePrompt(title, language string) string {
	return fmt.Sprintf("A soft, colorful children's book illustration for a story titled \"%s\". "+
		"Friendly characters, watercolor style, no text or letters in the image. Story language: %s.",
		title, LanguageName(language))
}

func translationSystemPrompt(targetLanguage string) string {
	return fmt.Sprintf("Translate the user's text into %s. Keep the paragraph structure, names and tone. "+
		"Reply with the translation only.", LanguageName(targetLanguage))
}
