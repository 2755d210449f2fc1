package service_test

import (
	"strings"
	"testing"

	"storybook-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStories(t *testing.T) {
	t.Run("Markers with titles", func(t *testing.T) {
		raw := "Here you go!\n[STORY_START]\n# The Brave Fox\nThe fox ran.\n[STORY_END]\n" +
			"[STORY_START]\nTitle: \"Sleepy Owl\"\nThe owl slept.\n[STORY_END]\nEnjoy!"

		stories := service.SplitStories(raw)
		require.Len(t, stories, 2)
		assert.Equal(t, "The Brave Fox", stories[0].Title)
		assert.Equal(t, "The fox ran.", stories[0].Content)
		assert.Equal(t, "Sleepy Owl", stories[1].Title)
		assert.Equal(t, "The owl slept.", stories[1].Content)
	})

	t.Run("No markers means one story", func(t *testing.T) {
		stories := service.SplitStories("**Moon Boat**\nA boat sailed to the moon.")
		require.Len(t, stories, 1)
		assert.Equal(t, "Moon Boat", stories[0].Title)
	})

	t.Run("Empty blocks are dropped", func(t *testing.T) {
		stories := service.SplitStories("[STORY_START]\n\n[STORY_END][STORY_START]Title\nBody[STORY_END]")
		require.Len(t, stories, 1)
		assert.Equal(t, "Title", stories[0].Title)
	})

	t.Run("Fallback title keeps the block intact", func(t *testing.T) {
		long := strings.Repeat("word ", 30)
		stories := service.SplitStories("[STORY_START]" + long + "\nsecond line[STORY_END][STORY_START]only one line[STORY_END]")
		require.Len(t, stories, 2)
		assert.Equal(t, "Story 1", stories[0].Title)
		assert.Contains(t, stories[0].Content, "second line")
		assert.Equal(t, "Story 2", stories[1].Title)
		assert.Equal(t, "only one line", stories[1].Content)
	})

	t.Run("Blank response", func(t *testing.T) {
		assert.Empty(t, service.SplitStories("  \n [STORY_END] "))
	})
}

func TestCleanTitle(t *testing.T) {
	cases := map[string]string{
		"## The Lost Star":      "The Lost Star",
		"Title: Happy Cloud":    "Happy Cloud",
		"**\"Quoted\"**":        "Quoted",
		"«Ёжик в тумане»":       "Ёжик в тумане",
		"   plain   ":           "plain",
		"### title:   spaced  ": "spaced",
	}
	for in, want := range cases {
		assert.Equal(t, want, service.CleanTitle(in), in)
	}
}
