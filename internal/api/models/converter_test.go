package models

import (
	"testing"
	"time"

	"github.com/lesezeit/lesezeit/internal/database"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToQuestionItem_AudioURL(t *testing.T) {
	q := database.Question{ID: 3, Prompt: "Farbe?", CorrectIndex: 2}
	q.SetAnswers([4]string{"Rot", "Blau", "Grün", "Gelb"})

	item := ToQuestionItem(q)
	assert.Empty(t, item.AudioURL)
	assert.Equal(t, "Grün", item.Answers[item.CorrectIndex])

	q.AudioPath = lo.ToPtr("uploads/123-abc.mp3")
	assert.Equal(t, "/uploads/123-abc.mp3", ToQuestionItem(q).AudioURL)
}

func TestToStoryItems(t *testing.T) {
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	items := ToStoryItems([]database.Story{{
		ID:        1,
		Title:     "Der Mond",
		Level:     database.LevelA1,
		Author:    database.User{Email: "admin@example.com"},
		CreatedAt: created,
	}})

	require.Len(t, items, 1)
	assert.Equal(t, "A1", items[0].Level)
	assert.Equal(t, "admin@example.com", items[0].AuthorEmail)
	assert.Equal(t, created, items[0].CreatedAt)
}

func TestToStoryLink_Nil(t *testing.T) {
	assert.Nil(t, ToStoryLink(nil))
	assert.Equal(t, &StoryLink{ID: 2, Title: "x"}, ToStoryLink(&database.StorySummary{ID: 2, Title: "x"}))
}

func TestToVocabularyItems_OptionalExample(t *testing.T) {
	items := ToVocabularyItems([]database.VocabularyEntry{
		{Term: "der Mond", Translation: "the moon"},
		{Term: "die Sonne", Translation: "the sun", Example: lo.ToPtr("Die Sonne scheint.")},
	})
	assert.Empty(t, items[0].Example)
	assert.Equal(t, "Die Sonne scheint.", items[1].Example)
}

func TestRenderMarkdown(t *testing.T) {
	out := string(RenderMarkdown("Der **Dativ** folgt auf *mit*."))
	assert.Contains(t, out, "<strong>Dativ</strong>")
	assert.Contains(t, out, "<em>mit</em>")

	stripped := string(RenderMarkdown("<script>alert(1)</script>"))
	assert.NotContains(t, stripped, "<script>")
	assert.Contains(t, stripped, "raw HTML omitted")
}
