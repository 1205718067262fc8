package models

import (
	"bytes"
	"html/template"

	"github.com/charmbracelet/log"
	"github.com/lesezeit/lesezeit/internal/database"
	"github.com/samber/lo"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// markdown renders grammar explanations. Raw HTML in the source is omitted.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// ToStoryItem converts a database.Story to a StoryItem.
func ToStoryItem(s database.Story) StoryItem {
	return StoryItem{
		ID:          s.ID,
		Title:       s.Title,
		Level:       string(s.Level),
		Summary:     s.Summary,
		Body:        s.Body,
		AuthorEmail: s.Author.Email,
		CreatedAt:   s.CreatedAt,
	}
}

// ToStoryItems converts a slice of database.Story to StoryItems.
func ToStoryItems(stories []database.Story) []StoryItem {
	return lo.Map(stories, func(s database.Story, _ int) StoryItem { return ToStoryItem(s) })
}

// ToStoryLink converts a database.StorySummary. A nil summary stays nil.
func ToStoryLink(s *database.StorySummary) *StoryLink {
	if s == nil {
		return nil
	}
	return &StoryLink{ID: s.ID, Title: s.Title}
}

// ToStoryLinks converts a slice of database.StorySummary to StoryLinks.
func ToStoryLinks(summaries []database.StorySummary) []StoryLink {
	return lo.Map(summaries, func(s database.StorySummary, _ int) StoryLink {
		return StoryLink{ID: s.ID, Title: s.Title}
	})
}

// ToQuestionItem converts a database.Question to a QuestionItem. Stored audio
// paths are relative, so they become root relative URLs.
func ToQuestionItem(q database.Question) QuestionItem {
	item := QuestionItem{
		ID:           q.ID,
		Prompt:       q.Prompt,
		Answers:      q.Answers(),
		CorrectIndex: q.CorrectIndex,
	}
	if q.AudioPath != nil && *q.AudioPath != "" {
		item.AudioURL = "/" + *q.AudioPath
	}
	return item
}

// ToQuestionItems converts a slice of database.Question to QuestionItems.
func ToQuestionItems(questions []database.Question) []QuestionItem {
	return lo.Map(questions, func(q database.Question, _ int) QuestionItem { return ToQuestionItem(q) })
}

// ToVocabularyItems converts vocabulary entries for display.
func ToVocabularyItems(entries []database.VocabularyEntry) []VocabularyItem {
	return lo.Map(entries, func(e database.VocabularyEntry, _ int) VocabularyItem {
		return VocabularyItem{
			ID:          e.ID,
			Term:        e.Term,
			Translation: e.Translation,
			Example:     lo.FromPtr(e.Example),
			CreatedAt:   e.CreatedAt,
		}
	})
}

// ToGrammarItems converts grammar topics for display, rendering each
// explanation from Markdown.
func ToGrammarItems(topics []database.GrammarTopic) []GrammarItem {
	return lo.Map(topics, func(t database.GrammarTopic, _ int) GrammarItem {
		return GrammarItem{
			ID:          t.ID,
			Title:       t.Title,
			Explanation: RenderMarkdown(t.Explanation),
			CreatedAt:   t.CreatedAt,
		}
	})
}

// RenderMarkdown converts Markdown to HTML. On failure the source is shown
// escaped instead.
func RenderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		log.Error("Failed to render markdown", "error", err)
		return template.HTML(template.HTMLEscapeString(src)) //nolint:gosec
	}
	return template.HTML(buf.String()) //nolint:gosec
}
