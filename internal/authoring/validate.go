package authoring

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lesezeit/lesezeit/internal/apperr"
	"github.com/lesezeit/lesezeit/internal/database"
)

// StoryInput holds the story fields as submitted.
type StoryInput struct {
	Title   string
	Level   string
	Summary string
	Body    string
}

// ValidateStory checks the story fields and returns a story ready to insert.
func ValidateStory(in StoryInput, authorID uint) (*database.Story, error) {
	story := &database.Story{
		Title:    strings.TrimSpace(in.Title),
		Summary:  strings.TrimSpace(in.Summary),
		Body:     strings.TrimSpace(in.Body),
		AuthorID: authorID,
	}

	if story.Title == "" {
		return nil, apperr.Validation("Title is required.")
	}
	level, ok := database.ParseLevel(in.Level)
	if !ok {
		return nil, apperr.Validation("Level must be one of A1, A2, B1, B2, C1, C2.")
	}
	story.Level = level
	if story.Summary == "" {
		return nil, apperr.Validation("Summary is required.")
	}
	if story.Body == "" {
		return nil, apperr.Validation("Body is required.")
	}
	return story, nil
}

// ValidateQuestion checks a question and returns it ready to insert. label
// prefixes error messages so the user can tell which question failed; it may
// be empty.
func ValidateQuestion(in QuestionInput, label string, authorID uint) (*database.Question, error) {
	fail := func(msg string) error {
		if label == "" {
			return apperr.Validation(msg)
		}
		return apperr.Validation(label + ": " + msg)
	}

	q := &database.Question{
		Prompt:   strings.TrimSpace(in.Prompt),
		AuthorID: authorID,
	}
	if q.Prompt == "" {
		return nil, fail("prompt is required.")
	}

	var answers [4]string
	for i, a := range in.Answers {
		answers[i] = strings.TrimSpace(a)
		if answers[i] == "" {
			return nil, fail(fmt.Sprintf("answer %d is required.", i+1))
		}
	}
	q.SetAnswers(answers)

	raw := strings.TrimSpace(in.CorrectIndex)
	if raw == "" {
		return nil, fail("choose the correct answer.")
	}
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 || idx > 3 {
		return nil, fail("the correct answer must be a number between 0 and 3.")
	}
	q.CorrectIndex = idx

	return q, nil
}
