package models

import (
	"html/template"
	"time"
)

// User is the identity of the logged in visitor as stored in the session.
type User struct {
	ID        uint
	Email     string
	IsAdmin   bool
	AvatarURL string
}

// StoryItem is a story prepared for display.
type StoryItem struct {
	ID          uint
	Title       string
	Level       string
	Summary     string
	Body        string
	AuthorEmail string
	CreatedAt   time.Time
}

// StoryLink is a story reference used for navigation and select widgets.
type StoryLink struct {
	ID    uint
	Title string
}

// QuestionItem is a comprehension question prepared for display.
type QuestionItem struct {
	ID           uint
	Prompt       string
	Answers      [4]string
	CorrectIndex int
	AudioURL     string
}

// VocabularyItem is a vocabulary entry prepared for display.
type VocabularyItem struct {
	ID          uint
	Term        string
	Translation string
	Example     string
	CreatedAt   time.Time
}

// GrammarItem is a grammar topic with its explanation rendered to HTML.
type GrammarItem struct {
	ID          uint
	Title       string
	Explanation template.HTML
	CreatedAt   time.Time
}

// StoryDetail is everything the story page shows.
type StoryDetail struct {
	Story     StoryItem
	Questions []QuestionItem
	Previous  *StoryLink
	Next      *StoryLink
}
