package database

import (
	"context"

	"github.com/charmbracelet/log"
	"gorm.io/gorm/clause"
)

// Question is a multiple choice quiz question attached to a story.
type Question struct {
	ID           uint    `gorm:"primaryKey"`
	StoryID      uint    `gorm:"not null;index"`
	Prompt       string  `gorm:"not null"`
	Answer1      string  `gorm:"not null"`
	Answer2      string  `gorm:"not null"`
	Answer3      string  `gorm:"not null"`
	Answer4      string  `gorm:"not null"`
	CorrectIndex int     `gorm:"not null;check:chk_questions_correct_index,correct_index BETWEEN 0 AND 3"`
	AudioPath    *string `gorm:"size:512"`
	AuthorID     uint    `gorm:"not null;index"`
	Author       User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
}

// Answers returns the four answers in order.
func (q *Question) Answers() [4]string {
	return [4]string{q.Answer1, q.Answer2, q.Answer3, q.Answer4}
}

// SetAnswers assigns the four answers in order.
func (q *Question) SetAnswers(answers [4]string) {
	q.Answer1, q.Answer2, q.Answer3, q.Answer4 = answers[0], answers[1], answers[2], answers[3]
}

// QuestionDB holds the question read and write operations.
type QuestionDB interface {
	CreateQuestion(ctx context.Context, question *Question) error
	GetQuestionsByStoryID(ctx context.Context, storyID uint) ([]Question, error)
	GetAudioPaths(ctx context.Context) ([]string, error)
}

// CreateQuestion inserts question and sets its generated ID.
func (c *Client) CreateQuestion(ctx context.Context, question *Question) error {
	if err := c.db.WithContext(ctx).Omit(clause.Associations).Create(question).Error; err != nil {
		log.Error("failed to create question", "error", err)
		return err
	}
	return nil
}

// GetQuestionsByStoryID returns the questions of a story in insertion order.
func (c *Client) GetQuestionsByStoryID(ctx context.Context, storyID uint) ([]Question, error) {
	var questions []Question
	if err := c.db.WithContext(ctx).Where("story_id = ?", storyID).Order("id ASC").Find(&questions).Error; err != nil {
		log.Error("failed to get questions", "error", err, "story_id", storyID)
		return nil, err
	}
	return questions, nil
}

// GetAudioPaths returns every audio path referenced by a question.
func (c *Client) GetAudioPaths(ctx context.Context) ([]string, error) {
	var paths []string
	if err := c.db.WithContext(ctx).Model(&Question{}).Where("audio_path IS NOT NULL").Pluck("audio_path", &paths).Error; err != nil {
		log.Error("failed to get audio paths", "error", err)
		return nil, err
	}
	return paths, nil
}
