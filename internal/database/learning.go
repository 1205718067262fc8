package database

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm/clause"
)

// VocabularyEntry is a term with its translation. Entries are independent of stories.
type VocabularyEntry struct {
	ID          uint    `gorm:"primaryKey"`
	Term        string  `gorm:"not null"`
	Translation string  `gorm:"not null"`
	Example     *string `gorm:"type:text"`
	AuthorID    uint    `gorm:"not null;index"`
	Author      User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	CreatedAt   time.Time
}

// GrammarTopic is a titled grammar explanation. The explanation is rich text.
type GrammarTopic struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Explanation string `gorm:"type:text;not null"`
	AuthorID    uint   `gorm:"not null;index"`
	Author      User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	CreatedAt   time.Time
}

// LearningDB holds the vocabulary and grammar operations.
type LearningDB interface {
	CreateVocabularyEntry(ctx context.Context, entry *VocabularyEntry) error
	GetVocabularyEntries(ctx context.Context) ([]VocabularyEntry, error)
	CreateGrammarTopic(ctx context.Context, topic *GrammarTopic) error
	GetGrammarTopics(ctx context.Context) ([]GrammarTopic, error)
}

func (c *Client) CreateVocabularyEntry(ctx context.Context, entry *VocabularyEntry) error {
	if err := c.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error; err != nil {
		log.Error("failed to create vocabulary entry", "error", err)
		return err
	}
	return nil
}

// GetVocabularyEntries returns all vocabulary entries, newest first.
func (c *Client) GetVocabularyEntries(ctx context.Context) ([]VocabularyEntry, error) {
	var entries []VocabularyEntry
	if err := newestFirst(c.db.WithContext(ctx)).Find(&entries).Error; err != nil {
		log.Error("failed to get vocabulary entries", "error", err)
		return nil, err
	}
	return entries, nil
}

func (c *Client) CreateGrammarTopic(ctx context.Context, topic *GrammarTopic) error {
	if err := c.db.WithContext(ctx).Omit(clause.Associations).Create(topic).Error; err != nil {
		log.Error("failed to create grammar topic", "error", err)
		return err
	}
	return nil
}

// GetGrammarTopics returns all grammar topics, newest first.
func (c *Client) GetGrammarTopics(ctx context.Context) ([]GrammarTopic, error) {
	var topics []GrammarTopic
	if err := newestFirst(c.db.WithContext(ctx)).Find(&topics).Error; err != nil {
		log.Error("failed to get grammar topics", "error", err)
		return nil, err
	}
	return topics, nil
}
