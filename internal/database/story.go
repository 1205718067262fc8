package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Level is a CEFR language level.
type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

// Levels lists all valid levels in ascending order.
var Levels = []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

// ParseLevel normalizes s to uppercase and reports whether it names a valid level.
func ParseLevel(s string) (Level, bool) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	for _, valid := range Levels {
		if l == valid {
			return l, true
		}
	}
	return "", false
}

// Story is a reading text. Stories are created only by admins and never edited.
type Story struct {
	ID        uint       `gorm:"primaryKey"`
	Title     string     `gorm:"not null"`
	Level     Level      `gorm:"type:varchar(2);not null;check:chk_stories_level,level IN ('A1','A2','B1','B2','C1','C2')"`
	Summary   string     `gorm:"not null"`
	Body      string     `gorm:"type:text;not null"`
	AuthorID  uint       `gorm:"not null;index"`
	Author    User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	Questions []Question `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time  `gorm:"index"`
}

// StorySummary is the id and title of a story, used for navigation and selection lists.
type StorySummary struct {
	ID    uint
	Title string
}

// AdjacentStories holds the neighbours of a story by id. Either may be nil.
type AdjacentStories struct {
	Previous *StorySummary
	Next     *StorySummary
}

// StoryDB holds the story read and write operations.
type StoryDB interface {
	CreateStory(ctx context.Context, story *Story) error
	GetStories(ctx context.Context) ([]Story, error)
	GetStorySummaries(ctx context.Context) ([]StorySummary, error)
	GetStoryByID(ctx context.Context, id uint) (*Story, error)
	GetAdjacentStories(ctx context.Context, id uint) (*AdjacentStories, error)
}

// CreateStory inserts story and sets its generated ID.
func (c *Client) CreateStory(ctx context.Context, story *Story) error {
	if err := c.db.WithContext(ctx).Omit(clause.Associations).Create(story).Error; err != nil {
		log.Error("failed to create story", "error", err)
		return err
	}
	return nil
}

// GetStories returns all stories, newest first.
func (c *Client) GetStories(ctx context.Context) ([]Story, error) {
	var stories []Story
	if err := newestFirst(c.db.WithContext(ctx).Preload("Author")).Find(&stories).Error; err != nil {
		log.Error("failed to get stories", "error", err)
		return nil, err
	}
	return stories, nil
}

// GetStorySummaries returns id and title of all stories, newest first.
func (c *Client) GetStorySummaries(ctx context.Context) ([]StorySummary, error) {
	var summaries []StorySummary
	if err := newestFirst(c.db.WithContext(ctx).Model(&Story{}).Select("id", "title")).Find(&summaries).Error; err != nil {
		log.Error("failed to get story summaries", "error", err)
		return nil, err
	}
	return summaries, nil
}

// GetStoryByID returns the story with its author.
func (c *Client) GetStoryByID(ctx context.Context, id uint) (*Story, error) {
	var story Story
	if err := c.db.WithContext(ctx).Preload("Author").First(&story, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Error("failed to get story by ID", "error", err)
		return nil, err
	}
	return &story, nil
}

// GetAdjacentStories returns the stories with the nearest lower and higher id.
// Adjacency is by id only, not by creation time or level.
func (c *Client) GetAdjacentStories(ctx context.Context, id uint) (*AdjacentStories, error) {
	var adjacent AdjacentStories

	var previous []StorySummary
	if err := c.db.WithContext(ctx).Model(&Story{}).Select("id", "title").
		Where("id < ?", id).Order("id DESC").Limit(1).Find(&previous).Error; err != nil {
		log.Error("failed to get previous story", "error", err)
		return nil, err
	}
	if len(previous) > 0 {
		adjacent.Previous = &previous[0]
	}

	var next []StorySummary
	if err := c.db.WithContext(ctx).Model(&Story{}).Select("id", "title").
		Where("id > ?", id).Order("id ASC").Limit(1).Find(&next).Error; err != nil {
		log.Error("failed to get next story", "error", err)
		return nil, err
	}
	if len(next) > 0 {
		adjacent.Next = &next[0]
	}

	return &adjacent, nil
}
