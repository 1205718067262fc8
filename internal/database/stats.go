package database

import (
	"context"
	"fmt"
)

// Stats holds row counts for the content tables.
type Stats struct {
	Users             int64
	Stories           int64
	Questions         int64
	QuestionsAudio    int64
	VocabularyEntries int64
	GrammarTopics     int64
	NewestStory       *Story
}

// GetStats collects row counts for all tables.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	db := c.db.WithContext(ctx)

	counts := []struct {
		model any
		where string
		dest  *int64
	}{
		{&User{}, "", &stats.Users},
		{&Story{}, "", &stats.Stories},
		{&Question{}, "", &stats.Questions},
		{&Question{}, "audio_path IS NOT NULL", &stats.QuestionsAudio},
		{&VocabularyEntry{}, "", &stats.VocabularyEntries},
		{&GrammarTopic{}, "", &stats.GrammarTopics},
	}
	for _, cnt := range counts {
		q := db.Model(cnt.model)
		if cnt.where != "" {
			q = q.Where(cnt.where)
		}
		if err := q.Count(cnt.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count %T: %w", cnt.model, err)
		}
	}

	var newest []Story
	if err := newestFirst(db).Limit(1).Find(&newest).Error; err != nil {
		return nil, fmt.Errorf("failed to get newest story: %w", err)
	}
	if len(newest) > 0 {
		stats.NewestStory = &newest[0]
	}

	return &stats, nil
}
