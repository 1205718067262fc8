// Package authoring implements the admin workflows that create stories and
// their comprehension questions.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/charmbracelet/log"
	"github.com/lesezeit/lesezeit/internal/apperr"
	"github.com/lesezeit/lesezeit/internal/database"
	"github.com/lesezeit/lesezeit/internal/upload"
	"github.com/samber/lo"
)

// Service creates stories and questions.
type Service struct {
	db      database.DB
	uploads *upload.Store
	log     *log.Logger
}

// NewService creates a new authoring Service.
func NewService(db database.DB, uploads *upload.Store) *Service {
	return &Service{
		db:      db,
		uploads: uploads,
		log:     log.Default().WithPrefix("authoring"),
	}
}

// StorySubmission is a complete story form.
type StorySubmission struct {
	Story     StoryInput
	Questions []QuestionInput
	AuthorID  uint
}

type pendingQuestion struct {
	question *database.Question
	audio    *multipart.FileHeader
}

// CreateStory validates a story with its questions and stores them in one
// transaction. Either everything is stored or nothing is, including the
// audio files.
func (s *Service) CreateStory(ctx context.Context, sub StorySubmission) (uint, error) {
	story, err := ValidateStory(sub.Story, sub.AuthorID)
	if err != nil {
		return 0, err
	}

	pending := make([]pendingQuestion, 0, len(sub.Questions))
	for i, in := range sub.Questions {
		q, err := ValidateQuestion(in, fmt.Sprintf("Question %d", i+1), sub.AuthorID)
		if err != nil {
			return 0, err
		}
		pending = append(pending, pendingQuestion{question: q, audio: in.Audio})
	}

	audio := lo.FilterMap(pending, func(p pendingQuestion, _ int) (*multipart.FileHeader, bool) {
		return p.audio, p.audio != nil
	})
	if err := s.uploads.Check(audio...); err != nil {
		return 0, err
	}

	batch := s.uploads.NewBatch()
	defer batch.Cleanup()

	for _, p := range pending {
		if p.audio == nil {
			continue
		}
		rel, err := batch.Save(p.audio)
		if err != nil {
			return 0, asAppError(err)
		}
		p.question.AudioPath = &rel
	}

	err = s.db.Transaction(ctx, func(tx database.DB) error {
		if err := tx.CreateStory(ctx, story); err != nil {
			return fmt.Errorf("failed to insert story: %w", err)
		}
		for _, p := range pending {
			p.question.StoryID = story.ID
			if err := tx.CreateQuestion(ctx, p.question); err != nil {
				return fmt.Errorf("failed to insert question: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, apperr.Unexpected(err)
	}

	batch.Commit()
	s.log.Info("Story created", "id", story.ID, "level", story.Level, "questions", len(pending), "audio", len(batch.Written()))
	return story.ID, nil
}

// AddQuestion attaches one question to an existing story.
func (s *Service) AddQuestion(ctx context.Context, storyID uint, in QuestionInput, authorID uint) (uint, error) {
	q, err := ValidateQuestion(in, "", authorID)
	if err != nil {
		return 0, err
	}

	if _, err := s.db.GetStoryByID(ctx, storyID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, apperr.NotFound("The selected story does not exist.")
		}
		return 0, apperr.Unexpected(fmt.Errorf("failed to load story: %w", err))
	}
	q.StoryID = storyID

	if err := s.uploads.Check(in.Audio); err != nil {
		return 0, err
	}

	batch := s.uploads.NewBatch()
	defer batch.Cleanup()

	if in.Audio != nil {
		rel, err := batch.Save(in.Audio)
		if err != nil {
			return 0, asAppError(err)
		}
		q.AudioPath = &rel
	}

	if err := s.db.CreateQuestion(ctx, q); err != nil {
		return 0, apperr.Unexpected(fmt.Errorf("failed to insert question: %w", err))
	}

	batch.Commit()
	s.log.Info("Question created", "id", q.ID, "story", storyID, "audio", q.AudioPath != nil)
	return q.ID, nil
}

func asAppError(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.Unexpected(err)
}
