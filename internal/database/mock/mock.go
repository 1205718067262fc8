package mock

import (
	"context"
	"errors"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/lesezeit/lesezeit/internal/database"
)

var _ database.DB = (*MockDB)(nil)

var errSimulated = errors.New("simulated database failure")

// MockDB is a mock implementation of database.DB for testing.
// Transactions are emulated by restoring a snapshot when the callback fails.
type MockDB struct {
	mu sync.RWMutex

	users      map[uint]*database.User
	nextUserID uint

	stories     map[uint]*database.Story
	nextStoryID uint

	questions      map[uint]*database.Question
	nextQuestionID uint

	vocabulary       map[uint]*database.VocabularyEntry
	nextVocabularyID uint

	grammar       map[uint]*database.GrammarTopic
	nextGrammarID uint

	// Error simulation
	TransactionError           error
	CreateUserError            error
	GetUserByEmailError        error
	CreateStoryError           error
	GetStoriesError            error
	GetStoryByIDError          error
	CreateQuestionError        error
	GetQuestionsError          error
	CreateVocabularyEntryError error
	CreateGrammarTopicError    error

	// FailCreateQuestionAfter makes CreateQuestion fail once this many
	// questions have been created. Zero disables it.
	FailCreateQuestionAfter int
	createdQuestions        int
}

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	m := &MockDB{}
	m.Reset()
	return m
}

// Reset clears all data and errors from the mock database.
func (m *MockDB) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = make(map[uint]*database.User)
	m.nextUserID = 1
	m.stories = make(map[uint]*database.Story)
	m.nextStoryID = 1
	m.questions = make(map[uint]*database.Question)
	m.nextQuestionID = 1
	m.vocabulary = make(map[uint]*database.VocabularyEntry)
	m.nextVocabularyID = 1
	m.grammar = make(map[uint]*database.GrammarTopic)
	m.nextGrammarID = 1

	m.TransactionError = nil
	m.CreateUserError = nil
	m.GetUserByEmailError = nil
	m.CreateStoryError = nil
	m.GetStoriesError = nil
	m.GetStoryByIDError = nil
	m.CreateQuestionError = nil
	m.GetQuestionsError = nil
	m.CreateVocabularyEntryError = nil
	m.CreateGrammarTopicError = nil
	m.FailCreateQuestionAfter = 0
	m.createdQuestions = 0
}

type snapshot struct {
	users      map[uint]*database.User
	stories    map[uint]*database.Story
	questions  map[uint]*database.Question
	vocabulary map[uint]*database.VocabularyEntry
	grammar    map[uint]*database.GrammarTopic
}

func (m *MockDB) snapshot() snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return snapshot{
		users:      maps.Clone(m.users),
		stories:    maps.Clone(m.stories),
		questions:  maps.Clone(m.questions),
		vocabulary: maps.Clone(m.vocabulary),
		grammar:    maps.Clone(m.grammar),
	}
}

func (m *MockDB) restore(s snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = s.users
	m.stories = s.stories
	m.questions = s.questions
	m.vocabulary = s.vocabulary
	m.grammar = s.grammar
}

func (m *MockDB) Transaction(ctx context.Context, fn func(tx database.DB) error) error {
	if m.TransactionError != nil {
		return m.TransactionError
	}
	s := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(s)
		return err
	}
	return nil
}

func (m *MockDB) Close() error {
	return nil
}

// User operations

func (m *MockDB) CreateUser(ctx context.Context, email, passwordHash string, role database.Role) (*database.User, error) {
	if m.CreateUserError != nil {
		return nil, m.CreateUserError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return nil, database.ErrDuplicateEmail
		}
	}

	user := &database.User{
		ID:           m.nextUserID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	m.nextUserID++
	m.users[user.ID] = user

	cp := *user
	return &cp, nil
}

func (m *MockDB) GetUserByEmail(ctx context.Context, email string) (*database.User, error) {
	if m.GetUserByEmailError != nil {
		return nil, m.GetUserByEmailError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockDB) UpdateUserRole(ctx context.Context, id uint, role database.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return database.ErrNotFound
	}
	cp := *u
	cp.Role = role
	m.users[id] = &cp
	return nil
}

// Story operations

func (m *MockDB) CreateStory(ctx context.Context, story *database.Story) error {
	if m.CreateStoryError != nil {
		return m.CreateStoryError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	story.ID = m.nextStoryID
	m.nextStoryID++
	if story.CreatedAt.IsZero() {
		story.CreatedAt = time.Now()
	}
	cp := *story
	m.stories[story.ID] = &cp
	return nil
}

func (m *MockDB) GetStories(ctx context.Context) ([]database.Story, error) {
	if m.GetStoriesError != nil {
		return nil, m.GetStoriesError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	stories := make([]database.Story, 0, len(m.stories))
	for _, s := range m.stories {
		stories = append(stories, m.withAuthor(*s))
	}
	sort.Slice(stories, func(i, j int) bool {
		if !stories[i].CreatedAt.Equal(stories[j].CreatedAt) {
			return stories[i].CreatedAt.After(stories[j].CreatedAt)
		}
		return stories[i].ID > stories[j].ID
	})
	return stories, nil
}

func (m *MockDB) GetStorySummaries(ctx context.Context) ([]database.StorySummary, error) {
	stories, err := m.GetStories(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]database.StorySummary, len(stories))
	for i, s := range stories {
		summaries[i] = database.StorySummary{ID: s.ID, Title: s.Title}
	}
	return summaries, nil
}

func (m *MockDB) GetStoryByID(ctx context.Context, id uint) (*database.Story, error) {
	if m.GetStoryByIDError != nil {
		return nil, m.GetStoryByIDError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stories[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := m.withAuthor(*s)
	return &cp, nil
}

// withAuthor fills the author association. Callers hold the lock.
func (m *MockDB) withAuthor(s database.Story) database.Story {
	if u, ok := m.users[s.AuthorID]; ok {
		s.Author = *u
	}
	return s
}

func (m *MockDB) GetAdjacentStories(ctx context.Context, id uint) (*database.AdjacentStories, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var adjacent database.AdjacentStories
	for _, s := range m.stories {
		if s.ID < id && (adjacent.Previous == nil || s.ID > adjacent.Previous.ID) {
			adjacent.Previous = &database.StorySummary{ID: s.ID, Title: s.Title}
		}
		if s.ID > id && (adjacent.Next == nil || s.ID < adjacent.Next.ID) {
			adjacent.Next = &database.StorySummary{ID: s.ID, Title: s.Title}
		}
	}
	return &adjacent, nil
}

// Question operations

func (m *MockDB) CreateQuestion(ctx context.Context, question *database.Question) error {
	if m.CreateQuestionError != nil {
		return m.CreateQuestionError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCreateQuestionAfter > 0 && m.createdQuestions >= m.FailCreateQuestionAfter {
		return errSimulated
	}
	m.createdQuestions++

	question.ID = m.nextQuestionID
	m.nextQuestionID++
	cp := *question
	m.questions[question.ID] = &cp
	return nil
}

func (m *MockDB) GetQuestionsByStoryID(ctx context.Context, storyID uint) ([]database.Question, error) {
	if m.GetQuestionsError != nil {
		return nil, m.GetQuestionsError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var questions []database.Question
	for _, q := range m.questions {
		if q.StoryID == storyID {
			questions = append(questions, *q)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, nil
}

func (m *MockDB) GetAudioPaths(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var paths []string
	for _, q := range m.questions {
		if q.AudioPath != nil {
			paths = append(paths, *q.AudioPath)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Learning operations

func (m *MockDB) CreateVocabularyEntry(ctx context.Context, entry *database.VocabularyEntry) error {
	if m.CreateVocabularyEntryError != nil {
		return m.CreateVocabularyEntryError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = m.nextVocabularyID
	m.nextVocabularyID++
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	cp := *entry
	m.vocabulary[entry.ID] = &cp
	return nil
}

func (m *MockDB) GetVocabularyEntries(ctx context.Context) ([]database.VocabularyEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]database.VocabularyEntry, 0, len(m.vocabulary))
	for _, e := range m.vocabulary {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID > entries[j].ID })
	return entries, nil
}

func (m *MockDB) CreateGrammarTopic(ctx context.Context, topic *database.GrammarTopic) error {
	if m.CreateGrammarTopicError != nil {
		return m.CreateGrammarTopicError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	topic.ID = m.nextGrammarID
	m.nextGrammarID++
	if topic.CreatedAt.IsZero() {
		topic.CreatedAt = time.Now()
	}
	cp := *topic
	m.grammar[topic.ID] = &cp
	return nil
}

func (m *MockDB) GetGrammarTopics(ctx context.Context) ([]database.GrammarTopic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	topics := make([]database.GrammarTopic, 0, len(m.grammar))
	for _, t := range m.grammar {
		topics = append(topics, *t)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].ID > topics[j].ID })
	return topics, nil
}

func (m *MockDB) GetStats(ctx context.Context) (*database.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &database.Stats{
		Users:             int64(len(m.users)),
		Stories:           int64(len(m.stories)),
		Questions:         int64(len(m.questions)),
		VocabularyEntries: int64(len(m.vocabulary)),
		GrammarTopics:     int64(len(m.grammar)),
	}
	for _, q := range m.questions {
		if q.AudioPath != nil {
			stats.QuestionsAudio++
		}
	}
	return stats, nil
}

// Counts returns the number of stored stories and questions.
func (m *MockDB) Counts() (stories, questions int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stories), len(m.questions)
}
