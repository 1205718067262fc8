package authoring

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/lesezeit/lesezeit/internal/apperr"
	"github.com/lesezeit/lesezeit/internal/database"
	"github.com/lesezeit/lesezeit/internal/database/mock"
	"github.com/lesezeit/lesezeit/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mp3Payload = append([]byte("ID3\x04\x00\x00\x00\x00\x00\x00"), bytes.Repeat([]byte{0xff, 0xfb, 0x90, 0x64}, 32)...)

type testFile struct {
	field    string
	filename string
	content  []byte
}

// buildForm encodes fields and files as multipart and parses them back, so
// tests see the same structures a request handler does.
func buildForm(t *testing.T, fields map[string]string, files ...testFile) *multipart.Form {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form
}

func derMondFields(correctIndex string) map[string]string {
	return map[string]string{
		"questions[0][prompt]":        "Farbe?",
		"questions[0][answers][0]":    "Rot",
		"questions[0][answers][1]":    "Blau",
		"questions[0][answers][2]":    "Grün",
		"questions[0][answers][3]":    "Gelb",
		"questions[0][correct_index]": correctIndex,
	}
}

func derMondStory() StoryInput {
	return StoryInput{Title: "Der Mond", Level: "a1", Summary: "S", Body: "B"}
}

func newUploads(t *testing.T) *upload.Store {
	t.Helper()
	store, err := upload.New(filepath.Join(t.TempDir(), "uploads"), 1<<20)
	require.NoError(t, err)
	return store
}

func uploadCount(t *testing.T, store *upload.Store) int {
	t.Helper()
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	return len(entries)
}

func newSQLite(t *testing.T) (*database.Client, *database.User) {
	t.Helper()
	client, err := database.New(filepath.Join(t.TempDir(), "lesezeit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	author, err := client.CreateUser(context.Background(), "admin@example.com", "hash", database.RoleAdmin)
	require.NoError(t, err)
	return client, author
}

func TestParseQuestionFields_OrdersByIndexAndIgnoresGaps(t *testing.T) {
	fields := map[string]string{}
	for _, idx := range []string{"5", "0", "2"} {
		fields["questions["+idx+"][prompt]"] = "prompt " + idx
		fields["questions["+idx+"][answers][1]"] = "answer " + idx
	}
	form := buildForm(t, fields)

	questions := ParseQuestionFields(form.Value, form.File)
	require.Len(t, questions, 3)
	assert.Equal(t, []int{0, 2, 5}, []int{questions[0].Index, questions[1].Index, questions[2].Index})
	assert.Equal(t, "prompt 2", questions[1].Prompt)
	assert.Equal(t, [4]string{"", "answer 5", "", ""}, questions[2].Answers)
}

func TestParseQuestionFields_DropsBlankRows(t *testing.T) {
	form := buildForm(t, map[string]string{
		"questions[0][prompt]":        "Wer?",
		"questions[1][prompt]":        "   ",
		"questions[1][answers][0]":    "",
		"questions[1][correct_index]": "1",
		"questions[2][answers][3]":    "only an answer",
	})

	questions := ParseQuestionFields(form.Value, form.File)
	require.Len(t, questions, 2)
	assert.Equal(t, 0, questions[0].Index)
	assert.Equal(t, 2, questions[1].Index)
}

func TestParseQuestionFields_IgnoresMalformedNames(t *testing.T) {
	form := buildForm(t, map[string]string{
		"questions[x][prompt]":     "non-numeric",
		"questions[][prompt]":      "empty index",
		"questions[1][answers][7]": "out of range answer",
		"questions[1][unknown]":    "unknown field",
		"question[1][prompt]":      "wrong prefix",
		"title":                    "Der Mond",
	})

	assert.Empty(t, ParseQuestionFields(form.Value, form.File))
}

func TestParseQuestionFields_AttachesAudio(t *testing.T) {
	form := buildForm(t,
		map[string]string{"questions[3][prompt]": "Hörst du?"},
		testFile{field: "questions[3][audio]", filename: "clip.mp3", content: mp3Payload},
		testFile{field: "questions[9][audio]", filename: "blank.mp3", content: mp3Payload},
	)

	questions := ParseQuestionFields(form.Value, form.File)
	require.Len(t, questions, 1)
	require.NotNil(t, questions[0].Audio)
	assert.Equal(t, "clip.mp3", questions[0].Audio.Filename)
}

func TestSingleQuestionInput(t *testing.T) {
	form := buildForm(t, map[string]string{
		"prompt":        " Wo? ",
		"answers[0]":    "a",
		"answers[1]":    "b",
		"answers[2]":    "c",
		"answers[3]":    "d",
		"correct_index": "3",
	}, testFile{field: "audio", filename: "a.mp3", content: mp3Payload})

	q := SingleQuestionInput(form.Value, form.File)
	assert.Equal(t, " Wo? ", q.Prompt)
	assert.Equal(t, [4]string{"a", "b", "c", "d"}, q.Answers)
	assert.Equal(t, "3", q.CorrectIndex)
	assert.NotNil(t, q.Audio)
}

func TestValidateStory(t *testing.T) {
	tests := []struct {
		name    string
		in      StoryInput
		wantErr string
	}{
		{name: "valid", in: derMondStory()},
		{name: "missing title", in: StoryInput{Title: "  ", Level: "A1", Summary: "S", Body: "B"}, wantErr: "Title is required."},
		{name: "bad level", in: StoryInput{Title: "T", Level: "D1", Summary: "S", Body: "B"}, wantErr: "Level must be one of"},
		{name: "missing summary", in: StoryInput{Title: "T", Level: "b2", Summary: "", Body: "B"}, wantErr: "Summary is required."},
		{name: "missing body", in: StoryInput{Title: "T", Level: "C2", Summary: "S", Body: "\n"}, wantErr: "Body is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			story, err := ValidateStory(tt.in, 7)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, database.LevelA1, story.Level)
				assert.Equal(t, uint(7), story.AuthorID)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Contains(t, apperr.MessageOf(err), tt.wantErr)
		})
	}
}

func TestValidateQuestion(t *testing.T) {
	valid := QuestionInput{Prompt: " Farbe? ", Answers: [4]string{"Rot", "Blau", " Grün ", "Gelb"}, CorrectIndex: "2"}

	q, err := ValidateQuestion(valid, "Question 1", 3)
	require.NoError(t, err)
	assert.Equal(t, "Farbe?", q.Prompt)
	assert.Equal(t, [4]string{"Rot", "Blau", "Grün", "Gelb"}, q.Answers())
	assert.Equal(t, 2, q.CorrectIndex)
	assert.Nil(t, q.AudioPath)

	tests := []struct {
		name    string
		mutate  func(*QuestionInput)
		wantErr string
	}{
		{name: "missing prompt", mutate: func(q *QuestionInput) { q.Prompt = "" }, wantErr: "Question 1: prompt is required."},
		{name: "missing answer", mutate: func(q *QuestionInput) { q.Answers[3] = " " }, wantErr: "Question 1: answer 4 is required."},
		{name: "missing correct index", mutate: func(q *QuestionInput) { q.CorrectIndex = "" }, wantErr: "choose the correct answer"},
		{name: "correct index too high", mutate: func(q *QuestionInput) { q.CorrectIndex = "5" }, wantErr: "between 0 and 3"},
		{name: "negative correct index", mutate: func(q *QuestionInput) { q.CorrectIndex = "-1" }, wantErr: "between 0 and 3"},
		{name: "non-numeric correct index", mutate: func(q *QuestionInput) { q.CorrectIndex = "zwei" }, wantErr: "between 0 and 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := ValidateQuestion(in, "Question 1", 3)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Contains(t, apperr.MessageOf(err), tt.wantErr)
		})
	}
}

func TestCreateStory_DerMond(t *testing.T) {
	ctx := context.Background()
	db, author := newSQLite(t)
	svc := NewService(db, newUploads(t))

	form := buildForm(t, derMondFields("2"))
	id, err := svc.CreateStory(ctx, StorySubmission{
		Story:     derMondStory(),
		Questions: ParseQuestionFields(form.Value, form.File),
		AuthorID:  author.ID,
	})
	require.NoError(t, err)

	story, err := db.GetStoryByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, database.LevelA1, story.Level)
	assert.Equal(t, author.ID, story.AuthorID)

	questions, err := db.GetQuestionsByStoryID(ctx, id)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, 2, questions[0].CorrectIndex)
	assert.Nil(t, questions[0].AudioPath)
	assert.Equal(t, author.ID, questions[0].AuthorID)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Stories)
	assert.Equal(t, int64(1), stats.Questions)
}

func TestCreateStory_InvalidCorrectIndexPersistsNothing(t *testing.T) {
	ctx := context.Background()
	db, author := newSQLite(t)
	uploads := newUploads(t)
	svc := NewService(db, uploads)

	fields := derMondFields("5")
	fields["questions[1][prompt]"] = "Wo?"
	form := buildForm(t, fields,
		testFile{field: "questions[0][audio]", filename: "a.mp3", content: mp3Payload},
	)

	_, err := svc.CreateStory(ctx, StorySubmission{
		Story:     derMondStory(),
		Questions: ParseQuestionFields(form.Value, form.File),
		AuthorID:  author.ID,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, 400, apperr.KindOf(err).Status())

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Stories)
	assert.Zero(t, stats.Questions)
	assert.Zero(t, uploadCount(t, uploads))
}

func TestCreateStory_ZeroQuestions(t *testing.T) {
	ctx := context.Background()
	db, author := newSQLite(t)
	svc := NewService(db, newUploads(t))

	id, err := svc.CreateStory(ctx, StorySubmission{Story: derMondStory(), AuthorID: author.ID})
	require.NoError(t, err)

	questions, err := db.GetQuestionsByStoryID(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, questions)
}

func TestCreateStory_StoresAudio(t *testing.T) {
	ctx := context.Background()
	db, author := newSQLite(t)
	uploads := newUploads(t)
	svc := NewService(db, uploads)

	fields := derMondFields("2")
	fields["questions[4][prompt]"] = "Wann?"
	fields["questions[4][answers][0]"] = "heute"
	fields["questions[4][answers][1]"] = "morgen"
	fields["questions[4][answers][2]"] = "gestern"
	fields["questions[4][answers][3]"] = "nie"
	fields["questions[4][correct_index]"] = "0"
	form := buildForm(t, fields,
		testFile{field: "questions[4][audio]", filename: "wann.mp3", content: mp3Payload},
	)

	id, err := svc.CreateStory(ctx, StorySubmission{
		Story:     derMondStory(),
		Questions: ParseQuestionFields(form.Value, form.File),
		AuthorID:  author.ID,
	})
	require.NoError(t, err)

	questions, err := db.GetQuestionsByStoryID(ctx, id)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "Farbe?", questions[0].Prompt)
	assert.Nil(t, questions[0].AudioPath)
	require.NotNil(t, questions[1].AudioPath)
	assert.Regexp(t, `^uploads/.+\.mp3$`, *questions[1].AudioPath)
	assert.FileExists(t, filepath.Join(uploads.Dir(), filepath.Base(*questions[1].AudioPath)))
}

func TestCreateStory_RejectedAudioWritesNothing(t *testing.T) {
	ctx := context.Background()
	db := mock.NewMockDB()
	uploads := newUploads(t)
	svc := NewService(db, uploads)

	fields := derMondFields("2")
	for k, v := range derMondFields("1") {
		fields["questions[1]"+k[len("questions[0]"):]] = v
	}
	form := buildForm(t, fields,
		testFile{field: "questions[0][audio]", filename: "good.mp3", content: mp3Payload},
		testFile{field: "questions[1][audio]", filename: "bad.wav", content: mp3Payload},
	)

	_, err := svc.CreateStory(ctx, StorySubmission{
		Story:     derMondStory(),
		Questions: ParseQuestionFields(form.Value, form.File),
		AuthorID:  1,
	})
	require.Error(t, err)
	assert.Contains(t, apperr.MessageOf(err), "bad.wav")

	stories, questions := db.Counts()
	assert.Zero(t, stories)
	assert.Zero(t, questions)
	assert.Zero(t, uploadCount(t, uploads))
}

func TestCreateStory_InsertFailureRollsBackAndRemovesFiles(t *testing.T) {
	ctx := context.Background()
	db := mock.NewMockDB()
	db.FailCreateQuestionAfter = 1
	uploads := newUploads(t)
	svc := NewService(db, uploads)

	fields := derMondFields("2")
	for k, v := range derMondFields("3") {
		fields["questions[1]"+k[len("questions[0]"):]] = v
	}
	form := buildForm(t, fields,
		testFile{field: "questions[0][audio]", filename: "a.mp3", content: mp3Payload},
		testFile{field: "questions[1][audio]", filename: "b.mp3", content: mp3Payload},
	)

	_, err := svc.CreateStory(ctx, StorySubmission{
		Story:     derMondStory(),
		Questions: ParseQuestionFields(form.Value, form.File),
		AuthorID:  1,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnexpected, apperr.KindOf(err))
	assert.Equal(t, apperr.MsgUnexpected, apperr.MessageOf(err))

	stories, questions := db.Counts()
	assert.Zero(t, stories)
	assert.Zero(t, questions)
	assert.Zero(t, uploadCount(t, uploads))
}

func TestCreateStory_TransactionFailure(t *testing.T) {
	db := mock.NewMockDB()
	db.TransactionError = errors.New("database is locked")
	uploads := newUploads(t)
	svc := NewService(db, uploads)

	form := buildForm(t, derMondFields("2"),
		testFile{field: "questions[0][audio]", filename: "a.mp3", content: mp3Payload},
	)
	_, err := svc.CreateStory(context.Background(), StorySubmission{
		Story:     derMondStory(),
		Questions: ParseQuestionFields(form.Value, form.File),
		AuthorID:  1,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnexpected, apperr.KindOf(err))
	assert.Zero(t, uploadCount(t, uploads))
}

func TestAddQuestion(t *testing.T) {
	ctx := context.Background()
	db, author := newSQLite(t)
	uploads := newUploads(t)
	svc := NewService(db, uploads)

	storyID, err := svc.CreateStory(ctx, StorySubmission{Story: derMondStory(), AuthorID: author.ID})
	require.NoError(t, err)

	form := buildForm(t, map[string]string{
		"prompt":        "Wie heißt der Mond?",
		"answers[0]":    "Luna",
		"answers[1]":    "Sol",
		"answers[2]":    "Terra",
		"answers[3]":    "Mars",
		"correct_index": "0",
	}, testFile{field: "audio", filename: "luna.mp3", content: mp3Payload})

	id, err := svc.AddQuestion(ctx, storyID, SingleQuestionInput(form.Value, form.File), author.ID)
	require.NoError(t, err)
	assert.NotZero(t, id)

	questions, err := db.GetQuestionsByStoryID(ctx, storyID)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, id, questions[0].ID)
	require.NotNil(t, questions[0].AudioPath)
	assert.Equal(t, 1, uploadCount(t, uploads))
}

func TestAddQuestion_UnknownStory(t *testing.T) {
	db := mock.NewMockDB()
	uploads := newUploads(t)
	svc := NewService(db, uploads)

	in := QuestionInput{Prompt: "P", Answers: [4]string{"a", "b", "c", "d"}, CorrectIndex: "1"}
	_, err := svc.AddQuestion(context.Background(), 99, in, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, questions := db.Counts()
	assert.Zero(t, questions)
}

func TestAddQuestion_InsertFailureRemovesAudio(t *testing.T) {
	ctx := context.Background()
	db := mock.NewMockDB()
	uploads := newUploads(t)
	svc := NewService(db, uploads)

	storyID, err := svc.CreateStory(ctx, StorySubmission{Story: derMondStory(), AuthorID: 1})
	require.NoError(t, err)
	db.CreateQuestionError = errors.New("disk full")

	form := buildForm(t, nil, testFile{field: "audio", filename: "a.mp3", content: mp3Payload})
	in := QuestionInput{Prompt: "P", Answers: [4]string{"a", "b", "c", "d"}, CorrectIndex: "1", Audio: form.File["audio"][0]}

	_, err = svc.AddQuestion(ctx, storyID, in, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnexpected, apperr.KindOf(err))
	assert.Zero(t, uploadCount(t, uploads))
}
