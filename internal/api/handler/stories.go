package handler

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/lesezeit/lesezeit/internal/api/auth"
	"github.com/lesezeit/lesezeit/internal/api/models"
	"github.com/lesezeit/lesezeit/internal/apperr"
	"github.com/lesezeit/lesezeit/internal/authoring"
	"github.com/lesezeit/lesezeit/internal/database"
	"github.com/lesezeit/lesezeit/web/templates/pages"
	"github.com/samber/lo"
)

func levels() []string {
	return lo.Map(database.Levels, func(l database.Level, _ int) string { return string(l) })
}

// Stories lists all stories for the admin.
func (h *Handler) Stories(c *gin.Context) {
	stories, err := h.db.GetStories(c.Request.Context())
	if err != nil {
		h.renderError(c, apperr.Unexpected(err))
		return
	}
	render(c, http.StatusOK, pages.StoryList(auth.CurrentUser(c), models.ToStoryItems(stories)))
}

// NewStory shows an empty story form.
func (h *Handler) NewStory(c *gin.Context) {
	render(c, http.StatusOK, pages.NewStory(auth.CurrentUser(c), pages.StoryForm{
		Level:     string(database.LevelA1),
		MaxUpload: h.maxUpload(),
	}, levels()))
}

// CreateStory stores a story together with its questions.
func (h *Handler) CreateStory(c *gin.Context) {
	user := auth.CurrentUser(c)

	form, err := parseForm(c)
	if err != nil {
		h.log.Debug("Failed to parse story form", "error", err)
		render(c, http.StatusBadRequest, pages.NewStory(user, pages.StoryForm{
			Error:     "The form could not be read. Please try again.",
			MaxUpload: h.maxUpload(),
		}, levels()))
		return
	}

	story := authoring.StoryInput{
		Title:   c.PostForm("title"),
		Level:   c.PostForm("level"),
		Summary: c.PostForm("summary"),
		Body:    c.PostForm("body"),
	}
	questions := authoring.ParseQuestionFields(form.Value, form.File)

	id, err := h.authoring.CreateStory(c.Request.Context(), authoring.StorySubmission{
		Story:     story,
		Questions: questions,
		AuthorID:  user.ID,
	})
	if err != nil {
		if kind := apperr.KindOf(err); kind != apperr.KindUnexpected {
			render(c, kind.Status(), pages.NewStory(user, pages.StoryForm{
				Error:     apperr.MessageOf(err),
				Title:     story.Title,
				Level:     story.Level,
				Summary:   story.Summary,
				Body:      story.Body,
				Questions: lo.Map(questions, func(q authoring.QuestionInput, _ int) pages.QuestionRow { return toQuestionRow(q) }),
				MaxUpload: h.maxUpload(),
			}, levels()))
			return
		}
		h.renderError(c, err)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/story/%d", id))
}

func toQuestionRow(q authoring.QuestionInput) pages.QuestionRow {
	return pages.QuestionRow{
		Index:        q.Index,
		Prompt:       q.Prompt,
		Answers:      q.Answers,
		CorrectIndex: q.CorrectIndex,
	}
}

func (h *Handler) renderQuestionForm(c *gin.Context, status int, form pages.QuestionForm, flashMsg string) {
	summaries, err := h.db.GetStorySummaries(c.Request.Context())
	if err != nil {
		h.renderError(c, apperr.Unexpected(err))
		return
	}
	form.MaxUpload = h.maxUpload()
	render(c, status, pages.NewQuestion(auth.CurrentUser(c), form, models.ToStoryLinks(summaries), flashMsg))
}

// NewQuestion shows the form that adds a question to an existing story.
func (h *Handler) NewQuestion(c *gin.Context) {
	h.renderQuestionForm(c, http.StatusOK, pages.QuestionForm{StoryID: c.Query("story_id")}, flash(c))
}

// CreateQuestion adds a single question to an existing story.
func (h *Handler) CreateQuestion(c *gin.Context) {
	user := auth.CurrentUser(c)

	form, err := parseForm(c)
	if err != nil {
		h.log.Debug("Failed to parse question form", "error", err)
		h.renderQuestionForm(c, http.StatusBadRequest, pages.QuestionForm{Error: "The form could not be read. Please try again."}, "")
		return
	}

	in := authoring.SingleQuestionInput(form.Value, form.File)
	values := pages.QuestionForm{
		StoryID:      c.PostForm("story_id"),
		Prompt:       in.Prompt,
		Answers:      in.Answers,
		CorrectIndex: in.CorrectIndex,
	}

	storyID, ok := parseID(values.StoryID)
	if !ok {
		values.Error = "Please choose a story."
		h.renderQuestionForm(c, http.StatusBadRequest, values, "")
		return
	}

	id, err := h.authoring.AddQuestion(c.Request.Context(), storyID, in, user.ID)
	if err != nil {
		if kind := apperr.KindOf(err); kind != apperr.KindUnexpected {
			values.Error = apperr.MessageOf(err)
			h.renderQuestionForm(c, kind.Status(), values, "")
			return
		}
		h.renderError(c, err)
		return
	}

	session := sessions.Default(c)
	auth.AddFlash(session, fmt.Sprintf("Question #%d added.", id))
	if err := session.Save(); err != nil {
		log.Error("Failed to save session", "error", err)
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/questions/new?story_id=%d", storyID))
}
