package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/lesezeit/lesezeit/internal/api/auth"
	"github.com/lesezeit/lesezeit/internal/api/models"
	"github.com/lesezeit/lesezeit/internal/apperr"
	"github.com/lesezeit/lesezeit/internal/database"
	"github.com/lesezeit/lesezeit/web/templates/pages"
	"github.com/samber/lo"
)

type vocabularyForm struct {
	Term        string `binding:"required,max=200"`
	Translation string `binding:"required,max=200"`
	Example     string `binding:"max=1000"`
}

var vocabularyMessages = map[string]string{
	"Term":        "Term is required and may be at most 200 characters long.",
	"Translation": "Translation is required and may be at most 200 characters long.",
	"Example":     "Example may be at most 1000 characters long.",
}

type grammarForm struct {
	Title       string `binding:"required,max=200"`
	Explanation string `binding:"required"`
}

var grammarMessages = map[string]string{
	"Title":       "Title is required and may be at most 200 characters long.",
	"Explanation": "Explanation is required.",
}

// Vocabulary lists all vocabulary entries, newest first.
func (h *Handler) Vocabulary(c *gin.Context) {
	entries, err := h.db.GetVocabularyEntries(c.Request.Context())
	if err != nil {
		h.renderError(c, apperr.Unexpected(err))
		return
	}
	render(c, http.StatusOK, pages.Vocabulary(auth.CurrentUser(c), models.ToVocabularyItems(entries)))
}

// NewVocabulary shows an empty vocabulary form.
func (h *Handler) NewVocabulary(c *gin.Context) {
	render(c, http.StatusOK, pages.NewVocabulary(auth.CurrentUser(c), pages.VocabularyForm{}))
}

// CreateVocabulary stores a vocabulary entry.
func (h *Handler) CreateVocabulary(c *gin.Context) {
	user := auth.CurrentUser(c)
	raw := pages.VocabularyForm{
		Term:        c.PostForm("term"),
		Translation: c.PostForm("translation"),
		Example:     c.PostForm("example"),
	}
	form := vocabularyForm{
		Term:        strings.TrimSpace(raw.Term),
		Translation: strings.TrimSpace(raw.Translation),
		Example:     strings.TrimSpace(raw.Example),
	}

	if err := binding.Validator.ValidateStruct(&form); err != nil {
		raw.Error = validationMessage(err, vocabularyMessages)
		render(c, http.StatusBadRequest, pages.NewVocabulary(user, raw))
		return
	}

	entry := &database.VocabularyEntry{
		Term:        form.Term,
		Translation: form.Translation,
		AuthorID:    user.ID,
	}
	if form.Example != "" {
		entry.Example = lo.ToPtr(form.Example)
	}
	if err := h.db.CreateVocabularyEntry(c.Request.Context(), entry); err != nil {
		h.renderError(c, apperr.Unexpected(err))
		return
	}

	c.Redirect(http.StatusFound, "/learning/vocabulary")
}

// Grammar lists all grammar topics, newest first.
func (h *Handler) Grammar(c *gin.Context) {
	topics, err := h.db.GetGrammarTopics(c.Request.Context())
	if err != nil {
		h.renderError(c, apperr.Unexpected(err))
		return
	}
	render(c, http.StatusOK, pages.Grammar(auth.CurrentUser(c), models.ToGrammarItems(topics)))
}

// NewGrammar shows an empty grammar form.
func (h *Handler) NewGrammar(c *gin.Context) {
	render(c, http.StatusOK, pages.NewGrammar(auth.CurrentUser(c), pages.GrammarForm{}))
}

// CreateGrammar stores a grammar topic.
func (h *Handler) CreateGrammar(c *gin.Context) {
	user := auth.CurrentUser(c)
	raw := pages.GrammarForm{
		Title:       c.PostForm("title"),
		Explanation: c.PostForm("explanation"),
	}
	form := grammarForm{
		Title:       strings.TrimSpace(raw.Title),
		Explanation: strings.TrimSpace(raw.Explanation),
	}

	if err := binding.Validator.ValidateStruct(&form); err != nil {
		raw.Error = validationMessage(err, grammarMessages)
		render(c, http.StatusBadRequest, pages.NewGrammar(user, raw))
		return
	}

	if err := h.db.CreateGrammarTopic(c.Request.Context(), &database.GrammarTopic{
		Title:       form.Title,
		Explanation: form.Explanation,
		AuthorID:    user.ID,
	}); err != nil {
		h.renderError(c, apperr.Unexpected(err))
		return
	}

	c.Redirect(http.StatusFound, "/learning/grammar")
}
