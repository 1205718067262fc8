package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/ccoveille/go-safecast"
	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/lesezeit/lesezeit/internal/api/auth"
	"github.com/lesezeit/lesezeit/internal/api/models"
	"github.com/lesezeit/lesezeit/internal/apperr"
	"github.com/lesezeit/lesezeit/internal/authoring"
	"github.com/lesezeit/lesezeit/internal/database"
	"github.com/lesezeit/lesezeit/internal/upload"
	"github.com/lesezeit/lesezeit/web/templates/components"
	"github.com/lesezeit/lesezeit/web/templates/pages"
)

type Handler struct {
	db        database.DB
	authoring *authoring.Service
	uploads   *upload.Store
	log       *log.Logger
}

func New(db database.DB, svc *authoring.Service, uploads *upload.Store) *Handler {
	return &Handler{
		db:        db,
		authoring: svc,
		uploads:   uploads,
		log:       log.Default().WithPrefix("handler"),
	}
}

func render(c *gin.Context, status int, component templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		log.Error("Failed to render page", "path", c.Request.URL.Path, "error", err)
	}
}

// renderError shows the error page for err. Unexpected errors are logged and
// never shown in detail.
func (h *Handler) renderError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindUnexpected {
		h.log.Error("Request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	}
	render(c, kind.Status(), pages.Error(auth.CurrentUser(c), kind.Status(), apperr.MessageOf(err)))
}

// NotFound renders the 404 page for unknown routes.
func (h *Handler) NotFound(c *gin.Context) {
	h.renderError(c, apperr.NotFound("The page you are looking for does not exist."))
}

func parseUintParam(param string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(param), 10, 64)
	if err != nil {
		return 0, err
	}
	return safecast.ToUint(id)
}

// parseID parses a positive record id.
func parseID(param string) (uint, bool) {
	id, err := parseUintParam(param)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// flash pops the pending flash message and saves the session.
func flash(c *gin.Context) string {
	session := sessions.Default(c)
	msg := auth.PopFlash(session)
	if msg != "" {
		if err := session.Save(); err != nil {
			log.Error("Failed to save session", "error", err)
		}
	}
	return msg
}

// parseForm reads a multipart or url-encoded submission. Url-encoded
// submissions carry no files.
func parseForm(c *gin.Context) (*multipart.Form, error) {
	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		return c.MultipartForm()
	}
	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	return &multipart.Form{
		Value: c.Request.PostForm,
		File:  map[string][]*multipart.FileHeader{},
	}, nil
}

func (h *Handler) maxUpload() string {
	return components.FormatFileSize(h.uploads.MaxSize())
}

// Home lists all stories, newest first.
func (h *Handler) Home(c *gin.Context) {
	stories, err := h.db.GetStories(c.Request.Context())
	if err != nil {
		h.renderError(c, apperr.Unexpected(err))
		return
	}
	render(c, http.StatusOK, pages.Home(auth.CurrentUser(c), models.ToStoryItems(stories)))
}

// StoryDetail shows a story with its questions and links to its neighbours.
func (h *Handler) StoryDetail(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseID(c.Param("id"))
	if !ok {
		h.renderError(c, apperr.NotFound("Story not found."))
		return
	}

	story, err := h.db.GetStoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.renderError(c, apperr.NotFound("Story not found."))
			return
		}
		h.renderError(c, apperr.Unexpected(err))
		return
	}

	questions, err := h.db.GetQuestionsByStoryID(ctx, id)
	if err != nil {
		h.renderError(c, apperr.Unexpected(err))
		return
	}

	adjacent, err := h.db.GetAdjacentStories(ctx, id)
	if err != nil {
		h.renderError(c, apperr.Unexpected(err))
		return
	}

	render(c, http.StatusOK, pages.Story(auth.CurrentUser(c), models.StoryDetail{
		Story:     models.ToStoryItem(*story),
		Questions: models.ToQuestionItems(questions),
		Previous:  models.ToStoryLink(adjacent.Previous),
		Next:      models.ToStoryLink(adjacent.Next),
	}))
}

// validationMessage maps the first failed field to its message.
func validationMessage(err error, messages map[string]string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := messages[verrs[0].Field()]; ok {
			return msg
		}
	}
	return "Please check your input."
}
