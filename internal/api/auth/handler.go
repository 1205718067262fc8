package auth

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/lesezeit/lesezeit/internal/apperr"
	"github.com/lesezeit/lesezeit/internal/config"
	"github.com/lesezeit/lesezeit/internal/database"
	"github.com/lesezeit/lesezeit/web/templates/pages"
)

// Handler serves signup, login and logout.
type Handler struct {
	db  database.DB
	cfg *config.Config
	log *log.Logger
}

// NewHandler creates a new auth Handler.
func NewHandler(db database.DB, cfg *config.Config) *Handler {
	return &Handler{
		db:  db,
		cfg: cfg,
		log: log.Default().WithPrefix("auth"),
	}
}

// signupForm is filled by hand so the email can be normalized before the
// binding rules run.
type signupForm struct {
	Email           string `binding:"required,email,max=254"`
	Password        string `binding:"required,min=8,max=72"`
	PasswordConfirm string `binding:"required,eqfield=Password"`
}

type loginForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func render(c *gin.Context, status int, component templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		log.Error("Failed to render page", "error", err)
	}
}

func (h *Handler) renderError(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindUnexpected {
		h.log.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}
	render(c, apperr.KindOf(err).Status(), pages.Error(CurrentUser(c), apperr.KindOf(err).Status(), apperr.MessageOf(err)))
}

// SignupPage shows the signup form.
func (h *Handler) SignupPage(c *gin.Context) {
	if CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	render(c, http.StatusOK, pages.Signup(pages.AuthForm{}))
}

// Signup creates an account and logs it in.
func (h *Handler) Signup(c *gin.Context) {
	form := signupForm{
		Email:           config.NormalizeEmail(c.PostForm("email")),
		Password:        c.PostForm("password"),
		PasswordConfirm: c.PostForm("password_confirm"),
	}

	user, err := h.signup(c, &form)
	if err != nil {
		if k := apperr.KindOf(err); k == apperr.KindValidation || k == apperr.KindConflict {
			render(c, k.Status(), pages.Signup(pages.AuthForm{Error: apperr.MessageOf(err), Email: c.PostForm("email")}))
			return
		}
		h.renderError(c, err)
		return
	}

	h.login(c, user)
}

func (h *Handler) signup(c *gin.Context, form *signupForm) (*database.User, error) {
	if err := binding.Validator.ValidateStruct(form); err != nil {
		return nil, apperr.Validation(signupMessage(err))
	}

	hash, err := HashPassword(form.Password, h.cfg.BcryptCost)
	if err != nil {
		if IsPasswordTooLong(err) {
			return nil, apperr.Validation("Password is too long.")
		}
		return nil, apperr.Unexpected(err)
	}

	role := database.RoleUser
	if h.cfg.IsAdminEmail(form.Email) {
		role = database.RoleAdmin
	}

	user, err := h.db.CreateUser(c.Request.Context(), form.Email, hash, role)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, apperr.Conflict("An account with this email already exists.")
		}
		return nil, apperr.Unexpected(err)
	}

	h.log.Info("User signed up", "id", user.ID, "role", user.Role)
	return user, nil
}

func signupMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Please check your input."
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Email":
		return "Please enter a valid email address."
	case "Password":
		switch fe.Tag() {
		case "required":
			return "Password is required."
		case "min":
			return "Password must be at least 8 characters long."
		default:
			return "Password is too long."
		}
	case "PasswordConfirm":
		return "Passwords do not match."
	}
	return "Please check your input."
}

// LoginPage shows the login form.
func (h *Handler) LoginPage(c *gin.Context) {
	if CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	session := sessions.Default(c)
	flash := PopFlash(session)
	if err := session.Save(); err != nil {
		log.Error("Failed to save session", "error", err)
	}
	render(c, http.StatusOK, pages.Login(pages.AuthForm{}, flash))
}

// Login checks the credentials and starts a session.
func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		render(c, http.StatusBadRequest, pages.Login(pages.AuthForm{
			Error: "Email and password are required.",
			Email: c.PostForm("email"),
		}, ""))
		return
	}

	user, err := h.authenticate(c, form)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindAuth {
			render(c, apperr.KindAuth.Status(), pages.Login(pages.AuthForm{Error: apperr.MessageOf(err), Email: form.Email}, ""))
			return
		}
		h.renderError(c, err)
		return
	}

	h.login(c, user)
}

func (h *Handler) authenticate(c *gin.Context, form loginForm) (*database.User, error) {
	ctx := c.Request.Context()
	email := config.NormalizeEmail(form.Email)

	user, err := h.db.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			verifyNothing(form.Password)
			return nil, apperr.Auth()
		}
		return nil, apperr.Unexpected(err)
	}
	if !VerifyPassword(user.PasswordHash, form.Password) {
		return nil, apperr.Auth()
	}

	// The admin role follows the configured admin email.
	isAdmin := h.cfg.IsAdminEmail(user.Email)
	if user.IsAdmin() != isAdmin {
		role := database.RoleUser
		if isAdmin {
			role = database.RoleAdmin
		}
		if err := h.db.UpdateUserRole(ctx, user.ID, role); err != nil {
			return nil, apperr.Unexpected(err)
		}
		h.log.Info("User role updated", "id", user.ID, "role", role)
		user.Role = role
	}
	return user, nil
}

func (h *Handler) login(c *gin.Context, user *database.User) {
	session := sessions.Default(c)
	returnTo := popReturnTo(session)
	startSession(session, user)
	if err := session.Save(); err != nil {
		h.renderError(c, apperr.Unexpected(err))
		return
	}
	c.Redirect(http.StatusFound, returnTo)
}

// Logout ends the session.
func (h *Handler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		if err := c.AbortWithError(http.StatusInternalServerError, err); err != nil {
			log.Error("Failed to abort with error", "error", err)
		}
		return
	}
	c.Redirect(http.StatusFound, "/")
}
