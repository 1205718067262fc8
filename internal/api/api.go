package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/lesezeit/lesezeit/internal/api/auth"
	"github.com/lesezeit/lesezeit/internal/api/handler"
	"github.com/lesezeit/lesezeit/internal/authoring"
	"github.com/lesezeit/lesezeit/internal/config"
	"github.com/lesezeit/lesezeit/internal/database"
	"github.com/lesezeit/lesezeit/internal/static"
	"github.com/lesezeit/lesezeit/internal/upload"
)

const sessionName = "lesezeit_session"

type Server struct {
	cfg        *config.Config
	ginEngine  *gin.Engine
	db         database.DB
	uploads    *upload.Store
	httpServer *http.Server
}

func New(cfg *config.Config, db database.DB, debug bool) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	uploads, err := upload.New(cfg.Uploads.Dir, cfg.Uploads.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload store: %w", err)
	}

	ginEngine := gin.New()
	ginEngine.Use(gin.Recovery())
	if debug {
		ginEngine.Use(gin.Logger())
	}
	ginEngine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/uploads"})))

	s := &Server{
		cfg:       cfg,
		ginEngine: ginEngine,
		db:        db,
		uploads:   uploads,
	}

	s.setupSession()
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Listen,
		Handler:           ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) setupSession() {
	store := cookie.NewStore([]byte(s.cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions(sessionName, store), auth.LoadUser(s.cfg))
}

func (s *Server) setupRoutes() error {
	staticFS, err := static.FS()
	if err != nil {
		return err
	}

	h := handler.New(s.db, authoring.NewService(s.db, s.uploads), s.uploads)
	a := auth.NewHandler(s.db, s.cfg)

	s.ginEngine.StaticFS("/static", http.FS(staticFS))
	s.ginEngine.NoRoute(h.NotFound)

	// Public pages
	s.ginEngine.GET("/", h.Home)
	s.ginEngine.GET("/signup", a.SignupPage)
	s.ginEngine.POST("/signup", a.Signup)
	s.ginEngine.GET("/login", a.LoginPage)
	s.ginEngine.POST("/login", a.Login)
	s.ginEngine.POST("/logout", a.Logout)
	s.ginEngine.GET("/learning/vocabulary", h.Vocabulary)
	s.ginEngine.GET("/learning/grammar", h.Grammar)

	protected := s.ginEngine.Group("/")
	protected.Use(auth.RequireAuth())
	protected.GET("/story/:id", h.StoryDetail)
	protected.Static("/uploads", s.uploads.Dir())

	admin := s.ginEngine.Group("/")
	admin.Use(auth.RequireAdmin())
	admin.GET("/stories", h.Stories)
	admin.GET("/stories/new", h.NewStory)
	admin.POST("/stories", h.CreateStory)
	admin.GET("/questions", h.NewQuestion)
	admin.GET("/questions/new", h.NewQuestion)
	admin.POST("/questions", h.CreateQuestion)
	admin.GET("/learning/vocabulary/new", h.NewVocabulary)
	admin.POST("/learning/vocabulary", h.CreateVocabulary)
	admin.GET("/learning/grammar/new", h.NewGrammar)
	admin.POST("/learning/grammar", h.CreateGrammar)

	return nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

// Run serves HTTP until Shutdown is called.
func (s *Server) Run() error {
	log.Info("Starting HTTP server", "listen", s.cfg.Listen)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for active requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
