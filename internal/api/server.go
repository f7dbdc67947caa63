// Package api serves a store.Store over HTTP using the PostgREST dialect
// that reststore speaks, so several clients can share one backend.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/twiced-technology-gmbh/taskdeck/internal/store"
)

// BasePath prefixes every table route.
const BasePath = "/rest/v1"

const shutdownTimeout = 5 * time.Second

// Server is the taskdeck HTTP API.
type Server struct {
	store  store.Store
	router *gin.Engine
	log    logrus.FieldLogger
	apiKey string

	// edgeMu serializes the cycle check with the insert.
	edgeMu sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithAPIKey requires every table request to carry key, either in the
// apikey header or as a bearer token.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// WithLogger sets the request logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Server) { s.log = l }
}

// NewServer creates a new API server over st.
func NewServer(st store.Store, opts ...Option) *Server {
	s := &Server{
		store: st,
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.logRequests)
	s.router = router

	router.GET("/health", s.handleHealth)

	api := router.Group(BasePath, s.authenticate)
	{
		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleInsertTask)
		api.PATCH("/tasks", s.handleUpdateTask)
		api.DELETE("/tasks", s.handleDeleteTask)

		api.GET("/task_dependencies", s.handleListEdges)
		api.POST("/task_dependencies", s.handleInsertEdge)
		api.DELETE("/task_dependencies", s.handleDeleteEdge)
	}

	return s
}

// Handler returns the router for embedding or httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second, //nolint:mnd // header timeout
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.WithFields(logrus.Fields{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start),
	}).Debug("request")
}

func (s *Server) authenticate(c *gin.Context) {
	if s.apiKey == "" {
		return
	}
	if c.GetHeader("apikey") == s.apiKey || c.GetHeader("Authorization") == "Bearer "+s.apiKey {
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "invalid API key", Code: codeUnauthorized})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
