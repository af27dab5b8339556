// Package server exposes synonym suggestions over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"synrec/internal/abbrev"
	"synrec/internal/backend"
	ilogger "synrec/internal/logger"
	"synrec/internal/suggest"
	"synrec/internal/textctx"
)

const (
	requestIDHeader = "X-Request-ID"
	shutdownTimeout = 5 * time.Second

	defaultContextLen = 1
)

// Suggester is the part of *suggest.Suggester the server needs.
type Suggester interface {
	Suggest(ctx context.Context, req suggest.Request) (backend.Result, error)
	Services() map[backend.Family][]string
	ResolveService(service string) string
}

// Server serialises every suggestion through one mutex because the
// suggester's managers are not safe for concurrent switches.
type Server struct {
	mu        sync.Mutex
	suggester Suggester
	table     *abbrev.Table
	engine    *gin.Engine
}

// New builds the router. table may be nil, in which case abbreviation
// expansion requests are rejected.
func New(s Suggester, table *abbrev.Table) *Server {
	srv := &Server{suggester: s, table: table}
	srv.engine = srv.routes()
	return srv
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/services", s.servicesHandler())
		v1.POST("/suggest", s.suggestHandler())
	}
	return r
}

type suggestRequest struct {
	Word       string         `json:"word" binding:"required"`
	Service    string         `json:"service"`
	Model      string         `json:"model"`
	Params     map[string]any `json:"params"`
	Text       string         `json:"text"`
	Sentence   *bool          `json:"sentence"`
	ContextLen *int           `json:"context_len"`
	Abbrev     bool           `json:"abbrev"`
	Top        int            `json:"top"`
}

type suggestResponse struct {
	Word     string   `json:"word"`
	Service  string   `json:"service"`
	Synonyms []string `json:"synonyms"`
	Context  string   `json:"context,omitempty"`
}

func (s *Server) servicesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		services := s.suggester.Services()
		c.JSON(http.StatusOK, gin.H{
			"api":   services[backend.FamilyAPI],
			"model": services[backend.FamilyModel],
		})
	}
}

func (s *Server) suggestHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req suggestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}
		if req.ContextLen != nil && *req.ContextLen < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "context_len must not be negative"})
			return
		}

		text := req.Text
		var table *abbrev.Table
		if req.Abbrev {
			if s.table == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "abbreviation table is not loaded"})
				return
			}
			table = s.table
			text = table.Replace(text)
		}

		params := backend.Params(req.Params)
		if params == nil {
			params = backend.Params{}
		}
		var window string
		if text != "" {
			sentence := req.Sentence == nil || *req.Sentence
			contextLen := defaultContextLen
			if req.ContextLen != nil {
				contextLen = *req.ContextLen
			}
			if w, ok := textctx.WindowAny(text, table.Variants(req.Word), sentence, contextLen); ok {
				window = w
				params[backend.ParamContext] = w
			}
		}

		s.mu.Lock()
		res, err := s.suggester.Suggest(c.Request.Context(), suggest.Request{
			Word:    req.Word,
			Service: req.Service,
			Model:   req.Model,
			Params:  params,
		})
		s.mu.Unlock()
		if err != nil {
			ilogger.LogWarn(fmt.Sprintf("request %s: %v", c.GetString(requestIDKey), err))
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, suggestResponse{
			Word:     req.Word,
			Service:  s.suggester.ResolveService(req.Service),
			Synonyms: suggest.Clean(req.Word, res.Synonyms, req.Top),
			Context:  window,
		})
	}
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case backend.IsUnsupported(err), errors.Is(err, backend.ErrEmptyWord):
		return http.StatusBadRequest
	case backend.IsConstruction(err):
		return http.StatusServiceUnavailable
	case backend.IsInvocation(err):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		ilogger.LogInfo(fmt.Sprintf("listening on %s", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serve %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

const requestIDKey = "request_id"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ilogger.LogDebug(fmt.Sprintf("%s %s %d %s id=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), c.GetString(requestIDKey)))
	}
}
