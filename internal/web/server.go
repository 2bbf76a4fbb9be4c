package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"benchdash/internal/benchmark"
	"benchdash/internal/metrics"
	"benchdash/internal/render"
	"benchdash/internal/source"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

//go:embed static/*
var staticFiles embed.FS

// RequestIDHeader carries the id of a request in both directions.
const RequestIDHeader = "X-Request-ID"

// Server serves chart series built from a source. Every API request fetches
// a fresh snapshot; nothing is cached between requests.
type Server struct {
	src     source.Source
	metrics *metrics.Metrics
	addr    string
	opts    []benchmark.IndexOption
	engine  *gin.Engine
	srv     *http.Server
	l       *slog.Logger
}

// NewServer creates a new web server
func NewServer(src source.Source, m *metrics.Metrics, addr string, opts ...benchmark.IndexOption) *Server {
	if m == nil {
		m = metrics.NewMetrics(nil)
	}
	s := &Server{
		src:     src,
		metrics: m,
		addr:    addr,
		opts:    opts,
		l:       slog.Default().With(slog.String("module", "web")),
	}
	s.engine = s.routes()
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.logRequests())

	contentStatic, _ := fs.Sub(staticFiles, "static")
	index, _ := fs.ReadFile(contentStatic, "index.html")
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	})
	r.StaticFS("/static", http.FS(contentStatic))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	r.GET("/charts", s.handleCharts)

	api := r.Group("/api")
	api.GET("/benchmarks", s.handleBenchmarks)
	api.GET("/series", s.handleSeries)
	api.GET("/series/:name", s.handleSeriesByName)
	api.GET("/compare/:name", s.handleCompare)

	return r
}

// Handler returns the full handler chain including request metrics.
func (s *Server) Handler() http.Handler {
	return s.metrics.RequestTrackingMiddleware(s.engine)
}

// Start listens until Stop is called. A graceful stop is not an error.
func (s *Server) Start() error {
	s.l.Info("starting dashboard", slog.String("addr", "http://"+s.addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) load(ctx context.Context) (*benchmark.Index, error) {
	start := time.Now()
	records, err := s.src.Fetch(ctx)
	s.metrics.ObserveFetch(s.src.Name(), err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return benchmark.NewIndex(records, s.opts...), nil
}

// fail maps an error onto the JSON error shape. Backend failures are a bad
// gateway, unknown benchmarks are not found.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var fe *source.FetchError
	switch {
	case errors.As(err, &fe):
		status = http.StatusBadGateway
	case errors.Is(err, benchmark.ErrNoMatch):
		status = http.StatusNotFound
	}
	s.l.Warn("request failed",
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", status),
		slog.String("request_id", c.GetString("request_id")),
		slog.Any("error", err),
	)
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleBenchmarks(c *gin.Context) {
	idx, err := s.load(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	names, commits := idx.Names(), idx.Commits()
	if branch := c.Query("branch"); branch != "" {
		names, commits = nil, nil
		seen := make(map[string]bool)
		for _, name := range idx.Names() {
			recs := idx.Select(name, branch)
			if len(recs) == 0 {
				continue
			}
			names = append(names, name)
			for _, r := range recs {
				if !seen[r.Commit] {
					seen[r.Commit] = true
					commits = append(commits, r.Commit)
				}
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"names":          nonNil(names),
		"commits":        nonNil(commits),
		"branches":       nonNil(idx.Branches()),
		"default_branch": idx.DefaultBranch(),
	})
}

func (s *Server) handleSeries(c *gin.Context) {
	idx, err := s.load(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	metric := c.Query("metric")
	out := make(map[string]benchmark.Series)
	for name, series := range idx.BuildMap(c.Query("branch")) {
		if metric != "" {
			series = series.Filter(metric)
		}
		s.metrics.SetSeriesPoints(name, len(series.Points))
		out[name] = series
	}

	c.JSON(http.StatusOK, out)
}

func (s *Server) handleSeriesByName(c *gin.Context) {
	idx, err := s.load(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	name := c.Param("name")
	if !idx.Has(name) {
		s.fail(c, fmt.Errorf("benchmark %q: %w", name, benchmark.ErrNoMatch))
		return
	}

	series := idx.BuildMap(c.Query("branch"))[name]
	if metric := c.Query("metric"); metric != "" {
		series = series.Filter(metric)
	}
	s.metrics.SetSeriesPoints(name, len(series.Points))
	c.JSON(http.StatusOK, series)
}

func (s *Server) handleCompare(c *gin.Context) {
	metric, head := c.Query("metric"), c.Query("head")
	if metric == "" || head == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "metric and head are required"})
		return
	}

	idx, err := s.load(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	cmp, err := idx.Compare(c.Param("name"), metric, head)
	if err != nil {
		if errors.Is(err, benchmark.ErrNoMatch) {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, cmp)
}

func (s *Server) handleCharts(c *gin.Context) {
	idx, err := s.load(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	branch := c.Query("branch")
	if branch == "" {
		branch = idx.DefaultBranch()
	}
	var selected []string
	if m := c.Query("metric"); m != "" {
		selected = []string{m}
	}

	var buf bytes.Buffer
	page := render.NewPage("benchdash", branch)
	if err := page.Render(&buf, idx.Build(branch), selected...); err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.l.Debug("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", c.GetString("request_id")),
		)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
