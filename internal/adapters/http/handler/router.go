// Package handler は音声アシスタント向けの HTTP エンドポイントを提供します。
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/AshithaPGowda/code-challenge/internal/core/employee"
	"github.com/AshithaPGowda/code-challenge/internal/core/i9"
	"github.com/AshithaPGowda/code-challenge/internal/core/voicetool"
	"github.com/AshithaPGowda/code-challenge/internal/core/zipcode"
)

// ToolCaller は音声ツールを実行します。
type ToolCaller interface {
	Call(ctx context.Context, name string, args json.RawMessage) (*voicetool.Result, error)
}

// Employees は電話番号から従業員を特定します。
type Employees interface {
	FindOrCreate(ctx context.Context, in employee.FindOrCreateInput) (*employee.FindOrCreateResult, error)
}

// Forms は音声入力側のフォーム操作です。
type Forms interface {
	SaveField(ctx context.Context, in i9.SaveFieldInput) (*i9.Form, error)
	GetProgress(ctx context.Context, in i9.GetProgressInput) (*i9.Progress, error)
}

// ZipLookup は郵便番号から地域を引きます。
type ZipLookup interface {
	Lookup(ctx context.Context, zip string) (*zipcode.Place, error)
}

// Pinger は依存先の疎通確認です。
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler は HTTP ハンドラーの依存をまとめます。
type Handler struct {
	tools     ToolCaller
	employees Employees
	forms     Forms
	zips      ZipLookup
	logger    *zap.Logger
}

// NewHandler は Handler を生成します。
func NewHandler(tools ToolCaller, employees Employees, forms Forms, zips ZipLookup, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		tools:     tools,
		employees: employees,
		forms:     forms,
		zips:      zips,
		logger:    logger,
	}
}

// RouterOptions はルーティングの任意設定です。
type RouterOptions struct {
	AllowedOrigins []string
	ArtifactDir    string
	Metrics        http.Handler
	Health         Pinger
}

// NewRouter はすべてのルートを登録した http.Handler を返します。
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", health(opts.Health))
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	r.Get("/mcp", h.MCPInfo)
	r.Post("/mcp", h.MCP)

	r.Route("/api", func(api chi.Router) {
		api.Route("/tools", func(t chi.Router) {
			t.Post("/save-i9-field", h.SaveI9Field)
			t.Get("/get-employee-status", h.GetEmployeeStatus)
			t.Get("/lookup-city-state", h.LookupCityState)
		})
		api.Get("/webhook/caller-context", h.CallerContext)
	})

	if opts.ArtifactDir != "" {
		r.Get("/artifacts/{name}", artifacts(opts.ArtifactDir))
	}
	return r
}

func health(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// artifacts は生成済み PDF をファイル名で返します。ディレクトリの一覧は公開しません。
func artifacts(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if name == "" || name != path.Base(name) || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".pdf") {
			http.NotFound(w, r)
			return
		}
		full := dir + string(os.PathSeparator) + name
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		http.ServeFile(w, r, full)
	}
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
