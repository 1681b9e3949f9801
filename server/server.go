package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/polarbaker/LinkedOut-AiPostBot/config"
	"github.com/polarbaker/LinkedOut-AiPostBot/generator"
	"github.com/polarbaker/LinkedOut-AiPostBot/provider"
	"github.com/polarbaker/LinkedOut-AiPostBot/render"
	"github.com/polarbaker/LinkedOut-AiPostBot/workflow"
)

const (
	apiVersion  = "v1"
	apiBasePath = "/api/" + apiVersion

	statusSuccess = "success"
	statusError   = "error"

	paramID = "id"

	requestTimeout = 60 * time.Second
	maxBodyBytes   = 1 << 20
)

// LLMStatus is what the server needs to know about the resolved gateway.
type LLMStatus interface {
	Kind() provider.Kind
	IsMock() bool
}

type Server struct {
	gen     *generator.Generator
	queue   *workflow.Queue
	llm     LLMStatus
	cfg     *config.Config
	limiter *clientLimiter
	log     *slog.Logger
}

func New(gen *generator.Generator, queue *workflow.Queue, llm LLMStatus, cfg *config.Config) (*Server, error) {
	if gen == nil {
		return nil, errors.New("generator required")
	}
	if queue == nil {
		return nil, errors.New("approval queue required")
	}
	if llm == nil {
		return nil, errors.New("llm status required")
	}
	if cfg == nil {
		return nil, errors.New("config required")
	}
	return &Server{
		gen:     gen,
		queue:   queue,
		llm:     llm,
		cfg:     cfg,
		limiter: newClientLimiter(cfg.RateLimit),
		log:     slog.Default(),
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CorsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id", clientIDHeader},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route(apiBasePath, func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Get("/post-types", s.handlePostTypes)
		r.Post("/generate-content", s.handleGenerate)
		r.Get("/approval-queue", s.handleApprovalQueue)
		r.Post("/approve-post", s.handleApprove)
		r.Post("/reject-post", s.handleReject)
		r.Post("/schedule-post", s.handleSchedule)
		r.Get("/posts/{"+paramID+"}", s.handlePost)
		r.Get("/posts/{"+paramID+"}/preview", s.handlePreview)
		r.Get("/analytics", s.handleAnalytics)
	})

	return r
}

// --- Handlers ---

type generateReq struct {
	VoiceProfile  generator.VoiceProfile  `json:"voiceProfile"`
	SourceContent generator.SourceArticle `json:"sourceContent"`
	PostType      generator.PostType      `json:"postType"`
}

type decisionReq struct {
	PostID   string   `json:"postId"`
	Content  *string  `json:"content,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
}

type scheduleReq struct {
	PostID string    `json:"postId"`
	At     time.Time `json:"scheduledFor"`
}

type postTypeResp struct {
	Name      generator.PostType `json:"name"`
	Directive string             `json:"directive"`
}

type healthResp struct {
	Status     string          `json:"status"`
	Timestamp  time.Time       `json:"timestamp"`
	Version    string          `json:"version"`
	Components map[string]bool `json:"components"`
	LLMConfig  llmConfigResp   `json:"llm_config"`
}

type llmConfigResp struct {
	Provider         provider.Kind `json:"provider"`
	Requested        string        `json:"requested,omitempty"`
	Mock             bool          `json:"mock"`
	GeminiConfigured bool          `json:"gemini_configured"`
	OpenAIConfigured bool          `json:"openai_configured"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResp{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   apiVersion,
		Components: map[string]bool{
			"content_generator": true,
			"workflow":          true,
		},
		LLMConfig: llmConfigResp{
			Provider:         s.llm.Kind(),
			Requested:        s.cfg.LLM.Provider,
			Mock:             s.llm.IsMock(),
			GeminiConfigured: s.cfg.LLM.GeminiKey != "",
			OpenAIConfigured: s.cfg.LLM.OpenAIKey != "",
		},
	})
}

func (s *Server) handlePostTypes(w http.ResponseWriter, r *http.Request) {
	types := generator.PostTypes()
	out := make([]postTypeResp, 0, len(types))
	for _, pt := range types {
		out = append(out, postTypeResp{Name: pt, Directive: pt.Directive()})
	}
	respond(w, http.StatusOK, out, "")
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateReq
	if !decode(w, r, &req) {
		return
	}
	if req.PostType == "" {
		req.PostType = generator.ProfessionalInsight
	}
	post := s.gen.Generate(r.Context(), req.VoiceProfile, req.SourceContent, req.PostType)
	// The client went away or the timeout middleware already answered; a post
	// nobody received stays out of the queue.
	if err := r.Context().Err(); err != nil {
		s.log.Warn("[server] Request ended before post was ready", "post_id", post.ID, "error", err)
		return
	}
	s.queue.Add(post)
	respond(w, http.StatusOK, post, "")
}

func (s *Server) handleApprovalQueue(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, s.queue.Pending(), "")
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req decisionReq
	if !decode(w, r, &req) || !requirePostID(w, req.PostID) {
		return
	}
	item, err := s.queue.Approve(req.PostID, workflow.Edits{Content: req.Content, Hashtags: req.Hashtags})
	if err != nil {
		s.respondQueueError(w, "approve", req.PostID, err)
		return
	}
	respond(w, http.StatusOK, item, "Post approved successfully")
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	var req decisionReq
	if !decode(w, r, &req) || !requirePostID(w, req.PostID) {
		return
	}
	item, err := s.queue.Reject(req.PostID)
	if err != nil {
		s.respondQueueError(w, "reject", req.PostID, err)
		return
	}
	respond(w, http.StatusOK, item, "Post rejected")
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleReq
	if !decode(w, r, &req) || !requirePostID(w, req.PostID) {
		return
	}
	if req.At.IsZero() {
		respond(w, http.StatusBadRequest, nil, "scheduledFor is required")
		return
	}
	item, err := s.queue.Schedule(req.PostID, req.At)
	if err != nil {
		s.respondQueueError(w, "schedule", req.PostID, err)
		return
	}
	respond(w, http.StatusOK, item, "Post scheduled")
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, paramID)
	item, err := s.queue.Get(id)
	if err != nil {
		s.respondQueueError(w, "get", id, err)
		return
	}
	respond(w, http.StatusOK, item, "")
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, paramID)
	item, err := s.queue.Get(id)
	if err != nil {
		s.respondQueueError(w, "preview", id, err)
		return
	}
	page, err := render.PostHTML(item.GeneratedPost)
	if err != nil {
		s.log.Error("[server] Failed to render preview", "post_id", id, "error", err)
		respond(w, http.StatusInternalServerError, nil, "Error rendering preview")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, s.queue.Analytics(), "")
}

// --- Helpers ---

type envelope struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func respond(w http.ResponseWriter, code int, data any, message string) {
	status := statusSuccess
	if code >= http.StatusBadRequest {
		status = statusError
	}
	writeJSON(w, code, envelope{Status: status, Version: apiVersion, Data: data, Message: message})
}

func (s *Server) respondQueueError(w http.ResponseWriter, op, id string, err error) {
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		respond(w, http.StatusNotFound, nil, "Post not found")
	case errors.Is(err, workflow.ErrNotPending), errors.Is(err, workflow.ErrNotApproved):
		respond(w, http.StatusConflict, nil, err.Error())
	case errors.Is(err, workflow.ErrPastTime):
		respond(w, http.StatusBadRequest, nil, err.Error())
	default:
		s.log.Error("[server] Queue operation failed", "op", op, "post_id", id, "error", err)
		respond(w, http.StatusInternalServerError, nil, "Internal Server Error")
	}
}

// decode reads at most maxBodyBytes of JSON into v.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			respond(w, http.StatusRequestEntityTooLarge, nil, "Request body too large")
		case errors.Is(err, io.EOF):
			respond(w, http.StatusBadRequest, nil, "No data provided")
		default:
			respond(w, http.StatusBadRequest, nil, "Invalid JSON body")
		}
		return false
	}
	return true
}

func requirePostID(w http.ResponseWriter, id string) bool {
	if strings.TrimSpace(id) == "" {
		respond(w, http.StatusBadRequest, nil, "Post ID is required")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// logMiddleware logs one line per request once the handler has finished.
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if path == "" {
			path = "/"
		}
		s.log.Info("[server] Request",
			"method", r.Method,
			"path", path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
