package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/omnis-dev/omnis/internal/config"
	"github.com/omnis-dev/omnis/internal/feed"
	"github.com/omnis-dev/omnis/internal/flow"
	"github.com/omnis-dev/omnis/internal/logger"
	"github.com/omnis-dev/omnis/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CardSource builds the recommendation cards for one request.
type CardSource interface {
	Build(ctx context.Context) ([]model.Card, error)
}

// Server exposes the demo account, recommendations and flows over HTTP.
type Server struct {
	cards   CardSource
	flows   *flow.Manager
	cfg     config.ServerConfig
	log     *slog.Logger
	now     func() time.Time
	limiter *rate.Limiter
}

// New returns a server. A non-positive requests_per_second disables rate limiting.
func New(cards CardSource, flows *flow.Manager, cfg config.ServerConfig, log *slog.Logger) *Server {
	s := &Server{
		cards: cards,
		flows: flows,
		cfg:   cfg,
		log:   logger.OrDefault(log),
		now:   time.Now,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return s
}

// Routes returns the full handler with middleware applied.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))
	r.Use(cors(s.cfg.AllowedOrigins))
	if s.limiter != nil {
		r.Use(rateLimit(s.limiter))
	}

	r.Get("/healthz", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/profile", s.handleProfile)
		r.Get("/transactions", s.handleTransactions)
		r.Get("/notifications", s.handleNotifications)
		r.Get("/recommendations", s.handleRecommendations)

		r.Post("/flows", s.handleOpenFlow)
		r.Get("/flows/{id}", s.handleGetFlow)
		r.Post("/flows/{id}/apply", s.handleApply)
		r.Post("/flows/{id}/complete", s.handleComplete)
		r.Post("/flows/{id}/feedback", s.handleFeedback)
		r.Post("/flows/{id}/close", s.handleClose)
	})
	return r
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user := model.DemoUser(s.now())
	writeJSON(w, http.StatusOK, map[string]any{
		"user":           user,
		"recommendation": model.FlexibleSavings(user),
	})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"transactions": model.DemoHistory()})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"notifications": model.DemoNotifications()})
}

type recommendationsResponse struct {
	Cards []model.Card `json:"cards"`
	Error string       `json:"error,omitempty"`
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	cards, err := s.cards.Build(r.Context())
	if err == nil {
		writeJSON(w, http.StatusOK, recommendationsResponse{Cards: cards})
		return
	}

	s.log.Warn("building recommendations", "error", err)
	status := http.StatusOK
	switch {
	case errors.Is(err, feed.ErrTransport):
		status = http.StatusBadGateway
	case errors.Is(err, feed.ErrIdentityNotFound):
		status = http.StatusNotFound
	}
	writeJSON(w, status, recommendationsResponse{Cards: []model.Card{}, Error: feed.UserMessage(err)})
}

type openFlowRequest struct {
	CardID              string `json:"cardId"`
	Token               string `json:"token"`
	APIRecommendationID string `json:"apiRecommendationId"`
}

func (s *Server) handleOpenFlow(w http.ResponseWriter, r *http.Request) {
	var req openFlowRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CardID == "" {
		writeError(w, http.StatusBadRequest, "cardId is required")
		return
	}
	writeJSON(w, http.StatusCreated, s.flows.Open(r.Context(), req.CardID, req.Token, req.APIRecommendationID))
}

func (s *Server) handleGetFlow(w http.ResponseWriter, r *http.Request) {
	sess, err := s.flows.Get(chi.URLParam(r, "id"))
	s.writeFlow(w, sess, err)
}

type applyRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Amount.IsNegative() {
		writeError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}
	sess, err := s.flows.Apply(r.Context(), chi.URLParam(r, "id"), req.Amount)
	s.writeFlow(w, sess, err)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	sess, err := s.flows.Complete(chi.URLParam(r, "id"))
	s.writeFlow(w, sess, err)
}

type feedbackRequest struct {
	Rating  string `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, err := s.flows.SubmitFeedback(chi.URLParam(r, "id"), req.Rating, req.Comment)
	s.writeFlow(w, sess, err)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	sess, err := s.flows.Close(chi.URLParam(r, "id"))
	s.writeFlow(w, sess, err)
}

func (s *Server) writeFlow(w http.ResponseWriter, sess flow.Session, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, sess)
	case errors.Is(err, flow.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, flow.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, flow.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("flow update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody reads an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, "invalid payload")
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
