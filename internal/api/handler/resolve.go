package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/iconidentify/xresolve/internal/domain"
	"github.com/iconidentify/xresolve/pkg/twitter"
)

// Resolver resolves tweet URLs to direct video URLs.
type Resolver interface {
	ResolveBestVideo(ctx context.Context, tweetURL string) (twitter.VideoVariant, error)
}

// ResolutionJournal records resolution attempts and serves recent history.
type ResolutionJournal interface {
	RecordOutcome(tweetID, source string, err error, bitrate int, duration time.Duration) domain.Resolution
	Recent(n int) []domain.Resolution
}

// ResolveHandler handles resolution HTTP requests.
type ResolveHandler struct {
	resolver Resolver
	journal  ResolutionJournal
	logger   *slog.Logger
}

// NewResolveHandler creates a new resolve handler.
func NewResolveHandler(resolver Resolver, journal ResolutionJournal, logger *slog.Logger) *ResolveHandler {
	return &ResolveHandler{
		resolver: resolver,
		journal:  journal,
		logger:   logger,
	}
}

// compatRequest is the JSON request body for the legacy resolve endpoint.
type compatRequest struct {
	TweetURL string `json:"tweetUrl"`
}

// compatResponse is the JSON response for the legacy resolve endpoint.
type compatResponse struct {
	VideoURL string `json:"videoUrl"`
}

// ResolveRequest is the JSON request body for v1 resolution.
type ResolveRequest struct {
	TweetURL string `json:"tweet_url"`
}

// ResolveResponse is the JSON response for a successful v1 resolution.
type ResolveResponse struct {
	ResolutionID string `json:"resolution_id"`
	TweetID      string `json:"tweet_id"`
	VideoURL     string `json:"video_url"`
	Bitrate      int    `json:"bitrate"`
	ContentType  string `json:"content_type"`
	DurationMS   int64  `json:"duration_ms"`
}

// ResolutionResponse represents one journaled resolution attempt.
type ResolutionResponse struct {
	ID         string    `json:"id"`
	TweetID    string    `json:"tweet_id"`
	Source     string    `json:"source"`
	Outcome    string    `json:"outcome"`
	Bitrate    int       `json:"bitrate,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecentResponse contains the recent resolution list.
type RecentResponse struct {
	Resolutions []ResolutionResponse `json:"resolutions"`
	Limit       int                  `json:"limit"`
}

// CompatResolve handles POST /api/download.
//
// This is the legacy contract: camelCase body, 400 with a fixed message
// when the URL is missing or unreadable, 500 for any backend-side failure.
func (h *ResolveHandler) CompatResolve(w http.ResponseWriter, r *http.Request) {
	var req compatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TweetURL == "" {
		h.writeError(w, http.StatusBadRequest, "Tweet URL is required")
		return
	}

	best, _, err := h.resolve(r.Context(), req.TweetURL, domain.SourceCompat)
	if err != nil {
		if errors.Is(err, twitter.ErrInvalidTweetURL) {
			h.writeError(w, http.StatusBadRequest, "invalid tweet URL")
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, compatResponse{VideoURL: best.URL})
}

// Resolve handles POST /api/v1/resolve.
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TweetURL == "" {
		h.writeError(w, http.StatusBadRequest, "missing tweet_url")
		return
	}

	best, rec, err := h.resolve(r.Context(), req.TweetURL, domain.SourceAPI)
	if err != nil {
		if errors.Is(err, twitter.ErrInvalidTweetURL) {
			h.writeError(w, http.StatusBadRequest, "invalid tweet URL")
			return
		}
		if errors.Is(err, twitter.ErrNoVideoFound) {
			h.writeError(w, http.StatusNotFound, "no video found in tweet")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "failed to resolve video")
		return
	}

	h.writeJSON(w, http.StatusOK, ResolveResponse{
		ResolutionID: rec.ID.String(),
		TweetID:      rec.TweetID,
		VideoURL:     best.URL,
		Bitrate:      best.Bitrate,
		ContentType:  best.ContentType,
		DurationMS:   rec.Duration.Milliseconds(),
	})
}

// Recent handles GET /api/v1/resolutions.
func (h *ResolveHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	recent := h.journal.Recent(limit)
	response := RecentResponse{
		Resolutions: make([]ResolutionResponse, 0, len(recent)),
		Limit:       limit,
	}
	for _, res := range recent {
		response.Resolutions = append(response.Resolutions, ResolutionResponse{
			ID:         res.ID.String(),
			TweetID:    res.TweetID,
			Source:     res.Source,
			Outcome:    string(res.Outcome),
			Bitrate:    res.Bitrate,
			DurationMS: res.Duration.Milliseconds(),
			CreatedAt:  res.CreatedAt,
		})
	}

	h.writeJSON(w, http.StatusOK, response)
}

// resolve runs one resolution and journals its outcome.
func (h *ResolveHandler) resolve(ctx context.Context, tweetURL, source string) (twitter.VideoVariant, domain.Resolution, error) {
	start := time.Now()
	best, err := h.resolver.ResolveBestVideo(ctx, tweetURL)

	tweetID, _ := twitter.ExtractTweetID(tweetURL)
	rec := h.journal.RecordOutcome(tweetID, source, err, best.Bitrate, time.Since(start))

	if err != nil {
		h.logger.Error("resolve failed", "tweet_url", tweetURL, "source", source, "error", err)
		return twitter.VideoVariant{}, rec, err
	}
	return best, rec, nil
}

func (h *ResolveHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *ResolveHandler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
