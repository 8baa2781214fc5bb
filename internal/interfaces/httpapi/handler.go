package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/live-cricket/internal/domain/fixture"
	"github.com/riskibarqy/live-cricket/internal/domain/matchstats"
	"github.com/riskibarqy/live-cricket/internal/platform/logging"
	"github.com/riskibarqy/live-cricket/internal/usecase"
)

type MatchService interface {
	GetMatches(ctx context.Context, matchID string) ([]fixture.Fixture, error)
}

type MatchStatsService interface {
	GetMatchStats(ctx context.Context, matchID string) ([]matchstats.MatchStats, error)
}

type StreamService interface {
	Subscribe(ctx context.Context, matchID string, emit usecase.EmitFunc) (usecase.StreamState, error)
	Registry() *usecase.SubscriberRegistry
}

type Handler struct {
	matches   MatchService
	stats     MatchStatsService
	stream    StreamService
	logger    *logging.Logger
	validator *validator.Validate
	streamCfg StreamConfig
}

func NewHandler(
	matches MatchService,
	stats MatchStatsService,
	stream StreamService,
	streamCfg StreamConfig,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matches:   matches,
		stats:     stats,
		stream:    stream,
		logger:    logger.Named("httpapi"),
		validator: validator.New(),
		streamCfg: streamCfg.normalize(),
	}
}

// matchIDRequest is the transport shape of a match id: "0" for every live
// fixture, otherwise a 16 character alphanumeric id.
type matchIDRequest struct {
	MatchID string `validate:"required,alphanum,eq=0|len=16"`
}

func (h *Handler) validateMatchID(ctx context.Context, raw string) (string, error) {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateMatchID")
	defer span.End()

	req := matchIDRequest{MatchID: strings.TrimSpace(raw)}
	if err := h.validator.StructCtx(ctx, req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "required" {
			return "", usecase.ErrMatchIDRequired
		}
		return "", fmt.Errorf("%w: %q", usecase.ErrInvalidMatchID, req.MatchID)
	}
	return req.MatchID, nil
}

type healthDTO struct {
	Status      string                     `json:"status"`
	Subscribers usecase.SubscriberSnapshot `json:"subscribers"`
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, healthDTO{
		Status:      "ok",
		Subscribers: h.stream.Registry().Snapshot(),
	})
}

func (h *Handler) ListLiveMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLiveMatches")
	defer span.End()

	h.writeMatches(ctx, w, usecase.AllMatchesID)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID, err := h.validateMatchID(ctx, r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	h.writeMatches(ctx, w, matchID)
}

func (h *Handler) writeMatches(ctx context.Context, w http.ResponseWriter, matchID string) {
	items, err := h.matches.GetMatches(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get matches failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

// GetStats serves /v1/stats?id=. A missing id means every live fixture.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStats")
	defer span.End()

	raw := r.URL.Query().Get("id")
	if !r.URL.Query().Has("id") {
		raw = usecase.AllMatchesID
	}
	h.writeStats(ctx, w, raw)
}

func (h *Handler) GetMatchStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchStats")
	defer span.End()

	h.writeStats(ctx, w, r.PathValue("matchID"))
}

func (h *Handler) writeStats(ctx context.Context, w http.ResponseWriter, raw string) {
	matchID, err := h.validateMatchID(ctx, raw)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	stats, err := h.stats.GetMatchStats(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match stats failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stats)
}

func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSubscriptions")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.stream.Registry().Snapshot())
}
