package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Trivo121/side-projects/internal/catalog"
	"github.com/Trivo121/side-projects/internal/filtering"
	"github.com/Trivo121/side-projects/internal/logger"
	"github.com/Trivo121/side-projects/internal/matching"
	"github.com/Trivo121/side-projects/internal/metrics"
	"github.com/Trivo121/side-projects/internal/profile"
	"github.com/Trivo121/side-projects/internal/session"
)

type MatchHandler struct {
	catalog     *catalog.Catalog
	recommender *matching.Recommender
	sessions    session.Store
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewMatchHandler(
	c *catalog.Catalog,
	recommender *matching.Recommender,
	sessions session.Store,
	m *metrics.Metrics,
	log *zap.Logger,
) *MatchHandler {
	return &MatchHandler{
		catalog:     c,
		recommender: recommender,
		sessions:    sessions,
		metrics:     m,
		logger:      log,
	}
}

// RecommendationsResponse is the body of both recommendation endpoints.
// The counters describe every analyzed posting, Showing the filtered list.
type RecommendationsResponse struct {
	matching.Summary
	Showing         int                       `json:"showing"`
	Recommendations []matching.Recommendation `json:"recommendations"`
}

type recommendRequest struct {
	Profile profile.Profile   `json:"profile"`
	Filters *filtering.Config `json:"filters"`
}

func (h *MatchHandler) HandleInternships(c *fiber.Ctx) error {
	postings := h.catalog.Postings()
	return c.JSON(fiber.Map{
		"total":       len(postings),
		"internships": postings,
	})
}

func (h *MatchHandler) HandleCreateProfile(c *fiber.Ctx) error {
	var (
		p   profile.Profile
		err error
	)

	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		p, err = h.profileFromUpload(c)
	} else {
		p, err = parseProfile(c.Body())
	}
	if err != nil {
		return err
	}

	s, err := h.sessions.Create(c.UserContext(), p)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if h.metrics != nil {
		h.metrics.SessionsCreated.Inc()
	}

	h.log(c, s.ID).Info("profile session created",
		zap.String("source", string(p.Source)),
		zap.Int("skills", len(p.TechnicalSkills)),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id": s.ID,
		"profile":    s.Profile,
	})
}

func (h *MatchHandler) HandleGetProfile(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"session_id":  s.ID,
		"profile":     s.Profile,
		"has_results": s.HasRecommendations(),
		"created_at":  s.CreatedAt,
	})
}

func (h *MatchHandler) HandleDeleteProfile(c *fiber.Ctx) error {
	err := h.sessions.Delete(c.UserContext(), c.Params("id"))
	if errors.Is(err, session.ErrNotFound) {
		return withStatus(fiber.StatusNotFound, err)
	}
	if err != nil {
		return err
	}
	h.log(c, c.Params("id")).Info("profile session reset")
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *MatchHandler) HandleSessionRecommendations(c *fiber.Ctx) error {
	if h.recommender == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "recommender is not configured")
	}

	cfg, err := filtersFromQuery(c)
	if err != nil {
		return withStatus(fiber.StatusBadRequest, err)
	}

	s, err := h.session(c)
	if err != nil {
		return err
	}

	recs := s.Recommendations
	if !s.HasRecommendations() || c.QueryBool("refresh") {
		started := time.Now()
		recs = h.recommender.Recommend(c.UserContext(), s.Profile)
		if err := h.sessions.SaveRecommendations(c.UserContext(), s.ID, recs); err != nil {
			return fmt.Errorf("failed to cache recommendations: %w", err)
		}
		h.log(c, s.ID).Info("recommendations computed",
			zap.Int("count", len(recs)),
			zap.Duration("elapsed", time.Since(started)),
		)
	}

	return h.respond(c, recs, cfg)
}

func (h *MatchHandler) HandleRecommendations(c *fiber.Ctx) error {
	if h.recommender == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "recommender is not configured")
	}

	var req recommendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Profile.Normalize()
	if err := req.Profile.Validate(); err != nil {
		return withStatus(fiber.StatusBadRequest, err)
	}

	recs := h.recommender.Recommend(c.UserContext(), req.Profile)
	return h.respond(c, recs, req.Filters)
}

func (h *MatchHandler) respond(c *fiber.Ctx, recs []matching.Recommendation, cfg *filtering.Config) error {
	filtered, err := filtering.Run(c.UserContext(), cfg, filtering.Deps{Logger: h.logger}, filtering.Default(), recs)
	if err != nil {
		return withStatus(fiber.StatusBadRequest, err)
	}

	return c.JSON(RecommendationsResponse{
		Summary:         matching.Summarize(recs),
		Showing:         len(filtered),
		Recommendations: filtered,
	})
}

func (h *MatchHandler) profileFromUpload(c *fiber.Ctx) (profile.Profile, error) {
	header, err := c.FormFile("cv")
	if err != nil {
		return profile.Profile{}, fiber.NewError(fiber.StatusBadRequest, "cv file is required")
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		return profile.Profile{}, fiber.NewError(fiber.StatusBadRequest, "only PDF files are supported")
	}

	file, err := header.Open()
	if err != nil {
		return profile.Profile{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("failed to read cv: %v", err))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return profile.Profile{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("failed to read cv: %v", err))
	}

	p, err := profile.FromPDF(data, header.Filename, h.catalog.Skills(), time.Now())
	if err != nil {
		return profile.Profile{}, withStatus(fiber.StatusUnprocessableEntity, err)
	}
	return p, nil
}

func (h *MatchHandler) session(c *fiber.Ctx) (*session.Session, error) {
	s, err := h.sessions.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, session.ErrNotFound) {
		return nil, withStatus(fiber.StatusNotFound, err)
	}
	return s, err
}

func (h *MatchHandler) log(c *fiber.Ctx, sessionID string) *zap.Logger {
	return logger.WithFields(h.logger, logger.RequestFields(requestID(c), sessionID)...)
}

func parseProfile(body []byte) (profile.Profile, error) {
	var p profile.Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return p, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	p.Source = profile.SourceManual
	p.Normalize()
	if err := p.Validate(); err != nil {
		return p, withStatus(fiber.StatusBadRequest, err)
	}
	return p, nil
}

func filtersFromQuery(c *fiber.Ctx) (*filtering.Config, error) {
	cfg := &filtering.Config{
		Stipend:          c.Query("stipend"),
		Locations:        queryList(c, "location"),
		ExcludeCompanies: queryList(c, "exclude_company"),
	}

	if raw := strings.TrimSpace(c.Query("min_score")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("min_score must be a number, got %q", raw)
		}
		cfg.MinScore = v
	}
	return cfg, nil
}

// queryList accepts both repeated keys and comma separated values.
func queryList(c *fiber.Ctx, key string) []string {
	var out []string
	for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
		for _, part := range strings.Split(string(raw), ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
