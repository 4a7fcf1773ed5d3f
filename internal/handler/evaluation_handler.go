package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradecraft/gradecraft-api/internal/dto"
	"github.com/gradecraft/gradecraft-api/internal/service"
	"github.com/gradecraft/gradecraft-api/internal/utils"
	"github.com/gradecraft/gradecraft-api/pkg/inference"
)

// CacheController exposes the inference request cache operations surfaced
// through the API.
type CacheController interface {
	ClearCache()
	CacheStats() (size, capacity int)
}

// EvaluationHandler manages the evaluation and inference tooling endpoints.
type EvaluationHandler struct {
	service   service.EvaluationService
	cache     CacheController
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewEvaluationHandler builds an evaluation handler instance.
func NewEvaluationHandler(service service.EvaluationService, cache CacheController, validator *validator.Validate, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service:   service,
		cache:     cache,
		validator: validator,
		logger:    logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("/evaluations", h.evaluate)
	router.Get("/connection", h.connection)
	router.Post("/tools/summaries", h.summarize)
	router.Post("/tools/answers", h.answerQuestions)
	router.Post("/tools/classifications", h.classify)
	router.Get("/inference/cache", h.cacheStats)
	router.Delete("/inference/cache", h.clearCache)
}

func (h *EvaluationHandler) evaluate(c *fiber.Ctx) error {
	var payload dto.EvaluateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	evaluation, err := h.service.Evaluate(c.Context(), payload.Assignment, payload.Submission)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission evaluated", evaluation)
}

func (h *EvaluationHandler) connection(c *fiber.Ctx) error {
	status := h.service.TestConnection(c.Context())
	return utils.SendSuccess(c, "connection tested", status)
}

func (h *EvaluationHandler) summarize(c *fiber.Ctx) error {
	var payload dto.SummarizeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	summary := h.service.Summarize(c.Context(), payload.Text, payload.MaxLength)
	return utils.SendSuccess(c, "text summarized", dto.SummaryResponse{Summary: summary})
}

func (h *EvaluationHandler) answerQuestions(c *fiber.Ctx) error {
	var payload dto.AnswerQuestionsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	answers := h.service.AnswerQuestions(c.Context(), payload.Questions, payload.Text)
	return utils.SendSuccess(c, "questions answered", answers)
}

func (h *EvaluationHandler) classify(c *fiber.Ctx) error {
	var payload dto.ClassifyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	categories := h.service.Classify(c.Context(), payload.Text, payload.Categories)
	return utils.SendSuccess(c, "content classified", categories)
}

func (h *EvaluationHandler) cacheStats(c *fiber.Ctx) error {
	size, capacity := h.cache.CacheStats()
	return utils.SendSuccess(c, "cache stats retrieved", dto.CacheStatsResponse{Size: size, Capacity: capacity})
}

func (h *EvaluationHandler) clearCache(c *fiber.Ctx) error {
	h.cache.ClearCache()
	return utils.SendSuccess(c, "cache cleared", nil)
}

// handleError maps inference failures onto HTTP statuses; the propagated
// error message is surfaced verbatim.
func (h *EvaluationHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	var statusErr *inference.StatusError
	switch {
	case errors.Is(err, inference.ErrNotConfigured):
		return utils.SendError(c, fiber.StatusPreconditionFailed, err.Error())
	case errors.Is(err, inference.ErrInvalidAPIKey):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, inference.ErrRateLimited):
		return utils.SendError(c, fiber.StatusTooManyRequests, err.Error())
	case errors.Is(err, inference.ErrModelLoading):
		return utils.SendError(c, fiber.StatusServiceUnavailable, err.Error())
	case errors.As(err, &statusErr):
		return utils.SendError(c, fiber.StatusBadGateway, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}
}
