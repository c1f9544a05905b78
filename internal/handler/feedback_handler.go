package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/carelink-go-api/internal/dto"
	"github.com/noah-isme/carelink-go-api/internal/service"
	"github.com/noah-isme/carelink-go-api/internal/utils"
)

// FeedbackHandler wires the feedback routes under the requests group.
type FeedbackHandler struct {
	service service.FeedbackService
	logger  zerolog.Logger
}

// NewFeedbackHandler constructs the handler.
func NewFeedbackHandler(service service.FeedbackService, logger zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		logger:  logger.With().Str("component", "feedback_handler").Logger(),
	}
}

// Register attaches feedback endpoints to the requests group. The literal
// /feedback routes go in before the :id route so they are matched first.
func (h *FeedbackHandler) Register(router fiber.Router) {
	router.Post("/feedback/general", h.submitGeneral)
	router.Get("/feedback/student/:studentId", h.listForStudent)
	router.Post("/:id/feedback", h.submit)
}

func (h *FeedbackHandler) submit(c *fiber.Ctx) error {
	requestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.FeedbackSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.Submit(c.Context(), requestID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "feedback submitted", created)
}

func (h *FeedbackHandler) submitGeneral(c *fiber.Ctx) error {
	var payload dto.GeneralFeedbackRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.SubmitGeneral(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "feedback submitted", created)
}

func (h *FeedbackHandler) listForStudent(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.ListForStudent(c.Context(), studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "student feedback retrieved", response)
}

func (h *FeedbackHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "request not found")
	case errors.Is(err, service.ErrRequestNotCompleted):
		return utils.SendError(c, fiber.StatusConflict, "feedback requires a completed request")
	case errors.Is(err, service.ErrRequestUnassigned):
		return utils.SendError(c, fiber.StatusConflict, "request has no assigned student")
	case errors.Is(err, service.ErrFeedbackExists):
		return utils.SendError(c, fiber.StatusConflict, "feedback already submitted for this request")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *FeedbackHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
