package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/carelink-go-api/internal/dto"
	"github.com/noah-isme/carelink-go-api/internal/models"
	"github.com/noah-isme/carelink-go-api/internal/service"
	"github.com/noah-isme/carelink-go-api/internal/utils"
)

// RequestHandler wires the service request lifecycle routes.
type RequestHandler struct {
	service service.RequestService
	logger  zerolog.Logger
}

// NewRequestHandler constructs the handler.
func NewRequestHandler(service service.RequestService, logger zerolog.Logger) *RequestHandler {
	return &RequestHandler{
		service: service,
		logger:  logger.With().Str("component", "request_handler").Logger(),
	}
}

// Register attaches request endpoints to the router group.
func (h *RequestHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/open", h.listOpen)
	router.Get("/senior/:seniorId", h.listBySenior)
	router.Get("/student/:studentId", h.listByStudent)
	router.Patch("/:id/accept", h.accept)
	router.Patch("/:id/status", h.updateStatus)
}

func (h *RequestHandler) create(c *fiber.Ctx) error {
	var payload dto.RequestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "service request created", created)
}

func (h *RequestHandler) listOpen(c *fiber.Ctx) error {
	requests, err := h.service.ListOpen(c.Context(), c.Query("type"), c.Query("priority"), c.Query("location"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "open requests retrieved", requests)
}

func (h *RequestHandler) listBySenior(c *fiber.Ctx) error {
	seniorID, err := parseUintParam(c, "seniorId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	requests, err := h.service.ListBySenior(c.Context(), seniorID, c.Query("status"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "senior requests retrieved", requests)
}

func (h *RequestHandler) listByStudent(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	requests, err := h.service.ListByStudent(c.Context(), studentID, c.Query("status"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "student requests retrieved", requests)
}

func (h *RequestHandler) accept(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RequestAcceptRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	accepted, err := h.service.Accept(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "request accepted", accepted)
}

func (h *RequestHandler) updateStatus(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RequestStatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	switch models.RequestStatus(payload.Status) {
	case models.StatusInProgress:
		started, err := h.service.Start(c.Context(), id)
		if err != nil {
			return h.handleError(c, err)
		}
		return utils.SendSuccess(c, "request started", started)
	case models.StatusCompleted:
		completed, err := h.service.Complete(c.Context(), id)
		if err != nil {
			return h.handleError(c, err)
		}
		return utils.SendSuccess(c, "request completed", completed)
	case "cancelled":
		if err := h.service.Cancel(c.Context(), id); err != nil {
			return h.handleError(c, err)
		}
		return utils.SendSuccess(c, "request cancelled", fiber.Map{"id": id})
	default:
		return utils.SendError(c, fiber.StatusBadRequest, "status must be one of in_progress, completed, cancelled")
	}
}

func (h *RequestHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "request not found")
	case errors.Is(err, service.ErrSeniorNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "senior not found")
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrRequestNotOpen):
		return utils.SendError(c, fiber.StatusConflict, "request is no longer available")
	case errors.Is(err, service.ErrInvalidTransition):
		return utils.SendError(c, fiber.StatusConflict, "request is not in a state that allows this transition")
	case errors.Is(err, service.ErrRequestCompleted):
		return utils.SendError(c, fiber.StatusConflict, "request is already completed")
	case errors.Is(err, service.ErrInvalidFilter):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid filter value")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *RequestHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
