package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/carelink-go-api/internal/dto"
	"github.com/noah-isme/carelink-go-api/internal/service"
	"github.com/noah-isme/carelink-go-api/internal/utils"
)

// SeniorHandler wires senior profile routes.
type SeniorHandler struct {
	service service.SeniorService
	logger  zerolog.Logger
}

// NewSeniorHandler constructs the handler.
func NewSeniorHandler(service service.SeniorService, logger zerolog.Logger) *SeniorHandler {
	return &SeniorHandler{
		service: service,
		logger:  logger.With().Str("component", "senior_handler").Logger(),
	}
}

// Register attaches senior endpoints to the router group.
func (h *SeniorHandler) Register(router fiber.Router) {
	router.Post("", h.register)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Post("/:id/push-token", h.savePushToken)
}

func (h *SeniorHandler) register(c *fiber.Ctx) error {
	var payload dto.SeniorCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.Register(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "senior registered", created)
}

func (h *SeniorHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	senior, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "senior retrieved", senior)
}

func (h *SeniorHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SeniorUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	updated, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "senior updated", updated)
}

func (h *SeniorHandler) savePushToken(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.PushTokenRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.SavePushToken(c.Context(), id, payload); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "push token saved", fiber.Map{"id": id})
}

func (h *SeniorHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSeniorNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "senior not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
