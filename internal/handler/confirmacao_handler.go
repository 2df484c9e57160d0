package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sge-estagio-api/internal/dto"
	"github.com/noah-isme/sge-estagio-api/internal/service"
	"github.com/noah-isme/sge-estagio-api/internal/utils"
)

// ConfirmacaoHandler exposes the public acknowledgment endpoint. It is not
// behind authentication: possession of the token is the credential.
type ConfirmacaoHandler struct {
	service service.ConfirmacaoService
	logger  zerolog.Logger
}

// NewConfirmacaoHandler constructs the handler.
func NewConfirmacaoHandler(service service.ConfirmacaoService, logger zerolog.Logger) *ConfirmacaoHandler {
	return &ConfirmacaoHandler{
		service: service,
		logger:  logger.With().Str("component", "confirmacao_handler").Logger(),
	}
}

// Register attaches the confirmation endpoint to the public router group.
func (h *ConfirmacaoHandler) Register(public fiber.Router) {
	public.Post("/estagios/confirmar", h.confirm)
}

func (h *ConfirmacaoHandler) confirm(c *fiber.Ctx) error {
	var payload dto.ConfirmacaoRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "payload inválido")
	}

	// Transport-level audit data fills any gaps the client left.
	if payload.IP == "" {
		payload.IP = c.IP()
	}
	if payload.UserAgent == "" {
		payload.UserAgent = c.Get("User-Agent")
	}

	estagio, err := h.service.Confirm(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "convocação confirmada", estagio)
}

func (h *ConfirmacaoHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors

	switch {
	case errors.Is(err, service.ErrConfirmacaoInvalida):
		return utils.SendError(c, fiber.StatusNotFound, "CONFIRMACAO_INVALIDA", "confirmação inválida")
	case errors.As(err, &validationErrors):
		return utils.SendErrorWithDetails(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "dados inválidos", fieldErrorsFromValidator(validationErrors))
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "CONFIRMACAO_ERROR", "erro interno")
	}
}
