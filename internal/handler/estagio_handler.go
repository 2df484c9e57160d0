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

// EstagioHandler wires the administrative internship HTTP routes.
type EstagioHandler struct {
	service service.EstagioService
	logger  zerolog.Logger
}

// NewEstagioHandler constructs the handler.
func NewEstagioHandler(service service.EstagioService, logger zerolog.Logger) *EstagioHandler {
	return &EstagioHandler{
		service: service,
		logger:  logger.With().Str("component", "estagio_handler").Logger(),
	}
}

// Register attaches internship endpoints to the router group.
func (h *EstagioHandler) Register(api fiber.Router) {
	api.Get("/cursos/:cursoId/estagios", h.list)
	api.Post("/cursos/:cursoId/turmas/:turmaId/inscricoes/:inscricaoId/estagios", h.create)
	api.Get("/cursos/:cursoId/turmas/:turmaId/inscricoes/:inscricaoId/estagios", h.listByInscricao)
	api.Get("/alunos/me/inscricoes/:inscricaoId/estagios", h.listForAluno)
	api.Get("/estagios/:id", h.get)
	api.Patch("/estagios/:id", h.update)
	api.Patch("/estagios/:id/status", h.updateStatus)
	api.Post("/estagios/:id/reenviar-confirmacao", h.resendConfirmacao)
	api.Get("/estagios/:id/notificacoes", h.listNotificacoes)
}

func (h *EstagioHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "page inválida")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "page_size inválido")
	}

	query := dto.EstagioListQuery{
		TurmaID:  c.Query("turma_id"),
		Status:   c.Query("status"),
		Busca:    c.Query("busca"),
		Page:     page,
		PageSize: pageSize,
	}

	estagios, total, err := h.service.List(c.Context(), c.Params("cursoId"), query)
	if err != nil {
		return h.handleError(c, err)
	}

	meta := utils.PageMeta{Page: query.Page, PageSize: query.PageSize, Total: total}
	if meta.Page == 0 {
		meta.Page = 1
	}

	return utils.SendSuccessWithMeta(c, fiber.StatusOK, "estagios listados", estagios, meta)
}

func (h *EstagioHandler) create(c *fiber.Ctx) error {
	var payload dto.EstagioCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "payload inválido")
	}

	estagio, err := h.service.Create(
		c.Context(),
		c.Params("cursoId"),
		c.Params("turmaId"),
		c.Params("inscricaoId"),
		payload,
		userIDFromContext(c),
	)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithMeta(c, fiber.StatusCreated, "estagio criado", estagio, nil)
}

func (h *EstagioHandler) listByInscricao(c *fiber.Ctx) error {
	estagios, err := h.service.ListByInscricao(
		c.Context(),
		c.Params("cursoId"),
		c.Params("turmaId"),
		c.Params("inscricaoId"),
	)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "estagios listados", estagios)
}

func (h *EstagioHandler) listForAluno(c *fiber.Ctx) error {
	estagios, err := h.service.ListForAluno(c.Context(), c.Params("inscricaoId"), alunoIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "estagios listados", estagios)
}

func (h *EstagioHandler) get(c *fiber.Ctx) error {
	adminBypass := userRoleFromContext(c) == "admin"
	estagio, err := h.service.Get(c.Context(), c.Params("id"), alunoIDFromContext(c), adminBypass)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "estagio recuperado", estagio)
}

func (h *EstagioHandler) update(c *fiber.Ctx) error {
	var payload dto.EstagioUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "payload inválido")
	}

	estagio, err := h.service.Update(c.Context(), c.Params("id"), payload, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "estagio atualizado", estagio)
}

func (h *EstagioHandler) updateStatus(c *fiber.Ctx) error {
	var payload dto.EstagioStatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "payload inválido")
	}

	estagio, err := h.service.UpdateStatus(c.Context(), c.Params("id"), payload, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "status atualizado", estagio)
}

func (h *EstagioHandler) resendConfirmacao(c *fiber.Ctx) error {
	var payload dto.ResendConfirmacaoRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "payload inválido")
		}
	}

	estagio, err := h.service.ResendConfirmacao(c.Context(), c.Params("id"), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "convocação reenviada", estagio)
}

func (h *EstagioHandler) listNotificacoes(c *fiber.Ctx) error {
	entries, err := h.service.ListNotificacoes(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "notificações listadas", entries)
}

func (h *EstagioHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	var domainValidation *service.ValidationError

	switch {
	case errors.Is(err, service.ErrCursoNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "CURSO_NOT_FOUND", "curso não encontrado")
	case errors.Is(err, service.ErrTurmaNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "TURMA_NOT_FOUND", "turma não encontrada")
	case errors.Is(err, service.ErrInscricaoNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "INSCRICAO_NOT_FOUND", "inscrição não encontrada")
	case errors.Is(err, service.ErrEstagioNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "ESTAGIO_NOT_FOUND", "estágio não encontrado")
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "FORBIDDEN", "acesso negado")
	case errors.As(err, &domainValidation):
		return utils.SendErrorWithDetails(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "dados inválidos", domainValidation.Fields)
	case errors.As(err, &validationErrors):
		return utils.SendErrorWithDetails(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "dados inválidos", fieldErrorsFromValidator(validationErrors))
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "ESTAGIO_ERROR", "erro interno")
	}
}
