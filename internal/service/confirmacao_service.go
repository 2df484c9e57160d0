package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/sge-estagio-api/internal/dto"
	"github.com/noah-isme/sge-estagio-api/internal/models"
	"github.com/noah-isme/sge-estagio-api/internal/observability"
	"github.com/noah-isme/sge-estagio-api/internal/repository"
)

// ConfirmacaoService handles the public acknowledgment protocol. The token is
// the sole credential; an unknown token and an already-used one are not
// distinguished to the caller.
type ConfirmacaoService interface {
	Confirm(ctx context.Context, payload dto.ConfirmacaoRequest) (dto.EstagioResponse, error)
}

type confirmacaoService struct {
	confirmacoes repository.ConfirmacaoRepository
	estagios     repository.EstagioRepository
	validator    *validator.Validate
	logger       zerolog.Logger
	now          func() time.Time
}

// NewConfirmacaoService builds the confirmation protocol service.
func NewConfirmacaoService(
	confirmacoes repository.ConfirmacaoRepository,
	estagios repository.EstagioRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) ConfirmacaoService {
	return &confirmacaoService{
		confirmacoes: confirmacoes,
		estagios:     estagios,
		validator:    validate,
		logger:       logger.With().Str("component", "confirmacao_service").Logger(),
		now:          time.Now,
	}
}

// Confirm consumes a confirmation token. Confirming twice is a no-op that
// returns the already-confirmed projection: the protocol code is never
// re-issued and the audit bundle set by the first call is never overwritten.
func (s *confirmacaoService) Confirm(ctx context.Context, payload dto.ConfirmacaoRequest) (dto.EstagioResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EstagioResponse{}, err
	}

	confirmacao, err := s.confirmacoes.GetByToken(ctx, payload.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EstagioResponse{}, ErrConfirmacaoInvalida
		}
		return dto.EstagioResponse{}, err
	}

	estagio, err := s.estagios.GetByID(ctx, confirmacao.EstagioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EstagioResponse{}, ErrConfirmacaoInvalida
		}
		return dto.EstagioResponse{}, err
	}

	if confirmacao.Confirmado() {
		return dto.NewEstagioResponse(estagio), nil
	}

	agora := s.now()
	confirmacao.ConfirmadoEm = &agora

	if confirmacao.Protocolo == nil {
		protocolo, err := generateProtocolo()
		if err != nil {
			return dto.EstagioResponse{}, err
		}
		confirmacao.Protocolo = &protocolo
	}

	mergeAudit(&confirmacao, payload)

	estagio.ConfirmadoEm = &agora
	if estagio.Status == models.StatusPendente {
		estagio.Status = models.StatusEmAndamento
	}

	if err := s.confirmacoes.Confirm(ctx, &confirmacao, &estagio); err != nil {
		return dto.EstagioResponse{}, err
	}

	observability.Confirmations().Inc()
	s.logger.Info().
		Str("estagio_id", estagio.ID).
		Str("protocolo", *confirmacao.Protocolo).
		Msg("estagio confirmed")

	estagio.Confirmacao = &confirmacao

	return dto.NewEstagioResponse(estagio), nil
}

// mergeAudit overlays supplied audit fields on the record: a supplied value
// wins, otherwise any pre-existing value is kept.
func mergeAudit(confirmacao *models.EstagioConfirmacao, payload dto.ConfirmacaoRequest) {
	confirmacao.IP = firstNonEmpty(payload.IP, confirmacao.IP)
	confirmacao.UserAgent = firstNonEmpty(payload.UserAgent, confirmacao.UserAgent)
	confirmacao.DispositivoTipo = firstNonEmpty(payload.DispositivoTipo, confirmacao.DispositivoTipo)
	confirmacao.DispositivoDesc = firstNonEmpty(payload.DispositivoDesc, confirmacao.DispositivoDesc)
	confirmacao.DispositivoID = firstNonEmpty(payload.DispositivoID, confirmacao.DispositivoID)
	confirmacao.SistemaOperacional = firstNonEmpty(payload.SistemaOperacional, confirmacao.SistemaOperacional)
	confirmacao.Navegador = firstNonEmpty(payload.Navegador, confirmacao.Navegador)
	confirmacao.Localizacao = firstNonEmpty(payload.Localizacao, confirmacao.Localizacao)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
