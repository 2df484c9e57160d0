package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/sge-estagio-api/internal/dto"
	"github.com/noah-isme/sge-estagio-api/internal/models"
	"github.com/noah-isme/sge-estagio-api/internal/repository"
)

const dataLayout = "2006-01-02"

// EstagioService exposes the internship lifecycle use cases.
type EstagioService interface {
	List(ctx context.Context, cursoID string, query dto.EstagioListQuery) ([]dto.EstagioResponse, int64, error)
	Create(ctx context.Context, cursoID, turmaID, inscricaoID string, payload dto.EstagioCreateRequest, actorID uint) (dto.EstagioCreatedResponse, error)
	ListByInscricao(ctx context.Context, cursoID, turmaID, inscricaoID string) ([]dto.EstagioResponse, error)
	ListForAluno(ctx context.Context, inscricaoID, alunoID string) ([]dto.EstagioResponse, error)
	Get(ctx context.Context, id, requesterAlunoID string, adminBypass bool) (dto.EstagioResponse, error)
	Update(ctx context.Context, id string, payload dto.EstagioUpdateRequest, actorID uint) (dto.EstagioResponse, error)
	UpdateStatus(ctx context.Context, id string, payload dto.EstagioStatusUpdateRequest, actorID uint) (dto.EstagioResponse, error)
	ResendConfirmacao(ctx context.Context, id string, actorID uint, payload dto.ResendConfirmacaoRequest) (dto.EstagioResponse, error)
	ListNotificacoes(ctx context.Context, id string) ([]dto.NotificacaoLogResponse, error)
}

type estagioService struct {
	estagios     repository.EstagioRepository
	confirmacoes repository.ConfirmacaoRepository
	notificacoes repository.NotificacaoRepository
	cadastro     repository.CadastroRepository
	dispatcher   NotificacaoService
	validator    *validator.Validate
	logger       zerolog.Logger
	now          func() time.Time
}

// NewEstagioService builds the internship orchestration service.
func NewEstagioService(
	estagios repository.EstagioRepository,
	confirmacoes repository.ConfirmacaoRepository,
	notificacoes repository.NotificacaoRepository,
	cadastro repository.CadastroRepository,
	dispatcher NotificacaoService,
	validate *validator.Validate,
	logger zerolog.Logger,
) EstagioService {
	return &estagioService{
		estagios:     estagios,
		confirmacoes: confirmacoes,
		notificacoes: notificacoes,
		cadastro:     cadastro,
		dispatcher:   dispatcher,
		validator:    validate,
		logger:       logger.With().Str("component", "estagio_service").Logger(),
		now:          time.Now,
	}
}

func (s *estagioService) List(ctx context.Context, cursoID string, query dto.EstagioListQuery) ([]dto.EstagioResponse, int64, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, 0, err
	}

	if _, err := s.cadastro.GetCurso(ctx, cursoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrCursoNotFound
		}
		return nil, 0, err
	}

	estagios, total, err := s.estagios.ListByCurso(ctx, cursoID, repository.EstagioFilter{
		TurmaID:  query.TurmaID,
		Status:   models.EstagioStatus(query.Status),
		Busca:    query.Busca,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	return dto.NewEstagioResponseSlice(estagios), total, nil
}

func (s *estagioService) Create(ctx context.Context, cursoID, turmaID, inscricaoID string, payload dto.EstagioCreateRequest, actorID uint) (dto.EstagioCreatedResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EstagioCreatedResponse{}, err
	}

	dataInicio, dataFim, err := parsePeriodo(payload.DataInicio, payload.DataFim)
	if err != nil {
		return dto.EstagioCreatedResponse{}, err
	}

	turma, err := s.cadastro.GetTurma(ctx, cursoID, turmaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EstagioCreatedResponse{}, ErrTurmaNotFound
		}
		return dto.EstagioCreatedResponse{}, err
	}

	inscricao, err := s.cadastro.GetInscricao(ctx, turmaID, inscricaoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EstagioCreatedResponse{}, ErrInscricaoNotFound
		}
		return dto.EstagioCreatedResponse{}, err
	}

	token, err := generateToken()
	if err != nil {
		return dto.EstagioCreatedResponse{}, err
	}

	locais, err := locaisFromPayload(payload.Locais)
	if err != nil {
		return dto.EstagioCreatedResponse{}, err
	}

	estagio := models.Estagio{
		CursoID:          cursoID,
		TurmaID:          turmaID,
		InscricaoID:      inscricaoID,
		AlunoID:          inscricao.AlunoID,
		Nome:             payload.Nome,
		Descricao:        payload.Descricao,
		Obrigatorio:      payload.Obrigatorio,
		Status:           models.StatusPendente,
		DataInicio:       dataInicio,
		DataFim:          dataFim,
		CargaHoraria:     payload.CargaHoraria,
		EmpresaPrincipal: payload.EmpresaPrincipal,
		Observacoes:      payload.Observacoes,
		CriadoPor:        &actorID,
		Locais:           locais,
		Confirmacao:      &models.EstagioConfirmacao{Token: token},
	}

	if err := s.estagios.CreateWithGraph(ctx, &estagio); err != nil {
		return dto.EstagioCreatedResponse{}, err
	}

	s.logger.Info().
		Str("estagio_id", estagio.ID).
		Str("inscricao_id", inscricaoID).
		Msg("estagio created")

	// Best-effort convocation: the created record is durable even when the
	// email never arrives. Operators retry through the resend operation.
	if inscricao.Aluno != nil {
		curso, err := s.cadastro.GetCurso(ctx, cursoID)
		if err != nil {
			s.logger.Warn().Err(err).Str("curso_id", cursoID).Msg("failed to resolve curso for convocation")
		}

		s.dispatcher.EnviarConvocacao(ctx, ConvocacaoInput{
			Estagio:      estagio,
			AlunoNome:    inscricao.Aluno.Nome,
			CursoNome:    curso.Nome,
			TurmaNome:    turma.Nome,
			Destinatario: inscricao.Aluno.Email,
			Token:        token,
		})
	} else {
		s.logger.Warn().
			Str("estagio_id", estagio.ID).
			Str("inscricao_id", inscricaoID).
			Msg("inscricao has no aluno on record, convocation not sent")
	}

	return dto.EstagioCreatedResponse{
		EstagioResponse:  dto.NewEstagioResponse(estagio),
		TokenConfirmacao: token,
	}, nil
}

func (s *estagioService) ListByInscricao(ctx context.Context, cursoID, turmaID, inscricaoID string) ([]dto.EstagioResponse, error) {
	if _, err := s.cadastro.GetTurma(ctx, cursoID, turmaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTurmaNotFound
		}
		return nil, err
	}

	if _, err := s.cadastro.GetInscricao(ctx, turmaID, inscricaoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInscricaoNotFound
		}
		return nil, err
	}

	estagios, err := s.estagios.ListByInscricao(ctx, inscricaoID)
	if err != nil {
		return nil, err
	}

	return dto.NewEstagioResponseSlice(estagios), nil
}

func (s *estagioService) ListForAluno(ctx context.Context, inscricaoID, alunoID string) ([]dto.EstagioResponse, error) {
	inscricao, err := s.cadastro.GetInscricao(ctx, "", inscricaoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInscricaoNotFound
		}
		return nil, err
	}

	if inscricao.AlunoID != alunoID {
		return nil, ErrForbidden
	}

	estagios, err := s.estagios.ListByInscricao(ctx, inscricaoID)
	if err != nil {
		return nil, err
	}

	return dto.NewEstagioResponseSlice(estagios), nil
}

func (s *estagioService) Get(ctx context.Context, id, requesterAlunoID string, adminBypass bool) (dto.EstagioResponse, error) {
	estagio, err := s.getEstagio(ctx, id)
	if err != nil {
		return dto.EstagioResponse{}, err
	}

	if !adminBypass && estagio.AlunoID != requesterAlunoID {
		return dto.EstagioResponse{}, ErrForbidden
	}

	return dto.NewEstagioResponse(estagio), nil
}

func (s *estagioService) Update(ctx context.Context, id string, payload dto.EstagioUpdateRequest, actorID uint) (dto.EstagioResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EstagioResponse{}, err
	}

	estagio, err := s.getEstagio(ctx, id)
	if err != nil {
		return dto.EstagioResponse{}, err
	}

	if payload.Nome != nil {
		estagio.Nome = *payload.Nome
	}
	if payload.Descricao != nil {
		estagio.Descricao = *payload.Descricao
	}
	if payload.Obrigatorio != nil {
		estagio.Obrigatorio = *payload.Obrigatorio
	}
	if payload.CargaHoraria != nil {
		estagio.CargaHoraria = payload.CargaHoraria
	}
	if payload.EmpresaPrincipal != nil {
		estagio.EmpresaPrincipal = *payload.EmpresaPrincipal
	}
	if payload.Observacoes != nil {
		estagio.Observacoes = *payload.Observacoes
	}

	inicio := estagio.DataInicio.Format(dataLayout)
	fim := estagio.DataFim.Format(dataLayout)
	if payload.DataInicio != nil {
		inicio = *payload.DataInicio
	}
	if payload.DataFim != nil {
		fim = *payload.DataFim
	}
	if payload.DataInicio != nil || payload.DataFim != nil {
		dataInicio, dataFim, err := parsePeriodo(inicio, fim)
		if err != nil {
			return dto.EstagioResponse{}, err
		}
		estagio.DataInicio = dataInicio
		estagio.DataFim = dataFim
	}

	estagio.AtualizadoPor = &actorID

	if payload.Locais != nil {
		locais, err := locaisFromPayload(*payload.Locais)
		if err != nil {
			return dto.EstagioResponse{}, err
		}
		if err := s.estagios.ReplaceLocais(ctx, estagio.ID, locais); err != nil {
			return dto.EstagioResponse{}, err
		}
	}

	if err := s.estagios.Update(ctx, &estagio); err != nil {
		return dto.EstagioResponse{}, err
	}

	updated, err := s.getEstagio(ctx, id)
	if err != nil {
		return dto.EstagioResponse{}, err
	}

	s.logger.Info().Str("estagio_id", id).Msg("estagio updated")

	return dto.NewEstagioResponse(updated), nil
}

// UpdateStatus applies an explicit administrative status change. Transitions
// are deliberately permissive: the operation enforces field-level side effects
// but does not constrain which state may follow which.
func (s *estagioService) UpdateStatus(ctx context.Context, id string, payload dto.EstagioStatusUpdateRequest, actorID uint) (dto.EstagioResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EstagioResponse{}, err
	}

	estagio, err := s.getEstagio(ctx, id)
	if err != nil {
		return dto.EstagioResponse{}, err
	}

	status := models.EstagioStatus(payload.Status)
	if !status.IsValid() {
		return dto.EstagioResponse{}, newFieldError("status", "status desconhecido")
	}
	agora := s.now()

	switch status {
	case models.StatusConcluido:
		concluidoEm := agora
		if payload.ConcluidoEm != nil {
			parsed, err := time.Parse(time.RFC3339, *payload.ConcluidoEm)
			if err != nil {
				return dto.EstagioResponse{}, newFieldError("concluido_em", "data de conclusão inválida")
			}
			concluidoEm = parsed
		}
		estagio.ConcluidoEm = &concluidoEm
		estagio.ReprovadoEm = nil
		estagio.MotivoReprovacao = ""
	case models.StatusReprovado:
		if payload.MotivoReprovacao == nil || *payload.MotivoReprovacao == "" {
			return dto.EstagioResponse{}, newFieldError("motivo_reprovacao", "motivo é obrigatório para reprovação")
		}
		estagio.ReprovadoEm = &agora
		estagio.MotivoReprovacao = *payload.MotivoReprovacao
		estagio.ConcluidoEm = nil
	case models.StatusCancelado:
		estagio.ReprovadoEm = &agora
		if payload.MotivoReprovacao != nil {
			estagio.MotivoReprovacao = *payload.MotivoReprovacao
		}
	}

	if payload.Observacoes != nil {
		estagio.Observacoes = *payload.Observacoes
	}

	estagio.Status = status
	estagio.AtualizadoPor = &actorID

	if err := s.estagios.Update(ctx, &estagio); err != nil {
		return dto.EstagioResponse{}, err
	}

	s.logger.Info().
		Str("estagio_id", id).
		Str("status", payload.Status).
		Msg("estagio status updated")

	return dto.NewEstagioResponse(estagio), nil
}

// ResendConfirmacao re-sends the original convocation using the existing
// token, optionally to an alternate recipient, and records the attempt.
func (s *estagioService) ResendConfirmacao(ctx context.Context, id string, actorID uint, payload dto.ResendConfirmacaoRequest) (dto.EstagioResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EstagioResponse{}, err
	}

	estagio, err := s.getEstagio(ctx, id)
	if err != nil {
		return dto.EstagioResponse{}, err
	}

	confirmacao, err := s.confirmacoes.GetByEstagio(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EstagioResponse{}, ErrEstagioNotFound
		}
		return dto.EstagioResponse{}, err
	}

	inscricao, err := s.cadastro.GetInscricao(ctx, "", estagio.InscricaoID)
	if err != nil {
		return dto.EstagioResponse{}, fmt.Errorf("failed to resolve inscricao: %w", err)
	}

	destinatario := ""
	alunoNome := ""
	if inscricao.Aluno != nil {
		destinatario = inscricao.Aluno.Email
		alunoNome = inscricao.Aluno.Nome
	}
	if payload.DestinatarioAlternativo != nil && *payload.DestinatarioAlternativo != "" {
		destinatario = *payload.DestinatarioAlternativo
	}
	if destinatario == "" {
		return dto.EstagioResponse{}, newFieldError("destinatario_alternativo", "nenhum destinatário disponível")
	}

	curso, err := s.cadastro.GetCurso(ctx, estagio.CursoID)
	if err != nil {
		s.logger.Warn().Err(err).Str("curso_id", estagio.CursoID).Msg("failed to resolve curso for convocation")
	}
	turma, err := s.cadastro.GetTurma(ctx, "", estagio.TurmaID)
	if err != nil {
		s.logger.Warn().Err(err).Str("turma_id", estagio.TurmaID).Msg("failed to resolve turma for convocation")
	}

	s.dispatcher.EnviarConvocacao(ctx, ConvocacaoInput{
		Estagio:      estagio,
		AlunoNome:    alunoNome,
		CursoNome:    curso.Nome,
		TurmaNome:    turma.Nome,
		Destinatario: destinatario,
		Token:        confirmacao.Token,
	})

	s.logger.Info().
		Str("estagio_id", id).
		Uint("actor_id", actorID).
		Msg("convocation re-sent")

	return dto.NewEstagioResponse(estagio), nil
}

func (s *estagioService) ListNotificacoes(ctx context.Context, id string) ([]dto.NotificacaoLogResponse, error) {
	if _, err := s.getEstagio(ctx, id); err != nil {
		return nil, err
	}

	entries, err := s.notificacoes.ListByEstagio(ctx, id)
	if err != nil {
		return nil, err
	}

	return dto.NewNotificacaoLogResponseSlice(entries), nil
}

func (s *estagioService) getEstagio(ctx context.Context, id string) (models.Estagio, error) {
	estagio, err := s.estagios.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Estagio{}, ErrEstagioNotFound
		}
		return models.Estagio{}, err
	}

	return estagio, nil
}

func parsePeriodo(inicio, fim string) (time.Time, time.Time, error) {
	dataInicio, err := time.Parse(dataLayout, inicio)
	if err != nil {
		return time.Time{}, time.Time{}, newFieldError("data_inicio", "data inválida")
	}

	dataFim, err := time.Parse(dataLayout, fim)
	if err != nil {
		return time.Time{}, time.Time{}, newFieldError("data_fim", "data inválida")
	}

	if dataFim.Before(dataInicio) {
		return time.Time{}, time.Time{}, newFieldError("data_fim", "data de término deve ser igual ou posterior à data de início")
	}

	return dataInicio, dataFim, nil
}

func locaisFromPayload(payloads []dto.LocalPayload) ([]models.EstagioLocal, error) {
	locais := make([]models.EstagioLocal, 0, len(payloads))
	for _, payload := range payloads {
		dias, err := json.Marshal(payload.DiasSemana)
		if err != nil {
			return nil, fmt.Errorf("failed to encode dias_semana: %w", err)
		}

		locais = append(locais, models.EstagioLocal{
			Empresa:             payload.Empresa,
			Logradouro:          payload.Logradouro,
			Numero:              payload.Numero,
			Complemento:         payload.Complemento,
			Bairro:              payload.Bairro,
			Cidade:              payload.Cidade,
			UF:                  payload.UF,
			CEP:                 payload.CEP,
			ContatoNome:         payload.ContatoNome,
			ContatoTelefone:     payload.ContatoTelefone,
			ContatoEmail:        payload.ContatoEmail,
			HorarioInicio:       payload.HorarioInicio,
			HorarioFim:          payload.HorarioFim,
			DiasSemana:          datatypes.JSON(dias),
			CargaHorariaSemanal: payload.CargaHorariaSemanal,
			Referencia:          payload.Referencia,
		})
	}

	return locais, nil
}
