package service

import (
	"bytes"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sge-estagio-api/internal/dto"
	"github.com/noah-isme/sge-estagio-api/internal/models"
)

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

type estagioFixture struct {
	svc          EstagioService
	estagios     *memoryEstagioRepo
	confirmacoes *memoryConfirmacaoRepo
	notificacoes *memoryNotificacaoRepo
	cadastro     *memoryCadastroRepo
	dispatcher   *fakeDispatcher

	cursoID     string
	turmaID     string
	inscricaoID string
	alunoID     string
}

func newEstagioFixture(t *testing.T) *estagioFixture {
	t.Helper()

	estagios := newMemoryEstagioRepo()
	confirmacoes := &memoryConfirmacaoRepo{estagios: estagios}
	notificacoes := &memoryNotificacaoRepo{}
	cadastro := newMemoryCadastroRepo()
	dispatcher := &fakeDispatcher{}

	cursoID := uuid.NewString()
	turmaID := uuid.NewString()
	inscricaoID := uuid.NewString()
	alunoID := uuid.NewString()

	cadastro.cursos[cursoID] = models.Curso{ID: cursoID, Nome: "Técnico em Enfermagem"}
	cadastro.turmas[turmaID] = models.Turma{ID: turmaID, CursoID: cursoID, Nome: "Turma 2025/1"}
	cadastro.inscricoes[inscricaoID] = models.Inscricao{
		ID:      inscricaoID,
		TurmaID: turmaID,
		AlunoID: alunoID,
		Aluno:   &models.Aluno{ID: alunoID, Nome: "Maria Souza", Email: "maria@example.com"},
	}

	svc := NewEstagioService(
		estagios,
		confirmacoes,
		notificacoes,
		cadastro,
		dispatcher,
		validator.New(validator.WithRequiredStructEnabled()),
		testLogger(),
	)

	return &estagioFixture{
		svc:          svc,
		estagios:     estagios,
		confirmacoes: confirmacoes,
		notificacoes: notificacoes,
		cadastro:     cadastro,
		dispatcher:   dispatcher,
		cursoID:      cursoID,
		turmaID:      turmaID,
		inscricaoID:  inscricaoID,
		alunoID:      alunoID,
	}
}

func validCreatePayload() dto.EstagioCreateRequest {
	return dto.EstagioCreateRequest{
		Nome:       "Estágio Supervisionado I",
		DataInicio: "2025-02-01",
		DataFim:    "2025-06-30",
		Locais: []dto.LocalPayload{{
			Empresa:       "Hospital Santa Clara",
			Cidade:        "Porto Alegre",
			UF:            "RS",
			HorarioInicio: "08:00",
			HorarioFim:    "12:00",
			DiasSemana:    []int{1, 3, 5},
		}},
	}
}

func (f *estagioFixture) create(t *testing.T) dto.EstagioCreatedResponse {
	t.Helper()
	created, err := f.svc.Create(context.Background(), f.cursoID, f.turmaID, f.inscricaoID, validCreatePayload(), 7)
	require.NoError(t, err)
	return created
}

func TestEstagioServiceCreateWarnsWhenAlunoMissing(t *testing.T) {
	f := newEstagioFixture(t)
	inscricao := f.cadastro.inscricoes[f.inscricaoID]
	inscricao.Aluno = nil
	f.cadastro.inscricoes[f.inscricaoID] = inscricao

	var logs bytes.Buffer
	svc := NewEstagioService(
		f.estagios,
		f.confirmacoes,
		f.notificacoes,
		f.cadastro,
		f.dispatcher,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.New(&logs),
	)

	created, err := svc.Create(context.Background(), f.cursoID, f.turmaID, f.inscricaoID, validCreatePayload(), 7)
	require.NoError(t, err, "creation must succeed even without an aluno on the inscricao")
	require.Empty(t, f.dispatcher.convocacoes)
	require.Contains(t, logs.String(), "convocation not sent")
	require.Contains(t, logs.String(), created.ID)
}

func TestEstagioServiceCreate(t *testing.T) {
	f := newEstagioFixture(t)

	created := f.create(t)

	require.Equal(t, string(models.StatusPendente), created.Status)
	require.Equal(t, f.alunoID, created.AlunoID)
	require.Regexp(t, tokenPattern, created.TokenConfirmacao)
	require.Len(t, created.Locais, 1)
	require.Equal(t, []int{1, 3, 5}, created.Locais[0].DiasSemana)

	require.Len(t, f.dispatcher.convocacoes, 1)
	convocacao := f.dispatcher.convocacoes[0]
	require.Equal(t, "maria@example.com", convocacao.Destinatario)
	require.Equal(t, created.TokenConfirmacao, convocacao.Token)
	require.Equal(t, "Técnico em Enfermagem", convocacao.CursoNome)

	stored, err := f.estagios.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Confirmacao)
	require.Equal(t, created.TokenConfirmacao, stored.Confirmacao.Token)
	require.NotNil(t, stored.CriadoPor)
	require.Equal(t, uint(7), *stored.CriadoPor)
}

func TestEstagioServiceCreateRequiresLocais(t *testing.T) {
	f := newEstagioFixture(t)

	payload := validCreatePayload()
	payload.Locais = nil

	_, err := f.svc.Create(context.Background(), f.cursoID, f.turmaID, f.inscricaoID, payload, 7)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Empty(t, f.estagios.estagios)
	require.Empty(t, f.dispatcher.convocacoes)
}

func TestEstagioServiceCreateRejectsInvertedPeriodo(t *testing.T) {
	f := newEstagioFixture(t)

	payload := validCreatePayload()
	payload.DataInicio = "2025-06-30"
	payload.DataFim = "2025-02-01"

	_, err := f.svc.Create(context.Background(), f.cursoID, f.turmaID, f.inscricaoID, payload, 7)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "data_fim")
}

func TestEstagioServiceCreateUnknownReferences(t *testing.T) {
	f := newEstagioFixture(t)

	_, err := f.svc.Create(context.Background(), f.cursoID, uuid.NewString(), f.inscricaoID, validCreatePayload(), 7)
	require.ErrorIs(t, err, ErrTurmaNotFound)

	_, err = f.svc.Create(context.Background(), f.cursoID, f.turmaID, uuid.NewString(), validCreatePayload(), 7)
	require.ErrorIs(t, err, ErrInscricaoNotFound)
}

func TestEstagioServiceListUnknownCurso(t *testing.T) {
	f := newEstagioFixture(t)

	_, _, err := f.svc.List(context.Background(), uuid.NewString(), dto.EstagioListQuery{})
	require.ErrorIs(t, err, ErrCursoNotFound)
}

func TestEstagioServiceListReturnsCursoEstagios(t *testing.T) {
	f := newEstagioFixture(t)
	f.create(t)

	responses, total, err := f.svc.List(context.Background(), f.cursoID, dto.EstagioListQuery{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, responses, 1)
}

func TestEstagioServiceGetEnforcesOwnership(t *testing.T) {
	f := newEstagioFixture(t)
	created := f.create(t)

	_, err := f.svc.Get(context.Background(), created.ID, uuid.NewString(), false)
	require.ErrorIs(t, err, ErrForbidden)

	response, err := f.svc.Get(context.Background(), created.ID, f.alunoID, false)
	require.NoError(t, err)
	require.Equal(t, created.ID, response.ID)

	// Administrative callers bypass the ownership check.
	response, err = f.svc.Get(context.Background(), created.ID, "", true)
	require.NoError(t, err)
	require.Equal(t, created.ID, response.ID)
}

func TestEstagioServiceListForAlunoForbidden(t *testing.T) {
	f := newEstagioFixture(t)
	f.create(t)

	_, err := f.svc.ListForAluno(context.Background(), f.inscricaoID, uuid.NewString())
	require.ErrorIs(t, err, ErrForbidden)

	responses, err := f.svc.ListForAluno(context.Background(), f.inscricaoID, f.alunoID)
	require.NoError(t, err)
	require.Len(t, responses, 1)
}

func TestEstagioServiceUpdateMergesAndReplacesLocais(t *testing.T) {
	f := newEstagioFixture(t)
	created := f.create(t)

	nome := "Estágio Supervisionado II"
	locais := []dto.LocalPayload{{
		Empresa:       "Clínica Vida",
		HorarioInicio: "13:00",
		HorarioFim:    "17:00",
		DiasSemana:    []int{2, 4},
	}}

	updated, err := f.svc.Update(context.Background(), created.ID, dto.EstagioUpdateRequest{
		Nome:   &nome,
		Locais: &locais,
	}, 9)
	require.NoError(t, err)
	require.Equal(t, nome, updated.Nome)
	require.Len(t, updated.Locais, 1)
	require.Equal(t, "Clínica Vida", updated.Locais[0].Empresa)

	stored, err := f.estagios.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AtualizadoPor)
	require.Equal(t, uint(9), *stored.AtualizadoPor)
}

func TestEstagioServiceUpdateRejectsInvertedPeriodo(t *testing.T) {
	f := newEstagioFixture(t)
	created := f.create(t)

	fim := "2025-01-01"
	_, err := f.svc.Update(context.Background(), created.ID, dto.EstagioUpdateRequest{DataFim: &fim}, 9)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "data_fim")
}

func TestEstagioServiceUpdateStatusConcluido(t *testing.T) {
	f := newEstagioFixture(t)
	created := f.create(t)

	motivo := "faltas"
	_, err := f.svc.UpdateStatus(context.Background(), created.ID, dto.EstagioStatusUpdateRequest{
		Status:           string(models.StatusReprovado),
		MotivoReprovacao: &motivo,
	}, 9)
	require.NoError(t, err)

	concluidoEm := "2025-06-30T18:00:00Z"
	response, err := f.svc.UpdateStatus(context.Background(), created.ID, dto.EstagioStatusUpdateRequest{
		Status:      string(models.StatusConcluido),
		ConcluidoEm: &concluidoEm,
	}, 9)
	require.NoError(t, err)
	require.Equal(t, string(models.StatusConcluido), response.Status)
	require.NotNil(t, response.ConcluidoEm)
	require.Equal(t, time.Date(2025, 6, 30, 18, 0, 0, 0, time.UTC), response.ConcluidoEm.UTC())
	require.Nil(t, response.ReprovadoEm)
	require.Empty(t, response.MotivoReprovacao)
}

func TestEstagioServiceUpdateStatusReprovadoRequiresMotivo(t *testing.T) {
	f := newEstagioFixture(t)
	created := f.create(t)

	_, err := f.svc.UpdateStatus(context.Background(), created.ID, dto.EstagioStatusUpdateRequest{
		Status: string(models.StatusReprovado),
	}, 9)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "motivo_reprovacao")

	motivo := "carga horária insuficiente"
	response, err := f.svc.UpdateStatus(context.Background(), created.ID, dto.EstagioStatusUpdateRequest{
		Status:           string(models.StatusReprovado),
		MotivoReprovacao: &motivo,
	}, 9)
	require.NoError(t, err)
	require.Equal(t, string(models.StatusReprovado), response.Status)
	require.NotNil(t, response.ReprovadoEm)
	require.Nil(t, response.ConcluidoEm)
	require.Equal(t, motivo, response.MotivoReprovacao)
}

func TestEstagioServiceUpdateStatusIsPermissive(t *testing.T) {
	f := newEstagioFixture(t)
	created := f.create(t)

	_, err := f.svc.UpdateStatus(context.Background(), created.ID, dto.EstagioStatusUpdateRequest{
		Status: string(models.StatusCancelado),
	}, 9)
	require.NoError(t, err)

	// Terminal states are not a dead end for administrative corrections.
	response, err := f.svc.UpdateStatus(context.Background(), created.ID, dto.EstagioStatusUpdateRequest{
		Status: string(models.StatusPendente),
	}, 9)
	require.NoError(t, err)
	require.Equal(t, string(models.StatusPendente), response.Status)
}

func TestEstagioServiceUpdateStatusRejectsUnknownValue(t *testing.T) {
	f := newEstagioFixture(t)
	created := f.create(t)

	_, err := f.svc.UpdateStatus(context.Background(), created.ID, dto.EstagioStatusUpdateRequest{Status: "ARQUIVADO"}, 9)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "status")
}

func TestEstagioServiceResendConfirmacao(t *testing.T) {
	f := newEstagioFixture(t)
	created := f.create(t)
	require.Len(t, f.dispatcher.convocacoes, 1)

	_, err := f.svc.ResendConfirmacao(context.Background(), created.ID, 9, dto.ResendConfirmacaoRequest{})
	require.NoError(t, err)
	require.Len(t, f.dispatcher.convocacoes, 2)
	require.Equal(t, "maria@example.com", f.dispatcher.convocacoes[1].Destinatario)
	require.Equal(t, created.TokenConfirmacao, f.dispatcher.convocacoes[1].Token, "resend must reuse the original token")

	alternativo := "coordenacao@example.com"
	_, err = f.svc.ResendConfirmacao(context.Background(), created.ID, 9, dto.ResendConfirmacaoRequest{DestinatarioAlternativo: &alternativo})
	require.NoError(t, err)
	require.Len(t, f.dispatcher.convocacoes, 3)
	require.Equal(t, alternativo, f.dispatcher.convocacoes[2].Destinatario)
}

func TestEstagioServiceResendConfirmacaoRejectsInvalidRecipient(t *testing.T) {
	f := newEstagioFixture(t)
	created := f.create(t)
	require.Len(t, f.dispatcher.convocacoes, 1)

	alternativo := "not-an-email"
	_, err := f.svc.ResendConfirmacao(context.Background(), created.ID, 9, dto.ResendConfirmacaoRequest{DestinatarioAlternativo: &alternativo})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, f.dispatcher.convocacoes, 1, "no convocation may go out to a malformed recipient")
}

func TestEstagioServiceResendConfirmacaoUnknownEstagio(t *testing.T) {
	f := newEstagioFixture(t)

	_, err := f.svc.ResendConfirmacao(context.Background(), uuid.NewString(), 9, dto.ResendConfirmacaoRequest{})
	require.ErrorIs(t, err, ErrEstagioNotFound)
}

func TestEstagioServiceListNotificacoes(t *testing.T) {
	f := newEstagioFixture(t)
	created := f.create(t)

	require.NoError(t, f.notificacoes.Append(context.Background(), &models.NotificacaoLog{
		EstagioID:    created.ID,
		Tipo:         models.NotificacaoConvocacaoPendente,
		Canal:        "email",
		Destinatario: "maria@example.com",
		EnviadoEm:    time.Now(),
	}))

	entries, err := f.svc.ListNotificacoes(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, string(models.NotificacaoConvocacaoPendente), entries[0].Tipo)

	_, err = f.svc.ListNotificacoes(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, ErrEstagioNotFound)
}
