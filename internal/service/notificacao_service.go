package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/sge-estagio-api/internal/models"
	"github.com/noah-isme/sge-estagio-api/internal/observability"
	"github.com/noah-isme/sge-estagio-api/internal/repository"
	"github.com/noah-isme/sge-estagio-api/pkg/mailer"
)

const dataExtenso = "02/01/2006"

var nomesDiasSemana = [7]string{
	"Domingo",
	"Segunda-feira",
	"Terça-feira",
	"Quarta-feira",
	"Quinta-feira",
	"Sexta-feira",
	"Sábado",
}

// ConvocacaoInput carries everything needed to compose a convocation email.
type ConvocacaoInput struct {
	Estagio      models.Estagio
	AlunoNome    string
	CursoNome    string
	TurmaNome    string
	Destinatario string
	Token        string
}

// LembreteInput carries everything needed to compose an end-date reminder.
type LembreteInput struct {
	Estagio         models.Estagio
	ResponsavelNome string
	Destinatario    string
	DiasRestantes   int
}

// NotificacaoService composes and dispatches outbound email through the
// external provider. Sends are best-effort: failures are logged at warning
// level and never propagate to the surrounding workflow, whose database state
// is the source of truth.
type NotificacaoService interface {
	EnviarConvocacao(ctx context.Context, input ConvocacaoInput)
	EnviarLembrete(ctx context.Context, input LembreteInput) models.NotificacaoLog
}

type notificacaoService struct {
	mailer         mailer.Mailer
	repo           repository.NotificacaoRepository
	confirmBaseURL string
	logger         zerolog.Logger
	now            func() time.Time
}

// NewNotificacaoService constructs the notification dispatcher.
func NewNotificacaoService(m mailer.Mailer, repo repository.NotificacaoRepository, confirmBaseURL string, logger zerolog.Logger) NotificacaoService {
	return &notificacaoService{
		mailer:         m,
		repo:           repo,
		confirmBaseURL: strings.TrimRight(confirmBaseURL, "/"),
		logger:         logger.With().Str("component", "notificacao_service").Logger(),
		now:            time.Now,
	}
}

// EnviarConvocacao sends the convocation email and appends exactly one entry
// to the notification log, whether or not delivery succeeded. It is invoked
// after the owning transaction has committed.
func (s *notificacaoService) EnviarConvocacao(ctx context.Context, input ConvocacaoInput) {
	subject := fmt.Sprintf("Convocação de estágio: %s", input.Estagio.Nome)
	html, text := s.comporConvocacao(input)

	detalhe := "convocação enviada"
	err := s.mailer.Send(ctx, mailer.Message{
		To:      input.Destinatario,
		Subject: subject,
		HTML:    html,
		Text:    text,
	})
	if err != nil {
		detalhe = fmt.Sprintf("falha no envio da convocação: %v", err)
		s.logger.Warn().Err(err).
			Str("estagio_id", input.Estagio.ID).
			Str("destinatario", input.Destinatario).
			Msg("convocation email delivery failed")
		observability.NotificationFailures().WithLabelValues(string(models.NotificacaoConvocacaoPendente)).Inc()
	} else {
		observability.NotificationsSent().WithLabelValues(string(models.NotificacaoConvocacaoPendente)).Inc()
	}

	entry := models.NotificacaoLog{
		EstagioID:    input.Estagio.ID,
		Tipo:         models.NotificacaoConvocacaoPendente,
		Canal:        "email",
		Destinatario: input.Destinatario,
		EnviadoEm:    s.now(),
		Detalhe:      detalhe,
	}

	if err := s.repo.Append(ctx, &entry); err != nil {
		s.logger.Warn().Err(err).
			Str("estagio_id", input.Estagio.ID).
			Msg("failed to append convocation log entry")
	}
}

// EnviarLembrete sends the end-date reminder and returns the log entry to be
// persisted by the caller together with the reminder stamp. The entry records
// the attempt even when delivery failed.
func (s *notificacaoService) EnviarLembrete(ctx context.Context, input LembreteInput) models.NotificacaoLog {
	subject := fmt.Sprintf("Estágio próximo do término: %s", input.Estagio.Nome)
	html, text := s.comporLembrete(input)

	detalhe := fmt.Sprintf("lembrete enviado (%d dias restantes)", input.DiasRestantes)
	err := s.mailer.Send(ctx, mailer.Message{
		To:      input.Destinatario,
		Subject: subject,
		HTML:    html,
		Text:    text,
	})
	if err != nil {
		detalhe = fmt.Sprintf("falha no envio do lembrete: %v", err)
		s.logger.Warn().Err(err).
			Str("estagio_id", input.Estagio.ID).
			Str("destinatario", input.Destinatario).
			Msg("reminder email delivery failed")
		observability.NotificationFailures().WithLabelValues(string(models.NotificacaoFimProximo)).Inc()
	} else {
		observability.NotificationsSent().WithLabelValues(string(models.NotificacaoFimProximo)).Inc()
	}

	return models.NotificacaoLog{
		EstagioID:    input.Estagio.ID,
		Tipo:         models.NotificacaoFimProximo,
		Canal:        "email",
		Destinatario: input.Destinatario,
		EnviadoEm:    s.now(),
		Detalhe:      detalhe,
	}
}

func (s *notificacaoService) comporConvocacao(input ConvocacaoInput) (html, text string) {
	est := input.Estagio
	link := fmt.Sprintf("%s/confirmar?token=%s", s.confirmBaseURL, input.Token)

	obrigatorio := "opcional"
	if est.Obrigatorio {
		obrigatorio = "obrigatório"
	}

	var locais strings.Builder
	for _, local := range est.Locais {
		fmt.Fprintf(&locais, `<div style="margin-bottom:16px;padding:12px;border-left:3px solid #00004D;">
			<strong>%s</strong><br>%s<br>Horário: %s às %s (%s)`,
			local.Empresa,
			formatarEndereco(local),
			local.HorarioInicio,
			local.HorarioFim,
			diasSemanaExtenso(local.DiasSemana),
		)
		if local.Referencia != "" {
			fmt.Fprintf(&locais, "<br>Referência: %s", local.Referencia)
		}
		locais.WriteString("</div>")
	}

	html = fmt.Sprintf(`<html><body style="font-family:Helvetica,Arial,sans-serif;color:#222;">
	<h2>Convocação de Estágio</h2>
	<p>Olá, %s!</p>
	<p>Você foi convocado(a) para o estágio <strong>%s</strong> (%s) do curso
	<strong>%s</strong>, turma <strong>%s</strong>.</p>
	<p>Período: <strong>%s</strong> a <strong>%s</strong></p>
	%s
	<p>Confirme o recebimento desta convocação pelo link abaixo:</p>
	<p><a href="%s" style="display:inline-block;padding:12px 24px;background:#00004D;color:#fff;text-decoration:none;border-radius:4px;">Confirmar convocação</a></p>
	</body></html>`,
		input.AlunoNome,
		est.Nome,
		obrigatorio,
		input.CursoNome,
		input.TurmaNome,
		est.DataInicio.Format(dataExtenso),
		est.DataFim.Format(dataExtenso),
		locais.String(),
		link,
	)

	text = fmt.Sprintf(
		"Olá, %s! Você foi convocado(a) para o estágio %s (%s) do curso %s, turma %s. Período: %s a %s. Confirme em: %s",
		input.AlunoNome,
		est.Nome,
		obrigatorio,
		input.CursoNome,
		input.TurmaNome,
		est.DataInicio.Format(dataExtenso),
		est.DataFim.Format(dataExtenso),
		link,
	)

	return html, text
}

func (s *notificacaoService) comporLembrete(input LembreteInput) (html, text string) {
	est := input.Estagio

	html = fmt.Sprintf(`<html><body style="font-family:Helvetica,Arial,sans-serif;color:#222;">
	<h2>Estágio próximo do término</h2>
	<p>Olá, %s.</p>
	<p>O estágio <strong>%s</strong> termina em <strong>%d dia(s)</strong>,
	na data %s.</p>
	<p>Verifique se a documentação de conclusão está em andamento.</p>
	</body></html>`,
		input.ResponsavelNome,
		est.Nome,
		input.DiasRestantes,
		est.DataFim.Format(dataExtenso),
	)

	text = fmt.Sprintf(
		"O estágio %s termina em %d dia(s), na data %s.",
		est.Nome,
		input.DiasRestantes,
		est.DataFim.Format(dataExtenso),
	)

	return html, text
}

func formatarEndereco(local models.EstagioLocal) string {
	parts := make([]string, 0, 6)
	if local.Logradouro != "" {
		endereco := local.Logradouro
		if local.Numero != "" {
			endereco += ", " + local.Numero
		}
		if local.Complemento != "" {
			endereco += " - " + local.Complemento
		}
		parts = append(parts, endereco)
	}
	if local.Bairro != "" {
		parts = append(parts, local.Bairro)
	}
	if local.Cidade != "" {
		cidade := local.Cidade
		if local.UF != "" {
			cidade += "/" + local.UF
		}
		parts = append(parts, cidade)
	}
	if local.CEP != "" {
		parts = append(parts, "CEP "+local.CEP)
	}
	if len(parts) == 0 {
		return "Endereço não informado"
	}

	return strings.Join(parts, " - ")
}

func diasSemanaExtenso(raw datatypes.JSON) string {
	var dias []int
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &dias)
	}

	nomes := make([]string, 0, len(dias))
	for _, dia := range dias {
		if dia >= 0 && dia < len(nomesDiasSemana) {
			nomes = append(nomes, nomesDiasSemana[dia])
		}
	}
	if len(nomes) == 0 {
		return "dias a combinar"
	}

	return strings.Join(nomes, ", ")
}
