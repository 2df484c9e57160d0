package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/sge-estagio-api/internal/models"
)

const dateLayout = "2006-01-02"

// LocalPayload describes one placement site in create/update requests.
type LocalPayload struct {
	Empresa             string `json:"empresa" validate:"required,min=2"`
	Logradouro          string `json:"logradouro" validate:"omitempty,max=255"`
	Numero              string `json:"numero" validate:"omitempty,max=32"`
	Complemento         string `json:"complemento" validate:"omitempty,max=128"`
	Bairro              string `json:"bairro" validate:"omitempty,max=128"`
	Cidade              string `json:"cidade" validate:"omitempty,max=128"`
	UF                  string `json:"uf" validate:"omitempty,len=2"`
	CEP                 string `json:"cep" validate:"omitempty,max=16"`
	ContatoNome         string `json:"contato_nome" validate:"omitempty,max=255"`
	ContatoTelefone     string `json:"contato_telefone" validate:"omitempty,max=32"`
	ContatoEmail        string `json:"contato_email" validate:"omitempty,email"`
	HorarioInicio       string `json:"horario_inicio" validate:"required,datetime=15:04"`
	HorarioFim          string `json:"horario_fim" validate:"required,datetime=15:04"`
	DiasSemana          []int  `json:"dias_semana" validate:"required,min=1,dive,gte=0,lte=6"`
	CargaHorariaSemanal *int   `json:"carga_horaria_semanal" validate:"omitempty,gt=0"`
	Referencia          string `json:"referencia"`
}

// EstagioCreateRequest describes the payload for creating a new internship.
type EstagioCreateRequest struct {
	Nome             string         `json:"nome" validate:"required,min=3"`
	Descricao        string         `json:"descricao"`
	Obrigatorio      bool           `json:"obrigatorio"`
	DataInicio       string         `json:"data_inicio" validate:"required,datetime=2006-01-02"`
	DataFim          string         `json:"data_fim" validate:"required,datetime=2006-01-02"`
	CargaHoraria     *int           `json:"carga_horaria" validate:"omitempty,gt=0"`
	EmpresaPrincipal string         `json:"empresa_principal" validate:"omitempty,max=255"`
	Observacoes      string         `json:"observacoes"`
	Locais           []LocalPayload `json:"locais" validate:"required,min=1,dive"`
}

// EstagioUpdateRequest describes the payload for partially updating an
// internship. When Locais is present the whole location set is replaced.
type EstagioUpdateRequest struct {
	Nome             *string         `json:"nome" validate:"omitempty,min=3"`
	Descricao        *string         `json:"descricao"`
	Obrigatorio      *bool           `json:"obrigatorio"`
	DataInicio       *string         `json:"data_inicio" validate:"omitempty,datetime=2006-01-02"`
	DataFim          *string         `json:"data_fim" validate:"omitempty,datetime=2006-01-02"`
	CargaHoraria     *int            `json:"carga_horaria" validate:"omitempty,gt=0"`
	EmpresaPrincipal *string         `json:"empresa_principal" validate:"omitempty,max=255"`
	Observacoes      *string         `json:"observacoes"`
	Locais           *[]LocalPayload `json:"locais" validate:"omitempty,min=1,dive"`
}

// EstagioStatusUpdateRequest describes the payload for an explicit status change.
type EstagioStatusUpdateRequest struct {
	Status           string  `json:"status" validate:"required"`
	ConcluidoEm      *string `json:"concluido_em" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	MotivoReprovacao *string `json:"motivo_reprovacao"`
	Observacoes      *string `json:"observacoes"`
}

// ResendConfirmacaoRequest optionally redirects the convocation email.
type ResendConfirmacaoRequest struct {
	DestinatarioAlternativo *string `json:"destinatario_alternativo" validate:"omitempty,email"`
}

// EstagioListQuery carries list filters.
type EstagioListQuery struct {
	TurmaID  string `json:"turma_id" validate:"omitempty,uuid4"`
	Status   string `json:"status" validate:"omitempty,oneof=PENDENTE EM_ANDAMENTO CONCLUIDO REPROVADO CANCELADO"`
	Busca    string `json:"busca"`
	Page     int    `json:"page" validate:"omitempty,gte=1"`
	PageSize int    `json:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// LocalResponse is the serialized representation of a placement site.
type LocalResponse struct {
	ID                  string `json:"id"`
	Empresa             string `json:"empresa"`
	Logradouro          string `json:"logradouro"`
	Numero              string `json:"numero"`
	Complemento         string `json:"complemento"`
	Bairro              string `json:"bairro"`
	Cidade              string `json:"cidade"`
	UF                  string `json:"uf"`
	CEP                 string `json:"cep"`
	ContatoNome         string `json:"contato_nome"`
	ContatoTelefone     string `json:"contato_telefone"`
	ContatoEmail        string `json:"contato_email"`
	HorarioInicio       string `json:"horario_inicio"`
	HorarioFim          string `json:"horario_fim"`
	DiasSemana          []int  `json:"dias_semana"`
	CargaHorariaSemanal *int   `json:"carga_horaria_semanal"`
	Referencia          string `json:"referencia"`
}

// ConfirmacaoResponse is the serialized confirmation record. The token itself
// is never echoed here.
type ConfirmacaoResponse struct {
	ConfirmadoEm       *time.Time `json:"confirmado_em"`
	Protocolo          *string    `json:"protocolo"`
	IP                 string     `json:"ip,omitempty"`
	UserAgent          string     `json:"user_agent,omitempty"`
	DispositivoTipo    string     `json:"dispositivo_tipo,omitempty"`
	DispositivoDesc    string     `json:"dispositivo_descricao,omitempty"`
	DispositivoID      string     `json:"dispositivo_id,omitempty"`
	SistemaOperacional string     `json:"sistema_operacional,omitempty"`
	Navegador          string     `json:"navegador,omitempty"`
	Localizacao        string     `json:"localizacao,omitempty"`
}

// EstagioResponse is the serialized representation returned to API clients.
type EstagioResponse struct {
	ID               string               `json:"id"`
	CursoID          string               `json:"curso_id"`
	TurmaID          string               `json:"turma_id"`
	InscricaoID      string               `json:"inscricao_id"`
	AlunoID          string               `json:"aluno_id"`
	Nome             string               `json:"nome"`
	Descricao        string               `json:"descricao"`
	Obrigatorio      bool                 `json:"obrigatorio"`
	Status           string               `json:"status"`
	DataInicio       string               `json:"data_inicio"`
	DataFim          string               `json:"data_fim"`
	CargaHoraria     *int                 `json:"carga_horaria"`
	EmpresaPrincipal string               `json:"empresa_principal"`
	Observacoes      string               `json:"observacoes"`
	ConfirmadoEm     *time.Time           `json:"confirmado_em"`
	ConcluidoEm      *time.Time           `json:"concluido_em"`
	ReprovadoEm      *time.Time           `json:"reprovado_em"`
	MotivoReprovacao string               `json:"motivo_reprovacao,omitempty"`
	UltimoLembreteEm *time.Time           `json:"ultimo_lembrete_em"`
	Locais           []LocalResponse      `json:"locais"`
	Confirmacao      *ConfirmacaoResponse `json:"confirmacao,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// EstagioCreatedResponse is returned only by the create operation and is the
// only place the confirmation token is ever exposed.
type EstagioCreatedResponse struct {
	EstagioResponse
	TokenConfirmacao string `json:"token_confirmacao"`
}

// NotificacaoLogResponse is one entry of the append-only notification log.
type NotificacaoLogResponse struct {
	ID           string    `json:"id"`
	Tipo         string    `json:"tipo"`
	Canal        string    `json:"canal"`
	Destinatario string    `json:"destinatario"`
	EnviadoEm    time.Time `json:"enviado_em"`
	Detalhe      string    `json:"detalhe"`
}

// NewLocalResponse converts a model into a DTO.
func NewLocalResponse(model models.EstagioLocal) LocalResponse {
	var dias []int
	if len(model.DiasSemana) > 0 {
		_ = json.Unmarshal(model.DiasSemana, &dias)
	}

	return LocalResponse{
		ID:                  model.ID,
		Empresa:             model.Empresa,
		Logradouro:          model.Logradouro,
		Numero:              model.Numero,
		Complemento:         model.Complemento,
		Bairro:              model.Bairro,
		Cidade:              model.Cidade,
		UF:                  model.UF,
		CEP:                 model.CEP,
		ContatoNome:         model.ContatoNome,
		ContatoTelefone:     model.ContatoTelefone,
		ContatoEmail:        model.ContatoEmail,
		HorarioInicio:       model.HorarioInicio,
		HorarioFim:          model.HorarioFim,
		DiasSemana:          dias,
		CargaHorariaSemanal: model.CargaHorariaSemanal,
		Referencia:          model.Referencia,
	}
}

// NewConfirmacaoResponse converts a confirmation model into its DTO, omitting the token.
func NewConfirmacaoResponse(model models.EstagioConfirmacao) ConfirmacaoResponse {
	return ConfirmacaoResponse{
		ConfirmadoEm:       model.ConfirmadoEm,
		Protocolo:          model.Protocolo,
		IP:                 model.IP,
		UserAgent:          model.UserAgent,
		DispositivoTipo:    model.DispositivoTipo,
		DispositivoDesc:    model.DispositivoDesc,
		DispositivoID:      model.DispositivoID,
		SistemaOperacional: model.SistemaOperacional,
		Navegador:          model.Navegador,
		Localizacao:        model.Localizacao,
	}
}

// NewEstagioResponse converts a model into a DTO.
func NewEstagioResponse(model models.Estagio) EstagioResponse {
	locais := make([]LocalResponse, 0, len(model.Locais))
	for _, local := range model.Locais {
		locais = append(locais, NewLocalResponse(local))
	}

	response := EstagioResponse{
		ID:               model.ID,
		CursoID:          model.CursoID,
		TurmaID:          model.TurmaID,
		InscricaoID:      model.InscricaoID,
		AlunoID:          model.AlunoID,
		Nome:             model.Nome,
		Descricao:        model.Descricao,
		Obrigatorio:      model.Obrigatorio,
		Status:           string(model.Status),
		DataInicio:       model.DataInicio.Format(dateLayout),
		DataFim:          model.DataFim.Format(dateLayout),
		CargaHoraria:     model.CargaHoraria,
		EmpresaPrincipal: model.EmpresaPrincipal,
		Observacoes:      model.Observacoes,
		ConfirmadoEm:     model.ConfirmadoEm,
		ConcluidoEm:      model.ConcluidoEm,
		ReprovadoEm:      model.ReprovadoEm,
		MotivoReprovacao: model.MotivoReprovacao,
		UltimoLembreteEm: model.UltimoLembreteEm,
		Locais:           locais,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}

	if model.Confirmacao != nil {
		confirmacao := NewConfirmacaoResponse(*model.Confirmacao)
		response.Confirmacao = &confirmacao
	}

	return response
}

// NewEstagioResponseSlice converts a slice of models into DTOs.
func NewEstagioResponseSlice(estagios []models.Estagio) []EstagioResponse {
	responses := make([]EstagioResponse, 0, len(estagios))
	for _, estagio := range estagios {
		responses = append(responses, NewEstagioResponse(estagio))
	}

	return responses
}

// NewNotificacaoLogResponse converts a log entry into its DTO.
func NewNotificacaoLogResponse(model models.NotificacaoLog) NotificacaoLogResponse {
	return NotificacaoLogResponse{
		ID:           model.ID,
		Tipo:         string(model.Tipo),
		Canal:        model.Canal,
		Destinatario: model.Destinatario,
		EnviadoEm:    model.EnviadoEm,
		Detalhe:      model.Detalhe,
	}
}

// NewNotificacaoLogResponseSlice converts a slice of log entries into DTOs.
func NewNotificacaoLogResponseSlice(entries []models.NotificacaoLog) []NotificacaoLogResponse {
	responses := make([]NotificacaoLogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewNotificacaoLogResponse(entry))
	}

	return responses
}
