package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EstagioStatus enumerates the lifecycle states of an internship.
type EstagioStatus string

const (
	StatusPendente    EstagioStatus = "PENDENTE"
	StatusEmAndamento EstagioStatus = "EM_ANDAMENTO"
	StatusConcluido   EstagioStatus = "CONCLUIDO"
	StatusReprovado   EstagioStatus = "REPROVADO"
	StatusCancelado   EstagioStatus = "CANCELADO"
)

// IsTerminal reports whether the status admits no further automatic transitions.
func (s EstagioStatus) IsTerminal() bool {
	switch s {
	case StatusConcluido, StatusReprovado, StatusCancelado:
		return true
	}
	return false
}

// IsValid reports whether the value is one of the known lifecycle states.
func (s EstagioStatus) IsValid() bool {
	switch s {
	case StatusPendente, StatusEmAndamento, StatusConcluido, StatusReprovado, StatusCancelado:
		return true
	}
	return false
}

// Estagio is one supervised internship placement of a student enrollment.
type Estagio struct {
	ID               string        `gorm:"type:uuid;primaryKey" json:"id"`
	CursoID          string        `gorm:"type:uuid;not null;index" json:"curso_id"`
	TurmaID          string        `gorm:"type:uuid;not null;index" json:"turma_id"`
	InscricaoID      string        `gorm:"type:uuid;not null;index" json:"inscricao_id"`
	AlunoID          string        `gorm:"type:uuid;not null;index" json:"aluno_id"`
	Nome             string        `gorm:"size:255;not null" json:"nome"`
	Descricao        string        `gorm:"type:text" json:"descricao"`
	Obrigatorio      bool          `gorm:"not null;default:false" json:"obrigatorio"`
	Status           EstagioStatus `gorm:"size:32;not null;index" json:"status"`
	DataInicio       time.Time     `gorm:"not null" json:"data_inicio"`
	DataFim          time.Time     `gorm:"not null;index" json:"data_fim"`
	CargaHoraria     *int          `json:"carga_horaria"`
	EmpresaPrincipal string        `gorm:"size:255" json:"empresa_principal"`
	Observacoes      string        `gorm:"type:text" json:"observacoes"`
	ConfirmadoEm     *time.Time    `json:"confirmado_em"`
	ConcluidoEm      *time.Time    `json:"concluido_em"`
	ReprovadoEm      *time.Time    `json:"reprovado_em"`
	MotivoReprovacao string        `gorm:"type:text" json:"motivo_reprovacao"`
	UltimoLembreteEm *time.Time    `json:"ultimo_lembrete_em"`
	CriadoPor        *uint         `json:"criado_por"`
	AtualizadoPor    *uint         `json:"atualizado_por"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`

	Locais      []EstagioLocal      `gorm:"constraint:OnDelete:CASCADE" json:"locais"`
	Confirmacao *EstagioConfirmacao `gorm:"constraint:OnDelete:CASCADE" json:"confirmacao,omitempty"`
}

// BeforeCreate assigns an application-side uuid when none is set.
func (e *Estagio) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// EstagioLocal is one physical placement site of an internship.
type EstagioLocal struct {
	ID                  string         `gorm:"type:uuid;primaryKey" json:"id"`
	EstagioID           string         `gorm:"type:uuid;not null;index" json:"estagio_id"`
	Empresa             string         `gorm:"size:255;not null" json:"empresa"`
	Logradouro          string         `gorm:"size:255" json:"logradouro"`
	Numero              string         `gorm:"size:32" json:"numero"`
	Complemento         string         `gorm:"size:128" json:"complemento"`
	Bairro              string         `gorm:"size:128" json:"bairro"`
	Cidade              string         `gorm:"size:128" json:"cidade"`
	UF                  string         `gorm:"size:2" json:"uf"`
	CEP                 string         `gorm:"size:16" json:"cep"`
	ContatoNome         string         `gorm:"size:255" json:"contato_nome"`
	ContatoTelefone     string         `gorm:"size:32" json:"contato_telefone"`
	ContatoEmail        string         `gorm:"size:255" json:"contato_email"`
	HorarioInicio       string         `gorm:"size:8" json:"horario_inicio"`
	HorarioFim          string         `gorm:"size:8" json:"horario_fim"`
	DiasSemana          datatypes.JSON `json:"dias_semana"`
	CargaHorariaSemanal *int           `json:"carga_horaria_semanal"`
	Referencia          string         `gorm:"type:text" json:"referencia"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// BeforeCreate assigns an application-side uuid when none is set.
func (l *EstagioLocal) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// EstagioConfirmacao holds the single confirmation token of an internship and
// the audit metadata captured when the student acknowledges the convocation.
type EstagioConfirmacao struct {
	ID                 string     `gorm:"type:uuid;primaryKey" json:"id"`
	EstagioID          string     `gorm:"type:uuid;not null;uniqueIndex" json:"estagio_id"`
	Token              string     `gorm:"size:64;not null;uniqueIndex" json:"-"`
	ConfirmadoEm       *time.Time `json:"confirmado_em"`
	Protocolo          *string    `gorm:"size:32" json:"protocolo"`
	IP                 string     `gorm:"size:64" json:"ip"`
	UserAgent          string     `gorm:"size:512" json:"user_agent"`
	DispositivoTipo    string     `gorm:"size:64" json:"dispositivo_tipo"`
	DispositivoDesc    string     `gorm:"size:255" json:"dispositivo_descricao"`
	DispositivoID      string     `gorm:"size:128" json:"dispositivo_id"`
	SistemaOperacional string     `gorm:"size:128" json:"sistema_operacional"`
	Navegador          string     `gorm:"size:128" json:"navegador"`
	Localizacao        string     `gorm:"size:255" json:"localizacao"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// BeforeCreate assigns an application-side uuid when none is set.
func (c *EstagioConfirmacao) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Confirmado reports whether the token has already been consumed.
func (c EstagioConfirmacao) Confirmado() bool {
	return c.ConfirmadoEm != nil
}
