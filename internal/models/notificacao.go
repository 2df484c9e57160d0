package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificacaoTipo enumerates the kinds of outbound communication recorded in
// the notification log.
type NotificacaoTipo string

const (
	NotificacaoConvocacaoPendente  NotificacaoTipo = "convocacao_pendente"
	NotificacaoInicioProximo       NotificacaoTipo = "inicio_proximo"
	NotificacaoFimProximo          NotificacaoTipo = "fim_proximo"
	NotificacaoConclusaoSolicitada NotificacaoTipo = "conclusao_solicitada"
)

// NotificacaoLog is an append-only record of one outbound communication tied
// to an internship. Entries are never updated or deleted.
type NotificacaoLog struct {
	ID           string          `gorm:"type:uuid;primaryKey" json:"id"`
	EstagioID    string          `gorm:"type:uuid;not null;index" json:"estagio_id"`
	Tipo         NotificacaoTipo `gorm:"size:64;not null" json:"tipo"`
	Canal        string          `gorm:"size:32;not null;default:email" json:"canal"`
	Destinatario string          `gorm:"size:255;not null" json:"destinatario"`
	EnviadoEm    time.Time       `gorm:"not null" json:"enviado_em"`
	Detalhe      string          `gorm:"type:text" json:"detalhe"`
	CreatedAt    time.Time       `json:"created_at"`
}

// BeforeCreate assigns an application-side uuid when none is set.
func (n *NotificacaoLog) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
