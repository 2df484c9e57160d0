package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/sge-estagio-api/internal/models"
)

// NotificacaoRepository persists the append-only notification log. Entries
// are never updated or deleted.
type NotificacaoRepository interface {
	Append(ctx context.Context, entry *models.NotificacaoLog) error
	ListByEstagio(ctx context.Context, estagioID string) ([]models.NotificacaoLog, error)
}

type notificacaoRepository struct {
	db *gorm.DB
}

// NewNotificacaoRepository instantiates a GORM-backed repository.
func NewNotificacaoRepository(db *gorm.DB) NotificacaoRepository {
	return &notificacaoRepository{db: db}
}

func (r *notificacaoRepository) Append(ctx context.Context, entry *models.NotificacaoLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *notificacaoRepository) ListByEstagio(ctx context.Context, estagioID string) ([]models.NotificacaoLog, error) {
	var entries []models.NotificacaoLog
	err := r.db.WithContext(ctx).
		Where("estagio_id = ?", estagioID).
		Order("enviado_em DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}
