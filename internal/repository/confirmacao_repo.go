package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/sge-estagio-api/internal/models"
)

// ConfirmacaoRepository defines persistence operations for confirmation records.
type ConfirmacaoRepository interface {
	GetByToken(ctx context.Context, token string) (models.EstagioConfirmacao, error)
	GetByEstagio(ctx context.Context, estagioID string) (models.EstagioConfirmacao, error)
	Confirm(ctx context.Context, confirmacao *models.EstagioConfirmacao, estagio *models.Estagio) error
}

type confirmacaoRepository struct {
	db *gorm.DB
}

// NewConfirmacaoRepository instantiates a GORM-backed repository.
func NewConfirmacaoRepository(db *gorm.DB) ConfirmacaoRepository {
	return &confirmacaoRepository{db: db}
}

func (r *confirmacaoRepository) GetByToken(ctx context.Context, token string) (models.EstagioConfirmacao, error) {
	var confirmacao models.EstagioConfirmacao
	if err := r.db.WithContext(ctx).First(&confirmacao, "token = ?", token).Error; err != nil {
		return models.EstagioConfirmacao{}, err
	}

	return confirmacao, nil
}

func (r *confirmacaoRepository) GetByEstagio(ctx context.Context, estagioID string) (models.EstagioConfirmacao, error) {
	var confirmacao models.EstagioConfirmacao
	if err := r.db.WithContext(ctx).First(&confirmacao, "estagio_id = ?", estagioID).Error; err != nil {
		return models.EstagioConfirmacao{}, err
	}

	return confirmacao, nil
}

// Confirm persists the stamped confirmation record together with the updated
// internship in a single transaction.
func (r *confirmacaoRepository) Confirm(ctx context.Context, confirmacao *models.EstagioConfirmacao, estagio *models.Estagio) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(confirmacao).Error; err != nil {
			return err
		}

		return tx.Omit("Locais", "Confirmacao").Save(estagio).Error
	})
}
