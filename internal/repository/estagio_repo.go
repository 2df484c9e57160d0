package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/sge-estagio-api/internal/models"
)

// EstagioFilter describes pagination & search options for internship listings.
type EstagioFilter struct {
	TurmaID  string
	Status   models.EstagioStatus
	Busca    string
	Page     int
	PageSize int
}

// EstagioRepository defines persistence operations for internships.
type EstagioRepository interface {
	CreateWithGraph(ctx context.Context, estagio *models.Estagio) error
	GetByID(ctx context.Context, id string) (models.Estagio, error)
	ListByCurso(ctx context.Context, cursoID string, filter EstagioFilter) ([]models.Estagio, int64, error)
	ListByInscricao(ctx context.Context, inscricaoID string) ([]models.Estagio, error)
	Update(ctx context.Context, estagio *models.Estagio) error
	ReplaceLocais(ctx context.Context, estagioID string, locais []models.EstagioLocal) error
	FindExpiring(ctx context.Context, now time.Time, horizon, dedup time.Duration) ([]models.Estagio, error)
	MarkLembrete(ctx context.Context, estagioID string, at time.Time, entry *models.NotificacaoLog) error
	Ping(ctx context.Context) error
}

type estagioRepository struct {
	db *gorm.DB
}

// NewEstagioRepository instantiates a GORM-backed repository.
func NewEstagioRepository(db *gorm.DB) EstagioRepository {
	return &estagioRepository{db: db}
}

// CreateWithGraph persists the internship together with its locations and
// confirmation record in a single transaction. All three exist or none does.
func (r *estagioRepository) CreateWithGraph(ctx context.Context, estagio *models.Estagio) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(estagio).Error
	})
}

func (r *estagioRepository) GetByID(ctx context.Context, id string) (models.Estagio, error) {
	var estagio models.Estagio
	err := r.db.WithContext(ctx).
		Preload("Locais").
		Preload("Confirmacao").
		First(&estagio, "id = ?", id).Error
	if err != nil {
		return models.Estagio{}, err
	}

	return estagio, nil
}

func (r *estagioRepository) ListByCurso(ctx context.Context, cursoID string, filter EstagioFilter) ([]models.Estagio, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Estagio{}).Where("curso_id = ?", cursoID)

	if filter.TurmaID != "" {
		query = query.Where("turma_id = ?", filter.TurmaID)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if filter.Busca != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Busca)) + "%"
		query = query.Where("LOWER(nome) LIKE ? OR LOWER(empresa_principal) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("data_fim ASC")

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var estagios []models.Estagio
	if err := query.Preload("Locais").Preload("Confirmacao").Find(&estagios).Error; err != nil {
		return nil, 0, err
	}

	return estagios, total, nil
}

func (r *estagioRepository) ListByInscricao(ctx context.Context, inscricaoID string) ([]models.Estagio, error) {
	var estagios []models.Estagio
	err := r.db.WithContext(ctx).
		Where("inscricao_id = ?", inscricaoID).
		Order("data_inicio ASC").
		Preload("Locais").
		Preload("Confirmacao").
		Find(&estagios).Error
	if err != nil {
		return nil, err
	}

	return estagios, nil
}

func (r *estagioRepository) Update(ctx context.Context, estagio *models.Estagio) error {
	return r.db.WithContext(ctx).
		Omit("Locais", "Confirmacao").
		Save(estagio).Error
}

// ReplaceLocais swaps the entire location set atomically. Partial merges are
// never performed.
func (r *estagioRepository) ReplaceLocais(ctx context.Context, estagioID string, locais []models.EstagioLocal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("estagio_id = ?", estagioID).Delete(&models.EstagioLocal{}).Error; err != nil {
			return err
		}

		for i := range locais {
			locais[i].EstagioID = estagioID
		}

		return tx.Create(&locais).Error
	})
}

// FindExpiring selects active internships ending inside [now, now+horizon]
// that have not been reminded within the dedup window.
func (r *estagioRepository) FindExpiring(ctx context.Context, now time.Time, horizon, dedup time.Duration) ([]models.Estagio, error) {
	var estagios []models.Estagio
	cutoff := now.Add(-dedup)
	err := r.db.WithContext(ctx).
		Where("status IN ?", []models.EstagioStatus{models.StatusPendente, models.StatusEmAndamento}).
		Where("data_fim >= ? AND data_fim <= ?", now, now.Add(horizon)).
		Where("ultimo_lembrete_em IS NULL OR ultimo_lembrete_em < ?", cutoff).
		Order("data_fim ASC").
		Find(&estagios).Error
	if err != nil {
		return nil, err
	}

	return estagios, nil
}

// MarkLembrete stamps the reminder timestamp and appends the notification log
// entry in one transaction so a concurrent tick cannot double-stamp.
func (r *estagioRepository) MarkLembrete(ctx context.Context, estagioID string, at time.Time, entry *models.NotificacaoLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Estagio{}).
			Where("id = ?", estagioID).
			Update("ultimo_lembrete_em", at)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Create(entry).Error
	})
}

// Ping probes the underlying connection. The expiration watcher uses it as a
// liveness pre-check before each tick.
func (r *estagioRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}
