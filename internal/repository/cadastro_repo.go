package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/sge-estagio-api/internal/models"
)

// CadastroRepository reads the course/cohort/enrollment records owned by the
// catalog and enrollment subsystems. This service only validates references
// and resolves the display fields needed for outbound messages.
type CadastroRepository interface {
	GetCurso(ctx context.Context, id string) (models.Curso, error)
	GetTurma(ctx context.Context, cursoID, id string) (models.Turma, error)
	GetInscricao(ctx context.Context, turmaID, id string) (models.Inscricao, error)
	GetUsuario(ctx context.Context, id uint) (models.Usuario, error)
}

type cadastroRepository struct {
	db *gorm.DB
}

// NewCadastroRepository instantiates a GORM-backed repository.
func NewCadastroRepository(db *gorm.DB) CadastroRepository {
	return &cadastroRepository{db: db}
}

func (r *cadastroRepository) GetCurso(ctx context.Context, id string) (models.Curso, error) {
	var curso models.Curso
	if err := r.db.WithContext(ctx).First(&curso, "id = ?", id).Error; err != nil {
		return models.Curso{}, err
	}

	return curso, nil
}

func (r *cadastroRepository) GetTurma(ctx context.Context, cursoID, id string) (models.Turma, error) {
	var turma models.Turma
	query := r.db.WithContext(ctx)
	if cursoID != "" {
		query = query.Where("curso_id = ?", cursoID)
	}
	if err := query.First(&turma, "id = ?", id).Error; err != nil {
		return models.Turma{}, err
	}

	return turma, nil
}

func (r *cadastroRepository) GetInscricao(ctx context.Context, turmaID, id string) (models.Inscricao, error) {
	var inscricao models.Inscricao
	query := r.db.WithContext(ctx).Preload("Aluno")
	if turmaID != "" {
		query = query.Where("turma_id = ?", turmaID)
	}
	if err := query.First(&inscricao, "id = ?", id).Error; err != nil {
		return models.Inscricao{}, err
	}

	return inscricao, nil
}

func (r *cadastroRepository) GetUsuario(ctx context.Context, id uint) (models.Usuario, error) {
	var usuario models.Usuario
	if err := r.db.WithContext(ctx).First(&usuario, "id = ?", id).Error; err != nil {
		return models.Usuario{}, err
	}

	return usuario, nil
}
