package models

import "time"

// The entities below are owned by other subsystems of the platform (course
// catalog and enrollment management). This service only reads the identifiers
// and display fields it needs to validate references and compose messages.

// Curso is a course offered by the institution.
type Curso struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Nome      string    `gorm:"size:255;not null" json:"nome"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Turma is a scheduled cohort of a course.
type Turma struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CursoID   string    `gorm:"type:uuid;not null;index" json:"curso_id"`
	Nome      string    `gorm:"size:255;not null" json:"nome"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Aluno is a student known to the platform.
type Aluno struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Nome      string    `gorm:"size:255;not null" json:"nome"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Usuario is an administrative principal of the platform. Estágio records
// reference usuarios as creators/updaters and the expiration watcher resolves
// the creator as the responsible party for reminder emails.
type Usuario struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Nome      string    `gorm:"size:255;not null" json:"nome"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Inscricao is a student's registration in a cohort.
type Inscricao struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	TurmaID   string    `gorm:"type:uuid;not null;index" json:"turma_id"`
	AlunoID   string    `gorm:"type:uuid;not null;index" json:"aluno_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Aluno *Aluno `json:"aluno,omitempty"`
}
