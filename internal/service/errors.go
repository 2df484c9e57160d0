package service

import (
	"errors"
	"fmt"
	"strings"
)

// Domain conditions surfaced by the internship service. Handlers translate
// these into stable machine-readable response codes.
var (
	ErrCursoNotFound       = errors.New("curso not found")
	ErrTurmaNotFound       = errors.New("turma not found")
	ErrInscricaoNotFound   = errors.New("inscricao not found")
	ErrEstagioNotFound     = errors.New("estagio not found")
	ErrConfirmacaoInvalida = errors.New("confirmation token invalid")
	ErrForbidden           = errors.New("caller lacks rights over the resource")
)

// FieldErrors maps field names to validation messages.
type FieldErrors map[string][]string

// ValidationError reports domain-level input problems that struct tags cannot
// express, such as cross-field date ordering.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, messages := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(messages, "; ")))
	}

	return "validation failed: " + strings.Join(parts, ", ")
}

func newFieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: FieldErrors{field: {message}}}
}
