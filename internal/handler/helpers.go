package handler

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/sge-estagio-api/internal/service"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func alunoIDFromContext(c *fiber.Ctx) string {
	if v := c.Locals("aluno_id"); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// fieldErrorsFromValidator flattens validator tag failures into the
// field-to-messages map carried by validation error responses.
func fieldErrorsFromValidator(errs validator.ValidationErrors) service.FieldErrors {
	fields := make(service.FieldErrors, len(errs))
	for _, err := range errs {
		field := toSnakeCase(err.Field())
		fields[field] = append(fields[field], validationMessage(err))
	}
	return fields
}

func validationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "campo obrigatório"
	case "email":
		return "email inválido"
	case "min":
		return "valor abaixo do mínimo (" + err.Param() + ")"
	case "max":
		return "valor acima do máximo (" + err.Param() + ")"
	case "datetime":
		return "formato de data/hora inválido"
	case "oneof":
		return "valor fora do conjunto permitido"
	default:
		return "valor inválido (" + err.Tag() + ")"
	}
}

func toSnakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
