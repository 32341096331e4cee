// Package validation valida payloads de entrada com as tags `validate`.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Usa o nome do campo no JSON nas mensagens de erro
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	return v
}

// Struct valida s e converte a primeira violação em erro de validação do domínio
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return domain.NewValidationError("", err.Error())
	}

	first := validationErrors[0]
	return domain.NewValidationError(first.Field(), describe(first))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obrigatório"
	case "email":
		return "email inválido"
	case "gt":
		return fmt.Sprintf("deve ser maior que %s", fe.Param())
	default:
		return fmt.Sprintf("falhou na regra %s", fe.Tag())
	}
}
