package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jhoicas/labstock-api/internal/application/dto"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Nombres de campo según el tag json para que el cliente los reconozca.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		}
		return name
	})
	return v
}

// validationDetails traduce los errores del validador a detalles por campo.
func validationDetails(err error) []dto.FieldDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]dto.FieldDetail, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, dto.FieldDetail{Field: e.Field(), Message: validationMessage(e)})
	}
	return out
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "campo requerido"
	case "oneof":
		return "debe ser uno de: " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "máximo " + e.Param() + " caracteres"
		}
		return "debe ser como máximo " + e.Param()
	case "min":
		return "debe ser como mínimo " + e.Param()
	case "gte":
		return "debe ser mayor o igual a " + e.Param()
	default:
		return "valor inválido"
	}
}
