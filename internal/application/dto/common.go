package dto

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

// PageResponse metadatos de página en respuestas.
type PageResponse[T any] struct {
	Items    []T    `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Ordering string `json:"ordering"`
}

// NewPage mapea una página de entidades con conv.
func NewPage[E, T any](p *repository.Page[E], conv func(*E) T) PageResponse[T] {
	items := make([]T, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, conv(it))
	}
	return PageResponse[T]{Items: items, Total: p.Total, Page: p.Page, PageSize: p.PageSize, Ordering: p.Ordering}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate aplica los tags validate del request y devuelve *domain.ValidationError con un error por campo.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var fe domain.FieldErrors
	for _, e := range verrs {
		fe.Add(e.Field(), "%s", message(e))
	}
	return fe.Err("request inválido", nil)
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " es requerido"
	case "max":
		return fmt.Sprintf("%s admite hasta %s caracteres", e.Field(), e.Param())
	case "gt":
		return fmt.Sprintf("%s debe ser > %s", e.Field(), e.Param())
	case "lte":
		return fmt.Sprintf("%s debe ser <= %s", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de: %s", e.Field(), e.Param())
	case "email":
		return e.Field() + " no es un email válido"
	default:
		return e.Field() + " inválido"
	}
}
