package repository

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/erp-core/internal/domain"
)

// Límites de paginación de los listados.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Ordering campo de orden validado contra una lista blanca.
type Ordering struct {
	Field string
	Desc  bool
}

// String forma "campo" o "-campo".
func (o Ordering) String() string {
	if o.Desc {
		return "-" + o.Field
	}
	return o.Field
}

// ParseOrdering valida raw ("campo" o "-campo") contra allowed. Vacío usa def.
// Cualquier campo fuera de la lista es un ValidationError; nunca se pasa tal cual al almacenamiento.
func ParseOrdering(raw string, allowed []string, def string) (Ordering, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = def
	}
	o := Ordering{Field: raw}
	if strings.HasPrefix(raw, "-") {
		o = Ordering{Field: raw[1:], Desc: true}
	}
	for _, a := range allowed {
		if a == o.Field {
			return o, nil
		}
	}
	opts := make([]string, 0, len(allowed)*2)
	for _, a := range allowed {
		opts = append(opts, a, "-"+a)
	}
	sort.Strings(opts)
	return Ordering{}, domain.Invalid("ordering", fmt.Sprintf("ordering inválido. Permitidos: %s", strings.Join(opts, ", ")))
}

// PageRequest página (desde 1) y tamaño.
type PageRequest struct {
	Page     int
	PageSize int
}

// Offset filas a saltar.
func (p PageRequest) Offset() int { return (p.Page - 1) * p.PageSize }

// ParsePage valida page (>=1, default 1) y page_size (1..500, default 50) desde texto.
func ParsePage(rawPage, rawSize string) (PageRequest, error) {
	page, err := parseBoundedInt("page", rawPage, 1, 1, 0)
	if err != nil {
		return PageRequest{}, err
	}
	size, err := parseBoundedInt("page_size", rawSize, DefaultPageSize, 1, MaxPageSize)
	if err != nil {
		return PageRequest{}, err
	}
	return PageRequest{Page: page, PageSize: size}, nil
}

// NewPage valida valores ya numéricos; cero significa default.
func NewPage(page, size int) (PageRequest, error) {
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		return PageRequest{}, domain.Invalid("page", "page debe ser >= 1")
	}
	if size < 1 || size > MaxPageSize {
		return PageRequest{}, domain.Invalid("page_size", fmt.Sprintf("page_size debe estar entre 1 y %d", MaxPageSize))
	}
	return PageRequest{Page: page, PageSize: size}, nil
}

func parseBoundedInt(field, raw string, def, min, max int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Invalid(field, field+" debe ser un entero")
	}
	if v < min {
		return 0, domain.Invalid(field, fmt.Sprintf("%s debe ser >= %d", field, min))
	}
	if max > 0 && v > max {
		return 0, domain.Invalid(field, fmt.Sprintf("%s debe ser <= %d", field, max))
	}
	return v, nil
}

// Page resultado paginado.
type Page[T any] struct {
	Items    []*T
	Total    int
	Page     int
	PageSize int
	Ordering string
}

// TimeRange rango inclusivo sobre created_at; nil = abierto.
type TimeRange struct {
	From *time.Time
	To   *time.Time
}

// Contains true si t cae dentro del rango.
func (r TimeRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// ParseTimeRange acepta YYYY-MM-DD o RFC3339. Una fecha sola en "to" cubre el día completo.
func ParseTimeRange(rawFrom, rawTo string) (TimeRange, error) {
	var r TimeRange
	from, err := parseTimeBound("from", rawFrom, false)
	if err != nil {
		return r, err
	}
	to, err := parseTimeBound("to", rawTo, true)
	if err != nil {
		return r, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return r, domain.Invalid("to", "to debe ser posterior a from")
	}
	r.From, r.To = from, to
	return r, nil
}

func parseTimeBound(field, raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if d, err := time.Parse(time.DateOnly, raw); err == nil {
		if endOfDay {
			d = d.Add(24*time.Hour - time.Nanosecond)
		}
		return &d, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, domain.Invalid(field, "Formato de fecha inválido. Usar YYYY-MM-DD o ISO datetime.")
	}
	return &t, nil
}
