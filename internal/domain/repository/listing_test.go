package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var financeOrdering = []string{"created_at", "paid_at", "amount", "id"}

func TestParseOrdering(t *testing.T) {
	o, err := repository.ParseOrdering("", financeOrdering, "-created_at")
	require.NoError(t, err)
	assert.Equal(t, repository.Ordering{Field: "created_at", Desc: true}, o)

	o, err = repository.ParseOrdering(" amount ", financeOrdering, "-created_at")
	require.NoError(t, err)
	assert.Equal(t, "amount", o.String())

	for _, raw := range []string{"notes", "-", "amount; DROP TABLE x", "--id"} {
		_, err = repository.ParseOrdering(raw, financeOrdering, "-created_at")
		assert.ErrorIs(t, err, domain.ErrInvalidInput, raw)
	}
}

func TestParsePage(t *testing.T) {
	p, err := repository.ParsePage("", "")
	require.NoError(t, err)
	assert.Equal(t, repository.PageRequest{Page: 1, PageSize: 50}, p)

	p, err = repository.ParsePage("3", "500")
	require.NoError(t, err)
	assert.Equal(t, 1000, p.Offset())

	for _, c := range [][2]string{{"0", ""}, {"x", ""}, {"", "0"}, {"", "501"}} {
		_, err = repository.ParsePage(c[0], c[1])
		assert.ErrorIs(t, err, domain.ErrInvalidInput, c)
	}
}

func TestNewPage(t *testing.T) {
	p, err := repository.NewPage(0, 0)
	require.NoError(t, err)
	assert.Equal(t, repository.PageRequest{Page: 1, PageSize: 50}, p)

	_, err = repository.NewPage(-1, 10)
	assert.Error(t, err)
	_, err = repository.NewPage(1, 501)
	assert.Error(t, err)
}

func TestParseTimeRange(t *testing.T) {
	r, err := repository.ParseTimeRange("2024-05-01", "2024-05-31")
	require.NoError(t, err)
	assert.True(t, r.Contains(time.Date(2024, 5, 31, 23, 59, 0, 0, time.UTC)), "to de fecha sola cubre el día")
	assert.False(t, r.Contains(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 4, 30, 23, 59, 0, 0, time.UTC)))

	r, err = repository.ParseTimeRange("2024-05-01T10:00:00Z", "")
	require.NoError(t, err)
	assert.Nil(t, r.To)
	assert.True(t, r.Contains(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))

	_, err = repository.ParseTimeRange("ayer", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = repository.ParseTimeRange("2024-05-02", "2024-05-01T00:00:00Z")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
