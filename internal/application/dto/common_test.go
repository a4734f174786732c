package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/domain"
)

func TestValidate_CamposConNombreJSON(t *testing.T) {
	err := dto.Validate(&dto.RecordMovementRequest{MovementType: "MOVE"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	got := map[string]string{}
	for _, f := range ve.Fields {
		got[f.Field] = f.Message
	}
	assert.Equal(t, "product_id es requerido", got["product_id"])
	assert.Contains(t, got["movement_type"], "uno de")
	assert.Equal(t, "quantity debe ser > 0", got["quantity"])
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, dto.Validate(&dto.RecordMovementRequest{ProductID: "p1", MovementType: "in", Quantity: 3}))
	assert.NoError(t, dto.Validate(&dto.UpdateSupplierRequest{}))

	bad := "no-es-email"
	err := dto.Validate(&dto.UpdateSupplierRequest{Email: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidate_CantidadFueraDeRango(t *testing.T) {
	err := dto.Validate(&dto.RecordMovementRequest{ProductID: "p1", MovementType: "IN", Quantity: 3_000_000_000})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "quantity", ve.Fields[0].Field)
	assert.Equal(t, "quantity debe ser <= 2147483647", ve.Fields[0].Message)

	big := 2147483648
	assert.ErrorIs(t, dto.Validate(&dto.UpdateSalesLineRequest{Quantity: &big}), domain.ErrInvalidInput)
	assert.NoError(t, dto.Validate(&dto.AddPurchaseLineRequest{ProductID: "p1", Quantity: 2147483647}))
}
