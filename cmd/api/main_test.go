package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/erp-core/internal/application/apptest"
	"github.com/jhoicas/erp-core/internal/application/finance"
	"github.com/jhoicas/erp-core/pkg/config"
	"github.com/jhoicas/erp-core/pkg/logger"
)

func TestOrderLedgers(t *testing.T) {
	svc := finance.NewService(apptest.New(), logger.Nop(), nil)

	payables, receivables := orderLedgers(config.FinanceConfig{Enabled: true}, svc)
	assert.Same(t, svc, payables)
	assert.Same(t, svc, receivables)

	payables, receivables = orderLedgers(config.FinanceConfig{Enabled: false}, svc)
	assert.IsType(t, finance.Noop{}, payables)
	assert.IsType(t, finance.Noop{}, receivables)
}
