package dto

import (
	"time"

	"github.com/jhoicas/erp-core/internal/application/finance"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/money"
)

type FinancialMovementResponse struct {
	ID           string     `json:"id"`
	MovementType string     `json:"movement_type"`
	SourceType   string     `json:"source_type"`
	SourceID     string     `json:"source_id"`
	Amount       string     `json:"amount"`
	Status       string     `json:"status"`
	Notes        string     `json:"notes"`
	CreatedAt    time.Time  `json:"created_at"`
	PaidAt       *time.Time `json:"paid_at"`
	PaidBy       string     `json:"paid_by,omitempty"`
}

func FinancialMovementFromEntity(m *entity.FinancialMovement) FinancialMovementResponse {
	return FinancialMovementResponse{
		ID:           m.ID,
		MovementType: string(m.Type),
		SourceType:   string(m.SourceType),
		SourceID:     m.SourceID,
		Amount:       money.Format(m.Amount),
		Status:       string(m.Status),
		Notes:        m.Notes,
		CreatedAt:    m.CreatedAt,
		PaidAt:       m.PaidAt,
		PaidBy:       m.PaidBy,
	}
}

type BucketResponse struct {
	Count  int    `json:"count"`
	Amount string `json:"amount"`
}

type StatusBucketsResponse struct {
	Open BucketResponse `json:"OPEN"`
	Paid BucketResponse `json:"PAID"`
	Void BucketResponse `json:"VOID"`
}

// SummaryResponse cuerpo de GET /api/finance/summary.
type SummaryResponse struct {
	AsOf       time.Time             `json:"as_of"`
	Filters    map[string]string     `json:"filters"`
	Payable    StatusBucketsResponse `json:"PAYABLE"`
	Receivable StatusBucketsResponse `json:"RECEIVABLE"`
	NetOpen    string                `json:"net_open"`
}

func bucket(b entity.SummaryBucket) BucketResponse {
	return BucketResponse{Count: b.Count, Amount: money.Format(b.Amount)}
}

func buckets(b entity.StatusBuckets) StatusBucketsResponse {
	return StatusBucketsResponse{Open: bucket(b.Open), Paid: bucket(b.Paid), Void: bucket(b.Void)}
}

func SummaryFromReport(r *finance.Report) SummaryResponse {
	filters := map[string]string{}
	if r.Filter.Status != "" {
		filters["status"] = string(r.Filter.Status)
	}
	if r.Filter.Type != "" {
		filters["movement_type"] = string(r.Filter.Type)
	}
	if r.Filter.SourceType != "" {
		filters["source_type"] = string(r.Filter.SourceType)
	}
	if r.Filter.Range.From != nil {
		filters["from"] = r.Filter.Range.From.Format(time.RFC3339)
	}
	if r.Filter.Range.To != nil {
		filters["to"] = r.Filter.Range.To.Format(time.RFC3339)
	}
	return SummaryResponse{
		AsOf:       r.AsOf,
		Filters:    filters,
		Payable:    buckets(r.Summary.Payables),
		Receivable: buckets(r.Summary.Receivables),
		NetOpen:    money.Format(r.Summary.NetOpen),
	}
}
