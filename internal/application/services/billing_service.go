package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/salucol/ips-admin-core/internal/domain/entities"
	"github.com/salucol/ips-admin-core/internal/infrastructure/clients/ipsapi"
	apperrors "github.com/salucol/ips-admin-core/pkg/errors"
)

// BillingService wraps the billing microservice: the CUPS procedure-code
// catalog and patient invoices
type BillingService struct {
	client ipsapi.Client
}

// NewBillingService creates a new billing service
func NewBillingService(client ipsapi.Client) *BillingService {
	return &BillingService{client: client}
}

// SearchProcedures queries the CUPS catalog
func (s *BillingService) SearchProcedures(ctx context.Context, query string) ([]entities.CUPSProcedure, error) {
	path := "/billing/cups"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}

	var procedures []entities.CUPSProcedure
	if err := s.client.Get(ctx, path, &procedures); err != nil {
		return nil, err
	}
	return procedures, nil
}

// CreateInvoice validates the invoice lines and persists the invoice. The
// total is computed locally from the lines; a server-side total wins on the
// way back.
func (s *BillingService) CreateInvoice(ctx context.Context, invoice *entities.Invoice) error {
	if strings.TrimSpace(invoice.PatientID) == "" {
		return apperrors.NewValidationError(0, "patient id is required", nil)
	}
	if len(invoice.Lines) == 0 {
		return apperrors.NewValidationError(0, "invoice needs at least one line", nil)
	}

	total := 0.0
	for _, line := range invoice.Lines {
		if strings.TrimSpace(line.CUPSCode) == "" {
			return apperrors.NewValidationError(0, "every invoice line needs a CUPS code", nil)
		}
		if line.Quantity <= 0 {
			return apperrors.NewValidationError(0, "invoice line quantity must be positive", nil)
		}
		total += float64(line.Quantity) * line.UnitPrice
	}
	invoice.Total = total

	return s.client.Post(ctx, "/billing/invoices", invoice, invoice)
}

// ListInvoices returns a patient's invoices
func (s *BillingService) ListInvoices(ctx context.Context, patientID string) ([]entities.Invoice, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, apperrors.NewValidationError(0, "patient id is required", nil)
	}

	var invoices []entities.Invoice
	if err := s.client.Get(ctx, "/billing/invoices?patient_id="+url.QueryEscape(patientID), &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}
