package entities

import (
	"time"
)

// CUPSProcedure is an entry from the CUPS procedure-code catalog used for
// billing
type CUPSProcedure struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// InvoiceLine bills a single procedure against a CUPS code
type InvoiceLine struct {
	CUPSCode    string  `json:"cups_code"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Invoice represents a billing document for a patient
type Invoice struct {
	ID        string        `json:"id"`
	PatientID string        `json:"patient_id"`
	Status    string        `json:"status"`
	Lines     []InvoiceLine `json:"lines"`
	Total     float64       `json:"total"`
	IssuedAt  time.Time     `json:"issued_at"`
	CreatedAt time.Time     `json:"created_at"`
}
