package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/salucol/ips-admin-core/internal/domain/entities"
	"github.com/salucol/ips-admin-core/internal/infrastructure/clients/ipsapi"
	apperrors "github.com/salucol/ips-admin-core/pkg/errors"
)

// PatientService wraps the patients microservice
type PatientService struct {
	client ipsapi.Client
}

// NewPatientService creates a new patient service
func NewPatientService(client ipsapi.Client) *PatientService {
	return &PatientService{client: client}
}

// List returns one page of patients, optionally filtered by a free-text query
func (s *PatientService) List(ctx context.Context, page, pageSize int, query string) (*entities.PatientPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	path := fmt.Sprintf("/patients?page=%d&page_size=%d", page, pageSize)
	if query != "" {
		path += "&q=" + url.QueryEscape(query)
	}

	var result entities.PatientPage
	if err := s.client.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get returns a single patient by id
func (s *PatientService) Get(ctx context.Context, id string) (*entities.Patient, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError(0, "patient id is required", nil)
	}

	var patient entities.Patient
	if err := s.client.Get(ctx, "/patients/"+url.PathEscape(id), &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

// Create registers a new patient
func (s *PatientService) Create(ctx context.Context, patient *entities.Patient) error {
	if strings.TrimSpace(patient.DocumentNumber) == "" {
		return apperrors.NewValidationError(0, "document number is required", nil)
	}
	if strings.TrimSpace(patient.FirstName) == "" || strings.TrimSpace(patient.LastName) == "" {
		return apperrors.NewValidationError(0, "patient name is required", nil)
	}
	return s.client.Post(ctx, "/patients", patient, patient)
}

// Update updates an existing patient
func (s *PatientService) Update(ctx context.Context, patient *entities.Patient) error {
	if strings.TrimSpace(patient.ID) == "" {
		return apperrors.NewValidationError(0, "patient id is required", nil)
	}
	return s.client.Put(ctx, "/patients/"+url.PathEscape(patient.ID), patient, patient)
}

// Delete removes a patient record
func (s *PatientService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError(0, "patient id is required", nil)
	}
	return s.client.Delete(ctx, "/patients/"+url.PathEscape(id), nil)
}
