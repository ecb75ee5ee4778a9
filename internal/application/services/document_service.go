package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/salucol/ips-admin-core/internal/domain/entities"
	"github.com/salucol/ips-admin-core/internal/infrastructure/clients/ipsapi"
	apperrors "github.com/salucol/ips-admin-core/pkg/errors"
)

// DocumentService wraps the clinical documents microservice
type DocumentService struct {
	client ipsapi.Client
}

// NewDocumentService creates a new document service
func NewDocumentService(client ipsapi.Client) *DocumentService {
	return &DocumentService{client: client}
}

// Upload attaches a file to a patient's clinical history
func (s *DocumentService) Upload(ctx context.Context, patientID, fileName, contentType string, content []byte) (*entities.ClinicalDocument, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, apperrors.NewValidationError(0, "patient id is required", nil)
	}
	if strings.TrimSpace(fileName) == "" {
		return nil, apperrors.NewValidationError(0, "file name is required", nil)
	}
	if len(content) == 0 {
		return nil, apperrors.NewValidationError(0, "file is empty", nil)
	}

	var document entities.ClinicalDocument
	err := s.client.Upload(ctx, "/documents",
		[]ipsapi.UploadFile{{
			Field:       "file",
			FileName:    fileName,
			ContentType: contentType,
			Content:     content,
		}},
		map[string]string{"patient_id": patientID},
		&document,
	)
	if err != nil {
		return nil, err
	}
	return &document, nil
}

// List returns the documents attached to a patient
func (s *DocumentService) List(ctx context.Context, patientID string) ([]entities.ClinicalDocument, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, apperrors.NewValidationError(0, "patient id is required", nil)
	}

	var documents []entities.ClinicalDocument
	if err := s.client.Get(ctx, "/documents?patient_id="+url.QueryEscape(patientID), &documents); err != nil {
		return nil, err
	}
	return documents, nil
}
