package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/salucol/ips-admin-core/internal/domain/entities"
	"github.com/salucol/ips-admin-core/internal/infrastructure/clients/ipsapi"
	apperrors "github.com/salucol/ips-admin-core/pkg/errors"
)

func TestDocumentService_Upload(t *testing.T) {
	t.Run("sends the file tagged with the patient id", func(t *testing.T) {
		client := new(mockClient)
		service := NewDocumentService(client)

		content := []byte("%PDF-1.4 ...")

		client.On("Upload", mock.Anything, "/documents",
			[]ipsapi.UploadFile{{
				Field:       "file",
				FileName:    "historia.pdf",
				ContentType: "application/pdf",
				Content:     content,
			}},
			map[string]string{"patient_id": "p1"},
			mock.Anything).
			Run(func(args mock.Arguments) {
				out := args.Get(4).(*entities.ClinicalDocument)
				out.ID = "doc-1"
			}).
			Return(nil)

		document, err := service.Upload(context.Background(), "p1", "historia.pdf", "application/pdf", content)

		require.NoError(t, err)
		assert.Equal(t, "doc-1", document.ID)
		client.AssertExpectations(t)
	})

	t.Run("empty files are rejected locally", func(t *testing.T) {
		client := new(mockClient)
		service := NewDocumentService(client)

		_, err := service.Upload(context.Background(), "p1", "historia.pdf", "application/pdf", nil)

		require.Error(t, err)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		client.AssertNotCalled(t, "Upload")
	})
}

func TestDocumentService_List(t *testing.T) {
	client := new(mockClient)
	service := NewDocumentService(client)

	client.On("Get", mock.Anything, "/documents?patient_id=p1", mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(2).(*[]entities.ClinicalDocument)
			*out = []entities.ClinicalDocument{{ID: "doc-1"}}
		}).
		Return(nil)

	documents, err := service.List(context.Background(), "p1")

	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Equal(t, "doc-1", documents[0].ID)
}
