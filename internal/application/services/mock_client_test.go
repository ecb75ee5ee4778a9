package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/salucol/ips-admin-core/internal/infrastructure/clients/ipsapi"
)

// mockClient is a testify mock of the backend gateway
type mockClient struct {
	mock.Mock
}

func (m *mockClient) Get(ctx context.Context, path string, out any) error {
	args := m.Called(ctx, path, out)
	return args.Error(0)
}

func (m *mockClient) Post(ctx context.Context, path string, body, out any) error {
	args := m.Called(ctx, path, body, out)
	return args.Error(0)
}

func (m *mockClient) Put(ctx context.Context, path string, body, out any) error {
	args := m.Called(ctx, path, body, out)
	return args.Error(0)
}

func (m *mockClient) Patch(ctx context.Context, path string, body, out any) error {
	args := m.Called(ctx, path, body, out)
	return args.Error(0)
}

func (m *mockClient) Delete(ctx context.Context, path string, out any) error {
	args := m.Called(ctx, path, out)
	return args.Error(0)
}

func (m *mockClient) Upload(ctx context.Context, path string, files []ipsapi.UploadFile, fields map[string]string, out any) error {
	args := m.Called(ctx, path, files, fields, out)
	return args.Error(0)
}

func (m *mockClient) SetAuthToken(token string) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *mockClient) ClearAuthToken() error {
	args := m.Called()
	return args.Error(0)
}

func (m *mockClient) ClearSession() error {
	args := m.Called()
	return args.Error(0)
}
