// Package mocks provides testify-based mocks for gcs-client interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Akrog/gcs-client/pkg/session"
)

// MockTransport is a mock implementation of the session.Transport interface.
// It can be used for unit testing code that depends on gcs-client without a
// storage service.
//
// Example usage:
//
//	transport := new(mocks.MockTransport)
//	transport.On("Do", mock.Anything, mock.Anything).
//		Return(&session.Response{StatusCode: 200, Body: []byte(`{}`)}, nil)
//	client := storage.NewClientWithTransport(transport)
type MockTransport struct {
	mock.Mock
}

// Do records the request and returns the programmed response.
func (m *MockTransport) Do(ctx context.Context, req *session.Request) (*session.Response, error) {
	args := m.Called(ctx, req)

	resp, _ := args.Get(0).(*session.Response)
	return resp, args.Error(1)
}

var _ session.Transport = (*MockTransport)(nil)
