package authenticator

import (
	"context"

	"github.com/shandysiswandi/usercredential/internal/credential/entity"
	"github.com/shandysiswandi/usercredential/internal/pkg/otp"
	"github.com/stretchr/testify/mock"
)

type mockTokenProvider struct {
	mock.Mock
}

func (m *mockTokenProvider) TokenExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockTokenProvider) CreateToken(ctx context.Context, username string) (*otp.Enrollment, error) {
	args := m.Called(ctx, username)
	enr, _ := args.Get(0).(*otp.Enrollment)
	return enr, args.Error(1)
}

func (m *mockTokenProvider) BindToken(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}

func (m *mockTokenProvider) ValidateToken(ctx context.Context, username, code string) (otp.Result, error) {
	args := m.Called(ctx, username, code)
	return args.Get(0).(otp.Result), args.Error(1)
}

type mockAuditPublisher struct {
	mock.Mock
}

func (m *mockAuditPublisher) PublishAttempt(ctx context.Context, ev entity.AttemptEvent) error {
	return m.Called(ctx, ev).Error(0)
}
