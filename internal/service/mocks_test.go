package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"campus-assistant/internal/domain"
	"campus-assistant/internal/retrieval"
)

// MockCatalogClient is a mock implementation of domain.CatalogClient
type MockCatalogClient struct {
	mock.Mock
}

func (m *MockCatalogClient) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Department), args.Error(1)
}

func (m *MockCatalogClient) ListSubjects(ctx context.Context, department string) ([]domain.Subject, error) {
	args := m.Called(ctx, department)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subject), args.Error(1)
}

func (m *MockCatalogClient) CreateSubject(ctx context.Context, department, name string) (*domain.Subject, error) {
	args := m.Called(ctx, department, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subject), args.Error(1)
}

// MockCatalogCache is a mock implementation of CatalogCache
type MockCatalogCache struct {
	mock.Mock
}

func (m *MockCatalogCache) GetDepartments(ctx context.Context) ([]domain.Department, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Department), args.Error(1)
}

func (m *MockCatalogCache) GetDepartmentsStale(ctx context.Context) ([]domain.Department, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Department), args.Error(1)
}

func (m *MockCatalogCache) SetDepartments(ctx context.Context, departments []domain.Department) error {
	args := m.Called(ctx, departments)
	return args.Error(0)
}

func (m *MockCatalogCache) GetSubjects(ctx context.Context, department string) ([]domain.Subject, error) {
	args := m.Called(ctx, department)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subject), args.Error(1)
}

func (m *MockCatalogCache) GetSubjectsStale(ctx context.Context, department string) ([]domain.Subject, error) {
	args := m.Called(ctx, department)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subject), args.Error(1)
}

func (m *MockCatalogCache) SetSubjects(ctx context.Context, department string, subjects []domain.Subject) error {
	args := m.Called(ctx, department, subjects)
	return args.Error(0)
}

func (m *MockCatalogCache) InvalidateSubjects(ctx context.Context, department string) error {
	args := m.Called(ctx, department)
	return args.Error(0)
}

// MockRetrievalClient is a mock implementation of retrieval.Client
type MockRetrievalClient struct {
	mock.Mock
}

func (m *MockRetrievalClient) Query(ctx context.Context, scope domain.ResolvedScope, req retrieval.Request) (*retrieval.Response, error) {
	args := m.Called(ctx, scope, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*retrieval.Response), args.Error(1)
}

// MockTurnAuditRepository is a mock implementation of domain.TurnAuditRepository
type MockTurnAuditRepository struct {
	mock.Mock
}

func (m *MockTurnAuditRepository) Create(ctx context.Context, audit *domain.TurnAudit) error {
	args := m.Called(ctx, audit)
	return args.Error(0)
}

func (m *MockTurnAuditRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.TurnAudit, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TurnAudit), args.Error(1)
}
