package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/perfume_catalog/internal/delivery/http/middleware"
	"github.com/Pesokrava/perfume_catalog/internal/delivery/http/response"
	"github.com/Pesokrava/perfume_catalog/internal/domain"
	"github.com/Pesokrava/perfume_catalog/internal/usecase/member"
)

// MockFeedbackService is a mock implementation of FeedbackService
type MockFeedbackService struct {
	mock.Mock
}

func (m *MockFeedbackService) Submit(ctx context.Context, perfumeID uuid.UUID, identity domain.Identity, rating int, content string) (*domain.Comment, error) {
	args := m.Called(ctx, perfumeID, identity, rating, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockFeedbackService) Update(ctx context.Context, perfumeID, commentID uuid.UUID, identity domain.Identity, patch domain.CommentPatch) (*domain.Comment, error) {
	args := m.Called(ctx, perfumeID, commentID, identity, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockFeedbackService) Delete(ctx context.Context, perfumeID, commentID uuid.UUID, identity domain.Identity) error {
	args := m.Called(ctx, perfumeID, commentID, identity)
	return args.Error(0)
}

func (m *MockFeedbackService) ListForPerfume(ctx context.Context, perfumeID uuid.UUID) ([]*domain.Comment, error) {
	args := m.Called(ctx, perfumeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Comment), args.Error(1)
}

// MockPerfumeService is a mock implementation of PerfumeService
type MockPerfumeService struct {
	mock.Mock
}

func (m *MockPerfumeService) Create(ctx context.Context, perfume *domain.Perfume) error {
	args := m.Called(ctx, perfume)
	return args.Error(0)
}

func (m *MockPerfumeService) GetDetail(ctx context.Context, id uuid.UUID) (*domain.PerfumeDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PerfumeDetail), args.Error(1)
}

func (m *MockPerfumeService) List(ctx context.Context, filter domain.PerfumeFilter, limit, offset int) ([]*domain.Perfume, int, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Perfume), args.Int(1), args.Error(2)
}

func (m *MockPerfumeService) Search(ctx context.Context, keyword string) ([]*domain.Perfume, error) {
	args := m.Called(ctx, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Perfume), args.Error(1)
}

func (m *MockPerfumeService) Update(ctx context.Context, perfume *domain.Perfume) error {
	args := m.Called(ctx, perfume)
	return args.Error(0)
}

func (m *MockPerfumeService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBrandService is a mock implementation of BrandService
type MockBrandService struct {
	mock.Mock
}

func (m *MockBrandService) List(ctx context.Context) ([]*domain.Brand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Brand), args.Error(1)
}

func (m *MockBrandService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Brand, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Brand), args.Error(1)
}

func (m *MockBrandService) ListPerfumes(ctx context.Context, id uuid.UUID) ([]*domain.Perfume, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Perfume), args.Error(1)
}

func (m *MockBrandService) Create(ctx context.Context, brand *domain.Brand) error {
	args := m.Called(ctx, brand)
	return args.Error(0)
}

func (m *MockBrandService) Update(ctx context.Context, brand *domain.Brand) error {
	args := m.Called(ctx, brand)
	return args.Error(0)
}

func (m *MockBrandService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, reg member.Registration) (*member.Session, error) {
	args := m.Called(ctx, reg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Session), args.Error(1)
}

func (m *MockAuthService) CreateAdmin(ctx context.Context, reg member.Registration) (*domain.Member, error) {
	args := m.Called(ctx, reg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*member.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Session), args.Error(1)
}

// MockMemberService is a mock implementation of MemberService
type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) Profile(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberService) UpdateProfile(ctx context.Context, id uuid.UUID, patch member.ProfilePatch) (*domain.Member, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberService) ChangePassword(ctx context.Context, id uuid.UUID, change member.PasswordChange) error {
	args := m.Called(ctx, id, change)
	return args.Error(0)
}

func (m *MockMemberService) List(ctx context.Context) ([]*domain.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Member), args.Error(1)
}

func (m *MockMemberService) Delete(ctx context.Context, actor domain.Identity, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

// newRequest builds a request with optional JSON body, chi URL params and caller identity
func newRequest(t *testing.T, method, target string, body interface{}, params map[string]string, identity *domain.Identity) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	if identity != nil {
		ctx = middleware.WithIdentity(ctx, *identity)
	}

	return req.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}
