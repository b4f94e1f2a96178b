package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/perfume_catalog/internal/domain"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
)

func TestPerfumeHandler_Create_Success(t *testing.T) {
	svc := new(MockPerfumeService)
	handler := NewPerfumeHandler(svc, logger.Nop())

	brandID := uuid.New()
	body := PerfumeRequest{
		Name:           "Bleu de Chanel",
		ImageURI:       "https://img.example/bleu.png",
		Price:          120,
		Concentration:  "EDP",
		Description:    "Woody aromatic fragrance",
		Volume:         100,
		TargetAudience: "male",
		BrandID:        brandID,
	}

	svc.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Perfume) bool {
		return p.Name == "Bleu de Chanel" && p.BrandID == brandID && p.Volume == 100
	})).Return(nil)

	req := newRequest(t, http.MethodPost, "/api/v1/perfumes", body, nil, nil)
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestPerfumeHandler_Create_InvalidBody(t *testing.T) {
	svc := new(MockPerfumeService)
	handler := NewPerfumeHandler(svc, logger.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/perfumes", nil)
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Create")
}

func TestPerfumeHandler_GetByID_IncludesComments(t *testing.T) {
	svc := new(MockPerfumeService)
	handler := NewPerfumeHandler(svc, logger.Nop())

	id := uuid.New()
	detail := &domain.PerfumeDetail{
		Perfume:  &domain.Perfume{ID: id, Name: "Coco"},
		Comments: []*domain.Comment{{ID: uuid.New(), Rating: 3}},
	}
	svc.On("GetDetail", mock.Anything, id).Return(detail, nil)

	req := newRequest(t, http.MethodGet, "/", nil, map[string]string{"id": id.String()}, nil)
	w := httptest.NewRecorder()

	handler.GetByID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data, ok := decodeEnvelope(t, w).Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Coco", data["name"])
	assert.Len(t, data["comments"], 1)
}

func TestPerfumeHandler_GetByID_NotFound(t *testing.T) {
	svc := new(MockPerfumeService)
	handler := NewPerfumeHandler(svc, logger.Nop())

	id := uuid.New()
	svc.On("GetDetail", mock.Anything, id).Return(nil, domain.ErrProductNotFound)

	req := newRequest(t, http.MethodGet, "/", nil, map[string]string{"id": id.String()}, nil)
	w := httptest.NewRecorder()

	handler.GetByID(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPerfumeHandler_List_FiltersAndPagination(t *testing.T) {
	svc := new(MockPerfumeService)
	handler := NewPerfumeHandler(svc, logger.Nop())

	brandID := uuid.New()
	svc.On("List", mock.Anything, mock.MatchedBy(func(f domain.PerfumeFilter) bool {
		return f.Search == "bleu" && f.BrandID != nil && *f.BrandID == brandID
	}), 10, 5).Return([]*domain.Perfume{{ID: uuid.New()}}, 11, nil)

	req := newRequest(t, http.MethodGet, "/api/v1/perfumes?search=bleu&brand_id="+brandID.String()+"&limit=10&offset=5", nil, nil, nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 11, env.Pagination.Total)
	assert.Equal(t, 10, env.Pagination.Limit)
	assert.Equal(t, 5, env.Pagination.Offset)
}

func TestPerfumeHandler_List_InvalidBrandID(t *testing.T) {
	svc := new(MockPerfumeService)
	handler := NewPerfumeHandler(svc, logger.Nop())

	req := newRequest(t, http.MethodGet, "/api/v1/perfumes?brand_id=nope", nil, nil, nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "List")
}

func TestPerfumeHandler_Search_EmptyKeyword(t *testing.T) {
	svc := new(MockPerfumeService)
	handler := NewPerfumeHandler(svc, logger.Nop())

	svc.On("Search", mock.Anything, "").Return(nil, domain.ErrInvalidInput)

	req := newRequest(t, http.MethodGet, "/api/v1/perfumes/search", nil, nil, nil)
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPerfumeHandler_Update_StaleVersion(t *testing.T) {
	svc := new(MockPerfumeService)
	handler := NewPerfumeHandler(svc, logger.Nop())

	id := uuid.New()
	svc.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Perfume) bool {
		return p.ID == id && p.Version == 3
	})).Return(domain.ErrConflict)

	body := UpdatePerfumeRequest{PerfumeRequest: PerfumeRequest{Name: "Coco"}, Version: 3}
	req := newRequest(t, http.MethodPut, "/", body, map[string]string{"id": id.String()}, nil)
	w := httptest.NewRecorder()

	handler.Update(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPerfumeHandler_Delete(t *testing.T) {
	svc := new(MockPerfumeService)
	handler := NewPerfumeHandler(svc, logger.Nop())

	id := uuid.New()
	svc.On("Delete", mock.Anything, id).Return(nil)

	req := newRequest(t, http.MethodDelete, "/", nil, map[string]string{"id": id.String()}, nil)
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
