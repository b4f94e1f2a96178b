package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Pesokrava/perfume_catalog/internal/domain"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
)

func TestFeedbackHandler_Submit_Created(t *testing.T) {
	svc := new(MockFeedbackService)
	handler := NewFeedbackHandler(svc, logger.Nop())

	perfumeID := uuid.New()
	identity := domain.Identity{MemberID: uuid.New()}
	comment := &domain.Comment{ID: uuid.New(), PerfumeID: perfumeID, AuthorID: identity.MemberID, Rating: 3, Content: "Lovely"}

	svc.On("Submit", mock.Anything, perfumeID, identity, 3, "Lovely").Return(comment, nil)

	req := newRequest(t, http.MethodPost, "/api/v1/perfumes/"+perfumeID.String()+"/comments",
		SubmitCommentRequest{Rating: 3, Content: "Lovely"},
		map[string]string{"id": perfumeID.String()}, &identity)
	w := httptest.NewRecorder()

	handler.Submit(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	svc.AssertExpectations(t)
}

func TestFeedbackHandler_Submit_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"already reviewed", domain.ErrAlreadyReviewed, http.StatusConflict},
		{"admin review", domain.ErrAdminReview, http.StatusForbidden},
		{"invalid rating", domain.ErrInvalidRating, http.StatusBadRequest},
		{"unknown perfume", domain.ErrProductNotFound, http.StatusNotFound},
		{"storage failure", domain.Internal("comment.Submit", fmt.Errorf("connection reset")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockFeedbackService)
			handler := NewFeedbackHandler(svc, logger.Nop())

			perfumeID := uuid.New()
			identity := domain.Identity{MemberID: uuid.New()}
			svc.On("Submit", mock.Anything, perfumeID, identity, 2, "ok").Return(nil, tt.err)

			req := newRequest(t, http.MethodPost, "/", SubmitCommentRequest{Rating: 2, Content: "ok"},
				map[string]string{"id": perfumeID.String()}, &identity)
			w := httptest.NewRecorder()

			handler.Submit(w, req)

			assert.Equal(t, tt.status, w.Code)
			env := decodeEnvelope(t, w)
			assert.False(t, env.Success)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "Internal server error", env.Error)
			} else {
				assert.Equal(t, tt.err.Error(), env.Error)
			}
		})
	}
}

func TestFeedbackHandler_Submit_Unauthenticated(t *testing.T) {
	svc := new(MockFeedbackService)
	handler := NewFeedbackHandler(svc, logger.Nop())

	req := newRequest(t, http.MethodPost, "/", SubmitCommentRequest{Rating: 2, Content: "ok"},
		map[string]string{"id": uuid.NewString()}, nil)
	w := httptest.NewRecorder()

	handler.Submit(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Submit")
}

func TestFeedbackHandler_Submit_InvalidPerfumeID(t *testing.T) {
	svc := new(MockFeedbackService)
	handler := NewFeedbackHandler(svc, logger.Nop())

	identity := domain.Identity{MemberID: uuid.New()}
	req := newRequest(t, http.MethodPost, "/", SubmitCommentRequest{Rating: 2, Content: "ok"},
		map[string]string{"id": "not-a-uuid"}, &identity)
	w := httptest.NewRecorder()

	handler.Submit(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedbackHandler_Update_PartialPatch(t *testing.T) {
	svc := new(MockFeedbackService)
	handler := NewFeedbackHandler(svc, logger.Nop())

	perfumeID, commentID := uuid.New(), uuid.New()
	identity := domain.Identity{MemberID: uuid.New()}
	rating := 1

	svc.On("Update", mock.Anything, perfumeID, commentID, identity, mock.MatchedBy(func(p domain.CommentPatch) bool {
		return p.Rating != nil && *p.Rating == 1 && p.Content == nil
	})).Return(&domain.Comment{ID: commentID, Rating: 1}, nil)

	req := newRequest(t, http.MethodPut, "/", UpdateCommentRequest{Rating: &rating},
		map[string]string{"id": perfumeID.String(), "commentId": commentID.String()}, &identity)
	w := httptest.NewRecorder()

	handler.Update(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestFeedbackHandler_Update_NotAuthor(t *testing.T) {
	svc := new(MockFeedbackService)
	handler := NewFeedbackHandler(svc, logger.Nop())

	perfumeID, commentID := uuid.New(), uuid.New()
	identity := domain.Identity{MemberID: uuid.New()}
	svc.On("Update", mock.Anything, perfumeID, commentID, identity, mock.Anything).Return(nil, domain.ErrNotAuthor)

	content := "mine now"
	req := newRequest(t, http.MethodPut, "/", UpdateCommentRequest{Content: &content},
		map[string]string{"id": perfumeID.String(), "commentId": commentID.String()}, &identity)
	w := httptest.NewRecorder()

	handler.Update(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFeedbackHandler_Update_InvalidCommentID(t *testing.T) {
	svc := new(MockFeedbackService)
	handler := NewFeedbackHandler(svc, logger.Nop())

	identity := domain.Identity{MemberID: uuid.New()}
	req := newRequest(t, http.MethodPut, "/", UpdateCommentRequest{},
		map[string]string{"id": uuid.NewString(), "commentId": "x"}, &identity)
	w := httptest.NewRecorder()

	handler.Update(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Update")
}

func TestFeedbackHandler_Delete(t *testing.T) {
	svc := new(MockFeedbackService)
	handler := NewFeedbackHandler(svc, logger.Nop())

	perfumeID, commentID := uuid.New(), uuid.New()
	identity := domain.Identity{MemberID: uuid.New()}
	svc.On("Delete", mock.Anything, perfumeID, commentID, identity).Return(nil)

	req := newRequest(t, http.MethodDelete, "/", nil,
		map[string]string{"id": perfumeID.String(), "commentId": commentID.String()}, &identity)
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Comment deleted", decodeEnvelope(t, w).Message)
}

func TestFeedbackHandler_Delete_NotFound(t *testing.T) {
	svc := new(MockFeedbackService)
	handler := NewFeedbackHandler(svc, logger.Nop())

	perfumeID, commentID := uuid.New(), uuid.New()
	identity := domain.Identity{MemberID: uuid.New()}
	svc.On("Delete", mock.Anything, perfumeID, commentID, identity).Return(domain.ErrCommentNotFound)

	req := newRequest(t, http.MethodDelete, "/", nil,
		map[string]string{"id": perfumeID.String(), "commentId": commentID.String()}, &identity)
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedbackHandler_List(t *testing.T) {
	svc := new(MockFeedbackService)
	handler := NewFeedbackHandler(svc, logger.Nop())

	perfumeID := uuid.New()
	svc.On("ListForPerfume", mock.Anything, perfumeID).Return([]*domain.Comment{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

	req := newRequest(t, http.MethodGet, "/", nil, map[string]string{"id": perfumeID.String()}, nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data, ok := decodeEnvelope(t, w).Data.([]interface{})
	assert.True(t, ok)
	assert.Len(t, data, 2)
}
