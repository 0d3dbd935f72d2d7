package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"advanced-blog/pkg/roles"
	"advanced-blog/pkg/validation"
	"advanced-blog/services/blog/internal/entity"
	"advanced-blog/services/blog/internal/policy"
	"advanced-blog/services/blog/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	require.NoError(t, validation.Register())
	admin := entity.Actor{ID: "admin-1", Role: roles.Admin}

	tests := []struct {
		name           string
		actor          entity.Actor
		body           interface{}
		mockSetup      func(*MockCategoryUseCase)
		expectedStatus int
		expectedLoc    string
	}{
		{
			name:  "admin creates category",
			actor: admin,
			body:  CategoryRequest{Name: "Go"},
			mockSetup: func(m *MockCategoryUseCase) {
				m.On("CreateCategory", mock.Anything, admin, "Go").
					Return(&entity.Category{ID: "cat-1", Name: "Go", Slug: "go"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:  "author is sent home",
			actor: authorActor,
			body:  CategoryRequest{Name: "Go"},
			mockSetup: func(m *MockCategoryUseCase) {
				m.On("CreateCategory", mock.Anything, authorActor, "Go").
					Return(nil, &usecase.PermissionError{Action: policy.ManageCategories, Message: policy.Warning(policy.ManageCategories)})
			},
			expectedStatus: http.StatusSeeOther,
			expectedLoc:    "/",
		},
		{
			name:           "anonymous is sent to login",
			actor:          entity.Anonymous(),
			body:           CategoryRequest{Name: "Go"},
			mockSetup:      func(m *MockCategoryUseCase) {},
			expectedStatus: http.StatusSeeOther,
			expectedLoc:    "/accounts/login/?next=%2Fcategories%2F",
		},
		{
			name:  "missing name",
			actor: admin,
			body:  map[string]string{},
			mockSetup: func(m *MockCategoryUseCase) {
				m.On("CreateCategory", mock.Anything, admin, "").
					Return(nil, &usecase.ValidationError{Fields: map[string]string{"name": "This field is required."}})
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "author with empty body is still sent home",
			actor: authorActor,
			body:  map[string]string{},
			mockSetup: func(m *MockCategoryUseCase) {
				m.On("CreateCategory", mock.Anything, authorActor, "").
					Return(nil, &usecase.PermissionError{Action: policy.ManageCategories, Message: policy.Warning(policy.ManageCategories)})
			},
			expectedStatus: http.StatusSeeOther,
			expectedLoc:    "/",
		},
		{
			name:  "store failure",
			actor: admin,
			body:  CategoryRequest{Name: "Go"},
			mockSetup: func(m *MockCategoryUseCase) {
				m.On("CreateCategory", mock.Anything, admin, "Go").Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUseCase := new(MockCategoryUseCase)
			tt.mockSetup(mockUseCase)
			handler := NewCategoryHandler(mockUseCase, newTestResponder(nil))

			router := setupTestRouter(tt.actor)
			router.POST("/categories/", handler.CreateCategory)

			body, _ := json.Marshal(tt.body)
			req, _ := http.NewRequest("POST", "/categories/", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedLoc != "" {
				assert.Equal(t, tt.expectedLoc, w.Header().Get("Location"))
			}
			mockUseCase.AssertExpectations(t)
		})
	}
}

func TestListCategories(t *testing.T) {
	mockUseCase := new(MockCategoryUseCase)
	handler := NewCategoryHandler(mockUseCase, newTestResponder(nil))

	router := setupTestRouter(entity.Anonymous())
	router.GET("/categories/", handler.ListCategories)

	categories := []*entity.Category{{ID: "cat-1", Name: "Go", Slug: "go"}}
	mockUseCase.On("ListCategories", mock.Anything).Return(categories, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/categories/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["categories"], 1)
	mockUseCase.AssertExpectations(t)
}
