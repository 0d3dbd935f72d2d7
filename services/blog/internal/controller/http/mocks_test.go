package http

import (
	"context"

	"advanced-blog/pkg/flash"
	"advanced-blog/pkg/logger"
	"advanced-blog/services/blog/internal/entity"
	"advanced-blog/services/blog/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

// MockPostUseCase is a mock implementation of PostUseCase
type MockPostUseCase struct {
	mock.Mock
}

func (m *MockPostUseCase) ListPublished(ctx context.Context, page int) (*usecase.PostPage, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.PostPage), args.Error(1)
}

func (m *MockPostUseCase) ListByCategory(ctx context.Context, categorySlug string, page int) (*entity.Category, *usecase.PostPage, error) {
	args := m.Called(ctx, categorySlug, page)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*entity.Category), args.Get(1).(*usecase.PostPage), args.Error(2)
}

func (m *MockPostUseCase) ListByTag(ctx context.Context, tagSlug string, page int) (*entity.Tag, *usecase.PostPage, error) {
	args := m.Called(ctx, tagSlug, page)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*entity.Tag), args.Get(1).(*usecase.PostPage), args.Error(2)
}

func (m *MockPostUseCase) Search(ctx context.Context, query string, page int) (*usecase.PostPage, error) {
	args := m.Called(ctx, query, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.PostPage), args.Error(1)
}

func (m *MockPostUseCase) GetPost(ctx context.Context, actor entity.Actor, postSlug string) (*usecase.PostDetail, error) {
	args := m.Called(ctx, actor, postSlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.PostDetail), args.Error(1)
}

func (m *MockPostUseCase) NewPostForm(ctx context.Context, actor entity.Actor) (*usecase.PostForm, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.PostForm), args.Error(1)
}

func (m *MockPostUseCase) CreatePost(ctx context.Context, actor entity.Actor, input usecase.PostInput) (*entity.Post, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) EditPostForm(ctx context.Context, actor entity.Actor, postSlug string) (*usecase.PostForm, error) {
	args := m.Called(ctx, actor, postSlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.PostForm), args.Error(1)
}

func (m *MockPostUseCase) UpdatePost(ctx context.Context, actor entity.Actor, postSlug string, input usecase.PostInput) (*entity.Post, error) {
	args := m.Called(ctx, actor, postSlug, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) DeletePost(ctx context.Context, actor entity.Actor, postSlug string) error {
	args := m.Called(ctx, actor, postSlug)
	return args.Error(0)
}

func (m *MockPostUseCase) Dashboard(ctx context.Context, actor entity.Actor) (*usecase.Dashboard, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.Dashboard), args.Error(1)
}

var _ usecase.PostUseCase = (*MockPostUseCase)(nil)

type MockCommentUseCase struct {
	mock.Mock
}

func (m *MockCommentUseCase) Submit(ctx context.Context, actor entity.Actor, postSlug, content string) (*entity.Comment, error) {
	args := m.Called(ctx, actor, postSlug, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Comment), args.Error(1)
}

func (m *MockCommentUseCase) Approve(ctx context.Context, actor entity.Actor, commentID string) (*entity.Comment, error) {
	args := m.Called(ctx, actor, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Comment), args.Error(1)
}

func (m *MockCommentUseCase) Delete(ctx context.Context, actor entity.Actor, commentID string) (*entity.Comment, error) {
	args := m.Called(ctx, actor, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Comment), args.Error(1)
}

func (m *MockCommentUseCase) ListPending(ctx context.Context, actor entity.Actor) ([]*entity.Comment, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Comment), args.Error(1)
}

var _ usecase.CommentUseCase = (*MockCommentUseCase)(nil)

type MockCategoryUseCase struct {
	mock.Mock
}

func (m *MockCategoryUseCase) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Category), args.Error(1)
}

func (m *MockCategoryUseCase) CreateCategory(ctx context.Context, actor entity.Actor, name string) (*entity.Category, error) {
	args := m.Called(ctx, actor, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

var _ usecase.CategoryUseCase = (*MockCategoryUseCase)(nil)

type MockFlashStore struct {
	mock.Mock
}

func (m *MockFlashStore) Add(ctx context.Context, userID string, level flash.Level, text string) error {
	args := m.Called(ctx, userID, level, text)
	return args.Error(0)
}

func (m *MockFlashStore) Pop(ctx context.Context, userID string) ([]flash.Message, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]flash.Message), args.Error(1)
}

var _ FlashStore = (*MockFlashStore)(nil)

type MockActorSource struct {
	mock.Mock
}

func (m *MockActorSource) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func setupTestRouter(actor entity.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(contextActor, actor)
		c.Next()
	})
	return r
}

func newTestResponder(store FlashStore) *Responder {
	return NewResponder(store, logger.NewNop(), "/accounts/login/", "/")
}
