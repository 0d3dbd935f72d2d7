package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"advanced-blog/pkg/activity"
	"advanced-blog/pkg/logger"
	"advanced-blog/pkg/models"
	"advanced-blog/pkg/s3"
	"advanced-blog/pkg/slug"
	"advanced-blog/services/blog/internal/entity"
	"advanced-blog/services/blog/internal/policy"
	"advanced-blog/services/blog/internal/repo/persistent"
)

// PageSize is the number of posts on one listing page.
const PageSize = 10

const (
	maxTitleLength   = 200
	maxTagNameLength = 50
)

// ImageStore keeps uploaded featured images.
type ImageStore interface {
	UploadFile(key string, file io.Reader, contentType string) (string, error)
	DeleteByURL(url string) error
}

// Notifier receives a task for every publish transition.
type Notifier interface {
	PublishNotificationTask(task map[string]interface{}) error
}

type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type PostInput struct {
	Title      string
	Content    string
	CategoryID string
	Status     entity.PostStatus
	// TagsInput is a comma separated list of tag names. It replaces the
	// post's tags; an empty value clears them.
	TagsInput     string
	FeaturedImage *Upload
	// FieldErrors are problems found while decoding the request. They are
	// reported with the other validation errors, after the permission check.
	FieldErrors map[string]string
}

type PostPage struct {
	Posts      []*entity.Post `json:"posts"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	Total      int64          `json:"total"`
}

type PostDetail struct {
	Post     *entity.Post      `json:"post"`
	Comments []*entity.Comment `json:"comments"`
	CanEdit  bool              `json:"can_edit"`
}

type PostForm struct {
	Categories []*entity.Category  `json:"categories"`
	Statuses   []entity.PostStatus `json:"statuses"`
	Post       *entity.Post        `json:"post,omitempty"`
	TagsInput  string              `json:"tags_input"`
}

type Dashboard struct {
	Drafts    []*entity.Post `json:"drafts"`
	Published []*entity.Post `json:"published"`
	AllPosts  []*entity.Post `json:"all_posts,omitempty"`
	UserCount int64          `json:"user_count,omitempty"`
}

type PostUseCase interface {
	ListPublished(ctx context.Context, page int) (*PostPage, error)
	ListByCategory(ctx context.Context, categorySlug string, page int) (*entity.Category, *PostPage, error)
	ListByTag(ctx context.Context, tagSlug string, page int) (*entity.Tag, *PostPage, error)
	Search(ctx context.Context, query string, page int) (*PostPage, error)
	GetPost(ctx context.Context, actor entity.Actor, postSlug string) (*PostDetail, error)
	NewPostForm(ctx context.Context, actor entity.Actor) (*PostForm, error)
	CreatePost(ctx context.Context, actor entity.Actor, input PostInput) (*entity.Post, error)
	EditPostForm(ctx context.Context, actor entity.Actor, postSlug string) (*PostForm, error)
	UpdatePost(ctx context.Context, actor entity.Actor, postSlug string, input PostInput) (*entity.Post, error)
	DeletePost(ctx context.Context, actor entity.Actor, postSlug string) error
	Dashboard(ctx context.Context, actor entity.Actor) (*Dashboard, error)
}

type postUseCase struct {
	postRepo     persistent.PostRepository
	commentRepo  persistent.CommentRepository
	taxonomyRepo persistent.TaxonomyRepository
	userRepo     persistent.UserRepository
	recorder     activity.Recorder
	images       ImageStore
	notifier     Notifier
	logger       *logger.Logger
}

// NewPostUseCase wires the post operations. images and notifier may be nil.
func NewPostUseCase(
	postRepo persistent.PostRepository,
	commentRepo persistent.CommentRepository,
	taxonomyRepo persistent.TaxonomyRepository,
	userRepo persistent.UserRepository,
	recorder activity.Recorder,
	images ImageStore,
	notifier Notifier,
	logger *logger.Logger,
) PostUseCase {
	return &postUseCase{
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		taxonomyRepo: taxonomyRepo,
		userRepo:     userRepo,
		recorder:     recorder,
		images:       images,
		notifier:     notifier,
		logger:       logger,
	}
}

func (uc *postUseCase) ListPublished(ctx context.Context, page int) (*PostPage, error) {
	return uc.page(ctx, persistent.PostFilter{Status: entity.StatusPublished}, page)
}

func (uc *postUseCase) ListByCategory(ctx context.Context, categorySlug string, page int) (*entity.Category, *PostPage, error) {
	category, err := uc.taxonomyRepo.GetCategoryBySlug(ctx, categorySlug)
	if err != nil {
		return nil, nil, notFound(err)
	}

	posts, err := uc.page(ctx, persistent.PostFilter{Status: entity.StatusPublished, CategoryID: category.ID}, page)
	if err != nil {
		return nil, nil, err
	}
	return category, posts, nil
}

func (uc *postUseCase) ListByTag(ctx context.Context, tagSlug string, page int) (*entity.Tag, *PostPage, error) {
	tag, err := uc.taxonomyRepo.GetTagBySlug(ctx, tagSlug)
	if err != nil {
		return nil, nil, notFound(err)
	}

	posts, err := uc.page(ctx, persistent.PostFilter{Status: entity.StatusPublished, TagID: tag.ID}, page)
	if err != nil {
		return nil, nil, err
	}
	return tag, posts, nil
}

// Search matches published posts by title or content. An empty query finds
// nothing.
func (uc *postUseCase) Search(ctx context.Context, query string, page int) (*PostPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &PostPage{Posts: []*entity.Post{}, Page: 1}, nil
	}
	return uc.page(ctx, persistent.PostFilter{Status: entity.StatusPublished, Query: query}, page)
}

func (uc *postUseCase) page(ctx context.Context, filter persistent.PostFilter, page int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}

	posts, total, err := uc.postRepo.List(ctx, filter, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	totalPages := int((total + PageSize - 1) / PageSize)
	if page > 1 && page > totalPages {
		return nil, ErrNotFound
	}

	return &PostPage{
		Posts:      posts,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

func (uc *postUseCase) GetPost(ctx context.Context, actor entity.Actor, postSlug string) (*PostDetail, error) {
	post, err := uc.postRepo.GetBySlug(ctx, postSlug)
	if err != nil {
		return nil, notFound(err)
	}

	resource := policy.PostResource(post)
	if !policy.CanPerform(actor, policy.ViewPost, resource) {
		return nil, denied(policy.ViewPost)
	}

	comments, err := uc.commentRepo.ListApprovedByPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return &PostDetail{
		Post:     post,
		Comments: comments,
		CanEdit:  policy.CanPerform(actor, policy.EditPost, resource),
	}, nil
}

func (uc *postUseCase) NewPostForm(ctx context.Context, actor entity.Actor) (*PostForm, error) {
	if !policy.CanPerform(actor, policy.CreatePost, policy.Resource{}) {
		return nil, denied(policy.CreatePost)
	}

	categories, err := uc.taxonomyRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return &PostForm{Categories: categories, Statuses: entity.Statuses}, nil
}

func (uc *postUseCase) EditPostForm(ctx context.Context, actor entity.Actor, postSlug string) (*PostForm, error) {
	post, err := uc.postRepo.GetBySlug(ctx, postSlug)
	if err != nil {
		return nil, notFound(err)
	}
	if !policy.CanPerform(actor, policy.EditPost, policy.PostResource(post)) {
		return nil, denied(policy.EditPost)
	}

	categories, err := uc.taxonomyRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return &PostForm{
		Categories: categories,
		Statuses:   entity.Statuses,
		Post:       post,
		TagsInput:  post.TagsInput(),
	}, nil
}

func (uc *postUseCase) CreatePost(ctx context.Context, actor entity.Actor, input PostInput) (*entity.Post, error) {
	if !policy.CanPerform(actor, policy.CreatePost, policy.Resource{}) {
		return nil, denied(policy.CreatePost)
	}

	fields, err := uc.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	tags, err := uc.resolveTags(ctx, fields.tags)
	if err != nil {
		return nil, err
	}

	base := slug.Make(fields.title)
	if base == "" {
		base = "post"
	}
	postSlug, err := slug.Unique(base, func(candidate string) (bool, error) {
		return uc.postRepo.SlugExists(ctx, candidate)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to allocate slug: %w", err)
	}

	post := &entity.Post{
		Title:      fields.title,
		Slug:       postSlug,
		AuthorID:   actor.ID,
		CategoryID: fields.categoryID,
		Tags:       tags,
		Content:    fields.content,
		Status:     fields.status,
	}

	if input.FeaturedImage != nil {
		url, err := uc.uploadImage(actor.ID, input.FeaturedImage)
		if err != nil {
			return nil, err
		}
		post.FeaturedImageURL = url
	}

	if err := uc.save(ctx, post); err != nil {
		return nil, err
	}

	uc.logger.Info("Post %s created by user %s", post.Slug, actor.ID)
	return uc.reload(ctx, post.ID)
}

func (uc *postUseCase) UpdatePost(ctx context.Context, actor entity.Actor, postSlug string, input PostInput) (*entity.Post, error) {
	post, err := uc.postRepo.GetBySlug(ctx, postSlug)
	if err != nil {
		return nil, notFound(err)
	}
	if !policy.CanPerform(actor, policy.EditPost, policy.PostResource(post)) {
		return nil, denied(policy.EditPost)
	}

	fields, err := uc.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	tags, err := uc.resolveTags(ctx, fields.tags)
	if err != nil {
		return nil, err
	}

	previousImage := post.FeaturedImageURL
	if input.FeaturedImage != nil {
		url, err := uc.uploadImage(post.AuthorID, input.FeaturedImage)
		if err != nil {
			return nil, err
		}
		post.FeaturedImageURL = url
	}

	post.Title = fields.title
	post.Content = fields.content
	post.Status = fields.status
	post.CategoryID = fields.categoryID
	post.Category = nil
	post.Tags = tags

	if err := uc.save(ctx, post); err != nil {
		return nil, err
	}

	if previousImage != "" && previousImage != post.FeaturedImageURL {
		uc.removeImage(previousImage)
	}

	uc.logger.Info("Post %s updated by user %s", post.Slug, actor.ID)
	return uc.reload(ctx, post.ID)
}

func (uc *postUseCase) DeletePost(ctx context.Context, actor entity.Actor, postSlug string) error {
	post, err := uc.postRepo.GetBySlug(ctx, postSlug)
	if err != nil {
		return notFound(err)
	}
	if !policy.CanPerform(actor, policy.DeletePost, policy.PostResource(post)) {
		return denied(policy.DeletePost)
	}

	if err := uc.postRepo.Delete(ctx, post.ID); err != nil {
		return fmt.Errorf("failed to delete post: %w", notFound(err))
	}

	if post.FeaturedImageURL != "" {
		uc.removeImage(post.FeaturedImageURL)
	}

	uc.logger.Info("Post %s deleted by user %s", post.Slug, actor.ID)
	return nil
}

func (uc *postUseCase) Dashboard(ctx context.Context, actor entity.Actor) (*Dashboard, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrPermissionDenied
	}

	own, _, err := uc.postRepo.List(ctx, persistent.PostFilter{AuthorID: actor.ID}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	dashboard := &Dashboard{
		Drafts:    []*entity.Post{},
		Published: []*entity.Post{},
	}
	for _, post := range own {
		if post.IsPublished() {
			dashboard.Published = append(dashboard.Published, post)
		} else {
			dashboard.Drafts = append(dashboard.Drafts, post)
		}
	}

	if actor.IsAdmin() {
		dashboard.AllPosts, _, err = uc.postRepo.List(ctx, persistent.PostFilter{}, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to list posts: %w", err)
		}
		dashboard.UserCount, err = uc.userRepo.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
	}
	return dashboard, nil
}

// save is the only write path for posts. It records post_published when the
// stored status moves into published.
func (uc *postUseCase) save(ctx context.Context, post *entity.Post) error {
	prev, err := uc.postRepo.Save(ctx, post)
	if err != nil {
		return fmt.Errorf("failed to save post: %w", err)
	}
	if !PublishTransition(prev, post.Status) {
		return nil
	}

	details := map[string]interface{}{
		"post_id": post.ID,
		"title":   post.Title,
	}
	if err := uc.recorder.Record(ctx, post.AuthorID, models.ActivityPostPublished, details); err != nil {
		return err
	}
	uc.logger.Info("Post %s published by user %s", post.ID, post.AuthorID)

	uc.notifyPublished(post)
	return nil
}

func (uc *postUseCase) notifyPublished(post *entity.Post) {
	if uc.notifier == nil {
		return
	}

	task := map[string]interface{}{
		"type":      models.ActivityPostPublished,
		"post_id":   post.ID,
		"slug":      post.Slug,
		"title":     post.Title,
		"author_id": post.AuthorID,
		"priority":  5,
	}
	go func() {
		if err := uc.notifier.PublishNotificationTask(task); err != nil {
			uc.logger.Error("[NOTIFICATION QUEUE] Failed to publish post_published task for post %s: %v", task["post_id"], err)
		}
	}()
}

func (uc *postUseCase) reload(ctx context.Context, id string) (*entity.Post, error) {
	post, err := uc.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", notFound(err))
	}
	return post, nil
}

type tagName struct {
	name string
	slug string
}

type postFields struct {
	title      string
	content    string
	status     entity.PostStatus
	categoryID *string
	tags       []tagName
}

func (uc *postUseCase) validate(ctx context.Context, input PostInput) (*postFields, error) {
	errs := map[string]string{}
	fields := &postFields{
		title:   strings.TrimSpace(input.Title),
		content: strings.TrimSpace(input.Content),
		status:  input.Status,
	}

	switch {
	case fields.title == "":
		errs["title"] = "This field is required."
	case utf8.RuneCountInString(fields.title) > maxTitleLength:
		errs["title"] = fmt.Sprintf("Ensure this value has at most %d characters.", maxTitleLength)
	}
	if fields.content == "" {
		errs["content"] = "This field is required."
	}

	if fields.status == "" {
		fields.status = entity.StatusDraft
	}
	if !fields.status.Valid() {
		errs["status"] = "Select a valid choice."
	}

	if id := strings.TrimSpace(input.CategoryID); id != "" {
		category, err := uc.taxonomyRepo.GetCategoryByID(ctx, id)
		switch {
		case err == nil:
			fields.categoryID = &category.ID
		case isNotFound(err):
			errs["category"] = "Select a valid choice. That choice is not one of the available choices."
		default:
			return nil, fmt.Errorf("failed to load category: %w", err)
		}
	}

	tags, msg := parseTagsInput(input.TagsInput)
	if msg != "" {
		errs["tags_input"] = msg
	}
	fields.tags = tags

	for field, msg := range input.FieldErrors {
		errs[field] = msg
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	return fields, nil
}

// parseTagsInput splits a comma separated list into distinct tags keyed by
// slug. Entries without any usable character are skipped.
func parseTagsInput(raw string) ([]tagName, string) {
	seen := map[string]bool{}
	var tags []tagName
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if utf8.RuneCountInString(name) > maxTagNameLength {
			return nil, fmt.Sprintf("Tag names must have at most %d characters.", maxTagNameLength)
		}
		tagSlug := slug.Make(name)
		if tagSlug == "" || seen[tagSlug] {
			continue
		}
		seen[tagSlug] = true
		tags = append(tags, tagName{name: name, slug: tagSlug})
	}
	return tags, ""
}

func (uc *postUseCase) resolveTags(ctx context.Context, names []tagName) ([]entity.Tag, error) {
	tags := make([]entity.Tag, 0, len(names))
	for _, n := range names {
		tag, err := uc.taxonomyRepo.GetOrCreateTag(ctx, n.name, n.slug)
		if err != nil {
			return nil, fmt.Errorf("failed to get or create tag %s: %w", n.slug, err)
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

func (uc *postUseCase) uploadImage(ownerID string, upload *Upload) (string, error) {
	if uc.images == nil {
		return "", invalid("featured_image", "Image uploads are not available.")
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	url, err := uc.images.UploadFile(s3.ObjectKey("posts", ownerID, upload.Filename), upload.Body, contentType)
	if err != nil {
		uc.logger.Error("Failed to upload featured image: %v", err)
		return "", fmt.Errorf("failed to upload featured image: %w", err)
	}
	return url, nil
}

func (uc *postUseCase) removeImage(url string) {
	if uc.images == nil {
		return
	}
	if err := uc.images.DeleteByURL(url); err != nil {
		uc.logger.Warn("Failed to remove featured image %s: %v", url, err)
	}
}
