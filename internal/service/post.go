package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/campushub/campushub/internal/cache"
	"github.com/campushub/campushub/internal/domain"
	"github.com/campushub/campushub/internal/pagination"
	"github.com/campushub/campushub/internal/telemetry"
)

const (
	trendingCacheKey     = "posts:trending"
	trendingCacheTTL     = 5 * time.Minute
	DefaultTrendingLimit = 10
)

// PostRepositoryInterface defines the repository interface for post persistence
type PostRepositoryInterface interface {
	Create(ctx context.Context, p *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.PostDetail, error)
	List(ctx context.Context, f PostFilters, limit, offset int) ([]domain.PostSummary, int, error)
	Trending(ctx context.Context, limit int) ([]domain.PostSummary, error)
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// PostService handles business logic for forum posts
type PostService struct {
	repo    PostRepositoryInterface
	cache   cache.Cache
	uuidGen UUIDGenerator
}

// NewPostService creates a new PostService instance
func NewPostService(repo PostRepositoryInterface, c cache.Cache) *PostService {
	return &PostService{repo: repo, cache: c, uuidGen: &DefaultUUIDGenerator{}}
}

// NewPostServiceWithUUIDGen creates a new PostService with custom UUID generator (for testing)
func NewPostServiceWithUUIDGen(repo PostRepositoryInterface, c cache.Cache, uuidGen UUIDGenerator) *PostService {
	return &PostService{repo: repo, cache: c, uuidGen: uuidGen}
}

// CreatePostInput represents the input for creating a post
type CreatePostInput struct {
	AuthorID     string
	UniversityID string
	Category     domain.PostCategory
	Title        string
	Content      string
	Tags         []string
}

// Create validates and persists a new post.
func (s *PostService) Create(ctx context.Context, input CreatePostInput) (*domain.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostService.Create", telemetry.SpanAttributes{
		UserID:       input.AuthorID,
		UniversityID: input.UniversityID,
		Operation:    "create",
	})
	defer span.End()

	if input.Title == "" || input.Content == "" {
		return nil, domain.ErrMissingRequiredField
	}
	if !domain.ValidPostCategory(input.Category) {
		return nil, domain.ErrInvalidPostCategory
	}

	now := time.Now().UTC()
	post := &domain.Post{
		ID:           s.uuidGen.NewString(),
		AuthorID:     input.AuthorID,
		UniversityID: input.UniversityID,
		Category:     input.Category,
		Title:        input.Title,
		Content:      input.Content,
		Tags:         input.Tags,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		span.SetError(err)
		return nil, err
	}
	return post, nil
}

// Get returns a single post with author and university resolved.
func (s *PostService) Get(ctx context.Context, id string) (*domain.PostDetail, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns posts newest first, filtered by category and university.
func (s *PostService) List(ctx context.Context, f PostFilters, opts SearchOptions) (*ResultSet[domain.PostSummary], error) {
	page, limit := pagination.Clamp(opts.Page, opts.Limit, pagination.DefaultLimit)
	offset := pagination.Offset(page, limit)
	posts, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, err
	}
	return &ResultSet[domain.PostSummary]{Results: posts, Total: total}, nil
}

// Trending returns the most-liked posts of the last seven days. The result
// is memoized; a cache failure falls through to the database.
func (s *PostService) Trending(ctx context.Context, limit int) ([]domain.PostSummary, error) {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}

	if raw, err := s.cache.Get(ctx, trendingCacheKey); err == nil {
		var cached []domain.PostSummary
		if err := json.Unmarshal(raw, &cached); err == nil && len(cached) >= limit {
			return cached[:limit], nil
		}
	}

	posts, err := s.repo.Trending(ctx, DefaultTrendingLimit)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(posts); err == nil {
		if err := s.cache.Set(ctx, trendingCacheKey, raw, trendingCacheTTL); err != nil {
			log.Printf("posts: failed to cache trending: %v", err)
		}
	}

	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}
