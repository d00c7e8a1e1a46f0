// service собирает страницы блога из данных контент-API.
package service

import (
	"context"
	"errors"

	"github.com/pribylovaa/upsc-blog/internal/models"
)

var (
	// ErrTopicNotFound — slug не совпал ни с одной темой верхнего уровня.
	// Транспорт: 404.
	ErrTopicNotFound = errors.New("topic not found")
	// ErrPostNotFound — запись с таким slug отсутствует.
	// Транспорт: 404.
	ErrPostNotFound = errors.New("post not found")
)

// Source — контент-API в том виде, в каком его видит сервис.
// Методы не возвращают ошибок: отказ источника выражается пустым результатом.
type Source interface {
	ListPostsPage(ctx context.Context, q models.ListQuery) models.PostPage
	CountPosts(ctx context.Context, categoryIDs []int64) (int, bool)
	ListAllSlugs(ctx context.Context) []string
	GetPostBySlug(ctx context.Context, slug string) (models.Post, bool)
	ListCategories(ctx context.Context) []models.Topic
}

// Service — построение моделей страниц.
type Service struct {
	src     Source
	perPage int
}

// New создает новый экземпляр Service. perPage <= 0 -> 6.
func New(src Source, perPage int) *Service {
	if perPage <= 0 {
		perPage = 6
	}

	return &Service{
		src:     src,
		perPage: perPage,
	}
}

// PerPage — размер страницы листинга.
func (s *Service) PerPage() int { return s.perPage }
