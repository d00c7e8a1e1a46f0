package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/upsc-blog/internal/models"
	"github.com/pribylovaa/upsc-blog/internal/pkg/log"
)

// Listing — модель страницы списка записей.
type Listing struct {
	// Topics — темы верхнего уровня для селектора.
	Topics []models.Topic
	// Topic — выбранная тема; nil на странице всех тем.
	Topic *models.Topic
	// Posts — записи текущей страницы (date desc).
	Posts []models.Post
	// Latest — первая запись текущей страницы; nil, если записей нет.
	Latest *models.Post
	// Page — запрошенная страница (без проверки диапазона).
	Page int
	// Total — общее число записей выборки.
	Total int
	// TotalPages = ceil(Total / PerPage).
	TotalPages int
	// BaseURL — адрес листинга без query, база для пейджера.
	BaseURL string
}

// CurrentSlug — slug выбранной темы или "".
func (l Listing) CurrentSlug() string {
	if l.Topic == nil {
		return ""
	}

	return l.Topic.Slug
}

// TotalPages = ceil(total / perPage); 0 при пустой выборке.
func TotalPages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}

	return (total + perPage - 1) / perPage
}

// AllTopicsListing — страница «все темы»: последние записи без фильтра.
// Рубрики и страница записей запрашиваются параллельно.
func (s *Service) AllTopicsListing(ctx context.Context, page int) (Listing, error) {
	const op = "service/AllTopicsListing"

	page = normalizePage(page)

	var (
		categories []models.Topic
		pp         models.PostPage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		categories = s.src.ListCategories(gctx)
		return gctx.Err()
	})
	g.Go(func() error {
		pp = s.src.ListPostsPage(gctx, models.ListQuery{Page: page, PerPage: s.perPage})
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return Listing{}, fmt.Errorf("%s: %w", op, err)
	}

	total := s.total(ctx, pp, nil)
	if err := ctx.Err(); err != nil {
		return Listing{}, fmt.Errorf("%s: %w", op, err)
	}

	l := newListing(MainTopics(categories), nil, pp.Posts, page, total, s.perPage, "/upsc-blogs")

	log.From(ctx).Info("all_topics_listing_ok",
		slog.String("op", op),
		slog.Int("page", page),
		slog.Int("posts", len(l.Posts)),
		slog.Int("total", l.Total),
		slog.Int("total_pages", l.TotalPages),
	)

	return l, nil
}

// TopicListing — страница темы: записи темы и её прямых подрубрик (ИЛИ).
//
// Ошибки:
//   - ErrTopicNotFound — slug не найден среди тем верхнего уровня
//     (в том числе когда рубрики не удалось получить);
//   - ошибка контекста — запрос отменён или истёк таймаут.
func (s *Service) TopicListing(ctx context.Context, topicSlug string, page int) (Listing, error) {
	const op = "service/TopicListing"

	lg := log.From(ctx)
	page = normalizePage(page)

	categories := s.src.ListCategories(ctx)
	if err := ctx.Err(); err != nil {
		return Listing{}, fmt.Errorf("%s: %w", op, err)
	}

	topics := MainTopics(categories)

	topic, ok := FindTopic(topics, topicSlug)
	if !ok {
		lg.Warn("topic_not_found",
			slog.String("op", op),
			slog.String("slug", topicSlug),
			slog.Int("main_topics", len(topics)),
		)

		return Listing{}, fmt.Errorf("%s: %w", op, ErrTopicNotFound)
	}

	ids := TopicCategoryIDs(topic, categories)
	if len(ids) == 0 {
		lg.Warn("topic_without_id", slog.String("op", op), slog.String("slug", topicSlug))
	}

	pp := s.src.ListPostsPage(ctx, models.ListQuery{CategoryIDs: ids, Page: page, PerPage: s.perPage})
	total := s.total(ctx, pp, ids)
	if err := ctx.Err(); err != nil {
		return Listing{}, fmt.Errorf("%s: %w", op, err)
	}

	l := newListing(topics, &topic, pp.Posts, page, total, s.perPage, "/upsc-blogs/"+topic.Slug)

	lg.Info("topic_listing_ok",
		slog.String("op", op),
		slog.String("slug", topic.Slug),
		slog.Any("category_ids", ids),
		slog.Int("page", page),
		slog.Int("posts", len(l.Posts)),
		slog.Int("total", l.Total),
		slog.Int("total_pages", l.TotalPages),
	)

	return l, nil
}

// total — число записей выборки: из ответа страницы, иначе отдельным подсчётом.
// Неудачный подсчёт даёт 0, пейджер тогда не показывается.
func (s *Service) total(ctx context.Context, pp models.PostPage, ids []int64) int {
	if pp.TotalKnown {
		return pp.Total
	}

	n, ok := s.src.CountPosts(ctx, ids)
	if !ok {
		return 0
	}

	return n
}

func newListing(topics []models.Topic, topic *models.Topic, posts []models.Post, page, total, perPage int, baseURL string) Listing {
	if posts == nil {
		posts = []models.Post{}
	}

	l := Listing{
		Topics:     topics,
		Topic:      topic,
		Posts:      posts,
		Page:       page,
		Total:      total,
		TotalPages: TotalPages(total, perPage),
		BaseURL:    baseURL,
	}

	if len(posts) > 0 {
		latest := posts[0]
		l.Latest = &latest
	}

	return l
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}

	return page
}
