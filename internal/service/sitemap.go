package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/upsc-blog/internal/models"
	"github.com/pribylovaa/upsc-blog/internal/pkg/log"
)

// SitemapEntry — один адрес карты сайта (путь относительно корня).
type SitemapEntry struct {
	Path string
}

// Sitemap перечисляет все страницы, которые можно отрисовать:
// листинги, страницы тем верхнего уровня и записи (до лимита ListAllSlugs).
func (s *Service) Sitemap(ctx context.Context) ([]SitemapEntry, error) {
	const op = "service/Sitemap"

	var (
		categories []models.Topic
		slugs      []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		categories = s.src.ListCategories(gctx)
		return gctx.Err()
	})
	g.Go(func() error {
		slugs = s.src.ListAllSlugs(gctx)
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	topics := MainTopics(categories)

	entries := make([]SitemapEntry, 0, 3+len(topics)+len(slugs))
	entries = append(entries,
		SitemapEntry{Path: "/"},
		SitemapEntry{Path: "/blog"},
		SitemapEntry{Path: "/upsc-blogs"},
	)
	for _, t := range topics {
		entries = append(entries, SitemapEntry{Path: "/upsc-blogs/" + t.Slug})
	}
	for _, slug := range slugs {
		entries = append(entries, SitemapEntry{Path: "/blog/" + slug})
	}

	log.From(ctx).Info("sitemap_ok",
		slog.String("op", op),
		slog.Int("topics", len(topics)),
		slog.Int("posts", len(slugs)),
	)

	return entries, nil
}
