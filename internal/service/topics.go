package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pribylovaa/upsc-blog/internal/models"
	"github.com/pribylovaa/upsc-blog/internal/pkg/log"
)

// MainTopics оставляет темы верхнего уровня и сортирует их по имени
// с учётом правил языка (регистр и диакритика не ломают алфавитный порядок).
// Входной срез не изменяется.
func MainTopics(all []models.Topic) []models.Topic {
	out := make([]models.Topic, 0, len(all))
	for _, t := range all {
		if t.IsTopLevel() {
			out = append(out, t)
		}
	}

	col := collate.New(language.English)
	slices.SortStableFunc(out, func(a, b models.Topic) int {
		return col.CompareString(a.Name, b.Name)
	})

	return out
}

// TopicCategoryIDs — рубрики, записи которых попадают на страницу темы:
// сама тема и её прямые подрубрики. Тема без идентификатора даёт пустой
// фильтр, то есть все записи.
func TopicCategoryIDs(topic models.Topic, all []models.Topic) []int64 {
	if !topic.HasID() {
		return nil
	}

	ids := []int64{topic.ID}
	for _, t := range all {
		if t.Parent == topic.ID && t.HasID() && t.ID != topic.ID {
			ids = append(ids, t.ID)
		}
	}

	return ids
}

// FindTopic ищет тему по slug.
func FindTopic(topics []models.Topic, slug string) (models.Topic, bool) {
	for _, t := range topics {
		if t.Slug == slug {
			return t, true
		}
	}

	return models.Topic{}, false
}

// TopicIndex возвращает темы верхнего уровня для страницы /blog.
func (s *Service) TopicIndex(ctx context.Context) ([]models.Topic, error) {
	const op = "service/TopicIndex"

	topics := MainTopics(s.src.ListCategories(ctx))
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Debug("topic_index_ok",
		slog.String("op", op),
		slog.Int("topics", len(topics)),
	)

	return topics, nil
}
