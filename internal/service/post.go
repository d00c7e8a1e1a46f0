package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pribylovaa/upsc-blog/internal/models"
	"github.com/pribylovaa/upsc-blog/internal/pkg/log"
)

// PostView — модель страницы записи.
type PostView struct {
	Post models.Post
	// FromTopic — slug темы, с которой пришёл читатель; может быть пустым.
	FromTopic string
	BackURL   string
	BackText  string
}

// PostView возвращает запись по slug вместе со ссылкой «назад».
//
// Ошибки:
//   - ErrPostNotFound — запись отсутствует или источник недоступен;
//   - ошибка контекста — запрос отменён или истёк таймаут.
func (s *Service) PostView(ctx context.Context, postSlug, fromTopic string) (PostView, error) {
	const op = "service/PostView"

	post, ok := s.src.GetPostBySlug(ctx, postSlug)
	if err := ctx.Err(); err != nil {
		return PostView{}, fmt.Errorf("%s: %w", op, err)
	}

	if !ok {
		log.From(ctx).Warn("post_view_not_found",
			slog.String("op", op),
			slog.String("slug", postSlug),
		)

		return PostView{}, fmt.Errorf("%s: %w", op, ErrPostNotFound)
	}

	url, text := BackLink(fromTopic)

	return PostView{
		Post:      post,
		FromTopic: strings.TrimSpace(fromTopic),
		BackURL:   url,
		BackText:  text,
	}, nil
}

// BackLink — адрес и текст ссылки возврата к листингу.
func BackLink(fromTopic string) (string, string) {
	fromTopic = strings.TrimSpace(fromTopic)
	if fromTopic == "" {
		return "/upsc-blogs", "Back to all UPSC Blogs"
	}

	return "/upsc-blogs/" + fromTopic, "Back to " + strings.ReplaceAll(fromTopic, "-", " ") + " Blogs"
}
