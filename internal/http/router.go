package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/upsc-blog/internal/http/handlers"
	"github.com/pribylovaa/upsc-blog/internal/http/middleware"
	"github.com/pribylovaa/upsc-blog/internal/http/view"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	// Metrics — метрики входящих запросов; nil — без метрик.
	Metrics *middleware.HTTPMetrics
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(h *handlers.Handlers, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(h.WriteError), // безопасно ловим паники
		middleware.RequestID(),           // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger),  // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(opts.Metrics), // счётчики по шаблону маршрута
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes — единая точка регистрации всех страниц.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	r.Get("/", h.Home)
	r.Get("/blog", h.TopicIndex)
	r.Get("/blog/{postSlug}", h.Post)

	r.Get("/upsc-blogs", h.AllTopics)
	r.Get("/upsc-blogs/{topicSlug}", h.Topic)

	r.Get("/sitemap.xml", h.Sitemap)
	r.Handle("/static/*", view.Static())

	r.NotFound(h.NotFound)
}
