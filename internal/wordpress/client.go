// wordpress — слой доступа к контенту: тонкие обёртки над REST API WordPress.
//
// Контракт отказов: любая ошибка транспорта/статуса/декодирования логируется
// (op, url, status, тело) и превращается в «пустой» результат — пустой срез
// или ok == false. Вызывающий не различает «нет данных» и «API недоступно».
package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/pribylovaa/upsc-blog/internal/models"
	"github.com/pribylovaa/upsc-blog/internal/pkg/log"
)

const (
	// defaultPerPage — размер страницы, если вызывающий его не задал.
	defaultPerPage = 10
	// defaultPerPageMax — верхняя граница per_page у WordPress.
	defaultPerPageMax = 100
	// maxCountPages — предохранитель цикла подсчёта в CountPosts.
	maxCountPages = 100
	// maxBodyBytes — ограничение на размер ответа апстрима.
	maxBodyBytes = 16 << 20
	// bodyLogLimit — сколько байт тела ответа попадает в лог при ошибке.
	bodyLogLimit = 512
)

type ctxKey string

// CtxRequestID — ключ контекста с идентификатором входящего запроса.
// Его кладёт HTTP-мидлвар RequestID, клиент прокидывает его в X-Request-Id.
const CtxRequestID ctxKey = "request_id"

// Options — явная конфигурация клиента (без глобальных констант).
type Options struct {
	// BaseURL — корень API, например https://public-api.wordpress.com/rest/v1.1/sites/example.wordpress.com/.
	BaseURL string
	// HTTPClient — транспорт; nil -> &http.Client{Timeout: Timeout}.
	HTTPClient *http.Client
	// Timeout — таймаут HTTP-клиента по умолчанию.
	Timeout time.Duration
	// DefaultPerPage — размер страницы при perPage <= 0.
	DefaultPerPage int
	// PerPageMax — per_page для ListAllSlugs/ListCategories/CountPosts.
	PerPageMax int
	// UserAgent — значение заголовка User-Agent.
	UserAgent string
	// RateLimit — ограничение исходящих запросов в секунду; <= 0 — без ограничения.
	RateLimit float64
	// Burst — всплеск для RateLimit; <= 0 -> 1.
	Burst int
	// Registerer — куда регистрировать метрики; nil — метрики не регистрируются.
	Registerer prometheus.Registerer
}

// Client — клиент контент-API.
type Client struct {
	base           *url.URL
	http           *http.Client
	defaultPerPage int
	perPageMax     int
	userAgent      string
	limiter        *rate.Limiter
	metrics        *metrics
}

// StatusError — апстрим ответил не-2xx статусом.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// New создаёт клиент. Ошибка возможна только при некорректном BaseURL
// или при повторной регистрации метрик.
func New(opts Options) (*Client, error) {
	const op = "wordpress/New"

	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("%s: empty base url", op)
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}

	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: parse base url: %w", op, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%s: unsupported scheme %q", op, base.Scheme)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	perPage := opts.DefaultPerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	perPageMax := opts.PerPageMax
	if perPageMax <= 0 {
		perPageMax = defaultPerPageMax
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "upsc-blog"
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	m, err := newMetrics(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("%s: metrics: %w", op, err)
	}

	return &Client{
		base:           base,
		http:           hc,
		defaultPerPage: perPage,
		perPageMax:     perPageMax,
		userAgent:      ua,
		limiter:        limiter,
		metrics:        m,
	}, nil
}

// ListPosts возвращает страницу последних записей (date desc).
// Непустой categoryIDs ограничивает выборку записями любой из рубрик (ИЛИ).
// При любой ошибке — пустой срез.
func (c *Client) ListPosts(ctx context.Context, categoryIDs []int64, page, perPage int) []models.Post {
	return c.ListPostsPage(ctx, models.ListQuery{
		CategoryIDs: categoryIDs,
		Page:        page,
		PerPage:     perPage,
	}).Posts
}

// ListPostsPage — то же, что ListPosts, но вместе с общим числом записей выборки,
// взятым из того же ответа (поле found или заголовок X-WP-Total).
func (c *Client) ListPostsPage(ctx context.Context, q models.ListQuery) models.PostPage {
	const op = "wordpress/ListPostsPage"

	page := q.Page
	if page <= 0 {
		page = 1
	}

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = c.defaultPerPage
	}

	params := url.Values{}
	params.Set("_embed", "1")
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	if len(q.CategoryIDs) > 0 {
		params.Set("categories", joinIDs(q.CategoryIDs))
	}
	params.Set("orderby", "date")
	params.Set("order", "desc")

	u := c.endpoint("posts", params)
	lg := log.From(ctx)

	body, header, err := c.get(ctx, "list_posts", u)
	if err != nil {
		c.logFailure(ctx, op, u, err)
		return models.PostPage{Posts: []models.Post{}}
	}

	env, err := decodeEnvelope(body, "posts")
	if err != nil {
		c.logFailure(ctx, op, u, fmt.Errorf("decode: %w", err))
		return models.PostPage{Posts: []models.Post{}}
	}

	posts := c.decodePosts(ctx, op, env.Items)

	out := models.PostPage{Posts: posts}
	switch {
	case env.Found >= 0:
		out.Total, out.TotalKnown = env.Found, true
	default:
		if n, ok := headerTotal(header); ok {
			out.Total, out.TotalKnown = n, true
		}
	}

	lg.Debug("posts_fetched",
		slog.String("op", op),
		slog.String("url", u),
		slog.Int("count", len(posts)),
		slog.Int("total", out.Total),
		slog.Bool("total_known", out.TotalKnown),
	)

	return out
}

// CountPosts считает записи выборки постраничным запросом одних идентификаторов.
// Используется, когда источник не сообщает total. ok == false при ошибке.
func (c *Client) CountPosts(ctx context.Context, categoryIDs []int64) (int, bool) {
	const op = "wordpress/CountPosts"

	total := 0
	for page := 1; page <= maxCountPages; page++ {
		params := url.Values{}
		params.Set("fields", "ID")
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(c.perPageMax))
		if len(categoryIDs) > 0 {
			params.Set("categories", joinIDs(categoryIDs))
		}

		u := c.endpoint("posts", params)

		body, _, err := c.get(ctx, "count_posts", u)
		if err != nil {
			// WordPress отвечает 400 на страницу за пределами выборки.
			var se *StatusError
			if page > 1 && errors.As(err, &se) && se.StatusCode == http.StatusBadRequest {
				return total, true
			}
			c.logFailure(ctx, op, u, err)
			return 0, false
		}

		env, err := decodeEnvelope(body, "posts")
		if err != nil {
			c.logFailure(ctx, op, u, fmt.Errorf("decode: %w", err))
			return 0, false
		}

		if env.Found >= 0 {
			return env.Found, true
		}

		total += len(env.Items)
		if len(env.Items) < c.perPageMax {
			return total, true
		}
	}

	log.From(ctx).Warn("count_truncated",
		slog.String("op", op),
		slog.Int("pages", maxCountPages),
		slog.Int("total", total),
	)

	return total, true
}

// ListAllSlugs возвращает slug'и до PerPageMax записей.
// Записи сверх лимита молча отсекаются — известное ограничение.
func (c *Client) ListAllSlugs(ctx context.Context) []string {
	const op = "wordpress/ListAllSlugs"

	params := url.Values{}
	params.Set("fields", "slug")
	params.Set("per_page", strconv.Itoa(c.perPageMax))

	u := c.endpoint("posts", params)

	body, _, err := c.get(ctx, "list_slugs", u)
	if err != nil {
		c.logFailure(ctx, op, u, err)
		return []string{}
	}

	env, err := decodeEnvelope(body, "posts")
	if err != nil {
		c.logFailure(ctx, op, u, fmt.Errorf("decode: %w", err))
		return []string{}
	}

	slugs := make([]string, 0, len(env.Items))
	for _, raw := range env.Items {
		var rs rawSlug
		if err := json.Unmarshal(raw, &rs); err != nil || rs.Slug == "" {
			continue
		}
		slugs = append(slugs, rs.Slug)
	}

	log.From(ctx).Debug("slugs_fetched", slog.String("op", op), slog.Int("count", len(slugs)))

	return slugs
}

// GetPostBySlug ищет запись по точному slug.
// Пустая выборка или ошибка дают ok == false, но не ошибку.
func (c *Client) GetPostBySlug(ctx context.Context, slug string) (models.Post, bool) {
	const op = "wordpress/GetPostBySlug"

	slug = strings.TrimSpace(slug)
	if slug == "" {
		return models.Post{}, false
	}

	params := url.Values{}
	params.Set("_embed", "1")
	params.Set("slug", slug)

	u := c.endpoint("posts", params)
	lg := log.From(ctx)

	body, _, err := c.get(ctx, "get_post", u)
	if err != nil {
		c.logFailure(ctx, op, u, err)
		return models.Post{}, false
	}

	env, err := decodeEnvelope(body, "posts")
	if err != nil {
		c.logFailure(ctx, op, u, fmt.Errorf("decode: %w", err))
		return models.Post{}, false
	}

	posts := c.decodePosts(ctx, op, env.Items)
	if len(posts) == 0 {
		lg.Warn("post_not_found", slog.String("op", op), slog.String("slug", slug))
		return models.Post{}, false
	}

	return posts[0], true
}

// ListCategories возвращает до PerPageMax рубрик по убыванию числа записей.
// Рубрики сверх лимита молча отсекаются.
func (c *Client) ListCategories(ctx context.Context) []models.Topic {
	const op = "wordpress/ListCategories"

	params := url.Values{}
	params.Set("per_page", strconv.Itoa(c.perPageMax))
	params.Set("orderby", "count")
	params.Set("order", "desc")

	u := c.endpoint("categories", params)

	body, _, err := c.get(ctx, "list_categories", u)
	if err != nil {
		c.logFailure(ctx, op, u, err)
		return []models.Topic{}
	}

	env, err := decodeEnvelope(body, "categories")
	if err != nil {
		c.logFailure(ctx, op, u, fmt.Errorf("decode: %w", err))
		return []models.Topic{}
	}

	topics := make([]models.Topic, 0, len(env.Items))
	for _, raw := range env.Items {
		var rc rawCategory
		if err := json.Unmarshal(raw, &rc); err != nil {
			log.From(ctx).Warn("category_decode_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
			continue
		}
		topics = append(topics, normalizeTopic(rc))
	}

	log.From(ctx).Debug("categories_fetched", slog.String("op", op), slog.Int("count", len(topics)))

	return topics
}

// decodePosts нормализует элементы коллекции; битые элементы пропускаются.
func (c *Client) decodePosts(ctx context.Context, op string, items []json.RawMessage) []models.Post {
	posts := make([]models.Post, 0, len(items))
	for _, raw := range items {
		var rp rawPost
		if err := json.Unmarshal(raw, &rp); err != nil {
			log.From(ctx).Warn("post_decode_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
			continue
		}
		posts = append(posts, normalizePost(rp))
	}

	return posts
}

// endpoint собирает абсолютный URL ресурса относительно BaseURL.
func (c *Client) endpoint(resource string, params url.Values) string {
	u := *c.base
	u.Path = strings.TrimSuffix(c.base.Path, "/") + "/" + resource
	u.RawPath = ""
	u.RawQuery = params.Encode()

	return u.String()
}

// get выполняет один GET и возвращает тело 2xx-ответа.
// Пишет одну итоговую запись лога и метрики на каждый вызов.
func (c *Client) get(ctx context.Context, metricOp, rawURL string) ([]byte, http.Header, error) {
	start := time.Now()

	body, header, status, err := c.do(ctx, rawURL)

	dur := time.Since(start)
	c.metrics.observe(metricOp, outcome(status, err), dur)

	log.From(ctx).Info("upstream",
		slog.String("op", metricOp),
		slog.String("url", rawURL),
		slog.Int("status", status),
		slog.Duration("dur", dur),
	)

	return body, header, err
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, http.Header, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, 0, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("new_request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", requestID(ctx))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.Header, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.Header, resp.StatusCode, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), bodyLogLimit),
		}
	}

	return body, resp.Header, resp.StatusCode, nil
}

// logFailure — единая запись об ошибке на границе слоя доступа.
func (c *Client) logFailure(ctx context.Context, op, rawURL string, err error) {
	attrs := []any{
		slog.String("op", op),
		slog.String("url", rawURL),
		slog.String("err", err.Error()),
	}

	var se *StatusError
	if errors.As(err, &se) {
		attrs = append(attrs,
			slog.Int("status", se.StatusCode),
			slog.String("body", se.Body),
		)
	}

	log.From(ctx).Error("upstream_failed", attrs...)
}

// requestID берёт идентификатор входящего запроса из контекста или генерирует новый.
func requestID(ctx context.Context) string {
	if v, ok := ctx.Value(CtxRequestID).(string); ok && v != "" {
		return v
	}

	return uuid.NewString()
}

func headerTotal(h http.Header) (int, bool) {
	if h == nil {
		return 0, false
	}

	v := strings.TrimSpace(h.Get("X-WP-Total"))
	if v == "" {
		return 0, false
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}

	return n, true
}

func joinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}

	return strings.Join(parts, ",")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
