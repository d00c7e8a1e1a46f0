package wordpress

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/pribylovaa/upsc-blog/internal/models"
)

// Файл unit-тестов слоя доступа к контенту.
//
// Апстрим подменяется httptest-сервером; проверяем:
//   - построение URL (фильтры, сортировка, пагинация);
//   - нормализацию обоих форматов ответа (голый массив / объект-обёртка);
//   - «пустой» результат на любые ошибки транспорта, статуса и декодирования;
//   - total из поля found / заголовка X-WP-Total и подсчёт без них.

// fakeAPI — минимальный апстрим: фиксирует последние запросы и отвечает handler'ом.
type fakeAPI struct {
	mu      sync.Mutex
	queries []string
	paths   []string
	headers []http.Header
}

func (f *fakeAPI) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, r.URL.RawQuery)
	f.paths = append(f.paths, r.URL.Path)
	f.headers = append(f.headers, r.Header.Clone())
}

func (f *fakeAPI) last(t *testing.T) (string, map[string][]string) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.paths, "no upstream calls recorded")

	i := len(f.paths) - 1
	q, err := parseQuery(f.queries[i])
	require.NoError(t, err)
	return f.paths[i], q
}

func parseQuery(raw string) (map[string][]string, error) {
	return url.ParseQuery(raw)
}

// newTestClient поднимает апстрим с handler'ом и клиент к нему.
func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *fakeAPI) {
	t.Helper()

	api := &fakeAPI{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.record(r)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	cl, err := New(Options{
		BaseURL:    srv.URL + "/rest/v1.1/sites/example.wordpress.com",
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)

	return cl, api
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

const postV2 = `{
  "id": 42,
  "slug": "polity-basics",
  "date": "2024-05-01T10:00:00",
  "modified": "2024-05-02T11:30:00",
  "title": {"rendered": "Polity &#8211; Basics"},
  "content": {"rendered": "<p>Body</p>"},
  "excerpt": {"rendered": "<p>Teaser</p>"},
  "link": "https://example.wordpress.com/polity-basics/",
  "categories": [10, 11],
  "_embedded": {
    "author": [{"name": "Editor"}],
    "wp:featuredmedia": [{"id": 7, "source_url": "https://cdn.example.com/cover.jpg"}],
    "wp:term": [
      [{"id": 10, "name": "Prelims", "slug": "prelims", "taxonomy": "category"},
       {"id": 11, "name": "Sub", "slug": "sub", "taxonomy": "category"}],
      [{"id": 99, "name": "GS2", "slug": "gs2", "taxonomy": "post_tag"}]
    ]
  }
}`

const postV11 = `{
  "ID": 43,
  "slug": "economy-notes",
  "date": "2024-04-01T09:00:00+05:30",
  "modified": "2024-04-01T09:00:00+05:30",
  "title": "Economy notes",
  "content": "<p>Economy</p>",
  "excerpt": "<p>Short</p>",
  "URL": "https://example.wordpress.com/economy-notes/",
  "featured_image": "https://cdn.example.com/flat.jpg",
  "author": {"name": "Author V11"},
  "categories": {"Mains": {"ID": 20, "name": "Mains", "slug": "mains"}},
  "tags": {"budget": {"ID": 30, "name": "budget", "slug": "budget"}}
}`

func TestListPosts_BuildsRequestAndNormalizes(t *testing.T) {
	t.Parallel()

	cl, api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[`+postV2+`,`+postV11+`]`)
	})

	posts := cl.ListPosts(context.Background(), []int64{10, 11}, 2, 6)
	require.Len(t, posts, 2)

	path, q := api.last(t)
	require.Equal(t, "/rest/v1.1/sites/example.wordpress.com/posts", path)
	require.Equal(t, "10,11", q["categories"][0])
	require.Equal(t, "2", q["page"][0])
	require.Equal(t, "6", q["per_page"][0])
	require.Equal(t, "date", q["orderby"][0])
	require.Equal(t, "desc", q["order"][0])
	require.Contains(t, q, "_embed")

	// v2: {rendered} -> строка, embedded media, термины по таксономиям.
	p := posts[0]
	require.Equal(t, int64(42), p.ID)
	require.Equal(t, "polity-basics", p.Slug)
	require.Equal(t, "Polity &#8211; Basics", p.Title)
	require.Equal(t, "<p>Body</p>", p.Content)
	require.Equal(t, "<p>Teaser</p>", p.Excerpt)
	require.Equal(t, "https://cdn.example.com/cover.jpg", p.FeaturedImageURL)
	require.Equal(t, "https://example.wordpress.com/polity-basics/", p.URL)
	require.Equal(t, "Editor", p.Author)
	require.Equal(t, []string{"Prelims", "Sub"}, p.CategoryNames())
	require.Len(t, p.Terms[models.TaxonomyTag], 1)
	require.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), p.Date)

	// v1.1: плоские строки, fallback на featured_image, объекты categories/tags.
	p = posts[1]
	require.Equal(t, int64(43), p.ID)
	require.Equal(t, "Economy notes", p.Title)
	require.Equal(t, "https://cdn.example.com/flat.jpg", p.FeaturedImageURL)
	require.Equal(t, "Author V11", p.Author)
	require.Equal(t, []string{"Mains"}, p.CategoryNames())
	require.Equal(t, time.Date(2024, 4, 1, 3, 30, 0, 0, time.UTC), p.Date)
}

func TestListPosts_NoCategories_OmitsFilterAndDefaultsPaging(t *testing.T) {
	t.Parallel()

	cl, api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"found": 0, "posts": []}`)
	})

	posts := cl.ListPosts(context.Background(), nil, 0, 0)
	require.NotNil(t, posts)
	require.Empty(t, posts)

	_, q := api.last(t)
	require.NotContains(t, q, "categories")
	require.Equal(t, "1", q["page"][0])
	require.Equal(t, "10", q["per_page"][0])
}

func TestListPosts_WrappedEnvelope(t *testing.T) {
	t.Parallel()

	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"found": 1, "posts": [`+postV11+`]}`)
	})

	posts := cl.ListPosts(context.Background(), nil, 1, 10)
	require.Len(t, posts, 1)
	require.Equal(t, "economy-notes", posts[0].Slug)
}

func TestListPosts_FeaturedMediaNestedArray(t *testing.T) {
	t.Parallel()

	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[{"id": 1, "slug": "a", "featured_image": "https://flat",
			"_embedded": {"wp:featuredmedia": [[{"source_url": "https://nested"}]]}}]`)
	})

	posts := cl.ListPosts(context.Background(), nil, 1, 10)
	require.Len(t, posts, 1)
	require.Equal(t, "https://nested", posts[0].FeaturedImageURL)
}

func TestListPosts_NoImageAnywhere(t *testing.T) {
	t.Parallel()

	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[{"id": 1, "slug": "a", "_embedded": {"wp:featuredmedia": [{}]}}]`)
	})

	posts := cl.ListPosts(context.Background(), nil, 1, 10)
	require.Len(t, posts, 1)
	require.False(t, posts[0].HasImage())
}

func TestListPostsPage_TotalSources(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name      string
		handler   http.HandlerFunc
		wantTotal int
		wantKnown bool
	}{
		{
			name: "found_field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, `{"found": 13, "posts": [{"ID": 1, "slug": "a"}]}`)
			},
			wantTotal: 13, wantKnown: true,
		},
		{
			name: "x_wp_total_header",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-WP-Total", "27")
				writeJSON(w, `[{"id": 1, "slug": "a"}]`)
			},
			wantTotal: 27, wantKnown: true,
		},
		{
			name: "unknown",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, `[{"id": 1, "slug": "a"}]`)
			},
			wantTotal: 0, wantKnown: false,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cl, _ := newTestClient(t, tc.handler)
			page := cl.ListPostsPage(context.Background(), models.ListQuery{Page: 1, PerPage: 6})
			require.Len(t, page.Posts, 1)
			require.Equal(t, tc.wantTotal, page.Total)
			require.Equal(t, tc.wantKnown, page.TotalKnown)
		})
	}
}

// pagedAPI — апстрим из n записей с постраничной выдачей без total.
func pagedAPI(n int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page <= 0 {
			page = 1
		}
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		if perPage <= 0 {
			perPage = 10
		}

		from := (page - 1) * perPage
		to := from + perPage
		if to > n {
			to = n
		}

		items := []string{}
		for i := from; i < to; i++ {
			items = append(items, fmt.Sprintf(`{"id": %d, "slug": "post-%d"}`, i+1, i+1))
		}
		writeJSON(w, "["+strings.Join(items, ",")+"]")
	}
}

// TestListPosts_PageBeyondRange — страница за пределами выборки пустая, но не ошибка.
func TestListPosts_PageBeyondRange(t *testing.T) {
	t.Parallel()

	cl, _ := newTestClient(t, pagedAPI(13))
	ctx := context.Background()

	require.Len(t, cl.ListPosts(ctx, nil, 1, 6), 6)
	require.Len(t, cl.ListPosts(ctx, nil, 3, 6), 1)
	require.Empty(t, cl.ListPosts(ctx, nil, 4, 6))
}

func TestCountPosts_PaginatesUntilShortPage(t *testing.T) {
	t.Parallel()

	cl, api := newTestClient(t, pagedAPI(230))

	n, ok := cl.CountPosts(context.Background(), []int64{5})
	require.True(t, ok)
	require.Equal(t, 230, n)

	_, q := api.last(t)
	require.Equal(t, "ID", q["fields"][0])
	require.Equal(t, "5", q["categories"][0])
	require.Equal(t, "3", q["page"][0])
}

func TestCountPosts_UsesFoundWhenPresent(t *testing.T) {
	t.Parallel()

	cl, api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"found": 13, "posts": [{"ID": 1}]}`)
	})

	n, ok := cl.CountPosts(context.Background(), nil)
	require.True(t, ok)
	require.Equal(t, 13, n)
	require.Len(t, api.paths, 1)
}

func TestCountPosts_FailureIsNotOK(t *testing.T) {
	t.Parallel()

	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	n, ok := cl.CountPosts(context.Background(), nil)
	require.False(t, ok)
	require.Zero(t, n)
}

func TestListAllSlugs(t *testing.T) {
	t.Parallel()

	cl, api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"posts": [{"slug": "a"}, {"slug": ""}, {"slug": "b"}]}`)
	})

	slugs := cl.ListAllSlugs(context.Background())
	require.Equal(t, []string{"a", "b"}, slugs)

	_, q := api.last(t)
	require.Equal(t, "slug", q["fields"][0])
	require.Equal(t, "100", q["per_page"][0])
}

func TestGetPostBySlug_Found(t *testing.T) {
	t.Parallel()

	cl, api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[`+postV2+`]`)
	})

	p, ok := cl.GetPostBySlug(context.Background(), "polity-basics")
	require.True(t, ok)
	require.Equal(t, "polity-basics", p.Slug)
	require.Equal(t, "<p>Body</p>", p.Content)

	_, q := api.last(t)
	require.Equal(t, "polity-basics", q["slug"][0])
	require.Contains(t, q, "_embed")
}

func TestGetPostBySlug_NotFound(t *testing.T) {
	t.Parallel()

	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"found": 0, "posts": []}`)
	})

	p, ok := cl.GetPostBySlug(context.Background(), "nonexistent")
	require.False(t, ok)
	require.Equal(t, models.Post{}, p)
}

func TestGetPostBySlug_EmptySlugSkipsRequest(t *testing.T) {
	t.Parallel()

	cl, api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[]`)
	})

	_, ok := cl.GetPostBySlug(context.Background(), "  ")
	require.False(t, ok)
	require.Empty(t, api.paths)
}

// TestListCategories_BareAndWrappedAreIdentical — оба формата дают одинаковый результат.
func TestListCategories_BareAndWrappedAreIdentical(t *testing.T) {
	t.Parallel()

	items := `[
	  {"ID": 10, "name": "Prelims", "slug": "prelims", "parent": 0, "post_count": 12},
	  {"ID": 11, "name": "Sub", "slug": "sub", "parent": 10},
	  {"ID": 12, "name": "Mains", "slug": "mains", "parent": null},
	  {"ID": 13, "name": "Interview", "slug": "interview"}
	]`

	bare, api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, items)
	})
	wrapped, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"found": 4, "categories": `+items+`}`)
	})

	ctx := context.Background()
	got1 := bare.ListCategories(ctx)
	got2 := wrapped.ListCategories(ctx)

	require.Len(t, got1, 4)
	require.Equal(t, got1, got2)

	path, q := api.last(t)
	require.True(t, strings.HasSuffix(path, "/categories"))
	require.Equal(t, "100", q["per_page"][0])
	require.Equal(t, "count", q["orderby"][0])
	require.Equal(t, "desc", q["order"][0])

	require.Equal(t, models.Topic{Name: "Prelims", Slug: "prelims", ID: 10, PostCount: 12}, got1[0])
	require.Equal(t, int64(10), got1[1].Parent)
}

// TestListCategories_ParentClassification — 0/null/отсутствие -> верхний уровень.
func TestListCategories_ParentClassification(t *testing.T) {
	t.Parallel()

	cl, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[
		  {"id": 1, "name": "A", "slug": "a", "parent": 0},
		  {"id": 2, "name": "B", "slug": "b", "parent": null},
		  {"id": 3, "name": "C", "slug": "c"},
		  {"id": 4, "name": "D", "slug": "d", "parent": 1}
		]`)
	})

	got := cl.ListCategories(context.Background())
	require.Len(t, got, 4)
	require.True(t, got[0].IsTopLevel())
	require.True(t, got[1].IsTopLevel())
	require.True(t, got[2].IsTopLevel())
	require.False(t, got[3].IsTopLevel())
}

// TestFailures_YieldEmptySentinels — отказ любого вида на любой операции даёт
// пустой результат, а не панику/ошибку.
func TestFailures_YieldEmptySentinels(t *testing.T) {
	t.Parallel()

	handlers := map[string]http.HandlerFunc{
		"http_500": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"unknown_blog"}`, http.StatusInternalServerError)
		},
		"http_404": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		},
		"bad_json": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, `{"posts": [`)
		},
		"not_json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>maintenance</html>"))
		},
	}

	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cl, _ := newTestClient(t, h)
			ctx := context.Background()

			posts := cl.ListPosts(ctx, []int64{1}, 1, 6)
			require.NotNil(t, posts)
			require.Empty(t, posts)

			require.Empty(t, cl.ListAllSlugs(ctx))

			_, ok := cl.GetPostBySlug(ctx, "x")
			require.False(t, ok)

			topics := cl.ListCategories(ctx)
			require.NotNil(t, topics)
			require.Empty(t, topics)
		})
	}
}

func TestFailures_TransportDown(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close() // соединение будет отклонено

	cl, err := New(Options{BaseURL: base, Timeout: time.Second})
	require.NoError(t, err)

	ctx := context.Background()
	require.Empty(t, cl.ListPosts(ctx, nil, 1, 6))
	require.Empty(t, cl.ListAllSlugs(ctx))
	require.Empty(t, cl.ListCategories(ctx))
	_, ok := cl.GetPostBySlug(ctx, "x")
	require.False(t, ok)
}

func TestRequestHeaders_PropagateRequestID(t *testing.T) {
	t.Parallel()

	cl, api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[]`)
	})

	ctx := context.WithValue(context.Background(), CtxRequestID, "rid-123")
	_ = cl.ListCategories(ctx)
	_ = cl.ListCategories(context.Background())

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Equal(t, "rid-123", api.headers[0].Get("X-Request-Id"))
	require.Len(t, api.headers[1].Get("X-Request-Id"), 36) // uuid
	require.Equal(t, "upsc-blog", api.headers[0].Get("User-Agent"))
	require.Equal(t, "application/json", api.headers[0].Get("Accept"))
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New(Options{})
	require.Error(t, err)

	_, err = New(Options{BaseURL: "ftp://example.com"})
	require.Error(t, err)

	cl, err := New(Options{BaseURL: "https://example.com/api"})
	require.NoError(t, err)
	require.Equal(t, "https://example.com/api/posts?a=1", cl.endpoint("posts", map[string][]string{"a": {"1"}}))
}

func TestMetrics_CountOutcomes(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()

	fail := true
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			http.Error(w, "x", http.StatusBadGateway)
			return
		}
		writeJSON(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	cl, err := New(Options{BaseURL: srv.URL, HTTPClient: srv.Client(), Registerer: reg})
	require.NoError(t, err)

	_ = cl.ListCategories(context.Background())
	mu.Lock()
	fail = false
	mu.Unlock()
	_ = cl.ListCategories(context.Background())

	require.Equal(t, 1.0, testutil.ToFloat64(cl.metrics.requests.WithLabelValues("list_categories", "http_5xx")))
	require.Equal(t, 1.0, testutil.ToFloat64(cl.metrics.requests.WithLabelValues("list_categories", "ok")))

	// Повторная регистрация тех же метрик — ошибка конструктора.
	_, err = New(Options{BaseURL: srv.URL, Registerer: reg})
	require.Error(t, err)
}

func TestRateLimit_CanceledContextFailsFast(t *testing.T) {
	t.Parallel()

	cl, api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[]`)
	})
	cl.limiter = rate.NewLimiter(1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Empty(t, cl.ListCategories(ctx))
	require.Empty(t, api.paths)
}
