package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/upsc-blog/internal/http/view"
	"github.com/pribylovaa/upsc-blog/internal/models"
	logctx "github.com/pribylovaa/upsc-blog/internal/pkg/log"
	"github.com/pribylovaa/upsc-blog/internal/service"
	"github.com/pribylovaa/upsc-blog/internal/ui"
)

const descriptionLimit = 160

type topicsData struct {
	Heading string
	Topics  []models.Topic
}

type listingData struct {
	Heading  string
	Listing  service.Listing
	Selector ui.Selector
	Pager    ui.Pager
	// FromTopic — slug темы для ссылок карточек ("" на странице всех тем).
	FromTopic string
	// LatestFull — последняя запись выводится целиком, а не карточкой.
	LatestFull    bool
	LatestHeading string
	GridHeading   string
	EmptyText     string
}

// Home — стартовая страница.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, view.PageHome, view.Page{Title: "UPSC Blogs"})
}

// TopicIndex — /blog: ссылки на все темы верхнего уровня.
func (h *Handlers) TopicIndex(w http.ResponseWriter, r *http.Request) {
	topics, err := h.Service.TopicIndex(r.Context())
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	h.render(w, r, view.PageTopics, view.Page{
		Title:       "Explore Topics",
		Description: "Articles across UPSC preparation topics.",
		Data: topicsData{
			Heading: h.opts.SiteTitle,
			Topics:  topics,
		},
	})
}

// AllTopics — /upsc-blogs.
func (h *Handlers) AllTopics(w http.ResponseWriter, r *http.Request) {
	page := ui.ParsePage(r.URL.Query().Get("page"))

	l, err := h.Service.AllTopicsListing(r.Context(), page)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	data := listingData{
		Heading:       h.opts.SiteTitle + " - All Topics",
		Listing:       l,
		Selector:      ui.TopicSelector(l.Topics, ""),
		Pager:         ui.NewPager(l.Page, l.TotalPages, l.BaseURL),
		LatestHeading: "Latest Blog Post",
		GridHeading:   "All Posts",
		EmptyText:     "No blog posts found.",
	}

	h.render(w, r, view.PageListing, view.Page{
		Title:       "All Topics",
		Description: listingDescription(l),
		Data:        data,
	})
}

// Topic — /upsc-blogs/{topicSlug}.
func (h *Handlers) Topic(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "topicSlug")
	page := ui.ParsePage(r.URL.Query().Get("page"))
	r = r.WithContext(logctx.With(r.Context(), slog.String("topic", slug)))

	l, err := h.Service.TopicListing(r.Context(), slug, page)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	name := l.Topic.Name

	data := listingData{
		Heading:       h.opts.SiteTitle + " - " + name,
		Listing:       l,
		Selector:      ui.TopicSelector(l.Topics, l.CurrentSlug()),
		Pager:         ui.NewPager(l.Page, l.TotalPages, l.BaseURL),
		FromTopic:     l.CurrentSlug(),
		LatestFull:    true,
		LatestHeading: "Latest Post in " + name,
		GridHeading:   "All Posts in " + name,
		EmptyText:     "No blog posts found for this topic on this page.",
	}

	h.render(w, r, view.PageListing, view.Page{
		Title:       name,
		Description: listingDescription(l),
		Data:        data,
	})
}

// Post — /blog/{postSlug}?fromTopic=...
func (h *Handlers) Post(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "postSlug")
	fromTopic := r.URL.Query().Get("fromTopic")
	r = r.WithContext(logctx.With(r.Context(), slog.String("post_slug", slug)))

	pv, err := h.Service.PostView(r.Context(), slug, fromTopic)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	description := ui.Summary(pv.Post.Excerpt, descriptionLimit)
	if description == "" {
		description = ui.Summary(pv.Post.Content, descriptionLimit)
	}

	h.render(w, r, view.PagePost, view.Page{
		Title:       ui.PlainText(pv.Post.Title),
		Description: description,
		Data:        pv,
	})
}

// NotFound — всё, что не совпало с маршрутами.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.WriteError(w, r, service.ErrPostNotFound)
}

func listingDescription(l service.Listing) string {
	if l.Latest == nil {
		return ""
	}

	return ui.Summary(l.Latest.Excerpt, descriptionLimit)
}
