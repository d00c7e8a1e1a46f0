package handlers

import (
	"log/slog"
	"net/http"

	apierrors "github.com/pribylovaa/upsc-blog/internal/errors"
	"github.com/pribylovaa/upsc-blog/internal/http/view"
	logctx "github.com/pribylovaa/upsc-blog/internal/pkg/log"
	"github.com/pribylovaa/upsc-blog/internal/service"
)

// Options — параметры отображения.
type Options struct {
	// SiteTitle — название блога в заголовках ("MentorGuru Blog").
	SiteTitle string
	// SiteURL — публичный адрес для sitemap.xml; пусто — адрес берётся из запроса.
	SiteURL string
}

// Handlers агрегирует зависимости страниц.
type Handlers struct {
	Service *service.Service
	View    *view.Renderer
	opts    Options
}

func New(svc *service.Service, v *view.Renderer, opts Options) *Handlers {
	if opts.SiteTitle == "" {
		opts.SiteTitle = "MentorGuru Blog"
	}

	return &Handlers{Service: svc, View: v, opts: opts}
}

type errorData struct {
	Status  int
	Message string
}

// WriteError рисует HTML-страницу ошибки; детали err пишутся только в лог.
func (h *Handlers) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := apierrors.ToHTTP(err)

	lg := logctx.From(r.Context())
	attrs := []any{
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
	}

	switch {
	case status == http.StatusNotFound:
		lg.Info("page_not_found", attrs...)
	case status >= http.StatusInternalServerError:
		lg.Error("page_failed", attrs...)
	default:
		lg.Warn("page_aborted", attrs...)
	}

	msg := "Something went wrong. Please try again later."
	if status == http.StatusNotFound {
		msg = "The page you are looking for could not be found."
	}

	page := view.Page{
		Title:     http.StatusText(status),
		SiteTitle: h.opts.SiteTitle,
		Data:      errorData{Status: status, Message: msg},
	}
	if page.Title == "" {
		page.Title = resp.Error.Message
	}

	if rerr := h.View.Render(w, status, view.PageError, page); rerr != nil {
		lg.Error("error_page_render_failed", slog.String("err", rerr.Error()))
		apierrors.WriteError(w, r, err)
	}
}

// render — отрисовка страницы со статусом 200; сбой шаблона уходит в WriteError.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, name string, page view.Page) {
	page.SiteTitle = h.opts.SiteTitle

	if err := h.View.Render(w, http.StatusOK, name, page); err != nil {
		h.WriteError(w, r, err)
	}
}
