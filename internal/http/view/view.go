// view — HTML-шаблоны и статика сайта, встроенные в бинарник.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/pribylovaa/upsc-blog/internal/ui"
)

//go:embed templates static
var files embed.FS

// Страницы, для каждой собирается отдельный набор layout + partials + страница.
const (
	PageHome    = "home"
	PageTopics  = "topics"
	PageListing = "listing"
	PagePost    = "post"
	PageError   = "error"
)

var pageNames = []string{PageHome, PageTopics, PageListing, PagePost, PageError}

// Page — общие данные layout'а.
type Page struct {
	// Title — содержимое <title> (уже текст, без HTML).
	Title string
	// Description — meta description; пусто — тег не выводится.
	Description string
	SiteTitle   string
	Data        any
}

// Renderer исполняет шаблоны страниц.
type Renderer struct {
	pages map[string]*template.Template
}

// New разбирает встроенные шаблоны. Ошибка означает битый шаблон в сборке.
func New() (*Renderer, error) {
	const op = "view/New"

	funcs := template.FuncMap{
		"safeHTML":  ui.SafeHTML,
		"plain":     ui.PlainText,
		"summary":   ui.Summary,
		"longDate":  ui.LongDate,
		"shortDate": ui.ShortDate,
		"postHref":  ui.PostHref,
		"join":      strings.Join,
		"dict":      dict,
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(files,
			"templates/layout.html",
			"templates/partials/*.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("%s: parse %s: %w", op, name, err)
		}
		r.pages[name] = t
	}

	return r, nil
}

// Render исполняет страницу в буфер и только затем пишет статус и тело,
// чтобы ошибка шаблона не оставила наполовину записанный ответ.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, p Page) error {
	const op = "view/Render"

	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("%s: unknown page %q", op, name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", p); err != nil {
		return fmt.Errorf("%s: execute %s: %w", op, name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)

	return err
}

// Static — обработчик встроенной статики (монтируется на /static/).
func Static() http.Handler {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}

	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// dict собирает map для передачи нескольких значений во вложенный шаблон.
func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}

	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}

	return m, nil
}
