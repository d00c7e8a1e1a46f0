package ui

import (
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// ugc — политика очистки HTML записей. После построения Policy безопасна
// для конкурентного использования.
var ugc = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("loading", "srcset", "sizes").OnElements("img")
	p.AllowElements("figure", "figcaption")

	return p
}

// SafeHTML очищает HTML источника и помечает результат безопасным для шаблона.
func SafeHTML(raw string) template.HTML {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	return template.HTML(ugc.Sanitize(raw))
}

// PlainText сводит HTML к тексту: без тегов, с раскрытыми сущностями
// и схлопнутыми пробелами. Используется для <title>, alt и description.
func PlainText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if !strings.ContainsAny(raw, "<&") {
		return collapseSpaces(raw)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return collapseSpaces(raw)
	}

	doc.Find("script, style").Remove()

	return collapseSpaces(doc.Text())
}

// Summary — PlainText, обрезанный до limit символов по границе слова.
func Summary(raw string, limit int) string {
	s := PlainText(raw)
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)[:limit]
	cut := string(runes)
	if i := strings.LastIndexByte(cut, ' '); i > limit/2 {
		cut = cut[:i]
	}

	return strings.TrimRight(cut, " ,.;:") + "…"
}

// LongDate — дата публикации на странице записи.
func LongDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format("January 02, 2006")
}

// ShortDate — дата публикации в карточке.
func ShortDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format("1/2/2006")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
