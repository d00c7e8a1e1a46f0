package ui

import (
	"net/url"
	"strconv"
)

// PageLink — ссылка на одну страницу.
type PageLink struct {
	Number  int
	Href    string
	Current bool
}

// Pager — состояние пейджера.
type Pager struct {
	Current int
	Total   int

	PrevHref     string
	PrevDisabled bool
	NextHref     string
	NextDisabled bool

	Pages []PageLink
}

// Visible — пейджер показывается только при total > 1.
func (p Pager) Visible() bool { return p.Total > 1 }

// NewPager строит пейджер для страницы current из total.
// Current вне диапазона не исправляется: кнопки просто блокируются.
func NewPager(current, total int, baseURL string) Pager {
	p := Pager{
		Current:      current,
		Total:        total,
		PrevHref:     PageHref(baseURL, current-1),
		PrevDisabled: current <= 1,
		NextHref:     PageHref(baseURL, current+1),
		NextDisabled: current >= total,
	}

	if total > 0 {
		p.Pages = make([]PageLink, 0, total)
	}
	for n := 1; n <= total; n++ {
		p.Pages = append(p.Pages, PageLink{
			Number:  n,
			Href:    PageHref(baseURL, n),
			Current: n == current,
		})
	}

	return p
}

// PageHref — baseURL?page=N.
func PageHref(baseURL string, page int) string {
	return baseURL + "?page=" + strconv.Itoa(page)
}

// ParsePage разбирает ?page: нечисловое значение и 0 дают 1,
// остальное проходит без проверки диапазона.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n == 0 {
		return 1
	}

	return n
}

// PostHref — ссылка на запись; fromTopic попадает в query для ссылки «назад».
func PostHref(slug, fromTopic string) string {
	href := "/blog/" + url.PathEscape(slug)
	if fromTopic == "" {
		return href
	}

	return href + "?fromTopic=" + url.QueryEscape(fromTopic)
}
