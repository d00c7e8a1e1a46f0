// models содержит строгие формы отображения, в которые нормализуются
// ответы контент-API. Все сущности эфемерны и собираются заново на каждый запрос.
package models

import "time"

// Таксономии WordPress, которые мы различаем явно.
const (
	TaxonomyCategory = "category"
	TaxonomyTag      = "post_tag"
)

// Post — запись блога в форме для отображения.
//
// Особенности:
//   - Title/Content/Excerpt — уже «отрендеренный» HTML в виде строки;
//   - FeaturedImageURL == "" означает отсутствие обложки;
//   - временные метки — в UTC.
type Post struct {
	// ID — идентификатор записи у источника.
	ID int64
	// Slug — URL-ключ записи.
	Slug string
	// Date — время публикации.
	Date time.Time
	// Modified — время последнего изменения.
	Modified time.Time
	// Title — заголовок (HTML).
	Title string
	// Content — полный текст (HTML).
	Content string
	// Excerpt — тизер (HTML).
	Excerpt string
	// FeaturedImageURL — ссылка на обложку.
	FeaturedImageURL string
	// URL — каноническая ссылка на запись у источника.
	URL string
	// Author — отображаемое имя автора.
	Author string
	// Terms — термины таксономий, сгруппированные по типу.
	Terms map[string][]Term
}

// Term — термин таксономии (рубрика, метка).
type Term struct {
	ID       int64
	Name     string
	Slug     string
	Taxonomy string
}

// HasImage сообщает, есть ли у записи обложка.
func (p Post) HasImage() bool { return p.FeaturedImageURL != "" }

// CategoryNames возвращает имена рубрик записи в порядке источника.
func (p Post) CategoryNames() []string {
	terms := p.Terms[TaxonomyCategory]
	if len(terms) == 0 {
		return nil
	}

	names := make([]string, 0, len(terms))
	for _, t := range terms {
		if t.Name != "" {
			names = append(names, t.Name)
		}
	}

	return names
}

// PostPage — страница записей вместе с общим числом записей выборки.
// TotalKnown == false, если источник не сообщил total.
type PostPage struct {
	Posts      []Post
	Total      int
	TotalKnown bool
}

// ListQuery — параметры выборки записей.
//
// Особенности:
//   - пустой CategoryIDs — без фильтра по рубрикам;
//   - несколько CategoryIDs объединяются по ИЛИ;
//   - Page <= 0 -> первая страница, PerPage <= 0 -> default клиента.
type ListQuery struct {
	CategoryIDs []int64
	Page        int
	PerPage     int
}
