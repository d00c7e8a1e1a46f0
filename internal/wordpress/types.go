package wordpress

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pribylovaa/upsc-blog/internal/models"
)

// Сырые формы ответов. Источник отдаёт либо WordPress REST v2 (id, title.rendered,
// _embedded), либо WordPress.com v1.1 (ID, плоские строки, terms/categories-объекты).
// Всё это сводится к models.* в одном месте — normalizePost/normalizeTopic.

// envelope — ответ-коллекция: голый массив или объект с массивом под именем поля.
type envelope struct {
	Items []json.RawMessage
	// Found — общее число записей выборки (WordPress.com v1.1); -1 — не прислано.
	Found int
}

// decodeEnvelope разбирает тело коллекции. field — имя поля-обёртки ("posts", "categories").
// Объект без нужного поля даёт пустой список, а не ошибку.
func decodeEnvelope(body []byte, field string) (envelope, error) {
	env := envelope{Found: -1}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return env, errors.New("empty body")
	}

	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &env.Items); err != nil {
			return env, err
		}
		return env, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return env, err
		}

		if raw, ok := obj[field]; ok && isArray(raw) {
			if err := json.Unmarshal(raw, &env.Items); err != nil {
				return env, err
			}
		}

		if raw, ok := obj["found"]; ok {
			var n int
			if err := json.Unmarshal(raw, &n); err == nil && n >= 0 {
				env.Found = n
			}
		}
		return env, nil
	default:
		return env, errors.New("unexpected json value")
	}
}

func isArray(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '['
}

func isObject(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '{'
}

// rendered — поле, приходящее строкой или объектом {"rendered": "..."}.
type rendered string

func (r *rendered) UnmarshalJSON(b []byte) error {
	t := bytes.TrimSpace(b)
	if len(t) == 0 || bytes.Equal(t, []byte("null")) {
		*r = ""
		return nil
	}

	if t[0] == '"' {
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return err
		}
		*r = rendered(s)
		return nil
	}

	if t[0] == '{' {
		var obj struct {
			Rendered string `json:"rendered"`
			Raw      string `json:"raw"`
		}
		if err := json.Unmarshal(t, &obj); err != nil {
			return err
		}
		if obj.Rendered != "" {
			*r = rendered(obj.Rendered)
		} else {
			*r = rendered(obj.Raw)
		}
		return nil
	}

	// Числа/булевы значения в текстовых полях не встречаются — игнорируем.
	*r = ""
	return nil
}

// flexID — идентификатор, приходящий числом, строкой или null.
type flexID int64

func (id *flexID) UnmarshalJSON(b []byte) error {
	t := bytes.TrimSpace(b)
	if len(t) == 0 || bytes.Equal(t, []byte("null")) {
		*id = 0
		return nil
	}

	if t[0] == '"' {
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*id = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*id = flexID(n)
		return nil
	}

	var f float64
	if err := json.Unmarshal(t, &f); err != nil {
		return err
	}
	*id = flexID(int64(f))
	return nil
}

// rawPost — запись в любом из двух форматов.
// encoding/json сопоставляет ключи без учёта регистра, поэтому "ID" и "id" попадают в одно поле.
type rawPost struct {
	ID            flexID          `json:"ID"`
	Slug          string          `json:"slug"`
	Date          string          `json:"date"`
	Modified      string          `json:"modified"`
	Title         rendered        `json:"title"`
	Content       rendered        `json:"content"`
	Excerpt       rendered        `json:"excerpt"`
	FeaturedImage string          `json:"featured_image"`
	URL           string          `json:"URL"`
	Link          string          `json:"link"`
	Author        json.RawMessage `json:"author"`
	Categories    json.RawMessage `json:"categories"`
	Tags          json.RawMessage `json:"tags"`
	Embedded      *rawEmbedded    `json:"_embedded"`
}

type rawEmbedded struct {
	FeaturedMedia []json.RawMessage `json:"wp:featuredmedia"`
	Terms         [][]rawTerm       `json:"wp:term"`
	Author        []rawAuthor       `json:"author"`
}

type rawMedia struct {
	SourceURL string `json:"source_url"`
}

type rawTerm struct {
	ID       flexID `json:"ID"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Taxonomy string `json:"taxonomy"`
}

type rawAuthor struct {
	Name string `json:"name"`
}

// rawCategory — рубрика в любом из двух форматов.
type rawCategory struct {
	ID        flexID `json:"ID"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Parent    flexID `json:"parent"`
	PostCount int    `json:"post_count"`
	Count     int    `json:"count"`
}

// rawSlug — проекция записи только на slug (fields=slug).
type rawSlug struct {
	Slug string `json:"slug"`
}

// normalizePost переводит сырую запись в models.Post.
func normalizePost(rp rawPost) models.Post {
	p := models.Post{
		ID:               int64(rp.ID),
		Slug:             rp.Slug,
		Date:             parseDate(rp.Date),
		Modified:         parseDate(rp.Modified),
		Title:            string(rp.Title),
		Content:          string(rp.Content),
		Excerpt:          string(rp.Excerpt),
		FeaturedImageURL: featuredImage(rp),
		URL:              firstNonEmpty(rp.URL, rp.Link),
		Author:           authorName(rp),
		Terms:            collectTerms(rp),
	}

	return p
}

// featuredImage: первый embedded featured media -> плоское featured_image -> "".
func featuredImage(rp rawPost) string {
	if rp.Embedded != nil && len(rp.Embedded.FeaturedMedia) > 0 {
		first := rp.Embedded.FeaturedMedia[0]

		var media rawMedia
		switch {
		case isObject(first):
			_ = json.Unmarshal(first, &media)
		case isArray(first):
			var nested []rawMedia
			if err := json.Unmarshal(first, &nested); err == nil && len(nested) > 0 {
				media = nested[0]
			}
		}

		if u := strings.TrimSpace(media.SourceURL); u != "" {
			return u
		}
	}

	return strings.TrimSpace(rp.FeaturedImage)
}

func authorName(rp rawPost) string {
	if isObject(rp.Author) {
		var a rawAuthor
		if err := json.Unmarshal(rp.Author, &a); err == nil && a.Name != "" {
			return a.Name
		}
	}

	if rp.Embedded != nil && len(rp.Embedded.Author) > 0 {
		return rp.Embedded.Author[0].Name
	}

	return ""
}

// collectTerms группирует термины по таксономии.
// Источники: _embedded["wp:term"] и объекты categories/tags формата v1.1
// (в v2 это массивы идентификаторов — их пропускаем).
func collectTerms(rp rawPost) map[string][]models.Term {
	out := make(map[string][]models.Term)
	seen := make(map[string]bool)

	add := func(t models.Term) {
		if t.Taxonomy == "" || (t.Name == "" && t.Slug == "") {
			return
		}

		key := t.Taxonomy + "\x00" + t.Slug + "\x00" + t.Name
		if seen[key] {
			return
		}
		seen[key] = true
		out[t.Taxonomy] = append(out[t.Taxonomy], t)
	}

	if rp.Embedded != nil {
		for _, group := range rp.Embedded.Terms {
			for _, rt := range group {
				add(models.Term{ID: int64(rt.ID), Name: rt.Name, Slug: rt.Slug, Taxonomy: rt.Taxonomy})
			}
		}
	}

	for _, src := range []struct {
		raw      json.RawMessage
		taxonomy string
	}{
		{rp.Categories, models.TaxonomyCategory},
		{rp.Tags, models.TaxonomyTag},
	} {
		if !isObject(src.raw) {
			continue
		}

		var byName map[string]rawTerm
		if err := json.Unmarshal(src.raw, &byName); err != nil {
			continue
		}

		// Порядок ключей map не определён — сортируем по имени для стабильного вывода.
		names := make([]string, 0, len(byName))
		for name := range byName {
			names = append(names, name)
		}
		slices.Sort(names)

		for _, name := range names {
			rt := byName[name]
			if rt.Name == "" {
				rt.Name = name
			}
			add(models.Term{ID: int64(rt.ID), Name: rt.Name, Slug: rt.Slug, Taxonomy: src.taxonomy})
		}
	}

	if len(out) == 0 {
		return nil
	}

	return out
}

// normalizeTopic переводит сырую рубрику в models.Topic.
func normalizeTopic(rc rawCategory) models.Topic {
	count := rc.PostCount
	if count == 0 {
		count = rc.Count
	}

	return models.Topic{
		Name:      rc.Name,
		Slug:      rc.Slug,
		ID:        int64(rc.ID),
		Parent:    int64(rc.Parent),
		PostCount: count,
	}
}

// parseDate понимает RFC3339 и локальный формат WordPress без смещения.
// Нераспознанная дата даёт нулевое время.
func parseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	layouts := []string{
		time.RFC3339,          // 2024-05-01T10:00:00+05:30
		"2006-01-02T15:04:05", // WordPress REST v2: date без смещения
		"2006-01-02 15:04:05",
	}

	for _, l := range layouts {
		if t, err := time.Parse(l, value); err == nil {
			return t.UTC()
		}
	}

	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}

	return ""
}
