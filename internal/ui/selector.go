// ui — вычисление состояния элементов навигации (селектор тем, пейджер)
// и подготовка HTML источника к выводу в шаблонах.
package ui

import (
	"github.com/pribylovaa/upsc-blog/internal/models"
)

const allTopicsName = "All Topics"

// SelectorItem — один пункт селектора тем.
type SelectorItem struct {
	Name   string
	Slug   string
	Href   string
	Active bool
}

// Selector — состояние селектора тем.
type Selector struct {
	// Label — подпись текущего выбора.
	Label string
	Items []SelectorItem
}

// TopicSelector строит селектор по списку тем и slug текущей темы
// ("" — страница всех тем).
//
// Первым всегда идёт пункт «все темы»: либо запись all-topics из списка,
// либо синтетический "All Topics". Повторные all-topics пропускаются.
func TopicSelector(topics []models.Topic, currentSlug string) Selector {
	all := SelectorItem{
		Name:   allTopicsName,
		Slug:   models.AllTopicsSlug,
		Href:   TopicHref(models.AllTopicsSlug),
		Active: currentSlug == "" || currentSlug == models.AllTopicsSlug,
	}
	if t, ok := findSlug(topics, models.AllTopicsSlug); ok && t.Name != "" {
		all.Name = t.Name
	}

	items := make([]SelectorItem, 0, len(topics)+1)
	items = append(items, all)

	for _, t := range topics {
		if t.Slug == models.AllTopicsSlug {
			continue
		}

		items = append(items, SelectorItem{
			Name:   t.Name,
			Slug:   t.Slug,
			Href:   TopicHref(t.Slug),
			Active: currentSlug != "" && t.Slug == currentSlug,
		})
	}

	return Selector{
		Label: selectorLabel(topics, currentSlug),
		Items: items,
	}
}

// selectorLabel: имя текущей темы -> имя записи all-topics -> "All Topics".
func selectorLabel(topics []models.Topic, currentSlug string) string {
	if currentSlug != "" {
		if t, ok := findSlug(topics, currentSlug); ok {
			return t.Name
		}
	}

	if t, ok := findSlug(topics, models.AllTopicsSlug); ok {
		return t.Name
	}

	return allTopicsName
}

// TopicHref — маршрут листинга выбранной темы.
func TopicHref(slug string) string {
	if slug == "" || slug == models.AllTopicsSlug {
		return "/upsc-blogs"
	}

	return "/upsc-blogs/" + slug
}

func findSlug(topics []models.Topic, slug string) (models.Topic, bool) {
	for _, t := range topics {
		if t.Slug == slug {
			return t, true
		}
	}

	return models.Topic{}, false
}
