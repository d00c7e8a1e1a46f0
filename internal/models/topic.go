package models

// AllTopicsSlug — служебный slug «всех тем».
const AllTopicsSlug = "all-topics"

// Topic — рубрика блога.
//
// Иерархия на практике двухуровневая: темы верхнего уровня (Parent == 0)
// и их прямые подрубрики. Slug считается уникальным в пределах одной выборки.
type Topic struct {
	// Name — отображаемое имя.
	Name string
	// Slug — ключ маршрутизации.
	Slug string
	// ID — идентификатор рубрики у источника; 0 — неизвестен.
	ID int64
	// Parent — идентификатор родителя; 0 — тема верхнего уровня.
	Parent int64
	// PostCount — число записей в рубрике по данным источника.
	PostCount int
}

// IsTopLevel сообщает, что рубрика верхнего уровня.
func (t Topic) IsTopLevel() bool { return t.Parent == 0 }

// HasID сообщает, известен ли идентификатор рубрики.
func (t Topic) HasID() bool { return t.ID != 0 }
