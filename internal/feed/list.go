package feed

import "github.com/samvad-hq/samvad-news-reader/internal/domain"

// List is the result set currently on screen. It is not synchronized: only
// the main execution context may touch it.
type List struct {
	sanitizer *Sanitizer
	articles  []domain.Article
	rows      []*ViewModel
}

// NewList returns an empty list; a nil sanitizer gets the default one.
func NewList(s *Sanitizer) *List {
	if s == nil {
		s = NewSanitizer()
	}
	return &List{sanitizer: s}
}

// Replace swaps the whole result set. Rows from the previous set, and their
// cached thumbnails, are dropped.
func (l *List) Replace(articles []domain.Article) {
	cp := make([]domain.Article, len(articles))
	copy(cp, articles)

	rows := make([]*ViewModel, len(cp))
	for i, a := range cp {
		rows[i] = NewViewModel(a, l.sanitizer)
	}
	l.articles = cp
	l.rows = rows
}

// Len returns the row count.
func (l *List) Len() int { return len(l.rows) }

// At returns row i.
func (l *List) At(i int) (*ViewModel, bool) {
	if i < 0 || i >= len(l.rows) {
		return nil, false
	}
	return l.rows[i], true
}

// Article returns the article behind row i.
func (l *List) Article(i int) (domain.Article, bool) {
	if i < 0 || i >= len(l.articles) {
		return domain.Article{}, false
	}
	return l.articles[i], true
}

// Snapshot is a read-only view of the list, safe to hand to other goroutines.
type Snapshot struct {
	Articles []domain.Article
	Rows     []*ViewModel
}

// Snapshot copies the slice headers of the current set.
func (l *List) Snapshot() Snapshot {
	return Snapshot{
		Articles: append([]domain.Article(nil), l.articles...),
		Rows:     append([]*ViewModel(nil), l.rows...),
	}
}
