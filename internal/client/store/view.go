package store

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/evolution-crm/evoadmin/internal/identity"
)

// ViewMode is the management screen mode.
type ViewMode string

const (
	// ModeList shows the collection table.
	ModeList ViewMode = "list"
	// ModeCreate shows the creation form.
	ModeCreate ViewMode = "create"
	// ModeEdit shows the edit form for the selected record.
	ModeEdit ViewMode = "edit"
	// ModeDetail shows the detail panel for the selected record.
	ModeDetail ViewMode = "detail"
)

// View is the transient, in-memory screen state. It is never persisted;
// navigating away resets it.
type View struct {
	// Selected is the canonical identity of the selected record, if any.
	Selected string
	// Mode is the current screen mode.
	Mode ViewMode
	// Search is the free-text filter. Matching is case- and
	// diacritic-insensitive.
	Search string
	// Filters maps filter names to values ("active" -> "true"/"false").
	Filters map[string]string
}

func (v View) clone() View {
	out := v
	if v.Filters != nil {
		out.Filters = make(map[string]string, len(v.Filters))
		for k, val := range v.Filters {
			out.Filters[k] = val
		}
	}
	return out
}

// Select marks a record as selected.
func (s *Store[T]) Select(id string) {
	s.mu.Lock()
	s.view.Selected = identity.Canonical(id)
	s.notifyLocked()
	s.mu.Unlock()
}

// Selected returns the selected record, if the selection resolves.
func (s *Store[T]) Selected() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.view.Selected == "" {
		return zero, false
	}
	for _, r := range s.records {
		if identity.Equal(r.ID(), s.view.Selected) {
			return r, true
		}
	}
	return zero, false
}

// SetMode switches the screen mode.
func (s *Store[T]) SetMode(m ViewMode) {
	s.mu.Lock()
	s.view.Mode = m
	s.notifyLocked()
	s.mu.Unlock()
}

// SetSearch sets the free-text filter.
func (s *Store[T]) SetSearch(term string) {
	s.mu.Lock()
	s.view.Search = term
	s.notifyLocked()
	s.mu.Unlock()
}

// SetFilter sets a named filter; an empty value removes it.
func (s *Store[T]) SetFilter(name, value string) {
	s.mu.Lock()
	if s.view.Filters == nil {
		s.view.Filters = make(map[string]string)
	}
	if value == "" {
		delete(s.view.Filters, name)
	} else {
		s.view.Filters[name] = value
	}
	s.notifyLocked()
	s.mu.Unlock()
}

// ResetView clears selection, mode, search and filters, as when the user
// navigates away from the managing screen.
func (s *Store[T]) ResetView() {
	s.mu.Lock()
	s.view = View{Mode: ModeList}
	s.notifyLocked()
	s.mu.Unlock()
}

// Visible returns the records passing the current search and filters.
func (s *Store[T]) Visible() []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := fold(s.view.Search)
	activeFilter, filterActive := s.view.Filters["active"]

	out := make([]T, 0, len(s.records))
	for _, r := range s.records {
		if filterActive {
			want := activeFilter == "true"
			if s.codec.IsActive(r) != want {
				continue
			}
		}
		if needle != "" && !matches(s.codec.SearchText(r), needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matches(haystacks []string, needle string) bool {
	for _, h := range haystacks {
		if strings.Contains(fold(h), needle) {
			return true
		}
	}
	return false
}

// fold lowercases and strips diacritics so "Máquina" matches "maquina".
func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
