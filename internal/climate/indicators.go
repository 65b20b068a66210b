package climate

import (
	"fmt"
	"strings"
)

// Indicator is a source indicator name with an optional display alias.
type Indicator struct {
	Name  string
	Alias string
}

// Display returns the alias, or the source name when no alias is set.
func (i Indicator) Display() string {
	if i.Alias != "" {
		return i.Alias
	}
	return i.Name
}

// IndicatorSet is the fixed set of indicators retained by the loader.
type IndicatorSet struct {
	items  []Indicator
	byName map[string]string
}

// NewIndicatorSet builds a set. Names and display names must be unique.
func NewIndicatorSet(items ...Indicator) (*IndicatorSet, error) {
	s := &IndicatorSet{byName: make(map[string]string, len(items))}
	seen := make(map[string]string, len(items))
	for _, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		it.Alias = strings.TrimSpace(it.Alias)
		if it.Name == "" {
			return nil, fmt.Errorf("indicator set: empty name")
		}
		if _, dup := s.byName[it.Name]; dup {
			return nil, fmt.Errorf("indicator set: duplicate name %q", it.Name)
		}
		d := it.Display()
		if prev, dup := seen[d]; dup {
			return nil, fmt.Errorf("indicator set: display name %q used by %q and %q", d, prev, it.Name)
		}
		seen[d] = it.Name
		s.byName[it.Name] = d
		s.items = append(s.items, it)
	}
	return s, nil
}

// Lookup returns the display name for a source indicator name.
func (s *IndicatorSet) Lookup(name string) (string, bool) {
	d, ok := s.byName[name]
	return d, ok
}

// Displays returns display names in configured order.
func (s *IndicatorSet) Displays() []string {
	out := make([]string, len(s.items))
	for i, it := range s.items {
		out[i] = it.Display()
	}
	return out
}

func (s *IndicatorSet) Len() int { return len(s.items) }
