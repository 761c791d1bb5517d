package utils

import "fmt"

// IDSet tracks join keys seen in a source and remembers which repeat.
type IDSet struct {
	seen  map[string]int
	order []string
}

// NewIDSet creates an empty IDSet.
func NewIDSet() *IDSet {
	return &IDSet{seen: make(map[string]int)}
}

// Add records key and returns true if it was newly added, false if it was
// already present.
func (s *IDSet) Add(key string) bool {
	n, exists := s.seen[key]
	s.seen[key] = n + 1
	if !exists {
		s.order = append(s.order, key)
	}
	return !exists
}

// Contains returns true if key has been added.
func (s *IDSet) Contains(key string) bool {
	_, exists := s.seen[key]
	return exists
}

// Duplicates returns the keys added more than once, in first-seen order,
// formatted as "key (xN)".
func (s *IDSet) Duplicates() []string {
	var dups []string
	for _, k := range s.order {
		if n := s.seen[k]; n > 1 {
			dups = append(dups, fmt.Sprintf("%s (x%d)", k, n))
		}
	}
	return dups
}
