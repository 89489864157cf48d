package filetree

import "sort"

// Expansion is the set of directory paths currently expanded in the view.
// The zero value is an empty, ready to use set.
type Expansion struct {
	paths map[string]struct{}
}

// Toggle flips the membership of path and reports whether it is now expanded
func (e *Expansion) Toggle(path string) bool {
	if e.paths == nil {
		e.paths = make(map[string]struct{})
	}
	if _, ok := e.paths[path]; ok {
		delete(e.paths, path)
		return false
	}
	e.paths[path] = struct{}{}
	return true
}

// Contains reports whether path is expanded
func (e *Expansion) Contains(path string) bool {
	_, ok := e.paths[path]
	return ok
}

// Len returns the number of expanded paths
func (e *Expansion) Len() int {
	return len(e.paths)
}

// Paths returns the expanded paths in lexical order
func (e *Expansion) Paths() []string {
	out := make([]string, 0, len(e.paths))
	for p := range e.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy
func (e *Expansion) Clone() *Expansion {
	c := &Expansion{paths: make(map[string]struct{}, len(e.paths))}
	for p := range e.paths {
		c.paths[p] = struct{}{}
	}
	return c
}

// Equal reports whether both sets hold the same paths
func (e *Expansion) Equal(other *Expansion) bool {
	if e.Len() != other.Len() {
		return false
	}
	for p := range e.paths {
		if !other.Contains(p) {
			return false
		}
	}
	return true
}

// Selection maps full file paths to a selected flag. Keys remember the order
// in which they were first toggled; a key stays in place when its flag goes
// back to false. The zero value is empty and ready to use.
type Selection struct {
	order []string
	flags map[string]bool
}

// Toggle flips the flag of path, treating an absent key as false, and
// returns the new value.
func (s *Selection) Toggle(path string) bool {
	if s.flags == nil {
		s.flags = make(map[string]bool)
	}
	current, ok := s.flags[path]
	if !ok {
		s.order = append(s.order, path)
	}
	s.flags[path] = !current
	return !current
}

// IsSelected reports whether path is currently flagged
func (s *Selection) IsSelected(path string) bool {
	return s.flags[path]
}

// Selected returns the paths whose flag is true, in first-insertion order.
// The result is never nil.
func (s *Selection) Selected() []string {
	out := make([]string, 0, len(s.order))
	for _, p := range s.order {
		if s.flags[p] {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of selected paths
func (s *Selection) Len() int {
	n := 0
	for _, v := range s.flags {
		if v {
			n++
		}
	}
	return n
}

// Clone returns an independent copy
func (s *Selection) Clone() *Selection {
	c := &Selection{
		order: append([]string(nil), s.order...),
		flags: make(map[string]bool, len(s.flags)),
	}
	for k, v := range s.flags {
		c.flags[k] = v
	}
	return c
}

// Equal compares the observable state of two selections: the same flag for
// every path, absent keys counting as false.
func (s *Selection) Equal(other *Selection) bool {
	for k, v := range s.flags {
		if other.flags[k] != v {
			return false
		}
	}
	for k, v := range other.flags {
		if s.flags[k] != v {
			return false
		}
	}
	return true
}
