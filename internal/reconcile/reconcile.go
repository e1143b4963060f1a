// Package reconcile merges authoritative todo snapshots from the store into
// a user-ordered working list without discarding manual drag order.
//
// Every function here is pure: inputs are never modified and results are
// freshly allocated.
package reconcile

import (
	"sort"

	"github.com/nhle/smarttodo/internal/model"
)

// Changed reports whether authoritative differs from local in a way that
// requires a merge: an id was added or removed, or a shared todo's
// completed flag flipped. Other field changes such as priority do not
// count, so an in-flight drag is never overwritten by them.
func Changed(local, authoritative []model.Todo) bool {
	if len(local) != len(authoritative) {
		return true
	}
	known := index(local)
	for _, a := range authoritative {
		i, ok := known[a.ID]
		if !ok || local[i].Completed != a.Completed {
			return true
		}
	}
	return false
}

// Reconcile merges authoritative into local:
//   - ids only in authoritative come first, in authoritative order;
//   - ids only in local are dropped;
//   - shared ids keep their relative order from local.
//
// Output items carry the authoritative field values.
func Reconcile(local, authoritative []model.Todo) []model.Todo {
	fresh := index(authoritative)
	known := index(local)

	out := make([]model.Todo, 0, len(authoritative))
	for _, a := range authoritative {
		if _, ok := known[a.ID]; !ok {
			out = append(out, a)
			known[a.ID] = -1
		}
	}
	for _, l := range local {
		if i, ok := fresh[l.ID]; ok {
			out = append(out, authoritative[i])
			delete(fresh, l.ID)
		}
	}
	return out
}

// Refresh returns local with each item's fields replaced by its
// authoritative version, keeping local order. Items missing from
// authoritative are kept as they are.
func Refresh(local, authoritative []model.Todo) []model.Todo {
	fresh := index(authoritative)
	out := make([]model.Todo, len(local))
	for i, l := range local {
		if j, ok := fresh[l.ID]; ok {
			out[i] = authoritative[j]
		} else {
			out[i] = l
		}
	}
	return out
}

// Arrange places pending todos first in their given order, then completed
// todos with the most recently completed first. Completed todos never
// interleave with pending ones.
func Arrange(list []model.Todo) []model.Todo {
	out := make([]model.Todo, 0, len(list))
	var completed []model.Todo
	for _, t := range list {
		if t.Completed {
			completed = append(completed, t)
		} else {
			out = append(out, t)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completedAfter(completed[i], completed[j])
	})
	return append(out, completed...)
}

// Pending returns the leading pending segment length of an arranged list.
func Pending(list []model.Todo) int {
	n := 0
	for _, t := range list {
		if t.Completed {
			break
		}
		n++
	}
	return n
}

// MoveItem extracts the element at from and reinserts it at to, shifting
// the others. Out-of-range indexes return an unchanged copy.
func MoveItem[T any](list []T, from, to int) []T {
	out := make([]T, len(list))
	copy(out, list)
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) || from == to {
		return out
	}

	item := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = item
	return out
}

// InitialOrder sorts a fresh snapshot for a new session: todos never
// reordered by hand come first, newest first, followed by the ones with a
// stored position in ascending position order. This matches the insertion
// policy of Reconcile, so a reload shows what the session showed.
func InitialOrder(todos []model.Todo) []model.Todo {
	out := make([]model.Todo, len(todos))
	copy(out, todos)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Position, out[j].Position
		switch {
		case pi == nil && pj == nil:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		case pi == nil:
			return true
		case pj == nil:
			return false
		default:
			return *pi < *pj
		}
	})
	return Arrange(out)
}

// IDs returns the ids of list in order.
func IDs(list []model.Todo) []string {
	ids := make([]string, len(list))
	for i, t := range list {
		ids[i] = t.ID
	}
	return ids
}

func index(list []model.Todo) map[string]int {
	m := make(map[string]int, len(list))
	for i, t := range list {
		m[t.ID] = i
	}
	return m
}

// completedAfter orders completed todos by completedAt descending; todos
// without a timestamp sort last.
func completedAfter(a, b model.Todo) bool {
	switch {
	case a.CompletedAt == nil:
		return false
	case b.CompletedAt == nil:
		return true
	default:
		return a.CompletedAt.After(*b.CompletedAt)
	}
}
