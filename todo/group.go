package todo

import "sort"

// NoDueDate is the group key for todos without a due date. The group
// always sorts before every dated group.
const NoDueDate = "No Due Date"

// DateGroup is a presentation bucket of todos sharing a due-date key.
// Groups are derived on every read and never stored.
type DateGroup struct {
	Date  string `json:"date"`
	Todos []Todo `json:"tasks"`
}

// GroupByDate buckets todos by due date and returns the buckets in
// presentation order: the "No Due Date" bucket first, then dated
// buckets by ascending date. Within a bucket, incomplete todos come
// before completed ones, ties broken by ascending ID. The result is
// deterministic regardless of input order.
func GroupByDate(todos []Todo) []DateGroup {
	buckets := make(map[string][]Todo)
	for _, t := range todos {
		key := NoDueDate
		if t.DueDate != nil {
			key = *t.DueDate
		}
		buckets[key] = append(buckets[key], t)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == NoDueDate {
			return keys[j] != NoDueDate
		}
		if keys[j] == NoDueDate {
			return false
		}
		return keys[i] < keys[j]
	})

	groups := make([]DateGroup, 0, len(keys))
	for _, k := range keys {
		ts := buckets[k]
		sort.Slice(ts, func(i, j int) bool {
			if ts[i].Completed != ts[j].Completed {
				return !ts[i].Completed
			}
			return ts[i].ID < ts[j].ID
		})
		groups = append(groups, DateGroup{Date: k, Todos: ts})
	}
	return groups
}
