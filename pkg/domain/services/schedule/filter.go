package schedule

import (
	"strings"

	"github.com/vsinha/prodschedule/pkg/domain/entities"
)

// Filter keeps tasks whose product name, requester or status label
// contains query, ignoring case. A blank query returns tasks unchanged.
// It must run before GroupByLine so hidden tasks never take a slot.
func Filter(tasks []entities.Task, query string) []entities.Task {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return tasks
	}

	matched := make([]entities.Task, 0, len(tasks))
	for _, task := range tasks {
		if matches(task, needle) {
			matched = append(matched, task)
		}
	}
	return matched
}

func matches(task entities.Task, needle string) bool {
	return strings.Contains(strings.ToLower(task.ProductName), needle) ||
		strings.Contains(strings.ToLower(task.RequesterName), needle) ||
		strings.Contains(strings.ToLower(task.Status.Label()), needle)
}
