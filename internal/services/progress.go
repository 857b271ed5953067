package services

import (
	"fmt"

	"github.com/yukikurage/taskforge-api/internal/repository"
)

// ProgressPercent is round(100*done/total) with halves rounded up, and 0
// for an empty project.
func ProgressPercent(done, total int64) int {
	if total <= 0 {
		return 0
	}
	return int((200*done + total) / (2 * total))
}

// ProgressRecalculator keeps Project.progress equal to the share of done
// tasks. It must run on the same Store (transaction) as the task write
// that triggered it.
type ProgressRecalculator struct{}

// Recalculate recounts the project's tasks and persists the result.
func (ProgressRecalculator) Recalculate(store *repository.Store, projectID uint64) (int, error) {
	total, done, err := store.Tasks.CountProgress(projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	progress := ProgressPercent(done, total)
	if err := store.Projects.UpdateProgress(projectID, progress); err != nil {
		return 0, fmt.Errorf("failed to store progress: %w", err)
	}
	return progress, nil
}
