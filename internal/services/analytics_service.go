package services

import (
	"fmt"
	"time"

	"github.com/yukikurage/taskforge-api/internal/constants"
	"github.com/yukikurage/taskforge-api/internal/models"
	"github.com/yukikurage/taskforge-api/internal/repository"
)

const activityDateLayout = "2006-01-02"

// DashboardSummary is the aggregate view over every task a user can see
type DashboardSummary struct {
	TotalProjects        int                  `json:"totalProjects"`
	TotalTasks           int64                `json:"totalTasks"`
	CompletedTasks       int64                `json:"completedTasks"`
	CompletionRate       int                  `json:"completionRate"`
	OverdueCount         int64                `json:"overdueCount"`
	StatusDistribution   []DistributionBucket `json:"statusDistribution"`
	PriorityDistribution []DistributionBucket `json:"priorityDistribution"`
	RecentActivity       []ActivityDay        `json:"recentActivity"`
	ProjectStats         []ProjectStat        `json:"projectStats"`
}

// DistributionBucket is a non-empty slice of a distribution
type DistributionBucket struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// ActivityDay counts tasks created on one UTC calendar day
type ActivityDay struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ProjectStat is a project's task counts, computed from its tasks
type ProjectStat struct {
	ID             uint64               `json:"id"`
	Name           string               `json:"name"`
	Status         models.ProjectStatus `json:"status"`
	Deadline       *time.Time           `json:"deadline"`
	TotalTasks     int64                `json:"totalTasks"`
	CompletedTasks int64                `json:"completedTasks"`
}

// AnalyticsService builds dashboard summaries
type AnalyticsService struct {
	store *repository.Store
	now   func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(store *repository.Store) *AnalyticsService {
	return &AnalyticsService{
		store: store,
		now:   time.Now,
	}
}

// Summarize aggregates the projects user owns or belongs to, or every
// project for an Admin.
func (s *AnalyticsService) Summarize(user *models.User) (*DashboardSummary, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, 0, -(constants.RecentActivityDays - 1))

	projects, err := s.store.Projects.ListVisible(user.ID, user.Role == models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	ids := make([]uint64, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}

	stats, err := s.store.Tasks.Stats(ids, now, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tasks: %w", err)
	}

	byStatus := countsByKey(stats.ByStatus)
	completed := byStatus[string(models.TaskStatusDone)]

	return &DashboardSummary{
		TotalProjects:        len(projects),
		TotalTasks:           stats.Total,
		CompletedTasks:       completed,
		CompletionRate:       ProgressPercent(completed, stats.Total),
		OverdueCount:         stats.Overdue,
		StatusDistribution:   distribution(models.TaskStatuses, byStatus),
		PriorityDistribution: distribution(models.TaskPriorities, countsByKey(stats.ByPriority)),
		RecentActivity:       activity(since, stats.RecentCreated),
		ProjectStats:         projectStats(projects, stats.ByProject),
	}, nil
}

func countsByKey(groups []repository.GroupCount) map[string]int64 {
	counts := make(map[string]int64, len(groups))
	for _, g := range groups {
		counts[g.Key] += g.Count
	}
	return counts
}

// distribution lists the non-zero buckets in the given order.
func distribution[T ~string](order []T, counts map[string]int64) []DistributionBucket {
	buckets := []DistributionBucket{}
	for _, key := range order {
		if n := counts[string(key)]; n > 0 {
			buckets = append(buckets, DistributionBucket{Name: string(key), Value: n})
		}
	}
	return buckets
}

// activity buckets creation times into consecutive UTC days starting at
// since, zero-filling empty days.
func activity(since time.Time, created []time.Time) []ActivityDay {
	days := make([]ActivityDay, constants.RecentActivityDays)
	index := make(map[string]int, len(days))
	for i := range days {
		date := since.AddDate(0, 0, i).Format(activityDateLayout)
		days[i] = ActivityDay{Date: date}
		index[date] = i
	}

	for _, t := range created {
		if i, ok := index[t.UTC().Format(activityDateLayout)]; ok {
			days[i].Count++
		}
	}
	return days
}

func projectStats(projects []models.Project, counts []repository.ProjectStatusCount) []ProjectStat {
	type tally struct{ total, done int64 }
	byProject := make(map[uint64]*tally, len(projects))
	for _, c := range counts {
		t, ok := byProject[c.ProjectID]
		if !ok {
			t = &tally{}
			byProject[c.ProjectID] = t
		}
		t.total += c.Count
		if c.Status == models.TaskStatusDone {
			t.done += c.Count
		}
	}

	out := make([]ProjectStat, len(projects))
	for i, p := range projects {
		out[i] = ProjectStat{
			ID:       p.ID,
			Name:     p.Name,
			Status:   p.Status,
			Deadline: p.Deadline,
		}
		if t, ok := byProject[p.ID]; ok {
			out[i].TotalTasks = t.total
			out[i].CompletedTasks = t.done
		}
	}
	return out
}
