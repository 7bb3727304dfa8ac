package scheduler

import (
	"log/slog"
	"time"

	"answerhub/internal/config"
	"answerhub/internal/service"
)

// Scheduler handles periodic maintenance tasks
type Scheduler struct {
	assignmentService *service.AssignmentService
	reviewService     *service.ReviewService
	config            *config.SchedulerConfig
	stopChan          chan bool
}

// NewScheduler creates a new scheduler
func NewScheduler(
	assignmentService *service.AssignmentService,
	reviewService *service.ReviewService,
	cfg *config.SchedulerConfig,
) *Scheduler {
	return &Scheduler{
		assignmentService: assignmentService,
		reviewService:     reviewService,
		config:            cfg,
		stopChan:          make(chan bool),
	}
}

// Start starts all scheduled tasks
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler",
		"overdue_sweep_enabled", s.config.EnableOverdueSweep,
		"redistribution_enabled", s.config.EnableRedistribution)

	if s.config.EnableOverdueSweep {
		go s.scheduleIntervalTask(s.config.OverdueSweepInterval, "overdue_sweep", s.markOverdueReviews)
	}

	if s.config.EnableRedistribution {
		go s.scheduleIntervalTask(s.config.RedistributeInterval, "redistribution", s.redistributeAssignments)
	}

	slog.Info("Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	slog.Info("Stopping scheduler")
	close(s.stopChan)
}

// scheduleIntervalTask runs a task at regular intervals
func (s *Scheduler) scheduleIntervalTask(interval time.Duration, taskName string, task func()) {
	slog.Info("Starting interval task", "task", taskName, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start
	slog.Info("Running interval task", "task", taskName)
	task()

	for {
		select {
		case <-ticker.C:
			slog.Info("Running interval task", "task", taskName)
			task()
		case <-s.stopChan:
			return
		}
	}
}

// markOverdueReviews flips open reviews past their due date to overdue
func (s *Scheduler) markOverdueReviews() {
	affected, err := s.reviewService.MarkOverdueReviews()
	if err != nil {
		slog.Error("Failed to mark overdue reviews", "error", err)
		return
	}

	if affected > 0 {
		slog.Info("Marked overdue reviews", "count", affected)
	}
}

// redistributeAssignments moves pending assignments away from overloaded reviewers
func (s *Scheduler) redistributeAssignments() {
	moved, err := s.assignmentService.RedistributeAssignments()
	if err != nil {
		slog.Error("Failed to redistribute assignments", "error", err)
		return
	}

	if moved > 0 {
		slog.Info("Redistribution sweep completed", "moved", moved)
	}
}
