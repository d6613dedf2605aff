// Package jobs contains the background sweeps registered with the scheduler.
// Every sweep writes through the deduplicated notification sink, so running a
// sweep twice, or concurrently with the request-path evaluation, produces no
// duplicate alerts.
package jobs

import (
	"time"

	"fintrack/internal/services"
)

// BudgetAlertsJob evaluates every user's current-month budgets.
type BudgetAlertsJob struct {
	budgetAlerts services.BudgetAlertServicer
}

// NewBudgetAlertsJob creates a new BudgetAlertsJob.
func NewBudgetAlertsJob(budgetAlerts services.BudgetAlertServicer) *BudgetAlertsJob {
	return &BudgetAlertsJob{budgetAlerts: budgetAlerts}
}

// Name returns the job's name.
func (j *BudgetAlertsJob) Name() string { return "budget-alerts" }

// Run sweeps the current month's budgets.
func (j *BudgetAlertsJob) Run() error {
	return j.budgetAlerts.RunSweep(time.Now().UTC())
}

// GoalRemindersJob sweeps active goals for approaching and missed deadlines.
type GoalRemindersJob struct {
	goalReminders services.GoalReminderServicer
}

// NewGoalRemindersJob creates a new GoalRemindersJob.
func NewGoalRemindersJob(goalReminders services.GoalReminderServicer) *GoalRemindersJob {
	return &GoalRemindersJob{goalReminders: goalReminders}
}

// Name returns the job's name.
func (j *GoalRemindersJob) Name() string { return "goal-reminders" }

// Run sweeps goal deadlines.
func (j *GoalRemindersJob) Run() error {
	return j.goalReminders.RunSweep(time.Now().UTC())
}
