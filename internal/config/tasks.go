package config

import "strings"

const (
	TypeWorkflowAdvance = "workflow:advance"
	TypeWorkflowTimeout = "workflow:timeout"
	TypeCostReport      = "cost:report"
	TypeLinkReconcile   = "link:reconcile"
)

// Queues the worker serves. Workflow tasks are weighted above maintenance
// so a backlog of cost reports never stalls a running execution.
const (
	QueueWorkflow    = "workflow"
	QueueMaintenance = "maintenance"
)

var QueuePriorities = map[string]int{
	QueueWorkflow:    3,
	QueueMaintenance: 1,
}

// PeriodicTasks are the task types the scheduler may enqueue on a cronspec.
var PeriodicTasks = map[string]struct{}{
	TypeWorkflowTimeout: {},
	TypeCostReport:      {},
	TypeLinkReconcile:   {},
}

// QueueFor names the queue a task type is enqueued on.
func QueueFor(taskType string) string {
	if strings.HasPrefix(taskType, "workflow:") {
		return QueueWorkflow
	}

	return QueueMaintenance
}
