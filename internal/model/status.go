package model

// RunStatus is the status of a Terraform run.
type RunStatus string

const (
	RunStatusPending            RunStatus = "pending"
	RunStatusFetching           RunStatus = "fetching"
	RunStatusFetchingCompleted  RunStatus = "fetching_completed"
	RunStatusPrePlanRunning     RunStatus = "pre_plan_running"
	RunStatusPrePlanCompleted   RunStatus = "pre_plan_completed"
	RunStatusQueuing            RunStatus = "queuing"
	RunStatusPlanQueued         RunStatus = "plan_queued"
	RunStatusPlanning           RunStatus = "planning"
	RunStatusPlanned            RunStatus = "planned"
	RunStatusCostEstimating     RunStatus = "cost_estimating"
	RunStatusCostEstimated      RunStatus = "cost_estimated"
	RunStatusPolicyChecking     RunStatus = "policy_checking"
	RunStatusPolicyOverride     RunStatus = "policy_override"
	RunStatusPolicySoftFailed   RunStatus = "policy_soft_failed"
	RunStatusPolicyChecked      RunStatus = "policy_checked"
	RunStatusConfirmed          RunStatus = "confirmed"
	RunStatusPostPlanRunning    RunStatus = "post_plan_running"
	RunStatusPostPlanCompleted  RunStatus = "post_plan_completed"
	RunStatusApplyQueued        RunStatus = "apply_queued"
	RunStatusApplying           RunStatus = "applying"
	RunStatusApplied            RunStatus = "applied"
	RunStatusDiscarded          RunStatus = "discarded"
	RunStatusErrored            RunStatus = "errored"
	RunStatusCanceled           RunStatus = "canceled"
	RunStatusForceCanceled      RunStatus = "force_canceled"
	RunStatusPlannedAndFinished RunStatus = "planned_and_finished"
	RunStatusPlannedAndSaved    RunStatus = "planned_and_saved"
)

// RunStatusFallback is used for every status we don't know.
const RunStatusFallback = RunStatusErrored

var runStatusLabels = map[RunStatus]string{
	RunStatusPending:            "Pending",
	RunStatusFetching:           "Fetching",
	RunStatusFetchingCompleted:  "Fetching Completed",
	RunStatusPrePlanRunning:     "Pre-plan Running",
	RunStatusPrePlanCompleted:   "Pre-plan Completed",
	RunStatusQueuing:            "Queuing",
	RunStatusPlanQueued:         "Plan Queued",
	RunStatusPlanning:           "Planning",
	RunStatusPlanned:            "Planned",
	RunStatusCostEstimating:     "Cost Estimating",
	RunStatusCostEstimated:      "Cost Estimated",
	RunStatusPolicyChecking:     "Policy Checking",
	RunStatusPolicyOverride:     "Policy Override",
	RunStatusPolicySoftFailed:   "Policy Soft Failed",
	RunStatusPolicyChecked:      "Policy Checked",
	RunStatusConfirmed:          "Confirmed",
	RunStatusPostPlanRunning:    "Post-plan Running",
	RunStatusPostPlanCompleted:  "Post-plan Completed",
	RunStatusApplyQueued:        "Apply Queued",
	RunStatusApplying:           "Applying",
	RunStatusApplied:            "Applied",
	RunStatusDiscarded:          "Discarded",
	RunStatusErrored:            "Errored",
	RunStatusCanceled:           "Canceled",
	RunStatusForceCanceled:      "Force Canceled",
	RunStatusPlannedAndFinished: "Planned and Finished",
	RunStatusPlannedAndSaved:    "Planned and Saved",
}

// NormalizeRunStatus maps any external run status into a known RunStatus.
// Unknown statuses are mapped to RunStatusFallback, this never fails.
func NormalizeRunStatus(s string) RunStatus {
	st := RunStatus(s)
	if _, ok := runStatusLabels[st]; ok {
		return st
	}

	return RunStatusFallback
}

// RunStatuses returns all the known run statuses.
func RunStatuses() []RunStatus {
	sts := make([]RunStatus, 0, len(runStatusLabels))
	for s := range runStatusLabels {
		sts = append(sts, s)
	}
	return sts
}

// Label returns a human friendly representation of the status.
func (r RunStatus) Label() string {
	if r == "" {
		return "No runs"
	}

	l, ok := runStatusLabels[r]
	if !ok {
		return string(r)
	}
	return l
}

// RunStatusCategory groups the run statuses by meaning.
type RunStatusCategory string

const (
	RunStatusCategoryUnknown        RunStatusCategory = "unknown"
	RunStatusCategorySuccess        RunStatusCategory = "success"
	RunStatusCategoryInProgress     RunStatusCategory = "in-progress"
	RunStatusCategoryFailed         RunStatusCategory = "failed"
	RunStatusCategoryCanceled       RunStatusCategory = "canceled"
	RunStatusCategoryNeedsAttention RunStatusCategory = "needs-attention"
)

// Category returns the category of the status.
func (r RunStatus) Category() RunStatusCategory {
	switch r {
	case RunStatusApplied, RunStatusPlannedAndFinished:
		return RunStatusCategorySuccess
	case RunStatusPlanning, RunStatusApplying, RunStatusPending, RunStatusQueuing, RunStatusPlanQueued, RunStatusApplyQueued:
		return RunStatusCategoryInProgress
	case RunStatusErrored, RunStatusForceCanceled:
		return RunStatusCategoryFailed
	case RunStatusCanceled, RunStatusDiscarded:
		return RunStatusCategoryCanceled
	case RunStatusPlanned, RunStatusPlannedAndSaved, RunStatusPolicyChecked, RunStatusCostEstimated:
		return RunStatusCategoryNeedsAttention
	default:
		return RunStatusCategoryUnknown
	}
}
