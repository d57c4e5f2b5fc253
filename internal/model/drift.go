package model

// DriftStatus is the drift state of a workspace as shown to the users.
type DriftStatus string

const (
	DriftStatusDrifted     DriftStatus = "drifted"
	DriftStatusNoDrift     DriftStatus = "no-drift"
	DriftStatusUnavailable DriftStatus = "unavailable"
	DriftStatusLoading     DriftStatus = "loading"
)

// DriftStatusFromAssessment derives the drift status from an assessment result.
//
// Not having an assessment is not an error, health assessments are not available
// on every plan, so it's shown as unavailable, same for failed assessments.
func DriftStatusFromAssessment(a *AssessmentResult) DriftStatus {
	switch {
	case a == nil:
		return DriftStatusUnavailable
	case !a.Succeeded:
		return DriftStatusUnavailable
	case a.Drifted:
		return DriftStatusDrifted
	default:
		return DriftStatusNoDrift
	}
}
