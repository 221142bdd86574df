package bandit

import "fmt"

const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

// AcceptedFromDecision maps the client's swipe label to the success flag
// stored against the place.
func AcceptedFromDecision(decision string) (bool, error) {
	switch decision {
	case DecisionAccept:
		return true, nil
	case DecisionReject:
		return false, nil
	default:
		return false, fmt.Errorf("unknown decision: %s", decision)
	}
}
