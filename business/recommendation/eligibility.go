package recommendation

import (
	"context"

	"myFoodFinder/domain"
)

// EligibilityChecker decides whether a fetched place may enter the
// candidate cache (closed businesses, blocked places).
type EligibilityChecker interface {
	IsEligible(ctx context.Context, c domain.Candidate) (bool, error)
}

// NoopEligibilityChecker is the default implementation that allows everything.
type NoopEligibilityChecker struct{}

func (NoopEligibilityChecker) IsEligible(ctx context.Context, c domain.Candidate) (bool, error) {
	return true, nil
}

// OperationalChecker drops places the directory reports as closed for good
// or temporarily.
type OperationalChecker struct{}

func (OperationalChecker) IsEligible(ctx context.Context, c domain.Candidate) (bool, error) {
	switch c.BusinessStatus {
	case "CLOSED_PERMANENTLY", "CLOSED_TEMPORARILY":
		return false, nil
	default:
		return true, nil
	}
}
