package model

// ReviewReason names one rule that flagged a WorkEntry for manual review.
type ReviewReason string

const (
	ReasonMorningLocation ReviewReason = "morning_location"
	ReasonEveningLocation ReviewReason = "evening_location"
	ReasonMorningOutside  ReviewReason = "morning_outside_area"
	ReasonEveningOutside  ReviewReason = "evening_outside_area"
	ReasonCheckInOrder    ReviewReason = "check_in_order"
	ReasonWorkTimeRange   ReviewReason = "work_time_range"
)

// ReviewReasons evaluates every review rule against the current field values.
// The result depends on nothing but e, so it can be recomputed at will.
// Day type is intentionally not consulted. Halves confirmed by hand skip the
// location rules.
func (e *WorkEntry) ReviewReasons() []ReviewReason {
	var reasons []ReviewReason

	if locationDegraded(e.Morning) {
		reasons = append(reasons, ReasonMorningLocation)
	}
	if locationDegraded(e.Evening) {
		reasons = append(reasons, ReasonEveningLocation)
	}
	if !e.Morning.Confirmed() && isTrue(e.Morning.OutsideReferenceArea) {
		reasons = append(reasons, ReasonMorningOutside)
	}
	if !e.Evening.Confirmed() && isTrue(e.Evening.OutsideReferenceArea) {
		reasons = append(reasons, ReasonEveningOutside)
	}
	if e.Morning.Attempted() && e.Evening.Attempted() &&
		!e.Evening.CapturedAt.After(*e.Morning.CapturedAt) {
		reasons = append(reasons, ReasonCheckInOrder)
	}
	if e.WorkStart != nil && e.WorkEnd != nil && *e.WorkEnd <= *e.WorkStart {
		reasons = append(reasons, ReasonWorkTimeRange)
	}

	return reasons
}

// ComputeNeedsReview reports whether any review rule fires.
func (e *WorkEntry) ComputeNeedsReview() bool {
	return len(e.ReviewReasons()) > 0
}

func locationDegraded(c CheckIn) bool {
	return c.Attempted() && !c.Confirmed() && c.LocationStatus.Degraded()
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
