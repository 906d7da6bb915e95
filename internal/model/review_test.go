package model_test

import (
	"reflect"
	"testing"
	"time"

	"montagebot/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestReviewReasons(t *testing.T) {
	morning := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(e *model.WorkEntry)
		want   []model.ReviewReason
	}{
		{
			name:   "fresh entry",
			mutate: func(e *model.WorkEntry) {},
			want:   nil,
		},
		{
			name: "clean day",
			mutate: func(e *model.WorkEntry) {
				e.Morning.CapturedAt = &morning
				e.Morning.OutsideReferenceArea = ptr(false)
				e.Evening.CapturedAt = &evening
				e.Evening.OutsideReferenceArea = ptr(false)
			},
			want: nil,
		},
		{
			name: "unavailable status only counts when attempted",
			mutate: func(e *model.WorkEntry) {
				e.Evening.LocationStatus = model.LocationUnavailable
			},
			want: nil,
		},
		{
			name: "unavailable morning",
			mutate: func(e *model.WorkEntry) {
				e.Morning.CapturedAt = &morning
				e.Morning.LocationStatus = model.LocationUnavailable
			},
			want: []model.ReviewReason{model.ReasonMorningLocation},
		},
		{
			name: "low accuracy evening outside area",
			mutate: func(e *model.WorkEntry) {
				e.Evening.CapturedAt = &evening
				e.Evening.LocationStatus = model.LocationLowAccuracy
				e.Evening.OutsideReferenceArea = ptr(true)
			},
			want: []model.ReviewReason{model.ReasonEveningLocation, model.ReasonEveningOutside},
		},
		{
			name: "evening before morning",
			mutate: func(e *model.WorkEntry) {
				e.Morning.CapturedAt = &evening
				e.Evening.CapturedAt = &morning
			},
			want: []model.ReviewReason{model.ReasonCheckInOrder},
		},
		{
			name: "equal capture times",
			mutate: func(e *model.WorkEntry) {
				e.Morning.CapturedAt = &morning
				e.Evening.CapturedAt = &morning
			},
			want: []model.ReviewReason{model.ReasonCheckInOrder},
		},
		{
			name: "work end not after start",
			mutate: func(e *model.WorkEntry) {
				e.WorkStart = ptr(model.MustTimeOfDay(17, 0))
				e.WorkEnd = ptr(model.MustTimeOfDay(8, 0))
			},
			want: []model.ReviewReason{model.ReasonWorkTimeRange},
		},
		{
			name: "only work start known",
			mutate: func(e *model.WorkEntry) {
				e.WorkStart = ptr(model.MustTimeOfDay(17, 0))
			},
			want: nil,
		},
		{
			name: "off day is reviewed the same way",
			mutate: func(e *model.WorkEntry) {
				e.DayType = model.DayTypeOff
				e.Morning.CapturedAt = &morning
				e.Morning.OutsideReferenceArea = ptr(true)
			},
			want: []model.ReviewReason{model.ReasonMorningOutside},
		},
		{
			name: "confirmed half skips location rules",
			mutate: func(e *model.WorkEntry) {
				e.Morning.CapturedAt = &morning
				e.Morning.LocationStatus = model.LocationUnavailable
				e.Morning.ConfirmedOutside = ptr(true)
				e.Evening.CapturedAt = &evening
				e.Evening.OutsideReferenceArea = ptr(true)
			},
			want: []model.ReviewReason{model.ReasonEveningOutside},
		},
		{
			name: "confirmed half still checks order",
			mutate: func(e *model.WorkEntry) {
				e.Morning.CapturedAt = &evening
				e.Morning.ConfirmedOutside = ptr(false)
				e.Evening.CapturedAt = &morning
				e.Evening.ConfirmedOutside = ptr(false)
			},
			want: []model.ReviewReason{model.ReasonCheckInOrder},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := model.NewWorkEntry("2026-03-02", morning)
			tt.mutate(e)
			got := e.ReviewReasons()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReviewReasons() = %v, want %v", got, tt.want)
			}
			if e.ComputeNeedsReview() != (len(tt.want) > 0) {
				t.Errorf("ComputeNeedsReview() = %v, want %v", e.ComputeNeedsReview(), len(tt.want) > 0)
			}
		})
	}
}

func TestComputeNeedsReviewIdempotent(t *testing.T) {
	captured := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
	e := model.NewWorkEntry("2026-03-02", captured)
	e.Morning.CapturedAt = &captured
	e.Morning.LocationStatus = model.LocationLowAccuracy

	first := e.ComputeNeedsReview()
	e.NeedsReview = first
	for i := 0; i < 5; i++ {
		if got := e.ComputeNeedsReview(); got != first {
			t.Fatalf("ComputeNeedsReview() call %d = %v, want %v", i, got, first)
		}
	}
}
