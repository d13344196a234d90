package report

import (
	"testing"

	"myresources/internal/torque"
)

func TestRate(t *testing.T) {
	mem := torque.Levels{Medium: 50, Good: 75, Danger: 99}
	tests := []struct {
		name    string
		usage   float64
		forFree float64
		show    bool
		want    Rating
	}{
		{name: "hidden", usage: 99, forFree: 0, show: false, want: NoRating},
		{name: "danger", usage: 99, forFree: 0, show: true, want: Danger},
		{name: "danger ignores for free", usage: 99, forFree: 100, show: true, want: Danger},
		{name: "over limit is danger", usage: 130, forFree: 0, show: true, want: Danger},
		{name: "good", usage: 80, forFree: 0, show: true, want: Good},
		{name: "medium", usage: 50, forFree: 0, show: true, want: Medium},
		{name: "bad", usage: 49, forFree: 0, show: true, want: Bad},
		{name: "for free lifts to medium", usage: 40, forFree: 60, show: true, want: Medium},
		{name: "for free lifts to good", usage: 40, forFree: 80, show: true, want: Good},
		{name: "for free never reaches danger", usage: 10, forFree: 200, show: true, want: Good},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rate(tt.usage, tt.forFree, mem, tt.show); got != tt.want {
				t.Fatalf("Rate(%v, %v)=%s want=%s", tt.usage, tt.forFree, got, tt.want)
			}
		})
	}
}

func TestRateCoresNeverDanger(t *testing.T) {
	if got := Rate(250, 0, torque.Cores.Levels(), true); got != Good {
		t.Fatalf("capped core usage should rate good, got %s", got)
	}
}

func TestRatingString(t *testing.T) {
	want := map[Rating]string{NoRating: "-", Bad: "bad", Medium: "medium", Good: "good", Danger: "danger"}
	for r, s := range want {
		if r.String() != s {
			t.Fatalf("Rating(%d).String()=%q want=%q", r, r.String(), s)
		}
	}
}

func TestRateResourceRunningWalltimeIsNotRated(t *testing.T) {
	job := torque.ComputeUsage(torque.Job{
		State:    torque.StateRunning,
		Walltime: torque.ResourceUsage{Available: value(10), Used: value(9.95)},
		Memory:   torque.ResourceUsage{Available: value(10), Used: value(9)},
		Cores:    torque.ResourceUsage{Available: value(1), Used: value(1)},
	})
	if got := RateResource(job, torque.Walltime); got != NoRating {
		t.Fatalf("running walltime rated %s", got)
	}
	if got := RateResource(job, torque.Memory); got != Good {
		t.Fatalf("memory rated %s, want good", got)
	}

	job.State = torque.StateCompleted
	if got := RateResource(job, torque.Walltime); got != Danger {
		t.Fatalf("completed walltime rated %s, want danger", got)
	}
}
