package report

import (
	"math"

	"myresources/internal/torque"
)

// Rating is the qualitative judgement of a resource usage.
type Rating int

const (
	NoRating Rating = iota
	Bad
	Medium
	Good
	Danger
)

func (r Rating) String() string {
	switch r {
	case Bad:
		return "bad"
	case Medium:
		return "medium"
	case Good:
		return "good"
	case Danger:
		return "danger"
	default:
		return "-"
	}
}

// Rate maps a usage percentage to a rating. The for-free usage can lift a
// low usage to medium or good; danger only looks at the real usage.
func Rate(usage, usageForFree float64, levels torque.Levels, showRating bool) Rating {
	if !showRating {
		return NoRating
	}
	usage = math.Min(usage, 100)
	level := math.Max(usage, math.Min(usageForFree, 100))
	switch {
	case usage >= levels.Danger:
		return Danger
	case level >= levels.Good:
		return Good
	case level >= levels.Medium:
		return Medium
	default:
		return Bad
	}
}

// RateResource rates one resource of a computed job. Walltime of a running
// job is not rated since the job may still use more.
func RateResource(job torque.Job, kind torque.ResourceKind) Rating {
	res := job.Resource(kind)
	if res.Usage == nil {
		return NoRating
	}
	forFree := 0.0
	if res.UsageForFree != nil {
		forFree = *res.UsageForFree
	}
	show := !(kind == torque.Walltime && job.State == torque.StateRunning)
	return Rate(*res.Usage, forFree, kind.Levels(), show)
}
