package report

import (
	"fmt"
	"strconv"

	"myresources/internal/torque"
)

// DemoJobs returns computed sample jobs covering every rating, for the
// --demo output.
func DemoJobs() []torque.Job {
	jobs := make([]torque.Job, 0, 4)
	for i := 1; i <= 4; i++ {
		n := float64(i)
		job := torque.Job{
			ID:       strconv.Itoa(100000 + i),
			Name:     fmt.Sprintf("my_super_job%d", i),
			State:    torque.StateCompleted,
			Walltime: torque.ResourceUsage{Available: value(16), Used: value(n * 4)},
			Memory:   torque.ResourceUsage{Available: value(20), Used: value(n * 5)},
			Cores:    torque.ResourceUsage{Available: value(4), Used: value(n)},
		}
		jobs = append(jobs, torque.ComputeUsage(job))
	}
	return jobs
}

func value(v float64) *float64 { return &v }
