package torque

import "math"

// ComputeUsage returns job with usage percentages filled in for every
// resource that has both an available and a used amount. The input is not
// modified and calling it again on the result yields the same values.
func ComputeUsage(job Job) Job {
	out := job
	for _, kind := range Resources {
		res := out.Resource(kind)
		res.Usage = nil
		res.UsageForFree = nil
		if res.Available == nil || res.Used == nil || *res.Available == 0 {
			continue
		}

		usage := math.Round(100.0 * *res.Used / *res.Available)
		res.Usage = &usage
		if kind == Cores && (out.Walltime.Used == nil || *out.Walltime.Used < MinObservedWalltime) {
			res.Usage = nil
		}

		forFree := 100.0 * kind.ForFree() / *res.Available
		if kind == Memory && out.Cores.Available != nil {
			forFree *= *out.Cores.Available
		}
		res.UsageForFree = &forFree
	}
	return out
}

// ComputeAll applies ComputeUsage to every job, keeping order.
func ComputeAll(jobs []Job) []Job {
	out := make([]Job, len(jobs))
	for i, job := range jobs {
		out[i] = ComputeUsage(job)
	}
	return out
}
