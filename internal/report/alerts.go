package report

import (
	"fmt"
	"math"
	"strings"

	"myresources/internal/torque"
)

type alertRule struct {
	kind  torque.ResourceKind
	check func(job torque.Job) []string
}

// Rules run in this order so alert output is stable.
var resourceAlertRules = []alertRule{
	{kind: torque.Memory, check: memoryAlerts},
	{kind: torque.Walltime, check: walltimeAlerts},
	{kind: torque.Cores, check: coreAlerts},
}

// Alerts returns the alert lines for a computed job, empty when nothing
// applies. Resources without a usage are skipped.
func Alerts(job torque.Job) []string {
	var out []string
	for _, rule := range resourceAlertRules {
		if job.Resource(rule.kind).Usage == nil {
			continue
		}
		out = append(out, rule.check(job)...)
	}
	if alert, ok := exitAlert(job); ok {
		out = append(out, alert)
	}
	return out
}

func forFree(res *torque.ResourceUsage) float64 {
	if res.UsageForFree == nil {
		return 0
	}
	return *res.UsageForFree
}

func memoryAlerts(job torque.Job) []string {
	var out []string
	mem := job.Memory
	levels := torque.Memory.Levels()
	if *mem.Usage > levels.Danger {
		out = append(out, fmt.Sprintf(
			"Alert: memory close to the limit (%.0f %%). If your job failed, request more memory.",
			*mem.Usage))
	}
	if math.Max(*mem.Usage, forFree(&mem)) < levels.Medium {
		out = append(out, fmt.Sprintf(
			"Alert: only %.1f gb of the requested %.1f gb memory used. Please request less memory to avoid wasting resources.",
			*mem.Used, *mem.Available))
	}
	return out
}

func walltimeAlerts(job torque.Job) []string {
	if *job.Walltime.Usage > torque.Walltime.Levels().Danger {
		return []string{fmt.Sprintf(
			"Alert: walltime close to the limit (%.0f %%). If your job failed, request more walltime.",
			*job.Walltime.Usage)}
	}
	return nil
}

func coreAlerts(job torque.Job) []string {
	cores := job.Cores
	if *cores.Available > 1 && *cores.Usage+forFree(&cores) < torque.Cores.Levels().Medium {
		return []string{fmt.Sprintf(
			"Alert: only %.1f of the requested %d cores used. Please request less cores or make sure your program uses all cores to avoid wasting resources.",
			*cores.Used, int(*cores.Available))}
	}
	return nil
}

func exitAlert(job torque.Job) (string, bool) {
	if job.ExitStatus == nil {
		return "", false
	}
	status := strings.TrimSpace(*job.ExitStatus)
	if status == "0" {
		return "", false
	}
	return fmt.Sprintf("Alert: job stopped with non-zero exit code (%s).", status), true
}
