package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"myresources/internal/torque"
)

// Options controls how a report is rendered.
type Options struct {
	Color  bool
	Alerts bool
	CSV    bool
}

const headerFormat = "%12s %13s %13s %6s %31s %13s %1s %s"

// Header returns the two console header lines.
func Header() string {
	return fmt.Sprintf(headerFormat, "resource", "used", "requested", "usage", " ", "jobID", "S", "jobname") + "\n" +
		fmt.Sprintf(headerFormat, "--------", "----", "---------", "-----", " ", "-----", "-", "-------")
}

// UsageLines renders one line per resource of a computed job. The job id,
// state and name follow the first line.
func UsageLines(job torque.Job, color bool) string {
	lines := make([]string, 0, len(torque.Resources))
	for i, kind := range torque.Resources {
		res := job.Resource(kind)

		used := "-  "
		if res.Used != nil {
			used = fmt.Sprintf("%10.1f", *res.Used)
		}
		avail := "-  "
		if res.Available != nil {
			avail = formatAvailable(kind, *res.Available)
		}
		usage := "- "
		if res.Usage != nil {
			usage = fmt.Sprintf("%d%%", int(*res.Usage))
		}
		bar := RenderBar(res.Usage, RateResource(job, kind), DefaultBarLength, color)

		extra := ""
		if i == 0 {
			extra = fmt.Sprintf("%13s %s %s", job.ID, job.State, job.Name)
		}
		lines = append(lines, fmt.Sprintf("%12s %10s %2s %10s %2s %6s %s %s",
			kind.Label(), used, kind.Unit(), avail, kind.Unit(), usage, bar, extra))
	}
	return strings.Join(lines, "\n")
}

func formatAvailable(kind torque.ResourceKind, v float64) string {
	if kind == torque.Cores {
		return strconv.FormatFloat(v, 'f', -1, 64) + "  "
	}
	return fmt.Sprintf("%10.1f", v)
}

var csvColumns = []string{
	"jobID",
	"state",
	"jobname",
	"walltime_avail",
	"walltime_used",
	"mem_avail",
	"mem_used",
	"ncore_avail",
	"ncore_used",
}

// CSVHeader returns the CSV column line.
func CSVHeader() string {
	return strings.Join(csvColumns, ",")
}

// CSVRow renders a job as one CSV record without a trailing newline.
// Unknown values are empty fields.
func CSVRow(job torque.Job) string {
	record := []string{job.ID, job.State, job.Name}
	for _, kind := range torque.Resources {
		res := job.Resource(kind)
		record = append(record,
			csvNumber(res.Available, kind == torque.Cores),
			csvNumber(res.Used, false))
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(record)
	w.Flush()
	return strings.TrimRight(buf.String(), "\r\n")
}

// csvNumber keeps a ".0" on whole floats so counts and measurements stay
// distinguishable.
func csvNumber(v *float64, integral bool) string {
	if v == nil {
		return ""
	}
	s := strconv.FormatFloat(*v, 'f', -1, 64)
	if !integral && !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
