package report

import (
	"errors"
	"fmt"
	"io"
	"syscall"

	"myresources/internal/torque"
)

// Writer prints a report of computed jobs in input order.
type Writer struct {
	out  io.Writer
	opts Options
	err  error
}

func NewWriter(out io.Writer, opts Options) *Writer {
	return &Writer{out: out, opts: opts}
}

// WriteReport writes the header and every job. A reader closing the output
// pipe early ends the report without an error.
func (w *Writer) WriteReport(jobs []torque.Job) error {
	if w.opts.CSV {
		w.println(CSVHeader())
		for _, job := range jobs {
			w.println(CSVRow(job))
		}
		return w.result()
	}

	w.println(Header())
	for _, job := range jobs {
		w.WriteJob(job)
	}
	return w.result()
}

// WriteJob writes the usage lines of one job, its alerts when enabled and a
// blank separator line.
func (w *Writer) WriteJob(job torque.Job) {
	w.println(UsageLines(job, w.opts.Color))
	if w.opts.Alerts {
		for _, alert := range Alerts(job) {
			w.println(alert)
		}
	}
	w.println("")
}

func (w *Writer) println(s string) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintln(w.out, s)
}

func (w *Writer) result() error {
	if w.err == nil || IsBrokenPipe(w.err) {
		return nil
	}
	return fmt.Errorf("write report: %w", w.err)
}

// IsBrokenPipe reports whether err comes from writing to a closed pipe.
func IsBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE)
}
