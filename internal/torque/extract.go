package torque

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Fields gives access to the decoded elements of one job entry. Paths join
// nested element names with a dot, e.g. "Resource_List.mem".
type Fields interface {
	// Field returns the text of the element at path. ok is false when the
	// element is missing or has no text.
	Field(path string) (value string, ok bool)
	// Section reports whether an element exists at path.
	Section(path string) bool
}

// FieldMap is a Fields backed by a flat map. Sections are stored with an
// empty value.
type FieldMap map[string]string

func (m FieldMap) Field(path string) (string, bool) {
	v, ok := m[path]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (m FieldMap) Section(path string) bool {
	_, ok := m[path]
	return ok
}

const singleCoreQueue = "single_core"

var jobIDRe = regexp.MustCompile(`^[0-9]*(\[[0-9]*\])?`)

func optional(f Fields, path string) *string {
	v, ok := f.Field(path)
	if !ok {
		return nil
	}
	return &v
}

// ExtractJob builds a Job from one job entry. Usage percentages are left
// unset; see ComputeUsage.
func ExtractJob(f Fields) (Job, error) {
	rawID, ok := f.Field("Job_Id")
	if !ok {
		return Job{}, fmt.Errorf("job entry without Job_Id: %w", ErrUnreadableDocument)
	}
	job := Job{ID: shortJobID(rawID)}
	job.Name, _ = f.Field("Job_Name")
	job.State, _ = f.Field("job_state")
	job.Queue, _ = f.Field("queue")

	if HasExited(job.State) {
		job.ExitStatus = optional(f, "exit_status")
	}

	var err error
	if f.Section("Resource_List") {
		if job.Memory.Available, err = ConvertMemory(optional(f, "Resource_List.mem")); err != nil {
			return Job{}, jobError(job.ID, err)
		}
		if job.Walltime.Available, err = ConvertTime(optional(f, "Resource_List.walltime")); err != nil {
			return Job{}, jobError(job.ID, err)
		}
		job.NodeSpec = optional(f, "Resource_List.nodes")
	}

	if HasUsage(job.State) && f.Section("resources_used") {
		if job.Memory.Used, err = ConvertMemory(optional(f, "resources_used.mem")); err != nil {
			return Job{}, jobError(job.ID, err)
		}
		if job.Walltime.Used, err = ConvertTime(optional(f, "resources_used.walltime")); err != nil {
			return Job{}, jobError(job.ID, err)
		}
		if job.CPUTime, err = ConvertTime(optional(f, "resources_used.cput")); err != nil {
			return Job{}, jobError(job.ID, err)
		}
	}

	cores := 1
	if job.Queue != singleCoreQueue && job.NodeSpec != nil {
		if cores, err = ParseNodeSpec(*job.NodeSpec); err != nil {
			return Job{}, jobError(job.ID, err)
		}
	}
	job.Cores.Available = float(float64(cores))

	if HasUsage(job.State) && job.CPUTime != nil && job.Walltime.Used != nil && *job.Walltime.Used != 0 {
		job.Cores.Used = float(*job.CPUTime / *job.Walltime.Used)
	}

	return job, nil
}

func jobError(id string, err error) error {
	return fmt.Errorf("job %s: %w", id, err)
}

// shortJobID keeps the numeric id and an optional array index,
// "1234[5].master.cluster" becomes "1234[5]".
func shortJobID(raw string) string {
	return jobIDRe.FindString(strings.TrimSpace(raw))
}

// ParseNodeSpec counts the cores requested by a torque node specification.
// Accepted segments, joined with '+':
//
//	1:ppn=8   nic66:ppn=5   1:ppn=8:enc8   1:4   1
//
// A first token that is not an integer is a host name and counts as one node.
func ParseNodeSpec(spec string) (int, error) {
	total := 0
	for _, segment := range strings.Split(spec, "+") {
		tokens := strings.Split(strings.TrimSpace(segment), ":")
		node := tokens[0]
		if node == "" {
			return 0, &MalformedNodeSpecError{Spec: spec, Segment: segment, Reason: "empty node token"}
		}

		nodes, err := strconv.Atoi(node)
		if err != nil {
			nodes = 1
		}
		if nodes < 1 {
			return 0, &MalformedNodeSpecError{Spec: spec, Segment: segment, Reason: "node count must be positive"}
		}

		core := "1"
		if len(tokens) > 1 {
			core = strings.TrimPrefix(tokens[1], "ppn=")
		}
		ppn, err := strconv.Atoi(core)
		if err != nil {
			return 0, &MalformedNodeSpecError{Spec: spec, Segment: segment, Reason: fmt.Sprintf("core count %q is not an integer", tokens[1])}
		}
		if ppn < 1 {
			return 0, &MalformedNodeSpecError{Spec: spec, Segment: segment, Reason: "core count must be positive"}
		}
		total += nodes * ppn
	}
	return total, nil
}
