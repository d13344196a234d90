package torque

// ResourceKind identifies one of the resources a job is rated on.
type ResourceKind int

const (
	Walltime ResourceKind = iota
	Memory
	Cores
)

// Resources lists every kind in report order.
var Resources = []ResourceKind{Walltime, Memory, Cores}

// Levels are usage percentages bounding the ratings.
type Levels struct {
	Medium float64
	Good   float64
	Danger float64
}

type resourceInfo struct {
	name    string
	label   string
	unit    string
	forFree float64
	levels  Levels
}

// Memory for-free allowance is per requested core.
var resourceTable = [...]resourceInfo{
	Walltime: {name: "walltime", label: "walltime", unit: "h", forFree: 0.0, levels: Levels{Medium: 50, Good: 75, Danger: 99}},
	Memory:   {name: "mem", label: "memory", unit: "gb", forFree: 2.0, levels: Levels{Medium: 50, Good: 75, Danger: 95}},
	Cores:    {name: "ncore", label: "cores", unit: "", forFree: 0.0, levels: Levels{Medium: 70, Good: 85, Danger: 101}},
}

func (k ResourceKind) info() resourceInfo {
	if k < Walltime || k > Cores {
		return resourceInfo{name: "unknown", label: "unknown"}
	}
	return resourceTable[k]
}

// Name is the short identifier used in CSV column names.
func (k ResourceKind) Name() string { return k.info().name }

// Label is the resource name shown in the console report.
func (k ResourceKind) Label() string { return k.info().label }

// Unit is the display unit of available and used values.
func (k ResourceKind) Unit() string { return k.info().unit }

// ForFree is the amount of the resource counted as used for the rating.
func (k ResourceKind) ForFree() float64 { return k.info().forFree }

func (k ResourceKind) Levels() Levels { return k.info().levels }

func (k ResourceKind) String() string { return k.Name() }

// ResourceUsage holds one resource of a job. Nil fields are unknown.
type ResourceUsage struct {
	Available    *float64
	Used         *float64
	Usage        *float64
	UsageForFree *float64
}

// Job is the normalized view of one scheduler job.
type Job struct {
	ID    string
	Name  string
	State string
	Queue string

	ExitStatus *string
	NodeSpec   *string
	CPUTime    *float64

	Walltime ResourceUsage
	Memory   ResourceUsage
	Cores    ResourceUsage
}

// Resource returns the usage record of kind.
func (j *Job) Resource(kind ResourceKind) *ResourceUsage {
	switch kind {
	case Memory:
		return &j.Memory
	case Cores:
		return &j.Cores
	default:
		return &j.Walltime
	}
}

// Job states reported by qstat.
const (
	StateQueued    = "Q"
	StateHeld      = "H"
	StateRunning   = "R"
	StateExiting   = "E"
	StateCompleted = "C"
)

// States lists every job state in scheduler order.
var States = []string{StateQueued, StateHeld, StateRunning, StateExiting, StateCompleted}

// HasUsage reports whether the scheduler tracks used resources in state.
func HasUsage(state string) bool {
	return state == StateRunning || state == StateExiting || state == StateCompleted
}

// HasExited reports whether the job in state has an exit status.
func HasExited(state string) bool {
	return state == StateExiting || state == StateCompleted
}

// IsValidState reports whether s is one of States.
func IsValidState(s string) bool {
	for _, state := range States {
		if s == state {
			return true
		}
	}
	return false
}

func float(v float64) *float64 { return &v }

func text(v string) *string { return &v }
