package torque

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/c2h5oh/datasize"
)

var memUnits = map[string]datasize.ByteSize{
	"b":  datasize.B,
	"kb": datasize.KB,
	"mb": datasize.MB,
	"gb": datasize.GB,
	"tb": datasize.TB,
}

var timeUnits = map[string]float64{
	"s": 1,
	"m": 60,
	"h": 3600,
	"d": 3600 * 24,
}

// MinObservedWalltime is the walltime in hours a job must have used before
// its core usage is rated.
const MinObservedWalltime = 1.0 / 12

var (
	memValueRe  = regexp.MustCompile(`^(\d+)(.*)$`)
	timeTokenRe = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// SupportedMemoryUnits returns the accepted memory suffixes, smallest first.
func SupportedMemoryUnits() []string {
	out := make([]string, 0, len(memUnits))
	for unit := range memUnits {
		out = append(out, unit)
	}
	sort.Slice(out, func(i, j int) bool { return memUnits[out[i]] < memUnits[out[j]] })
	return out
}

// ConvertMemory turns a torque memory string such as "4096mb" into a value
// in the memory display unit. A nil input is passed through.
func ConvertMemory(raw *string) (*float64, error) {
	if raw == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*raw)
	m := memValueRe.FindStringSubmatch(s)
	if m == nil {
		return nil, &UnsupportedUnitError{Value: s, Unit: s, Supported: SupportedMemoryUnits()}
	}
	unit := strings.ToLower(m[2])
	if _, ok := memUnits[unit]; !ok {
		return nil, &UnsupportedUnitError{Value: s, Unit: unit, Supported: SupportedMemoryUnits()}
	}
	// datasize reads a capitalised "Mb" as bits, so hand it the lowered suffix.
	size, err := datasize.ParseString(m[1] + unit)
	if err != nil {
		return nil, &UnsupportedUnitError{Value: s, Unit: unit, Supported: SupportedMemoryUnits()}
	}
	display := memUnits[Memory.Unit()]
	return float(float64(size.Bytes()) / float64(display)), nil
}

// ConvertTime turns a torque duration "hh:mm:ss" into a value in the
// walltime display unit. A nil input is passed through.
func ConvertTime(raw *string) (*float64, error) {
	if raw == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*raw)
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, &MalformedDurationError{Value: s}
	}
	var hms [3]float64
	for i, part := range parts {
		if !timeTokenRe.MatchString(part) {
			return nil, &MalformedDurationError{Value: s}
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || math.IsInf(v, 0) {
			return nil, &MalformedDurationError{Value: s}
		}
		hms[i] = v
	}
	seconds := hms[0]*timeUnits["h"] + hms[1]*timeUnits["m"] + hms[2]*timeUnits["s"]
	return float(seconds / timeUnits[Walltime.Unit()]), nil
}
