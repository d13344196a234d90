package torque

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// A qstat -xt document is <Data> with one <Job> element per job entry.
// Jobs are decoded generically so unknown elements are kept as fields.
type xmlDocument struct {
	XMLName xml.Name
	Entries []xmlElement `xml:",any"`
}

type xmlElement struct {
	XMLName  xml.Name
	Text     string       `xml:",chardata"`
	Children []xmlElement `xml:",any"`
}

// DecodeDocument reads a qstat -xt XML document and returns one Fields per
// job entry in document order.
func DecodeDocument(r io.Reader) ([]Fields, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &UnreadableDocumentError{Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &UnreadableDocumentError{Err: err}
	}

	out := make([]Fields, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		fields := make(FieldMap)
		flatten(fields, "", entry.Children)
		out = append(out, fields)
	}
	return out, nil
}

func flatten(dst FieldMap, prefix string, elems []xmlElement) {
	for _, elem := range elems {
		path := elem.XMLName.Local
		if prefix != "" {
			path = prefix + "." + path
		}
		if len(elem.Children) > 0 {
			dst[path] = ""
			flatten(dst, path, elem.Children)
			continue
		}
		if _, seen := dst[path]; seen {
			continue
		}
		dst[path] = strings.TrimSpace(elem.Text)
	}
}

// ExtractJobs extracts every entry in order. The first malformed entry
// aborts extraction.
func ExtractJobs(entries []Fields) ([]Job, error) {
	jobs := make([]Job, 0, len(entries))
	for _, entry := range entries {
		job, err := ExtractJob(entry)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Filter selects jobs by id and state. Empty lists match everything.
type Filter struct {
	JobIDs []string
	States []string
}

func (f Filter) Match(job Job) bool {
	if len(f.JobIDs) > 0 && !contains(f.JobIDs, job.ID) {
		return false
	}
	if len(f.States) > 0 && !contains(f.States, job.State) {
		return false
	}
	return true
}

// Apply returns the matching jobs in input order.
func (f Filter) Apply(jobs []Job) []Job {
	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if f.Match(job) {
			out = append(out, job)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
