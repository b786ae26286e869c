// Package diagnostics carries analysis findings out of the engine.
// Findings are never Go errors: a Check that detects a defect reports
// it through a Sink and keeps analyzing, the same split the teacher
// draws between core.Diagnostic (something that failed the run) and
// core.PipelineResult (something the run found).
package diagnostics

// Severity classifies how serious a finding is.
type Severity int

const (
	SeverityStyle Severity = iota
	SeverityPerformance
	SeverityPortability
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityStyle:
		return "style"
	case SeverityPerformance:
		return "performance"
	case SeverityPortability:
		return "portability"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Certainty records whether a finding is definite or merely plausible
// given the approximations the engine makes.
type Certainty int

const (
	CertaintyNormal Certainty = iota
	CertaintyInconclusive
)

func (c Certainty) String() string {
	if c == CertaintyInconclusive {
		return "inconclusive"
	}
	return "normal"
}

// Location pins a finding to a source position.
type Location struct {
	File   string
	Line   int
	Column int
}

// PathStep is one (token-location, explanation) hop in a finding's
// error path — how a value got to be wrong, not just where it surfaced.
type PathStep struct {
	Location Location
	Message  string
}

// Diagnostic is a single reported finding.
type Diagnostic struct {
	ID        string // check identifier, e.g. "returnDanglingLifetime"
	Severity  Severity
	Certainty Certainty
	CWE       int
	Message   string
	Primary   Location
	ErrorPath []PathStep
}

// Sink collects diagnostics as checks run. It never fails a run by
// itself; Report simply appends.
type Sink struct {
	findings []Diagnostic
}

// NewSink returns an empty Sink.
func NewSink() *Sink { return &Sink{} }

// Report appends one finding.
func (s *Sink) Report(d Diagnostic) { s.findings = append(s.findings, d) }

// Findings returns every diagnostic reported so far, in report order.
func (s *Sink) Findings() []Diagnostic { return s.findings }

// Filter returns the subset of findings passing keep.
func (s *Sink) Filter(keep func(Diagnostic) bool) []Diagnostic {
	var out []Diagnostic
	for _, d := range s.findings {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// Stats summarizes a Sink's findings by severity, the shape the CLI
// prints after an analyze run.
type Stats struct {
	Error       int
	Warning     int
	Portability int
	Performance int
	Style       int
}

// Summarize tallies findings by severity.
func (s *Sink) Summarize() Stats {
	var st Stats
	for _, d := range s.findings {
		switch d.Severity {
		case SeverityError:
			st.Error++
		case SeverityWarning:
			st.Warning++
		case SeverityPortability:
			st.Portability++
		case SeverityPerformance:
			st.Performance++
		case SeverityStyle:
			st.Style++
		}
	}
	return st
}
