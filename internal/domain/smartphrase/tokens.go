package smartphrase

import (
	"strconv"
	"strings"
	"time"

	"github.com/ehr/rounds/internal/domain/rounding"
)

// Placeholder is substituted for any value that has not been documented.
const Placeholder = "-"

// extractor derives one token value from a sheet snapshot. now is only
// consulted when the sheet carries no date of its own.
type extractor func(s *rounding.Sheet, now time.Time) string

type token struct {
	name  string
	value extractor
}

// catalog is the closed token set, in the order templates usually use them.
// Adding a token means adding a row here; the substitution pass never changes.
var catalog = []token{
	{"@TODAY@", func(s *rounding.Sheet, now time.Time) string {
		if s.DateISO != "" {
			return s.DateISO
		}
		return now.Format(rounding.DateLayout)
	}},
	{"@NAME@", func(s *rounding.Sheet, _ time.Time) string { return s.PatientName }},
	{"@ROOM@", func(s *rounding.Sheet, _ time.Time) string {
		if s.Room == "" {
			return ""
		}
		return "(Room " + s.Room + ")"
	}},
	{"@DIAGNOSIS@", func(s *rounding.Sheet, _ time.Time) string { return s.Diagnosis }},
	{"@DAY_OF_ADMIT@", func(s *rounding.Sheet, _ time.Time) string {
		if s.DayOfAdmit == nil {
			return ""
		}
		return "HD#" + strconv.Itoa(*s.DayOfAdmit)
	}},
	{"@ONELINER@", text(func(s *rounding.Sheet) string { return s.OneLiner }, Placeholder)},
	{"@INTERVAL@", reserved},

	{"@GCS@", func(s *rounding.Sheet, _ time.Time) string { return gcsTotal(s.NeuroExam) }},
	{"@GCS_E@", integer(func(s *rounding.Sheet) *int { return s.NeuroExam.GCSEye })},
	{"@GCS_V@", integer(func(s *rounding.Sheet) *int { return s.NeuroExam.GCSVerbal })},
	{"@GCS_M@", integer(func(s *rounding.Sheet) *int { return s.NeuroExam.GCSMotor })},
	{"@PUPILS@", func(s *rounding.Sheet, _ time.Time) string { return formatPupils(s.NeuroExam.Pupils) }},
	{"@CN@", text(func(s *rounding.Sheet) string { return s.NeuroExam.CranialNerves }, "grossly intact")},
	{"@MOTOR@", text(func(s *rounding.Sheet) string { return s.NeuroExam.MotorExam }, Placeholder)},
	{"@SEDATION@", text(func(s *rounding.Sheet) string { return s.NeuroExam.Sedation }, Placeholder)},
	{"@SEIZURES@", text(func(s *rounding.Sheet) string { return s.NeuroExam.Seizures }, "none")},
	{"@ICP@", number(func(s *rounding.Sheet) *float64 { return s.NeuroExam.ICP })},
	{"@CPP@", number(func(s *rounding.Sheet) *float64 { return s.NeuroExam.CPP })},
	{"@EVD@", text(func(s *rounding.Sheet) string { return s.NeuroExam.EVDDrain }, Placeholder)},
	{"@ICP_CPP@", func(s *rounding.Sheet, _ time.Time) string { return formatICPBlock(s.NeuroExam) }},

	{"@MAP@", number(func(s *rounding.Sheet) *float64 { return s.Vitals.MAP })},
	{"@HR@", number(func(s *rounding.Sheet) *float64 { return s.Vitals.HR })},
	{"@SPO2@", number(func(s *rounding.Sheet) *float64 { return s.Vitals.SpO2 })},
	{"@TEMP@", number(func(s *rounding.Sheet) *float64 { return s.Vitals.Temp })},
	{"@RR@", number(func(s *rounding.Sheet) *float64 { return s.Vitals.RR })},
	{"@FIO2@", func(s *rounding.Sheet, _ time.Time) string {
		if s.Vitals.FiO2 == nil {
			return Placeholder
		}
		return rounding.FormatNumber(*s.Vitals.FiO2) + "%"
	}},
	{"@PEEP@", number(func(s *rounding.Sheet) *float64 { return s.Vitals.PEEP })},
	{"@VENT@", text(func(s *rounding.Sheet) string { return s.Vitals.Vent }, Placeholder)},

	{"@DRIPS@", text(func(s *rounding.Sheet) string { return s.Drips }, Placeholder)},
	{"@LINES@", text(func(s *rounding.Sheet) string { return s.LinesTubes }, Placeholder)},
	{"@LABS@", text(func(s *rounding.Sheet) string { return s.Labs }, Placeholder)},
	{"@IMAGING@", text(func(s *rounding.Sheet) string { return s.Imaging }, Placeholder)},

	{"@CHECKLIST@", func(s *rounding.Sheet, _ time.Time) string { return formatChecklist(s.Checklist) }},
	{"@AP@", func(s *rounding.Sheet, _ time.Time) string { return formatProblems(s.Problems) }},
	{"@TASKS@", func(s *rounding.Sheet, _ time.Time) string { return formatTasks(s.Tasks) }},
	{"@GOALS@", reserved},
}

// Tokens returns the catalog token names in catalog order.
func Tokens() []string {
	out := make([]string, len(catalog))
	for i, t := range catalog {
		out[i] = t.name
	}
	return out
}

// reserved tokens have no data source yet and always render as a dash.
func reserved(*rounding.Sheet, time.Time) string { return Placeholder }

func text(field func(*rounding.Sheet) string, fallback string) extractor {
	return func(s *rounding.Sheet, _ time.Time) string {
		if v := field(s); v != "" {
			return v
		}
		return fallback
	}
}

func integer(field func(*rounding.Sheet) *int) extractor {
	return func(s *rounding.Sheet, _ time.Time) string {
		if v := field(s); v != nil {
			return strconv.Itoa(*v)
		}
		return Placeholder
	}
}

func number(field func(*rounding.Sheet) *float64) extractor {
	return func(s *rounding.Sheet, _ time.Time) string {
		if v := field(s); v != nil {
			return rounding.FormatNumber(*v)
		}
		return Placeholder
	}
}

// gcsTotal prefers an explicit total, then the sum of whichever components
// are present, then a dash. A partial sum is reported as-is.
func gcsTotal(n rounding.NeuroExam) string {
	if n.GCSTotal != nil {
		return strconv.Itoa(*n.GCSTotal)
	}
	sum := 0
	for _, c := range []*int{n.GCSEye, n.GCSVerbal, n.GCSMotor} {
		if c != nil {
			sum += *c
		}
	}
	if sum > 0 {
		return strconv.Itoa(sum)
	}
	return Placeholder
}

func formatPupils(p *rounding.Pupils) string {
	if p == nil {
		return Placeholder
	}
	return "L " + formatPupil(p.Left) + ", R " + formatPupil(p.Right)
}

func formatPupil(p rounding.Pupil) string {
	reactivity := "non-reactive"
	if p.Reactive {
		reactivity = "reactive"
	}
	return strconv.Itoa(p.Size) + "mm " + reactivity
}

func formatICPBlock(n rounding.NeuroExam) string {
	var lines []string
	if n.ICP != nil || n.CPP != nil {
		lines = append(lines, "- ICP: "+orDash(n.ICP)+" mmHg  CPP: "+orDash(n.CPP)+" mmHg")
	}
	if n.EVDDrain != "" {
		lines = append(lines, "- EVD: "+n.EVDDrain)
	}
	return strings.Join(lines, "\n")
}

func orDash(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return rounding.FormatNumber(*v)
}

func formatChecklist(c rounding.Checklist) string {
	items := c.Items()
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = checkbox(it.Checked) + " " + it.Label
	}
	return strings.Join(lines, "\n")
}

func formatProblems(problems []rounding.Problem) string {
	if len(problems) == 0 {
		return Placeholder
	}
	blocks := make([]string, len(problems))
	for i, p := range problems {
		blocks[i] = strconv.Itoa(i+1) + ") " + p.Title +
			"\nA: " + trimmedOrDash(p.Assessment) +
			"\nP: " + trimmedOrDash(p.Plan)
	}
	return strings.Join(blocks, "\n\n")
}

func formatTasks(tasks []rounding.Task) string {
	if len(tasks) == 0 {
		return Placeholder
	}
	lines := make([]string, len(tasks))
	for i, t := range tasks {
		line := "- " + checkbox(t.Done) + " " + t.Text
		if t.Due != "" {
			line += " (" + string(t.Due) + ")"
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func trimmedOrDash(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return Placeholder
	}
	return s
}
