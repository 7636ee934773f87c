package rounding

import (
	"strconv"
	"strings"
)

// NoteText formats the plain rounding note: a fixed layout that interpolates
// the sheet fields directly, without template tokens.
func NoteText(s *Sheet) string {
	var b strings.Builder
	line := func(parts ...string) {
		for _, p := range parts {
			b.WriteString(p)
		}
		b.WriteByte('\n')
	}

	line("NEURO ICU Rounds — ", s.DateISO)
	if s.Room != "" {
		line(s.PatientName, " (Room ", s.Room, ")")
	} else {
		line(s.PatientName)
	}
	if s.Diagnosis != "" {
		line("Diagnosis: ", s.Diagnosis)
	}
	line()
	line("One-liner: ", orDash(s.OneLiner))
	line()

	ne := s.NeuroExam
	gcs := intOr0(ne.GCSEye) + intOr0(ne.GCSVerbal) + intOr0(ne.GCSMotor)
	gcsText := "-"
	if gcs != 0 {
		gcsText = strconv.Itoa(gcs)
	}
	line("Neuro Exam:")
	line("  GCS: ", gcsText, " (E", intOrDash(ne.GCSEye), " V", intOrDash(ne.GCSVerbal), " M", intOrDash(ne.GCSMotor), ")")
	if p := ne.Pupils; p != nil {
		line("  Pupils: L ", strconv.Itoa(p.Left.Size), "mm ", plusMinus(p.Left.Reactive),
			", R ", strconv.Itoa(p.Right.Size), "mm ", plusMinus(p.Right.Reactive))
	}
	if ne.MotorExam != "" {
		line("  Motor: ", ne.MotorExam)
	}
	if ne.Sedation != "" {
		line("  RASS: ", ne.Sedation)
	}
	if ne.ICP != nil {
		line("  ICP: ", FormatNumber(*ne.ICP), " mmHg, CPP: ", floatOrDash(ne.CPP), " mmHg")
	}
	line()

	v := s.Vitals
	line("Vitals / Support:")
	line("  MAP: ", floatOrDash(v.MAP), " | HR: ", floatOrDash(v.HR), " | SpO2: ", floatOrDash(v.SpO2), " | Vent: ", orDash(v.Vent))
	line()
	line("Lines/Tubes: ", orDash(s.LinesTubes))
	line("Drips: ", orDash(s.Drips))
	line()
	line("Labs:")
	line(orDash(s.Labs))
	line()
	line("Imaging:")
	line(orDash(s.Imaging))
	line()
	line("Checklist:")
	for _, it := range s.Checklist.Items() {
		line("  [", checkMark(it.Checked), "] ", it.Label)
	}
	line()
	line("Problem List / Plan:")
	if len(s.Problems) == 0 {
		line("  -")
	}
	for i, p := range s.Problems {
		line(strconv.Itoa(i+1), ". ", p.Title)
		line("   A: ", orDash(p.Assessment))
		line("   P: ", orDash(p.Plan))
	}
	line()
	b.WriteString("Tasks:")
	if len(s.Tasks) == 0 {
		b.WriteString("\n  -")
	}
	for _, t := range s.Tasks {
		b.WriteString("\n  [" + checkMark(t.Done) + "] " + t.Text)
		if t.Due != "" {
			b.WriteString(" (" + string(t.Due) + ")")
		}
	}
	return b.String()
}

// FormatNumber renders an observation in its shortest decimal form
// (85, 37.2).
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func intOr0(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func intOrDash(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

func floatOrDash(p *float64) string {
	if p == nil {
		return "-"
	}
	return FormatNumber(*p)
}

func checkMark(on bool) string {
	if on {
		return "x"
	}
	return " "
}

func plusMinus(on bool) string {
	if on {
		return "+"
	}
	return "-"
}
