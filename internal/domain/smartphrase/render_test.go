package smartphrase

import (
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/ehr/rounds/internal/domain/rounding"
)

var testClock = func() time.Time { return time.Date(2026, 1, 2, 7, 0, 0, 0, time.Local) }

func newSheet(t *testing.T, name string, checklist ...string) rounding.Sheet {
	t.Helper()
	s, err := rounding.NewBlank(name, checklist)
	if err != nil {
		t.Fatalf("NewBlank: %v", err)
	}
	s.DateISO = "2026-03-14"
	return *s
}

func newID(n byte) uuid.UUID {
	var id uuid.UUID
	id[15] = n
	return id
}

func render(body string, s rounding.Sheet) string {
	return NewEngine(WithClock(testClock)).Render(Template{Label: "test", Body: body}, s)
}

func TestValues_BlankSheet(t *testing.T) {
	s := newSheet(t, "Jane Roe", "A", "B")
	want := map[string]string{
		"@TODAY@":        "2026-03-14",
		"@NAME@":         "Jane Roe",
		"@ROOM@":         "",
		"@DIAGNOSIS@":    "",
		"@DAY_OF_ADMIT@": "",
		"@ONELINER@":     "-",
		"@INTERVAL@":     "-",
		"@GCS@":          "-",
		"@GCS_E@":        "-",
		"@GCS_V@":        "-",
		"@GCS_M@":        "-",
		"@PUPILS@":       "L 3mm reactive, R 3mm reactive",
		"@CN@":           "grossly intact",
		"@MOTOR@":        "-",
		"@SEDATION@":     "-",
		"@SEIZURES@":     "none",
		"@ICP@":          "-",
		"@CPP@":          "-",
		"@EVD@":          "-",
		"@ICP_CPP@":      "",
		"@MAP@":          "-",
		"@HR@":           "-",
		"@SPO2@":         "-",
		"@TEMP@":         "-",
		"@RR@":           "-",
		"@FIO2@":         "-",
		"@PEEP@":         "-",
		"@VENT@":         "-",
		"@DRIPS@":        "-",
		"@LINES@":        "-",
		"@LABS@":         "-",
		"@IMAGING@":      "-",
		"@CHECKLIST@":    "[ ] A\n[ ] B",
		"@AP@":           "-",
		"@TASKS@":        "-",
		"@GOALS@":        "-",
	}
	got := NewEngine(WithClock(testClock)).Values(s)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token values mismatch (-want +got):\n%s", diff)
	}
}

func TestValues_FilledSheet(t *testing.T) {
	s := newSheet(t, "John Smith", "DVT prophylaxis", "Family update")
	s.Room = "NICU-4"
	s.Diagnosis = "SAH"
	s.DayOfAdmit = rounding.Int(5)
	s.OneLiner = "POD5 clipping"
	s.NeuroExam = rounding.NeuroExam{
		GCSEye: rounding.Int(3), GCSVerbal: rounding.Int(4), GCSMotor: rounding.Int(6),
		Pupils: &rounding.Pupils{
			Left:  rounding.Pupil{Size: 3, Reactive: true},
			Right: rounding.Pupil{Size: 4, Reactive: false},
		},
		CranialNerves: "R facial droop",
		MotorExam:     "Full strength",
		Sedation:      "RASS 0",
		Seizures:      "No clinical seizures",
		ICP:           rounding.Float(0),
		EVDDrain:      "Open at 15cm",
	}
	s.Vitals = rounding.Vitals{
		MAP: rounding.Float(85), HR: rounding.Float(72), SpO2: rounding.Float(98),
		Temp: rounding.Float(37.2), RR: rounding.Float(16),
		FiO2: rounding.Float(40), PEEP: rounding.Float(0), Vent: "AC/VC",
	}
	s.Drips = "Nimodipine"
	s.LinesTubes = "EVD, A-line"
	s.Labs = "Na 141"
	s.Imaging = "CTA stable"
	_ = s.Checklist.Set("DVT prophylaxis", true)
	s.Problems = []rounding.Problem{
		{ID: newID(1), Title: "SAH", Assessment: "  stable  "},
		{ID: newID(2), Title: "Hyponatremia", Plan: "- Na q6h\n- salt tabs"},
	}
	s.Tasks = []rounding.Task{
		{ID: newID(3), Text: "CT head", Done: true, Due: rounding.DueAM},
		{ID: newID(4), Text: "Call family"},
	}

	got := NewEngine(WithClock(testClock)).Values(s)
	want := map[string]string{
		"@ROOM@":         "(Room NICU-4)",
		"@DIAGNOSIS@":    "SAH",
		"@DAY_OF_ADMIT@": "HD#5",
		"@ONELINER@":     "POD5 clipping",
		"@GCS@":          "13",
		"@GCS_E@":        "3",
		"@GCS_V@":        "4",
		"@GCS_M@":        "6",
		"@PUPILS@":       "L 3mm reactive, R 4mm non-reactive",
		"@CN@":           "R facial droop",
		"@SEIZURES@":     "No clinical seizures",
		"@ICP@":          "0",
		"@CPP@":          "-",
		"@EVD@":          "Open at 15cm",
		"@ICP_CPP@":      "- ICP: 0 mmHg  CPP: - mmHg\n- EVD: Open at 15cm",
		"@TEMP@":         "37.2",
		"@FIO2@":         "40%",
		"@PEEP@":         "0",
		"@VENT@":         "AC/VC",
		"@LINES@":        "EVD, A-line",
		"@CHECKLIST@":    "[x] DVT prophylaxis\n[ ] Family update",
		"@AP@":           "1) SAH\nA: stable\nP: -\n\n2) Hyponatremia\nA: -\nP: - Na q6h\n- salt tabs",
		"@TASKS@":        "- [x] CT head (AM)\n- [ ] Call family",
	}
	for token, value := range want {
		if got[token] != value {
			t.Errorf("%s = %q, want %q", token, got[token], value)
		}
	}
}

func TestValues_CoversCatalog(t *testing.T) {
	got := NewEngine().Values(newSheet(t, "X"))
	if len(got) != len(Tokens()) || len(got) != 36 {
		t.Fatalf("expected 36 tokens, got %d values for %d tokens", len(got), len(Tokens()))
	}
	for _, name := range Tokens() {
		if _, ok := got[name]; !ok {
			t.Errorf("no value for %s", name)
		}
	}
}

func TestRender_GCS(t *testing.T) {
	tests := []struct {
		name string
		exam rounding.NeuroExam
		want string
	}{
		{"all components", rounding.NeuroExam{GCSEye: rounding.Int(4), GCSVerbal: rounding.Int(5), GCSMotor: rounding.Int(6)}, "15"},
		{"none", rounding.NeuroExam{}, "-"},
		{"partial sum reported", rounding.NeuroExam{GCSEye: rounding.Int(2), GCSMotor: rounding.Int(4)}, "6"},
		{"explicit total wins", rounding.NeuroExam{GCSTotal: rounding.Int(9), GCSEye: rounding.Int(4)}, "9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSheet(t, "X")
			s.NeuroExam = tt.exam
			if got := render("@GCS@", s); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_ICPBlock(t *testing.T) {
	tests := []struct {
		name string
		exam rounding.NeuroExam
		want string
	}{
		{"nothing", rounding.NeuroExam{}, ""},
		{"cpp only", rounding.NeuroExam{CPP: rounding.Float(65)}, "- ICP: - mmHg  CPP: 65 mmHg"},
		{"evd only", rounding.NeuroExam{EVDDrain: "clamped"}, "- EVD: clamped"},
		{"both", rounding.NeuroExam{ICP: rounding.Float(12), CPP: rounding.Float(72.5)}, "- ICP: 12 mmHg  CPP: 72.5 mmHg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSheet(t, "X")
			s.NeuroExam = tt.exam
			if got := render("@ICP_CPP@", s); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_ChecklistRoundTrip(t *testing.T) {
	s := newSheet(t, "X", "A", "B")
	_ = s.Checklist.Set("A", true)
	if got := render("@CHECKLIST@", s); got != "[x] A\n[ ] B" {
		t.Errorf("got %q", got)
	}
}

func TestRender_EmptyStateDefaults(t *testing.T) {
	s := newSheet(t, "X", rounding.DefaultChecklist...)
	if got := render("@AP@\n@TASKS@", s); got != "-\n-" {
		t.Errorf("got %q, want %q", got, "-\n-")
	}
}

func TestRender_PupilFormatting(t *testing.T) {
	s := newSheet(t, "X")
	s.NeuroExam.Pupils = &rounding.Pupils{
		Left:  rounding.Pupil{Size: 3, Reactive: true},
		Right: rounding.Pupil{Size: 4, Reactive: false},
	}
	if got := render("@PUPILS@", s); got != "L 3mm reactive, R 4mm non-reactive" {
		t.Errorf("got %q", got)
	}
	s.NeuroExam.Pupils = nil
	if got := render("@PUPILS@", s); got != "-" {
		t.Errorf("absent pupils: got %q", got)
	}
}

func TestRender_EndToEnd(t *testing.T) {
	s := newSheet(t, "J. Doe")
	s.Room = "4B"
	s.NeuroExam.GCSEye = rounding.Int(3)
	s.NeuroExam.GCSVerbal = rounding.Int(4)
	s.NeuroExam.GCSMotor = rounding.Int(5)
	if got := render("@NAME@ @ROOM@: GCS @GCS@", s); got != "J. Doe (Room 4B): GCS 12" {
		t.Errorf("got %q", got)
	}
}

func TestRender_UnknownTokenPassthrough(t *testing.T) {
	s := newSheet(t, "X")
	got := render("@FOO@ @name@ @NAME @NAME@@ROOM@", s)
	if got != "@FOO@ @name@ @NAME X" {
		t.Errorf("got %q", got)
	}
}

func TestRender_RepeatedAndAdjacentTokens(t *testing.T) {
	s := newSheet(t, "X")
	s.Room = "2"
	if got := render("@NAME@@NAME@ @ROOM@ @NAME@", s); got != "XX (Room 2) X" {
		t.Errorf("got %q", got)
	}
}

func TestRender_OrderIndependence(t *testing.T) {
	s := newSheet(t, "Ada")
	s.Vitals.MAP = rounding.Float(70)
	s.Vitals.HR = rounding.Float(101)
	a := render("@MAP@|@HR@|@NAME@", s)
	b := render("@NAME@|@HR@|@MAP@", s)
	if a != "70|101|Ada" || b != "Ada|101|70" {
		t.Errorf("got %q and %q", a, b)
	}
}

func TestRender_TodayFallsBackToClock(t *testing.T) {
	s := newSheet(t, "X")
	s.DateISO = ""
	if got := render("@TODAY@", s); got != "2026-01-02" {
		t.Errorf("got %q", got)
	}
}

func TestRender_DoesNotMutateSheet(t *testing.T) {
	s := newSheet(t, "X", "A")
	s.Problems = []rounding.Problem{{ID: newID(1), Title: "T", Assessment: "  padded  "}}
	render("@AP@ @CHECKLIST@", s)
	if s.Problems[0].Assessment != "  padded  " {
		t.Error("render modified the sheet")
	}
	if checked, _ := s.Checklist.Get("A"); checked {
		t.Error("render modified the checklist")
	}
}

func TestRender_Concurrent(t *testing.T) {
	sheet := *rounding.DemoSheets(testClock())[0]
	tmpl := Template{Body: "@NAME@ @GCS@ @AP@"}
	want := Render(tmpl, sheet)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := Render(tmpl, sheet); got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		}()
	}
	wg.Wait()
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a\r\nb", "a\nb"},
		{"a\n\n\n\nb", "a\n\nb"},
		{"a\n\n\nb\n\n\n\n\nc", "a\n\nb\n\nc"},
		{"a\r\n\r\n\r\nb", "a\n\nb"},
		{"  \n\nbody\n\n  ", "body"},
		{"a\n\nb", "a\n\nb"},
		{"a\r\r\nb", "a\nb"},
	}
	for _, tt := range tests {
		got := Normalize(tt.in)
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if again := Normalize(got); again != got {
			t.Errorf("Normalize not idempotent on %q: %q", tt.in, again)
		}
	}
}

func TestRender_CollapsesBlankLinesLeftByEmptyTokens(t *testing.T) {
	s := newSheet(t, "X")
	got := render("Exam:\n@ICP_CPP@\n\n\nPlan:\n@AP@", s)
	if got != "Exam:\n\nPlan:\n-" {
		t.Errorf("got %q", got)
	}
}

var tokenLike = regexp.MustCompile(`@[A-Z0-9_]+@`)

func TestBuiltinTemplates_UseOnlyCatalogTokens(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	known := map[string]bool{}
	for _, name := range Tokens() {
		known[name] = true
	}
	sheet := *rounding.DemoSheets(testClock())[0]
	for _, tmpl := range c.List() {
		for _, tok := range tokenLike.FindAllString(tmpl.Body, -1) {
			if !known[tok] {
				t.Errorf("%s uses unknown token %s", tmpl.ID, tok)
			}
		}
		if out := Render(tmpl, sheet); tokenLike.MatchString(out) {
			t.Errorf("%s left a token unrendered: %s", tmpl.ID, tokenLike.FindString(out))
		}
	}
}

func TestRender_DailyTemplateWithDemoSheet(t *testing.T) {
	c, _ := Builtin()
	tmpl, err := c.Get("neuroicu-daily")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	out := NewEngine(WithClock(testClock)).Render(tmpl, *rounding.DemoSheets(testClock())[0])

	for _, want := range []string{
		"*** NEURO ICU PROGRESS NOTE ***\nDate: 2026-01-02\nPatient: James Wilson (Room NICU-4)",
		"SAH - ruptured MCA aneurysm | HD#5",
		"- GCS: 15 (E4 V5 M6)",
		"- Seizure Activity: none\n- ICP: 12 mmHg  CPP: 72 mmHg\n- EVD: Set at 15cm, draining clear CSF\n\nVitals/Support:",
		"- SpO2: 98 on FiO2: -",
		"- Vent: 2L NC",
		"1) SAH - Hunt Hess 2, Fisher 3\nA: POD5, bleed day 5, peak vasospasm window\nP: - Continue nimodipine",
		"Family/Goals:\n-",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.HasSuffix(out, "\n") || strings.HasPrefix(out, "\n") {
		t.Error("output not trimmed")
	}
}
