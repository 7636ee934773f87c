package rounding

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func fixedID(n byte) uuid.UUID {
	return uuid.UUID{15: n}
}

func TestNoteText(t *testing.T) {
	s, _ := newBlankAt("Jane Doe", []string{"DVT prophylaxis", "Family update"}, fixedNow)
	s.Room = "NICU-1"
	s.Diagnosis = "SAH"
	s.NeuroExam.GCSEye = Int(4)
	s.NeuroExam.GCSMotor = Int(6)
	s.NeuroExam.ICP = Float(0)
	s.Vitals = Vitals{MAP: Float(85), SpO2: Float(98.5)}
	_ = s.Checklist.Set("Family update", true)
	s.Problems = []Problem{{ID: fixedID(1), Title: "ICP", Plan: "- EVD"}}
	s.Tasks = []Task{
		{ID: fixedID(2), Text: "CT", Done: true, Due: DueAM},
		{ID: fixedID(3), Text: "Labs"},
	}

	want := strings.Join([]string{
		"NEURO ICU Rounds — 2026-03-14",
		"Jane Doe (Room NICU-1)",
		"Diagnosis: SAH",
		"",
		"One-liner: -",
		"",
		"Neuro Exam:",
		"  GCS: 10 (E4 V- M6)",
		"  Pupils: L 3mm +, R 3mm +",
		"  ICP: 0 mmHg, CPP: - mmHg",
		"",
		"Vitals / Support:",
		"  MAP: 85 | HR: - | SpO2: 98.5 | Vent: -",
		"",
		"Lines/Tubes: -",
		"Drips: -",
		"",
		"Labs:",
		"-",
		"",
		"Imaging:",
		"-",
		"",
		"Checklist:",
		"  [ ] DVT prophylaxis",
		"  [x] Family update",
		"",
		"Problem List / Plan:",
		"1. ICP",
		"   A: -",
		"   P: - EVD",
		"",
		"Tasks:",
		"  [x] CT (AM)",
		"  [ ] Labs",
	}, "\n")

	if got := NoteText(s); got != want {
		t.Errorf("note mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestNoteText_EmptyLists(t *testing.T) {
	s, _ := newBlankAt("Solo", nil, fixedNow)
	s.NeuroExam.Pupils = nil
	got := NoteText(s)

	if !strings.HasPrefix(got, "NEURO ICU Rounds — 2026-03-14\nSolo\n\n") {
		t.Errorf("unexpected header: %q", got[:40])
	}
	if !strings.Contains(got, "  GCS: - (E- V- M-)") {
		t.Error("expected dashed GCS line")
	}
	if strings.Contains(got, "Pupils:") || strings.Contains(got, "ICP:") {
		t.Error("absent pupils and ICP should be omitted")
	}
	if !strings.Contains(got, "Problem List / Plan:\n  -\n") {
		t.Error("expected dash for empty problem list")
	}
	if !strings.HasSuffix(got, "Tasks:\n  -") {
		t.Errorf("expected dash for empty task list, got %q", got[len(got)-20:])
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{
		85:    "85",
		37.2:  "37.2",
		0:     "0",
		-1.5:  "-1.5",
		100.0: "100",
	}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}
