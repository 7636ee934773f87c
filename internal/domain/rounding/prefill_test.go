package rounding

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApplyDiagnosis_FillsEmptyFields(t *testing.T) {
	s, _ := newBlankAt("New SAH", DefaultChecklist, fixedNow)
	s.Room = "NICU-3"
	s.DayOfAdmit = Int(4)

	if err := s.ApplyDiagnosis(DiagnosisSAH); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.DiagnosisType != DiagnosisSAH {
		t.Errorf("expected sah, got %q", s.DiagnosisType)
	}
	if s.Diagnosis != "Subarachnoid hemorrhage" {
		t.Errorf("unexpected diagnosis %q", s.Diagnosis)
	}
	if s.OneLiner != "SAH HD 4 s/p securing, in vasospasm window" {
		t.Errorf("unexpected one-liner %q", s.OneLiner)
	}
	if len(s.Problems) != 2 || len(s.Tasks) != 3 {
		t.Fatalf("expected 2 problems and 3 tasks, got %d and %d", len(s.Problems), len(s.Tasks))
	}
	for _, task := range s.Tasks {
		if task.Due != DueToday {
			t.Errorf("%q: expected due Today, got %q", task.Text, task.Due)
		}
	}
	if s.Drips != "Nimodipine q4h, maintenance IVF" {
		t.Errorf("unexpected drips %q", s.Drips)
	}
	for _, label := range []string{"HOB >30°", "Neuro exam documented"} {
		if checked, _ := s.Checklist.Get(label); !checked {
			t.Errorf("expected %q checked", label)
		}
	}
	if err := s.Validate(); err != nil {
		t.Errorf("prefilled sheet should validate: %v", err)
	}
}

func TestApplyDiagnosis_KeepsExistingContent(t *testing.T) {
	s, _ := newBlankAt("Existing", []string{"Family update"}, fixedNow)
	s.Diagnosis = "Cardioembolic stroke"
	s.OneLiner = "Already written"
	s.Problems = []Problem{{ID: fixedID(1), Title: "Mine"}}
	s.Drips = "None"

	if err := s.ApplyDiagnosis(DiagnosisStroke); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Diagnosis != "Cardioembolic stroke" || s.OneLiner != "Already written" || s.Drips != "None" {
		t.Errorf("filled fields were overwritten: %+v", s)
	}
	if diff := cmp.Diff([]Problem{{ID: fixedID(1), Title: "Mine"}}, s.Problems); diff != "" {
		t.Errorf("problems changed (-want +got):\n%s", diff)
	}
	if len(s.Tasks) != 3 {
		t.Errorf("expected default tasks on empty list, got %d", len(s.Tasks))
	}
	if s.LinesTubes != "ETT, OGT, Foley, A-line" {
		t.Errorf("unexpected lines %q", s.LinesTubes)
	}
	if checked, _ := s.Checklist.Get("Family update"); !checked {
		t.Error("expected Family update checked")
	}
	if s.Checklist.Len() != 1 {
		t.Errorf("prefill added checklist keys: %v", s.Checklist.Labels())
	}
}

func TestApplyDiagnosis_PlaceholderFallbacks(t *testing.T) {
	s, _ := newBlankAt("No Room", DefaultChecklist, fixedNow)
	if err := s.ApplyDiagnosis(DiagnosisTBI); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.OneLiner != "Severe TBI HD 1, ICP guided therapy" {
		t.Errorf("unexpected one-liner %q", s.OneLiner)
	}
}

func TestApplyDiagnosis_TagOnly(t *testing.T) {
	s, _ := newBlankAt("Spine", DefaultChecklist, fixedNow)
	if err := s.ApplyDiagnosis(DiagnosisSpine); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.DiagnosisType != DiagnosisSpine {
		t.Errorf("expected spine, got %q", s.DiagnosisType)
	}
	if s.Diagnosis != "" || len(s.Problems) != 0 {
		t.Error("diagnosis without defaults should only set the tag")
	}
}

func TestApplyDiagnosis_Invalid(t *testing.T) {
	s, _ := newBlankAt("Bad", DefaultChecklist, fixedNow)
	if err := s.ApplyDiagnosis("migraine"); !errors.Is(err, ErrInvalidSheet) {
		t.Fatalf("expected ErrInvalidSheet, got %v", err)
	}
	if s.DiagnosisType != "" {
		t.Errorf("tag should be untouched, got %q", s.DiagnosisType)
	}
}
