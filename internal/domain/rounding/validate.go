package rounding

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format of Sheet.DateISO.
const DateLayout = "2006-01-02"

// Validate checks the structural contract of a sheet: required name, date
// format, closed ranges of scored fields and the closed tag sets. It does not
// judge clinical plausibility.
func (s *Sheet) Validate() error {
	if s.PatientName == "" {
		return fmt.Errorf("%w: patient_name is required", ErrInvalidSheet)
	}
	if s.DateISO != "" {
		if err := checkDate("date_iso", s.DateISO); err != nil {
			return err
		}
	}
	if s.DiagnosisType != "" && !s.DiagnosisType.Valid() {
		return fmt.Errorf("%w: invalid diagnosis_type %q", ErrInvalidSheet, s.DiagnosisType)
	}
	if s.DayOfAdmit != nil && *s.DayOfAdmit < 1 {
		return fmt.Errorf("%w: day_of_admit must be positive, got %d", ErrInvalidSheet, *s.DayOfAdmit)
	}
	if err := s.NeuroExam.validate(); err != nil {
		return err
	}
	if err := s.ClinicalScores.validate(); err != nil {
		return err
	}

	problemIDs := make(map[uuid.UUID]bool, len(s.Problems))
	for _, p := range s.Problems {
		if err := p.validate(); err != nil {
			return err
		}
		if problemIDs[p.ID] {
			return fmt.Errorf("%w: duplicate problem id %s", ErrInvalidSheet, p.ID)
		}
		problemIDs[p.ID] = true
	}
	taskIDs := make(map[uuid.UUID]bool, len(s.Tasks))
	for _, t := range s.Tasks {
		if err := t.validate(); err != nil {
			return err
		}
		if taskIDs[t.ID] {
			return fmt.Errorf("%w: duplicate task id %s", ErrInvalidSheet, t.ID)
		}
		taskIDs[t.ID] = true
	}
	return nil
}

type rangeCheck struct {
	field    string
	v        *int
	min, max int
}

func (n NeuroExam) validate() error {
	checks := []rangeCheck{
		{"gcs_total", n.GCSTotal, 3, 15},
		{"gcs_eye", n.GCSEye, 1, 4},
		{"gcs_verbal", n.GCSVerbal, 1, 5},
		{"gcs_motor", n.GCSMotor, 1, 6},
		{"admission_gcs_eye", n.AdmissionGCSEye, 1, 4},
		{"admission_gcs_verbal", n.AdmissionGCSVerbal, 1, 5},
		{"admission_gcs_motor", n.AdmissionGCSMotor, 1, 6},
		{"rass", n.RASS, -5, 4},
	}
	if ms := n.MotorStrength; ms != nil {
		checks = append(checks,
			rangeCheck{"motor_strength.lue", ms.LUE, 0, 5},
			rangeCheck{"motor_strength.rue", ms.RUE, 0, 5},
			rangeCheck{"motor_strength.lle", ms.LLE, 0, 5},
			rangeCheck{"motor_strength.rle", ms.RLE, 0, 5},
		)
	}
	for _, c := range checks {
		if err := checkRange(c.field, c.v, c.min, c.max); err != nil {
			return err
		}
	}
	if p := n.Pupils; p != nil {
		if p.Left.Size < 1 || p.Right.Size < 1 {
			return fmt.Errorf("%w: pupil size must be at least 1mm", ErrInvalidSheet)
		}
	}
	return nil
}

func (p Problem) validate() error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: problem id is required", ErrInvalidSheet)
	}
	if p.Category != "" && !validProblemCategories[p.Category] {
		return fmt.Errorf("%w: invalid problem category %q", ErrInvalidSheet, p.Category)
	}
	return nil
}

func (t Task) validate() error {
	if t.ID == uuid.Nil {
		return fmt.Errorf("%w: task id is required", ErrInvalidSheet)
	}
	if t.Due != "" && !validDueSlots[t.Due] {
		return fmt.Errorf("%w: invalid task due %q", ErrInvalidSheet, t.Due)
	}
	if t.Priority != "" && !validTaskPriorities[t.Priority] {
		return fmt.Errorf("%w: invalid task priority %q", ErrInvalidSheet, t.Priority)
	}
	return nil
}

func checkRange(field string, v *int, min, max int) error {
	if v == nil {
		return nil
	}
	if *v < min || *v > max {
		return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrInvalidSheet, field, min, max, *v)
	}
	return nil
}

func checkDate(field, value string) error {
	if _, err := time.Parse(DateLayout, value); err != nil {
		return fmt.Errorf("%w: %s must be YYYY-MM-DD, got %q", ErrInvalidSheet, field, value)
	}
	return nil
}
