package rounding

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NormalPupilSize is the baseline pupil size, in millimeters, of a new sheet.
const NormalPupilSize = 3

// NewBlank creates an empty sheet for name with an all-unchecked checklist
// built from checklistKeys in order. The sheet is dated today in the local
// time zone and its pupils start at the normal baseline (3mm, reactive).
func NewBlank(name string, checklistKeys []string) (*Sheet, error) {
	return newBlankAt(name, checklistKeys, time.Now())
}

func newBlankAt(name string, checklistKeys []string, now time.Time) (*Sheet, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: patient name is required", ErrInvalidSheet)
	}
	checklist, err := NewChecklist(checklistKeys)
	if err != nil {
		return nil, err
	}
	return &Sheet{
		ID:          uuid.New(),
		PatientName: name,
		DateISO:     now.Format(DateLayout),
		NeuroExam: NeuroExam{
			Pupils: &Pupils{
				Left:  Pupil{Size: NormalPupilSize, Reactive: true},
				Right: Pupil{Size: NormalPupilSize, Reactive: true},
			},
		},
		Checklist: checklist,
		Problems:  []Problem{},
		Tasks:     []Task{},
		UpdatedAt: now,
	}, nil
}
