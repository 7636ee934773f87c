package rounding

import (
	"time"

	"github.com/google/uuid"
)

// DiagnosisType tags a sheet with the primary neuro diagnosis family. It
// drives default-content prefill and template suggestion.
type DiagnosisType string

const (
	DiagnosisSAH     DiagnosisType = "sah"
	DiagnosisStroke  DiagnosisType = "stroke"
	DiagnosisICH     DiagnosisType = "ich"
	DiagnosisTBI     DiagnosisType = "tbi"
	DiagnosisSeizure DiagnosisType = "seizure"
	DiagnosisSpine   DiagnosisType = "spine"
	DiagnosisTumor   DiagnosisType = "tumor"
	DiagnosisOther   DiagnosisType = "other"
)

var diagnosisOrder = []DiagnosisType{
	DiagnosisSAH, DiagnosisStroke, DiagnosisICH, DiagnosisTBI,
	DiagnosisSeizure, DiagnosisSpine, DiagnosisTumor, DiagnosisOther,
}

var diagnosisLabels = map[DiagnosisType]string{
	DiagnosisSAH:     "Subarachnoid hemorrhage",
	DiagnosisStroke:  "Ischemic stroke",
	DiagnosisICH:     "Intracerebral hemorrhage (ICH)",
	DiagnosisTBI:     "Traumatic brain injury",
	DiagnosisSeizure: "Status epilepticus",
	DiagnosisSpine:   "Spinal cord injury",
	DiagnosisTumor:   "Brain tumor",
	DiagnosisOther:   "Other / mixed neuro",
}

// DiagnosisTypes returns the closed set of diagnosis tags in display order.
func DiagnosisTypes() []DiagnosisType {
	out := make([]DiagnosisType, len(diagnosisOrder))
	copy(out, diagnosisOrder)
	return out
}

// Valid reports whether d is one of the closed set of diagnosis tags.
func (d DiagnosisType) Valid() bool {
	_, ok := diagnosisLabels[d]
	return ok
}

// Label returns the human readable diagnosis name, or "" for unknown tags.
func (d DiagnosisType) Label() string {
	return diagnosisLabels[d]
}

// DueSlot is the optional timing tag of a task.
type DueSlot string

const (
	DueToday DueSlot = "Today"
	DueAM    DueSlot = "AM"
	DuePM    DueSlot = "PM"
)

var validDueSlots = map[DueSlot]bool{
	DueToday: true,
	DueAM:    true,
	DuePM:    true,
}

var validTaskPriorities = map[string]bool{
	"routine": true,
	"urgent":  true,
	"stat":    true,
}

var validProblemCategories = map[string]bool{
	"neuro": true,
	"resp":  true,
	"cv":    true,
	"id":    true,
	"renal": true,
	"gi":    true,
	"heme":  true,
	"endo":  true,
	"other": true,
}

// Task is a to-do entry on the sheet. ID is unique within its sheet.
type Task struct {
	ID       uuid.UUID `json:"id"`
	Text     string    `json:"text"`
	Done     bool      `json:"done"`
	Due      DueSlot   `json:"due,omitempty"`
	Priority string    `json:"priority,omitempty"`
}

// Problem is one entry of the assessment and plan. ID is unique within its sheet.
type Problem struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Assessment string    `json:"assessment"`
	Plan       string    `json:"plan"`
	Category   string    `json:"category,omitempty"`
}

// Pupil is a single pupil observation; Size is in millimeters.
type Pupil struct {
	Size     int  `json:"size"`
	Reactive bool `json:"reactive"`
}

type Pupils struct {
	Left  Pupil `json:"left"`
	Right Pupil `json:"right"`
}

// MotorStrength holds per-limb MRC grades (0-5).
type MotorStrength struct {
	LUE *int `json:"lue,omitempty"`
	RUE *int `json:"rue,omitempty"`
	LLE *int `json:"lle,omitempty"`
	RLE *int `json:"rle,omitempty"`
}

// NeuroExam is the structured neurological exam. Every numeric field is
// optional; nil means not yet documented.
type NeuroExam struct {
	GCSTotal  *int `json:"gcs_total,omitempty"`
	GCSEye    *int `json:"gcs_eye,omitempty"`
	GCSVerbal *int `json:"gcs_verbal,omitempty"`
	GCSMotor  *int `json:"gcs_motor,omitempty"`

	AdmissionGCSEye    *int `json:"admission_gcs_eye,omitempty"`
	AdmissionGCSVerbal *int `json:"admission_gcs_verbal,omitempty"`
	AdmissionGCSMotor  *int `json:"admission_gcs_motor,omitempty"`

	Pupils        *Pupils        `json:"pupils,omitempty"`
	MotorExam     string         `json:"motor_exam,omitempty"`
	MotorStrength *MotorStrength `json:"motor_strength,omitempty"`
	CranialNerves string         `json:"cranial_nerves,omitempty"`
	Sedation      string         `json:"sedation,omitempty"`
	RASS          *int           `json:"rass,omitempty"`
	Seizures      string         `json:"seizures,omitempty"`

	ICP      *float64 `json:"icp,omitempty"`
	CPP      *float64 `json:"cpp,omitempty"`
	EVDDrain string   `json:"evd_drain,omitempty"`
}

// Vitals are the bedside observations. FiO2 is a percentage.
type Vitals struct {
	MAP  *float64 `json:"map,omitempty"`
	HR   *float64 `json:"hr,omitempty"`
	SpO2 *float64 `json:"spo2,omitempty"`
	Temp *float64 `json:"temp,omitempty"`
	RR   *float64 `json:"rr,omitempty"`
	FiO2 *float64 `json:"fio2,omitempty"`
	PEEP *float64 `json:"peep,omitempty"`
	Vent string   `json:"vent,omitempty"`
}

// Sheet is the rounding sheet for one patient.
type Sheet struct {
	ID             uuid.UUID       `json:"id"`
	PatientName    string          `json:"patient_name"`
	Room           string          `json:"room,omitempty"`
	DateISO        string          `json:"date_iso"`
	Diagnosis      string          `json:"diagnosis,omitempty"`
	DiagnosisType  DiagnosisType   `json:"diagnosis_type,omitempty"`
	DayOfAdmit     *int            `json:"day_of_admit,omitempty"`
	OneLiner       string          `json:"one_liner"`
	NeuroExam      NeuroExam       `json:"neuro_exam"`
	ClinicalScores *ClinicalScores `json:"clinical_scores,omitempty"`
	Vitals         Vitals          `json:"vitals"`
	LinesTubes     string          `json:"lines_tubes"`
	Drips          string          `json:"drips"`
	Labs           string          `json:"labs"`
	Imaging        string          `json:"imaging"`
	Checklist      Checklist       `json:"checklist"`
	Problems       []Problem       `json:"problems"`
	Tasks          []Task          `json:"tasks"`
	Notes          string          `json:"notes,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Touch stamps the sheet as modified at now.
func (s *Sheet) Touch(now time.Time) {
	s.UpdatedAt = now
}

// Clone returns a deep copy of the sheet. Callers render from clones so the
// editing side can keep mutating the original.
func (s *Sheet) Clone() *Sheet {
	if s == nil {
		return nil
	}
	out := *s
	out.DayOfAdmit = clonePtr(s.DayOfAdmit)
	out.NeuroExam = s.NeuroExam.clone()
	out.Vitals = s.Vitals.clone()
	out.ClinicalScores = s.ClinicalScores.clone()
	out.Checklist = s.Checklist.Clone()
	if s.Problems != nil {
		out.Problems = append([]Problem(nil), s.Problems...)
	}
	if s.Tasks != nil {
		out.Tasks = append([]Task(nil), s.Tasks...)
	}
	return &out
}

// ProblemIndex returns the position of the problem with the given id, or -1.
func (s *Sheet) ProblemIndex(id uuid.UUID) int {
	for i := range s.Problems {
		if s.Problems[i].ID == id {
			return i
		}
	}
	return -1
}

// TaskIndex returns the position of the task with the given id, or -1.
func (s *Sheet) TaskIndex(id uuid.UUID) int {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (n NeuroExam) clone() NeuroExam {
	out := n
	out.GCSTotal = clonePtr(n.GCSTotal)
	out.GCSEye = clonePtr(n.GCSEye)
	out.GCSVerbal = clonePtr(n.GCSVerbal)
	out.GCSMotor = clonePtr(n.GCSMotor)
	out.AdmissionGCSEye = clonePtr(n.AdmissionGCSEye)
	out.AdmissionGCSVerbal = clonePtr(n.AdmissionGCSVerbal)
	out.AdmissionGCSMotor = clonePtr(n.AdmissionGCSMotor)
	out.Pupils = clonePtr(n.Pupils)
	out.RASS = clonePtr(n.RASS)
	out.ICP = clonePtr(n.ICP)
	out.CPP = clonePtr(n.CPP)
	if n.MotorStrength != nil {
		ms := MotorStrength{
			LUE: clonePtr(n.MotorStrength.LUE),
			RUE: clonePtr(n.MotorStrength.RUE),
			LLE: clonePtr(n.MotorStrength.LLE),
			RLE: clonePtr(n.MotorStrength.RLE),
		}
		out.MotorStrength = &ms
	}
	return out
}

func (v Vitals) clone() Vitals {
	out := v
	out.MAP = clonePtr(v.MAP)
	out.HR = clonePtr(v.HR)
	out.SpO2 = clonePtr(v.SpO2)
	out.Temp = clonePtr(v.Temp)
	out.RR = clonePtr(v.RR)
	out.FiO2 = clonePtr(v.FiO2)
	out.PEEP = clonePtr(v.PEEP)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Int returns a pointer to v, for building optional fields.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for building optional fields.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v, for building optional fields.
func Bool(v bool) *bool { return &v }
