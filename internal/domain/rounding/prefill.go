package rounding

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type problemDefault struct {
	Title, Assessment, Plan string
}

type diagnosisDefaults struct {
	DiagnosisLabel  string
	OneLiner        string
	Problems        []problemDefault
	Tasks           []string
	Drips           string
	LinesTubes      string
	ChecklistChecks []string
}

var prefills = map[DiagnosisType]diagnosisDefaults{
	DiagnosisSAH: {
		OneLiner: "SAH {{HD}} s/p securing, in vasospasm window",
		Problems: []problemDefault{
			{
				Title:      "SAH - vasospasm prevention",
				Assessment: "Secured aneurysm, monitoring TCDs, neuro exam stable",
				Plan:       "- Nimodipine 60mg q4h\n- Euvolemia, Na 140-150\n- Daily TCDs, CTA if neuro change",
			},
			{
				Title:      "ICP management",
				Assessment: "EVD draining at 15 cm, ICP controlled",
				Plan:       "- Keep EVD at 15 cm, hourly output\n- CPP goal >65\n- Repeat CT if ICP >20 sustained",
			},
		},
		Tasks:           []string{"Daily TCD", "Update family", "EVD leveling"},
		Drips:           "Nimodipine q4h, maintenance IVF",
		LinesTubes:      "EVD @15, A-line, Foley",
		ChecklistChecks: []string{"HOB >30°", "Neuro exam documented"},
	},
	DiagnosisStroke: {
		OneLiner: "Large vessel stroke {{HD}} s/p reperfusion, swelling watch",
		Problems: []problemDefault{
			{
				Title:      "Malignant edema watch",
				Assessment: "Post thrombectomy cerebral edema risk",
				Plan:       "- HOB 30°\n- Hypertonic 3% PRN\n- q1h neuro checks",
			},
			{
				Title:      "Secondary stroke prevention",
				Assessment: "Need BP control and antithrombotics",
				Plan:       "- SBP goal 140-160\n- Restart antiplatelet when safe\n- PT/OT consult",
			},
		},
		Tasks:           []string{"CT head AM", "PT/OT eval", "Family update"},
		Drips:           "3% NaCl at goal",
		LinesTubes:      "ETT, OGT, Foley, A-line",
		ChecklistChecks: []string{"Blood pressure goal", "Family update"},
	},
	DiagnosisICH: {
		OneLiner: "Deep ICH {{HD}}, BP control + ICP monitoring",
		Problems: []problemDefault{
			{
				Title:      "ICH care bundle",
				Assessment: "Large basal ganglia hemorrhage with IVH",
				Plan:       "- SBP 140-160\n- Hypertonic therapy per protocol\n- Repeat CT in AM",
			},
			{
				Title:      "Airway/Ventilation",
				Assessment: "Protective ventilation, sedation needs",
				Plan:       "- Maintain PaCO2 35-40\n- Daily SAT/SBT when appropriate",
			},
		},
		Tasks:           []string{"CT head 24h", "Discuss goals of care"},
		Drips:           "Nicardipine infusion",
		LinesTubes:      "EVD @10, A-line, Foley",
		ChecklistChecks: []string{"ICP/CPP target", "Blood pressure goal"},
	},
	DiagnosisTBI: {
		OneLiner: "Severe TBI {{HD}}, ICP guided therapy",
		Problems: []problemDefault{
			{
				Title:      "TBI neuroprotection",
				Assessment: "Monitoring ICP, sedation ongoing",
				Plan:       "- CPP 60-70\n- Temp <38°C\n- Sedation/analgesia per protocol",
			},
		},
		Tasks:           []string{"CT head AM", "cEEG review"},
		Drips:           "Propofol, hypertonic prn",
		LinesTubes:      "EVD, A-line, vent",
		ChecklistChecks: []string{"Normothermia", "Sodium target"},
	},
	DiagnosisSeizure: {
		OneLiner: "Status epilepticus {{HD}}, escalating antiseizure therapy",
		Problems: []problemDefault{
			{
				Title:      "Seizure control",
				Assessment: "Refractory status, on cEEG",
				Plan:       "- ASM load complete\n- Midazolam drip titrate to burst suppression\n- Daily EEG summary",
			},
		},
		Tasks:           []string{"EEG summary note", "Antiseizure levels"},
		Drips:           "Midazolam, ASM per protocol",
		LinesTubes:      "ETT, Foley, CVC",
		ChecklistChecks: []string{"Seizure prophylaxis"},
	},
}

// ApplyDiagnosis tags the sheet with dt and fills diagnosis-specific default
// content into the fields that are still empty. Checklist items named by the
// defaults are checked only when the sheet already carries them.
func (s *Sheet) ApplyDiagnosis(dt DiagnosisType) error {
	if !dt.Valid() {
		return fmt.Errorf("%w: invalid diagnosis_type %q", ErrInvalidSheet, dt)
	}
	s.DiagnosisType = dt

	d, ok := prefills[dt]
	if !ok {
		return nil
	}
	if s.Diagnosis == "" {
		s.Diagnosis = d.DiagnosisLabel
		if s.Diagnosis == "" {
			s.Diagnosis = dt.Label()
		}
	}
	if s.OneLiner == "" && d.OneLiner != "" {
		s.OneLiner = s.expandPlaceholders(d.OneLiner)
	}
	if len(s.Problems) == 0 && len(d.Problems) > 0 {
		s.Problems = make([]Problem, 0, len(d.Problems))
		for _, p := range d.Problems {
			s.Problems = append(s.Problems, Problem{
				ID:         uuid.New(),
				Title:      p.Title,
				Assessment: p.Assessment,
				Plan:       p.Plan,
			})
		}
	}
	if len(s.Tasks) == 0 && len(d.Tasks) > 0 {
		s.Tasks = make([]Task, 0, len(d.Tasks))
		for _, text := range d.Tasks {
			s.Tasks = append(s.Tasks, Task{ID: uuid.New(), Text: text, Due: DueToday})
		}
	}
	if s.Drips == "" {
		s.Drips = d.Drips
	}
	if s.LinesTubes == "" {
		s.LinesTubes = d.LinesTubes
	}
	for _, label := range d.ChecklistChecks {
		// labels outside this sheet's checklist are skipped; keys are fixed
		_ = s.Checklist.Set(label, true)
	}
	return nil
}

func (s *Sheet) expandPlaceholders(text string) string {
	day := 1
	if s.DayOfAdmit != nil {
		day = *s.DayOfAdmit
	}
	room := "ICU"
	if s.Room != "" {
		room = "Room " + s.Room
	}
	return strings.NewReplacer(
		"{{HD}}", "HD "+strconv.Itoa(day),
		"{{ROOM}}", room,
	).Replace(text)
}
