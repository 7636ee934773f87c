package rounding

import (
	"time"

	"github.com/google/uuid"
)

// DemoSheets returns the demonstration workspace: three neuro ICU patients
// with filled-in exams, scores and plans. Every call yields fresh ids.
func DemoSheets(now time.Time) []*Sheet {
	wilson := mustBlank("James Wilson", now)
	wilson.Room = "NICU-4"
	wilson.Diagnosis = "SAH - ruptured MCA aneurysm"
	wilson.DiagnosisType = DiagnosisSAH
	wilson.DayOfAdmit = Int(5)
	wilson.OneLiner = "POD5 clipping, bleed day 5, monitoring for vasospasm"
	wilson.NeuroExam = NeuroExam{
		GCSEye: Int(4), GCSVerbal: Int(5), GCSMotor: Int(6),
		AdmissionGCSEye: Int(3), AdmissionGCSVerbal: Int(4), AdmissionGCSMotor: Int(5),
		Pupils: &Pupils{
			Left:  Pupil{Size: 3, Reactive: true},
			Right: Pupil{Size: 3, Reactive: true},
		},
		MotorExam:     "Full strength bilateral",
		MotorStrength: &MotorStrength{LUE: Int(5), RUE: Int(5), LLE: Int(5), RLE: Int(5)},
		Sedation:      "RASS 0",
		ICP:           Float(12),
		CPP:           Float(72),
		EVDDrain:      "Set at 15cm, draining clear CSF",
	}
	wilson.ClinicalScores = &ClinicalScores{
		SAH: &SAHScores{
			HuntHess:       Int(2),
			ModifiedFisher: Int(3),
			RuptureDate:    now.AddDate(0, 0, -4).Format(DateLayout),
		},
	}
	wilson.Vitals = Vitals{MAP: Float(85), HR: Float(72), SpO2: Float(98), Vent: "2L NC"}
	wilson.Drips = "Nimodipine 60mg q4h"
	wilson.LinesTubes = "EVD, A-line, PIV x2"
	wilson.Problems = []Problem{{
		ID:         uuid.New(),
		Title:      "SAH - Hunt Hess 2, Fisher 3",
		Assessment: "POD5, bleed day 5, peak vasospasm window",
		Plan:       "- Continue nimodipine\n- Daily TCDs\n- Maintain euvolemia",
	}}

	garcia := mustBlank("Maria Garcia", now)
	garcia.Room = "NICU-7"
	garcia.Diagnosis = "Large R MCA stroke"
	garcia.DiagnosisType = DiagnosisStroke
	garcia.DayOfAdmit = Int(2)
	garcia.OneLiner = "s/p thrombectomy, TICI 2b, now with malignant edema"
	garcia.NeuroExam = NeuroExam{
		GCSEye: Int(3), GCSVerbal: Int(2), GCSMotor: Int(5),
		AdmissionGCSEye: Int(2), AdmissionGCSVerbal: Int(1), AdmissionGCSMotor: Int(4),
		Pupils: &Pupils{
			Left:  Pupil{Size: 3, Reactive: true},
			Right: Pupil{Size: 4, Reactive: false},
		},
		MotorExam:     "L sided weakness 0/5, R intact",
		MotorStrength: &MotorStrength{LUE: Int(0), RUE: Int(5), LLE: Int(0), RLE: Int(5)},
		Sedation:      "RASS -2",
	}
	garcia.ClinicalScores = &ClinicalScores{
		Stroke: &StrokeScores{
			NIHSS:         Int(18),
			ASPECTS:       Int(6),
			Territory:     "R MCA M1",
			Thrombectomy:  Bool(true),
			TICIScore:     "2b",
			LastKnownWell: "2 days ago, 6:00 AM",
			TPAGiven:      Bool(true),
			StrokeType:    "ischemic",
		},
	}
	garcia.Vitals = Vitals{MAP: Float(90), HR: Float(88), SpO2: Float(96), Vent: "AC/VC 500/14/40%/5"}
	garcia.Drips = "Propofol 20mcg/kg/min, 3% NaCl"
	garcia.LinesTubes = "ETT, OGT, Foley, R IJ CVC, A-line"
	garcia.Problems = []Problem{{
		ID:         uuid.New(),
		Title:      "Malignant MCA edema",
		Assessment: "Worsening edema on repeat CT, R pupil sluggish",
		Plan:       "- HOB 30°\n- 3% NaCl bolus PRN\n- Neurosurgery consult for hemicraniectomy",
	}}

	patel := mustBlank("Priya Patel", now)
	patel.Room = "NICU-2"
	patel.Diagnosis = "Left basal ganglia ICH with IVH"
	patel.DiagnosisType = DiagnosisICH
	patel.DayOfAdmit = Int(1)
	patel.OneLiner = "Hypertensive emergency, large deep hemorrhage requiring EVD"
	patel.NeuroExam = NeuroExam{
		GCSEye: Int(2), GCSVerbal: Int(2), GCSMotor: Int(4),
		AdmissionGCSEye: Int(3), AdmissionGCSVerbal: Int(2), AdmissionGCSMotor: Int(5),
		Pupils: &Pupils{
			Left:  Pupil{Size: 5, Reactive: true},
			Right: Pupil{Size: 4, Reactive: true},
		},
		MotorExam:     "R hemiplegia 0/5, L follows",
		MotorStrength: &MotorStrength{LUE: Int(4), RUE: Int(0), LLE: Int(4), RLE: Int(0)},
		Sedation:      "Propofol 15mcg/kg/min",
		ICP:           Float(20),
		CPP:           Float(60),
		EVDDrain:      "EVD @ 10cm, draining blood-tinged CSF",
	}
	patel.ClinicalScores = &ClinicalScores{
		ICH: &ICHScores{
			GCSScore:          Int(8),
			ICHVolume:         Float(42),
			ICHLocation:       "deep",
			IVHPresent:        Bool(true),
			Infratentorial:    Bool(false),
			Age80Plus:         Bool(false),
			FunctionalOutcome: "Family aware of ~70% mortality; reassess goals if no improvement in 72h.",
		},
	}
	patel.Vitals = Vitals{MAP: Float(110), HR: Float(62), SpO2: Float(99), Vent: "SIMV/PS 450/16/35%/8"}
	patel.Drips = "Nicardipine 7mg/hr, Propofol 15mcg/kg/min"
	patel.LinesTubes = "EVD, A-line, Foley, PIV x2"
	patel.Problems = []Problem{{
		ID:         uuid.New(),
		Title:      "Large deep ICH",
		Assessment: "ICH score elevated due to volume and IVH",
		Plan:       "- Maintain SBP 140-160\n- Scheduled hypertonic 3%\n- EVD draining q1h",
	}}

	return []*Sheet{wilson, garcia, patel}
}

func mustBlank(name string, now time.Time) *Sheet {
	s, err := newBlankAt(name, DefaultChecklist, now)
	if err != nil {
		panic(err)
	}
	return s
}
