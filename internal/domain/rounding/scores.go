package rounding

import "fmt"

// ClinicalScores groups the raw inputs of diagnosis-specific severity scales.
// Every group and every field is optional. Scoring itself happens elsewhere;
// the sheet only stores what the calculators write.
type ClinicalScores struct {
	SAH     *SAHScores     `json:"sah,omitempty"`
	Stroke  *StrokeScores  `json:"stroke,omitempty"`
	ICH     *ICHScores     `json:"ich,omitempty"`
	TBI     *TBIScores     `json:"tbi,omitempty"`
	Seizure *SeizureScores `json:"seizure,omitempty"`
	Spine   *SpineScores   `json:"spine,omitempty"`
}

type SAHScores struct {
	HuntHess         *int   `json:"hunt_hess,omitempty"`
	ModifiedFisher   *int   `json:"modified_fisher,omitempty"`
	WFNS             *int   `json:"wfns,omitempty"`
	BleedDay         *int   `json:"bleed_day,omitempty"`
	RuptureDate      string `json:"rupture_date,omitempty"`
	AneurysmLocation string `json:"aneurysm_location,omitempty"`
	AneurysmSecured  *bool  `json:"aneurysm_secured,omitempty"`
	SecuredMethod    string `json:"secured_method,omitempty"`
}

type StrokeScores struct {
	NIHSS         *int   `json:"nihss,omitempty"`
	ASPECTS       *int   `json:"aspects,omitempty"`
	LastKnownWell string `json:"last_known_well,omitempty"`
	TPAGiven      *bool  `json:"tpa_given,omitempty"`
	Thrombectomy  *bool  `json:"thrombectomy,omitempty"`
	TICIScore     string `json:"tici_score,omitempty"`
	StrokeType    string `json:"stroke_type,omitempty"`
	Territory     string `json:"territory,omitempty"`
}

type ICHScores struct {
	ICHScore          *int     `json:"ich_score,omitempty"`
	ICHVolume         *float64 `json:"ich_volume,omitempty"`
	ICHLocation       string   `json:"ich_location,omitempty"`
	IVHPresent        *bool    `json:"ivh_present,omitempty"`
	Infratentorial    *bool    `json:"infratentorial,omitempty"`
	Age80Plus         *bool    `json:"age_80_plus,omitempty"`
	GCSScore          *int     `json:"gcs_score,omitempty"`
	FunctionalOutcome string   `json:"functional_outcome,omitempty"`
}

type TBIScores struct {
	GCSAtScene         *int     `json:"gcs_at_scene,omitempty"`
	Mechanism          string   `json:"mechanism,omitempty"`
	MarshallCT         *int     `json:"marshall_ct,omitempty"`
	Findings           []string `json:"findings,omitempty"`
	PupilsAtScene      string   `json:"pupils_at_scene,omitempty"`
	HypotensionEpisode *bool    `json:"hypotension_episode,omitempty"`
	HypoxiaEpisode     *bool    `json:"hypoxia_episode,omitempty"`
}

type SeizureScores struct {
	StatusEpilepticus *bool  `json:"status_epilepticus,omitempty"`
	SeizureType       string `json:"seizure_type,omitempty"`
	STESS             *int   `json:"stess,omitempty"`
	Etiology          string `json:"etiology,omitempty"`
	EEGFindings       string `json:"eeg_findings,omitempty"`
	RefractoryStatus  *bool  `json:"refractory_status,omitempty"`
}

type SpineScores struct {
	ASIAGrade   string `json:"asia_grade,omitempty"`
	InjuryLevel string `json:"injury_level,omitempty"`
	Mechanism   string `json:"mechanism,omitempty"`
	SLIC        *int   `json:"slic,omitempty"`
	TLICS       *int   `json:"tlics,omitempty"`
}

var (
	validSecuredMethods = map[string]bool{"clip": true, "coil": true, "flow-diverter": true, "other": true}
	validStrokeTypes    = map[string]bool{"ischemic": true, "hemorrhagic-conversion": true, "tia": true}
	validICHLocations   = map[string]bool{"deep": true, "lobar": true, "brainstem": true, "cerebellar": true}
	validASIAGrades     = map[string]bool{"A": true, "B": true, "C": true, "D": true, "E": true}
)

func (c *ClinicalScores) validate() error {
	if c == nil {
		return nil
	}
	if s := c.SAH; s != nil {
		if err := checkRange("sah.hunt_hess", s.HuntHess, 1, 5); err != nil {
			return err
		}
		if err := checkRange("sah.modified_fisher", s.ModifiedFisher, 0, 4); err != nil {
			return err
		}
		if err := checkRange("sah.wfns", s.WFNS, 1, 5); err != nil {
			return err
		}
		if s.SecuredMethod != "" && !validSecuredMethods[s.SecuredMethod] {
			return fmt.Errorf("%w: invalid sah.secured_method %q", ErrInvalidSheet, s.SecuredMethod)
		}
		if s.RuptureDate != "" {
			if err := checkDate("sah.rupture_date", s.RuptureDate); err != nil {
				return err
			}
		}
	}
	if s := c.Stroke; s != nil {
		if err := checkRange("stroke.nihss", s.NIHSS, 0, 42); err != nil {
			return err
		}
		if err := checkRange("stroke.aspects", s.ASPECTS, 0, 10); err != nil {
			return err
		}
		if s.StrokeType != "" && !validStrokeTypes[s.StrokeType] {
			return fmt.Errorf("%w: invalid stroke.stroke_type %q", ErrInvalidSheet, s.StrokeType)
		}
	}
	if s := c.ICH; s != nil {
		if err := checkRange("ich.ich_score", s.ICHScore, 0, 6); err != nil {
			return err
		}
		if err := checkRange("ich.gcs_score", s.GCSScore, 3, 15); err != nil {
			return err
		}
		if s.ICHLocation != "" && !validICHLocations[s.ICHLocation] {
			return fmt.Errorf("%w: invalid ich.ich_location %q", ErrInvalidSheet, s.ICHLocation)
		}
	}
	if s := c.TBI; s != nil {
		if err := checkRange("tbi.gcs_at_scene", s.GCSAtScene, 3, 15); err != nil {
			return err
		}
		if err := checkRange("tbi.marshall_ct", s.MarshallCT, 1, 6); err != nil {
			return err
		}
	}
	if s := c.Seizure; s != nil {
		if err := checkRange("seizure.stess", s.STESS, 0, 6); err != nil {
			return err
		}
	}
	if s := c.Spine; s != nil {
		if s.ASIAGrade != "" && !validASIAGrades[s.ASIAGrade] {
			return fmt.Errorf("%w: invalid spine.asia_grade %q", ErrInvalidSheet, s.ASIAGrade)
		}
		if err := checkRange("spine.slic", s.SLIC, 0, 10); err != nil {
			return err
		}
		if err := checkRange("spine.tlics", s.TLICS, 0, 10); err != nil {
			return err
		}
	}
	return nil
}

func (c *ClinicalScores) clone() *ClinicalScores {
	if c == nil {
		return nil
	}
	out := &ClinicalScores{}
	if c.SAH != nil {
		s := *c.SAH
		s.HuntHess = clonePtr(s.HuntHess)
		s.ModifiedFisher = clonePtr(s.ModifiedFisher)
		s.WFNS = clonePtr(s.WFNS)
		s.BleedDay = clonePtr(s.BleedDay)
		s.AneurysmSecured = clonePtr(s.AneurysmSecured)
		out.SAH = &s
	}
	if c.Stroke != nil {
		s := *c.Stroke
		s.NIHSS = clonePtr(s.NIHSS)
		s.ASPECTS = clonePtr(s.ASPECTS)
		s.TPAGiven = clonePtr(s.TPAGiven)
		s.Thrombectomy = clonePtr(s.Thrombectomy)
		out.Stroke = &s
	}
	if c.ICH != nil {
		s := *c.ICH
		s.ICHScore = clonePtr(s.ICHScore)
		s.ICHVolume = clonePtr(s.ICHVolume)
		s.IVHPresent = clonePtr(s.IVHPresent)
		s.Infratentorial = clonePtr(s.Infratentorial)
		s.Age80Plus = clonePtr(s.Age80Plus)
		s.GCSScore = clonePtr(s.GCSScore)
		out.ICH = &s
	}
	if c.TBI != nil {
		s := *c.TBI
		s.GCSAtScene = clonePtr(s.GCSAtScene)
		s.MarshallCT = clonePtr(s.MarshallCT)
		s.HypotensionEpisode = clonePtr(s.HypotensionEpisode)
		s.HypoxiaEpisode = clonePtr(s.HypoxiaEpisode)
		if s.Findings != nil {
			s.Findings = append([]string(nil), s.Findings...)
		}
		out.TBI = &s
	}
	if c.Seizure != nil {
		s := *c.Seizure
		s.StatusEpilepticus = clonePtr(s.StatusEpilepticus)
		s.STESS = clonePtr(s.STESS)
		s.RefractoryStatus = clonePtr(s.RefractoryStatus)
		out.Seizure = &s
	}
	if c.Spine != nil {
		s := *c.Spine
		s.SLIC = clonePtr(s.SLIC)
		s.TLICS = clonePtr(s.TLICS)
		out.Spine = &s
	}
	return out
}
