package clti

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrInvalidSnapshot = errors.New("invalid case snapshot")

// Snapshot is the flat, versionless export of a case: every raw fact, the
// wizard completion flags and the derived values at the time of export.
// Derived fields are informational; Import recomputes them.
type Snapshot struct {
	CaseID *uuid.UUID `json:"case_id,omitempty"`

	ABI                   float64  `json:"abi"`
	TBI                   float64  `json:"tbi"`
	PSAT                  PSATBand `json:"psat,omitempty"`
	TcPO2                 *float64 `json:"tcpo2,omitempty"`
	ArterialCalcification bool     `json:"arterial_calcification"`
	Diabetes              bool     `json:"diabetes"`

	Necrosis             *bool           `json:"necrosis,omitempty"`
	NecrosisType         NecrosisType    `json:"necrosis_type,omitempty"`
	GangreneSpread       GangreneSpread  `json:"gangrene_spread,omitempty"`
	UlcerLocation        UlcerLocation   `json:"ulcer_location,omitempty"`
	UlcerDepth           UlcerDepth      `json:"ulcer_depth,omitempty"`
	UlcerBoneInvolvement BoneInvolvement `json:"ulcer_bone_involvement,omitempty"`

	Swelling       bool           `json:"swelling"`
	Erythema       bool           `json:"erythema"`
	Pain           bool           `json:"pain"`
	Warmth         bool           `json:"warmth"`
	Purulence      bool           `json:"purulence"`
	Tachycardia    bool           `json:"tachycardia"`
	Tachypnea      bool           `json:"tachypnea"`
	Temperature    bool           `json:"temperature"`
	Leukocytosis   bool           `json:"leukocytosis"`
	SIRSAbsentType SIRSAbsentType `json:"sirs_absent_type,omitempty"`
	HyperemiaSize  HyperemiaSize  `json:"hyperemia_size,omitempty"`

	CRABAgeOver75          bool `json:"crab_age_over_75"`
	CRABPriorProcedure     bool `json:"crab_prior_procedure"`
	CRABPainAndNecrosis    bool `json:"crab_pain_and_necrosis"`
	CRABPartialDependence  bool `json:"crab_partial_dependence"`
	CRABCompleteDependence bool `json:"crab_complete_dependence"`
	CRABHemodialysis       bool `json:"crab_hemodialysis"`
	CRABAnginaOrMI         bool `json:"crab_angina_or_mi"`
	CRABUrgentOperation    bool `json:"crab_urgent_operation"`

	LENonAmbulatory   bool `json:"le_non_ambulatory"`
	LERutherford5     bool `json:"le_rutherford_5"`
	LERutherford6     bool `json:"le_rutherford_6"`
	LECerebrovascular bool `json:"le_cerebrovascular"`
	LEHemodialysis    bool `json:"le_hemodialysis"`
	LEBMI18To19       bool `json:"le_bmi_18_19"`
	LEBMIUnder18      bool `json:"le_bmi_under_18"`
	LEAge65To79       bool `json:"le_age_65_79"`
	LEAge80Plus       bool `json:"le_age_80_plus"`
	LEEF40To49        bool `json:"le_ef_40_49"`
	LEEFUnder40       bool `json:"le_ef_under_40"`

	AortoIliac          AortoIliacGrade   `json:"aorto_iliac,omitempty"`
	FemoroPopliteal     SegmentGrade      `json:"femoro_popliteal"`
	Infrapopliteal      SegmentGrade      `json:"infrapopliteal"`
	SevereCalcification bool              `json:"severe_calcification"`
	Submalleolar        SubmalleolarGrade `json:"submalleolar,omitempty"`

	CannotSaveLimb       bool  `json:"cannot_save_limb"`
	AutologousVein       *bool `json:"autologous_vein,omitempty"`
	SurgicalRiskAccepted *bool `json:"surgical_risk_accepted,omitempty"`

	CompletedSteps []string `json:"completed_steps"`

	WLevel                   *int                    `json:"w_level"`
	ILevel                   *int                    `json:"i_level"`
	FILevel                  *int                    `json:"fi_level"`
	RequiresTcPO2            bool                    `json:"requires_tcpo2"`
	ClinicalStage            *int                    `json:"clinical_stage"`
	AmputationRisk           Risk                    `json:"amputation_risk"`
	RevascularizationBenefit Risk                    `json:"revascularization_benefit"`
	CRABScore                int                     `json:"crab_score"`
	CRABBand                 RiskBand                `json:"crab_band"`
	CRABMortality            string                  `json:"crab_mortality"`
	LEScore                  float64                 `json:"le_score"`
	LEBand                   RiskBand                `json:"le_band"`
	LESurvival               string                  `json:"le_survival"`
	SurgicalRisk             SurgicalRisk            `json:"surgical_risk"`
	InfrapoplitealAdjusted   SegmentGrade            `json:"infrapopliteal_adjusted"`
	GlassStage               string                  `json:"glass_stage"`
	RecommendedMethod        RevascularizationMethod `json:"recommended_method"`
}

// Export flattens the current state. ClinicalStage carries the displayed
// stage, so an unsalvageable limb exports as 5.
func (s *CaseState) Export() Snapshot {
	v, w, i := s.vascular, s.wound, s.infection
	c, l, g, r := s.crab, s.le, s.glass, s.revasc
	crab := s.CRAB()
	le := s.LifeExpectancy()

	snap := Snapshot{
		ABI:                   v.ABI,
		TBI:                   v.TBI,
		PSAT:                  v.PSAT,
		TcPO2:                 copyFloat(v.TcPO2),
		ArterialCalcification: v.ArterialCalcification,
		Diabetes:              v.Diabetes,

		Necrosis:             copyBool(w.Necrosis),
		NecrosisType:         w.NecrosisType,
		GangreneSpread:       w.GangreneSpread,
		UlcerLocation:        w.UlcerLocation,
		UlcerDepth:           w.UlcerDepth,
		UlcerBoneInvolvement: w.UlcerBoneInvolvement,

		Swelling:       i.Swelling,
		Erythema:       i.Erythema,
		Pain:           i.Pain,
		Warmth:         i.Warmth,
		Purulence:      i.Purulence,
		Tachycardia:    i.Tachycardia,
		Tachypnea:      i.Tachypnea,
		Temperature:    i.Temperature,
		Leukocytosis:   i.Leukocytosis,
		SIRSAbsentType: i.SIRSAbsentType,
		HyperemiaSize:  i.HyperemiaSize,

		CRABAgeOver75:          c.AgeOver75,
		CRABPriorProcedure:     c.PriorProcedure,
		CRABPainAndNecrosis:    c.PainAndNecrosis,
		CRABPartialDependence:  c.PartialDependence,
		CRABCompleteDependence: c.CompleteDependence,
		CRABHemodialysis:       c.Hemodialysis,
		CRABAnginaOrMI:         c.AnginaOrMI,
		CRABUrgentOperation:    c.UrgentOperation,

		LENonAmbulatory:   l.NonAmbulatory,
		LERutherford5:     l.Rutherford5,
		LERutherford6:     l.Rutherford6,
		LECerebrovascular: l.Cerebrovascular,
		LEHemodialysis:    l.Hemodialysis,
		LEBMI18To19:       l.BMI18To19,
		LEBMIUnder18:      l.BMIUnder18,
		LEAge65To79:       l.Age65To79,
		LEAge80Plus:       l.Age80Plus,
		LEEF40To49:        l.EF40To49,
		LEEFUnder40:       l.EFUnder40,

		AortoIliac:          g.AortoIliac,
		FemoroPopliteal:     g.FemoroPopliteal,
		Infrapopliteal:      g.Infrapopliteal,
		SevereCalcification: g.SevereCalcification,
		Submalleolar:        g.Submalleolar,

		CannotSaveLimb:       r.CannotSaveLimb,
		AutologousVein:       copyBool(r.AutologousVein),
		SurgicalRiskAccepted: copyBool(r.SurgicalRiskAccepted),

		CompletedSteps: []string{},

		WLevel:                   s.WLevel(),
		ILevel:                   s.ILevel(),
		FILevel:                  s.FILevel(),
		RequiresTcPO2:            s.RequiresTcPO2(),
		ClinicalStage:            s.DisplayStage(),
		AmputationRisk:           s.AmputationRisk(),
		RevascularizationBenefit: s.RevascularizationBenefit(),
		CRABScore:                crab.Score,
		CRABBand:                 crab.Band,
		CRABMortality:            crab.Mortality,
		LEScore:                  le.Score,
		LEBand:                   le.Band,
		LESurvival:               le.Survival,
		SurgicalRisk:             s.SurgicalRisk(),
		InfrapoplitealAdjusted:   g.InfrapoplitealAdjusted,
		GlassStage:               s.GlassStage().String(),
		RecommendedMethod:        s.RecommendedMethod(),
	}
	if s.caseID != uuid.Nil {
		id := s.caseID
		snap.CaseID = &id
	}
	for _, step := range Steps() {
		if s.completed[step] {
			snap.CompletedSteps = append(snap.CompletedSteps, step.String())
		}
	}
	return snap
}

// Import replaces the whole state with the snapshot contents and raises a
// single change notification. Stored derived values are ignored. The same
// corrections the setters apply are applied here: negative measurements are
// clamped, SIRS sub-selections are dropped while a systemic sign is present,
// the later factor of an exclusive pair wins and the adjusted infrapopliteal
// grade is rewritten.
func (s *CaseState) Import(snap Snapshot) error {
	if err := snap.validate(); err != nil {
		return err
	}

	var st CaseState
	st.vascular = VascularData{
		ABI:                   nonNegative(snap.ABI),
		TBI:                   nonNegative(snap.TBI),
		PSAT:                  snap.PSAT,
		ArterialCalcification: snap.ArterialCalcification,
		Diabetes:              snap.Diabetes,
	}
	if snap.TcPO2 != nil {
		n := nonNegative(*snap.TcPO2)
		st.vascular.TcPO2 = &n
	}
	st.wound = WoundData{
		Necrosis:             copyBool(snap.Necrosis),
		NecrosisType:         snap.NecrosisType,
		GangreneSpread:       snap.GangreneSpread,
		UlcerLocation:        snap.UlcerLocation,
		UlcerDepth:           snap.UlcerDepth,
		UlcerBoneInvolvement: snap.UlcerBoneInvolvement,
	}
	st.infection = InfectionData{
		Swelling:     snap.Swelling,
		Erythema:     snap.Erythema,
		Pain:         snap.Pain,
		Warmth:       snap.Warmth,
		Purulence:    snap.Purulence,
		Tachycardia:  snap.Tachycardia,
		Tachypnea:    snap.Tachypnea,
		Temperature:  snap.Temperature,
		Leukocytosis: snap.Leukocytosis,
	}
	st.infection.SetSIRSAbsentType(snap.SIRSAbsentType)
	st.infection.SetHyperemiaSize(snap.HyperemiaSize)
	st.crab = CRABData{
		AgeOver75:          snap.CRABAgeOver75,
		PriorProcedure:     snap.CRABPriorProcedure,
		PainAndNecrosis:    snap.CRABPainAndNecrosis,
		PartialDependence:  snap.CRABPartialDependence,
		CompleteDependence: snap.CRABCompleteDependence,
		Hemodialysis:       snap.CRABHemodialysis,
		AnginaOrMI:         snap.CRABAnginaOrMI,
		UrgentOperation:    snap.CRABUrgentOperation,
	}
	st.le = LifeExpectancyData{
		NonAmbulatory:   snap.LENonAmbulatory,
		Rutherford5:     snap.LERutherford5 && !snap.LERutherford6,
		Rutherford6:     snap.LERutherford6,
		Cerebrovascular: snap.LECerebrovascular,
		Hemodialysis:    snap.LEHemodialysis,
		BMI18To19:       snap.LEBMI18To19 && !snap.LEBMIUnder18,
		BMIUnder18:      snap.LEBMIUnder18,
		Age65To79:       snap.LEAge65To79 && !snap.LEAge80Plus,
		Age80Plus:       snap.LEAge80Plus,
		EF40To49:        snap.LEEF40To49 && !snap.LEEFUnder40,
		EFUnder40:       snap.LEEFUnder40,
	}
	st.glass = GlassData{
		AortoIliac:      snap.AortoIliac,
		FemoroPopliteal: snap.FemoroPopliteal,
		Submalleolar:    snap.Submalleolar,
	}
	st.glass.SetSevereCalcification(snap.SevereCalcification)
	st.glass.SetInfrapopliteal(snap.Infrapopliteal)
	st.revasc = RevascularizationData{
		CannotSaveLimb:       snap.CannotSaveLimb,
		AutologousVein:       copyBool(snap.AutologousVein),
		SurgicalRiskAccepted: copyBool(snap.SurgicalRiskAccepted),
	}

	// Completion flags only survive as an unbroken prefix of the wizard.
	done := map[string]bool{}
	for _, name := range snap.CompletedSteps {
		done[name] = true
	}
	for _, step := range Steps() {
		if !done[step.String()] {
			break
		}
		st.completed[step] = true
	}

	s.vascular, s.wound, s.infection = st.vascular, st.wound, st.infection
	s.crab, s.le, s.glass, s.revasc = st.crab, st.le, st.glass, st.revasc
	s.completed = st.completed
	s.caseID = uuid.Nil
	if snap.CaseID != nil {
		s.caseID = *snap.CaseID
	}
	s.changed()
	return nil
}

func (snap *Snapshot) validate() error {
	checks := []struct {
		field string
		ok    bool
	}{
		{"psat", snap.PSAT.Valid()},
		{"necrosis_type", snap.NecrosisType.Valid()},
		{"gangrene_spread", snap.GangreneSpread.Valid()},
		{"ulcer_location", snap.UlcerLocation.Valid()},
		{"ulcer_depth", snap.UlcerDepth.Valid()},
		{"ulcer_bone_involvement", snap.UlcerBoneInvolvement.Valid()},
		{"sirs_absent_type", snap.SIRSAbsentType.Valid()},
		{"hyperemia_size", snap.HyperemiaSize.Valid()},
		{"aorto_iliac", snap.AortoIliac.Valid()},
		{"femoro_popliteal", snap.FemoroPopliteal <= Segment4},
		{"infrapopliteal", snap.Infrapopliteal <= Segment4},
		{"submalleolar", snap.Submalleolar.Valid()},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%w: %s", ErrInvalidSnapshot, c.field)
		}
	}
	for _, name := range snap.CompletedSteps {
		if _, ok := ParseStep(name); !ok {
			return fmt.Errorf("%w: unknown step %q", ErrInvalidSnapshot, name)
		}
	}
	return nil
}

func copyBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
