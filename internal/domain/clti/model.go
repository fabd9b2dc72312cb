package clti

// PSATBand is the toe/skin perfusion pressure band selected on the ischemia step.
type PSATBand string

const (
	PSATUnset   PSATBand = ""
	PSATNormal  PSATBand = "≥60"
	PSAT40To59  PSATBand = "40-59"
	PSAT30To39  PSATBand = "30-39"
	PSATBelow30 PSATBand = "<30"
)

func (b PSATBand) Valid() bool {
	switch b {
	case PSATUnset, PSATNormal, PSAT40To59, PSAT30To39, PSATBelow30:
		return true
	}
	return false
}

// VascularData holds the hemodynamic measurements entered on the KPI/PPI and
// ischemia steps.
type VascularData struct {
	ABI                   float64  `json:"abi"`
	TBI                   float64  `json:"tbi"`
	PSAT                  PSATBand `json:"psat,omitempty"`
	TcPO2                 *float64 `json:"tcpo2,omitempty"`
	ArterialCalcification bool     `json:"arterial_calcification"`
	Diabetes              bool     `json:"diabetes"`
}

func (v *VascularData) Reset() { *v = VascularData{} }

// NecrosisType distinguishes ulceration from gangrene once tissue loss is present.
type NecrosisType string

const (
	NecrosisUnset    NecrosisType = ""
	NecrosisUlcer    NecrosisType = "ulcer"
	NecrosisGangrene NecrosisType = "gangrene"
)

func (t NecrosisType) Valid() bool {
	return t == NecrosisUnset || t == NecrosisUlcer || t == NecrosisGangrene
}

type GangreneSpread string

const (
	GangreneUnset           GangreneSpread = ""
	GangreneDigits          GangreneSpread = "digits"
	GangreneForefootMidfoot GangreneSpread = "forefoot-midfoot"
	GangreneHeel            GangreneSpread = "heel"
)

func (s GangreneSpread) Valid() bool {
	switch s {
	case GangreneUnset, GangreneDigits, GangreneForefootMidfoot, GangreneHeel:
		return true
	}
	return false
}

type UlcerLocation string

const (
	UlcerLocationUnset   UlcerLocation = ""
	UlcerDistalLegFoot   UlcerLocation = "distal-leg-foot"
	UlcerForefootMidfoot UlcerLocation = "forefoot-midfoot"
	UlcerHeel            UlcerLocation = "heel"
)

func (l UlcerLocation) Valid() bool {
	switch l {
	case UlcerLocationUnset, UlcerDistalLegFoot, UlcerForefootMidfoot, UlcerHeel:
		return true
	}
	return false
}

type UlcerDepth string

const (
	UlcerDepthUnset UlcerDepth = ""
	UlcerShallow    UlcerDepth = "shallow"
	UlcerDeep       UlcerDepth = "deep"
)

func (d UlcerDepth) Valid() bool {
	return d == UlcerDepthUnset || d == UlcerShallow || d == UlcerDeep
}

type BoneInvolvement string

const (
	BoneUnset         BoneInvolvement = ""
	BoneNone          BoneInvolvement = "none"
	BoneDistalPhalanx BoneInvolvement = "distal-phalanx"
	BoneJointTendon   BoneInvolvement = "bone-joint-tendon"
	BoneCalcaneus     BoneInvolvement = "calcaneus"
)

func (b BoneInvolvement) Valid() bool {
	switch b {
	case BoneUnset, BoneNone, BoneDistalPhalanx, BoneJointTendon, BoneCalcaneus:
		return true
	}
	return false
}

// WoundData holds the wound step answers. Necrosis is nil until answered.
type WoundData struct {
	Necrosis             *bool           `json:"necrosis,omitempty"`
	NecrosisType         NecrosisType    `json:"necrosis_type,omitempty"`
	GangreneSpread       GangreneSpread  `json:"gangrene_spread,omitempty"`
	UlcerLocation        UlcerLocation   `json:"ulcer_location,omitempty"`
	UlcerDepth           UlcerDepth      `json:"ulcer_depth,omitempty"`
	UlcerBoneInvolvement BoneInvolvement `json:"ulcer_bone_involvement,omitempty"`
}

func (w *WoundData) Reset() { *w = WoundData{} }

// HasNecrosis reports the answered necrosis flag, false while unanswered.
func (w *WoundData) HasNecrosis() bool {
	return w.Necrosis != nil && *w.Necrosis
}

// SIRSAbsentType narrows a local infection without systemic signs.
type SIRSAbsentType string

const (
	SIRSAbsentUnset SIRSAbsentType = ""
	SIRSAbsentSkin  SIRSAbsentType = "skin"
	SIRSAbsentBone  SIRSAbsentType = "bone"
)

func (t SIRSAbsentType) Valid() bool {
	return t == SIRSAbsentUnset || t == SIRSAbsentSkin || t == SIRSAbsentBone
}

type HyperemiaSize string

const (
	HyperemiaUnset HyperemiaSize = ""
	HyperemiaSmall HyperemiaSize = "0.5-2cm"
	HyperemiaLarge HyperemiaSize = ">2cm"
)

func (h HyperemiaSize) Valid() bool {
	return h == HyperemiaUnset || h == HyperemiaSmall || h == HyperemiaLarge
}

// LocalSign enumerates the five local infection signs.
type LocalSign string

const (
	SignSwelling  LocalSign = "swelling"
	SignErythema  LocalSign = "erythema"
	SignPain      LocalSign = "pain"
	SignWarmth    LocalSign = "warmth"
	SignPurulence LocalSign = "purulence"
)

// SIRSSign enumerates the four systemic inflammatory response signs.
type SIRSSign string

const (
	SIRSTachycardia  SIRSSign = "tachycardia"
	SIRSTachypnea    SIRSSign = "tachypnea"
	SIRSTemperature  SIRSSign = "temperature"
	SIRSLeukocytosis SIRSSign = "leukocytosis"
)

// InfectionData holds the foot infection step answers.
//
// The SIRS-absent sub-selection only applies while no systemic sign is set;
// SetSIRSSign clears it when a systemic sign becomes true.
type InfectionData struct {
	Swelling  bool `json:"swelling"`
	Erythema  bool `json:"erythema"`
	Pain      bool `json:"pain"`
	Warmth    bool `json:"warmth"`
	Purulence bool `json:"purulence"`

	Tachycardia  bool `json:"tachycardia"`
	Tachypnea    bool `json:"tachypnea"`
	Temperature  bool `json:"temperature"`
	Leukocytosis bool `json:"leukocytosis"`

	SIRSAbsentType SIRSAbsentType `json:"sirs_absent_type,omitempty"`
	HyperemiaSize  HyperemiaSize  `json:"hyperemia_size,omitempty"`
}

func (i *InfectionData) Reset() { *i = InfectionData{} }

func (i *InfectionData) SetLocalSign(sign LocalSign, v bool) bool {
	switch sign {
	case SignSwelling:
		i.Swelling = v
	case SignErythema:
		i.Erythema = v
	case SignPain:
		i.Pain = v
	case SignWarmth:
		i.Warmth = v
	case SignPurulence:
		i.Purulence = v
	default:
		return false
	}
	return true
}

// SetSIRSSign sets a systemic sign and clears the SIRS-absent sub-selection
// when the sign becomes true.
func (i *InfectionData) SetSIRSSign(sign SIRSSign, v bool) bool {
	switch sign {
	case SIRSTachycardia:
		i.Tachycardia = v
	case SIRSTachypnea:
		i.Tachypnea = v
	case SIRSTemperature:
		i.Temperature = v
	case SIRSLeukocytosis:
		i.Leukocytosis = v
	default:
		return false
	}
	if v {
		i.SIRSAbsentType = SIRSAbsentUnset
		i.HyperemiaSize = HyperemiaUnset
	}
	return true
}

// SetSIRSAbsentType records the sub-classification. It is ignored while any
// systemic sign is present.
func (i *InfectionData) SetSIRSAbsentType(t SIRSAbsentType) bool {
	if i.HasSIRS() {
		return false
	}
	i.SIRSAbsentType = t
	return true
}

func (i *InfectionData) SetHyperemiaSize(size HyperemiaSize) bool {
	if i.HasSIRS() {
		return false
	}
	i.HyperemiaSize = size
	return true
}

func (i *InfectionData) LocalSignCount() int {
	n := 0
	for _, s := range []bool{i.Swelling, i.Erythema, i.Pain, i.Warmth, i.Purulence} {
		if s {
			n++
		}
	}
	return n
}

func (i *InfectionData) HasSIRS() bool {
	return i.Tachycardia || i.Tachypnea || i.Temperature || i.Leukocytosis
}

// CRABData holds the eight CRAB peri-procedural risk factors.
type CRABData struct {
	AgeOver75          bool `json:"age_over_75"`
	PriorProcedure     bool `json:"prior_procedure"`
	PainAndNecrosis    bool `json:"pain_and_necrosis"`
	PartialDependence  bool `json:"partial_dependence"`
	CompleteDependence bool `json:"complete_dependence"`
	Hemodialysis       bool `json:"hemodialysis"`
	AnginaOrMI         bool `json:"angina_or_mi"`
	UrgentOperation    bool `json:"urgent_operation"`
}

func (c *CRABData) Reset() { *c = CRABData{} }

// LifeExpectancyData holds the eleven two-year life expectancy factors.
// Banded factors come in mutually exclusive pairs enforced by CaseState.
type LifeExpectancyData struct {
	NonAmbulatory   bool `json:"non_ambulatory"`
	Rutherford5     bool `json:"rutherford_5"`
	Rutherford6     bool `json:"rutherford_6"`
	Cerebrovascular bool `json:"cerebrovascular"`
	Hemodialysis    bool `json:"hemodialysis"`
	BMI18To19       bool `json:"bmi_18_19"`
	BMIUnder18      bool `json:"bmi_under_18"`
	Age65To79       bool `json:"age_65_79"`
	Age80Plus       bool `json:"age_80_plus"`
	EF40To49        bool `json:"ef_40_49"`
	EFUnder40       bool `json:"ef_under_40"`
}

func (l *LifeExpectancyData) Reset() { *l = LifeExpectancyData{} }

// RevascularizationData holds the clinician assertions used on the
// revascularization assessment and method steps.
type RevascularizationData struct {
	CannotSaveLimb       bool  `json:"cannot_save_limb"`
	AutologousVein       *bool `json:"autologous_vein,omitempty"`
	SurgicalRiskAccepted *bool `json:"surgical_risk_accepted,omitempty"`
}

func (r *RevascularizationData) Reset() { *r = RevascularizationData{} }
