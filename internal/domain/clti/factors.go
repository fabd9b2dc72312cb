package clti

// CRABFactor names one CRAB risk factor.
type CRABFactor string

const (
	CRABAgeOver75          CRABFactor = "age_over_75"
	CRABPriorProcedure     CRABFactor = "prior_procedure"
	CRABPainAndNecrosis    CRABFactor = "pain_and_necrosis"
	CRABPartialDependence  CRABFactor = "partial_dependence"
	CRABCompleteDependence CRABFactor = "complete_dependence"
	CRABHemodialysis       CRABFactor = "hemodialysis"
	CRABAnginaOrMI         CRABFactor = "angina_or_mi"
	CRABUrgentOperation    CRABFactor = "urgent_operation"
)

func (d *CRABData) field(f CRABFactor) *bool {
	switch f {
	case CRABAgeOver75:
		return &d.AgeOver75
	case CRABPriorProcedure:
		return &d.PriorProcedure
	case CRABPainAndNecrosis:
		return &d.PainAndNecrosis
	case CRABPartialDependence:
		return &d.PartialDependence
	case CRABCompleteDependence:
		return &d.CompleteDependence
	case CRABHemodialysis:
		return &d.Hemodialysis
	case CRABAnginaOrMI:
		return &d.AnginaOrMI
	case CRABUrgentOperation:
		return &d.UrgentOperation
	}
	return nil
}

// Get returns the factor value; unknown factors read as false.
func (d CRABData) Get(f CRABFactor) bool {
	if p := d.field(f); p != nil {
		return *p
	}
	return false
}

// LEFactor names one two-year life expectancy factor.
type LEFactor string

const (
	LENonAmbulatory   LEFactor = "non_ambulatory"
	LERutherford5     LEFactor = "rutherford_5"
	LERutherford6     LEFactor = "rutherford_6"
	LECerebrovascular LEFactor = "cerebrovascular"
	LEHemodialysis    LEFactor = "hemodialysis"
	LEBMI18To19       LEFactor = "bmi_18_19"
	LEBMIUnder18      LEFactor = "bmi_under_18"
	LEAge65To79       LEFactor = "age_65_79"
	LEAge80Plus       LEFactor = "age_80_plus"
	LEEF40To49        LEFactor = "ef_40_49"
	LEEFUnder40       LEFactor = "ef_under_40"
)

// exclusivePairs lists the banded factors that cannot both be true.
var exclusivePairs = map[LEFactor]LEFactor{
	LERutherford5: LERutherford6,
	LERutherford6: LERutherford5,
	LEBMI18To19:   LEBMIUnder18,
	LEBMIUnder18:  LEBMI18To19,
	LEAge65To79:   LEAge80Plus,
	LEAge80Plus:   LEAge65To79,
	LEEF40To49:    LEEFUnder40,
	LEEFUnder40:   LEEF40To49,
}

// ExclusivePartner returns the factor that is cleared when f becomes true.
func ExclusivePartner(f LEFactor) (LEFactor, bool) {
	p, ok := exclusivePairs[f]
	return p, ok
}

func (d *LifeExpectancyData) field(f LEFactor) *bool {
	switch f {
	case LENonAmbulatory:
		return &d.NonAmbulatory
	case LERutherford5:
		return &d.Rutherford5
	case LERutherford6:
		return &d.Rutherford6
	case LECerebrovascular:
		return &d.Cerebrovascular
	case LEHemodialysis:
		return &d.Hemodialysis
	case LEBMI18To19:
		return &d.BMI18To19
	case LEBMIUnder18:
		return &d.BMIUnder18
	case LEAge65To79:
		return &d.Age65To79
	case LEAge80Plus:
		return &d.Age80Plus
	case LEEF40To49:
		return &d.EF40To49
	case LEEFUnder40:
		return &d.EFUnder40
	}
	return nil
}

func (d LifeExpectancyData) Get(f LEFactor) bool {
	if p := d.field(f); p != nil {
		return *p
	}
	return false
}
