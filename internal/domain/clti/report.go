package clti

import (
	"github.com/limbsalvage/clti/internal/platform/reporting"
)

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func optInt(p *int) interface{} {
	if p == nil {
		return "n/a"
	}
	return *p
}

func optBool(p *bool) string {
	if p == nil {
		return "unanswered"
	}
	return yesNo(*p)
}

func segment(g SegmentGrade) interface{} {
	if n, ok := g.Int(); ok {
		return n
	}
	return "n/a"
}

// CaseSheets lays a snapshot out as workbook sheets: the stratification
// summary followed by the factor sheets it was computed from.
func CaseSheets(snap Snapshot) []reporting.Sheet {
	caseID := "unsaved"
	if snap.CaseID != nil {
		caseID = snap.CaseID.String()
	}
	summary := reporting.Sheet{
		Name:    "Summary",
		Headers: []string{"Item", "Value"},
		Rows: [][]interface{}{
			{"Case", caseID},
			{"W level", optInt(snap.WLevel)},
			{"I level", optInt(snap.ILevel)},
			{"fI level", optInt(snap.FILevel)},
			{"WIfI clinical stage", optInt(snap.ClinicalStage)},
			{"Amputation risk", string(snap.AmputationRisk)},
			{"Revascularization benefit", string(snap.RevascularizationBenefit)},
			{"CRAB score", snap.CRABScore},
			{"CRAB band", string(snap.CRABBand)},
			{"30-day mortality", snap.CRABMortality},
			{"2YLE score", snap.LEScore},
			{"2YLE band", string(snap.LEBand)},
			{"2-year survival", snap.LESurvival},
			{"Surgical risk", string(snap.SurgicalRisk)},
			{"GLASS stage", snap.GlassStage},
			{"Recommended method", string(snap.RecommendedMethod)},
			{"Cannot save limb", yesNo(snap.CannotSaveLimb)},
		},
	}

	var tcpo2 interface{} = "n/a"
	if snap.TcPO2 != nil {
		tcpo2 = *snap.TcPO2
	}
	perfusion := reporting.Sheet{
		Name:    "Perfusion",
		Headers: []string{"Measurement", "Value"},
		Rows: [][]interface{}{
			{"ABI", snap.ABI},
			{"TBI", snap.TBI},
			{"PSAT", string(snap.PSAT)},
			{"TcPO2 (mmHg)", tcpo2},
			{"TcPO2 required", yesNo(snap.RequiresTcPO2)},
			{"Arterial calcification", yesNo(snap.ArterialCalcification)},
			{"Diabetes", yesNo(snap.Diabetes)},
		},
	}

	woundInfection := reporting.Sheet{
		Name:    "Wound and infection",
		Headers: []string{"Finding", "Value"},
		Rows: [][]interface{}{
			{"Necrosis", optBool(snap.Necrosis)},
			{"Necrosis type", string(snap.NecrosisType)},
			{"Gangrene spread", string(snap.GangreneSpread)},
			{"Ulcer location", string(snap.UlcerLocation)},
			{"Ulcer depth", string(snap.UlcerDepth)},
			{"Ulcer bone involvement", string(snap.UlcerBoneInvolvement)},
			{"Swelling", yesNo(snap.Swelling)},
			{"Erythema", yesNo(snap.Erythema)},
			{"Pain", yesNo(snap.Pain)},
			{"Warmth", yesNo(snap.Warmth)},
			{"Purulence", yesNo(snap.Purulence)},
			{"Tachycardia", yesNo(snap.Tachycardia)},
			{"Tachypnea", yesNo(snap.Tachypnea)},
			{"Temperature", yesNo(snap.Temperature)},
			{"Leukocytosis", yesNo(snap.Leukocytosis)},
			{"Infection extent", string(snap.SIRSAbsentType)},
			{"Hyperemia", string(snap.HyperemiaSize)},
		},
	}

	crab := reporting.Sheet{
		Name:    "CRAB",
		Headers: []string{"Factor", "Present", "Points"},
		Rows: [][]interface{}{
			{"Age > 75", yesNo(snap.CRABAgeOver75), CRABPointsAgeOver75},
			{"Prior amputation or revascularization", yesNo(snap.CRABPriorProcedure), CRABPointsPriorProcedure},
			{"Pain and necrosis", yesNo(snap.CRABPainAndNecrosis), CRABPointsPainAndNecrosis},
			{"Partial dependence", yesNo(snap.CRABPartialDependence), CRABPointsPartialDependence},
			{"Complete dependence", yesNo(snap.CRABCompleteDependence), CRABPointsCompleteDependence},
			{"Hemodialysis", yesNo(snap.CRABHemodialysis), CRABPointsHemodialysis},
			{"Angina or MI", yesNo(snap.CRABAnginaOrMI), CRABPointsAnginaOrMI},
			{"Urgent operation", yesNo(snap.CRABUrgentOperation), CRABPointsUrgentOperation},
		},
	}

	le := reporting.Sheet{
		Name:    "Life expectancy",
		Headers: []string{"Factor", "Present", "Weight"},
		Rows: [][]interface{}{
			{"Non-ambulatory", yesNo(snap.LENonAmbulatory), LEWeightNonAmbulatory},
			{"Rutherford 5", yesNo(snap.LERutherford5), LEWeightRutherford5},
			{"Rutherford 6", yesNo(snap.LERutherford6), LEWeightRutherford6},
			{"Cerebrovascular disease", yesNo(snap.LECerebrovascular), LEWeightCerebrovascular},
			{"Hemodialysis", yesNo(snap.LEHemodialysis), LEWeightHemodialysis},
			{"BMI 18-19", yesNo(snap.LEBMI18To19), LEWeightBMI18To19},
			{"BMI < 18", yesNo(snap.LEBMIUnder18), LEWeightBMIUnder18},
			{"Age 65-79", yesNo(snap.LEAge65To79), LEWeightAge65To79},
			{"Age ≥ 80", yesNo(snap.LEAge80Plus), LEWeightAge80Plus},
			{"EF 40-49", yesNo(snap.LEEF40To49), LEWeightEF40To49},
			{"EF < 40", yesNo(snap.LEEFUnder40), LEWeightEFUnder40},
		},
	}

	glass := reporting.Sheet{
		Name:    "GLASS",
		Headers: []string{"Segment", "Grade"},
		Rows: [][]interface{}{
			{"Aorto-iliac", string(snap.AortoIliac)},
			{"Femoro-popliteal", segment(snap.FemoroPopliteal)},
			{"Infrapopliteal", segment(snap.Infrapopliteal)},
			{"Severe calcification", yesNo(snap.SevereCalcification)},
			{"Infrapopliteal (adjusted)", segment(snap.InfrapoplitealAdjusted)},
			{"Submalleolar", string(snap.Submalleolar)},
			{"Autologous vein", optBool(snap.AutologousVein)},
			{"Surgical risk accepted", optBool(snap.SurgicalRiskAccepted)},
		},
	}

	return []reporting.Sheet{summary, perfusion, woundInfection, crab, le, glass}
}
