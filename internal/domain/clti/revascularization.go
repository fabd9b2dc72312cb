package clti

type SurgicalRisk string

const (
	SurgicalRiskAcceptable SurgicalRisk = "acceptable"
	SurgicalRiskHigh       SurgicalRisk = "high"
)

// AssessSurgicalRisk flags a patient as high operative risk when either the
// CRAB band is high or the expected two-year survival is below 50%.
func AssessSurgicalRisk(crab CRABResult, le LifeExpectancyResult) SurgicalRisk {
	if crab.Band == BandHigh || le.Score >= leSurvivalFrom {
		return SurgicalRiskHigh
	}
	return SurgicalRiskAcceptable
}

type RevascularizationMethod string

const (
	MethodUndetermined         RevascularizationMethod = "undetermined"
	MethodPrimaryAmputation    RevascularizationMethod = "primary-amputation"
	MethodConservative         RevascularizationMethod = "conservative"
	MethodEndovascular         RevascularizationMethod = "endovascular"
	MethodEndovascularOrBypass RevascularizationMethod = "endovascular-or-bypass"
	MethodBypass               RevascularizationMethod = "bypass"
)

// RecommendInput gathers everything the method recommendation depends on.
type RecommendInput struct {
	CannotSaveLimb bool
	Benefit        Risk
	SurgicalRisk   SurgicalRisk
	Glass          GlassStage
	AutologousVein *bool
}

// RecommendMethod maps limb status, expected benefit, operative risk and
// anatomy onto a revascularization strategy.
func RecommendMethod(in RecommendInput) RevascularizationMethod {
	if in.CannotSaveLimb {
		return MethodPrimaryAmputation
	}
	switch in.Benefit {
	case RiskUndetermined, "":
		return MethodUndetermined
	case RiskVeryLow:
		return MethodConservative
	}
	if in.Glass == GlassUndetermined {
		return MethodUndetermined
	}
	if in.SurgicalRisk == SurgicalRiskHigh || in.Glass == GlassI {
		return MethodEndovascular
	}
	if in.Glass == GlassII {
		return MethodEndovascularOrBypass
	}
	if in.AutologousVein == nil {
		return MethodUndetermined
	}
	if *in.AutologousVein {
		return MethodBypass
	}
	return MethodEndovascular
}
