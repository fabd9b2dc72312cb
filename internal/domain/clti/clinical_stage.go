package clti

// Risk is a textual risk or benefit estimate.
type Risk string

const (
	RiskVeryLow      Risk = "very-low"
	RiskLow          Risk = "low"
	RiskModerate     Risk = "moderate"
	RiskHigh         Risk = "high"
	RiskVeryHigh     Risk = "very-high"
	RiskUndetermined Risk = "undetermined"
)

const (
	vl = RiskVeryLow
	lo = RiskLow
	mo = RiskModerate
	hi = RiskHigh
)

// UnsalvageableStage is displayed when the clinician asserts the limb cannot be saved.
const UnsalvageableStage = 5

// amputationRisk[w][i][fI]: estimated one-year amputation risk (WIfI, SVS 2014).
var amputationRisk = [4][4][4]Risk{
	{ // W0
		{vl, vl, lo, mo},
		{vl, lo, mo, hi},
		{lo, lo, mo, hi},
		{lo, mo, mo, hi},
	},
	{ // W1
		{vl, lo, mo, hi},
		{vl, lo, mo, hi},
		{lo, mo, hi, hi},
		{mo, mo, hi, hi},
	},
	{ // W2
		{lo, mo, hi, hi},
		{mo, hi, hi, hi},
		{mo, hi, hi, hi},
		{hi, hi, hi, hi},
	},
	{ // W3
		{mo, mo, hi, hi},
		{hi, hi, hi, hi},
		{hi, hi, hi, hi},
		{hi, hi, hi, hi},
	},
}

// revascularizationBenefit[w][i][fI]: likelihood of benefit of revascularization,
// assuming infection can be controlled first.
var revascularizationBenefit = [4][4][4]Risk{
	{ // W0
		{vl, vl, vl, vl},
		{vl, lo, lo, lo},
		{lo, lo, mo, mo},
		{mo, mo, mo, mo},
	},
	{ // W1
		{vl, vl, vl, vl},
		{lo, mo, mo, mo},
		{mo, hi, hi, hi},
		{hi, hi, hi, hi},
	},
	{ // W2
		{vl, vl, vl, vl},
		{mo, mo, hi, hi},
		{hi, hi, hi, hi},
		{hi, hi, hi, hi},
	},
	{ // W3
		{vl, vl, vl, vl},
		{mo, mo, mo, hi},
		{hi, hi, hi, hi},
		{hi, hi, hi, hi},
	},
}

var stageByRisk = map[Risk]int{vl: 1, lo: 2, mo: 3, hi: 4}

func inRange(p *int) bool { return p != nil && *p >= 0 && *p <= 3 }

// ClinicalStage returns the WIfI clinical stage 1-4, or nil while any level is missing.
func ClinicalStage(w, i, fi *int) *int {
	if !inRange(w) || !inRange(i) || !inRange(fi) {
		return nil
	}
	return lvl(stageByRisk[amputationRisk[*w][*i][*fi]])
}

// AmputationRisk returns the one-year amputation risk for a (W, I, fI) triple.
func AmputationRisk(w, i, fi *int) Risk {
	if !inRange(w) || !inRange(i) || !inRange(fi) {
		return RiskUndetermined
	}
	return amputationRisk[*w][*i][*fi]
}

// RevascularizationBenefit returns the expected benefit of revascularization.
func RevascularizationBenefit(w, i, fi *int) Risk {
	if !inRange(w) || !inRange(i) || !inRange(fi) {
		return RiskUndetermined
	}
	return revascularizationBenefit[*w][*i][*fi]
}
