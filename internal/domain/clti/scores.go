package clti

// RiskBand is the three-level band shared by the CRAB and 2YLE scores.
type RiskBand string

const (
	BandLow      RiskBand = "low"
	BandModerate RiskBand = "moderate"
	BandHigh     RiskBand = "high"
)

// CRAB factor weights.
const (
	CRABPointsAgeOver75          = 3
	CRABPointsPriorProcedure     = 3
	CRABPointsPainAndNecrosis    = 3
	CRABPointsPartialDependence  = 3
	CRABPointsCompleteDependence = 6
	CRABPointsHemodialysis       = 4
	CRABPointsAnginaOrMI         = 3
	CRABPointsUrgentOperation    = 4
)

const (
	crabModerateFrom  = 7
	crabHighFrom      = 11
	crabMortalityFrom = 7
)

// CRABResult is the outcome of the CRAB peri-procedural mortality score.
type CRABResult struct {
	Score     int      `json:"score"`
	Band      RiskBand `json:"band"`
	Mortality string   `json:"mortality"`
}

// CRABScore sums the weights of the active factors.
func CRABScore(d CRABData) int {
	score := 0
	for _, f := range []struct {
		on     bool
		points int
	}{
		{d.AgeOver75, CRABPointsAgeOver75},
		{d.PriorProcedure, CRABPointsPriorProcedure},
		{d.PainAndNecrosis, CRABPointsPainAndNecrosis},
		{d.PartialDependence, CRABPointsPartialDependence},
		{d.CompleteDependence, CRABPointsCompleteDependence},
		{d.Hemodialysis, CRABPointsHemodialysis},
		{d.AnginaOrMI, CRABPointsAnginaOrMI},
		{d.UrgentOperation, CRABPointsUrgentOperation},
	} {
		if f.on {
			score += f.points
		}
	}
	return score
}

func CRABBand(score int) RiskBand {
	switch {
	case score >= crabHighFrom:
		return BandHigh
	case score >= crabModerateFrom:
		return BandModerate
	default:
		return BandLow
	}
}

// CRABMortality returns the periprocedural mortality bucket.
func CRABMortality(score int) string {
	if score >= crabMortalityFrom {
		return ">5%"
	}
	return "<5%"
}

func CalculateCRAB(d CRABData) CRABResult {
	score := CRABScore(d)
	return CRABResult{Score: score, Band: CRABBand(score), Mortality: CRABMortality(score)}
}

// Two-year life expectancy factor weights.
const (
	LEWeightNonAmbulatory   = 2.0
	LEWeightRutherford5     = 1.0
	LEWeightRutherford6     = 2.0
	LEWeightCerebrovascular = 1.0
	LEWeightHemodialysis    = 3.0
	LEWeightBMI18To19       = 1.0
	LEWeightBMIUnder18      = 2.0
	LEWeightAge65To79       = 1.5
	LEWeightAge80Plus       = 3.0
	LEWeightEF40To49        = 1.5
	LEWeightEFUnder40       = 2.5
)

const (
	leLowUpTo      = 3.0
	leModerateUpTo = 6.0
	leSurvivalFrom = 8.0
)

// LifeExpectancyResult is the outcome of the two-year life expectancy score.
type LifeExpectancyResult struct {
	Score    float64  `json:"score"`
	Band     RiskBand `json:"band"`
	Survival string   `json:"survival"`
}

func LifeExpectancyScore(d LifeExpectancyData) float64 {
	score := 0.0
	for _, f := range []struct {
		on     bool
		weight float64
	}{
		{d.NonAmbulatory, LEWeightNonAmbulatory},
		{d.Rutherford5, LEWeightRutherford5},
		{d.Rutherford6, LEWeightRutherford6},
		{d.Cerebrovascular, LEWeightCerebrovascular},
		{d.Hemodialysis, LEWeightHemodialysis},
		{d.BMI18To19, LEWeightBMI18To19},
		{d.BMIUnder18, LEWeightBMIUnder18},
		{d.Age65To79, LEWeightAge65To79},
		{d.Age80Plus, LEWeightAge80Plus},
		{d.EF40To49, LEWeightEF40To49},
		{d.EFUnder40, LEWeightEFUnder40},
	} {
		if f.on {
			score += f.weight
		}
	}
	return score
}

func LifeExpectancyBand(score float64) RiskBand {
	switch {
	case score <= leLowUpTo:
		return BandLow
	case score <= leModerateUpTo:
		return BandModerate
	default:
		return BandHigh
	}
}

// LifeExpectancySurvival returns the two-year survival bucket.
func LifeExpectancySurvival(score float64) string {
	if score >= leSurvivalFrom {
		return "<50%"
	}
	return "≥50%"
}

func CalculateLifeExpectancy(d LifeExpectancyData) LifeExpectancyResult {
	score := LifeExpectancyScore(d)
	return LifeExpectancyResult{
		Score:    score,
		Band:     LifeExpectancyBand(score),
		Survival: LifeExpectancySurvival(score),
	}
}
