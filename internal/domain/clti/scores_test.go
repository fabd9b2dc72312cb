package clti

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRABScore(t *testing.T) {
	assert.Equal(t, 0, CRABScore(CRABData{}))
	assert.Equal(t, 29, CRABScore(CRABData{
		AgeOver75: true, PriorProcedure: true, PainAndNecrosis: true, PartialDependence: true,
		CompleteDependence: true, Hemodialysis: true, AnginaOrMI: true, UrgentOperation: true,
	}))
	assert.Equal(t, 10, CRABScore(CRABData{CompleteDependence: true, Hemodialysis: true}))
}

func TestCRABBands(t *testing.T) {
	tests := []struct {
		score     int
		band      RiskBand
		mortality string
	}{
		{0, BandLow, "<5%"},
		{6, BandLow, "<5%"},
		{7, BandModerate, ">5%"},
		{10, BandModerate, ">5%"},
		{11, BandHigh, ">5%"},
		{29, BandHigh, ">5%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.band, CRABBand(tt.score), "band for %d", tt.score)
		assert.Equal(t, tt.mortality, CRABMortality(tt.score), "mortality for %d", tt.score)
	}
}

func TestCRABMortality_SevenAndAbove(t *testing.T) {
	for score := 0; score <= 29; score++ {
		want := "<5%"
		if score >= 7 {
			want = ">5%"
		}
		assert.Equal(t, want, CRABMortality(score), "mortality for %d", score)
	}
}

func TestCalculateCRAB(t *testing.T) {
	got := CalculateCRAB(CRABData{AgeOver75: true, UrgentOperation: true})
	assert.Equal(t, CRABResult{Score: 7, Band: BandModerate, Mortality: ">5%"}, got)
}

func TestLifeExpectancyScore(t *testing.T) {
	assert.Equal(t, 0.0, LifeExpectancyScore(LifeExpectancyData{}))
	assert.InDelta(t, 4.0, LifeExpectancyScore(LifeExpectancyData{Age65To79: true, EFUnder40: true}), 1e-9)
	assert.InDelta(t, 8.0, LifeExpectancyScore(LifeExpectancyData{Hemodialysis: true, Age80Plus: true, NonAmbulatory: true}), 1e-9)
}

func TestLifeExpectancyBands(t *testing.T) {
	tests := []struct {
		score    float64
		band     RiskBand
		survival string
	}{
		{0, BandLow, "≥50%"},
		{3, BandLow, "≥50%"},
		{3.5, BandModerate, "≥50%"},
		{6, BandModerate, "≥50%"},
		{7.5, BandHigh, "≥50%"},
		{8, BandHigh, "<50%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.band, LifeExpectancyBand(tt.score), "band for %v", tt.score)
		assert.Equal(t, tt.survival, LifeExpectancySurvival(tt.score), "survival for %v", tt.score)
	}
}

func TestAssessSurgicalRisk(t *testing.T) {
	low := CRABResult{Score: 3, Band: BandLow}
	high := CRABResult{Score: 11, Band: BandHigh}

	assert.Equal(t, SurgicalRiskAcceptable, AssessSurgicalRisk(low, LifeExpectancyResult{Score: 7.5}))
	assert.Equal(t, SurgicalRiskHigh, AssessSurgicalRisk(high, LifeExpectancyResult{}))
	assert.Equal(t, SurgicalRiskHigh, AssessSurgicalRisk(low, LifeExpectancyResult{Score: 8}))
}
