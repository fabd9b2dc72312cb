package clti

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool        { return &v }
func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func assertLevel(t *testing.T, want *int, got *int) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got)
		return
	}
	require.NotNil(t, got)
	assert.Equal(t, *want, *got)
}

func TestWLevel(t *testing.T) {
	tests := []struct {
		name  string
		wound WoundData
		want  *int
	}{
		{"unanswered", WoundData{}, nil},
		{"no necrosis", WoundData{Necrosis: boolPtr(false)}, intPtr(0)},
		{"necrosis without details", WoundData{Necrosis: boolPtr(true)}, intPtr(1)},
		{"gangrene digits", WoundData{Necrosis: boolPtr(true), NecrosisType: NecrosisGangrene, GangreneSpread: GangreneDigits}, intPtr(2)},
		{"gangrene unset spread", WoundData{Necrosis: boolPtr(true), NecrosisType: NecrosisGangrene}, intPtr(2)},
		{"gangrene forefoot", WoundData{Necrosis: boolPtr(true), NecrosisType: NecrosisGangrene, GangreneSpread: GangreneForefootMidfoot}, intPtr(3)},
		{"gangrene heel", WoundData{Necrosis: boolPtr(true), NecrosisType: NecrosisGangrene, GangreneSpread: GangreneHeel}, intPtr(3)},
		{"calcaneus", WoundData{Necrosis: boolPtr(true), NecrosisType: NecrosisUlcer, UlcerBoneInvolvement: BoneCalcaneus}, intPtr(3)},
		{"joint tendon shallow", WoundData{Necrosis: boolPtr(true), NecrosisType: NecrosisUlcer, UlcerBoneInvolvement: BoneJointTendon, UlcerDepth: UlcerShallow, UlcerLocation: UlcerHeel}, intPtr(2)},
		{"joint tendon deep distal leg", WoundData{Necrosis: boolPtr(true), NecrosisType: NecrosisUlcer, UlcerBoneInvolvement: BoneJointTendon, UlcerDepth: UlcerDeep, UlcerLocation: UlcerDistalLegFoot}, intPtr(2)},
		{"joint tendon deep forefoot", WoundData{Necrosis: boolPtr(true), NecrosisType: NecrosisUlcer, UlcerBoneInvolvement: BoneJointTendon, UlcerDepth: UlcerDeep, UlcerLocation: UlcerForefootMidfoot}, intPtr(3)},
		{"deep heel ulcer", WoundData{Necrosis: boolPtr(true), NecrosisType: NecrosisUlcer, UlcerDepth: UlcerDeep, UlcerLocation: UlcerHeel}, intPtr(3)},
		{"deep distal leg ulcer", WoundData{Necrosis: boolPtr(true), NecrosisType: NecrosisUlcer, UlcerDepth: UlcerDeep, UlcerLocation: UlcerDistalLegFoot}, intPtr(2)},
		{"shallow heel ulcer", WoundData{Necrosis: boolPtr(true), NecrosisType: NecrosisUlcer, UlcerDepth: UlcerShallow, UlcerLocation: UlcerHeel}, intPtr(2)},
		{"shallow forefoot ulcer", WoundData{Necrosis: boolPtr(true), NecrosisType: NecrosisUlcer, UlcerDepth: UlcerShallow, UlcerLocation: UlcerForefootMidfoot}, intPtr(1)},
		{"distal phalanx", WoundData{Necrosis: boolPtr(true), NecrosisType: NecrosisUlcer, UlcerBoneInvolvement: BoneDistalPhalanx}, intPtr(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertLevel(t, tt.want, WLevel(tt.wound))
		})
	}
}

func TestILevel(t *testing.T) {
	tests := []struct {
		name     string
		vascular VascularData
		want     *int
	}{
		{"nothing entered", VascularData{}, nil},
		{"normal abi", VascularData{ABI: 0.9}, intPtr(0)},
		{"abi boundary 0.8", VascularData{ABI: 0.8}, intPtr(0)},
		{"abi 0.6", VascularData{ABI: 0.6}, intPtr(1)},
		{"abi 0.45", VascularData{ABI: 0.45}, intPtr(2)},
		{"abi 0.3", VascularData{ABI: 0.3}, intPtr(3)},
		{"tbi worse than abi", VascularData{ABI: 0.9, TBI: 0.35}, intPtr(2)},
		{"diabetic uses tbi", VascularData{ABI: 0.3, TBI: 0.75, Diabetes: true}, intPtr(0)},
		{"diabetic without tbi uses abi", VascularData{ABI: 0.3, Diabetes: true}, intPtr(3)},
		{"psat normal", VascularData{PSAT: PSATNormal}, intPtr(0)},
		{"psat below 30", VascularData{ABI: 0.9, PSAT: PSATBelow30}, intPtr(3)},
		{"psat 40-59 needs tcpo2", VascularData{ABI: 0.9, PSAT: PSAT40To59}, nil},
		{"psat 30-39 with tcpo2", VascularData{PSAT: PSAT30To39, TcPO2: floatPtr(35)}, intPtr(2)},
		{"calcification needs tcpo2", VascularData{ABI: 1.2, ArterialCalcification: true}, nil},
		{"calcification with tcpo2", VascularData{ABI: 1.2, ArterialCalcification: true, TcPO2: floatPtr(45)}, intPtr(1)},
		{"calcification low tcpo2", VascularData{ArterialCalcification: true, TcPO2: floatPtr(20)}, intPtr(3)},
		{"tcpo2 only", VascularData{TcPO2: floatPtr(65)}, intPtr(0)},
		{"zero abi reads as unanswered", VascularData{ABI: 0}, nil},
		{"zero abi graded by psat", VascularData{ABI: 0, PSAT: PSATBelow30}, intPtr(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertLevel(t, tt.want, ILevel(tt.vascular))
		})
	}
}

func TestRequiresTcPO2(t *testing.T) {
	assert.False(t, RequiresTcPO2(VascularData{ABI: 0.5}))
	assert.False(t, RequiresTcPO2(VascularData{PSAT: PSATNormal}))
	assert.True(t, RequiresTcPO2(VascularData{PSAT: PSAT40To59}))
	assert.True(t, RequiresTcPO2(VascularData{PSAT: PSAT30To39}))
	assert.True(t, RequiresTcPO2(VascularData{ArterialCalcification: true}))
}

func TestFILevel(t *testing.T) {
	tests := []struct {
		name      string
		infection InfectionData
		want      *int
	}{
		{"no signs", InfectionData{}, intPtr(0)},
		{"single local sign", InfectionData{Pain: true}, intPtr(0)},
		{"two signs unclassified", InfectionData{Pain: true, Warmth: true}, intPtr(1)},
		{"two signs skin", InfectionData{Pain: true, Warmth: true, SIRSAbsentType: SIRSAbsentSkin}, intPtr(1)},
		{"two signs small hyperemia", InfectionData{Pain: true, Warmth: true, HyperemiaSize: HyperemiaSmall}, intPtr(1)},
		{"two signs bone", InfectionData{Pain: true, Warmth: true, SIRSAbsentType: SIRSAbsentBone}, intPtr(2)},
		{"two signs large hyperemia", InfectionData{Swelling: true, Purulence: true, HyperemiaSize: HyperemiaLarge}, intPtr(2)},
		{"sirs without local signs", InfectionData{Tachycardia: true}, intPtr(3)},
		{"sirs overrides classification", InfectionData{Pain: true, Warmth: true, Leukocytosis: true, SIRSAbsentType: SIRSAbsentSkin}, intPtr(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertLevel(t, tt.want, FILevel(tt.infection))
		})
	}
}

func TestInfectionData_SIRSClearsSubSelection(t *testing.T) {
	var i InfectionData
	require.True(t, i.SetSIRSAbsentType(SIRSAbsentBone))
	require.True(t, i.SetHyperemiaSize(HyperemiaLarge))
	require.Equal(t, SIRSAbsentBone, i.SIRSAbsentType)

	require.True(t, i.SetSIRSSign(SIRSTemperature, true))
	assert.Equal(t, SIRSAbsentUnset, i.SIRSAbsentType)
	assert.Equal(t, HyperemiaUnset, i.HyperemiaSize)

	assert.False(t, i.SetSIRSAbsentType(SIRSAbsentSkin))
	assert.False(t, i.SetHyperemiaSize(HyperemiaSmall))
	assert.Equal(t, SIRSAbsentUnset, i.SIRSAbsentType, "sub-selection ignored while SIRS present")
	assert.Equal(t, HyperemiaUnset, i.HyperemiaSize)

	assert.False(t, i.SetSIRSSign(SIRSSign("fever"), true))
	assert.False(t, i.SetLocalSign(LocalSign("itch"), true))
}
