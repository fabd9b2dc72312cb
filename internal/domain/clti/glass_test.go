package clti

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grade(t *testing.T, n int) SegmentGrade {
	t.Helper()
	g, ok := SegmentGradeOf(n)
	require.True(t, ok, "grade %d", n)
	return g
}

func TestSegmentGrade(t *testing.T) {
	_, ok := SegmentGradeOf(5)
	assert.False(t, ok)
	_, ok = SegmentGradeOf(-1)
	assert.False(t, ok)

	n, ok := Segment0.Int()
	assert.True(t, ok)
	assert.Equal(t, 0, n)

	_, ok = SegmentUnset.Int()
	assert.False(t, ok)
}

func TestSegmentGrade_JSON(t *testing.T) {
	var g SegmentGrade
	require.NoError(t, json.Unmarshal([]byte("3"), &g))
	assert.Equal(t, Segment3, g)

	require.NoError(t, json.Unmarshal([]byte("null"), &g))
	assert.Equal(t, SegmentUnset, g)

	assert.Error(t, json.Unmarshal([]byte("7"), &g))

	out, err := json.Marshal(struct {
		A SegmentGrade `json:"a"`
		B SegmentGrade `json:"b"`
	}{Segment0, SegmentUnset})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":0,"b":null}`, string(out))
}

func TestAdjustInfrapopliteal(t *testing.T) {
	assert.Equal(t, Segment2, AdjustInfrapopliteal(Segment2, false))
	assert.Equal(t, Segment3, AdjustInfrapopliteal(Segment2, true))
	assert.Equal(t, Segment4, AdjustInfrapopliteal(Segment4, true), "capped at grade 4")
	assert.Equal(t, SegmentUnset, AdjustInfrapopliteal(SegmentUnset, true))
}

func TestCombineGlass(t *testing.T) {
	tests := []struct {
		fp, ip int
		want   GlassStage
	}{
		{0, 0, GlassUndetermined},
		{0, 1, GlassI},
		{1, 1, GlassI},
		{2, 0, GlassI},
		{1, 2, GlassII},
		{2, 3, GlassII},
		{3, 2, GlassII},
		{3, 3, GlassIII},
		{0, 4, GlassIII},
		{4, 0, GlassIII},
	}
	for _, tt := range tests {
		got := CombineGlass(grade(t, tt.fp), grade(t, tt.ip))
		assert.Equal(t, tt.want, got, "FP%d IP%d", tt.fp, tt.ip)
	}
	assert.Equal(t, GlassUndetermined, CombineGlass(SegmentUnset, Segment2))
	assert.Equal(t, GlassUndetermined, CombineGlass(Segment2, SegmentUnset))
}

func TestGlassData_CalcificationRaisesStage(t *testing.T) {
	var g GlassData
	g.FemoroPopliteal = Segment1
	g.SetInfrapopliteal(Segment1)
	assert.Equal(t, GlassI, g.Stage())

	g.SetSevereCalcification(true)
	assert.Equal(t, Segment2, g.InfrapoplitealAdjusted)
	assert.Equal(t, Segment1, g.Infrapopliteal, "base grade kept")
	assert.Equal(t, GlassII, g.Stage())

	g.SetSevereCalcification(false)
	assert.Equal(t, Segment1, g.InfrapoplitealAdjusted)
}

func TestGlassStage_String(t *testing.T) {
	assert.Equal(t, "I", GlassI.String())
	assert.Equal(t, "II", GlassII.String())
	assert.Equal(t, "III", GlassIII.String())
	assert.Equal(t, "undetermined", GlassUndetermined.String())
}
