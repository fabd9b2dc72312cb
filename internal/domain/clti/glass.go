package clti

import (
	"encoding/json"
	"fmt"
)

// SegmentGrade is a GLASS femoro-popliteal or infrapopliteal grade 0-4.
// The zero value means no selection has been made.
type SegmentGrade uint8

const (
	SegmentUnset SegmentGrade = iota
	Segment0
	Segment1
	Segment2
	Segment3
	Segment4
)

// SegmentGradeOf converts a 0-4 grade into a SegmentGrade.
func SegmentGradeOf(n int) (SegmentGrade, bool) {
	if n < 0 || n > 4 {
		return SegmentUnset, false
	}
	return SegmentGrade(n + 1), true
}

// Int returns the numeric grade and whether one is set.
func (g SegmentGrade) Int() (int, bool) {
	if g == SegmentUnset || g > Segment4 {
		return 0, false
	}
	return int(g) - 1, true
}

func (g SegmentGrade) MarshalJSON() ([]byte, error) {
	n, ok := g.Int()
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(n)
}

func (g *SegmentGrade) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*g = SegmentUnset
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	sg, ok := SegmentGradeOf(n)
	if !ok {
		return fmt.Errorf("segment grade out of range: %d", n)
	}
	*g = sg
	return nil
}

// AdjustInfrapopliteal bumps the infrapopliteal grade one step for severe
// calcification, capped at 4.
func AdjustInfrapopliteal(base SegmentGrade, severeCalcification bool) SegmentGrade {
	if base == SegmentUnset || !severeCalcification || base >= Segment4 {
		return base
	}
	return base + 1
}

type AortoIliacGrade string

const (
	AortoIliacUnset AortoIliacGrade = ""
	AortoIliacNone  AortoIliacGrade = "none"
	AortoIliac1     AortoIliacGrade = "AI1"
	AortoIliac2     AortoIliacGrade = "AI2"
)

func (g AortoIliacGrade) Valid() bool {
	switch g {
	case AortoIliacUnset, AortoIliacNone, AortoIliac1, AortoIliac2:
		return true
	}
	return false
}

// SubmalleolarGrade is the GLASS pedal (inframalleolar) descriptor.
type SubmalleolarGrade string

const (
	SubmalleolarUnset SubmalleolarGrade = ""
	SubmalleolarP0    SubmalleolarGrade = "P0"
	SubmalleolarP1    SubmalleolarGrade = "P1"
	SubmalleolarP2    SubmalleolarGrade = "P2"
)

func (g SubmalleolarGrade) Valid() bool {
	switch g {
	case SubmalleolarUnset, SubmalleolarP0, SubmalleolarP1, SubmalleolarP2:
		return true
	}
	return false
}

// GlassStage is the combined GLASS stage I-III. The zero value is undetermined.
type GlassStage uint8

const (
	GlassUndetermined GlassStage = iota
	GlassI
	GlassII
	GlassIII
)

func (s GlassStage) String() string {
	switch s {
	case GlassI:
		return "I"
	case GlassII:
		return "II"
	case GlassIII:
		return "III"
	}
	return "undetermined"
}

// glassMatrix[fp][ip] per the Global Vascular Guidelines; FP0/IP0 has no stage.
var glassMatrix = [5][5]GlassStage{
	{GlassUndetermined, GlassI, GlassI, GlassII, GlassIII},
	{GlassI, GlassI, GlassII, GlassII, GlassIII},
	{GlassI, GlassII, GlassII, GlassII, GlassIII},
	{GlassII, GlassII, GlassII, GlassIII, GlassIII},
	{GlassIII, GlassIII, GlassIII, GlassIII, GlassIII},
}

// CombineGlass returns the GLASS stage for a femoro-popliteal grade and an
// (already calcification-adjusted) infrapopliteal grade.
func CombineGlass(fp, ip SegmentGrade) GlassStage {
	f, ok := fp.Int()
	if !ok {
		return GlassUndetermined
	}
	i, ok := ip.Int()
	if !ok {
		return GlassUndetermined
	}
	return glassMatrix[f][i]
}

// GlassData holds the anatomical selections of the GLASS steps.
// InfrapoplitealAdjusted is written by the setters, never by callers.
type GlassData struct {
	AortoIliac             AortoIliacGrade   `json:"aorto_iliac,omitempty"`
	FemoroPopliteal        SegmentGrade      `json:"femoro_popliteal"`
	Infrapopliteal         SegmentGrade      `json:"infrapopliteal"`
	SevereCalcification    bool              `json:"severe_calcification"`
	InfrapoplitealAdjusted SegmentGrade      `json:"infrapopliteal_adjusted"`
	Submalleolar           SubmalleolarGrade `json:"submalleolar,omitempty"`
}

func (g *GlassData) Reset() { *g = GlassData{} }

func (g *GlassData) SetInfrapopliteal(base SegmentGrade) {
	g.Infrapopliteal = base
	g.InfrapoplitealAdjusted = AdjustInfrapopliteal(base, g.SevereCalcification)
}

func (g *GlassData) SetSevereCalcification(v bool) {
	g.SevereCalcification = v
	g.InfrapoplitealAdjusted = AdjustInfrapopliteal(g.Infrapopliteal, v)
}

func (g *GlassData) Stage() GlassStage {
	return CombineGlass(g.FemoroPopliteal, g.InfrapoplitealAdjusted)
}
