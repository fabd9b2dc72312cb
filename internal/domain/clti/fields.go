package clti

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidField = errors.New("invalid field update")

var errNegative = errors.New("must not be negative")

// FieldUpdate sets one clinical fact by name. Value holds the JSON encoding
// of the new value: a number, a string, a boolean or null for tcpo2.
type FieldUpdate struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

type fieldSetter func(s *CaseState, raw json.RawMessage) error

func decodeBool(raw json.RawMessage) (bool, error) {
	var v bool
	err := json.Unmarshal(raw, &v)
	return v, err
}

func decodeFloat(raw json.RawMessage) (float64, error) {
	var v float64
	err := json.Unmarshal(raw, &v)
	return v, err
}

func decodeString(raw json.RawMessage) (string, error) {
	var v string
	err := json.Unmarshal(raw, &v)
	return v, err
}

func boolField(set func(*CaseState, bool)) fieldSetter {
	return func(s *CaseState, raw json.RawMessage) error {
		v, err := decodeBool(raw)
		if err != nil {
			return err
		}
		set(s, v)
		return nil
	}
}

func floatField(set func(*CaseState, float64)) fieldSetter {
	return func(s *CaseState, raw json.RawMessage) error {
		v, err := decodeFloat(raw)
		if err != nil {
			return err
		}
		if v < 0 {
			return errNegative
		}
		set(s, v)
		return nil
	}
}

// enumField decodes a string and rejects values outside the closed set.
func enumField[T ~string](valid func(T) bool, set func(*CaseState, T)) fieldSetter {
	return func(s *CaseState, raw json.RawMessage) error {
		v, err := decodeString(raw)
		if err != nil {
			return err
		}
		if !valid(T(v)) {
			return fmt.Errorf("unknown value %q", v)
		}
		set(s, T(v))
		return nil
	}
}

func segmentField(set func(*CaseState, SegmentGrade)) fieldSetter {
	return func(s *CaseState, raw json.RawMessage) error {
		var g SegmentGrade
		if err := json.Unmarshal(raw, &g); err != nil {
			return err
		}
		set(s, g)
		return nil
	}
}

func setTcPO2Field(s *CaseState, raw json.RawMessage) error {
	var v *float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	if v != nil && *v < 0 {
		return errNegative
	}
	s.SetTcPO2(v)
	return nil
}

var fieldTable = map[string]fieldSetter{
	"abi":                    floatField((*CaseState).SetABI),
	"tbi":                    floatField((*CaseState).SetTBI),
	"psat":                   enumField(PSATBand.Valid, (*CaseState).SetPSAT),
	"tcpo2":                  setTcPO2Field,
	"arterial_calcification": boolField((*CaseState).SetArterialCalcification),
	"diabetes":               boolField((*CaseState).SetDiabetes),

	"necrosis":               boolField((*CaseState).SetNecrosis),
	"necrosis_type":          enumField(NecrosisType.Valid, (*CaseState).SetNecrosisType),
	"gangrene_spread":        enumField(GangreneSpread.Valid, (*CaseState).SetGangreneSpread),
	"ulcer_location":         enumField(UlcerLocation.Valid, (*CaseState).SetUlcerLocation),
	"ulcer_depth":            enumField(UlcerDepth.Valid, (*CaseState).SetUlcerDepth),
	"ulcer_bone_involvement": enumField(BoneInvolvement.Valid, (*CaseState).SetUlcerBoneInvolvement),

	"sirs_absent_type": enumField(SIRSAbsentType.Valid, (*CaseState).SetSIRSAbsentType),
	"hyperemia_size":   enumField(HyperemiaSize.Valid, (*CaseState).SetHyperemiaSize),

	"aorto_iliac":          enumField(AortoIliacGrade.Valid, (*CaseState).SetAortoIliac),
	"femoro_popliteal":     segmentField((*CaseState).SetFemoroPopliteal),
	"infrapopliteal":       segmentField((*CaseState).SetInfrapopliteal),
	"severe_calcification": boolField((*CaseState).SetSevereCalcification),
	"submalleolar":         enumField(SubmalleolarGrade.Valid, (*CaseState).SetSubmalleolar),

	"cannot_save_limb":       boolField((*CaseState).SetCannotSaveLimb),
	"autologous_vein":        boolField((*CaseState).SetAutologousVein),
	"surgical_risk_accepted": boolField((*CaseState).SetSurgicalRiskAccepted),
}

func init() {
	for _, sign := range []LocalSign{SignSwelling, SignErythema, SignPain, SignWarmth, SignPurulence} {
		sign := sign
		fieldTable[string(sign)] = boolField(func(s *CaseState, v bool) { s.SetLocalSign(sign, v) })
	}
	for _, sign := range []SIRSSign{SIRSTachycardia, SIRSTachypnea, SIRSTemperature, SIRSLeukocytosis} {
		sign := sign
		fieldTable[string(sign)] = boolField(func(s *CaseState, v bool) { s.SetSIRSSign(sign, v) })
	}
	for _, f := range []CRABFactor{
		CRABAgeOver75, CRABPriorProcedure, CRABPainAndNecrosis, CRABPartialDependence,
		CRABCompleteDependence, CRABHemodialysis, CRABAnginaOrMI, CRABUrgentOperation,
	} {
		f := f
		fieldTable["crab."+string(f)] = boolField(func(s *CaseState, v bool) { s.SetCRABFactor(f, v) })
	}
	for _, f := range []LEFactor{
		LENonAmbulatory, LERutherford5, LERutherford6, LECerebrovascular, LEHemodialysis,
		LEBMI18To19, LEBMIUnder18, LEAge65To79, LEAge80Plus, LEEF40To49, LEEFUnder40,
	} {
		f := f
		fieldTable["le."+string(f)] = boolField(func(s *CaseState, v bool) { s.SetLifeExpectancyFactor(f, v) })
	}
}

// FieldNames lists every field accepted by Apply, sorted.
func FieldNames() []string {
	names := make([]string, 0, len(fieldTable))
	for n := range fieldTable {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Apply dispatches a field update to the matching setter.
func (s *CaseState) Apply(u FieldUpdate) error {
	set, ok := fieldTable[strings.TrimSpace(u.Field)]
	if !ok {
		return fmt.Errorf("%w: unknown field %q", ErrInvalidField, u.Field)
	}
	if len(u.Value) == 0 {
		return fmt.Errorf("%w: %s: missing value", ErrInvalidField, u.Field)
	}
	if err := set(s, u.Value); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidField, u.Field, err)
	}
	return nil
}
