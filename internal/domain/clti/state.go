// Package clti stratifies chronic limb-threatening ischemia cases with the
// WIfI, CRAB, two-year life expectancy and GLASS systems.
//
// A CaseState belongs to exactly one case session. Every setter mutates the
// underlying data, applies mutual-exclusion corrections, re-validates the
// wizard and then notifies subscribers synchronously, in registration order,
// before returning. Derived values are recomputed on every read.
package clti

import (
	"github.com/google/uuid"
)

type listener struct {
	id uint64
	fn func()
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	state *CaseState
	id    uint64
}

// Unsubscribe removes the listener. Calling it more than once is a no-op.
func (sub Subscription) Unsubscribe() {
	if sub.state == nil {
		return
	}
	ls := sub.state.listeners
	for i, l := range ls {
		if l.id == sub.id {
			sub.state.listeners = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

// CaseState is the derived-state engine for one case. It is not safe for
// concurrent use; callers serialize access per session.
type CaseState struct {
	caseID uuid.UUID

	vascular  VascularData
	wound     WoundData
	infection InfectionData
	crab      CRABData
	le        LifeExpectancyData
	glass     GlassData
	revasc    RevascularizationData

	completed [stepCount]bool

	listeners []listener
	nextID    uint64
}

func NewCaseState() *CaseState {
	return &CaseState{}
}

// Subscribe registers fn to run after every mutation.
func (s *CaseState) Subscribe(fn func()) Subscription {
	s.nextID++
	s.listeners = append(s.listeners, listener{id: s.nextID, fn: fn})
	return Subscription{state: s, id: s.nextID}
}

func (s *CaseState) changed() {
	s.revalidate()
	ls := make([]listener, len(s.listeners))
	copy(ls, s.listeners)
	for _, l := range ls {
		l.fn()
	}
}

// CaseID is the identifier assigned by the storage collaborator, uuid.Nil
// until the case has been saved.
func (s *CaseState) CaseID() uuid.UUID { return s.caseID }

// SetCaseID echoes back the id assigned on save. It does not notify.
func (s *CaseState) SetCaseID(id uuid.UUID) { s.caseID = id }

// Reset returns every data model and the wizard to the unanswered state.
func (s *CaseState) Reset() {
	s.vascular.Reset()
	s.wound.Reset()
	s.infection.Reset()
	s.crab.Reset()
	s.le.Reset()
	s.glass.Reset()
	s.revasc.Reset()
	s.completed = [stepCount]bool{}
	s.changed()
}

// -- raw facts --

func (s *CaseState) Vascular() VascularData   { return s.vascular }
func (s *CaseState) Wound() WoundData         { return s.wound }
func (s *CaseState) Infection() InfectionData { return s.infection }
func (s *CaseState) CRABFactors() CRABData    { return s.crab }
func (s *CaseState) LifeExpectancyFactors() LifeExpectancyData {
	return s.le
}
func (s *CaseState) Glass() GlassData                         { return s.glass }
func (s *CaseState) Revascularization() RevascularizationData { return s.revasc }

// -- vascular --

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func (s *CaseState) SetABI(v float64) {
	s.vascular.ABI = nonNegative(v)
	s.changed()
}

func (s *CaseState) SetTBI(v float64) {
	s.vascular.TBI = nonNegative(v)
	s.changed()
}

func (s *CaseState) SetPSAT(b PSATBand) {
	if !b.Valid() {
		return
	}
	s.vascular.PSAT = b
	s.changed()
}

// SetTcPO2 records the transcutaneous oxygen pressure; nil clears it.
func (s *CaseState) SetTcPO2(v *float64) {
	if v != nil {
		n := nonNegative(*v)
		v = &n
	}
	s.vascular.TcPO2 = v
	s.changed()
}

func (s *CaseState) SetArterialCalcification(v bool) {
	s.vascular.ArterialCalcification = v
	s.changed()
}

func (s *CaseState) SetDiabetes(v bool) {
	s.vascular.Diabetes = v
	s.changed()
}

// -- wound --

func (s *CaseState) SetNecrosis(v bool) {
	s.wound.Necrosis = &v
	s.changed()
}

func (s *CaseState) SetNecrosisType(t NecrosisType) {
	if !t.Valid() {
		return
	}
	s.wound.NecrosisType = t
	s.changed()
}

func (s *CaseState) SetGangreneSpread(v GangreneSpread) {
	if !v.Valid() {
		return
	}
	s.wound.GangreneSpread = v
	s.changed()
}

func (s *CaseState) SetUlcerLocation(v UlcerLocation) {
	if !v.Valid() {
		return
	}
	s.wound.UlcerLocation = v
	s.changed()
}

func (s *CaseState) SetUlcerDepth(v UlcerDepth) {
	if !v.Valid() {
		return
	}
	s.wound.UlcerDepth = v
	s.changed()
}

func (s *CaseState) SetUlcerBoneInvolvement(v BoneInvolvement) {
	if !v.Valid() {
		return
	}
	s.wound.UlcerBoneInvolvement = v
	s.changed()
}

// -- infection --

func (s *CaseState) SetLocalSign(sign LocalSign, v bool) {
	if s.infection.SetLocalSign(sign, v) {
		s.changed()
	}
}

func (s *CaseState) SetSIRSSign(sign SIRSSign, v bool) {
	if s.infection.SetSIRSSign(sign, v) {
		s.changed()
	}
}

func (s *CaseState) SetSIRSAbsentType(t SIRSAbsentType) {
	if !t.Valid() {
		return
	}
	if s.infection.SetSIRSAbsentType(t) {
		s.changed()
	}
}

func (s *CaseState) SetHyperemiaSize(h HyperemiaSize) {
	if !h.Valid() {
		return
	}
	if s.infection.SetHyperemiaSize(h) {
		s.changed()
	}
}

// -- CRAB / 2YLE --

func (s *CaseState) SetCRABFactor(f CRABFactor, v bool) {
	p := s.crab.field(f)
	if p == nil {
		return
	}
	*p = v
	s.changed()
}

// SetLifeExpectancyFactor sets a factor; setting a banded factor true clears
// its exclusive partner.
func (s *CaseState) SetLifeExpectancyFactor(f LEFactor, v bool) {
	p := s.le.field(f)
	if p == nil {
		return
	}
	*p = v
	if partner, ok := ExclusivePartner(f); ok && v {
		*s.le.field(partner) = false
	}
	s.changed()
}

// -- GLASS --

func (s *CaseState) SetAortoIliac(g AortoIliacGrade) {
	if !g.Valid() {
		return
	}
	s.glass.AortoIliac = g
	s.changed()
}

func (s *CaseState) SetFemoroPopliteal(g SegmentGrade) {
	if g > Segment4 {
		return
	}
	s.glass.FemoroPopliteal = g
	s.changed()
}

func (s *CaseState) SetInfrapopliteal(g SegmentGrade) {
	if g > Segment4 {
		return
	}
	s.glass.SetInfrapopliteal(g)
	s.changed()
}

func (s *CaseState) SetSevereCalcification(v bool) {
	s.glass.SetSevereCalcification(v)
	s.changed()
}

func (s *CaseState) SetSubmalleolar(g SubmalleolarGrade) {
	if !g.Valid() {
		return
	}
	s.glass.Submalleolar = g
	s.changed()
}

// -- revascularization --

func (s *CaseState) SetCannotSaveLimb(v bool) {
	s.revasc.CannotSaveLimb = v
	s.changed()
}

func (s *CaseState) SetAutologousVein(v bool) {
	s.revasc.AutologousVein = &v
	s.changed()
}

func (s *CaseState) SetSurgicalRiskAccepted(v bool) {
	s.revasc.SurgicalRiskAccepted = &v
	s.changed()
}

// -- derived --

func (s *CaseState) WLevel() *int        { return WLevel(s.wound) }
func (s *CaseState) ILevel() *int        { return ILevel(s.vascular) }
func (s *CaseState) FILevel() *int       { return FILevel(s.infection) }
func (s *CaseState) RequiresTcPO2() bool { return RequiresTcPO2(s.vascular) }

// ClinicalStage is the computed WIfI stage 1-4, ignoring the limb override.
func (s *CaseState) ClinicalStage() *int {
	return ClinicalStage(s.WLevel(), s.ILevel(), s.FILevel())
}

// DisplayStage is the stage shown to the clinician: 5 when the limb has been
// declared unsalvageable, the computed stage otherwise.
func (s *CaseState) DisplayStage() *int {
	if s.revasc.CannotSaveLimb {
		return lvl(UnsalvageableStage)
	}
	return s.ClinicalStage()
}

func (s *CaseState) AmputationRisk() Risk {
	if s.revasc.CannotSaveLimb {
		return RiskVeryHigh
	}
	return AmputationRisk(s.WLevel(), s.ILevel(), s.FILevel())
}

func (s *CaseState) RevascularizationBenefit() Risk {
	return RevascularizationBenefit(s.WLevel(), s.ILevel(), s.FILevel())
}

func (s *CaseState) CRAB() CRABResult { return CalculateCRAB(s.crab) }

func (s *CaseState) LifeExpectancy() LifeExpectancyResult {
	return CalculateLifeExpectancy(s.le)
}

func (s *CaseState) SurgicalRisk() SurgicalRisk {
	return AssessSurgicalRisk(s.CRAB(), s.LifeExpectancy())
}

func (s *CaseState) GlassStage() GlassStage { return s.glass.Stage() }

func (s *CaseState) RecommendedMethod() RevascularizationMethod {
	return RecommendMethod(RecommendInput{
		CannotSaveLimb: s.revasc.CannotSaveLimb,
		Benefit:        s.RevascularizationBenefit(),
		SurgicalRisk:   s.SurgicalRisk(),
		Glass:          s.GlassStage(),
		AutologousVein: s.revasc.AutologousVein,
	})
}
