package clti

// Step identifies one wizard page. Steps are completed strictly in order.
type Step int

const (
	StepVascular Step = iota
	StepWound
	StepIschemia
	StepInfection
	StepWIfIResults
	StepCRAB
	StepLifeExpectancy
	StepSurgicalRisk
	StepGlass
	StepSubmalleolar
	StepRevascularizationAssessment
	StepRevascularizationMethod
	stepCount
)

var stepNames = [stepCount]string{
	"vascular",
	"wound",
	"ischemia",
	"infection",
	"wifi-results",
	"crab",
	"life-expectancy",
	"surgical-risk",
	"glass",
	"submalleolar",
	"revascularization-assessment",
	"revascularization-method",
}

func (s Step) String() string {
	if s < 0 || s >= stepCount {
		return "unknown"
	}
	return stepNames[s]
}

func (s Step) Valid() bool { return s >= 0 && s < stepCount }

// ParseStep resolves a step by its name.
func ParseStep(name string) (Step, bool) {
	for i, n := range stepNames {
		if n == name {
			return Step(i), true
		}
	}
	return 0, false
}

// Steps returns every step in wizard order.
func Steps() []Step {
	out := make([]Step, 0, stepCount)
	for s := StepVascular; s < stepCount; s++ {
		out = append(out, s)
	}
	return out
}

// StepStatus is the wizard view of one step.
type StepStatus struct {
	Step        string `json:"step"`
	CanContinue bool   `json:"can_continue"`
	Completed   bool   `json:"completed"`
}

// CanContinue reports whether the data behind a step is complete enough to
// move on. It is evaluated from the current state on every call.
func (s *CaseState) CanContinue(step Step) bool {
	switch step {
	case StepVascular:
		v := s.vascular
		return v.ABI > 0 || v.TBI > 0 || v.PSAT != PSATUnset
	case StepWound:
		return s.WLevel() != nil
	case StepIschemia:
		return s.ILevel() != nil
	case StepInfection:
		return s.FILevel() != nil
	case StepWIfIResults:
		return s.revasc.CannotSaveLimb || s.ClinicalStage() != nil
	case StepCRAB, StepLifeExpectancy, StepSurgicalRisk:
		return true
	case StepGlass:
		return s.glass.AortoIliac != AortoIliacUnset && s.GlassStage() != GlassUndetermined
	case StepSubmalleolar:
		return s.glass.Submalleolar != SubmalleolarUnset
	case StepRevascularizationAssessment:
		return s.revasc.CannotSaveLimb || s.revasc.AutologousVein != nil
	case StepRevascularizationMethod:
		return s.RecommendedMethod() != MethodUndetermined
	}
	return false
}

// Completed reports the stored completion flag of a step.
func (s *CaseState) Completed(step Step) bool {
	return step.Valid() && s.completed[step]
}

// Complete marks a step complete. It refuses when the step cannot continue or
// an earlier step is still open.
func (s *CaseState) Complete(step Step) bool {
	if !step.Valid() || !s.CanContinue(step) {
		return false
	}
	for prev := StepVascular; prev < step; prev++ {
		if !s.completed[prev] {
			return false
		}
	}
	s.completed[step] = true
	s.changed()
	return true
}

// CurrentStep returns the first step that is not completed.
func (s *CaseState) CurrentStep() Step {
	for step := StepVascular; step < stepCount; step++ {
		if !s.completed[step] {
			return step
		}
	}
	return StepRevascularizationMethod
}

// Wizard returns the status of every step in order.
func (s *CaseState) Wizard() []StepStatus {
	out := make([]StepStatus, 0, stepCount)
	for _, step := range Steps() {
		out = append(out, StepStatus{
			Step:        step.String(),
			CanContinue: s.CanContinue(step),
			Completed:   s.completed[step],
		})
	}
	return out
}

// revalidate clears the completion flags from the first completed step whose
// data no longer supports it onward.
func (s *CaseState) revalidate() {
	for step := StepVascular; step < stepCount; step++ {
		if s.completed[step] && !s.CanContinue(step) {
			for later := step; later < stepCount; later++ {
				s.completed[later] = false
			}
			return
		}
	}
}
