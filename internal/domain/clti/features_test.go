package clti

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"

	"github.com/cucumber/godog"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

// scenarioCase holds the case state of a single scenario.
type scenarioCase struct {
	state *CaseState
}

func InitializeScenario(sc *godog.ScenarioContext) {
	c := &scenarioCase{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		c.state = NewCaseState()
		return ctx, nil
	})

	sc.Step(`^a new case$`, c.aNewCase)
	sc.Step(`^I set "([^"]*)" to (.+)$`, c.iSet)
	sc.Step(`^setting "([^"]*)" to (.+) is rejected$`, c.settingIsRejected)
	sc.Step(`^the (W|I|fI) level is (\d+)$`, c.theLevelIs)
	sc.Step(`^the (W|I|fI) level is undetermined$`, c.theLevelIsUndetermined)
	sc.Step(`^the clinical stage is (\d+)$`, c.theClinicalStageIs)
	sc.Step(`^the clinical stage is undetermined$`, c.theClinicalStageIsUndetermined)
	sc.Step(`^the amputation risk is "([^"]*)"$`, c.theAmputationRiskIs)
	sc.Step(`^the CRAB score is (\d+) with band "([^"]*)"$`, c.theCRABScoreIs)
	sc.Step(`^the CRAB mortality is "([^"]*)"$`, c.theCRABMortalityIs)
	sc.Step(`^the life expectancy score is ([\d.]+) with band "([^"]*)"$`, c.theLifeExpectancyScoreIs)
	sc.Step(`^the surgical risk is "([^"]*)"$`, c.theSurgicalRiskIs)
	sc.Step(`^the GLASS stage is "([^"]*)"$`, c.theGlassStageIs)
	sc.Step(`^the recommended method is "([^"]*)"$`, c.theRecommendedMethodIs)
	sc.Step(`^I complete the "([^"]*)" step$`, c.iCompleteTheStep)
	sc.Step(`^completing the "([^"]*)" step is refused$`, c.completingTheStepIsRefused)
	sc.Step(`^the current step is "([^"]*)"$`, c.theCurrentStepIs)
	sc.Step(`^the "([^"]*)" step can continue$`, c.theStepCanContinue)
	sc.Step(`^the "([^"]*)" step cannot continue$`, c.theStepCannotContinue)
}

func (c *scenarioCase) aNewCase() error {
	c.state = NewCaseState()
	return nil
}

func (c *scenarioCase) iSet(field, value string) error {
	return c.state.Apply(FieldUpdate{Field: field, Value: json.RawMessage(value)})
}

func (c *scenarioCase) settingIsRejected(field, value string) error {
	if err := c.state.Apply(FieldUpdate{Field: field, Value: json.RawMessage(value)}); err == nil {
		return fmt.Errorf("expected %s=%s to be rejected", field, value)
	}
	return nil
}

func (c *scenarioCase) level(name string) *int {
	switch name {
	case "W":
		return c.state.WLevel()
	case "I":
		return c.state.ILevel()
	}
	return c.state.FILevel()
}

func (c *scenarioCase) theLevelIs(name string, want int) error {
	got := c.level(name)
	if got == nil {
		return fmt.Errorf("expected %s level %d, got undetermined", name, want)
	}
	if *got != want {
		return fmt.Errorf("expected %s level %d, got %d", name, want, *got)
	}
	return nil
}

func (c *scenarioCase) theLevelIsUndetermined(name string) error {
	if got := c.level(name); got != nil {
		return fmt.Errorf("expected %s level undetermined, got %d", name, *got)
	}
	return nil
}

func (c *scenarioCase) theClinicalStageIs(want int) error {
	got := c.state.DisplayStage()
	if got == nil || *got != want {
		return fmt.Errorf("expected clinical stage %d, got %v", want, got)
	}
	return nil
}

func (c *scenarioCase) theClinicalStageIsUndetermined() error {
	if got := c.state.DisplayStage(); got != nil {
		return fmt.Errorf("expected no clinical stage, got %d", *got)
	}
	return nil
}

func (c *scenarioCase) theAmputationRiskIs(want string) error {
	if got := c.state.AmputationRisk(); string(got) != want {
		return fmt.Errorf("expected amputation risk %s, got %s", want, got)
	}
	return nil
}

func (c *scenarioCase) theCRABScoreIs(score int, band string) error {
	got := c.state.CRAB()
	if got.Score != score || string(got.Band) != band {
		return fmt.Errorf("expected CRAB %d/%s, got %d/%s", score, band, got.Score, got.Band)
	}
	return nil
}

func (c *scenarioCase) theCRABMortalityIs(want string) error {
	if got := c.state.CRAB().Mortality; got != want {
		return fmt.Errorf("expected CRAB mortality %s, got %s", want, got)
	}
	return nil
}

func (c *scenarioCase) theLifeExpectancyScoreIs(score, band string) error {
	want, err := strconv.ParseFloat(score, 64)
	if err != nil {
		return err
	}
	got := c.state.LifeExpectancy()
	if got.Score != want || string(got.Band) != band {
		return fmt.Errorf("expected 2YLE %v/%s, got %v/%s", want, band, got.Score, got.Band)
	}
	return nil
}

func (c *scenarioCase) theSurgicalRiskIs(want string) error {
	if got := c.state.SurgicalRisk(); string(got) != want {
		return fmt.Errorf("expected surgical risk %s, got %s", want, got)
	}
	return nil
}

func (c *scenarioCase) theGlassStageIs(want string) error {
	if got := c.state.GlassStage().String(); got != want {
		return fmt.Errorf("expected GLASS stage %s, got %s", want, got)
	}
	return nil
}

func (c *scenarioCase) theRecommendedMethodIs(want string) error {
	if got := c.state.RecommendedMethod(); string(got) != want {
		return fmt.Errorf("expected method %s, got %s", want, got)
	}
	return nil
}

func (c *scenarioCase) iCompleteTheStep(name string) error {
	step, ok := ParseStep(name)
	if !ok {
		return fmt.Errorf("unknown step %q", name)
	}
	if !c.state.Complete(step) {
		return fmt.Errorf("step %s could not be completed", name)
	}
	return nil
}

func (c *scenarioCase) completingTheStepIsRefused(name string) error {
	step, ok := ParseStep(name)
	if !ok {
		return fmt.Errorf("unknown step %q", name)
	}
	if c.state.Complete(step) {
		return fmt.Errorf("expected step %s to be refused", name)
	}
	return nil
}

func (c *scenarioCase) theCurrentStepIs(want string) error {
	if got := c.state.CurrentStep().String(); got != want {
		return fmt.Errorf("expected current step %s, got %s", want, got)
	}
	return nil
}

func (c *scenarioCase) canContinue(name string) (bool, error) {
	step, ok := ParseStep(name)
	if !ok {
		return false, fmt.Errorf("unknown step %q", name)
	}
	return c.state.CanContinue(step), nil
}

func (c *scenarioCase) theStepCanContinue(name string) error {
	ok, err := c.canContinue(name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("expected step %s to be continuable", name)
	}
	return nil
}

func (c *scenarioCase) theStepCannotContinue(name string) error {
	ok, err := c.canContinue(name)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("expected step %s to be blocked", name)
	}
	return nil
}
