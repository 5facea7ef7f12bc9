package stage_test

import (
	"taxflow/domain/stage"
	"testing"

	. "github.com/onsi/gomega"
)

func TestStagesFor(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should expose the fixed ordered sequence per workflow type", func(t *testing.T) {
		stages := stage.StagesFor(stage.VATQuarter)
		Expect(len(stages)).To(Equal(10))
		Expect(stages[0].Stage).To(Equal(stage.PaperworkPendingChase))
		Expect(stages[len(stages)-2].Stage).To(Equal(stage.FiledToHMRC))
		Expect(stages[len(stages)-1].Stage).To(Equal(stage.ClientSelfFiling))

		Expect(stage.StagesFor(stage.LtdAccounts)[9].Stage).To(Equal(stage.AccountsFiled))
		Expect(stage.StagesFor(stage.NonLtdAccounts)[8].Stage).To(Equal(stage.ReturnFiled))
	})

	t.Run("should panic on an unknown workflow type", func(t *testing.T) {
		Expect(func() { stage.StagesFor("PAYROLL") }).To(Panic())
	})

	t.Run("registries should carry a version", func(t *testing.T) {
		Expect(stage.RegistryFor(stage.VATQuarter).Version).To(Equal(1))
	})
}

func TestStageOrdering(t *testing.T) {
	RegisterTestingT(t)

	t.Run("indexOf should reflect declaration order", func(t *testing.T) {
		Expect(stage.IndexOf(stage.VATQuarter, stage.PaperworkPendingChase)).To(Equal(0))
		Expect(stage.IndexOf(stage.VATQuarter, stage.WorkInProgress)).To(Equal(3))
		Expect(stage.IndexOf(stage.VATQuarter, stage.FiledToHMRC)).To(Equal(8))
	})

	t.Run("isPastStage should compare positions", func(t *testing.T) {
		Expect(stage.IsPastStage(stage.VATQuarter, stage.WorkInProgress, stage.PaperworkReceived)).To(BeTrue())
		Expect(stage.IsPastStage(stage.VATQuarter, stage.PaperworkReceived, stage.WorkInProgress)).To(BeFalse())
		Expect(stage.IsPastStage(stage.VATQuarter, stage.WorkInProgress, stage.WorkInProgress)).To(BeFalse())
	})

	t.Run("indexOf should panic on a stage outside the type", func(t *testing.T) {
		Expect(func() { stage.IndexOf(stage.VATQuarter, stage.AccountsReview) }).To(Panic())
	})
}

func TestStageFlags(t *testing.T) {
	RegisterTestingT(t)

	t.Run("self-filing marker should never be selectable", func(t *testing.T) {
		for _, workflowType := range []stage.WorkflowType{stage.VATQuarter, stage.LtdAccounts, stage.NonLtdAccounts} {
			marker := stage.SelfFilingStage(workflowType)
			Expect(marker).To(Equal(stage.ClientSelfFiling))
			Expect(stage.IsSelectable(workflowType, marker)).To(BeFalse())
			Expect(stage.IsTerminal(workflowType, marker)).To(BeTrue())
		}
	})

	t.Run("terminal stage should be the last selectable stage", func(t *testing.T) {
		Expect(stage.TerminalStage(stage.VATQuarter)).To(Equal(stage.FiledToHMRC))
		Expect(stage.TerminalStage(stage.LtdAccounts)).To(Equal(stage.AccountsFiled))
		Expect(stage.TerminalStage(stage.NonLtdAccounts)).To(Equal(stage.ReturnFiled))
		Expect(stage.IsSelectable(stage.VATQuarter, stage.FiledToHMRC)).To(BeTrue())
	})

	t.Run("initial stage should open every sequence", func(t *testing.T) {
		for _, workflowType := range []stage.WorkflowType{stage.VATQuarter, stage.LtdAccounts, stage.NonLtdAccounts} {
			Expect(stage.InitialStage(workflowType)).To(Equal(stage.PaperworkPendingChase))
		}
	})

	t.Run("display names should be human labels", func(t *testing.T) {
		Expect(stage.DisplayName(stage.VATQuarter, stage.FiledToHMRC)).To(Equal("Filed to HMRC"))
		Expect(stage.DisplayName(stage.LtdAccounts, stage.SentForSignature)).To(Equal("Accounts sent for signature"))
	})

	t.Run("contains should not panic on caller input", func(t *testing.T) {
		Expect(stage.Contains(stage.VATQuarter, stage.WorkInProgress)).To(BeTrue())
		Expect(stage.Contains(stage.VATQuarter, "NO_SUCH_STAGE")).To(BeFalse())
		Expect(stage.Contains(stage.VATQuarter, stage.AccountsReview)).To(BeFalse())
	})
}
