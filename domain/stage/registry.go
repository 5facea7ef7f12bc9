package stage

import "fmt"

type WorkflowType string

const (
	VATQuarter     WorkflowType = "VAT_QUARTER"
	LtdAccounts    WorkflowType = "LTD_ACCOUNTS"
	NonLtdAccounts WorkflowType = "NON_LTD_ACCOUNTS"
)

type Stage string

type StageDef struct {
	Stage       Stage  `json:"stage"`
	DisplayName string `json:"displayName"`

	// Selectable stages may be chosen directly by staff. Non-selectable
	// stages are reached only through a dedicated action such as the
	// self-filing exit.
	Selectable bool `json:"selectable"`
	Terminal   bool `json:"terminal"`
}

// Registry is the fixed, versioned stage sequence of one workflow type.
// Registries are immutable configuration data shared across callers.
type Registry struct {
	Type    WorkflowType `json:"type"`
	Version int          `json:"version"`
	Stages  []StageDef   `json:"stages"`
}

const (
	PaperworkPendingChase Stage = "PAPERWORK_PENDING_CHASE"
	PaperworkChased       Stage = "PAPERWORK_CHASED"
	PaperworkReceived     Stage = "PAPERWORK_RECEIVED"
	WorkInProgress        Stage = "WORK_IN_PROGRESS"
	QueriesSent           Stage = "QUERIES_SENT"
	QueriesReceived       Stage = "QUERIES_RECEIVED"

	SentForApproval Stage = "SENT_FOR_APPROVAL"
	ClientApproved  Stage = "CLIENT_APPROVED"
	FiledToHMRC     Stage = "FILED_TO_HMRC"

	AccountsReview         Stage = "ACCOUNTS_REVIEW"
	SentForSignature       Stage = "SENT_FOR_SIGNATURE"
	SignedAccountsReceived Stage = "SIGNED_ACCOUNTS_RECEIVED"
	AccountsFiled          Stage = "ACCOUNTS_FILED"

	DraftSentForApproval Stage = "DRAFT_SENT_FOR_APPROVAL"
	ReturnFiled          Stage = "RETURN_FILED"

	// ClientSelfFiling is the alternate terminal marker set by the
	// self-filing exit. It is never directly selectable.
	ClientSelfFiling Stage = "CLIENT_SELF_FILING"
)

var registries = map[WorkflowType]Registry{
	VATQuarter: {
		Type:    VATQuarter,
		Version: 1,
		Stages: []StageDef{
			{Stage: PaperworkPendingChase, DisplayName: "Paperwork to chase", Selectable: true},
			{Stage: PaperworkChased, DisplayName: "Paperwork chased", Selectable: true},
			{Stage: PaperworkReceived, DisplayName: "Paperwork received", Selectable: true},
			{Stage: WorkInProgress, DisplayName: "Work in progress", Selectable: true},
			{Stage: QueriesSent, DisplayName: "Queries sent to client", Selectable: true},
			{Stage: QueriesReceived, DisplayName: "Queries answered", Selectable: true},
			{Stage: SentForApproval, DisplayName: "VAT return sent for approval", Selectable: true},
			{Stage: ClientApproved, DisplayName: "Approved by client", Selectable: true},
			{Stage: FiledToHMRC, DisplayName: "Filed to HMRC", Selectable: true, Terminal: true},
			{Stage: ClientSelfFiling, DisplayName: "Client filing own return", Terminal: true},
		},
	},
	LtdAccounts: {
		Type:    LtdAccounts,
		Version: 1,
		Stages: []StageDef{
			{Stage: PaperworkPendingChase, DisplayName: "Paperwork to chase", Selectable: true},
			{Stage: PaperworkChased, DisplayName: "Paperwork chased", Selectable: true},
			{Stage: PaperworkReceived, DisplayName: "Paperwork received", Selectable: true},
			{Stage: WorkInProgress, DisplayName: "Work in progress", Selectable: true},
			{Stage: QueriesSent, DisplayName: "Queries sent to client", Selectable: true},
			{Stage: QueriesReceived, DisplayName: "Queries answered", Selectable: true},
			{Stage: AccountsReview, DisplayName: "Accounts under review", Selectable: true},
			{Stage: SentForSignature, DisplayName: "Accounts sent for signature", Selectable: true},
			{Stage: SignedAccountsReceived, DisplayName: "Signed accounts received", Selectable: true},
			{Stage: AccountsFiled, DisplayName: "Accounts filed", Selectable: true, Terminal: true},
			{Stage: ClientSelfFiling, DisplayName: "Client filing own accounts", Terminal: true},
		},
	},
	NonLtdAccounts: {
		Type:    NonLtdAccounts,
		Version: 1,
		Stages: []StageDef{
			{Stage: PaperworkPendingChase, DisplayName: "Paperwork to chase", Selectable: true},
			{Stage: PaperworkChased, DisplayName: "Paperwork chased", Selectable: true},
			{Stage: PaperworkReceived, DisplayName: "Paperwork received", Selectable: true},
			{Stage: WorkInProgress, DisplayName: "Work in progress", Selectable: true},
			{Stage: QueriesSent, DisplayName: "Queries sent to client", Selectable: true},
			{Stage: QueriesReceived, DisplayName: "Queries answered", Selectable: true},
			{Stage: DraftSentForApproval, DisplayName: "Draft return sent for approval", Selectable: true},
			{Stage: ClientApproved, DisplayName: "Approved by client", Selectable: true},
			{Stage: ReturnFiled, DisplayName: "Return filed", Selectable: true, Terminal: true},
			{Stage: ClientSelfFiling, DisplayName: "Client filing own return", Terminal: true},
		},
	},
}

func RegistryFor(t WorkflowType) Registry {
	r, found := registries[t]
	if !found {
		panic(fmt.Sprintf("unknown workflow type %q", t))
	}
	return r
}

func StagesFor(t WorkflowType) []StageDef {
	return RegistryFor(t).Stages
}

func Known(t WorkflowType) bool {
	_, found := registries[t]
	return found
}

func DisplayName(t WorkflowType, s Stage) string {
	return defOf(t, s).DisplayName
}

func IsSelectable(t WorkflowType, s Stage) bool {
	return defOf(t, s).Selectable
}

func IsTerminal(t WorkflowType, s Stage) bool {
	return defOf(t, s).Terminal
}

// IndexOf returns the position of s in the type's stage order. Unknown
// stages are a programming error.
func IndexOf(t WorkflowType, s Stage) int {
	for idx, def := range RegistryFor(t).Stages {
		if def.Stage == s {
			return idx
		}
	}
	panic(fmt.Sprintf("unknown stage %q for workflow type %q", s, t))
}

func IsPastStage(t WorkflowType, a, b Stage) bool {
	return IndexOf(t, a) > IndexOf(t, b)
}

func InitialStage(t WorkflowType) Stage {
	return RegistryFor(t).Stages[0].Stage
}

// TerminalStage returns the type's designated filing terminal, the
// last selectable stage of the sequence.
func TerminalStage(t WorkflowType) Stage {
	stages := RegistryFor(t).Stages
	for idx := len(stages) - 1; idx >= 0; idx-- {
		if stages[idx].Terminal && stages[idx].Selectable {
			return stages[idx].Stage
		}
	}
	panic(fmt.Sprintf("workflow type %q has no selectable terminal stage", t))
}

func SelfFilingStage(t WorkflowType) Stage {
	for _, def := range RegistryFor(t).Stages {
		if def.Terminal && !def.Selectable {
			return def.Stage
		}
	}
	panic(fmt.Sprintf("workflow type %q has no self-filing stage", t))
}

func StageCount(t WorkflowType) int {
	return len(RegistryFor(t).Stages)
}

// Contains reports whether s is part of the type's registry without
// treating an unknown stage as a programming error. Transition
// validation uses it to reject caller-supplied stage names.
func Contains(t WorkflowType, s Stage) bool {
	for _, def := range RegistryFor(t).Stages {
		if def.Stage == s {
			return true
		}
	}
	return false
}

func defOf(t WorkflowType, s Stage) StageDef {
	for _, def := range RegistryFor(t).Stages {
		if def.Stage == s {
			return def
		}
	}
	panic(fmt.Sprintf("unknown stage %q for workflow type %q", s, t))
}
