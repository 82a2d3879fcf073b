package domain

// StatusMeta carries the display metadata for a status value.
type StatusMeta struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Flow is a fixed, ordered list of statuses advanced one step at a time.
type Flow[S ~string] struct {
	order []S
	meta  map[S]StatusMeta
}

// NewFlow builds a flow from its ordered steps and display metadata.
func NewFlow[S ~string](order []S, meta map[S]StatusMeta) Flow[S] {
	return Flow[S]{order: order, meta: meta}
}

// Steps returns a copy of the ordered steps.
func (f Flow[S]) Steps() []S {
	out := make([]S, len(f.order))
	copy(out, f.order)
	return out
}

// Index returns the position of s in the flow, or -1.
func (f Flow[S]) Index(s S) int {
	for i, v := range f.order {
		if v == s {
			return i
		}
	}
	return -1
}

// Contains reports whether s is a step of the flow.
func (f Flow[S]) Contains(s S) bool {
	return f.Index(s) >= 0
}

// IsTerminal reports whether s is the last step.
func (f Flow[S]) IsTerminal(s S) bool {
	return len(f.order) > 0 && f.order[len(f.order)-1] == s
}

// Next returns the step following s. It returns ErrAlreadyTerminal when s is
// the last step and ErrStatusNotInFlow when s is not a step at all.
func (f Flow[S]) Next(s S) (S, error) {
	i := f.Index(s)
	if i < 0 {
		return s, ErrStatusNotInFlow
	}
	if i == len(f.order)-1 {
		return s, ErrAlreadyTerminal
	}
	return f.order[i+1], nil
}

// Meta returns the label and color for s. Unknown values fall back to the raw value.
func (f Flow[S]) Meta(s S) StatusMeta {
	if m, ok := f.meta[s]; ok {
		return m
	}
	return StatusMeta{Label: string(s), Color: "#9CA3AF"}
}

// JobFlow is the job lifecycle. Cancelled is settable by direct edit only.
var JobFlow = NewFlow(
	[]JobStatus{
		JobStatusLead,
		JobStatusProposalSent,
		JobStatusApproved,
		JobStatusScheduled,
		JobStatusInProgress,
		JobStatusOnHold,
		JobStatusCompleted,
		JobStatusInvoiced,
		JobStatusClosed,
	},
	map[JobStatus]StatusMeta{
		JobStatusLead:         {Label: "Lead", Color: "#6B7280"},
		JobStatusProposalSent: {Label: "Proposal Sent", Color: "#3B82F6"},
		JobStatusApproved:     {Label: "Approved", Color: "#10B981"},
		JobStatusScheduled:    {Label: "Scheduled", Color: "#8B5CF6"},
		JobStatusInProgress:   {Label: "In Progress", Color: "#F59E0B"},
		JobStatusOnHold:       {Label: "On Hold", Color: "#EF4444"},
		JobStatusCompleted:    {Label: "Completed", Color: "#059669"},
		JobStatusInvoiced:     {Label: "Invoiced", Color: "#0EA5E9"},
		JobStatusClosed:       {Label: "Closed", Color: "#374151"},
		JobStatusCancelled:    {Label: "Cancelled", Color: "#991B1B"},
	},
)

// ValidJobStatuses holds every status a job may be set to by direct edit.
var ValidJobStatuses = func() map[JobStatus]bool {
	m := map[JobStatus]bool{JobStatusCancelled: true}
	for _, s := range JobFlow.Steps() {
		m[s] = true
	}
	return m
}()

// ProposalFlow orders proposal statuses for display. Approved and rejected are
// both terminal, so proposals move through CanTransition rather than Next.
var ProposalFlow = NewFlow(
	[]ProposalStatus{
		ProposalStatusDraft,
		ProposalStatusSent,
		ProposalStatusViewed,
		ProposalStatusApproved,
		ProposalStatusRejected,
	},
	map[ProposalStatus]StatusMeta{
		ProposalStatusDraft:    {Label: "Draft", Color: "#6B7280"},
		ProposalStatusSent:     {Label: "Sent", Color: "#3B82F6"},
		ProposalStatusViewed:   {Label: "Viewed", Color: "#8B5CF6"},
		ProposalStatusApproved: {Label: "Approved", Color: "#10B981"},
		ProposalStatusRejected: {Label: "Rejected", Color: "#EF4444"},
	},
)

var proposalTransitions = map[ProposalStatus][]ProposalStatus{
	ProposalStatusDraft:  {ProposalStatusSent},
	ProposalStatusSent:   {ProposalStatusViewed, ProposalStatusApproved, ProposalStatusRejected},
	ProposalStatusViewed: {ProposalStatusApproved, ProposalStatusRejected},
}

// CanTransition reports whether a proposal may move from one status to another.
func (s ProposalStatus) CanTransition(to ProposalStatus) bool {
	for _, next := range proposalTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s ProposalStatus) IsTerminal() bool {
	return s == ProposalStatusApproved || s == ProposalStatusRejected
}

// IsOpen reports whether a proposal still counts as the job's active proposal.
func (s ProposalStatus) IsOpen() bool {
	return s != ProposalStatusRejected
}

// InPipeline reports whether the proposal's price counts toward pipeline value.
func (s ProposalStatus) InPipeline() bool {
	return s == ProposalStatusSent || s == ProposalStatusViewed || s == ProposalStatusApproved
}

// IncidentFlow is the incident resolution flow.
var IncidentFlow = NewFlow(
	[]IncidentStatus{
		IncidentStatusOpen,
		IncidentStatusInvestigating,
		IncidentStatusResolved,
		IncidentStatusClosed,
	},
	map[IncidentStatus]StatusMeta{
		IncidentStatusOpen:          {Label: "Open", Color: "#EF4444"},
		IncidentStatusInvestigating: {Label: "Investigating", Color: "#F59E0B"},
		IncidentStatusResolved:      {Label: "Resolved", Color: "#10B981"},
		IncidentStatusClosed:        {Label: "Closed", Color: "#6B7280"},
	},
)

// SeverityMeta holds display metadata for incident severities, lowest first.
var SeverityMeta = NewFlow(
	[]IncidentSeverity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical},
	map[IncidentSeverity]StatusMeta{
		SeverityLow:      {Label: "Low", Color: "#10B981"},
		SeverityMedium:   {Label: "Medium", Color: "#F59E0B"},
		SeverityHigh:     {Label: "High", Color: "#F97316"},
		SeverityCritical: {Label: "Critical", Color: "#DC2626"},
	},
)

// FlowStep is a serialisable step of a status flow.
type FlowStep struct {
	Value string `json:"value"`
	StatusMeta
}

// FlowTables is the full set of status tables exposed to clients.
type FlowTables struct {
	Job       []FlowStep `json:"job"`
	Proposal  []FlowStep `json:"proposal"`
	Incident  []FlowStep `json:"incident"`
	Severity  []FlowStep `json:"severity"`
	Cancelled FlowStep   `json:"job_cancelled"`
}

func flowSteps[S ~string](f Flow[S]) []FlowStep {
	steps := f.Steps()
	out := make([]FlowStep, len(steps))
	for i, s := range steps {
		out[i] = FlowStep{Value: string(s), StatusMeta: f.Meta(s)}
	}
	return out
}

// Tables returns the display tables for all flows.
func Tables() FlowTables {
	return FlowTables{
		Job:       flowSteps(JobFlow),
		Proposal:  flowSteps(ProposalFlow),
		Incident:  flowSteps(IncidentFlow),
		Severity:  flowSteps(SeverityMeta),
		Cancelled: FlowStep{Value: string(JobStatusCancelled), StatusMeta: JobFlow.Meta(JobStatusCancelled)},
	}
}
