package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpilot/internal/domain"
)

func TestJobFlow_NextWalksEveryStep(t *testing.T) {
	steps := domain.JobFlow.Steps()
	require.Len(t, steps, 9)

	for i := 0; i < len(steps)-1; i++ {
		next, err := domain.JobFlow.Next(steps[i])
		require.NoError(t, err)
		assert.Equal(t, steps[i+1], next)
	}
}

func TestJobFlow_NextAtTerminal(t *testing.T) {
	next, err := domain.JobFlow.Next(domain.JobStatusClosed)
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
	assert.Equal(t, domain.JobStatusClosed, next)
}

func TestJobFlow_CancelledIsOutsideFlow(t *testing.T) {
	_, err := domain.JobFlow.Next(domain.JobStatusCancelled)
	assert.ErrorIs(t, err, domain.ErrStatusNotInFlow)
	assert.True(t, domain.ValidJobStatuses[domain.JobStatusCancelled])
	assert.Equal(t, "Cancelled", domain.JobFlow.Meta(domain.JobStatusCancelled).Label)
}

func TestIncidentFlow_Sequence(t *testing.T) {
	status := domain.IncidentStatusOpen
	var err error
	for _, want := range []domain.IncidentStatus{
		domain.IncidentStatusInvestigating,
		domain.IncidentStatusResolved,
		domain.IncidentStatusClosed,
	} {
		status, err = domain.IncidentFlow.Next(status)
		require.NoError(t, err)
		assert.Equal(t, want, status)
	}

	_, err = domain.IncidentFlow.Next(status)
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
}

func TestProposalStatus_CanTransition(t *testing.T) {
	allowed := map[domain.ProposalStatus][]domain.ProposalStatus{
		domain.ProposalStatusDraft:  {domain.ProposalStatusSent},
		domain.ProposalStatusSent:   {domain.ProposalStatusViewed, domain.ProposalStatusApproved, domain.ProposalStatusRejected},
		domain.ProposalStatusViewed: {domain.ProposalStatusApproved, domain.ProposalStatusRejected},
	}

	all := domain.ProposalFlow.Steps()
	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestProposalStatus_Terminal(t *testing.T) {
	assert.True(t, domain.ProposalStatusApproved.IsTerminal())
	assert.True(t, domain.ProposalStatusRejected.IsTerminal())
	assert.False(t, domain.ProposalStatusViewed.IsTerminal())
	assert.False(t, domain.ProposalStatusRejected.IsOpen())
	assert.True(t, domain.ProposalStatusApproved.InPipeline())
	assert.False(t, domain.ProposalStatusDraft.InPipeline())
}

func TestTables(t *testing.T) {
	tables := domain.Tables()
	assert.Len(t, tables.Job, 9)
	assert.Len(t, tables.Proposal, 5)
	assert.Len(t, tables.Incident, 4)
	assert.Len(t, tables.Severity, 4)
	assert.Equal(t, "lead", tables.Job[0].Value)
	assert.Equal(t, "Lead", tables.Job[0].Label)
	assert.Equal(t, "cancelled", tables.Cancelled.Value)
}

func TestFlow_MetaUnknownFallsBack(t *testing.T) {
	meta := domain.JobFlow.Meta(domain.JobStatus("mystery"))
	assert.Equal(t, "mystery", meta.Label)
	assert.NotEmpty(t, meta.Color)
}
