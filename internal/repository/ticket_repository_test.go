package repository

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/change-compliance/internal/domain"
)

func loadReferenceCatalog(t *testing.T) TicketRepository {
	t.Helper()
	records, err := LoadSeed("")
	require.NoError(t, err)
	repo, err := NewCatalog(records)
	require.NoError(t, err)
	return repo
}

func TestLoadSeed_EmbeddedReferenceTickets(t *testing.T) {
	records, err := LoadSeed("")
	require.NoError(t, err)
	require.Len(t, records, 15)

	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, "CHG0012345", records[0].Number)
	assert.Equal(t, []string{"David Kim", "Lisa Wang"}, records[0].ApprovalChain)
	require.NotNil(t, records[0].RollbackPlan)
	assert.True(t, strings.HasPrefix(*records[0].RollbackPlan, "1. Stop application servers\n2. Restore"))

	assert.Equal(t, "CHG0012348", records[3].Number)
	assert.Nil(t, records[3].ApprovalChain)
	assert.Nil(t, records[3].RollbackPlan)
	assert.NotNil(t, records[3].TestingEvidence)
	assert.Equal(t, "CHG0012359", records[14].Number)
}

func TestLoadSeed_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.yaml")
	content := `
- id: a1
  number: CHG1
  shortDescription: s
  description: d
  requestedBy: r
  assignedTo: x
  priority: Low
  status: Approved
  createdAt: "2025-01-01T00:00:00Z"
  scheduledStartDate: "2025-01-02T00:00:00Z"
  scheduledEndDate: "2025-01-02T01:00:00Z"
  approvalChain: []
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	records, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotNil(t, records[0].ApprovalChain)
	assert.Empty(t, records[0].ApprovalChain)
	assert.Nil(t, records[0].ChangeWindow)
}

func TestDecodeSeed_RejectsUnknownFieldsAndEmptyInput(t *testing.T) {
	_, err := DecodeSeed(strings.NewReader("- id: x\n  colour: red\n"))
	require.Error(t, err)

	_, err = DecodeSeed(strings.NewReader(""))
	require.Error(t, err)

	_, err = LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestNewCatalog_ComputesComplianceInSeedOrder(t *testing.T) {
	repo := loadReferenceCatalog(t)
	require.Equal(t, 15, repo.Len())

	all := repo.All()
	want := map[string]domain.ComplianceStatus{
		"1": domain.ComplianceCompliant, "2": domain.ComplianceWarning, "3": domain.ComplianceCompliant,
		"4": domain.ComplianceNonCompliant, "5": domain.ComplianceWarning, "6": domain.ComplianceCompliant,
		"7": domain.ComplianceCompliant, "8": domain.ComplianceNonCompliant, "9": domain.ComplianceCompliant,
		"10": domain.ComplianceWarning, "11": domain.ComplianceCompliant, "12": domain.ComplianceNonCompliant,
		"13": domain.ComplianceCompliant, "14": domain.ComplianceCompliant, "15": domain.ComplianceWarning,
	}
	for i, ticket := range all {
		assert.Equal(t, strconv.Itoa(i+1), ticket.ID, "catalog order")
		assert.Equal(t, want[ticket.ID], ticket.ComplianceStatus, ticket.Number)
		assert.Len(t, ticket.ValidationResults, 5)
	}
}

func TestNewCatalog_SeedScenarios(t *testing.T) {
	repo := loadReferenceCatalog(t)

	redis, err := repo.GetByID("4")
	require.NoError(t, err)
	assert.Equal(t, "CHG0012348", redis.Number)
	passed := make([]bool, 0, 5)
	for _, r := range redis.ValidationResults {
		passed = append(passed, r.Passed)
	}
	assert.Equal(t, []bool{true, false, true, true, false}, passed)
	assert.Equal(t, domain.ComplianceNonCompliant, redis.ComplianceStatus)

	search, err := repo.GetByID("10")
	require.NoError(t, err)
	assert.Equal(t, "CHG0012354", search.Number)
	assert.Equal(t, []domain.RuleName{domain.RuleTestingEvidence}, search.FailedRules())
	assert.Equal(t, domain.ComplianceWarning, search.ComplianceStatus)
}

func TestGetByID_UnknownReturnsNotFound(t *testing.T) {
	repo := loadReferenceCatalog(t)

	ticket, err := repo.GetByID("999")
	assert.Nil(t, ticket)
	assert.ErrorIs(t, err, ErrTicketNotFound)

	_, err = repo.GetByID("CHG0012345")
	assert.ErrorIs(t, err, ErrTicketNotFound, "lookup is by id, not number")
}

func TestCatalog_ReadersCannotMutateCatalog(t *testing.T) {
	repo := loadReferenceCatalog(t)

	first, err := repo.GetByID("1")
	require.NoError(t, err)
	first.ApprovalChain[0] = "Mallory"
	first.ValidationResults[0].Passed = false

	all := repo.All()
	all[0].ShortDescription = "changed"

	again, err := repo.GetByID("1")
	require.NoError(t, err)
	assert.Equal(t, "David Kim", again.ApprovalChain[0])
	assert.True(t, again.ValidationResults[0].Passed)
	assert.Equal(t, "Database schema migration for user service", again.ShortDescription)
}

func TestNewCatalog_RejectsInvalidRecords(t *testing.T) {
	valid := domain.TicketRecord{ID: "1", Priority: domain.TicketPriorityLow, Status: domain.TicketStatusApproved}

	_, err := NewCatalog([]domain.TicketRecord{valid, valid})
	assert.ErrorContains(t, err, "duplicate id")

	noID := valid
	noID.ID = ""
	_, err = NewCatalog([]domain.TicketRecord{noID})
	assert.ErrorContains(t, err, "id is required")

	badPriority := valid
	badPriority.Priority = "Urgent"
	_, err = NewCatalog([]domain.TicketRecord{badPriority})
	assert.ErrorContains(t, err, "unknown priority")

	badStatus := valid
	badStatus.Status = "Closed"
	_, err = NewCatalog([]domain.TicketRecord{badStatus})
	assert.ErrorContains(t, err, "unknown status")

	empty, err := NewCatalog(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	assert.Empty(t, empty.All())
}
