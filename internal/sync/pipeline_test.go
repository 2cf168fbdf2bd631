package sync

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruitsync-engine/internal/domain"
	"recruitsync-engine/internal/mapper"
)

func newPipeline(src *fakeSource, ats *fakeATS) *Pipeline {
	pm := mapper.ProfileMapper{SourceLabel: "Smart Job Board", ClientLabel: "Direct Hire"}
	return &Pipeline{
		Source:     src,
		Reconciler: &Reconciler{ATS: ats, Mapper: pm},
		Mapper:     pm,
		RegMapper:  mapper.RegistrationMapper{SourceLabel: "Smart Job Board"},
		JobID:      1,
	}
}

func seeker(id int64, email, name string) domain.JobSeeker {
	return domain.JobSeeker{ID: id, Email: email, FullName: name, Phone: "555-0100"}
}

func TestRunGroupsApplicationsByEmail(t *testing.T) {
	src := &fakeSource{
		apps: []domain.Application{
			{ID: 1, JobseekerID: 10, ListingID: 100},
			{ID: 2, JobseekerID: 10, ListingID: 200},
		},
		seekers: map[int64]domain.JobSeeker{10: seeker(10, "one@example.com", "One Person")},
		listings: map[int64]domain.JobListing{
			100: {ID: 100, Title: "Welder"},
			200: {ID: 200, Title: "Driver"},
		},
	}
	ats := newFakeATS()

	result, err := newPipeline(src, ats).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total, "two applications collapse into one group")
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Failed)

	candID := ats.candidates["one@example.com"]
	require.NotEmpty(t, candID)
	assert.Len(t, ats.associations[candID], 2, "one association per distinct listing")
}

func TestRunFirstSeekerSnapshotWins(t *testing.T) {
	// Two seeker profiles share an email. The first one seen fixes the
	// group's snapshot; the second only contributes its application.
	src := &fakeSource{
		apps: []domain.Application{
			{ID: 1, JobseekerID: 10, ListingID: 100},
			{ID: 2, JobseekerID: 11, ListingID: 200},
		},
		seekers: map[int64]domain.JobSeeker{
			10: seeker(10, "dup@example.com", "First Profile"),
			11: seeker(11, "dup@example.com", "Second Profile"),
		},
		listings: map[int64]domain.JobListing{
			100: {ID: 100, Title: "Welder"},
			200: {ID: 200, Title: "Driver"},
		},
	}
	ats := newFakeATS()

	result, err := newPipeline(src, ats).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	candID := ats.candidates["dup@example.com"]
	assert.Equal(t, "First", ats.stored[candID].FirstName)
	assert.Len(t, ats.associations[candID], 2)
}

func TestRunIsolatesGroupFailures(t *testing.T) {
	src := &fakeSource{
		seekers:  map[int64]domain.JobSeeker{},
		listings: map[int64]domain.JobListing{100: {ID: 100, Title: "Welder"}},
	}
	for i := int64(1); i <= 5; i++ {
		src.apps = append(src.apps, domain.Application{ID: i, JobseekerID: i, ListingID: 100})
		src.seekers[i] = seeker(i, fmt.Sprintf("person%d@example.com", i), "A Person")
	}
	ats := newFakeATS()
	ats.failCreateEmail = "person3@example.com"

	result, err := newPipeline(src, ats).Run(context.Background())
	require.NoError(t, err, "a single bad group never fails the run")

	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 4, result.Created+result.Updated)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "person3@example.com", result.Errors[0].Identifier)
}

func TestRunSkipsUnresolvableApplications(t *testing.T) {
	src := &fakeSource{
		apps: []domain.Application{
			{ID: 1, JobseekerID: 0, ListingID: 100},  // no seeker id at all
			{ID: 2, JobseekerID: 99, ListingID: 100}, // seeker fetch fails
			{ID: 3, JobseekerID: 10, ListingID: 100},
		},
		seekers: map[int64]domain.JobSeeker{
			10: seeker(10, "ok@example.com", "Fine Person"),
		},
		listings: map[int64]domain.JobListing{100: {ID: 100, Title: "Welder"}},
	}
	ats := newFakeATS()

	result, err := newPipeline(src, ats).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 0, result.Failed, "unresolvable applications are skips, not failures")
	assert.Equal(t, 1, result.Created)
}

func TestRunSkipsSeekersWithoutEmail(t *testing.T) {
	src := &fakeSource{
		apps:     []domain.Application{{ID: 1, JobseekerID: 10, ListingID: 100}},
		seekers:  map[int64]domain.JobSeeker{10: {ID: 10, FullName: "No Email"}},
		listings: map[int64]domain.JobListing{100: {ID: 100}},
	}
	ats := newFakeATS()

	result, err := newPipeline(src, ats).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 1, result.Skipped)
}

func TestRunUsesPlaceholderListing(t *testing.T) {
	src := &fakeSource{
		apps:     []domain.Application{{ID: 1, JobseekerID: 10, ListingID: 404}},
		seekers:  map[int64]domain.JobSeeker{10: seeker(10, "a@example.com", "A Person")},
		listings: map[int64]domain.JobListing{},
	}
	ats := newFakeATS()

	result, err := newPipeline(src, ats).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	// The opening still gets created, from the placeholder.
	require.Contains(t, ats.openings, "404")
}

func TestRunAbortsWhenDestinationAuthFails(t *testing.T) {
	// Bad destination credentials are a run-level failure: no group may
	// be counted as failed, and the board is never even fetched.
	src := &fakeSource{
		apps: []domain.Application{
			{ID: 1, JobseekerID: 10, ListingID: 100},
			{ID: 2, JobseekerID: 11, ListingID: 100},
		},
		seekers: map[int64]domain.JobSeeker{
			10: seeker(10, "a@example.com", "A Person"),
			11: seeker(11, "b@example.com", "B Person"),
		},
		listings: map[int64]domain.JobListing{100: {ID: 100}},
	}
	ats := newFakeATS()
	ats.authErr = fmt.Errorf("invalid refresh token")

	result, err := newPipeline(src, ats).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "destination auth")
	assert.Equal(t, domain.BatchResult{}, result, "zero processed records")
	assert.Equal(t, 0, src.listCalls, "fetch never starts")
}

func TestRunAssociationFailureFailsGroup(t *testing.T) {
	src := &fakeSource{
		apps:     []domain.Application{{ID: 1, JobseekerID: 10, ListingID: 100}},
		seekers:  map[int64]domain.JobSeeker{10: seeker(10, "a@example.com", "A Person")},
		listings: map[int64]domain.JobListing{100: {ID: 100, Title: "Welder"}},
	}
	ats := newFakeATS()
	ats.failAssociate = true

	result, err := newPipeline(src, ats).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created+result.Updated)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "a@example.com", result.Errors[0].Identifier)
}

func TestRunAbortsWhenFetchFails(t *testing.T) {
	src := &fakeSource{listErr: fmt.Errorf("board is down")}
	ats := newFakeATS()

	result, err := newPipeline(src, ats).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.BatchResult{}, result, "nothing is processed on a run-level failure")
}

func TestRunPaginatesToTotal(t *testing.T) {
	src := &fakeSource{
		seekers:  map[int64]domain.JobSeeker{},
		listings: map[int64]domain.JobListing{100: {ID: 100}},
	}
	for i := int64(1); i <= 250; i++ {
		src.apps = append(src.apps, domain.Application{ID: i, JobseekerID: i, ListingID: 100})
		src.seekers[i] = seeker(i, fmt.Sprintf("p%d@example.com", i), "P Erson")
	}
	ats := newFakeATS()

	result, err := newPipeline(src, ats).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, src.listCalls, "250 applications at page size 100")
	assert.Equal(t, 250, result.Total)
}

func TestRunUpdatesExistingCandidates(t *testing.T) {
	src := &fakeSource{
		apps:     []domain.Application{{ID: 1, JobseekerID: 10, ListingID: 100}},
		seekers:  map[int64]domain.JobSeeker{10: seeker(10, "a@example.com", "A Person")},
		listings: map[int64]domain.JobListing{100: {ID: 100}},
	}
	ats := newFakeATS()
	p := newPipeline(src, ats)

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)
	assert.Equal(t, 0, first.Updated)

	second, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Updated)

	candID := ats.candidates["a@example.com"]
	assert.Len(t, ats.associations[candID], 1, "second run skips the existing association")
}

func TestRunResumeHandling(t *testing.T) {
	newSrc := func(resume domain.Resume) *fakeSource {
		return &fakeSource{
			apps:     []domain.Application{{ID: 1, JobseekerID: 10, ListingID: 100, ResumeID: 7}},
			seekers:  map[int64]domain.JobSeeker{10: seeker(10, "a@example.com", "A Person")},
			listings: map[int64]domain.JobListing{100: {ID: 100}},
			resumes:  map[int64]domain.Resume{7: resume},
		}
	}

	t.Run("valid resume is uploaded and linked", func(t *testing.T) {
		ats := newFakeATS()
		src := newSrc(domain.Resume{URL: "https://cdn/r.pdf", Data: []byte("pdf"), FileName: "r.pdf", ContentType: "application/pdf"})

		result, err := newPipeline(src, ats).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)

		candID := ats.candidates["a@example.com"]
		assert.Len(t, ats.uploads[candID], 1)
		assert.True(t, ats.stored[candID].IsAttachmentPresent)
	})

	t.Run("oversized resume skips upload but not the record", func(t *testing.T) {
		ats := newFakeATS()
		src := newSrc(domain.Resume{URL: "https://cdn/big.pdf", Data: make([]byte, maxResumeBytes+1), FileName: "big.pdf"})

		result, err := newPipeline(src, ats).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		assert.Equal(t, 0, result.Failed)

		candID := ats.candidates["a@example.com"]
		assert.Empty(t, ats.uploads[candID])
	})

	t.Run("executable resume skips upload", func(t *testing.T) {
		ats := newFakeATS()
		src := newSrc(domain.Resume{URL: "https://cdn/evil", Data: []byte("MZ"), FileName: "resume.EXE"})

		result, err := newPipeline(src, ats).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)

		candID := ats.candidates["a@example.com"]
		assert.Empty(t, ats.uploads[candID])
	})
}

func TestRunRegistersForEvent(t *testing.T) {
	src := &fakeSource{
		apps:     []domain.Application{{ID: 1, JobseekerID: 10, ListingID: 100}},
		seekers:  map[int64]domain.JobSeeker{10: seeker(10, "a@example.com", "Ann Smith")},
		listings: map[int64]domain.JobListing{100: {ID: 100}},
	}
	ats := newFakeATS()
	reg := &fakeRegistrar{}

	p := newPipeline(src, ats)
	p.Registrar = reg
	p.EventID = "evt-1"

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Registered)
	require.Len(t, reg.created, 1)
	assert.Equal(t, "a@example.com", reg.created[0].Email)
	assert.Equal(t, "Ann", reg.created[0].FirstName)
	assert.Equal(t, "Smith", reg.created[0].LastName)
}

func TestRunRegistrationFailureDoesNotFailGroup(t *testing.T) {
	src := &fakeSource{
		apps:     []domain.Application{{ID: 1, JobseekerID: 10, ListingID: 100}},
		seekers:  map[int64]domain.JobSeeker{10: seeker(10, "a@example.com", "A Person")},
		listings: map[int64]domain.JobListing{100: {ID: 100}},
	}
	ats := newFakeATS()
	reg := &fakeRegistrar{createErr: fmt.Errorf("event is full")}

	p := newPipeline(src, ats)
	p.Registrar = reg
	p.EventID = "evt-1"

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Registered)
	assert.Equal(t, 0, result.Failed)
}

func TestRunIntake(t *testing.T) {
	src := &fakeSource{
		seekerIndex: map[string]domain.JobSeeker{
			"existing@example.com": seeker(1, "existing@example.com", "Already Here"),
		},
	}
	reg := &fakeRegistrar{
		registrations: []domain.Registration{
			{ID: "r1", Email: "existing@example.com"},
			{ID: "r2", Email: "new@example.com", FirstName: "New", LastName: "Person"},
			{ID: "r3", Email: ""},
			{ID: "r4", Email: "broken@example.com"},
		},
		details: map[string]domain.Registration{
			"r2": {ID: "r2", Email: "new@example.com", FirstName: "New", LastName: "Person",
				RegisteredOn: "2025-05-01", Data: "Mobile+Number=555-0111"},
			"r4": {ID: "r4", Email: "broken@example.com", Data: "bad=%zz"},
		},
	}

	p := newPipeline(src, newFakeATS())
	p.Registrar = reg
	p.EventID = "evt-1"

	result, err := p.RunIntake(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 2, result.Skipped, "existing seeker and blank email")
	assert.Equal(t, 1, result.Failed, "unparseable form blob")

	require.Len(t, src.created, 1)
	assert.Equal(t, "new@example.com", src.created[0].Email)
	assert.Equal(t, "555-0111", src.created[0].Phone)
}

func TestRunIntakeAbortsWhenListFails(t *testing.T) {
	p := newPipeline(&fakeSource{}, newFakeATS())
	p.Registrar = &fakeRegistrar{listErr: fmt.Errorf("auth expired")}
	p.EventID = "evt-1"

	_, err := p.RunIntake(context.Background())
	require.Error(t, err)
}
