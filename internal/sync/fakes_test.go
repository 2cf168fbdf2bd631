package sync

import (
	"context"
	"fmt"

	"recruitsync-engine/internal/domain"
)

// fakeSource serves canned board data and records created seekers.
type fakeSource struct {
	apps     []domain.Application
	seekers  map[int64]domain.JobSeeker
	listings map[int64]domain.JobListing
	resumes  map[int64]domain.Resume

	listErr     error
	listCalls   int
	createdIDs  int64
	created     []domain.NewJobSeeker
	seekerIndex map[string]domain.JobSeeker // by email, for intake search
}

func (f *fakeSource) ListApplications(ctx context.Context, jobID int64, page, limit int) (domain.ApplicationsPage, error) {
	f.listCalls++
	if f.listErr != nil {
		return domain.ApplicationsPage{}, f.listErr
	}
	start := (page - 1) * limit
	if start > len(f.apps) {
		start = len(f.apps)
	}
	end := start + limit
	if end > len(f.apps) {
		end = len(f.apps)
	}
	return domain.ApplicationsPage{Applications: f.apps[start:end], Total: len(f.apps)}, nil
}

func (f *fakeSource) GetJobSeeker(ctx context.Context, id int64) (domain.JobSeeker, error) {
	s, ok := f.seekers[id]
	if !ok {
		return domain.JobSeeker{}, fmt.Errorf("jobseeker %d not found", id)
	}
	return s, nil
}

func (f *fakeSource) GetJobListing(ctx context.Context, id int64) (domain.JobListing, error) {
	l, ok := f.listings[id]
	if !ok {
		return domain.JobListing{}, fmt.Errorf("listing %d not found", id)
	}
	return l, nil
}

func (f *fakeSource) GetResume(ctx context.Context, id int64) (domain.Resume, error) {
	r, ok := f.resumes[id]
	if !ok {
		return domain.Resume{}, fmt.Errorf("resume %d not found", id)
	}
	return r, nil
}

func (f *fakeSource) SearchJobSeekerByEmail(ctx context.Context, email string) (*domain.JobSeeker, error) {
	if s, ok := f.seekerIndex[email]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeSource) CreateJobSeeker(ctx context.Context, seeker domain.NewJobSeeker) (int64, error) {
	f.createdIDs++
	f.created = append(f.created, seeker)
	return f.createdIDs, nil
}

// fakeATS is an in-memory candidate store keyed the way the real one is.
type fakeATS struct {
	nextID int

	candidates   map[string]string           // email -> id
	stored       map[string]domain.Candidate // id -> last written record
	openings     map[string]string           // external id -> id
	associations map[string][]string         // candidate id -> opening ids
	uploads      map[string][]domain.Resume  // candidate id -> uploaded files

	updates int

	authErr         error  // EnsureAuth fails with this
	failCreateEmail string // CreateCandidate fails for this email
	failAssociate   bool
}

func newFakeATS() *fakeATS {
	return &fakeATS{
		candidates:   map[string]string{},
		stored:       map[string]domain.Candidate{},
		openings:     map[string]string{},
		associations: map[string][]string{},
		uploads:      map[string][]domain.Resume{},
	}
}

func (f *fakeATS) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeATS) EnsureAuth(ctx context.Context) error {
	return f.authErr
}

func (f *fakeATS) SearchCandidateByEmail(ctx context.Context, email string) (string, error) {
	return f.candidates[email], nil
}

func (f *fakeATS) CreateCandidate(ctx context.Context, cand domain.Candidate) (string, error) {
	if cand.Email == f.failCreateEmail {
		return "", fmt.Errorf("simulated create failure for %s", cand.Email)
	}
	id := f.id("cand")
	f.candidates[cand.Email] = id
	f.stored[id] = cand
	return id, nil
}

func (f *fakeATS) UpdateCandidate(ctx context.Context, id string, cand domain.Candidate) error {
	f.updates++
	f.stored[id] = cand
	return nil
}

func (f *fakeATS) SearchJobOpeningByExternalID(ctx context.Context, externalID string) (string, error) {
	return f.openings[externalID], nil
}

func (f *fakeATS) CreateJobOpening(ctx context.Context, opening domain.JobOpening) (string, error) {
	id := f.id("open")
	f.openings[opening.ExternalID] = id
	return id, nil
}

func (f *fakeATS) ListAssociations(ctx context.Context, candidateID string) ([]string, error) {
	return f.associations[candidateID], nil
}

func (f *fakeATS) CreateAssociation(ctx context.Context, assoc domain.Association) error {
	if f.failAssociate {
		return fmt.Errorf("simulated association failure")
	}
	f.associations[assoc.CandidateID] = append(f.associations[assoc.CandidateID], assoc.JobOpeningID)
	return nil
}

func (f *fakeATS) UploadAttachment(ctx context.Context, candidateID string, resume domain.Resume) error {
	f.uploads[candidateID] = append(f.uploads[candidateID], resume)
	return nil
}

type createdRegistration struct {
	Email, FirstName, LastName, FormData string
}

type fakeRegistrar struct {
	registrations []domain.Registration
	details       map[string]domain.Registration
	created       []createdRegistration

	listErr   error
	createErr error
}

func (f *fakeRegistrar) ListRegistrations(ctx context.Context, eventID string) ([]domain.Registration, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.registrations, nil
}

func (f *fakeRegistrar) GetRegistrationDetail(ctx context.Context, eventID, registrationID string) (domain.Registration, error) {
	if d, ok := f.details[registrationID]; ok {
		return d, nil
	}
	return domain.Registration{}, fmt.Errorf("registration %s not found", registrationID)
}

func (f *fakeRegistrar) CreateRegistration(ctx context.Context, eventID, email, firstName, lastName, formData string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, createdRegistration{email, firstName, lastName, formData})
	return nil
}
