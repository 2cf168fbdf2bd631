package sync

import (
	"context"
	"fmt"
	"log"
	"time"

	"recruitsync-engine/internal/domain"
	"recruitsync-engine/internal/mapper"
)

// ATS is the destination candidate store (Zoho Recruit in production).
// Search answers "" / empty when nothing matches; absence is never an
// error on this interface. EnsureAuth acquires a token up front so the
// run can abort before any record is touched when credentials are bad.
type ATS interface {
	EnsureAuth(ctx context.Context) error
	SearchCandidateByEmail(ctx context.Context, email string) (string, error)
	CreateCandidate(ctx context.Context, cand domain.Candidate) (string, error)
	UpdateCandidate(ctx context.Context, id string, cand domain.Candidate) error
	SearchJobOpeningByExternalID(ctx context.Context, externalID string) (string, error)
	CreateJobOpening(ctx context.Context, opening domain.JobOpening) (string, error)
	ListAssociations(ctx context.Context, candidateID string) ([]string, error)
	CreateAssociation(ctx context.Context, assoc domain.Association) error
	UploadAttachment(ctx context.Context, candidateID string, resume domain.Resume) error
}

// Reconciler converges remote state toward the mapped records: candidates
// keyed by email, job openings keyed by the source listing id, and
// associations deduplicated against the remote link list. It holds no
// state between calls.
type Reconciler struct {
	ATS    ATS
	Mapper mapper.ProfileMapper
}

// EnsureCandidate creates the candidate if no record has the email, or
// overwrites the existing record with the freshly mapped one. The email
// match is exact and case-sensitive.
func (r *Reconciler) EnsureCandidate(ctx context.Context, cand domain.Candidate) (id string, created bool, err error) {
	id, err = r.ATS.SearchCandidateByEmail(ctx, cand.Email)
	if err != nil {
		return "", false, err
	}
	if id == "" {
		id, err = r.ATS.CreateCandidate(ctx, cand)
		if err != nil {
			return "", false, err
		}
		log.Printf("[sync] created candidate %s (%s)", id, cand.Email)
		return id, true, nil
	}
	if err := r.ATS.UpdateCandidate(ctx, id, cand); err != nil {
		return "", false, err
	}
	log.Printf("[sync] updated candidate %s (%s)", id, cand.Email)
	return id, false, nil
}

// ResolveJobOpening finds the opening tagged with the listing's id, or
// creates one from the listing when the search misses. Concurrent runs
// can race here and create duplicates; the id tag keeps later runs
// converging on whichever record the search returns first.
func (r *Reconciler) ResolveJobOpening(ctx context.Context, job domain.JobListing) (string, error) {
	externalID := fmt.Sprint(job.ID)
	id, err := r.ATS.SearchJobOpeningByExternalID(ctx, externalID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	id, err = r.ATS.CreateJobOpening(ctx, r.Mapper.JobOpening(job, externalID))
	if err != nil {
		return "", err
	}
	log.Printf("[sync] created job opening %s for listing %d", id, job.ID)
	return id, nil
}

// SyncAssociations links the candidate to each applied-for opening.
// The remote link list is fetched once up front; openings already linked
// (or linked earlier in the same loop) are skipped as successes.
func (r *Reconciler) SyncAssociations(ctx context.Context, candidateID string, apps []EnrichedApplication) error {
	existing, err := r.ATS.ListAssociations(ctx, candidateID)
	if err != nil {
		return err
	}
	linked := make(map[string]bool, len(existing))
	for _, id := range existing {
		linked[id] = true
	}

	for _, app := range apps {
		openingID, err := r.ResolveJobOpening(ctx, app.Job)
		if err != nil {
			return err
		}
		if linked[openingID] {
			log.Printf("[sync] candidate %s already associated with opening %s, skipping", candidateID, openingID)
			continue
		}

		assoc := domain.Association{
			CandidateID:       candidateID,
			JobOpeningID:      openingID,
			Status:            "Applied",
			SubmissionDate:    submissionDate(app.Application.ApplicationDate),
			SubmissionComment: submissionComment(app.Application),
			ExternalID:        fmt.Sprint(app.Application.ID),
		}
		if err := r.ATS.CreateAssociation(ctx, assoc); err != nil {
			return err
		}
		linked[openingID] = true
	}
	return nil
}

func submissionDate(applicationDate string) string {
	if applicationDate != "" {
		return applicationDate
	}
	return time.Now().UTC().Format("2006-01-02")
}

func submissionComment(app domain.Application) string {
	if app.CoverLetter != "" {
		return app.CoverLetter
	}
	if app.Comments != "" {
		return app.Comments
	}
	return "Applied through Smart Job Board"
}
