package sync

import (
	"context"
	"fmt"
	"log"

	"recruitsync-engine/internal/domain"
	"recruitsync-engine/internal/fields"
	"recruitsync-engine/internal/mapper"
)

const defaultPageSize = 100

// Source is the job-board side (Smart Job Board in production): the
// origin of applications for the outbound run and the destination of
// seeker profiles for the intake run.
type Source interface {
	ListApplications(ctx context.Context, jobID int64, page, limit int) (domain.ApplicationsPage, error)
	GetJobSeeker(ctx context.Context, id int64) (domain.JobSeeker, error)
	GetJobListing(ctx context.Context, id int64) (domain.JobListing, error)
	GetResume(ctx context.Context, id int64) (domain.Resume, error)
	SearchJobSeekerByEmail(ctx context.Context, email string) (*domain.JobSeeker, error)
	CreateJobSeeker(ctx context.Context, seeker domain.NewJobSeeker) (int64, error)
}

// Registrar is the event-registration side (Brazen in production).
type Registrar interface {
	ListRegistrations(ctx context.Context, eventID string) ([]domain.Registration, error)
	GetRegistrationDetail(ctx context.Context, eventID, registrationID string) (domain.Registration, error)
	CreateRegistration(ctx context.Context, eventID, email, firstName, lastName, formData string) error
}

// EnrichedApplication pairs an application with its listing, or with the
// placeholder listing when the detail fetch failed.
type EnrichedApplication struct {
	Application domain.Application
	Job         domain.JobListing
}

// CandidateGroup is all of one seeker's applications in the batch, plus
// at most one resume (the first application that had one wins).
type CandidateGroup struct {
	Seeker       domain.JobSeeker
	Applications []EnrichedApplication
	Resume       *domain.Resume
}

// Pipeline drives one sync run end to end: fetch, group, enrich, map,
// reconcile, attach, register. Every collaborator is an interface so the
// run logic tests with in-memory fakes.
type Pipeline struct {
	Source     Source
	Registrar  Registrar // nil disables event registration
	Reconciler *Reconciler
	Mapper     mapper.ProfileMapper
	RegMapper  mapper.RegistrationMapper

	// JobID scopes the outbound run to one posting's applications.
	JobID int64
	// EventID is the event synced candidates get registered for, and the
	// event the intake run pulls registrants from.
	EventID string
	// PageSize overrides the application fetch page size (default 100).
	PageSize int
}

// Run executes the outbound sync: SJB applications to ATS candidates.
// A failure before any group is processed (destination token acquisition
// or the application fetch) aborts the run with an error and a zero
// result. From grouping onward, errors are confined to the group they
// occur in: one bad record never stops the batch.
func (p *Pipeline) Run(ctx context.Context) (domain.BatchResult, error) {
	var result domain.BatchResult

	if err := p.Reconciler.ATS.EnsureAuth(ctx); err != nil {
		return domain.BatchResult{}, fmt.Errorf("destination auth: %w", err)
	}

	apps, err := p.fetchAllApplications(ctx)
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("fetch applications: %w", err)
	}
	log.Printf("[sync] fetched %d applications for job %d", len(apps), p.JobID)

	groups, order := p.buildGroups(ctx, apps, &result)
	result.Total = len(order)
	log.Printf("[sync] %d candidate groups to process", len(order))

	for _, email := range order {
		g := groups[email]
		created, err := p.processGroup(ctx, g)
		if err != nil {
			log.Printf("[sync] group %s failed: %v", email, err)
			result.Fail(email, err)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
		if p.registerForEvent(ctx, g.Seeker) {
			result.Registered++
		}
	}
	return result, nil
}

// fetchAllApplications pages through the job's applications until the
// reported total is reached. Page numbering is 1-based.
func (p *Pipeline) fetchAllApplications(ctx context.Context) ([]domain.Application, error) {
	limit := p.PageSize
	if limit <= 0 {
		limit = defaultPageSize
	}

	first, err := p.Source.ListApplications(ctx, p.JobID, 1, limit)
	if err != nil {
		return nil, err
	}
	apps := first.Applications

	for page := 2; len(apps) < first.Total; page++ {
		next, err := p.Source.ListApplications(ctx, p.JobID, page, limit)
		if err != nil {
			return nil, err
		}
		if len(next.Applications) == 0 {
			break // total lied; stop rather than spin
		}
		apps = append(apps, next.Applications...)
	}
	return apps, nil
}

// buildGroups resolves each application's seeker and listing and groups
// applications by seeker email. The first application to introduce an
// email fixes the group's seeker snapshot; later applications only
// append. Applications whose seeker cannot be resolved, or who has no
// email, are skipped without failing the run.
func (p *Pipeline) buildGroups(ctx context.Context, apps []domain.Application, result *domain.BatchResult) (map[string]*CandidateGroup, []string) {
	groups := make(map[string]*CandidateGroup)
	var order []string

	for _, app := range apps {
		if app.JobseekerID == 0 {
			log.Printf("[sync] application %d has no jobseeker id, skipping", app.ID)
			result.Skipped++
			continue
		}

		seekerEmail := ""
		if g := findGroup(groups, app.JobseekerID); g != nil {
			seekerEmail = g.Seeker.Email
		} else {
			seeker, err := p.Source.GetJobSeeker(ctx, app.JobseekerID)
			if err != nil {
				log.Printf("[sync] application %d: jobseeker %d fetch failed, skipping: %v", app.ID, app.JobseekerID, err)
				result.Skipped++
				continue
			}
			if seeker.Email == "" {
				log.Printf("[sync] jobseeker %d has no email, skipping application %d", seeker.ID, app.ID)
				result.Skipped++
				continue
			}
			if _, exists := groups[seeker.Email]; !exists {
				groups[seeker.Email] = &CandidateGroup{Seeker: seeker}
				order = append(order, seeker.Email)
			}
			seekerEmail = seeker.Email
		}

		group := groups[seekerEmail]
		group.Applications = append(group.Applications, EnrichedApplication{
			Application: app,
			Job:         p.listingFor(ctx, app.ListingID),
		})

		if group.Resume == nil && app.ResumeID != 0 {
			resume, err := p.Source.GetResume(ctx, app.ResumeID)
			if err != nil {
				log.Printf("[sync] resume %d for %s unavailable: %v", app.ResumeID, seekerEmail, err)
			} else {
				group.Resume = &resume
			}
		}
	}
	return groups, order
}

// listingFor fetches the listing behind an application, substituting the
// placeholder when the id is missing or the fetch fails so mapping can
// proceed.
func (p *Pipeline) listingFor(ctx context.Context, listingID int64) domain.JobListing {
	placeholder := domain.JobListing{
		ID:          listingID,
		Title:       "Unknown Job",
		Description: "No description available",
	}
	if listingID == 0 {
		return placeholder
	}
	job, err := p.Source.GetJobListing(ctx, listingID)
	if err != nil {
		log.Printf("[sync] listing %d fetch failed, using placeholder: %v", listingID, err)
		return placeholder
	}
	return job
}

// processGroup maps and reconciles one seeker: candidate upsert,
// associations, attachment. Any error surfaces to the caller, which
// records the group as failed.
func (p *Pipeline) processGroup(ctx context.Context, g *CandidateGroup) (created bool, err error) {
	resumeURL := ""
	if g.Resume != nil {
		resumeURL = g.Resume.URL
	}
	var job domain.JobListing
	if len(g.Applications) > 0 {
		job = g.Applications[0].Job
	}

	cand := p.Mapper.Candidate(g.Seeker, job, resumeURL)
	candID, created, err := p.Reconciler.EnsureCandidate(ctx, cand)
	if err != nil {
		return false, err
	}

	if err := p.Reconciler.SyncAssociations(ctx, candID, g.Applications); err != nil {
		return created, err
	}

	if g.Resume != nil {
		if err := validateResume(*g.Resume); err != nil {
			log.Printf("[sync] skipping attachment for %s: %v", g.Seeker.Email, err)
		} else if err := p.Reconciler.ATS.UploadAttachment(ctx, candID, *g.Resume); err != nil {
			log.Printf("[sync] attachment upload for %s failed: %v", g.Seeker.Email, err)
		}
	}
	return created, nil
}

// registerForEvent pushes the seeker into the configured event. A
// registration failure is logged but never fails the group; the ATS sync
// already succeeded by the time this runs.
func (p *Pipeline) registerForEvent(ctx context.Context, seeker domain.JobSeeker) bool {
	if p.Registrar == nil || p.EventID == "" {
		return false
	}
	first, last := firstLast(seeker)
	err := p.Registrar.CreateRegistration(ctx, p.EventID, seeker.Email, first, last,
		p.Mapper.RegistrationForm(seeker))
	if err != nil {
		log.Printf("[sync] event registration for %s failed: %v", seeker.Email, err)
		return false
	}
	return true
}

// RunIntake executes the inbound sync: event registrants without a
// seeker profile get one created. Records already present are counted
// as skipped; per-record errors are isolated the same way the outbound
// run isolates groups.
func (p *Pipeline) RunIntake(ctx context.Context) (domain.BatchResult, error) {
	var result domain.BatchResult

	if p.Registrar == nil || p.EventID == "" {
		return result, fmt.Errorf("intake: no event configured")
	}

	regs, err := p.Registrar.ListRegistrations(ctx, p.EventID)
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("list registrations: %w", err)
	}
	result.Total = len(regs)
	log.Printf("[sync] intake: %d registrations for event %s", len(regs), p.EventID)

	for _, reg := range regs {
		if reg.Email == "" {
			result.Skipped++
			continue
		}

		existing, err := p.Source.SearchJobSeekerByEmail(ctx, reg.Email)
		if err != nil {
			result.Fail(reg.Email, err)
			continue
		}
		if existing != nil {
			result.Skipped++
			continue
		}

		detail, err := p.Registrar.GetRegistrationDetail(ctx, p.EventID, reg.ID)
		if err != nil {
			result.Fail(reg.Email, err)
			continue
		}

		seeker, err := p.RegMapper.JobSeeker(detail)
		if err != nil {
			result.Fail(reg.Email, err)
			continue
		}
		id, err := p.Source.CreateJobSeeker(ctx, seeker)
		if err != nil {
			result.Fail(reg.Email, err)
			continue
		}
		log.Printf("[sync] intake: created jobseeker %d for %s", id, reg.Email)
		result.Created++
	}
	return result, nil
}

func firstLast(seeker domain.JobSeeker) (string, string) {
	first := fields.Extract(seeker.CustomFields, "First Name")
	last := fields.Extract(seeker.CustomFields, "Last Name")
	if first == "" && last == "" {
		return mapper.SplitName(seeker.FullName)
	}
	return first, last
}

func findGroup(groups map[string]*CandidateGroup, seekerID int64) *CandidateGroup {
	for _, g := range groups {
		if g.Seeker.ID == seekerID {
			return g
		}
	}
	return nil
}
