package mapper

import (
	"net/url"
	"strings"
	"time"

	"recruitsync-engine/internal/domain"
	"recruitsync-engine/internal/fields"
)

// ProfileMapper projects an SJB job seeker profile (custom-field list)
// into a Zoho candidate. It is a pure function of its inputs: no I/O,
// no clock reads except in JobOpening's Date_Opened.
//
// Note: this variant reports Have_You_Served_on_Active_Duty as "Yes"
// unconditionally; the registration variant defaults it to "No" when the
// form field is absent. The discrepancy is deliberate per source channel
// and must not be unified without a product decision.
type ProfileMapper struct {
	// SourceLabel lands in the candidate's Source field.
	SourceLabel string
	// ClientLabel lands in created job openings' Client_Name.
	ClientLabel string
}

func (m ProfileMapper) Candidate(seeker domain.JobSeeker, job domain.JobListing, resumeURL string) domain.Candidate {
	cf := seeker.CustomFields
	first, last := SplitName(seeker.FullName)
	if v := fields.Extract(cf, "Last Name"); v != "" {
		last = v
	}

	phone := fields.Extract(cf, "Phone")
	if phone == "" {
		phone = seeker.Phone
	}

	return domain.Candidate{
		Origin: "Sourced",

		FirstName:  first,
		LastName:   last,
		MiddleName: optional(fields.Extract(cf, "Middle Name")),

		Email:     seeker.Email,
		Phone:     phone,
		ResumeURL: resumeURL,

		Gender:                 optional(fields.Extract(cf, "Gender")),
		Ethnicity:              optional(fields.Extract(cf, "Ethnicity")),
		BranchOfService:        enumField(cf, "Branch of service", serviceBranches, "Unspecified"),
		HighestQualification:   enumField(cf, "Education Level", educationLevels, "Unspecified"),
		OccupationalPreference: optional(fields.Extract(cf, "Occupational Preference")),
		SecurityClearance:      enumField(cf, "Security Clearance", securityClearances, "Unspecified"),
		WillingToRelocate:      enumField(cf, "Willing to Relocate", yesNo, "Yes"),
		GeographicPreference:   optional(fields.Extract(cf, "Geographic Preference")),
		USCitizen:              optional(fields.Extract(cf, "U.S Citizen")),
		ActiveDutyEndDate:      optional(normalizeDate(fields.Extract(cf, "End of Active Duty Service Date"))),
		MilitaryRank:           fields.ExtractList(cf, "Military Rank (at discharge)"),
		LinkedInHandle:         optional(fields.Extract(cf, "LinkedIn Handle")),

		Country: optional(seeker.Country),
		City:    optional(fields.Extract(cf, "City")),
		State:   optional(fields.Extract(cf, "State")),
		ZipCode: optional(seeker.ZipCode),

		AvailabilityDate: optional(normalizeDate(fields.Extract(cf, "Availability Date"))),
		CandidateStatus:  "New",
		CandidateStage:   "New",
		FreshCandidate:   true,
		Source:           m.SourceLabel,

		SkillSet:        strings.Join(job.Categories, ", "),
		CurrentEmployer: nil,
		CurrentJobTitle: optional(job.Title),

		ServedOnActiveDuty:     "Yes",
		EmailOptOut:            false,
		IsLocked:               false,
		IsUnqualified:          false,
		IsAttachmentPresent:    resumeURL != "",
		SocialProfiles:         false,
		CareerPageInviteStatus: "To-be-invited",
	}
}

// JobOpening builds the Zoho record for a listing that has no remote
// counterpart yet. Descriptions come in as HTML and are flattened here.
func (m ProfileMapper) JobOpening(job domain.JobListing, externalID string) domain.JobOpening {
	title := job.Title
	if title == "" {
		title = "Unknown Job"
	}
	desc := CleanHTML(job.Description)
	if desc == "" {
		desc = "No description available"
	}
	return domain.JobOpening{
		Name:        title,
		ClientName:  m.ClientLabel,
		Description: desc,
		Status:      "Open",
		Positions:   1,
		DateOpened:  time.Now().UTC().Format("2006-01-02"),
		ExternalID:  externalID,
	}
}

// RegistrationForm projects a seeker profile into the URL-encoded answer
// blob the event registration API expects. Keys mirror the intake form,
// so a profile round-trips through RegistrationMapper unchanged.
func (m ProfileMapper) RegistrationForm(seeker domain.JobSeeker) string {
	cf := seeker.CustomFields
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}

	set("Branch of service", fields.Extract(cf, "Branch of service"))
	set("Have You Served on Active Duty?", "Yes")
	set("End of Active Duty Service Date", fields.Extract(cf, "End of Active Duty Service Date"))
	set("Military Rank (at discharge)", fields.Extract(cf, "Military Rank (at discharge)"))
	set("Highest Education Level", fields.Extract(cf, "Education Level"))
	set("Security Clearance", fields.Extract(cf, "Security Clearance"))
	set("Mobile Number", fields.Extract(cf, "Phone"))
	set("Country", seeker.Country)
	set("City", fields.Extract(cf, "City"))
	set("State or Province", fields.Extract(cf, "State"))
	set("Zip Code", seeker.ZipCode)
	set("U.S Citizen", fields.Extract(cf, "U.S Citizen"))
	set("Gender", fields.Extract(cf, "Gender"))
	set("Ethnicity", fields.Extract(cf, "Ethnicity"))
	set("Availability Date", fields.Extract(cf, "Availability Date"))
	set("LinkedIn Profile link", fields.Extract(cf, "LinkedIn Handle"))
	set("Occupational Preference", fields.Extract(cf, "Occupational Preference"))
	set("Are you willing to relocate?", fields.Extract(cf, "Willing to Relocate"))
	set("Geographic Preference/Relocation Notes", fields.Extract(cf, "Geographic Preference"))

	return v.Encode()
}

// enumField distinguishes absent (null) from present-but-invalid
// (coerced to the policy default).
func enumField(cf []domain.CustomField, name string, allowed []string, def string) *string {
	v := fields.Extract(cf, name)
	if v == "" {
		return nil
	}
	v = normalizeEnum(v, allowed, def)
	return &v
}
