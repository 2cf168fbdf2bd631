package mapper

import (
	"fmt"

	"recruitsync-engine/internal/domain"
	"recruitsync-engine/internal/fields"
)

// RegistrationMapper projects a Brazen event registration, whose answers
// arrive as a URL-encoded form blob, into the same destination shapes the
// profile mapper produces. Extraction runs over decoded form keys instead
// of the custom-field list, and absent enumerated answers are coerced to
// the policy default (the form variant cannot tell "left blank" from
// "never asked").
type RegistrationMapper struct {
	SourceLabel string
}

// JobSeeker builds the SJB create payload for a registrant with no
// existing seeker profile. The email doubles as the initial password;
// SJB forces a reset on first login.
func (m RegistrationMapper) JobSeeker(reg domain.Registration) (domain.NewJobSeeker, error) {
	form, err := fields.ParseForm(reg.Data)
	if err != nil {
		return domain.NewJobSeeker{}, fmt.Errorf("registration %s: %w", reg.ID, err)
	}

	fullName := cleanText(reg.FirstName + " " + reg.LastName)

	return domain.NewJobSeeker{
		RegistrationDate: reg.RegisteredOn,
		Active:           1,
		Phone:            form.Get("Mobile Number"),
		Email:            reg.Email,
		Password:         reg.Email,
		FullName:         fullName,
		CustomFields: []domain.CustomField{
			{Name: "Military Rank (at discharge)", Value: nilIfEmpty(form.Get("Military Rank (at discharge)"))},
			{Name: "Activated At", Value: nil},
			{Name: "First Name", Value: nilIfEmpty(reg.FirstName)},
			{Name: "Last Name", Value: nilIfEmpty(reg.LastName)},
			{Name: "Gender", Value: nilIfEmpty(form.Get("Gender"))},
			{Name: "Ethnicity", Value: nilIfEmpty(form.Get("Ethnicity"))},
			{Name: "Phone", Value: nilIfEmpty(form.Get("Mobile Number"))},
			{Name: "Branch of service", Value: normalizeEnum(form.Get("Branch of service"), serviceBranches, "Unspecified")},
			{Name: "Education Level", Value: normalizeEnum(form.Get("Highest Education Level"), educationLevels, "Unspecified")},
			{Name: "Occupational Preference", Value: nilIfEmpty(form.Get("Occupational Preference"))},
			{Name: "Security Clearance", Value: normalizeEnum(form.Get("Security Clearance"), securityClearances, "Unspecified")},
			{Name: "Willing to Relocate", Value: normalizeEnum(form.Get("Are you willing to relocate?"), yesNo, "Yes")},
			{Name: "Have You Served on Active Duty", Value: form.GetDefault("Have You Served on Active Duty?", "No")},
			{Name: "State", Value: nilIfEmpty(form.Get("State or Province"))},
			{Name: "City", Value: nilIfEmpty(form.Get("City"))},
			{Name: "Zip Code", Value: nilIfEmpty(form.Get("Zip Code"))},
			{Name: "Geographic Preference", Value: nilIfEmpty(form.Get("Geographic Preference/Relocation Notes"))},
			{Name: "U.S Citizen", Value: nilIfEmpty(form.Get("U.S Citizen"))},
			{Name: "End of Active Duty Service Date", Value: nilIfEmpty(form.Get("End of Active Duty Service Date"))},
			{Name: "Discharge Type", Value: nil},
			{Name: "LinkedIn Handle", Value: nilIfEmpty(form.Get("LinkedIn Profile link"))},
			{Name: "Middle Name", Value: nil},
		},
	}, nil
}

// Candidate maps a registration straight to a Zoho candidate, bypassing
// SJB. Same output schema as ProfileMapper.Candidate, different
// extraction mode.
func (m RegistrationMapper) Candidate(reg domain.Registration) (domain.Candidate, error) {
	form, err := fields.ParseForm(reg.Data)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("registration %s: %w", reg.ID, err)
	}

	first := reg.FirstName
	last := reg.LastName
	if first == "" && last == "" {
		first, last = SplitName(form.Get("Full Name"))
	}

	return domain.Candidate{
		Origin: "Sourced",

		FirstName:  first,
		LastName:   last,
		MiddleName: nil,

		Email:     reg.Email,
		Phone:     form.Get("Mobile Number"),
		ResumeURL: "",

		Gender:                 optional(form.Get("Gender")),
		Ethnicity:              optional(form.Get("Ethnicity")),
		BranchOfService:        formEnum(form, "Branch of service", serviceBranches, "Unspecified"),
		HighestQualification:   formEnum(form, "Highest Education Level", educationLevels, "Unspecified"),
		OccupationalPreference: optional(form.Get("Occupational Preference")),
		SecurityClearance:      formEnum(form, "Security Clearance", securityClearances, "Unspecified"),
		WillingToRelocate:      formEnum(form, "Are you willing to relocate?", yesNo, "Yes"),
		GeographicPreference:   optional(form.Get("Geographic Preference")),
		USCitizen:              optional(form.Get("U.S Citizen")),
		ActiveDutyEndDate:      optional(normalizeDate(form.Get("End of Active Duty Service Date"))),
		MilitaryRank:           formList(form, "Military Rank (at discharge)"),
		LinkedInHandle:         optional(form.Get("LinkedIn Profile link")),

		Country: optional(form.Get("Country")),
		City:    optional(form.Get("City")),
		State:   optional(form.Get("State or Province")),
		ZipCode: optional(form.Get("Zip Code")),

		AvailabilityDate: optional(normalizeDate(form.Get("Availability Date"))),
		CandidateStatus:  "New",
		CandidateStage:   "New",
		FreshCandidate:   true,
		Source:           m.SourceLabel,

		SkillSet:        form.Get("Occupational Preference"),
		CurrentEmployer: nil,
		CurrentJobTitle: optional(form.Get("Job Title")),

		ServedOnActiveDuty:     form.GetDefault("Have You Served on Active Duty?", "No"),
		EmailOptOut:            false,
		IsLocked:               false,
		IsUnqualified:          false,
		IsAttachmentPresent:    false,
		SocialProfiles:         false,
		CareerPageInviteStatus: "To-be-invited",
	}, nil
}

func formEnum(form fields.Form, key string, allowed []string, def string) *string {
	v := form.Get(key)
	if v == "" {
		return nil
	}
	v = normalizeEnum(v, allowed, def)
	return &v
}

func formList(form fields.Form, key string) []string {
	if v := form.Get(key); v != "" {
		return []string{v}
	}
	return []string{}
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
