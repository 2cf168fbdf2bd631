package domain

// Candidate is the Zoho Recruit projection of a job seeker. Optional
// fields are pointers so an absent source value serializes as JSON null;
// Phone and ResumeURL stay plain strings because Zoho treats them as
// mandatory and "" is the safe default.
type Candidate struct {
	Origin string `json:"Origin"`

	FirstName  string  `json:"First_Name"`
	LastName   string  `json:"Last_Name"`
	MiddleName *string `json:"Middle_Name"`

	Email     string `json:"Email"`
	Phone     string `json:"Phone"`
	ResumeURL string `json:"Resume"`

	Gender                 *string  `json:"Gender"`
	Ethnicity              *string  `json:"Ethnicity"`
	BranchOfService        *string  `json:"Branch_of_service"`
	HighestQualification   *string  `json:"Highest_Qualification_Held"`
	OccupationalPreference *string  `json:"Occupational_Preference"`
	SecurityClearance      *string  `json:"Security_Clearance"`
	WillingToRelocate      *string  `json:"Willing_to_relocate"`
	GeographicPreference   *string  `json:"Geographic_Preference"`
	USCitizen              *string  `json:"U_S_Citizen"`
	ActiveDutyEndDate      *string  `json:"End_of_Active_Duty_Service_Date"`
	MilitaryRank           []string `json:"Military_Rank_at_discharge"`
	LinkedInHandle         *string  `json:"LinkedIn_Handle"`

	Country *string `json:"Country"`
	City    *string `json:"City"`
	State   *string `json:"State"`
	ZipCode *string `json:"Zip_Code"`

	AvailabilityDate *string `json:"Availability_Date"`
	CandidateStatus  string  `json:"Candidate_Status"`
	CandidateStage   string  `json:"Candidate_Stage"`
	FreshCandidate   bool    `json:"Fresh_Candidate"`
	Source           string  `json:"Source"`

	SkillSet        string  `json:"Skill_Set"`
	CurrentEmployer *string `json:"Current_Employer"`
	CurrentJobTitle *string `json:"Current_Job_Title"`

	ServedOnActiveDuty     string `json:"Have_You_Served_on_Active_Duty"`
	EmailOptOut            bool   `json:"Email_Opt_Out"`
	IsLocked               bool   `json:"Is_Locked"`
	IsUnqualified          bool   `json:"Is_Unqualified"`
	IsAttachmentPresent    bool   `json:"Is_Attachment_Present"`
	SocialProfiles         bool   `json:"Associated_any_Social_Profiles"`
	CareerPageInviteStatus string `json:"Career_Page_Invite_Status"`
}

// JobOpening is the Zoho record a candidate gets associated with.
// ExternalID carries the SJB listing id so later runs find it again.
type JobOpening struct {
	Name        string `json:"Job_Opening_Name"`
	ClientName  string `json:"Client_Name"`
	Description string `json:"Job_Description"`
	Status      string `json:"Job_Opening_Status"`
	Positions   int    `json:"Number_of_Positions"`
	DateOpened  string `json:"Date_Opened"`
	ExternalID  string `json:"SJB_Job_ID,omitempty"`
}

// Association ties a candidate to a job opening with submission metadata.
type Association struct {
	CandidateID       string `json:"Candidate_ID"`
	JobOpeningID      string `json:"Job_Opening_ID"`
	Status            string `json:"Associate_Status"`
	SubmissionDate    string `json:"Submission_Date"`
	SubmissionComment string `json:"Submission_Comment"`
	ExternalID        string `json:"SJB_Application_ID,omitempty"`
}
