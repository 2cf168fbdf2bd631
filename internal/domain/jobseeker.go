package domain

// CustomField is one entry of SJB's semi-structured profile field list.
// Value is a scalar for most fields but a list for multi-select ones.
type CustomField struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type JobSeeker struct {
	ID               int64         `json:"id"`
	Email            string        `json:"email"`
	FullName         string        `json:"full_name"`
	Phone            string        `json:"phone"`
	Country          string        `json:"country"`
	State            string        `json:"state"`
	City             string        `json:"city"`
	ZipCode          string        `json:"zip_code"`
	RegistrationDate string        `json:"registration_date"`
	Active           int           `json:"active"`
	CustomFields     []CustomField `json:"custom_fields"`
}

// Application links a job seeker to a listing. Zero-valued ids mean the
// field was absent in the API response.
type Application struct {
	ID              int64  `json:"id"`
	JobseekerID     int64  `json:"jobseeker_id"`
	ListingID       int64  `json:"listing_id"`
	ResumeID        int64  `json:"resume_id"`
	ApplicationDate string `json:"application_date"`
	CoverLetter     string `json:"cover_letter"`
	Comments        string `json:"comments"`
}

// ApplicationsPage is one page of a listing's applications plus the
// total count the caller needs to keep paging.
type ApplicationsPage struct {
	Applications []Application `json:"applications"`
	Total        int           `json:"total"`
}

type JobListing struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
}

// Resume holds a downloaded resume file plus the remote URL it came from.
// Zoho accepts the URL directly; Brazen needs the bytes re-uploaded.
type Resume struct {
	URL         string
	Data        []byte
	ContentType string
	FileName    string
}

// NewJobSeeker is the payload for creating a seeker in SJB (intake path).
type NewJobSeeker struct {
	RegistrationDate string        `json:"registration_date"`
	Active           int           `json:"active"`
	Phone            string        `json:"Phone,omitempty"`
	Email            string        `json:"email"`
	Password         string        `json:"password"`
	FullName         string        `json:"full_name"`
	CustomFields     []CustomField `json:"custom_fields"`
}

// Registration is a Brazen event registration. Data carries the intake
// form answers as a URL-encoded blob.
type Registration struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	RegisteredOn string `json:"registered_on"`
	Data         string `json:"data"`
}
