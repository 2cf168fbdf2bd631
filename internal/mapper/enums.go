package mapper

// Destination picklists. Zoho rejects values outside these, so anything
// unrecognized is coerced to the policy default instead of failing the record.

var educationLevels = []string{
	"High School or GED",
	"Associates Degree",
	"Bachelors Degree or Higher",
	"Unspecified",
}

var serviceBranches = []string{
	"Army",
	"Navy",
	"Air Force",
	"Marine Corps",
	"Coast Guard",
	"Army Reserve",
	"Navy Reserve",
	"Air Force Reserve",
	"Army National Guard",
	"Marine Corps Reserve",
	"Coast Guard Reserve",
	"Air National Guard",
	"Other",
	"Unspecified",
}

var securityClearances = []string{
	"Secret",
	"Top Secret",
	"None",
	"Unspecified",
}

var yesNo = []string{"Yes", "No"}

func normalizeEnum(value string, allowed []string, def string) string {
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	return def
}
