package types

import (
	"fmt"
	"strconv"
	"strings"
)

// CandidateRecord is the structured data the extraction service returns for
// one resume. Field names mirror the SF-330 Section E extraction contract;
// numeric fields arrive as strings because the service echoes whatever the
// document says ("12", "12+", "").
type CandidateRecord struct {
	Name                string             `json:"name"`
	RoleInContract      string             `json:"role_in_contract"`
	YearsExperience     YearsExperience    `json:"years_experience"`
	FirmNameAndLocation string             `json:"firm_name_and_location"`
	Education           string             `json:"education"`
	Registration        string             `json:"current_professional_registration"`
	OtherQualifications string             `json:"other_professional_qualifications"`
	Projects            []CandidateProject `json:"relevant_projects"`
}

// YearsExperience holds the raw experience strings from the document.
type YearsExperience struct {
	Total           string `json:"total"`
	WithCurrentFirm string `json:"with_current_firm"`
}

// CandidateProject is one project entry within a candidate record.
type CandidateProject struct {
	TitleAndLocation string               `json:"title_and_location"`
	YearCompleted    CandidateYears       `json:"year_completed"`
	Description      CandidateDescription `json:"description"`
}

// CandidateYears holds the raw completion-year strings.
type CandidateYears struct {
	ProfessionalServices string `json:"professional_services"`
	Construction         string `json:"construction"`
}

// CandidateDescription is the scope/cost/fee/role breakdown of a project.
type CandidateDescription struct {
	Scope string `json:"scope"`
	Cost  string `json:"cost"`
	Fee   string `json:"fee"`
	Role  string `json:"role"`
}

// IsEmpty reports whether the record carries nothing usable. The extraction
// service sometimes returns a syntactically valid but blank object for
// unreadable documents.
func (r *CandidateRecord) IsEmpty() bool {
	return strings.TrimSpace(r.Name) == "" && len(r.Projects) == 0
}

// Validate checks the record is loadable into the store.
func (r *CandidateRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// FirmName splits "Firm Name - City, ST" into its name part.
func (r *CandidateRecord) FirmName() string {
	name, _ := splitFirmAndLocation(r.FirmNameAndLocation)
	return name
}

// FirmLocation splits "Firm Name - City, ST" into its location part.
func (r *CandidateRecord) FirmLocation() string {
	_, loc := splitFirmAndLocation(r.FirmNameAndLocation)
	return loc
}

func splitFirmAndLocation(s string) (string, string) {
	s = strings.TrimSpace(s)
	// Documents use either " - " or ", " between firm and location. Only
	// split on the dash form; comma is too common inside firm names.
	if i := strings.Index(s, " - "); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+3:])
	}
	return s, ""
}

// ParseYears converts a raw experience/year string to an int. Tolerates
// trailing "+" and decimal values; returns nil when the string carries no
// parseable number.
func ParseYears(s string) *int {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "+"))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return nil
	}
	n := int(f)
	return &n
}
