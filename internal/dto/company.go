package dto

// CreateCompanyRequest is the POST /companies payload.
type CreateCompanyRequest struct {
	CompanyName      string   `json:"companyName" validate:"required,max=255"`
	CompanyAddress   string   `json:"companyAddress"`
	Drive            string   `json:"drive"`
	TypeOfDrive      string   `json:"typeOfDrive"`
	FollowUp         string   `json:"followUp"`
	IsContacted      bool     `json:"isContacted"`
	Remarks          string   `json:"remarks"`
	ContactDetails   string   `json:"contactDetails"`
	HR1Details       string   `json:"hr1Details"`
	HR2Details       string   `json:"hr2Details"`
	Package          string   `json:"package" validate:"max=128"`
	AssignedOfficers []string `json:"assignedOfficers" validate:"omitempty,dive,required"`
}

// CompanyQuery mirrors the GET /companies filters.
type CompanyQuery struct {
	Search      string
	OfficerID   string
	Contacted   *bool
	Assigned    *bool
	TypeOfDrive string
	Page        int
	PageSize    int
}

// AssignOfficerRequest names the officer to add to a company.
type AssignOfficerRequest struct {
	OfficerID string `json:"officerId" validate:"required"`
}
