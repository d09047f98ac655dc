package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// DriveType enumerates how a recruitment drive is conducted.
type DriveType string

const (
	DriveTypeOnCampus  DriveType = "ON_CAMPUS"
	DriveTypeOffCampus DriveType = "OFF_CAMPUS"
	DriveTypeVirtual   DriveType = "VIRTUAL"
)

// DriveTypes lists the accepted drive types.
var DriveTypes = []DriveType{DriveTypeOnCampus, DriveTypeOffCampus, DriveTypeVirtual}

// ParseDriveType accepts the canonical values and the dashboard spellings ("On-Campus", "OnCampus").
// An empty input yields an empty drive type.
func ParseDriveType(raw string) (DriveType, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", true
	}
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToUpper(trimmed))
	switch key {
	case "ONCAMPUS":
		return DriveTypeOnCampus, true
	case "OFFCAMPUS":
		return DriveTypeOffCampus, true
	case "VIRTUAL":
		return DriveTypeVirtual, true
	}
	return "", false
}

// Company is the canonical recruitment drive record.
type Company struct {
	ID               string         `db:"id" json:"id"`
	CompanyName      string         `db:"company_name" json:"companyName"`
	CompanyAddress   string         `db:"company_address" json:"companyAddress"`
	Drive            string         `db:"drive" json:"drive"`
	TypeOfDrive      DriveType      `db:"type_of_drive" json:"typeOfDrive"`
	FollowUp         string         `db:"follow_up" json:"followUp"`
	IsContacted      bool           `db:"is_contacted" json:"isContacted"`
	Remarks          string         `db:"remarks" json:"remarks"`
	ContactDetails   string         `db:"contact_details" json:"contactDetails"`
	HR1Details       string         `db:"hr1_details" json:"hr1Details"`
	HR2Details       string         `db:"hr2_details" json:"hr2Details"`
	Package          string         `db:"package" json:"package"`
	AssignedOfficers pq.StringArray `db:"assigned_officers" json:"assignedOfficers"`
	CreatedBy        string         `db:"created_by" json:"createdBy"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
}

// HasOfficer reports whether the officer is assigned to the company.
func (c *Company) HasOfficer(officerID string) bool {
	for _, id := range c.AssignedOfficers {
		if id == officerID {
			return true
		}
	}
	return false
}

// Touch advances UpdatedAt to now. When now is not after the stored value the stamp still moves
// forward by one microsecond so that every accepted mutation changes the compare-and-swap token.
func (c *Company) Touch(now time.Time) {
	if !now.After(c.UpdatedAt) {
		now = c.UpdatedAt.Add(time.Microsecond)
	}
	c.UpdatedAt = now
}

// CompanyFilter constrains company listing queries.
type CompanyFilter struct {
	Search      string
	OfficerID   string
	Contacted   *bool
	Assigned    *bool
	TypeOfDrive DriveType
	Page        int
	PageSize    int
}

// CompanyStats aggregates company counts for dashboards and reports.
type CompanyStats struct {
	Total     int `db:"total" json:"total"`
	Contacted int `db:"contacted" json:"contacted"`
	Assigned  int `db:"assigned" json:"assigned"`
	OnCampus  int `db:"on_campus" json:"onCampus"`
}
