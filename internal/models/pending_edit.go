package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// PendingEditStatus captures the review state of a proposal.
type PendingEditStatus string

const (
	PendingEditStatusPending  PendingEditStatus = "PENDING"
	PendingEditStatusApproved PendingEditStatus = "APPROVED"
	PendingEditStatusRejected PendingEditStatus = "REJECTED"
)

// ReviewNoteTargetDeleted is recorded when an approval finds its company gone.
const ReviewNoteTargetDeleted = "target deleted"

// Terminal reports whether no further transition is allowed.
func (s PendingEditStatus) Terminal() bool {
	return s == PendingEditStatusApproved || s == PendingEditStatusRejected
}

// FieldChanges is a sparse company field map persisted as JSONB.
type FieldChanges map[string]interface{}

// Keys returns the field names in stable order.
func (f FieldChanges) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value marshals the map to JSON for persistence.
func (f FieldChanges) Value() (driver.Value, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(map[string]interface{}(f))
	if err != nil {
		return nil, fmt.Errorf("marshal field changes: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the map.
func (f *FieldChanges) Scan(value interface{}) error {
	if value == nil {
		*f = FieldChanges{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for FieldChanges", value)
	}
	if len(data) == 0 {
		*f = FieldChanges{}
		return nil
	}
	decoded := map[string]interface{}{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("unmarshal field changes: %w", err)
	}
	*f = decoded
	return nil
}

// PendingEdit is an officer proposal awaiting review.
type PendingEdit struct {
	ID              string            `db:"id" json:"id"`
	CompanyID       string            `db:"company_id" json:"companyId"`
	ProposedChanges FieldChanges      `db:"proposed_changes" json:"proposedChanges"`
	OriginalValues  FieldChanges      `db:"original_values" json:"originalValues"`
	Status          PendingEditStatus `db:"status" json:"status"`
	SubmittedBy     string            `db:"submitted_by" json:"submittedBy"`
	SubmittedAt     time.Time         `db:"submitted_at" json:"submittedAt"`
	ReviewedBy      *string           `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time        `db:"reviewed_at" json:"reviewedAt,omitempty"`
	ReviewNote      *string           `db:"review_note" json:"reviewNote,omitempty"`
}

// PendingEditFilter constrains listing queries.
type PendingEditFilter struct {
	Status      []PendingEditStatus
	CompanyID   string
	SubmittedBy string
	Page        int
	PageSize    int
}

// EditOutcome tells the caller how an edit submission was handled.
type EditOutcome string

const (
	EditOutcomeApplied         EditOutcome = "APPLIED"
	EditOutcomePendingApproval EditOutcome = "PENDING_APPROVAL"
)

// EditResult is either the updated company (direct edit) or the stored proposal.
type EditResult struct {
	Outcome     EditOutcome  `json:"outcome"`
	Company     *Company     `json:"company,omitempty"`
	PendingEdit *PendingEdit `json:"pendingEdit,omitempty"`
}

// ApprovalResult carries the merged company and the closed proposal.
type ApprovalResult struct {
	Company     *Company     `json:"company"`
	PendingEdit *PendingEdit `json:"pendingEdit"`
}
