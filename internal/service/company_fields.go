package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	appErrors "github.com/sooryaakilesh10/place-pro-platform-88/pkg/errors"
)

// companyField binds a JSON field name to its coercion and accessors on models.Company.
type companyField struct {
	coerce func(raw interface{}) (interface{}, error)
	get    func(c *models.Company) interface{}
	set    func(c *models.Company, v interface{})
}

var immutableCompanyFields = map[string]struct{}{
	"id":        {},
	"createdAt": {},
	"updatedAt": {},
	"createdBy": {},
}

const assignedOfficersField = "assignedOfficers"

var companyFields = map[string]companyField{
	"companyName": textField(true,
		func(c *models.Company) *string { return &c.CompanyName }),
	"companyAddress": textField(false,
		func(c *models.Company) *string { return &c.CompanyAddress }),
	"drive": textField(false,
		func(c *models.Company) *string { return &c.Drive }),
	"followUp": textField(false,
		func(c *models.Company) *string { return &c.FollowUp }),
	"remarks": textField(false,
		func(c *models.Company) *string { return &c.Remarks }),
	"contactDetails": textField(false,
		func(c *models.Company) *string { return &c.ContactDetails }),
	"hr1Details": textField(false,
		func(c *models.Company) *string { return &c.HR1Details }),
	"hr2Details": textField(false,
		func(c *models.Company) *string { return &c.HR2Details }),
	"package": textField(false,
		func(c *models.Company) *string { return &c.Package }),
	"typeOfDrive": {
		coerce: coerceDriveType,
		get:    func(c *models.Company) interface{} { return string(c.TypeOfDrive) },
		set:    func(c *models.Company, v interface{}) { c.TypeOfDrive = models.DriveType(v.(string)) },
	},
	"isContacted": {
		coerce: coerceBool,
		get:    func(c *models.Company) interface{} { return c.IsContacted },
		set:    func(c *models.Company, v interface{}) { c.IsContacted = v.(bool) },
	},
}

func textField(required bool, ref func(c *models.Company) *string) companyField {
	return companyField{
		coerce: func(raw interface{}) (interface{}, error) {
			value, err := coerceText(raw)
			if err != nil {
				return nil, err
			}
			if required && value == "" {
				return nil, fmt.Errorf("cannot be empty")
			}
			return value, nil
		},
		get: func(c *models.Company) interface{} { return *ref(c) },
		set: func(c *models.Company, v interface{}) { *ref(c) = v.(string) },
	}
}

func coerceText(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	default:
		return "", fmt.Errorf("must be a string")
	}
}

func coerceBool(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case float64:
		if v == 0 || v == 1 {
			return v == 1, nil
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1":
			return true, nil
		case "false", "no", "0":
			return false, nil
		}
	}
	return nil, fmt.Errorf("must be a boolean")
}

func coerceDriveType(raw interface{}) (interface{}, error) {
	text, err := coerceText(raw)
	if err != nil {
		return nil, err
	}
	drive, ok := models.ParseDriveType(text)
	if !ok {
		return nil, fmt.Errorf("must be one of ON_CAMPUS, OFF_CAMPUS, VIRTUAL")
	}
	return string(drive), nil
}

// normalizeCompanyFields validates a sparse field map and coerces every value to its canonical form.
// All offending fields are reported together.
func normalizeCompanyFields(raw map[string]interface{}) (models.FieldChanges, error) {
	normalized := make(models.FieldChanges, len(raw))
	problems := make(map[string]string)
	for name, value := range raw {
		if _, ok := immutableCompanyFields[name]; ok {
			problems[name] = "is immutable"
			continue
		}
		if name == assignedOfficersField {
			problems[name] = "is managed through officer assignment"
			continue
		}
		field, ok := companyFields[name]
		if !ok {
			problems[name] = "is not a company field"
			continue
		}
		coerced, err := field.coerce(value)
		if err != nil {
			problems[name] = err.Error()
			continue
		}
		normalized[name] = coerced
	}
	if len(problems) > 0 {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "invalid company fields", problems)
	}
	return normalized, nil
}

// diffCompanyFields keeps the changes whose value differs from the company and returns them together
// with the company's current values for the same fields.
func diffCompanyFields(company *models.Company, changes models.FieldChanges) (proposed, original models.FieldChanges) {
	proposed = make(models.FieldChanges)
	original = make(models.FieldChanges)
	for name, value := range changes {
		field, ok := companyFields[name]
		if !ok {
			continue
		}
		current := field.get(company)
		if current == value {
			continue
		}
		proposed[name] = value
		original[name] = current
	}
	return proposed, original
}

// applyCompanyFields overwrites the company field by field. Stored proposals are coerced again since
// they come back from JSONB.
func applyCompanyFields(company *models.Company, changes models.FieldChanges) error {
	for _, name := range changes.Keys() {
		field, ok := companyFields[name]
		if !ok {
			return fmt.Errorf("unknown company field %q", name)
		}
		value, err := field.coerce(changes[name])
		if err != nil {
			return fmt.Errorf("company field %q %w", name, err)
		}
		field.set(company, value)
	}
	return nil
}
