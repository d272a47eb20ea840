// Package validation checks candidate policy records against the submission
// rules. It is pure: the same record and reference time always produce the
// same violation list, in the same order, regardless of where the input came
// from.
package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/insuredesk/policykeeper/internal/server/models"
)

// Field names a policy record field in a Violation. Values match the JSON
// field names used on the wire.
type Field string

const (
	FieldName         Field = "name"
	FieldEmail        Field = "email"
	FieldPhone        Field = "phone"
	FieldAddress      Field = "address"
	FieldPolicyType   Field = "policyType"
	FieldPolicyNumber Field = "policyNumber"
	FieldStartDate    Field = "startDate"
	FieldEndDate      Field = "endDate"
)

// Violation is a single broken rule on a single field. Violations are values,
// not errors: a record that breaks every rule still validates without a fault.
type Violation struct {
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

var (
	nameRe         = regexp.MustCompile(`^[a-zA-Z\s]{2,50}$`)
	phoneRe        = regexp.MustCompile(`^\d{10}$`)
	policyNumberRe = regexp.MustCompile(`^[A-Z]{2}[0-9]{6}$`)
)

// Validate returns the violations for a candidate record, ordered by the
// fixed field sequence name, email, phone, address, policyType, policyNumber,
// startDate, endDate. An empty result means the record may be saved.
//
// now anchors the date rules; comparisons are at date granularity, so a
// record whose start date is "today" is always acceptable regardless of the
// time of day.
func Validate(rec models.PolicyRecord, now time.Time) []Violation {
	vs := make([]Violation, 0, 8)

	if name := strings.TrimSpace(rec.Name); !nameRe.MatchString(name) {
		vs = append(vs, Violation{FieldName, "Name must be 2-50 characters long and contain only letters and spaces"})
	}

	if !validEmail(strings.TrimSpace(rec.Email)) {
		vs = append(vs, Violation{FieldEmail, "Please enter a valid email address"})
	}

	if phone := strings.TrimSpace(rec.Phone); !phoneRe.MatchString(phone) {
		vs = append(vs, Violation{FieldPhone, "Phone number must be 10 digits"})
	}

	if address := strings.TrimSpace(rec.Address); len(address) < 5 {
		vs = append(vs, Violation{FieldAddress, "Address must be at least 5 characters long"})
	}

	if !rec.PolicyType.Valid() {
		vs = append(vs, Violation{FieldPolicyType, "Please select a policy type"})
	}

	if number := strings.TrimSpace(rec.PolicyNumber); !policyNumberRe.MatchString(number) {
		vs = append(vs, Violation{FieldPolicyNumber, "Policy number must be in format: XX123456 (2 letters followed by 6 digits)"})
	}

	today := truncateToDay(now)
	start := truncateToDay(rec.StartDate)

	if rec.StartDate.IsZero() {
		vs = append(vs, Violation{FieldStartDate, "Please select a start date"})
	} else if start.Before(today) {
		vs = append(vs, Violation{FieldStartDate, "Start date cannot be in the past"})
	}

	if rec.EndDate.IsZero() {
		vs = append(vs, Violation{FieldEndDate, "Please select an end date"})
	} else if !truncateToDay(rec.EndDate).After(start) {
		// Equal dates are not enough: coverage must end strictly after it starts.
		vs = append(vs, Violation{FieldEndDate, "End date must be after start date"})
	}

	return vs
}

// validEmail accepts any non-empty local part containing no '@', followed by
// '@' and a non-empty domain.
func validEmail(email string) bool {
	local, domain, ok := strings.Cut(email, "@")
	return ok && local != "" && domain != ""
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
