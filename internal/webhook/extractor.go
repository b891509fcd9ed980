package webhook

import "strings"

// ExtractedFields holds the contact fields pulled from a Meta leadgen
// field_data array via best-effort label matching. Advertisers rename form
// fields freely, so matching is fuzzy by design of the upstream forms.
type ExtractedFields struct {
	FullName string
	Email    string
	Phone    string
}

// IsIncomplete returns true when neither a name nor an email was found.
// Such events cannot become leads and are skipped.
func (e ExtractedFields) IsIncomplete() bool {
	return e.FullName == "" && e.Email == ""
}

// FieldData is one entry of a Meta leadgen form response.
type FieldData struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// ExtractLeadFields performs best-effort extraction from leadgen field data.
// The first value of the first matching field wins per slot.
func ExtractLeadFields(fields []FieldData) ExtractedFields {
	var result ExtractedFields

	for _, field := range fields {
		if len(field.Values) == 0 {
			continue
		}
		value := strings.TrimSpace(field.Values[0])
		if value == "" {
			continue
		}
		label := strings.ToLower(field.Name)

		switch {
		case result.Email == "" && strings.Contains(label, "email"):
			result.Email = value
		case result.Phone == "" && (strings.Contains(label, "phone") || strings.Contains(label, "number")):
			result.Phone = value
		case result.FullName == "" && strings.Contains(label, "name"):
			result.FullName = value
		}
	}

	return result
}

// SplitFullName splits a free-form name on whitespace: first token is the
// first name, the remainder joins into the last name, "-" when absent.
func SplitFullName(fullName string) (firstName, lastName string) {
	parts := strings.Fields(strings.TrimSpace(fullName))
	if len(parts) == 0 {
		return "", "-"
	}
	if len(parts) == 1 {
		return parts[0], "-"
	}
	return parts[0], strings.Join(parts[1:], " ")
}
