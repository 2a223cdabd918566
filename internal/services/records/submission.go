package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Selection is the raw value of a categorical form field.
// The JSON form accepts a single string or an array of strings (multi-select).
type Selection []string

// UnmarshalJSON implements json.Unmarshaler
func (s *Selection) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*s = Selection{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("selection must be a string or a list of strings: %w", err)
	}
	*s = many
	return nil
}

// options returns the trimmed non-blank entries
func (s Selection) options() []string {
	var out []string
	for _, v := range s {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Date is a calendar date as sent by the form ("2006-01-02"); full RFC 3339
// timestamps are accepted as well.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q", raw)
	}
	d.Time = t.UTC()
	return nil
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format("2006-01-02"))
}

// Submission is a candidate record as filled in on the register form
type Submission struct {
	Company          Selection `json:"company"`
	CompanyOther     string    `json:"companyOther,omitempty"`
	Subject          Selection `json:"subject"`
	SubjectOther     string    `json:"subjectOther,omitempty"`
	RequestedBy      Selection `json:"requestedBy"`
	RequestedByOther string    `json:"requestedByOther,omitempty"`
	DocumentType     string    `json:"documentType"`
	OnlinePlatform   string    `json:"onlinePlatform,omitempty"`
	SignedBy         Selection `json:"signedBy"`
	SignedByOther    string    `json:"signedByOther,omitempty"`
	SignatureDate    Date      `json:"signatureDate"`
	Responsible      Selection `json:"responsible"`
	ResponsibleOther string    `json:"responsibleOther,omitempty"`
}
