package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Hospital represents a hospital record returned by the directory API.
// Records are read-only; the listing controller replaces whole pages of them.
type Hospital struct {
	ID                int        `json:"id" yaml:"id"`
	HospitalName      string     `json:"hospitalName" yaml:"hospitalName"`
	HospitalEmail     string     `json:"hospitalEmail" yaml:"hospitalEmail"`
	PhoneNumber       *string    `json:"phoneNumber" yaml:"phoneNumber"`
	Address           string     `json:"address" yaml:"address"`
	Country           string     `json:"country" yaml:"country"`
	CountryCode       string     `json:"countryCode" yaml:"countryCode"`
	CountryID         TextNumber `json:"countryId" yaml:"countryId"`
	State             string     `json:"state" yaml:"state"`
	Longitude         TextNumber `json:"longitude" yaml:"longitude"`
	Latitude          TextNumber `json:"latitude" yaml:"latitude"`
	Type              string     `json:"type,omitempty" yaml:"type,omitempty"`
	DistanceInKm      *float64   `json:"distanceInKm,omitempty" yaml:"distanceInKm,omitempty"`
	DistanceInMeters  *float64   `json:"distanceInMeters,omitempty" yaml:"distanceInMeters,omitempty"`
	FormattedDistance *string    `json:"formattedDistance,omitempty" yaml:"formattedDistance,omitempty"`
	LogoURL           *string    `json:"logoUrl,omitempty" yaml:"logoUrl,omitempty"`
}

// Phone returns the phone number, or an empty string when the API sent null.
func (h Hospital) Phone() string {
	if h.PhoneNumber == nil {
		return ""
	}
	return *h.PhoneNumber
}

// HospitalPage is the payload of a paged hospital listing, found under the
// response envelope's "data" key.
type HospitalPage struct {
	Data       []Hospital `json:"data"`
	TotalPages int        `json:"totalPages"`
	TotalCount int        `json:"totalCount"`
}

// Normalize applies the listing defaults: a missing list becomes empty,
// a missing or zero page count becomes 1 and a negative total becomes 0.
func (p *HospitalPage) Normalize() {
	if p.Data == nil {
		p.Data = []Hospital{}
	}
	if p.TotalPages <= 0 {
		p.TotalPages = 1
	}
	if p.TotalCount < 0 {
		p.TotalCount = 0
	}
}

// TextNumber holds a value the API sends either as a JSON number or as a
// JSON string (coordinates, country ids). The textual form is preserved.
type TextNumber string

// UnmarshalJSON accepts a string, a number or null.
func (t *TextNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid text value: %w", err)
		}
		*t = TextNumber(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*t = TextNumber(n.String())
	return nil
}

// jsonNumber matches the JSON number grammar; strconv.ParseFloat is looser
// and accepts "+1", ".5", "007", "NaN" and "Inf".
var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// MarshalJSON writes values that are JSON number literals as numbers and
// everything else as strings.
func (t TextNumber) MarshalJSON() ([]byte, error) {
	if t == "" {
		return []byte("null"), nil
	}
	if s := strings.TrimSpace(string(t)); jsonNumber.MatchString(s) {
		return []byte(s), nil
	}
	return json.Marshal(string(t))
}

// MarshalYAML renders the value as plain text.
func (t TextNumber) MarshalYAML() (interface{}, error) {
	return string(t), nil
}

// String returns the textual form.
func (t TextNumber) String() string {
	return string(t)
}

// Float parses the value as a float64. The bool is false when the value is
// empty or not numeric.
func (t TextNumber) Float() (float64, bool) {
	s := strings.TrimSpace(string(t))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
