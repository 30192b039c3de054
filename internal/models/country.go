package models

import "strconv"

// Country represents an entry in the remote country catalog.
type Country struct {
	ID               int    `json:"id" yaml:"id"`
	CountryCode      string `json:"countryCode" yaml:"countryCode"`
	PhoneCode        string `json:"phoneCode" yaml:"phoneCode"`
	Name             string `json:"name" yaml:"name"`
	NationalCurrency string `json:"nationalCurrency" yaml:"nationalCurrency"`
}

// IDString returns the id in the form used as the hospital country filter.
func (c Country) IDString() string {
	return strconv.Itoa(c.ID)
}
