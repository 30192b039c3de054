package models

import (
	"encoding/json"
	"testing"
)

func TestHospitalUnmarshalMixedCoordinates(t *testing.T) {
	body := `{
		"id": 7,
		"hospitalName": "St. Mary",
		"hospitalEmail": "info@stmary.example",
		"phoneNumber": null,
		"address": "1 Main Rd",
		"country": "Nigeria",
		"countryCode": "NG",
		"countryId": 166,
		"state": "Lagos",
		"longitude": 3.3792,
		"latitude": "6.5244"
	}`

	var h Hospital
	if err := json.Unmarshal([]byte(body), &h); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if h.PhoneNumber != nil {
		t.Errorf("PhoneNumber = %v, want nil", *h.PhoneNumber)
	}
	if h.Phone() != "" {
		t.Errorf("Phone() = %q, want empty", h.Phone())
	}
	if h.CountryID.String() != "166" {
		t.Errorf("CountryID = %q, want %q", h.CountryID, "166")
	}
	if h.Longitude.String() != "3.3792" {
		t.Errorf("Longitude = %q, want %q", h.Longitude, "3.3792")
	}
	lat, ok := h.Latitude.Float()
	if !ok || lat != 6.5244 {
		t.Errorf("Latitude.Float() = %v, %v; want 6.5244, true", lat, ok)
	}
}

func TestTextNumberMarshal(t *testing.T) {
	tests := []struct {
		name  string
		value TextNumber
		want  string
	}{
		{"numeric", TextNumber("3.25"), `3.25`},
		{"negative exponent", TextNumber("-1.5e-3"), `-1.5e-3`},
		{"zero", TextNumber("0"), `0`},
		{"surrounding space", TextNumber(" 6.45 "), `6.45`},
		{"text", TextNumber("unknown"), `"unknown"`},
		{"empty", TextNumber(""), `null`},
		{"leading plus", TextNumber("+6.45"), `"+6.45"`},
		{"leading dot", TextNumber(".5"), `".5"`},
		{"trailing dot", TextNumber("5."), `"5."`},
		{"leading zeros", TextNumber("007"), `"007"`},
		{"nan", TextNumber("NaN"), `"NaN"`},
		{"inf", TextNumber("Inf"), `"Inf"`},
		{"hex", TextNumber("0x1p3"), `"0x1p3"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHospitalMarshalLooseCoordinates(t *testing.T) {
	for _, coord := range []string{"+6.45", ".5", "007", "NaN", "Inf"} {
		t.Run(coord, func(t *testing.T) {
			body := `{"id": 1, "hospitalName": "Abbey", "latitude": "` + coord + `", "longitude": 3.4}`
			var h Hospital
			if err := json.Unmarshal([]byte(body), &h); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}

			out, err := json.Marshal(h)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}

			var back Hospital
			if err := json.Unmarshal(out, &back); err != nil {
				t.Fatalf("Unmarshal(Marshal()) error = %v", err)
			}
			if back.Latitude.String() != coord {
				t.Errorf("Latitude = %q, want %q", back.Latitude, coord)
			}
			if back.Longitude.String() != "3.4" {
				t.Errorf("Longitude = %q, want 3.4", back.Longitude)
			}
		})
	}
}

func TestTextNumberRejectsObjects(t *testing.T) {
	var v TextNumber
	if err := json.Unmarshal([]byte(`{"a":1}`), &v); err == nil {
		t.Error("Unmarshal() of an object should fail")
	}
}

func TestHospitalPageNormalize(t *testing.T) {
	page := HospitalPage{TotalPages: 0, TotalCount: -3}
	page.Normalize()

	if page.Data == nil || len(page.Data) != 0 {
		t.Errorf("Data = %v, want empty non-nil slice", page.Data)
	}
	if page.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1", page.TotalPages)
	}
	if page.TotalCount != 0 {
		t.Errorf("TotalCount = %d, want 0", page.TotalCount)
	}
}

func TestCountryIDString(t *testing.T) {
	c := Country{ID: 166, Name: "Nigeria"}
	if c.IDString() != "166" {
		t.Errorf("IDString() = %q, want %q", c.IDString(), "166")
	}
}
