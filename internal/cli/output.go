package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/sofiamatics/hospdir/internal/models"
	"github.com/sofiamatics/hospdir/internal/state"
)

// Output formats accepted by --output.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func validateOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("invalid output format %q (use table, json or yaml)", format)
}

// hospitalListing is the machine-readable form of one listing page.
type hospitalListing struct {
	Country    string            `json:"countryId,omitempty" yaml:"countryId,omitempty"`
	State      string            `json:"state,omitempty" yaml:"state,omitempty"`
	Search     string            `json:"searchTerm,omitempty" yaml:"searchTerm,omitempty"`
	Page       int               `json:"page" yaml:"page"`
	PerPage    int               `json:"perPage" yaml:"perPage"`
	TotalPages int               `json:"totalPages" yaml:"totalPages"`
	TotalCount int               `json:"totalCount" yaml:"totalCount"`
	Hospitals  []models.Hospital `json:"hospitals" yaml:"hospitals"`
}

func newHospitalListing(snap state.Snapshot) hospitalListing {
	hospitals := snap.Hospitals
	if hospitals == nil {
		hospitals = []models.Hospital{}
	}
	return hospitalListing{
		Country:    snap.SelectedCountry,
		State:      snap.SelectedState,
		Search:     snap.SearchQuery,
		Page:       snap.CurrentPage,
		PerPage:    snap.ItemsPerPage,
		TotalPages: snap.TotalPages,
		TotalCount: snap.TotalCount,
		Hospitals:  hospitals,
	}
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v interface{}) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("format %q is not structured", format)
}
