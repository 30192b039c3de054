package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sofiamatics/hospdir/internal/config"
)

// TestConfigSubcommands checks the config command group wiring
func TestConfigSubcommands(t *testing.T) {
	cmd := newConfigCmd()
	want := map[string]bool{"init": false, "show": false, "test": false, "path": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
		if sub.Short == "" {
			t.Errorf("%s: Short description is empty", sub.Name())
		}
		if sub.RunE == nil {
			t.Errorf("%s: RunE function is nil", sub.Name())
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()
	AddCommands(root)

	for _, path := range [][]string{
		{"hospitals", "list"},
		{"hospitals", "browse"},
		{"countries", "list"},
		{"config", "show"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Errorf("command %v not found: %v", path, err)
		}
	}

	for _, flag := range []string{"config", "api-url", "api-token", "verbose", "debug", "compact"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing global flag --%s", flag)
		}
	}
}

func TestRunConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hospdir", "config.csv")
	// url, country, per-page (invalid then valid), proxy yes, mode, host, port, user, no_proxy
	input := strings.Join([]string{
		"https://directory.example.com/api/v1",
		"83",
		"15",
		"20",
		"y",
		"basic",
		"proxy.corp.example",
		"3128",
		"alice",
		"localhost,.corp.example",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := runConfigInit(strings.NewReader(input), &out, path, false); err != nil {
		t.Fatalf("runConfigInit: %v\n%s", err, out.String())
	}

	cfg, err := config.LoadConfigCSV(path)
	if err != nil {
		t.Fatalf("LoadConfigCSV: %v", err)
	}
	if cfg.APIBaseURL != "https://directory.example.com/api/v1" || cfg.DefaultCountryID != "83" || cfg.ItemsPerPage != 20 {
		t.Errorf("unexpected listing settings %+v", cfg)
	}
	if cfg.ProxyMode != config.ProxyModeBasic || cfg.ProxyHost != "proxy.corp.example" || cfg.ProxyPort != 3128 || cfg.ProxyUser != "alice" {
		t.Errorf("unexpected proxy settings %+v", cfg)
	}
	if cfg.NoProxy != "localhost,.corp.example" {
		t.Errorf("NoProxy = %q", cfg.NoProxy)
	}
	if !strings.Contains(out.String(), "Must be one of") {
		t.Errorf("invalid page size should be reported:\n%s", out.String())
	}
}

func TestRunConfigInitDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.csv")

	if err := runConfigInit(strings.NewReader(""), io.Discard, path, false); err != nil {
		t.Fatalf("runConfigInit: %v", err)
	}
	cfg, err := config.LoadConfigCSV(path)
	if err != nil {
		t.Fatalf("LoadConfigCSV: %v", err)
	}
	def := config.NewDefaultConfig()
	if cfg.APIBaseURL != def.APIBaseURL || cfg.DefaultCountryID != def.DefaultCountryID || cfg.ItemsPerPage != def.ItemsPerPage {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestRunConfigInitKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.csv")
	if err := os.WriteFile(path, []byte("key,value\napi_base_url,https://keep.example.com\n"), 0600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := runConfigInit(strings.NewReader("https://other.example.com\n"), &out, path, false); err != nil {
		t.Fatalf("runConfigInit: %v", err)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("expected existing-config notice:\n%s", out.String())
	}
	cfg, _ := config.LoadConfigCSV(path)
	if cfg.APIBaseURL != "https://keep.example.com" {
		t.Errorf("existing config was overwritten: %s", cfg.APIBaseURL)
	}
}

func TestWriteConfigHidesToken(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.APIToken = "s3cr3t-token"
	cfg.RequestTimeoutSeconds = 15

	var out bytes.Buffer
	writeConfig(&out, cfg, filepath.Join(t.TempDir(), "missing.csv"))
	got := out.String()

	if strings.Contains(got, "s3cr3t") {
		t.Error("token must never be printed")
	}
	for _, want := range []string{"<set (12 chars)>", "Items Per Page: 10", "15s", "file does not exist"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestPromptHelpers(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("\nvalue\nabc\n-1\n7\nYES\nno\n"))
	var out bytes.Buffer

	if got := promptString(r, &out, "Name", "def"); got != "def" {
		t.Errorf("blank answer should give default, got %q", got)
	}
	if got := promptString(r, &out, "Name", ""); got != "value" {
		t.Errorf("got %q", got)
	}
	if got := promptInt(r, &out, "Port", 8080); got != 8080 {
		t.Errorf("non-numeric answer should give default, got %d", got)
	}
	if got := promptInt(r, &out, "Port", 8080); got != 8080 {
		t.Errorf("negative answer should give default, got %d", got)
	}
	if got := promptInt(r, &out, "Port", 8080); got != 7 {
		t.Errorf("got %d", got)
	}
	if !promptYesNo(r, &out, "Proxy?") {
		t.Error("YES should be yes")
	}
	if promptYesNo(r, &out, "Proxy?") {
		t.Error("no should be no")
	}
	if promptYesNo(r, &out, "Proxy?") {
		t.Error("end of input should be no")
	}
}

func TestRunCountriesList(t *testing.T) {
	tests := []struct {
		name   string
		search string
		output string
		want   []string
		reject []string
	}{
		{"all", "", outputTable, []string{"Nigeria", "Ghana", "Guinea-Bissau"}, nil},
		{"search", "guinea", outputTable, []string{"Guinea", "Guinea-Bissau"}, []string{"Nigeria"}},
		{"none", "atlantis", outputTable, []string{"No countries found"}, nil},
		{"json", "ng", outputJSON, []string{`"countryCode": "NG"`}, []string{"Ghana"}},
		{"yaml", "gh", outputYAML, []string{"name: Ghana"}, []string{"Nigeria"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := runCountriesList(context.Background(), &fakeDirectory{}, tt.search, tt.output, &out); err != nil {
				t.Fatalf("runCountriesList: %v", err)
			}
			got := out.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q:\n%s", w, got)
				}
			}
			for _, r := range tt.reject {
				if strings.Contains(got, r) {
					t.Errorf("output should not contain %q:\n%s", r, got)
				}
			}
		})
	}
}

func TestRunCountriesListError(t *testing.T) {
	err := runCountriesList(context.Background(), &fakeDirectory{countriesErr: errUnavailable}, "", outputTable, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "failed to list countries") {
		t.Errorf("expected wrapped error, got %v", err)
	}
}
