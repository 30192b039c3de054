package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofiamatics/hospdir/internal/api"
	"github.com/sofiamatics/hospdir/internal/config"
	"github.com/sofiamatics/hospdir/internal/constants"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage hospdir configuration",
		Long: `Configuration management commands for hospdir.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  test  - Test API connection
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for hospdir.

The API token is never saved; set HOSPDIR_API_TOKEN or pass --api-token.

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd.InOrStdin(), cmd.OutOrStdout(), configPath(), force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

func runConfigInit(in io.Reader, out io.Writer, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
			fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
			return nil
		}
	}

	fmt.Fprintln(out, "hospdir Configuration Setup")
	fmt.Fprintln(out, "===========================")
	fmt.Fprintln(out)

	reader := bufio.NewReader(in)
	cfg := config.NewDefaultConfig()

	cfg.APIBaseURL = promptString(reader, out, "API Base URL", constants.DefaultAPIBaseURL)
	cfg.DefaultCountryID = promptString(reader, out, "Default country id", constants.DefaultCountryID)
	for {
		cfg.ItemsPerPage = promptInt(reader, out, "Hospitals per page (10, 20, 30, 40)", constants.DefaultItemsPerPage)
		if constants.IsValidItemsPerPage(cfg.ItemsPerPage) {
			break
		}
		fmt.Fprintf(out, "  Must be one of %v\n", constants.ItemsPerPageOptions)
	}

	fmt.Fprintln(out)
	if promptYesNo(reader, out, "Configure proxy?") {
		fmt.Fprintln(out, "Proxy modes: no-proxy, system, basic, ntlm")
		cfg.ProxyMode = strings.ToLower(promptString(reader, out, "Proxy mode", config.ProxyModeSystem))
		if cfg.ProxyMode != config.ProxyModeNone {
			cfg.ProxyHost = promptString(reader, out, "Proxy host", "")
			cfg.ProxyPort = promptInt(reader, out, "Proxy port", 8080)
		}
		if cfg.ProxyMode == config.ProxyModeBasic || cfg.ProxyMode == config.ProxyModeNTLM {
			cfg.ProxyUser = promptString(reader, out, "Proxy user", "")
		}
		cfg.NoProxy = promptString(reader, out, "Hosts that bypass the proxy (comma-separated)", "")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.SaveConfigCSV(cfg, path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	GetLogger().Info().Str("path", path).Msg("Configuration saved")

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to: %s\n", path)
	fmt.Fprintln(out, "Test it with: hospdir config test")
	return nil
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

This command shows the merged configuration from:
  1. Configuration file
  2. Environment variables (HOSPDIR_API_URL, HOSPDIR_API_TOKEN, HTTPS_PROXY)
  3. Command-line flags (--api-url, --api-token)

Priority: flags > environment > config file > defaults`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			cfg, err := config.LoadConfigCSV(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.MergeWithFlags(apiBaseURL, apiToken)

			writeConfig(cmd.OutOrStdout(), cfg, path)
			return nil
		},
	}

	return cmd
}

func writeConfig(w io.Writer, cfg *config.Config, path string) {
	fmt.Fprintln(w, "Current Configuration")
	fmt.Fprintln(w, "=====================")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "API Settings:")
	fmt.Fprintf(w, "  API Base URL: %s\n", cfg.APIBaseURL)
	if cfg.APIToken != "" {
		// Never display any portion of the token
		fmt.Fprintf(w, "  API Token:    <set (%d chars)>\n", len(cfg.APIToken))
	} else {
		fmt.Fprintln(w, "  API Token:    <not set>")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Listing Defaults:")
	fmt.Fprintf(w, "  Country ID:     %s\n", cfg.DefaultCountryID)
	fmt.Fprintf(w, "  Items Per Page: %d\n", cfg.ItemsPerPage)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Proxy Settings:")
	fmt.Fprintf(w, "  Proxy Mode: %s\n", cfg.ProxyMode)
	if cfg.ProxyHost != "" {
		fmt.Fprintf(w, "  Proxy Host: %s\n", cfg.ProxyHost)
		fmt.Fprintf(w, "  Proxy Port: %d\n", cfg.ProxyPort)
	}
	if cfg.ProxyUser != "" {
		fmt.Fprintf(w, "  Proxy User: %s\n", cfg.ProxyUser)
	}
	if cfg.NoProxy != "" {
		fmt.Fprintf(w, "  No Proxy:   %s\n", cfg.NoProxy)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Advanced Settings:")
	fmt.Fprintf(w, "  Max Retries:             %d\n", cfg.MaxRetries)
	if timeout := cfg.RequestTimeout(); timeout > 0 {
		fmt.Fprintf(w, "  Request Timeout:         %s\n", timeout)
	} else {
		fmt.Fprintln(w, "  Request Timeout:         none")
	}
	if cfg.RateLimitPerSec > 0 {
		fmt.Fprintf(w, "  Rate Limit:              %g req/s\n", cfg.RateLimitPerSec)
	} else {
		fmt.Fprintln(w, "  Rate Limit:              none")
	}
	fmt.Fprintf(w, "  Discard Stale Responses: %t\n", cfg.DiscardStaleResponses)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Configuration file: %s\n", path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(w, "  (file does not exist - using defaults)")
	}
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test API connection",
		Long: `Test the API connection with current configuration.

Fetches the country catalog to verify the URL, token and proxy settings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			out := cmd.OutOrStdout()

			client, err := getAPIClient()
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "API URL: %s\n", client.GetConfig().APIBaseURL)
			fmt.Fprintln(out, "Testing connection...")

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			countries, err := client.ListCountries(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("Connection test failed")
				fmt.Fprintln(out, "Connection FAILED")
				fmt.Fprintf(out, "  Error: %v\n", err)
				if api.IsStatus(err, 401) || api.IsStatus(err, 403) {
					fmt.Fprintln(out, "  Check HOSPDIR_API_TOKEN or --api-token.")
				}
				return fmt.Errorf("connection test failed")
			}

			logger.Info().Msg("Connection test successful")
			fmt.Fprintln(out, "Connection SUCCESSFUL")
			fmt.Fprintf(out, "  %d countries in the catalog\n", len(countries))
			return nil
		},
	}

	return cmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := configPath()
			if cfgFile == "" {
				fmt.Fprintln(out, "Default configuration path:")
			} else {
				fmt.Fprintln(out, "Configuration path (from --config flag):")
			}

			fmt.Fprintf(out, "  %s\n", path)
			fmt.Fprintln(out)

			if fileInfo, err := os.Stat(path); err == nil {
				fmt.Fprintln(out, "Status: File exists")
				fmt.Fprintf(out, "Size:   %d bytes\n", fileInfo.Size())
				fmt.Fprintf(out, "Modified: %s\n", fileInfo.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Status: File does not exist")
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Create a configuration file with: hospdir config init")
			}

			return nil
		},
	}

	return cmd
}
