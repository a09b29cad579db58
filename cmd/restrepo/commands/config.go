package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/restrepo/internal/constants"
	"github.com/fivetwenty-io/restrepo/pkg/restrepo/serializer"
)

// Config represents the CLI configuration.
type Config struct {
	BaseURL     string `json:"base_url"               yaml:"base_url"`
	Token       string `json:"token,omitempty"        yaml:"token,omitempty"`
	TokenScheme string `json:"token_scheme,omitempty" yaml:"token_scheme,omitempty"`

	// Resource shape
	AppendSlash bool   `json:"append_slash" yaml:"append_slash"`
	Pagination  string `json:"pagination"   yaml:"pagination"`
	PageSize    int    `json:"page_size"    yaml:"page_size"`

	// Transport
	Timeout  time.Duration `json:"timeout"   yaml:"timeout"`
	RetryMax int           `json:"retry_max" yaml:"retry_max"`

	// Serialization
	Schema       string `json:"schema,omitempty"         yaml:"schema,omitempty"`
	DriftNATSURL string `json:"drift_nats_url,omitempty" yaml:"drift_nats_url,omitempty"`
	DriftSubject string `json:"drift_subject,omitempty"  yaml:"drift_subject,omitempty"`

	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

type configKey struct {
	name  string
	parse func(string) (any, error)
	def   any
}

func parseString(value string) (any, error) { return value, nil }

func parseBool(value string) (any, error) { return strconv.ParseBool(value) }

func parseInt(value string) (any, error) { return strconv.Atoi(value) }

func parseDuration(value string) (any, error) { return time.ParseDuration(value) }

func parsePagination(value string) (any, error) {
	switch value {
	case PaginationPageNumber, PaginationLimitOffset, PaginationNone:
		return value, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPagination, value)
	}
}

func parseOutput(value string) (any, error) {
	switch value {
	case constants.FormatJSON, constants.FormatYAML, constants.FormatTable, "":
		return value, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOutput, value)
	}
}

var configKeys = []configKey{
	{"base_url", parseString, ""},
	{"token", parseString, ""},
	{"token_scheme", parseString, constants.DefaultTokenScheme},
	{"append_slash", parseBool, true},
	{"pagination", parsePagination, PaginationPageNumber},
	{"page_size", parseInt, constants.DefaultPageSize},
	{"timeout", parseDuration, constants.DefaultHTTPTimeout},
	{"retry_max", parseInt, constants.DefaultRetryMax},
	{"schema", parseString, ""},
	{"drift_nats_url", parseString, ""},
	{"drift_subject", parseString, serializer.DefaultDriftSubject},
	{"output", parseOutput, ""},
}

func lookupConfigKey(name string) (configKey, error) {
	for _, key := range configKeys {
		if key.name == name {
			return key, nil
		}
	}

	return configKey{}, fmt.Errorf("%w: %s", ErrUnknownConfigKey, name)
}

// SetDefaults registers the defaults every config key falls back to.
func SetDefaults() {
	for _, key := range configKeys {
		viper.SetDefault(key.name, key.def)
	}
}

func loadConfig() *Config {
	return &Config{
		BaseURL:      viper.GetString("base_url"),
		Token:        viper.GetString("token"),
		TokenScheme:  viper.GetString("token_scheme"),
		AppendSlash:  viper.GetBool("append_slash"),
		Pagination:   viper.GetString("pagination"),
		PageSize:     viper.GetInt("page_size"),
		Timeout:      viper.GetDuration("timeout"),
		RetryMax:     viper.GetInt("retry_max"),
		Schema:       viper.GetString("schema"),
		DriftNATSURL: viper.GetString("drift_nats_url"),
		DriftSubject: viper.GetString("drift_subject"),
		Output:       viper.GetString("output"),
	}
}

func configFilePath() (string, error) {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile, nil
	}

	if configFile := viper.GetString("config"); configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".restrepo", "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage restrepo CLI configuration including the API endpoint and resource shape",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with the token masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.Token != "" {
				config.Token = Masked
			}

			w := cmd.OutOrStdout()

			switch format := outputFormat(); format {
			case constants.FormatJSON:
				return renderJSON(w, config)
			case constants.FormatYAML:
				return renderYAML(w, config)
			case constants.FormatTable:
				return displayConfigTable(w, config)
			default:
				return fmt.Errorf("%w: %s", ErrUnknownOutput, format)
			}
		},
	}
}

func displayConfigTable(w io.Writer, config *Config) error {
	table := newTable(w)
	table.Header("Property", "Value")

	_ = table.Append([]string{"Base URL", orNotAvailable(config.BaseURL)})
	_ = table.Append([]string{"Token", orNotAvailable(config.Token)})
	_ = table.Append([]string{"Token Scheme", config.TokenScheme})
	_ = table.Append([]string{"Append Slash", strconv.FormatBool(config.AppendSlash)})
	_ = table.Append([]string{"Pagination", config.Pagination})
	_ = table.Append([]string{"Page Size", strconv.Itoa(config.PageSize)})
	_ = table.Append([]string{"Timeout", config.Timeout.String()})
	_ = table.Append([]string{"Retry Max", strconv.Itoa(config.RetryMax)})
	_ = table.Append([]string{"Schema", orNotAvailable(config.Schema)})
	_ = table.Append([]string{"Drift NATS URL", orNotAvailable(config.DriftNATSURL)})
	_ = table.Append([]string{"Drift Subject", config.DriftSubject})

	return renderTable(table)
}

func orNotAvailable(value string) string {
	if value == "" {
		return NotAvailable
	}

	return value
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value and persist it to the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := lookupConfigKey(args[0])
			if err != nil {
				return err
			}

			value, err := key.parse(args[1])
			if err != nil {
				return fmt.Errorf("%w for %s: %w", ErrInvalidConfigValue, key.name, err)
			}

			viper.Set(key.name, value)

			err = saveConfigStruct(loadConfig())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", key.name)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Reset a configuration value to its default and persist the change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := lookupConfigKey(args[0])
			if err != nil {
				return err
			}

			// viper has no delete; the override shadows whatever the file holds
			viper.Set(key.name, key.def)

			err = saveConfigStruct(loadConfig())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", key.name)

			return nil
		},
	}
}
