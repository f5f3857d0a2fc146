package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const defaultAdvisoriesFile = "security_advisories.json"

// Settings is the runtime configuration of updatewarden. The update policy
// itself lives in the repository; Settings only covers credentials and
// infrastructure knobs.
type Settings struct {
	Providers       map[string]ProviderSettings `yaml:"providers"`
	Advisories      AdvisorySettings            `yaml:"advisories"`
	Registries      map[string]string           `yaml:"registries"` // ecosystem -> base URL
	Concurrency     int                         `yaml:"concurrency"`
	MetricsTextfile string                      `yaml:"metrics_textfile"`
}

// ProviderSettings holds the credentials of a single source-control provider.
type ProviderSettings struct {
	Token   string `yaml:"token"`    // Inline, ${ENV_VAR}, or file path
	BaseURL string `yaml:"base_url"` // Self-hosted instances
}

// AdvisorySettings configures where security advisories come from.
type AdvisorySettings struct {
	File   string `yaml:"file"`   // JSON cache written by `advisories import`
	GitHub bool   `yaml:"github"` // Query GHSA directly on every run
}

// tokenEnvVars lists the environment variables checked per provider when no
// token is configured.
//
//nolint:gochecknoglobals // static lookup table
var tokenEnvVars = map[string][]string{
	"github": {"LOCAL_GITHUB_ACCESS_TOKEN", "GITHUB_TOKEN"},
	"gitlab": {"GITLAB_TOKEN"},
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// DefaultSettings returns the settings used when no file is found.
func DefaultSettings() *Settings {
	settings := &Settings{}
	settings.applyDefaults()
	return settings
}

// NewSettings reads and parses a settings file, expanding environment
// variables and resolving token file paths.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %q: %w", path, err)
	}

	var settings Settings
	if unmarshalErr := yaml.Unmarshal(data, &settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", unmarshalErr)
	}

	for name, provider := range settings.Providers {
		provider.Token = resolveToken(provider.Token)
		settings.Providers[name] = provider
	}
	settings.applyDefaults()

	if validateErr := validateSettings(&settings); validateErr != nil {
		return nil, validateErr
	}
	return &settings, nil
}

// FindConfigFile searches for a settings file in standard locations.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{".", ".config", "configs"}
	if homeDir != "" {
		locations = append(locations, homeDir, filepath.Join(homeDir, ".config"))
	}

	patterns := []string{
		".updatewarden.yaml",
		".updatewarden.yml",
		"updatewarden.yaml",
		"updatewarden.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("settings file not found in default locations")
}

// TokenFor returns the token of a provider, falling back to the provider's
// well-known environment variables.
func (s *Settings) TokenFor(provider string) string {
	if configured, ok := s.Providers[provider]; ok && configured.Token != "" {
		return configured.Token
	}
	for _, name := range tokenEnvVars[provider] {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			return value
		}
	}
	return ""
}

// BaseURLFor returns the configured base URL of a provider, if any.
func (s *Settings) BaseURLFor(provider string) string {
	return s.Providers[provider].BaseURL
}

// RegistryURL returns the registry base URL override for an ecosystem or fallback.
func (s *Settings) RegistryURL(ecosystem, fallback string) string {
	if url := strings.TrimSpace(s.Registries[ecosystem]); url != "" {
		return strings.TrimRight(url, "/")
	}
	return fallback
}

func (s *Settings) applyDefaults() {
	if s.Providers == nil {
		s.Providers = make(map[string]ProviderSettings)
	}
	if s.Registries == nil {
		s.Registries = make(map[string]string)
	}
	if s.Concurrency <= 0 {
		s.Concurrency = 1
	}
	if s.Advisories.File == "" {
		s.Advisories.File = defaultAdvisoriesFile
	}
}

// resolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from it.
func resolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

func validateSettings(settings *Settings) error {
	for name := range settings.Providers {
		switch name {
		case "github", "gitlab", "local":
		default:
			return fmt.Errorf("providers.%s: %w", name, ErrUnknownProvider)
		}
	}
	for ecosystem := range settings.Registries {
		if _, ok := EcosystemAlias(ecosystem); !ok {
			return fmt.Errorf("registries.%s: %w", ecosystem, &UnknownEcosystemError{Ecosystem: ecosystem})
		}
	}
	return nil
}
