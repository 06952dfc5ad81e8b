// Package config provides configuration parsing for colormix.
// This file implements environment variable expansion for configuration values.
package config

import (
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches environment variable references in configuration values.
// Supports formats:
//   - ${VAR_NAME} - standard shell-like format
//   - ${VAR_NAME:-default} - with default value if unset or empty
//   - $VAR_NAME - simple format (word characters only)
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// ExpandEnv expands environment variable references in a string.
// Unset variables without a default expand to the empty string.
func ExpandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if strings.HasPrefix(match, "${") && strings.HasSuffix(match, "}") {
			inner := match[2 : len(match)-1]

			if varName, defaultVal, ok := strings.Cut(inner, ":-"); ok {
				if val := os.Getenv(varName); val != "" {
					return val
				}
				return defaultVal
			}

			return os.Getenv(inner)
		}

		return os.Getenv(match[1:])
	})
}

// ExpandEnvConfig expands environment variables in the palette values and
// the log level of cfg, in place.
func ExpandEnvConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.LogLevel = ExpandEnv(cfg.LogLevel)
	for name, value := range cfg.Palette {
		cfg.Palette[name] = ExpandEnv(value)
	}
}
