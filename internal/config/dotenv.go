package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads KEY=VALUE pairs from the given files into the process
// environment so that ${VAR} references in palette values can see them.
// Variables that are already set keep their value.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}
