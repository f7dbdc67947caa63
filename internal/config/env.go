package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads the board's .env file, if present. Variables already set in
// the process environment win.
func (c *Config) LoadEnv() error {
	path := c.EnvPath()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking %s: %w", EnvFileName, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", EnvFileName, err)
	}
	return nil
}
