package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/hay-kot/criterio"
)

// snowflakePattern matches Discord ids.
var snowflakePattern = regexp.MustCompile(`^[0-9]{17,20}$`)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// Discord id formats and file accessibility. The configPath argument specifies
// the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateDiscordIDs(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Discord.Token == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Discord",
			Item:     TokenEnv,
			Message:  "bot token is not set; sync and serve will refuse to start",
		})
	}
	if c.Discord.ForumChannelID == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Discord",
			Item:     "forum_channel_id",
			Message:  "forum channel is not set; sync passes do nothing",
		})
	}
	if c.Discord.RequestTimeout == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Discord",
			Item:     "request_timeout",
			Message:  "requests have no timeout",
		})
	}

	return warnings
}

// validateFileAccess checks the config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// validateDiscordIDs checks that configured ids look like Discord snowflakes.
func (c *Config) validateDiscordIDs() error {
	var errs criterio.FieldErrorsBuilder
	ids := []struct{ field, value string }{
		{"discord.guild_id", c.Discord.GuildID},
		{"discord.forum_channel_id", c.Discord.ForumChannelID},
	}
	for _, id := range ids {
		if id.value != "" && !snowflakePattern.MatchString(id.value) {
			errs = errs.Append(id.field, fmt.Errorf("%q is not a Discord id", id.value))
		}
	}
	return errs.ToError()
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
