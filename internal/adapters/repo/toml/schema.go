package toml

import "fmt"

const currentSchemaVersion = 1

type sessionFileSchema struct {
	Version   int    `toml:"version"`
	AccountID string `toml:"account_id,omitempty"`
	UpdatedAt string `toml:"updated_at,omitempty"`
}

func (s *sessionFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s sessionFileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported session schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}
