package protocol

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// profileFile is the YAML layout of a profile override file:
//
//	profiles:
//	  CONFIRMATIONS:
//	    - predicate: up_on_volume
//	      category: CONFIRMATION
//	      text: Close up on above-average volume
type profileFile struct {
	Profiles map[Profile][]Check `yaml:"profiles"`
}

// ParseProfiles decodes YAML profile overrides and merges them over the
// defaults. A profile present in the document replaces the default checks
// of that profile entirely.
func ParseProfiles(data []byte) (Profiles, error) {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse protocol profiles: %w", err)
	}

	profiles := DefaultProfiles()
	for profile, checks := range file.Profiles {
		switch profile {
		case ProfileConfirmations, ProfileSellingIntoWeakness, ProfileSellingIntoStrength:
		case ProfileAll:
			return nil, fmt.Errorf("profile %s is derived and cannot be configured", ProfileAll)
		default:
			return nil, fmt.Errorf("unknown protocol profile %q", profile)
		}

		for i, check := range checks {
			if err := check.Validate(); err != nil {
				return nil, fmt.Errorf("profile %s check %d: %w", profile, i, err)
			}
		}
		profiles[profile] = checks
	}

	return profiles, nil
}

// LoadProfiles reads profile overrides from path. An empty path yields the defaults.
func LoadProfiles(path string) (Profiles, error) {
	if path == "" {
		return DefaultProfiles(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read protocol profiles %s: %w", path, err)
	}
	return ParseProfiles(data)
}
