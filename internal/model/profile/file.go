package profile

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoProfiles   = errors.New("profile file defines no profiles")
	ErrInvalidEntry = errors.New("invalid profile entry")
)

type fileDocument struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadFile reads profiles from a YAML document of the form
//
//	profiles:
//	  - id: support
//	    title: Support Chat
//	    replies: ["Thanks for reaching out!"]
func LoadFile(path string) ([]Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read profile file %s", path)
	}
	profiles, err := Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "parse profile file %s", path)
	}
	return profiles, nil
}

// Parse decodes and validates a YAML profile document.
func Parse(raw []byte) ([]Profile, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}
	if len(doc.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	fallback := Seed()[0]
	seen := make(map[string]struct{}, len(doc.Profiles))
	out := make([]Profile, 0, len(doc.Profiles))
	for i, p := range doc.Profiles {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, errors.Wrapf(ErrInvalidEntry, "profile #%d has no id", i)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, errors.Wrapf(ErrInvalidEntry, "duplicate profile id %q", p.ID)
		}
		seen[p.ID] = struct{}{}

		replies := make([]string, 0, len(p.Replies))
		for _, reply := range p.Replies {
			if strings.TrimSpace(reply) != "" {
				replies = append(replies, reply)
			}
		}
		if len(replies) == 0 {
			return nil, errors.Wrapf(ErrInvalidEntry, "profile %q has no replies", p.ID)
		}
		p.Replies = replies

		out = append(out, p.withDefaults(fallback))
	}
	return out, nil
}
