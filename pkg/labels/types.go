package labels

import (
	"fmt"
	"strings"
)

// LabelSpec is a desired label after color resolution
type LabelSpec struct {
	Name        string `json:"name" yaml:"name"`
	Color       string `json:"color" yaml:"color"`
	Description string `json:"description" yaml:"description"`
	RenamedFrom string `json:"renamed_from,omitempty" yaml:"renamed_from,omitempty"`
}

// RemoteLabel is a label as currently stored in the repository
type RemoteLabel struct {
	Name        string `json:"name" yaml:"name"`
	Color       string `json:"color" yaml:"color"`
	Description string `json:"description" yaml:"description"`
}

// IgnoreSet holds label names that are never deleted. Lookups ignore case.
type IgnoreSet map[string]struct{}

// NewIgnoreSet builds an IgnoreSet from a list of names
func NewIgnoreSet(names ...string) IgnoreSet {
	set := make(IgnoreSet, len(names))
	for _, name := range names {
		set[nameKey(name)] = struct{}{}
	}
	return set
}

// Contains reports whether name is ignored
func (s IgnoreSet) Contains(name string) bool {
	_, ok := s[nameKey(name)]
	return ok
}

// DesiredState is the normalized content of a label document
type DesiredState struct {
	Labels  []LabelSpec
	Ignores IgnoreSet
	Colors  ColorTable
}

// Mode selects whether orphaned remote labels are deleted
type Mode string

const (
	ModeNormal Mode = "normal"
	ModeDelete Mode = "delete"
)

// ParseMode parses a mode name
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeNormal, "":
		return ModeNormal, nil
	case ModeDelete:
		return ModeDelete, nil
	default:
		return "", &ConfigError{Field: "mode", Value: s, Message: "mode must be one of: normal, delete"}
	}
}

// Repository identifies a GitHub repository
type Repository struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// ParseRepository parses an "owner/name" reference
func ParseRepository(s string) (Repository, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repository{}, &ConfigError{
			Field:   "repository",
			Value:   s,
			Message: "repository must be in the form owner/name",
		}
	}
	return Repository{Owner: owner, Name: name}, nil
}

// String returns the owner/name form
func (r Repository) String() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// nameKey is the comparison key for label names; GitHub treats them case-insensitively
func nameKey(name string) string {
	return strings.ToLower(name)
}
