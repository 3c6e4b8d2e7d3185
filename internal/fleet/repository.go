package fleet

import (
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
)

const (
	sshURLPrefixConstant   = "git@"
	httpsURLPrefixConstant = "https://"
	httpURLPrefixConstant  = "http://"
)

// RepositoryRecord describes a single repository participating in the fleet.
type RepositoryRecord struct {
	Name   string   `yaml:"name" json:"name"`
	URL    string   `yaml:"url" json:"url"`
	Tags   []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Path   string   `yaml:"path,omitempty" json:"path,omitempty"`
	Branch string   `yaml:"branch,omitempty" json:"branch,omitempty"`

	baseDirectory    string
	baseDirectorySet bool
}

// NewRepositoryRecord constructs a record with the provided name and URL.
func NewRepositoryRecord(name string, url string) RepositoryRecord {
	return RepositoryRecord{Name: name, URL: url}
}

// SetBaseDirectory records the directory relative paths are resolved against. Only the first call has an effect.
func (record *RepositoryRecord) SetBaseDirectory(baseDirectory string) {
	if record == nil || record.baseDirectorySet {
		return
	}
	record.baseDirectory = baseDirectory
	record.baseDirectorySet = true
}

// BaseDirectory returns the directory assigned by SetBaseDirectory.
func (record RepositoryRecord) BaseDirectory() string {
	return record.baseDirectory
}

// TargetDirectory resolves the local checkout directory for the record.
func (record RepositoryRecord) TargetDirectory() string {
	explicitPath := strings.TrimSpace(record.Path)
	if len(explicitPath) > 0 {
		if filepath.IsAbs(explicitPath) || len(record.baseDirectory) == 0 {
			return explicitPath
		}
		return filepath.Join(record.baseDirectory, explicitPath)
	}

	if len(record.baseDirectory) == 0 {
		return record.Name
	}
	return filepath.Join(record.baseDirectory, record.Name)
}

// HasTag reports whether the record carries the tag.
func (record RepositoryRecord) HasTag(tag string) bool {
	for _, candidate := range record.Tags {
		if candidate == tag {
			return true
		}
	}
	return false
}

// HasAllTags reports whether every tag is present on the record.
func (record RepositoryRecord) HasAllTags(tags []string) bool {
	for _, tag := range tags {
		if !record.HasTag(tag) {
			return false
		}
	}
	return true
}

// HasAnyTag reports whether at least one tag is present on the record.
func (record RepositoryRecord) HasAnyTag(tags []string) bool {
	for _, tag := range tags {
		if record.HasTag(tag) {
			return true
		}
	}
	return false
}

// AddTag appends the tag unless the record already carries it.
func (record *RepositoryRecord) AddTag(tag string) {
	if record == nil || record.HasTag(tag) {
		return
	}
	record.Tags = append(record.Tags, tag)
}

// Validate checks the record name and URL.
func (record RepositoryRecord) Validate() error {
	var validationError error
	if len(record.Name) == 0 {
		validationError = multierr.Append(validationError, ValidationError{Kind: ValidationKindEmptyRepositoryName, Subject: record.Name})
	}

	switch {
	case len(record.URL) == 0:
		validationError = multierr.Append(validationError, ValidationError{Kind: ValidationKindEmptyRepositoryURL, Subject: record.Name})
	case !IsSupportedRepositoryURL(record.URL):
		validationError = multierr.Append(validationError, ValidationError{Kind: ValidationKindInvalidRepositoryURL, Subject: record.Name, Value: record.URL})
	}

	return validationError
}

// IsSupportedRepositoryURL reports whether the URL uses an ssh, https, or http form.
func IsSupportedRepositoryURL(url string) bool {
	return strings.HasPrefix(url, sshURLPrefixConstant) ||
		strings.HasPrefix(url, httpsURLPrefixConstant) ||
		strings.HasPrefix(url, httpURLPrefixConstant)
}
