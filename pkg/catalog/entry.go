// pkg/catalog/entry.go - the software entry data model and its write validation.

package catalog

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// InstallType selects how the agent completes an installation.
type InstallType string

const (
	InstallSilent InstallType = "silent"
	InstallManual InstallType = "manual"
)

// DefaultCategory is stored when an entry is saved without a category.
const DefaultCategory = "uncategorized"

// ParseInstallType accepts "silent" or "manual"; an empty value means silent.
func ParseInstallType(s string) (InstallType, error) {
	switch InstallType(strings.ToLower(strings.TrimSpace(s))) {
	case "", InstallSilent:
		return InstallSilent, nil
	case InstallManual:
		return InstallManual, nil
	default:
		return "", fmt.Errorf("%w: installType %q must be \"silent\" or \"manual\"", ErrInvalidInput, s)
	}
}

// SoftwareEntry is one installable application version in the catalog.
type SoftwareEntry struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Version     string      `json:"version"`
	Description string      `json:"description"`
	DownloadURL string      `json:"downloadUrl"`
	LogoRef     string      `json:"logoRef"`
	InstallType InstallType `json:"installType"`
	SilentArgs  string      `json:"silentArgs"`
	Category    string      `json:"category"`
	SHA256      string      `json:"sha256,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// EntryInput is the client-supplied body of a create or replace request.
type EntryInput struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	DownloadURL string `json:"downloadUrl"`
	LogoRef     string `json:"logoRef"`
	InstallType string `json:"installType"`
	SilentArgs  string `json:"silentArgs"`
	Category    string `json:"category"`
	SHA256      string `json:"sha256"`
}

// ToEntry validates the input and returns the entry to persist.
// Required fields: name, version, downloadUrl.
func (in EntryInput) ToEntry() (*SoftwareEntry, error) {
	name := strings.TrimSpace(in.Name)
	version := strings.TrimSpace(in.Version)
	downloadURL := strings.TrimSpace(in.DownloadURL)

	for _, f := range []struct{ field, value string }{
		{"name", name},
		{"version", version},
		{"downloadUrl", downloadURL},
	} {
		if f.value == "" {
			return nil, fmt.Errorf("%w: missing or empty required field: %s", ErrInvalidInput, f.field)
		}
	}

	installType, err := ParseInstallType(in.InstallType)
	if err != nil {
		return nil, err
	}

	sum := strings.ToLower(strings.TrimSpace(in.SHA256))
	if sum != "" {
		if b, err := hex.DecodeString(sum); err != nil || len(b) != 32 {
			return nil, fmt.Errorf("%w: sha256 must be 64 hexadecimal characters", ErrInvalidInput)
		}
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}

	return &SoftwareEntry{
		Name:        name,
		Version:     version,
		Description: strings.TrimSpace(in.Description),
		DownloadURL: downloadURL,
		LogoRef:     strings.TrimSpace(in.LogoRef),
		InstallType: installType,
		SilentArgs:  strings.TrimSpace(in.SilentArgs),
		Category:    category,
		SHA256:      sum,
	}, nil
}
