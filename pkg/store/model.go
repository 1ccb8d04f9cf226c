package store

import (
	"time"

	"github.com/windowsadmins/appstore/pkg/catalog"
)

// SoftwareModel is the persisted form of catalog.SoftwareEntry.
type SoftwareModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:255;not null;uniqueIndex"`
	Version     string `gorm:"size:128;not null"`
	Description string `gorm:"type:text"`
	DownloadURL string `gorm:"size:2048;not null"`
	LogoRef     string `gorm:"type:text"` // may hold a data: URI
	InstallType string `gorm:"size:16;not null;default:silent"`
	SilentArgs  string `gorm:"size:1024"`
	Category    string `gorm:"size:128;not null;default:uncategorized"`
	SHA256      string `gorm:"column:sha256;size:64"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (SoftwareModel) TableName() string { return "software" }

func entryToModel(e *catalog.SoftwareEntry) *SoftwareModel {
	return &SoftwareModel{
		ID:          e.ID,
		Name:        e.Name,
		Version:     e.Version,
		Description: e.Description,
		DownloadURL: e.DownloadURL,
		LogoRef:     e.LogoRef,
		InstallType: string(e.InstallType),
		SilentArgs:  e.SilentArgs,
		Category:    e.Category,
		SHA256:      e.SHA256,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func modelToEntry(m *SoftwareModel) *catalog.SoftwareEntry {
	return &catalog.SoftwareEntry{
		ID:          m.ID,
		Name:        m.Name,
		Version:     m.Version,
		Description: m.Description,
		DownloadURL: m.DownloadURL,
		LogoRef:     m.LogoRef,
		InstallType: catalog.InstallType(m.InstallType),
		SilentArgs:  m.SilentArgs,
		Category:    m.Category,
		SHA256:      m.SHA256,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
