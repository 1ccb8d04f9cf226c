package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/windowsadmins/appstore/pkg/catalog"
	"gorm.io/gorm"
)

var _ catalog.Store = (*SoftwareRepo)(nil)

// SoftwareRepo is the gorm implementation of catalog.Store.
type SoftwareRepo struct {
	db *gorm.DB
	// writes are serialized so the uniqueness check and the write are one step
	// even on drivers whose constraint errors arrive late
	writeMu sync.Mutex
}

func NewSoftwareRepo(db *gorm.DB) *SoftwareRepo {
	return &SoftwareRepo{db: db}
}

const listOrder = "name ASC, id ASC"

func (r *SoftwareRepo) List(ctx context.Context) ([]*catalog.SoftwareEntry, error) {
	var models []SoftwareModel
	if err := r.db.WithContext(ctx).Order(listOrder).Find(&models).Error; err != nil {
		return nil, err
	}
	return toEntries(models), nil
}

func (r *SoftwareRepo) Get(ctx context.Context, id int64) (*catalog.SoftwareEntry, error) {
	var m SoftwareModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("software %d %w", id, catalog.ErrNotFound)
		}
		return nil, err
	}
	return modelToEntry(&m), nil
}

// Search matches substring case-insensitively against name, version,
// description and category.
func (r *SoftwareRepo) Search(ctx context.Context, substring string) ([]*catalog.SoftwareEntry, error) {
	pattern := "%" + escapeLike(strings.ToLower(substring)) + "%"
	var models []SoftwareModel
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(version) LIKE ? ESCAPE '!' OR "+
			"LOWER(description) LIKE ? ESCAPE '!' OR LOWER(category) LIKE ? ESCAPE '!'",
			pattern, pattern, pattern, pattern).
		Order(listOrder).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toEntries(models), nil
}

func (r *SoftwareRepo) Insert(ctx context.Context, entry *catalog.SoftwareEntry) (int64, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	m := entryToModel(entry)
	m.ID = 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkNameFree(tx, m.Name, 0); err != nil {
			return err
		}
		return tx.Create(m).Error
	})
	if err != nil {
		return 0, translateWriteError(err, m.Name)
	}
	return m.ID, nil
}

func (r *SoftwareRepo) Update(ctx context.Context, id int64, entry *catalog.SoftwareEntry) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing SoftwareModel
		if err := tx.Select("id").First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("software %d %w", id, catalog.ErrNotFound)
			}
			return err
		}
		if err := checkNameFree(tx, entry.Name, id); err != nil {
			return err
		}
		// a map so that empty strings are written too
		return tx.Model(&SoftwareModel{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":         entry.Name,
			"version":      entry.Version,
			"description":  entry.Description,
			"download_url": entry.DownloadURL,
			"logo_ref":     entry.LogoRef,
			"install_type": string(entry.InstallType),
			"silent_args":  entry.SilentArgs,
			"category":     entry.Category,
			"sha256":       entry.SHA256,
			"updated_at":   time.Now(),
		}).Error
	})
	return translateWriteError(err, entry.Name)
}

func (r *SoftwareRepo) Delete(ctx context.Context, id int64) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	result := r.db.WithContext(ctx).Delete(&SoftwareModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("software %d %w", id, catalog.ErrNotFound)
	}
	return nil
}

func checkNameFree(tx *gorm.DB, name string, exceptID int64) error {
	var count int64
	if err := tx.Model(&SoftwareModel{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("software with name %q %w", name, catalog.ErrConflict)
	}
	return nil
}

func translateWriteError(err error, name string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueConstraintError(err) {
		return fmt.Errorf("software with name %q %w", name, catalog.ErrConflict)
	}
	return err
}

func isUniqueConstraintError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "Duplicate entry")
}

// escapeLike escapes LIKE wildcards using '!' as the escape character.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

func toEntries(models []SoftwareModel) []*catalog.SoftwareEntry {
	entries := make([]*catalog.SoftwareEntry, 0, len(models))
	for i := range models {
		entries = append(entries, modelToEntry(&models[i]))
	}
	return entries
}
