// pkg/catalog/service.go - the catalog façade used by the HTTP layer.

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/windowsadmins/appstore/pkg/logging"
	"github.com/windowsadmins/appstore/pkg/metrics"
)

// ListOptions narrows and orders a catalog listing.
type ListOptions struct {
	Search   string // case-insensitive substring over name, version, description, category
	Category string // exact category match, case-insensitive
	Sort     string // name (default), newest or version
}

// Service validates writes and resolves asset URLs on every entry it returns.
type Service struct {
	store    Store
	resolver *Resolver
}

func NewService(store Store, resolver *Resolver) *Service {
	return &Service{store: store, resolver: resolver}
}

func (s *Service) List(ctx context.Context, opts ListOptions) ([]*SoftwareEntry, error) {
	order, err := ParseSortOrder(opts.Sort)
	if err != nil {
		return nil, err
	}

	var entries []*SoftwareEntry
	if q := strings.TrimSpace(opts.Search); q != "" {
		entries, err = s.store.Search(ctx, q)
	} else {
		entries, err = s.store.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	if category := strings.TrimSpace(opts.Category); category != "" {
		filtered := make([]*SoftwareEntry, 0, len(entries))
		for _, e := range entries {
			if strings.EqualFold(e.Category, category) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	sortEntries(entries, order)
	return s.resolveAll(entries), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*SoftwareEntry, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolver.Entry(e), nil
}

func (s *Service) Create(ctx context.Context, in EntryInput) (*SoftwareEntry, error) {
	entry, err := in.ToEntry()
	if err != nil {
		metrics.ObserveCatalogMutation("create", resultLabel(err))
		return nil, err
	}
	id, err := s.store.Insert(ctx, entry)
	metrics.ObserveCatalogMutation("create", resultLabel(err))
	if err != nil {
		if errors.Is(err, ErrConflict) {
			logging.Warn("Duplicate software name rejected", "name", entry.Name)
		}
		return nil, err
	}
	logging.Info("Software entry created", "id", id, "name", entry.Name, "version", entry.Version)
	return s.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, in EntryInput) (*SoftwareEntry, error) {
	entry, err := in.ToEntry()
	if err != nil {
		metrics.ObserveCatalogMutation("update", resultLabel(err))
		return nil, err
	}
	err = s.store.Update(ctx, id, entry)
	metrics.ObserveCatalogMutation("update", resultLabel(err))
	if err != nil {
		return nil, err
	}
	logging.Info("Software entry updated", "id", id, "name", entry.Name, "version", entry.Version)
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	metrics.ObserveCatalogMutation("delete", resultLabel(err))
	if err != nil {
		return err
	}
	logging.Info("Software entry deleted", "id", id)
	return nil
}

// SeedIfEmpty inserts entries when the catalog has none and returns how many were added.
func (s *Service) SeedIfEmpty(ctx context.Context, seed []EntryInput) (int, error) {
	existing, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i, in := range seed {
		if _, err := s.Create(ctx, in); err != nil {
			return i, fmt.Errorf("seeding %q: %w", in.Name, err)
		}
	}
	return len(seed), nil
}

func (s *Service) resolveAll(entries []*SoftwareEntry) []*SoftwareEntry {
	out := make([]*SoftwareEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, s.resolver.Entry(e))
	}
	return out
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
