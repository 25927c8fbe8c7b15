package memory

import (
	"context"
	"sync"

	"mocktest-service/internal/domain"
)

// PackageStore is an in-memory implementation of app.PackageRepository.
type PackageStore struct {
	mu       sync.RWMutex
	packages map[string]domain.Package
}

func NewPackageStore() *PackageStore {
	return &PackageStore{packages: make(map[string]domain.Package)}
}

// NewPackageStoreWith seeds the store; handy for tests and demo wiring.
func NewPackageStoreWith(packages map[string]domain.Package) *PackageStore {
	store := NewPackageStore()
	for id, pkg := range packages {
		pkg.ID = id
		store.packages[id] = pkg
	}
	return store
}

func (s *PackageStore) GetPackage(_ context.Context, packageID string) (domain.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pkg, ok := s.packages[packageID]; ok {
		return pkg, nil
	}
	return domain.Package{}, domain.ErrPackageNotFound
}

func (s *PackageStore) SavePackage(_ context.Context, pkg domain.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages[pkg.ID] = pkg
	return nil
}
