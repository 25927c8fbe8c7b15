package app

import (
	"context"
	"fmt"

	"mocktest-service/internal/domain"
)

// PackageService is the package write path; every save runs the pricing
// policy first so the derived-state invariant holds after any mutation.
type PackageService struct {
	packages PackageRepository
}

func NewPackageService(packages PackageRepository) *PackageService {
	return &PackageService{packages: packages}
}

func (s *PackageService) Get(ctx context.Context, packageID string) (domain.Package, error) {
	if packageID == "" {
		return domain.Package{}, fmt.Errorf("%w: packageID is required", domain.ErrValidation)
	}
	return s.packages.GetPackage(ctx, packageID)
}

// Save normalizes and persists a package, returning the stored form.
func (s *PackageService) Save(ctx context.Context, pkg domain.Package) (domain.Package, error) {
	if pkg.ID == "" {
		return domain.Package{}, fmt.Errorf("%w: package id is required", domain.ErrValidation)
	}
	if pkg.Price < 0 {
		return domain.Package{}, fmt.Errorf("%w: price must be non-negative", domain.ErrValidation)
	}
	if pkg.DiscountPercentage != nil && (*pkg.DiscountPercentage < 0 || *pkg.DiscountPercentage > 100) {
		return domain.Package{}, fmt.Errorf("%w: discountPercentage must be between 0 and 100", domain.ErrValidation)
	}
	normalized := NormalizePackage(pkg)
	if err := s.packages.SavePackage(ctx, normalized); err != nil {
		return domain.Package{}, fmt.Errorf("save package: %w", err)
	}
	return normalized, nil
}

// NormalizePackage re-establishes the derived-state invariant between a
// package's price, original price and discount percentage. It is invoked by
// the write path before every persist and is idempotent: the discounted
// price is always recomputed from the stored original, never from the
// possibly already-discounted price field.
func NormalizePackage(pkg domain.Package) domain.Package {
	discount := 0.0
	if pkg.DiscountPercentage != nil {
		discount = *pkg.DiscountPercentage
	}

	if discount > 0 {
		if pkg.OriginalPrice == nil {
			original := pkg.Price
			pkg.OriginalPrice = &original
		}
		pkg.Price = *pkg.OriginalPrice * (1 - discount/100)
		return pkg
	}

	if pkg.OriginalPrice != nil {
		pkg.Price = *pkg.OriginalPrice
		pkg.OriginalPrice = nil
	}
	return pkg
}
