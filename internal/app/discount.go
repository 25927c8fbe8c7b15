package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mocktest-service/internal/domain"
)

// MembershipRepository looks up group/organization membership state.
type MembershipRepository interface {
	GetMemberships(ctx context.Context, userID string) (domain.UserMemberships, error)
	GetGroup(ctx context.Context, groupID string) (domain.Group, error)
	GetOrganization(ctx context.Context, orgID string) (domain.Organization, error)
}

// PackageRepository reads and writes packages. Writes go through the
// pricing policy in PackageService, never directly.
type PackageRepository interface {
	GetPackage(ctx context.Context, packageID string) (domain.Package, error)
	SavePackage(ctx context.Context, pkg domain.Package) error
}

// DiscountService resolves the best eligibility discount for a purchase and
// re-validates claimed discounts right before payment.
type DiscountService struct {
	members  MembershipRepository
	packages PackageRepository
	now      func() time.Time
}

func NewDiscountService(members MembershipRepository, packages PackageRepository) *DiscountService {
	return &DiscountService{members: members, packages: packages, now: time.Now}
}

// NewDiscountServiceWithClock is test-only for deterministic expiry checks.
func NewDiscountServiceWithClock(members MembershipRepository, packages PackageRepository, now func() time.Time) *DiscountService {
	return &DiscountService{members: members, packages: packages, now: now}
}

// Check computes the best eligibility discount for the user against the
// package. Ineligibility is part of the quote, not an error; the quote's
// final price then equals the display price.
func (s *DiscountService) Check(ctx context.Context, userID, packageID string) (domain.DiscountQuote, error) {
	if userID == "" || packageID == "" {
		return domain.DiscountQuote{}, fmt.Errorf("%w: userID and packageID are required", domain.ErrValidation)
	}
	pkg, err := s.packages.GetPackage(ctx, packageID)
	if err != nil {
		return domain.DiscountQuote{}, err
	}
	memberships, err := s.members.GetMemberships(ctx, userID)
	if err != nil {
		return domain.DiscountQuote{}, err
	}
	return ResolveDiscount(memberships, pkg, s.now()), nil
}

// Validate re-derives eligibility from the claimed source immediately before
// payment, so a stale client-side quote cannot buy a discount the user no
// longer qualifies for. It fails closed with a specific reason and the full
// display price as fallback.
func (s *DiscountService) Validate(ctx context.Context, userID, packageID, claimedGroupID, claimedOrgID string) (domain.DiscountValidation, error) {
	if userID == "" || packageID == "" {
		return domain.DiscountValidation{}, fmt.Errorf("%w: userID and packageID are required", domain.ErrValidation)
	}
	pkg, err := s.packages.GetPackage(ctx, packageID)
	if err != nil {
		return domain.DiscountValidation{}, err
	}
	fallback := pkg.DisplayPrice()

	if !pkg.EligibilityDiscountEnabled {
		return invalid(domain.ReasonDiscountsDisabled, fallback), nil
	}

	memberships, err := s.members.GetMemberships(ctx, userID)
	if err != nil {
		return domain.DiscountValidation{}, err
	}

	switch {
	case claimedGroupID != "":
		return s.validateGroupClaim(ctx, memberships, pkg, claimedGroupID)
	case claimedOrgID != "":
		return s.validateOrgClaim(ctx, memberships, pkg, claimedOrgID)
	default:
		quote := ResolveDiscount(memberships, pkg, s.now())
		if !quote.Eligible {
			return invalid(quote.Reason, fallback), nil
		}
		return domain.DiscountValidation{Valid: true, FinalPrice: quote.FinalPrice}, nil
	}
}

func (s *DiscountService) validateGroupClaim(ctx context.Context, memberships domain.UserMemberships, pkg domain.Package, groupID string) (domain.DiscountValidation, error) {
	fallback := pkg.DisplayPrice()
	group, err := s.members.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrGroupNotFound) {
			return invalid(domain.ReasonGroupNotFound, fallback), nil
		}
		return domain.DiscountValidation{}, err
	}
	if memberships.Group == nil || memberships.Group.ID != group.ID {
		return invalid(domain.ReasonNotGroupMember, fallback), nil
	}
	now := s.now()
	switch {
	case !group.Active:
		return invalid(domain.ReasonGroupInactive, fallback), nil
	case group.MemberCount < group.MinMembers:
		return invalid(domain.ReasonGroupBelowMin, fallback), nil
	case group.ExpiresAt != nil && !group.ExpiresAt.After(now):
		return invalid(domain.ReasonGroupExpired, fallback), nil
	}
	_, finalPrice, _ := applyCaps(pkg, group.DiscountPercentage)
	return domain.DiscountValidation{Valid: true, FinalPrice: finalPrice}, nil
}

func (s *DiscountService) validateOrgClaim(ctx context.Context, memberships domain.UserMemberships, pkg domain.Package, orgID string) (domain.DiscountValidation, error) {
	fallback := pkg.DisplayPrice()
	org, err := s.members.GetOrganization(ctx, orgID)
	if err != nil {
		if errors.Is(err, domain.ErrOrganizationNotFound) {
			return invalid(domain.ReasonOrgNotFound, fallback), nil
		}
		return domain.DiscountValidation{}, err
	}
	if !org.Verified {
		return invalid(domain.ReasonOrgNotVerified, fallback), nil
	}
	if memberships.Org == nil || memberships.Org.ID != org.ID || !memberships.OrgRegistered {
		return invalid(domain.ReasonNotOrgMember, fallback), nil
	}
	_, finalPrice, _ := applyCaps(pkg, org.DiscountPercentage)
	return domain.DiscountValidation{Valid: true, FinalPrice: finalPrice}, nil
}

func invalid(reason string, fallbackPrice float64) domain.DiscountValidation {
	return domain.DiscountValidation{Valid: false, Reason: reason, FallbackPrice: fallbackPrice}
}

// ResolveDiscount evaluates the group and organization candidates
// independently and picks the higher percentage; the group wins ties. The
// package's floor price is applied first, then the max-additional-discount
// cap, in that fixed order.
func ResolveDiscount(memberships domain.UserMemberships, pkg domain.Package, now time.Time) domain.DiscountQuote {
	display := pkg.DisplayPrice()
	quote := domain.DiscountQuote{DisplayPrice: display, FinalPrice: display}

	if !pkg.EligibilityDiscountEnabled {
		quote.Reason = domain.ReasonDiscountsDisabled
		return quote
	}

	group, hasGroup := groupCandidate(memberships, now)
	org, hasOrg := orgCandidate(memberships)

	var best domain.DiscountCandidate
	switch {
	case hasGroup && hasOrg:
		if group.Percentage >= org.Percentage {
			best = group
		} else {
			best = org
		}
	case hasGroup:
		best = group
	case hasOrg:
		best = org
	default:
		quote.Reason = domain.ReasonNoCandidates
		return quote
	}

	amount, finalPrice, cappedBy := applyCaps(pkg, best.Percentage)
	quote.Eligible = true
	quote.Discount = &best
	quote.DiscountAmount = amount
	quote.FinalPrice = finalPrice
	quote.CappedBy = cappedBy
	return quote
}

func groupCandidate(memberships domain.UserMemberships, now time.Time) (domain.DiscountCandidate, bool) {
	group := memberships.Group
	if group == nil || !group.Eligible(now) || group.DiscountPercentage <= 0 {
		return domain.DiscountCandidate{}, false
	}
	return domain.DiscountCandidate{
		Source:     domain.DiscountSourceGroup,
		Percentage: group.DiscountPercentage,
		SourceID:   group.ID,
	}, true
}

func orgCandidate(memberships domain.UserMemberships) (domain.DiscountCandidate, bool) {
	org := memberships.Org
	if org == nil || !org.Verified || !memberships.OrgRegistered || org.DiscountPercentage <= 0 {
		return domain.DiscountCandidate{}, false
	}
	return domain.DiscountCandidate{
		Source:     domain.DiscountSourceOrganization,
		Percentage: org.DiscountPercentage,
		SourceID:   org.ID,
	}, true
}

// applyCaps turns a percentage into a concrete discount amount and final
// price. The floor price binds before the max-additional cap; when the
// floor already reduced the amount below the cap, the floor's result
// stands.
func applyCaps(pkg domain.Package, percentage float64) (amount, finalPrice float64, cappedBy domain.CapReason) {
	display := pkg.DisplayPrice()
	amount = display * percentage / 100
	finalPrice = display - amount

	if pkg.MinFloorPrice != nil && finalPrice < *pkg.MinFloorPrice {
		finalPrice = *pkg.MinFloorPrice
		amount = display - finalPrice
		if amount < 0 {
			amount = 0
			finalPrice = display
		}
		cappedBy = domain.CapFloorPrice
	}

	if pkg.MaxAdditionalDiscount != nil {
		maxAmount := display * *pkg.MaxAdditionalDiscount / 100
		if amount > maxAmount {
			amount = maxAmount
			finalPrice = display - amount
			cappedBy = domain.CapMaxAdditional
		}
	}
	return amount, finalPrice, cappedBy
}
