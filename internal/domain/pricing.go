package domain

import "time"

// Package is a purchasable bundle of tests. Price always reflects the
// package's own discount; OriginalPrice is only set while that discount is
// active. The pricing policy keeps the three fields consistent on every
// write.
type Package struct {
	ID                         string   `json:"id"`
	Name                       string   `json:"name"`
	Price                      float64  `json:"price"`
	OriginalPrice              *float64 `json:"originalPrice,omitempty"`
	DiscountPercentage         *float64 `json:"discountPercentage,omitempty"`
	MinFloorPrice              *float64 `json:"minFloorPrice,omitempty"`
	MaxAdditionalDiscount      *float64 `json:"maxAdditionalDiscount,omitempty"` // percentage points
	EligibilityDiscountEnabled bool     `json:"eligibilityDiscountEnabled"`
}

// DisplayPrice is the current sale price; after normalization it already
// reflects the package's own discount.
func (p Package) DisplayPrice() float64 { return p.Price }

// ListedOriginalPrice returns the pre-discount baseline, or the current
// price when no discount is active.
func (p Package) ListedOriginalPrice() float64 {
	if p.OriginalPrice != nil {
		return *p.OriginalPrice
	}
	return p.Price
}

// Group is a B2B group whose members may receive an eligibility discount.
type Group struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Active             bool       `json:"active"`
	DiscountPercentage float64    `json:"discountPercentage"`
	MinMembers         int        `json:"minMembers"`
	MemberCount        int        `json:"memberCount"`
	ExpiresAt          *time.Time `json:"expiresAt,omitempty"`
}

// Eligible reports whether the group currently qualifies for its discount.
func (g Group) Eligible(now time.Time) bool {
	if !g.Active {
		return false
	}
	if g.MemberCount < g.MinMembers {
		return false
	}
	if g.ExpiresAt != nil && !g.ExpiresAt.After(now) {
		return false
	}
	return true
}

// Organization is a verified institution whose registered members may
// receive an eligibility discount.
type Organization struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Verified           bool    `json:"verified"`
	DiscountPercentage float64 `json:"discountPercentage"`
}

// UserMemberships is the read-only membership view consumed by discount
// resolution. Group is the user's group when they belong to one; Org is set
// together with OrgRegistered when the user is an active org member.
type UserMemberships struct {
	UserID        string        `json:"userId"`
	Group         *Group        `json:"group,omitempty"`
	Org           *Organization `json:"organization,omitempty"`
	OrgRegistered bool          `json:"orgRegistered"`
}

// DiscountSource identifies where an eligibility discount came from.
type DiscountSource string

const (
	DiscountSourceGroup        DiscountSource = "group"
	DiscountSourceOrganization DiscountSource = "organization"
)

// DiscountCandidate is one evaluated eligibility discount.
type DiscountCandidate struct {
	Source     DiscountSource `json:"type"`
	Percentage float64        `json:"percentage"`
	SourceID   string         `json:"sourceId"`
}

// CapReason records which pricing cap bound a quote, if any.
type CapReason string

const (
	CapNone          CapReason = ""
	CapFloorPrice    CapReason = "floor-price"
	CapMaxAdditional CapReason = "max-additional-discount"
)

// DiscountQuote is the outcome of resolving the best eligibility discount
// for a user against a package.
type DiscountQuote struct {
	Eligible       bool               `json:"eligible"`
	Discount       *DiscountCandidate `json:"discount,omitempty"`
	Reason         string             `json:"reason,omitempty"` // set when ineligible
	DisplayPrice   float64            `json:"displayPrice"`
	DiscountAmount float64            `json:"discountAmount"`
	FinalPrice     float64            `json:"finalPrice"`
	CappedBy       CapReason          `json:"cappedBy,omitempty"`
}

// DiscountValidation is the pre-payment re-check of a claimed discount.
// FallbackPrice is what the buyer pays when the claim does not hold.
type DiscountValidation struct {
	Valid         bool    `json:"valid"`
	Reason        string  `json:"reason,omitempty"`
	FinalPrice    float64 `json:"finalPrice,omitempty"`
	FallbackPrice float64 `json:"fallbackPrice,omitempty"`
}
