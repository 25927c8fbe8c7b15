package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"mocktest-service/internal/domain"
)

// MembershipStore reads membership, group and organization documents.
type MembershipStore struct {
	pool *pgxpool.Pool
}

func NewMembershipStore(pool *pgxpool.Pool) *MembershipStore {
	return &MembershipStore{pool: pool}
}

func (s *MembershipStore) GetMemberships(ctx context.Context, userID string) (domain.UserMemberships, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM memberships WHERE user_id=$1`, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		// No membership record means no discount candidates, not a failure.
		return domain.UserMemberships{UserID: userID}, nil
	}
	if err != nil {
		return domain.UserMemberships{}, fmt.Errorf("load memberships: %w", err)
	}
	var memberships domain.UserMemberships
	if err := json.Unmarshal(raw, &memberships); err != nil {
		return domain.UserMemberships{}, fmt.Errorf("unmarshal memberships: %w", err)
	}
	return memberships, nil
}

func (s *MembershipStore) GetGroup(ctx context.Context, groupID string) (domain.Group, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM study_groups WHERE id=$1`, groupID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Group{}, domain.ErrGroupNotFound
	}
	if err != nil {
		return domain.Group{}, fmt.Errorf("load group: %w", err)
	}
	var group domain.Group
	if err := json.Unmarshal(raw, &group); err != nil {
		return domain.Group{}, fmt.Errorf("unmarshal group: %w", err)
	}
	return group, nil
}

func (s *MembershipStore) GetOrganization(ctx context.Context, orgID string) (domain.Organization, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM organizations WHERE id=$1`, orgID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Organization{}, domain.ErrOrganizationNotFound
	}
	if err != nil {
		return domain.Organization{}, fmt.Errorf("load organization: %w", err)
	}
	var org domain.Organization
	if err := json.Unmarshal(raw, &org); err != nil {
		return domain.Organization{}, fmt.Errorf("unmarshal organization: %w", err)
	}
	return org, nil
}
