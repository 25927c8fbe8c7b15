package memory

import (
	"context"
	"sync"

	"mocktest-service/internal/domain"
)

// MembershipStore is an in-memory implementation of app.MembershipRepository.
type MembershipStore struct {
	mu          sync.RWMutex
	memberships map[string]domain.UserMemberships
	groups      map[string]domain.Group
	orgs        map[string]domain.Organization
}

func NewMembershipStore() *MembershipStore {
	return &MembershipStore{
		memberships: make(map[string]domain.UserMemberships),
		groups:      make(map[string]domain.Group),
		orgs:        make(map[string]domain.Organization),
	}
}

// PutMemberships records a user's membership view and indexes the
// referenced group/organization for direct lookup.
func (s *MembershipStore) PutMemberships(m domain.UserMemberships) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[m.UserID] = m
	if m.Group != nil {
		s.groups[m.Group.ID] = *m.Group
	}
	if m.Org != nil {
		s.orgs[m.Org.ID] = *m.Org
	}
}

// PutGroup registers a group independently of any user.
func (s *MembershipStore) PutGroup(g domain.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.ID] = g
}

// PutOrganization registers an organization independently of any user.
func (s *MembershipStore) PutOrganization(o domain.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[o.ID] = o
}

func (s *MembershipStore) GetMemberships(_ context.Context, userID string) (domain.UserMemberships, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.memberships[userID]; ok {
		return m, nil
	}
	// A user with no recorded memberships simply has no candidates.
	return domain.UserMemberships{UserID: userID}, nil
}

func (s *MembershipStore) GetGroup(_ context.Context, groupID string) (domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g, ok := s.groups[groupID]; ok {
		return g, nil
	}
	return domain.Group{}, domain.ErrGroupNotFound
}

func (s *MembershipStore) GetOrganization(_ context.Context, orgID string) (domain.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o, ok := s.orgs[orgID]; ok {
		return o, nil
	}
	return domain.Organization{}, domain.ErrOrganizationNotFound
}
