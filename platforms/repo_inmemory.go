package platforms

import (
	"errors"
	"sort"
	"sync"

	apperrors "github.com/1rychv/blunote-lti-chatkit/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu        sync.RWMutex
	platforms map[string]*Platform
}

// NewInMemoryRepo creates a new in-memory platform registry
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		platforms: make(map[string]*Platform),
	}
}

var _ Repo = (*InMemoryRepo)(nil)

// Upsert registers or updates a platform, keyed by issuer
func (r *InMemoryRepo) Upsert(platformData *Platform) error {
	if platformData == nil {
		return errors.New("platform cannot be nil")
	}
	if platformData.Issuer == "" {
		return errors.New("platform issuer is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *platformData
	r.platforms[platformData.Issuer] = &copied
	return nil
}

// Delete removes a platform registration
func (r *InMemoryRepo) Delete(issuer string) error {
	if issuer == "" {
		return errors.New("issuer is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.platforms, issuer)
	return nil
}

// Get retrieves a platform by issuer
func (r *InMemoryRepo) Get(issuer string) (*Platform, error) {
	if issuer == "" {
		return nil, apperrors.ErrPlatformNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	platform, ok := r.platforms[issuer]
	if !ok {
		return nil, apperrors.ErrPlatformNotFound
	}

	copied := *platform
	return &copied, nil
}

// List returns registered platforms ordered by issuer
func (r *InMemoryRepo) List(offset, limit int) ([]*Platform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*Platform, 0, len(r.platforms))
	for _, platform := range r.platforms {
		copied := *platform
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Issuer < all[j].Issuer })

	if offset >= len(all) {
		return []*Platform{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}
