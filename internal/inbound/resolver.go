package inbound

import (
	authdomain "vida-backend/internal/auth/domain"
	authrepo "vida-backend/internal/auth/repository"
)

// Resolver maps inbound phone numbers to users
type Resolver struct {
	userRepo authrepo.UserRepository
}

// NewResolver creates a new Resolver
func NewResolver(userRepo authrepo.UserRepository) *Resolver {
	return &Resolver{userRepo: userRepo}
}

// ResolveByPhone finds the user owning the phone number. Returns
// (nil, nil) when nobody matches; the caller drops the message
// silently in that case.
func (r *Resolver) ResolveByPhone(rawPhone string) (*authdomain.User, error) {
	for _, variant := range PhoneVariants(rawPhone) {
		user, err := r.userRepo.FindByPhone(variant)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}
	return nil, nil
}
