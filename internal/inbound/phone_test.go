package inbound

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	authdomain "vida-backend/internal/auth/domain"
)

func TestCanonicalPhone(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		// The three forms the same number arrives in
		{"+5511999999999", "5511999999999"},
		{"5511999999999", "5511999999999"},
		{"11999999999", "5511999999999"},
		// Bridge JID
		{"5511999999999@s.whatsapp.net", "5511999999999"},
		// Carrier formatting
		{"+55 (11) 99999-9999", "5511999999999"},
		{" +5511999999999 ", "5511999999999"},
		// Too short to carry a DDD, kept as-is
		{"99999", "99999"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalPhone(tt.raw), "raw %q", tt.raw)
	}
}

func TestCanonicalPhoneVariantsConverge(t *testing.T) {
	variants := []string{
		"+5511999999999",
		"5511999999999",
		"11999999999",
		"5511999999999@s.whatsapp.net",
	}
	for _, v := range variants {
		assert.Equal(t, "5511999999999", CanonicalPhone(v), "variant %q", v)
	}
}

func TestPhoneVariants(t *testing.T) {
	variants := PhoneVariants("+5511999999999")

	// Canonical form always comes first
	assert.Equal(t, "5511999999999", variants[0])
	assert.Contains(t, variants, "11999999999")

	// No duplicates, no empties
	seen := map[string]bool{}
	for _, v := range variants {
		assert.NotEmpty(t, v)
		assert.False(t, seen[v], "duplicate variant %q", v)
		seen[v] = true
	}
}

func TestPhoneVariantsShortNumber(t *testing.T) {
	variants := PhoneVariants("99999")
	assert.Equal(t, []string{"99999"}, variants)
}

type fakeUserRepo struct {
	byPhone map[string]*authdomain.User
	queried []string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byPhone: map[string]*authdomain.User{}}
}

func (r *fakeUserRepo) addUser(id, phone string) {
	r.byPhone[phone] = &authdomain.User{ID: id, PhoneNumber: phone}
}

func (r *fakeUserRepo) Create(u *authdomain.User) error { return nil }
func (r *fakeUserRepo) FindByID(id string) (*authdomain.User, error) { return nil, nil }
func (r *fakeUserRepo) FindByEmail(email string) (*authdomain.User, error) { return nil, nil }
func (r *fakeUserRepo) FindByPhone(phone string) (*authdomain.User, error) {
	r.queried = append(r.queried, phone)
	return r.byPhone[phone], nil
}
func (r *fakeUserRepo) Update(u *authdomain.User) error             { return nil }
func (r *fakeUserRepo) FindNotifiable() ([]*authdomain.User, error) { return nil, nil }
func (r *fakeUserRepo) MarkWakeUpSent(id string, at time.Time) error { return nil }

func TestResolverTriesVariantsInOrder(t *testing.T) {
	repo := newFakeUserRepo()
	// Legacy row stored without the country code
	repo.addUser("user-1", "11999999999")

	resolver := NewResolver(repo)
	user, err := resolver.ResolveByPhone("+5511999999999")

	assert.NoError(t, err)
	if assert.NotNil(t, user) {
		assert.Equal(t, "user-1", user.ID)
	}
	// Canonical form is tried before the legacy fallbacks
	assert.Equal(t, "5511999999999", repo.queried[0])
}

func TestResolverCanonicalRowMatchesAllInboundForms(t *testing.T) {
	repo := newFakeUserRepo()
	repo.addUser("user-1", "5511999999999")
	resolver := NewResolver(repo)

	for _, raw := range []string{"+5511999999999", "5511999999999", "11999999999", "5511999999999@s.whatsapp.net"} {
		user, err := resolver.ResolveByPhone(raw)
		assert.NoError(t, err)
		if assert.NotNil(t, user, "raw %q", raw) {
			assert.Equal(t, "user-1", user.ID)
		}
	}
}

func TestResolverUnknownPhoneReturnsNil(t *testing.T) {
	repo := newFakeUserRepo()
	resolver := NewResolver(repo)

	user, err := resolver.ResolveByPhone("+5521888888888")

	assert.NoError(t, err)
	assert.Nil(t, user)
}
