package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/model"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/utils"
)

// EditTokenTTL is how long a self-service link stays usable.
const EditTokenTTL = 7 * 24 * time.Hour

// TokenLookup finds a booking by the hash of its edit token.
type TokenLookup interface {
	FindByTokenHash(ctx context.Context, hash string) (*model.Booking, error)
}

// TokenIssuer mints and checks self-service edit tokens. Tokens are random
// UUIDv4 strings; only their SHA-256 is stored.
type TokenIssuer struct {
	lookup TokenLookup
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(lookup TokenLookup, now func() time.Time) *TokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{lookup: lookup, ttl: EditTokenTTL, now: now}
}

// Issue returns a fresh raw token and the stored form with its expiry.
func (i *TokenIssuer) Issue() (string, model.EditToken, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", model.EditToken{}, fmt.Errorf("generate token: %w", err)
	}
	raw := id.String()
	return raw, model.EditToken{
		Hash:      utils.HashToken(raw),
		ExpiresAt: i.now().UTC().Add(i.ttl),
	}, nil
}

// Resolve returns the booking holding raw as its current token, whether or
// not the token has expired. Malformed tokens fail before any lookup.
func (i *TokenIssuer) Resolve(ctx context.Context, raw string) (*model.Booking, error) {
	raw, ok := normalizeToken(raw)
	if !ok {
		return nil, ErrTokenInvalid
	}
	b, err := i.lookup.FindByTokenHash(ctx, utils.HashToken(raw))
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("find booking by token: %w", err)
	}
	return b, nil
}

// Validate reports ErrTokenExpired once now is past the token's expiry.
func (i *TokenIssuer) Validate(b *model.Booking) error {
	if b.Token != nil && b.Token.Expired(i.now()) {
		return ErrTokenExpired
	}
	return nil
}

// normalizeToken accepts only the canonical 36-character UUID form.
func normalizeToken(raw string) (string, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if len(raw) != 36 {
		return "", false
	}
	if _, err := uuid.Parse(raw); err != nil {
		return "", false
	}
	return raw, true
}
