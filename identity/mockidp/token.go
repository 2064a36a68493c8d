package mockidp

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/upb/auth-gateway/identity"
	"github.com/upb/auth-gateway/models"
)

// Claims are the claims carried by tokens this provider signs
type Claims struct {
	UID           string `json:"uid"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Generation    int    `json:"gen,omitempty"`
	jwt.RegisteredClaims
}

func (p *Provider) signToken(uid, email string, emailVerified bool, generation int) (string, error) {
	now := p.now()
	claims := &Claims{
		UID:           uid,
		Email:         email,
		EmailVerified: emailVerified,
		Generation:    generation,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.issuer},
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (p *Provider) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	},
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", identity.ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", identity.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, identity.ErrInvalidToken
	}
	if claims.UID == "" {
		return nil, fmt.Errorf("%w: %w", identity.ErrInvalidToken, identity.ErrMissingClaim)
	}
	return claims, nil
}

func (c *Claims) decoded() *models.DecodedToken {
	d := &models.DecodedToken{
		UID:           c.UID,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
	}
	if c.ExpiresAt != nil {
		d.ExpiresAt = c.ExpiresAt.Time
	}
	return d
}
