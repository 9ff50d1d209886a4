package auth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/bookshelfapp/bookshelf-server/internal/id"
)

const (
	tokenIssuer   = "bookshelf-server"
	tokenAudience = "bookshelf-client"
)

// TokenService handles PASETO token generation and verification.
type TokenService struct {
	symmetricKey        paseto.V4SymmetricKey
	accessTokenDuration time.Duration
	now                 func() time.Time
}

// NewTokenService creates a token service from a hex-encoded v4 key.
func NewTokenService(keyHex string, accessDuration time.Duration) (*TokenService, error) {
	if err := checkKeyHex(keyHex); err != nil {
		return nil, err
	}
	keyBytes, _ := hex.DecodeString(keyHex)

	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey:        key,
		accessTokenDuration: accessDuration,
		now:                 time.Now,
	}, nil
}

// GenerateAccessToken creates a v4.local access token whose subject is userID.
func (s *TokenService) GenerateAccessToken(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	now := s.now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(userID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.accessTokenDuration))

	tokenID, err := id.Generate("token")
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyAccessToken decrypts a token and checks issuer, audience and
// validity window.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	subject, err := token.GetSubject()
	if err != nil || subject == "" {
		return nil, errors.New("invalid token: missing subject")
	}

	claims := &AccessClaims{Subject: subject}
	claims.TokenID, _ = token.GetJti()
	claims.IssuedAt, _ = token.GetIssuedAt()
	claims.Expiration, _ = token.GetExpiration()
	return claims, nil
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *TokenService) AccessTokenDuration() time.Duration {
	return s.accessTokenDuration
}
