package privy

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is fixed by the identity provider; access tokens always carry it.
const Issuer = "privy.io"

var (
	ErrInvalidToken = errors.New("invalid identity token")
	ErrTokenExpired = errors.New("identity token expired")
)

// Verifier checks provider access tokens locally: ES256 signature against
// the app's published verification key, plus issuer and audience claims.
type Verifier struct {
	appId string
	key   *ecdsa.PublicKey
}

func NewVerifier(appId, verificationKeyPEM string) (*Verifier, error) {
	block, _ := pem.Decode([]byte(verificationKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("verification key is not valid PEM")
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("unable to parse verification key: %w", err)
	}

	key, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("verification key is not an ECDSA public key")
	}

	return &Verifier{appId: appId, key: key}, nil
}

// Verify returns the token's subject id or an error the caller can map to
// an auth failure.
func (v *Verifier) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return v.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(v.appId),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
