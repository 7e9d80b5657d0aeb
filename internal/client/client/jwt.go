package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtRefreshSkew re-mints tokens this long before they expire.
const jwtRefreshSkew = time.Minute

var errNoExpiry = errors.New("token has no exp claim")

type sessionClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
}

// tokenExpiry reads exp without checking the signature. The token is only
// ever sent back to the server that issued it.
func tokenExpiry(token string) (time.Time, error) {
	var claims sessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// accessToken returns a JWT for document calls, minting a fresh one from the
// session when the cached token is missing or about to expire.
func (c *AppwriteClient) accessToken(ctx context.Context) (string, error) {
	c.jwtMu.Lock()
	defer c.jwtMu.Unlock()

	creds, err := c.credentials(ctx)
	if err != nil {
		return "", err
	}
	if creds.Session == "" {
		return "", &GatewayError{Op: opMintJWT, Kind: ErrNotAuthenticated, Message: "no active session"}
	}

	if creds.JWT != "" {
		exp, err := tokenExpiry(creds.JWT)
		if err == nil && c.now().Add(jwtRefreshSkew).Before(exp) {
			return creds.JWT, nil
		}
	}

	var out jwtDTO
	req := request{op: opMintJWT, method: http.MethodPost, path: "/account/jwts", auth: authSession}
	if _, err := c.do(ctx, req, &out); err != nil {
		return "", err
	}

	creds.JWT = out.JWT
	if err := c.setCredentials(ctx, creds); err != nil {
		c.log.Warn(ctx, "failed to persist access token", "error", err)
	}
	return out.JWT, nil
}
