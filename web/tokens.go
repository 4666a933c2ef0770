/* tokens.go
 * Contains the signed bearer tokens handed out by /api/login
 * Authors: Zachary Bower
 */

package web

import (
	"crypto/rand"
	"errors"
	"fmt"
	"llaves-bot/api/shared"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenTTL is how long a login token stays valid
const tokenTTL = 12 * time.Hour

var errInvalidToken = errors.New("invalid token")

type sessionClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
}

// randomSecret is used when no WEB_TOKEN_SECRET is configured. Tokens then stop working on restart.
func randomSecret() []byte {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("failed to generate token secret: %v", err))
	}
	return buf
}

// issueToken signs a token carrying session
func (s *Server) issueToken(session shared.Session) (string, error) {
	claims := &sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.IssuedAt.Add(tokenTTL)),
		},
		Username: session.Username,
		Admin:    session.Admin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// parseToken returns the session carried by a token
func (s *Server) parseToken(tokenString string) (shared.Session, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return shared.Session{}, errInvalidToken
	}

	session := shared.Session{UserID: claims.Subject, Username: claims.Username, Admin: claims.Admin}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	return session, nil
}

// session returns the session behind the request's bearer token, or an empty session
func (s *Server) session(r *http.Request) shared.Session {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return shared.Session{}
	}
	session, err := s.parseToken(token)
	if err != nil {
		return shared.Session{}
	}
	return session
}
