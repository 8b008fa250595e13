/**
 * Copyright 2025-present Pocket Wallet, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"pocket-wallet-go/internal/session"

	"go.uber.org/zap"
)

type contextKey string

const (
	contextKeySubject contextKey = "subject"
	contextKeyUserId  contextKey = "user_id"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "pocket_session"

// requireIdentity authenticates a bearer identity token and stores the
// provider subject id in the request context.
func (s *Server) requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		subject, err := s.identity.VerifyToken(r.Context(), token)
		if err != nil {
			zap.L().Debug("Identity token rejected", zap.Error(err))
			respondError(w, http.StatusUnauthorized, "invalid identity token")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeySubject, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireSession authenticates the session cookie and stores the owning
// user id in the request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "missing session")
			return
		}

		sess, err := s.sessions.Validate(r.Context(), cookie.Value)
		if err != nil {
			if errors.Is(err, session.ErrSessionExpired) {
				respondError(w, http.StatusUnauthorized, "session expired")
				return
			}
			respondError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserId, sess.UserId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func subjectFrom(ctx context.Context) string {
	subject, _ := ctx.Value(contextKeySubject).(string)
	return subject
}

func userIdFrom(ctx context.Context) string {
	userId, _ := ctx.Value(contextKeyUserId).(string)
	return userId
}
