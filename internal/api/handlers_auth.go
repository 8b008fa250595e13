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
	"encoding/json"
	"net/http"

	"pocket-wallet-go/internal/models"
	"pocket-wallet-go/internal/store"

	"go.uber.org/zap"
)

// handleVerify verifies an identity token, mirrors the provider's profile
// fields into the user row, and replaces the caller's session.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		respondError(w, http.StatusBadRequest, "token is required")
		return
	}

	subject, err := s.identity.VerifyToken(r.Context(), req.Token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid identity token")
		return
	}

	providerUser, err := s.identity.GetUser(r.Context(), subject)
	if err != nil {
		zap.L().Error("Provider user lookup failed", zap.String("subject", subject), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "identity provider unavailable")
		return
	}

	user, err := s.store.UpsertUser(r.Context(), store.UpsertUserParams{
		Id:    subject,
		Email: providerUser.Email,
		Name:  providerUser.Name,
		Phone: providerUser.Phone,
	})
	if err != nil {
		zap.L().Error("User upsert failed", zap.String("subject", subject), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to persist user")
		return
	}

	sess, err := s.sessions.Issue(r.Context(), user.Id, clientIP(r), r.UserAgent())
	if err != nil {
		zap.L().Error("Session issue failed", zap.String("user_id", user.Id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, http.StatusOK, models.VerifyResult{
		User: models.UserView{
			Id:    user.Id,
			Email: user.Email,
			Name:  user.Name,
			Phone: user.Phone,
		},
		ExpiresAt: sess.ExpiresAt,
	})
}

func clientIP(r *http.Request) string {
	// chi's RealIP middleware rewrites RemoteAddr from forwarding headers.
	return r.RemoteAddr
}
