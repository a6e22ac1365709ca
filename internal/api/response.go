// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/samber/oops"
)

// Response messages.
const (
	MsgSignupOK       = "User registered successfully"
	MsgLoginOK        = "Login successful"
	MsgResetOK        = "Password has been reset successfully"
	MsgInvalidPayload = "invalid request payload"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// Response is the body of every API response.
type Response struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type forgotRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type resetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// decodeJSON reads exactly one JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return oops.Code("API_INVALID_PAYLOAD").Public(MsgInvalidPayload).Wrap(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return oops.Code("API_INVALID_PAYLOAD").Public(MsgInvalidPayload).Errorf("trailing data after JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // client may have disconnected
	json.NewEncoder(w).Encode(body)
}
