// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

// Package api exposes the credential operations over HTTP/JSON.
//
// Every response body is {"message": ...}; login adds "token". Failures are
// answered with 400, except profile which always answers 200 and reports an
// unauthenticated caller in the message. Internal errors are logged with
// their full detail and reach the caller only as "internal server error".
package api
