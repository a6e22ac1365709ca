// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/api"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/auth"
)

type reply struct {
	Status  int
	Message string `json:"message"`
	Token   string `json:"token"`
}

func call(srv *httptest.Server, method, path, body, bearer string) reply {
	req, err := http.NewRequest(method, srv.URL+path, bytes.NewBufferString(body))
	Expect(err).NotTo(HaveOccurred())
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := srv.Client().Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()

	out := reply{Status: resp.StatusCode}
	Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
	return out
}

// resetTokenFrom pulls the token out of the forgot confirmation.
func resetTokenFrom(msg string) string {
	fields := strings.Fields(msg)
	Expect(len(fields)).To(BeNumerically(">=", 4))
	return fields[3]
}

func lifecycleSpecs(newUsers func() auth.UserStore) {
	var srv *httptest.Server

	BeforeEach(func() {
		srv = startAPI(newUsers())
	})

	AfterEach(func() {
		srv.Close()
	})

	It("runs signup, login, profile, forgot and reset", func() {
		r := call(srv, http.MethodPost, "/api/signup", `{"username":"alice","password":"s3cretpass","email":"alice@example.com"}`, "")
		Expect(r.Status).To(Equal(http.StatusOK))
		Expect(r.Message).To(Equal(api.MsgSignupOK))

		r = call(srv, http.MethodPost, "/api/login", `{"username":"alice","password":"s3cretpass"}`, "")
		Expect(r.Status).To(Equal(http.StatusOK))
		Expect(r.Token).NotTo(BeEmpty())

		r = call(srv, http.MethodGet, "/api/profile", "", r.Token)
		Expect(r.Message).To(Equal(auth.Greeting("alice")))

		r = call(srv, http.MethodPost, "/api/forgot", `{"username":"alice","email":"alice@example.com"}`, "")
		Expect(r.Status).To(Equal(http.StatusOK))
		token := resetTokenFrom(r.Message)

		r = call(srv, http.MethodPost, "/api/reset", `{"token":"`+token+`","newPassword":"n3wpassword"}`, "")
		Expect(r.Status).To(Equal(http.StatusOK))
		Expect(r.Message).To(Equal(api.MsgResetOK))

		r = call(srv, http.MethodPost, "/api/reset", `{"token":"`+token+`","newPassword":"another1pass"}`, "")
		Expect(r.Status).To(Equal(http.StatusBadRequest))
		Expect(r.Message).To(Equal(auth.MsgInvalidResetToken))

		r = call(srv, http.MethodPost, "/api/login", `{"username":"alice","password":"s3cretpass"}`, "")
		Expect(r.Status).To(Equal(http.StatusBadRequest))
		Expect(r.Message).To(Equal(auth.MsgInvalidCredentials))

		r = call(srv, http.MethodPost, "/api/login", `{"username":"alice","password":"n3wpassword"}`, "")
		Expect(r.Status).To(Equal(http.StatusOK))
	})

	It("rejects duplicate usernames and emails", func() {
		Expect(call(srv, http.MethodPost, "/api/signup", `{"username":"bob","password":"s3cretpass","email":"bob@example.com"}`, "").Status).
			To(Equal(http.StatusOK))

		r := call(srv, http.MethodPost, "/api/signup", `{"username":"bob","password":"s3cretpass"}`, "")
		Expect(r.Status).To(Equal(http.StatusBadRequest))
		Expect(r.Message).To(Equal(auth.MsgUserExists))

		r = call(srv, http.MethodPost, "/api/signup", `{"username":"robert","password":"s3cretpass","email":"bob@example.com"}`, "")
		Expect(r.Message).To(Equal(auth.MsgUserExists))
	})

	It("lets many users sign up without an email", func() {
		for _, name := range []string{"carol", "dave", "erin"} {
			r := call(srv, http.MethodPost, "/api/signup", `{"username":"`+name+`","password":"s3cretpass"}`, "")
			Expect(r.Status).To(Equal(http.StatusOK), name)
		}
	})

	It("registers exactly one of many concurrent signups for a username", func() {
		const attempts = 8
		var (
			wg sync.WaitGroup
			mu sync.Mutex
			ok int
		)
		for range attempts {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				r := call(srv, http.MethodPost, "/api/signup", `{"username":"racer","password":"s3cretpass"}`, "")
				if r.Status == http.StatusOK {
					mu.Lock()
					ok++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		Expect(ok).To(Equal(1))
	})

	It("accepts a reset token at most once under concurrency", func() {
		Expect(call(srv, http.MethodPost, "/api/signup", `{"username":"frank","password":"s3cretpass","email":"f@example.com"}`, "").Status).
			To(Equal(http.StatusOK))
		token := resetTokenFrom(call(srv, http.MethodPost, "/api/forgot", `{"username":"frank","email":"f@example.com"}`, "").Message)

		const attempts = 6
		var (
			wg sync.WaitGroup
			mu sync.Mutex
			ok int
		)
		for range attempts {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				r := call(srv, http.MethodPost, "/api/reset", `{"token":"`+token+`","newPassword":"n3wpassword"}`, "")
				if r.Status == http.StatusOK {
					mu.Lock()
					ok++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		Expect(ok).To(Equal(1))
	})
}

var _ = Describe("Credential lifecycle on PostgreSQL", Serial, func() {
	lifecycleSpecs(freshPostgresUsers)
})

var _ = Describe("Credential lifecycle on MongoDB", func() {
	lifecycleSpecs(freshMongoUsers)
})
