package server

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidenceledger/webidtls/issue"
	"github.com/evidenceledger/webidtls/spkac"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	srv, err := New(Config{
		Port:           "0",
		BaseURL:        "https://webid.test",
		DBPath:         filepath.Join(t.TempDir(), "test.db"),
		AdminPassword:  "hunter2",
		ProfileTimeout: 5 * time.Second,
		TokenExpiry:    time.Hour,
	})
	require.NoError(t, err)
	return srv
}

func TestHealth(t *testing.T) {
	srv := testServer(t)

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthenticate_NoCertificate(t *testing.T) {
	srv := testServer(t)

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/auth", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticate_EndToEnd(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	blob, err := spkac.New(key, "challenge")
	require.NoError(t, err)

	// Profile server asserting the key that will be in the certificate.
	mux := http.NewServeMux()
	profileSrv := httptest.NewServer(mux)
	defer profileSrv.Close()

	agent := profileSrv.URL + "/profile#me"
	profile := fmt.Sprintf(`@prefix cert: <http://www.w3.org/ns/auth/cert#> .
<%s> cert:key _:k1 .
_:k1 cert:modulus "%x" .
_:k1 cert:exponent "%d" .
`, agent, key.N, key.E)
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/turtle")
		w.Write([]byte(profile))
	})

	issued, err := issue.Generate(issue.Options{Agent: agent, SPKAC: blob})
	require.NoError(t, err)

	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set("tls-client-certificate", base64.StdEncoding.EncodeToString(issued.DER))

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			WebID  string `json:"webid"`
			Token  string `json:"token"`
			Cached bool   `json:"cached"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, agent, body.Data.WebID)
	assert.NotEmpty(t, body.Data.Token)
	assert.False(t, body.Data.Cached)

	// Same certificate again is served from the verified-identity cache.
	req = httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set("tls-client-certificate", base64.StdEncoding.EncodeToString(issued.DER))
	resp, err = srv.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Data.Cached)
}

func TestAuthenticate_KeyNotInProfile(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	blob, err := spkac.New(key, "challenge")
	require.NoError(t, err)

	// Profile asserting a different key.
	mux := http.NewServeMux()
	profileSrv := httptest.NewServer(mux)
	defer profileSrv.Close()

	agent := profileSrv.URL + "/profile#me"
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/turtle")
		fmt.Fprintf(w, `@prefix cert: <http://www.w3.org/ns/auth/cert#> .
<%s> cert:key _:k1 .
_:k1 cert:modulus "deadbeef" .
_:k1 cert:exponent "65537" .
`, agent)
	})

	issued, err := issue.Generate(issue.Options{Agent: agent, SPKAC: blob})
	require.NoError(t, err)

	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set("tls-client-certificate", base64.StdEncoding.EncodeToString(issued.DER))

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIssueEndpoint(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	blob, err := spkac.New(key, "challenge")
	require.NoError(t, err)

	srv := testServer(t)

	payload, err := json.Marshal(map[string]string{
		"agent": "https://alice.example/profile#me",
		"spkac": blob,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/issue", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success     bool   `json:"success"`
		Certificate string `json:"certificate"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)

	block, _ := pem.Decode([]byte(body.Certificate))
	require.NotNil(t, block, "response must carry a PEM certificate")
	assert.Equal(t, "CERTIFICATE", block.Type)
}

func TestIssueEndpoint_MissingAgent(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/issue", bytes.NewReader([]byte(`{"spkac":"x"}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestJWKS(t *testing.T) {
	srv := testServer(t)

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var jwks struct {
		Keys []json.RawMessage `json:"keys"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&jwks))
	assert.Len(t, jwks.Keys, 1)
}

func TestAdmin(t *testing.T) {
	srv := testServer(t)

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/admin", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:hunter2")))
	resp, err = srv.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Issued certificates")
}
