//go:build integration

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deltaneutral/dnfvault/pkg/model"
)

const (
	testEmail    = "user@example.com"
	testPassword = "hunter2"
	testToken    = "jwt-integration-token"
)

// fakeVault is an in-memory stand-in for the vault API used by the
// integration tests. Downloads maps uuid_filename to file content.
type fakeVault struct {
	Purchases []model.Container
	Groups    []model.Container
	Files     map[string][]model.FileRecord // key "purchases/1"
	Downloads map[string][]byte

	LoginCalls    int
	DownloadCalls int
}

// startVaultServer serves the fake vault over httptest.
func startVaultServer(t *testing.T, fv *fakeVault) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]string{"status": "healthy"})
	})

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		fv.LoginCalls++
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Email != testEmail || creds.Password != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(t, w, map[string]string{"token": testToken})
	})

	mux.HandleFunc("/purchases", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		type wire struct {
			ID          int64  `json:"id"`
			ProductName string `json:"product_name"`
		}
		out := make([]wire, 0, len(fv.Purchases))
		for _, p := range fv.Purchases {
			out = append(out, wire{ID: p.ID, ProductName: p.Name})
		}
		writeJSON(t, w, map[string]interface{}{"purchases": out})
	})

	mux.HandleFunc("/groups", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		type wire struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		}
		out := make([]wire, 0, len(fv.Groups))
		for _, g := range fv.Groups {
			out = append(out, wire{ID: g.ID, Name: g.Name})
		}
		writeJSON(t, w, map[string]interface{}{"groups": out})
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		path := strings.TrimPrefix(r.URL.Path, "/")

		if uuid, ok := strings.CutPrefix(path, "download/"); ok {
			fv.DownloadCalls++
			content, found := fv.Downloads[uuid]
			if !found {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write(content)
			return
		}

		if strings.HasSuffix(path, "/files") {
			key := strings.TrimSuffix(path, "/files")
			files, found := fv.Files[key]
			if !found {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			writeJSON(t, w, map[string]interface{}{"files": files})
			return
		}

		w.WriteHeader(http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func requireBearer(t *testing.T, r *http.Request) {
	t.Helper()
	require.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"),
		"expected authenticated request to %s", r.URL.Path)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// writeTempConfig writes a config file pinning baseURL so the tests never
// hit endpoint discovery.
func writeTempConfig(t *testing.T, cfgPath, baseURL, outDir string) {
	t.Helper()
	content := fmt.Sprintf(`auth:
  email: %s
  password: %s
settings:
  base_url: %s
  output_dir: %s
`, testEmail, testPassword, baseURL, outDir)
	require.NoError(t, os.MkdirAll(filepath.Dir(cfgPath), 0o755))
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))
}
