package github_integration

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dynoinc/sprykersearch/internal/config"
)

func newTestBackend(t *testing.T, mux *http.ServeMux) *Backend {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{Token: "test-token", APIURL: srv.URL})
	require.NoError(t, err)

	return NewBackend(client, config.Default())
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestSearchRepositories(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search/repositories", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "payment org:spryker", r.URL.Query().Get("q"))
		require.Equal(t, "30", r.URL.Query().Get("per_page"))
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		writeJSON(t, w, map[string]any{
			"total_count": 42,
			"items": []map[string]any{
				{"name": "payment", "full_name": "spryker/payment", "description": "Payment module", "html_url": "https://github.com/spryker/payment"},
				{"name": "payment-gui", "full_name": "spryker/payment-gui", "html_url": "https://github.com/spryker/payment-gui"},
			},
		})
	})

	page, err := newTestBackend(t, mux).SearchRepositories(t.Context(), "payment org:spryker")
	require.NoError(t, err)
	require.Equal(t, 42, page.TotalCount)
	require.Len(t, page.Items, 2)
	require.Equal(t, "payment", page.Items[0].Name)
	require.Equal(t, "spryker/payment", page.Items[0].FullName)
	require.Equal(t, "Payment module", page.Items[0].Description)
	require.Equal(t, "https://github.com/spryker/payment", page.Items[0].URL)
	require.Empty(t, page.Items[1].Description)
}

func TestSearchRepositoriesFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search/repositories", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		writeJSON(t, w, map[string]any{"message": "Validation Failed"})
	})

	_, err := newTestBackend(t, mux).SearchRepositories(t.Context(), "x")
	require.ErrorContains(t, err, "GitHub API request failed")
	require.ErrorContains(t, err, "422")
}

func TestSearchCode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search/code", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "facade org:spryker in:file language:php", r.URL.Query().Get("q"))

		writeJSON(t, w, map[string]any{
			"total_count": 1,
			"items": []map[string]any{{
				"name":       "PaymentFacade.php",
				"path":       "src/Spryker/Zed/Payment/Business/PaymentFacade.php",
				"html_url":   "https://github.com/spryker/payment/blob/master/src/Spryker/Zed/Payment/Business/PaymentFacade.php",
				"repository": map[string]any{"full_name": "spryker/payment"},
			}},
		})
	})

	page, err := newTestBackend(t, mux).SearchCode(t.Context(), "facade org:spryker in:file language:php")
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalCount)
	require.Len(t, page.Items, 1)
	require.Equal(t, "PaymentFacade.php", page.Items[0].Name)
	require.Equal(t, "spryker/payment", page.Items[0].Repository)
	require.Equal(t, "src/Spryker/Zed/Payment/Business/PaymentFacade.php", page.Items[0].Path)
}

func TestFetchDoc(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/spryker/spryker-docs/contents/docs/pbc/payment.md", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"type":     "file",
			"encoding": "base64",
			"path":     "docs/pbc/payment.md",
			"content":  base64.StdEncoding.EncodeToString([]byte("# Payment\n")),
		})
	})
	mux.HandleFunc("GET /repos/spryker/spryker-docs/contents/docs/pbc", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{{"type": "file", "path": "docs/pbc/payment.md"}})
	})

	backend := newTestBackend(t, mux)

	t.Run("file", func(t *testing.T) {
		content, err := backend.FetchDoc(t.Context(), "/docs/pbc/payment.md")
		require.NoError(t, err)
		require.Equal(t, "# Payment\n", content)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := backend.FetchDoc(t.Context(), "/docs/pbc/missing.md")
		require.ErrorContains(t, err, "GitHub API content request failed")
		require.ErrorContains(t, err, "404")
	})

	t.Run("directory", func(t *testing.T) {
		_, err := backend.FetchDoc(t.Context(), "/docs/pbc")
		require.ErrorContains(t, err, "is a directory")
	})
}

func TestDocsIndex(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search/code", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "checkout repo:spryker/spryker-docs path:docs extension:md", r.URL.Query().Get("q"))

		writeJSON(t, w, map[string]any{
			"total_count": 1,
			"items": []map[string]any{{
				"name": "checkout.md",
				"path": "docs/scos/user/features/checkout.md",
			}},
		})
	})

	index := NewDocsIndex(newTestBackend(t, mux), config.Default())
	hits, err := index.SearchDocs(t.Context(), "checkout")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "https://docs.spryker.com/docs/scos/user/features/checkout.html", hits[0].URL)
	require.Equal(t, "checkout.md", hits[0].Title)
}

func TestNewClientAnonymous(t *testing.T) {
	client, err := NewClient(Config{APIURL: "https://github.example.com/api/v3"})
	require.NoError(t, err)
	require.Equal(t, "https://github.example.com/api/v3/", client.BaseURL.String())
}
