package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bangtanmom/contentsync/internal/config"
	"github.com/bangtanmom/contentsync/pkg/models"
)

// fakeNCB serves the read and create endpoints for a legacy and a target
// instance of the posts collection.
type fakeNCB struct {
	mu      sync.Mutex
	rows    map[string][]map[string]any
	created []map[string]any
	paths   []string
}

func (f *fakeNCB) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer test-key" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"status":"failed","error":"Invalid API key"}`)
		return
	}

	f.paths = append(f.paths, r.URL.Path)
	instance := r.URL.Query().Get("Instance")
	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/read/"):
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "data": f.rows[instance]})
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/create/"):
		var rec map[string]any
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.created = append(f.created, rec)
		f.rows[instance] = append(f.rows[instance], rec)
		_, _ = io.WriteString(w, `{"status":"success","id":42}`)
	default:
		http.NotFound(w, r)
	}
}

func setupBackend(t *testing.T) *fakeNCB {
	t.Helper()

	ncb := &fakeNCB{rows: map[string][]map[string]any{
		"legacy": {
			{"id": 1, "title": "Hello World", "content": "hi"},
			{"id": 2, "post_title": "Already There"},
			{"id": 3, "content": "no title"},
		},
		"current": {
			{"id": 7, "title": "Already There", "slug": "already-there"},
			{"id": 8, "title": "Post", "slug": "post"},
			{"id": 9, "title": "Post", "slug": "post-2"},
		},
	}}
	srv := httptest.NewServer(ncb)
	t.Cleanup(srv.Close)

	t.Setenv("NCB_BASE_URL", srv.URL)
	t.Setenv("NCB_API_KEY", "test-key")
	t.Setenv("NCB_SOURCE_INSTANCE", "legacy")
	t.Setenv("NCB_TARGET_INSTANCE", "current")
	t.Setenv("MIGRATE_COLLECTION", "")
	t.Setenv("MIGRATE_MAPPING_FILE", "")
	return ncb
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd(config.NewViper())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateCommand(t *testing.T) {
	tests := map[string]struct {
		args []string

		wantDryRun  bool
		wantCreates int
	}{
		"Dry run by default":  {args: []string{"migrate"}, wantDryRun: true},
		"Live run when asked": {args: []string{"migrate", "--dry-run=false"}, wantCreates: 1},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ncb := setupBackend(t)

			out, err := execute(t, tc.args...)
			require.NoError(t, err, "migrate should not have failed")

			var res models.MigrationResult
			require.NoError(t, json.Unmarshal([]byte(out), &res), "output should be the JSON result")
			require.True(t, res.OK)
			require.Equal(t, tc.wantDryRun, res.DryRun)
			require.Equal(t, "legacy", res.SourceInstance)
			require.Equal(t, "current", res.TargetInstance)
			require.Equal(t, 3, res.SourceCount)
			require.Equal(t, 1, res.Created)
			require.Equal(t, 1, res.Skipped)
			require.Len(t, res.Errors, 1)
			require.Equal(t, "Missing title/slug", res.Errors[0].Error)

			require.Len(t, ncb.created, tc.wantCreates)
			if tc.wantCreates > 0 {
				require.Equal(t, "hello-world", ncb.created[0]["slug"])
				require.NotContains(t, ncb.created[0], "id")
			}
		})
	}
}

func TestMigrateCollection(t *testing.T) {
	mapping := filepath.Join(t.TempDir(), "articles.json")
	require.NoError(t, os.WriteFile(mapping, []byte(`{"entity":"Article","collection":"articles","fields":[{"target":"title","sources":["title"]},{"target":"slug","sources":["slug"],"deriveFrom":"title"}]}`), 0o600),
		"Setup: could not write mapping file")

	tests := map[string]struct {
		env  map[string]string
		args []string

		wantPath string
	}{
		"Posts by default":              {args: []string{"migrate"}, wantPath: "/read/posts"},
		"Mapping names the collection":  {args: []string{"migrate", "--mapping", mapping}, wantPath: "/read/articles"},
		"Environment overrides mapping": {env: map[string]string{"MIGRATE_COLLECTION": "drafts"}, args: []string{"migrate", "--mapping", mapping}, wantPath: "/read/drafts"},
		"Flag overrides mapping":        {args: []string{"migrate", "--mapping", mapping, "--collection", "news"}, wantPath: "/read/news"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ncb := setupBackend(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := execute(t, tc.args...)
			require.NoError(t, err)
			require.Equal(t, []string{tc.wantPath, tc.wantPath}, ncb.paths, "both sides should be read from the same collection")
		})
	}
}

func TestMigrateCommandFailures(t *testing.T) {
	tests := map[string]struct {
		env  map[string]string
		args []string

		wantErrText string
	}{
		"Missing target instance": {
			env:         map[string]string{"NCB_TARGET_INSTANCE": ""},
			args:        []string{"migrate"},
			wantErrText: "missing configuration: targetInstance",
		},
		"Upstream message is surfaced": {
			env:         map[string]string{"NCB_API_KEY": "wrong"},
			args:        []string{"migrate"},
			wantErrText: "Invalid API key",
		},
		"Unknown backend": {
			args:        []string{"migrate", "--source-backend", "redis"},
			wantErrText: `could not open backends: unknown backend "redis"`,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ncb := setupBackend(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			out, err := execute(t, tc.args...)
			require.EqualError(t, err, tc.wantErrText)
			require.Empty(t, out, "no result should be printed")
			require.Empty(t, ncb.created)
		})
	}
}

func TestSlugCommand(t *testing.T) {
	tests := map[string]struct {
		args []string

		want    string
		wantErr bool
	}{
		"Plain title":           {args: []string{"slug", "Hello,", "World!"}, want: "hello-world\n"},
		"Quotes are dropped":    {args: []string{"slug", `Jimin's "Filter"`}, want: "jimins-filter\n"},
		"Unique against target": {args: []string{"slug", "--unique", "Post"}, want: "post-3\n"},
		"Free slug is kept":     {args: []string{"slug", "--unique", "New one"}, want: "new-one\n"},

		"Title without usable characters": {args: []string{"slug", "!!!"}, wantErr: true},
		"Missing title":                   {args: []string{"slug"}, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			setupBackend(t)

			out, err := execute(t, tc.args...)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, out)
		})
	}
}
