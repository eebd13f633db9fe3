package preflight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"skald/internal/config"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("Data directory", dir)
	if !result.Passed {
		t.Errorf("result = %+v", result)
	}

	missing := CheckDirectoryAccess("Data directory", filepath.Join(dir, "nope"))
	if missing.Passed {
		t.Errorf("expected failure for missing directory: %+v", missing)
	}
}

func TestCheckDiskSpace(t *testing.T) {
	result := CheckDiskSpace(t.TempDir())
	if !result.Passed {
		t.Errorf("result = %+v", result)
	}
}

func TestCheckLLMMissingKey(t *testing.T) {
	result := CheckLLM(context.Background(), config.LLM{})
	if result.Passed {
		t.Errorf("expected failure without api key: %+v", result)
	}
}

func TestCheckLLMReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": `{"ok":true}`}}},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	result := CheckLLM(context.Background(), config.LLM{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	if !result.Passed {
		t.Errorf("result = %+v", result)
	}
}

func TestFailed(t *testing.T) {
	results := []Result{
		{Name: "a", Passed: true},
		{Name: "b", Passed: false, Detail: "broken"},
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "b" {
		t.Errorf("failed = %+v", failed)
	}
}
