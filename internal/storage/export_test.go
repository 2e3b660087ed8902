package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shhac/interfere/internal/domain"
)

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.json")
	data := []byte(`{"hello": "world"}`)

	require.NoError(t, atomicWriteFile(path, data, 0644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestAtomicWriteFile_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")

	require.NoError(t, atomicWriteFile(path, []byte("old"), 0644))
	require.NoError(t, atomicWriteFile(path, []byte("new"), 0644))

	got, _ := os.ReadFile(path)
	assert.Equal(t, "new", string(got))
}

func TestAtomicWriteFile_NoTempFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nodir", "test.json")
	require.Error(t, atomicWriteFile(path, []byte("data"), 0644))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportJSON(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	received := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	_, err := repo.CreateEndpointFull(ctx, domain.Endpoint{
		URL:    "https://api.example.com/users",
		Method: domain.MethodPost,
		Responses: []domain.Response{{
			Text:       `{"id":1}`,
			Code:       201,
			ReceivedAt: received,
			Request: domain.Request{
				QueryParams: []domain.KeyValue{{Key: "page", Value: "2", On: true}},
				Headers:     []domain.KeyValue{{Key: "X-Debug", Value: "1", On: false}},
			},
		}},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "exports", "history.json")
	n, err := ExportJSON(ctx, repo, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc exportDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, exportVersion, doc.Version)
	require.Len(t, doc.Endpoints, 1)

	e := doc.Endpoints[0]
	assert.Equal(t, "https://api.example.com/users", e.URL)
	assert.Equal(t, "POST", e.Method)
	require.Len(t, e.Responses, 1)
	assert.Equal(t, 201, e.Responses[0].Code)
	assert.True(t, received.Equal(e.Responses[0].ReceivedAt))
	assert.Equal(t, []exportPair{{Key: "page", Value: "2", On: true}}, e.Responses[0].QueryParams)
	assert.Equal(t, []exportPair{{Key: "X-Debug", Value: "1", On: false}}, e.Responses[0].Headers)
}

func TestExportJSON_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	n, err := ExportJSON(context.Background(), NewMemoryRepository(), path)
	require.NoError(t, err)
	assert.Zero(t, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"endpoints": []`)
}
