package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shhac/interfere/internal/domain"
)

const (
	filePermission = 0644
	dirPermission  = 0755

	exportVersion = 1
)

type exportDocument struct {
	Version    int              `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Endpoints  []exportEndpoint `json:"endpoints"`
}

type exportEndpoint struct {
	URL       string           `json:"url"`
	Method    string           `json:"method"`
	Responses []exportResponse `json:"responses"`
}

type exportResponse struct {
	Code        int          `json:"code"`
	ReceivedAt  time.Time    `json:"received_at"`
	Text        string       `json:"text"`
	QueryParams []exportPair `json:"query_params,omitempty"`
	Headers     []exportPair `json:"headers,omitempty"`
}

type exportPair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	On    bool   `json:"on"`
}

// ExportJSON writes the whole history to path as indented JSON and returns
// the number of endpoints written.
func ExportJSON(ctx context.Context, repo Repository, path string) (int, error) {
	endpoints, err := repo.LoadEndpoints(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("load endpoints: %w", err)
	}

	doc := exportDocument{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC(),
		Endpoints:  make([]exportEndpoint, 0, len(endpoints)),
	}
	for _, e := range endpoints {
		out := exportEndpoint{URL: e.URL, Method: e.Method.String()}
		for _, r := range e.Responses {
			out.Responses = append(out.Responses, exportResponse{
				Code:        r.Code,
				ReceivedAt:  r.ReceivedAt.UTC(),
				Text:        r.Text,
				QueryParams: exportPairs(r.Request.QueryParams),
				Headers:     exportPairs(r.Request.Headers),
			})
		}
		doc.Endpoints = append(doc.Endpoints, out)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal export: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPermission); err != nil {
		return 0, fmt.Errorf("create export directory: %w", err)
	}
	if err := atomicWriteFile(path, data, filePermission); err != nil {
		return 0, fmt.Errorf("write export file: %w", err)
	}
	return len(doc.Endpoints), nil
}

func exportPairs(pairs []domain.KeyValue) []exportPair {
	if len(pairs) == 0 {
		return nil
	}
	out := make([]exportPair, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, exportPair{Key: p.Key, Value: p.Value, On: p.On})
	}
	return out
}

// atomicWriteFile writes data to a file atomically by writing to a temp file
// in the same directory, syncing, then renaming over the target path.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := f.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}
