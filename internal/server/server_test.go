package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/railbirdlabs/railbird/internal/pipeline"
	"github.com/railbirdlabs/railbird/internal/store"
	"github.com/railbirdlabs/railbird/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, process ProcessFunc) (*Server, string) {
	t.Helper()
	stateDir := filepath.Join(t.TempDir(), "state")
	base := pipeline.Config{
		StateDir:     stateDir,
		AudioDir:     filepath.Join(t.TempDir(), "audio"),
		IntervalSecs: 1.5,
		MaxWorkers:   8,
	}
	return New(base, process), stateDir
}

func TestNextAudio(t *testing.T) {
	t.Parallel()

	srv, stateDir := newTestServer(t, nil)
	err := store.Save(store.Dir{Root: stateDir}, store.ManifestDoc, []types.VoiceManifestEntry{
		{Filename: "2.mp3", Start: 2, End: 4.5},
	})
	if err != nil {
		t.Fatalf("seed manifest: %v", err)
	}
	router := srv.Router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/next-audio?time=3.0", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	var resp struct {
		Filename string  `json:"filename"`
		Offset   float64 `json:"offset"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Filename != "2.mp3" || resp.Offset != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestNextAudio_NoMatch(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	router := srv.Router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/next-audio?time=99", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v, ok := resp["filename"]; !ok || v != nil {
		t.Fatalf("expected null filename, got %v", resp)
	}
}

func TestNextAudio_InvalidTime(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	router := srv.Router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/next-audio?time=abc", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func uploadRequest(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("video", "chunk.mp4")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	fw.Write([]byte("fake-mp4"))
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	req := httptest.NewRequest("POST", "/process", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestProcess(t *testing.T) {
	t.Parallel()

	var got pipeline.Config
	process := func(_ context.Context, cfg pipeline.Config) ([]types.FrameAnalysis, error) {
		got = cfg
		return []types.FrameAnalysis{{Frame: 0, Timestamp: 0, Analysis: "Board: empty"}}, nil
	}
	srv, _ := newTestServer(t, process)
	router := srv.Router()

	w := httptest.NewRecorder()
	req := uploadRequest(t, map[string]string{
		"start_time":    "5",
		"duration":      "5",
		"interval_secs": "1",
		"max_workers":   "2",
	})
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}

	var records []types.FrameAnalysis
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 || records[0].Analysis != "Board: empty" {
		t.Fatalf("unexpected records: %+v", records)
	}

	if got.StartTime != 5 || got.Duration != 5 || got.IntervalSecs != 1 || got.MaxWorkers != 2 {
		t.Fatalf("request fields not applied: %+v", got)
	}
	if got.Source == "" {
		t.Fatalf("uploaded chunk was not staged to a temp file")
	}
}

func TestProcess_DefaultsFromBaseConfig(t *testing.T) {
	t.Parallel()

	var got pipeline.Config
	process := func(_ context.Context, cfg pipeline.Config) ([]types.FrameAnalysis, error) {
		got = cfg
		return nil, nil
	}
	srv, _ := newTestServer(t, process)
	router := srv.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	if got.IntervalSecs != 1.5 || got.MaxWorkers != 8 {
		t.Fatalf("base config defaults not applied: %+v", got)
	}
	if w.Body.String() != "[]" {
		t.Fatalf("nil records should serialize as an empty array, got %q", w.Body.String())
	}
}

func TestProcess_MissingUpload(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	router := srv.Router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/process", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestProcess_MalformedParam(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	router := srv.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, map[string]string{"interval_secs": "fast"}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestProcess_PipelineFailure(t *testing.T) {
	t.Parallel()

	process := func(_ context.Context, _ pipeline.Config) ([]types.FrameAnalysis, error) {
		return nil, errors.New("classification: no array start found")
	}
	srv, _ := newTestServer(t, process)
	router := srv.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
