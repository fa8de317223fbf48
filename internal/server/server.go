// Package server exposes the pipeline over HTTP: chunk uploads in,
// playback-time lookups and audio clips out.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/railbirdlabs/railbird/internal/domain/voicetrack"
	"github.com/railbirdlabs/railbird/internal/pipeline"
	"github.com/railbirdlabs/railbird/internal/store"
	"github.com/railbirdlabs/railbird/internal/types"
)

// ProcessFunc runs the annotation pipeline for one uploaded chunk.
type ProcessFunc func(ctx context.Context, cfg pipeline.Config) ([]types.FrameAnalysis, error)

type Server struct {
	base     pipeline.Config
	process  ProcessFunc
	manifest store.Backend
}

// New builds a server around a base pipeline configuration (keys,
// model names, directories); per-request fields are filled from each
// upload.
func New(base pipeline.Config, process ProcessFunc) *Server {
	return &Server{
		base:     base,
		process:  process,
		manifest: store.Dir{Root: base.StateDir},
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.POST("/process", s.handleProcess)
	r.GET("/next-audio", s.handleNextAudio)
	r.Static("/audio", s.base.AudioDir)
	return r
}

func (s *Server) handleProcess(c *gin.Context) {
	file, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing video upload: " + err.Error()})
		return
	}

	cfg := s.base
	if cfg.StartTime, err = floatField(c, "start_time", s.base.StartTime); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_time"})
		return
	}
	if cfg.Duration, err = floatField(c, "duration", s.base.Duration); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration"})
		return
	}
	if cfg.IntervalSecs, err = floatField(c, "interval_secs", s.base.IntervalSecs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interval_secs"})
		return
	}
	if cfg.MaxWorkers, err = intField(c, "max_workers", s.base.MaxWorkers); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_workers"})
		return
	}
	if p := c.PostForm("prompt"); p != "" {
		cfg.Prompt = p
	}

	tmp, err := os.CreateTemp("", "railbird-upload-*.mp4")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	tmp.Close()
	defer os.Remove(tmp.Name())
	if err := c.SaveUploadedFile(file, tmp.Name()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "save upload: " + err.Error()})
		return
	}
	cfg.Source = tmp.Name()

	records, err := s.process(c.Request.Context(), cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []types.FrameAnalysis{}
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleNextAudio(c *gin.Context) {
	t, err := strconv.ParseFloat(c.DefaultQuery("time", "0"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid time"})
		return
	}

	// Missing or unreadable manifest is an empty state, not an error.
	entries, err := store.Load[types.VoiceManifestEntry](s.manifest, store.ManifestDoc)
	if err != nil {
		entries = nil
	}
	match, err := voicetrack.Lookup(entries, t)
	if errors.Is(err, voicetrack.ErrNoMatch) {
		c.JSON(http.StatusOK, gin.H{"filename": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"filename": match.Filename, "offset": match.Offset})
}

func floatField(c *gin.Context, name string, def float64) (float64, error) {
	v := c.PostForm(name)
	if v == "" {
		v = c.Query(name)
	}
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}

func intField(c *gin.Context, name string, def int) (int, error) {
	v := c.PostForm(name)
	if v == "" {
		v = c.Query(name)
	}
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
