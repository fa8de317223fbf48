// Package usecase orchestrates the multi-phase annotation pipeline:
// probe, sample, parallel frame analysis, commentary classification,
// incremental speech generation, whole-pass refinement, and audio
// synthesis with manifest assembly. State accumulates across
// invocations through the four JSON stores.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/railbirdlabs/railbird/internal/domain/llmjson"
	"github.com/railbirdlabs/railbird/internal/domain/sampling"
	"github.com/railbirdlabs/railbird/internal/domain/voicetrack"
	"github.com/railbirdlabs/railbird/internal/ports"
	"github.com/railbirdlabs/railbird/internal/store"
	"github.com/railbirdlabs/railbird/internal/types"
)

const (
	// DefaultWorkers bounds the analysis worker pool when the caller
	// does not set a size.
	DefaultWorkers = 8

	analysisTemperature = 0.1
	classifyTemperature = 0.0
	speechTemperature   = 0.2
	refineTemperature   = 0.2
)

type Deps struct {
	Video  ports.VideoTool
	Vision ports.Vision
	Text   ports.TextModel
	TTS    ports.SpeechSynth
	Store  store.Backend
	Logf   func(format string, args ...any)
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Logf == nil {
		d.Logf = func(string, ...any) {}
	}
	return Usecase{d: d}
}

type Input struct {
	Source       string
	StartTime    float64
	Duration     float64 // <= 0 means to the end of the media
	Prompt       string
	IntervalSecs float64
	MaxWorkers   int
	AudioDir     string
}

type Result struct {
	// NewAnalyses holds only this chunk's records; the stores are
	// updated cumulatively.
	NewAnalyses []types.FrameAnalysis
}

// Run processes one chunk end to end. Each phase persists its store
// before the next begins, so a later phase always sees the fully
// persisted output of the one before it.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	total, err := u.d.Video.ProbeDuration(ctx, in.Source)
	if err != nil {
		return Result{}, fmt.Errorf("probe source: %w", err)
	}

	plan := sampling.Plan(in.StartTime, in.Duration, in.IntervalSecs, total.Seconds())
	if len(plan) == 0 {
		u.d.Logf("nothing to sample (start %.2fs, media %.2fs)", in.StartTime, total.Seconds())
		return Result{}, nil
	}
	u.d.Logf("media %.2fs: sampling %d frames at %.2fs intervals", total.Seconds(), len(plan), in.IntervalSecs)

	analyses := loadOrEmpty[types.FrameAnalysis](u, store.AnalysisDoc)
	newRecords, err := u.analyzeFrames(ctx, in, plan, len(analyses))
	if err != nil {
		return Result{}, err
	}
	analyses = append(analyses, newRecords...)
	if err := store.Save(u.d.Store, store.AnalysisDoc, analyses); err != nil {
		return Result{}, err
	}
	u.d.Logf("analysis store at %d entries (+%d)", len(analyses), len(newRecords))

	decisions := loadOrEmpty[types.CommentaryDecision](u, store.DecisionsDoc)
	decisions, err = u.classify(ctx, analyses, decisions)
	if err != nil {
		return Result{}, err
	}
	if err := store.Save(u.d.Store, store.DecisionsDoc, decisions); err != nil {
		return Result{}, err
	}

	speeches := loadOrEmpty[types.SpeechEntry](u, store.SpeechDoc)
	speeches, err = u.generate(ctx, analyses, decisions, speeches)
	if err != nil {
		return Result{}, err
	}
	if err := store.Save(u.d.Store, store.SpeechDoc, speeches); err != nil {
		return Result{}, err
	}

	speeches = u.refine(ctx, analyses, decisions, speeches)
	if err := store.Save(u.d.Store, store.SpeechDoc, speeches); err != nil {
		return Result{}, err
	}

	manifest := loadOrEmpty[types.VoiceManifestEntry](u, store.ManifestDoc)
	manifest, err = u.synthesize(ctx, in, speeches, manifest)
	if err != nil {
		return Result{}, err
	}
	if err := store.Save(u.d.Store, store.ManifestDoc, manifest); err != nil {
		return Result{}, err
	}

	return Result{NewAnalyses: newRecords}, nil
}

// loadOrEmpty treats a missing, empty, or unreadable store as an
// empty starting state.
func loadOrEmpty[T any](u Usecase, name string) []T {
	items, err := store.Load[T](u.d.Store, name)
	if err != nil {
		u.d.Logf("warn: %v; starting with empty %s", err, name)
		return nil
	}
	return items
}

// analyzeFrames fans the sampling plan out across a bounded worker
// pool. Each worker extracts one frame and describes it; extraction
// failure records a placeholder instead of aborting the batch. Frame
// numbers continue the globally accumulated sequence starting at
// frameBase.
func (u Usecase) analyzeFrames(ctx context.Context, in Input, plan []sampling.Sample, frameBase int) ([]types.FrameAnalysis, error) {
	results := make([]types.FrameAnalysis, len(plan))

	workers := in.MaxWorkers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, s := range plan {
		s := s
		g.Go(func() error {
			text, err := u.analyzeOne(gctx, in, s.Timestamp)
			if err != nil {
				return fmt.Errorf("frame %d: %w", frameBase+s.Index, err)
			}
			results[s.Index] = types.FrameAnalysis{
				Frame:     frameBase + s.Index,
				Timestamp: round2(s.Timestamp),
				Analysis:  text,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (u Usecase) analyzeOne(ctx context.Context, in Input, ts float64) (string, error) {
	img, err := u.d.Video.ExtractFrame(ctx, in.Source, ts)
	if err != nil || len(img) == 0 {
		if err == nil {
			err = errors.New("no image data")
		}
		// Non-fatal: the phase must terminate with one record per index.
		return fmt.Sprintf("frame extraction error: %v", err), nil
	}
	text, err := u.d.Vision.AnalyzeImage(ctx, in.Prompt, img, analysisTemperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// classify makes one batched call over the full accumulated analysis
// set. An unparsable response is fatal for the run: downstream
// generation requires well-formed decisions.
func (u Usecase) classify(ctx context.Context, analyses []types.FrameAnalysis, existing []types.CommentaryDecision) ([]types.CommentaryDecision, error) {
	raw, err := u.d.Text.Generate(ctx, classifyPrompt(analyses), classifyTemperature)
	if err != nil {
		return nil, fmt.Errorf("classification: %w", err)
	}
	var decs []types.CommentaryDecision
	if err := llmjson.DecodeArray(raw, &decs); err != nil {
		return nil, fmt.Errorf("classification: %w", err)
	}
	merged := store.MergeBy(existing, decs, func(d types.CommentaryDecision) float64 { return d.Timestamp })
	u.d.Logf("decision store at %d entries (+%d)", len(merged), len(merged)-len(existing))
	return merged, nil
}

// generate produces one commentary line per new YES decision,
// sequentially: each call's anti-repetition history must include every
// previously generated entry, including those from this batch.
func (u Usecase) generate(ctx context.Context, analyses []types.FrameAnalysis, decisions []types.CommentaryDecision, speeches []types.SpeechEntry) ([]types.SpeechEntry, error) {
	covered := make(map[float64]struct{}, len(speeches))
	for _, s := range speeches {
		covered[s.Timestamp] = struct{}{}
	}

	for _, d := range decisions {
		if d.Commentate != types.DecisionYes {
			continue
		}
		if _, ok := covered[d.Timestamp]; ok {
			continue
		}
		raw, err := u.d.Text.Generate(ctx, speechPrompt(speeches, analyses, d.Timestamp), speechTemperature)
		if err != nil {
			return speeches, fmt.Errorf("speech at %.2fs: %w", d.Timestamp, err)
		}
		speeches = append(speeches, types.SpeechEntry{Timestamp: d.Timestamp, Text: strings.TrimSpace(raw)})
		covered[d.Timestamp] = struct{}{}
	}
	return speeches, nil
}

// refine rewrites the whole speech set in one pass for brevity,
// set-wide anti-repetition, and abbreviation expansion. On any
// failure the existing set is kept unchanged.
func (u Usecase) refine(ctx context.Context, analyses []types.FrameAnalysis, decisions []types.CommentaryDecision, speeches []types.SpeechEntry) []types.SpeechEntry {
	if len(speeches) == 0 {
		return speeches
	}
	raw, err := u.d.Text.Generate(ctx, refinePrompt(analyses, decisions, speeches), refineTemperature)
	if err != nil {
		u.d.Logf("warn: refinement failed, keeping %d speeches as-is: %v", len(speeches), err)
		return speeches
	}
	var refined []types.SpeechEntry
	if err := llmjson.DecodeArray(raw, &refined); err != nil {
		u.d.Logf("warn: refinement response unparsable, keeping %d speeches as-is: %v", len(speeches), err)
		return speeches
	}
	u.d.Logf("refined %d speeches", len(refined))
	return refined
}

// synthesize voices every speech entry not yet covered by a manifest
// record, writing one clip per timestamp. Already-covered timestamps
// are skipped, so repeated invocations never re-synthesize.
func (u Usecase) synthesize(ctx context.Context, in Input, speeches []types.SpeechEntry, manifest []types.VoiceManifestEntry) ([]types.VoiceManifestEntry, error) {
	covered := make(map[float64]struct{}, len(manifest))
	for _, e := range manifest {
		covered[e.Start] = struct{}{}
	}

	for _, sp := range speeches {
		if _, ok := covered[sp.Timestamp]; ok {
			continue
		}
		audio, err := u.d.TTS.Synthesize(ctx, sp.Text)
		if err != nil {
			return manifest, fmt.Errorf("synthesize at %.2fs: %w", sp.Timestamp, err)
		}
		name := clipName(sp.Timestamp)
		path := filepath.Join(in.AudioDir, name)
		if err := os.MkdirAll(in.AudioDir, 0o755); err != nil {
			return manifest, err
		}
		if err := os.WriteFile(path, audio, 0o644); err != nil {
			return manifest, fmt.Errorf("write clip: %w", err)
		}
		dur, err := u.d.Video.ProbeDuration(ctx, path)
		if err != nil {
			return manifest, fmt.Errorf("probe clip %s: %w", name, err)
		}
		manifest = voicetrack.Insert(manifest, types.VoiceManifestEntry{
			Filename: name,
			Start:    sp.Timestamp,
			End:      sp.Timestamp + dur.Seconds(),
		})
		covered[sp.Timestamp] = struct{}{}
		u.d.Logf("voiced %.2fs -> %s (%.2fs)", sp.Timestamp, name, dur.Seconds())
	}
	return manifest, nil
}

func clipName(ts float64) string {
	return strconv.FormatFloat(ts, 'f', -1, 64) + ".mp3"
}

func round2(sec float64) float64 {
	return math.Round(sec*100) / 100
}
