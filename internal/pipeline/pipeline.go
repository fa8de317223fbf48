package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/railbirdlabs/railbird/internal/ports"
	"github.com/railbirdlabs/railbird/internal/ports/adapters/elevenlabs"
	"github.com/railbirdlabs/railbird/internal/ports/adapters/ffmpeg"
	"github.com/railbirdlabs/railbird/internal/ports/adapters/gemini"
	"github.com/railbirdlabs/railbird/internal/store"
	"github.com/railbirdlabs/railbird/internal/types"
	"github.com/railbirdlabs/railbird/internal/usecase"
)

// DefaultPrompt asks the vision model for a structured table-state
// description of the cropped frame.
const DefaultPrompt = `Give me the details of the game in the moment. I want you to be very concise (no additional text).
Organize in the following format:

Board: (cards on the board)
Players:
    - name: (name)
        cards: (cards)
        action: (action)
        chips: (chips)
        position: (position)
       ...

Pot: (total pot)
Blinds: (big blind) / (small blind)

NOTE: If you cannot see the cards, just return: "NO INFORMATION"`

type Config struct {
	Source       string
	StartTime    float64
	Duration     float64 // <= 0 means to the end of the media
	IntervalSecs float64
	MaxWorkers   int
	Prompt       string

	// StateDir holds the four JSON stores; AudioDir holds the
	// synthesized clips.
	StateDir string
	AudioDir string

	Logf func(format string, args ...any)

	FFmpegPath  string
	FFprobePath string
	CropBottom  float64

	GeminiAPIKey string
	GeminiModel  string

	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	ElevenLabsModelID string
	ElevenLabsBaseURL string
}

func (c Config) Validate() error {
	if c.Source == "" {
		return errors.New("source is empty")
	}
	if _, err := os.Stat(c.Source); err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if c.StartTime < 0 {
		return fmt.Errorf("start time must be >= 0")
	}
	if c.IntervalSecs <= 0 {
		return fmt.Errorf("interval must be > 0")
	}
	if c.MaxWorkers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	if c.GeminiAPIKey == "" {
		return errors.New("gemini api key is required")
	}
	if c.ElevenLabsAPIKey == "" {
		return errors.New("elevenlabs api key is required")
	}
	return nil
}

// Run processes one chunk and returns its newly produced analysis
// records. All four stores under StateDir are updated cumulatively.
func Run(ctx context.Context, cfg Config) ([]types.FrameAnalysis, error) {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	stateDir := cfg.StateDir
	if stateDir == "" {
		stateDir = "state"
	}
	audioDir := cfg.AudioDir
	if audioDir == "" {
		audioDir = "audio"
	}

	// adapters
	video := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath, cfg.CropBottom)
	llm, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	defer llm.Close()
	tts := elevenlabs.New(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID, cfg.ElevenLabsModelID, cfg.ElevenLabsBaseURL)

	uc := usecase.New(usecase.Deps{
		Video:  video,
		Vision: llm,
		Text:   llm,
		TTS:    tts,
		Store:  store.Dir{Root: stateDir},
		Logf:   logf,
	})

	res, err := uc.Run(ctx, usecase.Input{
		Source:       cfg.Source,
		StartTime:    cfg.StartTime,
		Duration:     cfg.Duration,
		Prompt:       prompt,
		IntervalSecs: cfg.IntervalSecs,
		MaxWorkers:   cfg.MaxWorkers,
		AudioDir:     audioDir,
	})
	if err != nil {
		return nil, err
	}
	logf("chunk done: %d new analysis records", len(res.NewAnalyses))
	return res.NewAnalyses, nil
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.Vision = (*gemini.Adapter)(nil)
var _ ports.TextModel = (*gemini.Adapter)(nil)
var _ ports.SpeechSynth = (*elevenlabs.Adapter)(nil)
