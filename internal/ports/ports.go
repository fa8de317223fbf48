package ports

import (
	"context"
	"time"
)

// VideoTool probes media and extracts single frames. ExtractFrame
// returns the encoded image bytes for the frame at ts seconds, already
// cropped to the region of interest; empty output means extraction
// produced no image.
type VideoTool interface {
	ProbeDuration(ctx context.Context, source string) (time.Duration, error)
	ExtractFrame(ctx context.Context, source string, ts float64) ([]byte, error)
}

// Vision describes one image under a caller-supplied prompt.
type Vision interface {
	AnalyzeImage(ctx context.Context, prompt string, imagePNG []byte, temperature float32) (string, error)
}

// TextModel answers a text prompt; responses often embed a JSON array
// in surrounding prose.
type TextModel interface {
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
}

// SpeechSynth converts commentary text to an audio byte stream.
type SpeechSynth interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
