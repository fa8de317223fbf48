// Package elevenlabs adapts the ElevenLabs text-to-speech HTTP API to
// the pipeline's synthesis capability.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io"
	defaultVoiceID = "pNInz6obpgDQGcFmaJgB" // Adam pre-made voice
	defaultModelID = "eleven_turbo_v2_5"
	outputFormat   = "mp3_22050_32"

	requestTimeout = 60 * time.Second
)

// VoiceSettings is the fixed voice configuration applied to every
// synthesized clip.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
	Speed           float64 `json:"speed"`
}

func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.0,
		SimilarityBoost: 1.0,
		Style:           0.4,
		UseSpeakerBoost: true,
		Speed:           1.0,
	}
}

type Adapter struct {
	key      string
	voiceID  string
	modelID  string
	baseURL  string
	settings VoiceSettings
	client   *http.Client
}

func New(apiKey, voiceID, modelID, baseURL string) *Adapter {
	if voiceID == "" {
		voiceID = defaultVoiceID
	}
	if modelID == "" {
		modelID = defaultModelID
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Adapter{
		key:      apiKey,
		voiceID:  voiceID,
		modelID:  modelID,
		baseURL:  baseURL,
		settings: DefaultVoiceSettings(),
		client:   &http.Client{Timeout: 2 * time.Minute},
	}
}

func (a *Adapter) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, errors.New("elevenlabs: empty text")
	}

	payload := map[string]any{
		"text":           text,
		"model_id":       a.modelID,
		"voice_settings": a.settings,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s", a.baseURL, a.voiceID, outputFormat)

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", a.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("elevenlabs timeout after %s", requestTimeout)
		}
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("elevenlabs status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return nil, fmt.Errorf("elevenlabs status %d: %s", resp.StatusCode, truncate(string(rb), 400))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio stream: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("elevenlabs: empty audio stream")
	}
	return audio, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
