package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/railbirdlabs/railbird/internal/pipeline"
)

func newProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <video>",
		Short: "Annotate one video chunk and update the commentary stores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, args[0])
		},
	}

	cmd.Flags().Float64("start", 0, "Chunk start offset in seconds")
	cmd.Flags().Float64("duration", 0, "Chunk duration in seconds (0 = to end of media)")
	cmd.Flags().Float64("interval", 1.5, "Seconds between sampled frames")
	cmd.Flags().Int("workers", 8, "Analysis worker pool size")
	cmd.Flags().String("state", "state", "Directory holding the four JSON stores")
	cmd.Flags().String("audio", "audio", "Directory holding synthesized clips")
	cmd.Flags().String("prompt-file", "", "File overriding the frame-analysis prompt")

	return cmd
}

func runProcess(cmd *cobra.Command, input string) error {
	start, _ := cmd.Flags().GetFloat64("start")
	duration, _ := cmd.Flags().GetFloat64("duration")
	interval, _ := cmd.Flags().GetFloat64("interval")
	workers, _ := cmd.Flags().GetInt("workers")
	stateDir, _ := cmd.Flags().GetString("state")
	audioDir, _ := cmd.Flags().GetString("audio")
	promptFile, _ := cmd.Flags().GetString("prompt-file")

	cfg, err := baseConfig()
	if err != nil {
		return err
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	cfg.Source = absIn
	cfg.StartTime = start
	cfg.Duration = duration
	cfg.IntervalSecs = interval
	cfg.MaxWorkers = workers
	cfg.StateDir = stateDir
	cfg.AudioDir = audioDir
	cfg.Logf = logf(cmd)

	if promptFile != "" {
		b, err := os.ReadFile(promptFile)
		if err != nil {
			return fmt.Errorf("read prompt file: %w", err)
		}
		cfg.Prompt = string(b)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	records, err := pipeline.Run(context.Background(), cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "processed %d frames\n", len(records))
	return nil
}

// baseConfig fills the fields shared by process and serve from the
// environment.
func baseConfig() (pipeline.Config, error) {
	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		return pipeline.Config{}, errors.New("GEMINI_API_KEY is required (set it in .env)")
	}
	elevenKey := os.Getenv("ELEVENLABS_API_KEY")
	if elevenKey == "" {
		return pipeline.Config{}, errors.New("ELEVENLABS_API_KEY is required (set it in .env)")
	}
	return pipeline.Config{
		FFmpegPath:  getenvDefault("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: getenvDefault("FFPROBE_PATH", "ffprobe"),

		GeminiAPIKey: geminiKey,
		GeminiModel:  os.Getenv("GEMINI_MODEL"),

		ElevenLabsAPIKey:  elevenKey,
		ElevenLabsVoiceID: os.Getenv("ELEVENLABS_VOICE_ID"),
		ElevenLabsModelID: os.Getenv("ELEVENLABS_MODEL_ID"),
		ElevenLabsBaseURL: os.Getenv("ELEVENLABS_BASE_URL"),
	}, nil
}

func logf(cmd *cobra.Command) func(format string, args ...any) {
	return func(format string, args ...any) {
		fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
	}
}
