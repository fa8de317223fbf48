package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultCropBottom keeps the bottom 30% of the frame, where on-table
// state is rendered.
const DefaultCropBottom = 0.30

type Adapter struct {
	ffmpeg     string
	ffprobe    string
	cropBottom float64
}

func New(ffmpegPath, ffprobePath string, cropBottom float64) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if cropBottom <= 0 || cropBottom > 1 {
		cropBottom = DefaultCropBottom
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath, cropBottom: cropBottom}
}

func (a *Adapter) ProbeDuration(ctx context.Context, source string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		source,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

// ExtractFrame decodes one frame at ts seconds, crops it to the bottom
// region of interest, and returns it PNG-encoded on stdout.
func (a *Adapter) ExtractFrame(ctx context.Context, source string, ts float64) ([]byte, error) {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-ss", fmtSeconds(ts),
		"-i", source,
		"-frames:v", "1",
		"-vf", a.cropFilter(),
		"-f", "image2pipe",
		"-c:v", "png",
		"pipe:1",
	)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg extract frame at %ss: %w\n%s", fmtSeconds(ts), err, errb.String())
	}
	return out.Bytes(), nil
}

func (a *Adapter) cropFilter() string {
	keep := strconv.FormatFloat(a.cropBottom, 'f', -1, 64)
	top := strconv.FormatFloat(1-a.cropBottom, 'f', -1, 64)
	return fmt.Sprintf("crop=iw:ih*%s:0:ih*%s", keep, top)
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
