//go:build integration

package itest

import (
	"os/exec"
	"strconv"
	"testing"
)

// makeFixtureVideo renders a short solid-color clip so the pipeline
// has real frames to extract.
func makeFixtureVideo(t *testing.T, path string, seconds int) {
	t.Helper()
	cmd := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi",
		"-i", "color=c=darkgreen:s=1280x720:d="+strconv.Itoa(seconds),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		path,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}
}
