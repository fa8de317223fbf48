package ffmpeg

import "testing"

func TestCropFilter(t *testing.T) {
	t.Parallel()

	a := New("", "", 0.30)
	if got, want := a.cropFilter(), "crop=iw:ih*0.3:0:ih*0.7"; got != want {
		t.Fatalf("cropFilter() = %q, want %q", got, want)
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	a := New("", "", 0)
	if a.ffmpeg != "ffmpeg" || a.ffprobe != "ffprobe" {
		t.Fatalf("expected default binary names, got %q %q", a.ffmpeg, a.ffprobe)
	}
	if a.cropBottom != DefaultCropBottom {
		t.Fatalf("expected default crop fraction, got %v", a.cropBottom)
	}

	a = New("", "", 1.5)
	if a.cropBottom != DefaultCropBottom {
		t.Fatalf("out-of-range crop fraction should fall back to default, got %v", a.cropBottom)
	}
}

func TestFmtSeconds(t *testing.T) {
	t.Parallel()

	if got := fmtSeconds(1.5); got != "1.500" {
		t.Fatalf("fmtSeconds(1.5) = %q", got)
	}
	if got := fmtSeconds(0); got != "0.000" {
		t.Fatalf("fmtSeconds(0) = %q", got)
	}
}
