package types

// FrameAnalysis is the vision model's description of one sampled
// frame's table state. Analysis may also hold the "NO INFORMATION"
// sentinel or an extraction-error placeholder.
type FrameAnalysis struct {
	Frame     int     `json:"frame"`
	Timestamp float64 `json:"timestamp"`
	Analysis  string  `json:"analysis"`
}

// Decision is the classifier's verdict for one frame.
type Decision string

const (
	DecisionYes Decision = "YES"
	DecisionNo  Decision = "NO"
)

type CommentaryDecision struct {
	Timestamp  float64  `json:"timestamp"`
	Frame      int      `json:"frame"`
	Commentate Decision `json:"commentate"`
}

// SpeechEntry is one generated commentary line, keyed by timestamp.
type SpeechEntry struct {
	Timestamp float64 `json:"timestamp"`
	Text      string  `json:"text"`
}

// VoiceManifestEntry maps the half-open playback interval
// [Start, End) to a synthesized audio clip.
type VoiceManifestEntry struct {
	Filename string  `json:"filename"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
}
