package usecase

import (
	"encoding/json"
	"fmt"

	"github.com/railbirdlabs/railbird/internal/types"
)

func classifyPrompt(analyses []types.FrameAnalysis) string {
	ab, _ := json.Marshal(analyses)
	return fmt.Sprintf(`You are a poker commentator. Below is a JSON array of frame analyses:

%s

For each entry decide if it's worthy of commentary, following these rules:
- Only comment on big actions (bets, raises, ALL INs).
- Aim for ~1 comment every 10 frames; no two YES within 10 seconds.
- Reply with a JSON array of the same length, each object:
  {"timestamp": <number>, "frame": <int>, "commentate": "YES"|"NO"}
Return only the JSON array.`, ab)
}

func speechPrompt(history []types.SpeechEntry, analyses []types.FrameAnalysis, ts float64) string {
	hb, _ := json.Marshal(history)
	ab, _ := json.Marshal(analyses)
	return fmt.Sprintf(`Speech history: %s
Moment analysis: %s
Current timestamp: %v
Write a concise professional poker commentary (at most 15 words).
Be calm except for ALL INs where you show excitement.
Vary the content you present; never repeat something already covered in the
speech history. When the action at this timestamp is unclear, compare the
moment analysis across nearby timestamps to see what changed.
Return only the commentary text.`, hb, ab, ts)
}

func refinePrompt(analyses []types.FrameAnalysis, decisions []types.CommentaryDecision, speeches []types.SpeechEntry) string {
	ab, _ := json.Marshal(analyses)
	db, _ := json.Marshal(decisions)
	sb, _ := json.Marshal(speeches)
	return fmt.Sprintf(`You are editing a poker commentary track.
Frame analyses: %s
Commentary decisions: %s
Current commentary lines: %s

Rewrite every line, keeping exactly the same timestamps:
- At most 15 words per line.
- No two lines may repeat the same content, anywhere in the set.
- Spell out abbreviations and numeric shorthand (e.g. "10K" becomes "ten thousand").
Reply with a JSON array of the same length, each object:
  {"timestamp": <number>, "text": <string>}
Return only the JSON array.`, ab, db, sb)
}
