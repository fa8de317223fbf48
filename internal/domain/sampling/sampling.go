package sampling

import "math"

// Sample is one planned frame extraction: a chunk-local index and the
// absolute timestamp to seek to.
type Sample struct {
	Index     int
	Timestamp float64
}

// Plan computes the extraction schedule for one chunk. All values are
// seconds. duration <= 0 means "span to the end of the media". The
// last timestamp is clamped to the segment end, so the final sampling
// gap may be shorter than intervalSecs. A start at or past the end of
// the media yields no work.
func Plan(startTime, duration, intervalSecs, totalDuration float64) []Sample {
	if intervalSecs <= 0 || startTime < 0 || startTime >= totalDuration {
		return nil
	}
	span := totalDuration - startTime
	if duration > 0 && duration < span {
		span = duration
	}

	n := int(math.Ceil(span / intervalSecs))
	out := make([]Sample, 0, n)
	end := startTime + span
	for i := 0; i < n; i++ {
		ts := startTime + float64(i)*intervalSecs
		if ts > end {
			ts = end
		}
		out = append(out, Sample{Index: i, Timestamp: ts})
	}
	return out
}
