package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/whispernotes/insights-ms-go/internal/model"
)

// syntheticWindow is the turn length used when no real diarization is
// available. Five seconds keeps the fake timeline fine-grained enough for
// midpoint matching without exploding the turn count.
const syntheticWindow = 5.0

// AssignSpeakers labels every segment with the diarization turn containing
// its temporal midpoint. When the midpoint falls in a gap between turns, the
// turn whose boundary is nearest wins. Segments keep an empty label only when
// the timeline itself is empty.
func AssignSpeakers(segments []model.TranscriptSegment, d *model.Diarization) {
	if d == nil || len(d.Turns) == 0 {
		return
	}

	turns := make([]model.DiarizationTurn, len(d.Turns))
	copy(turns, d.Turns)
	sort.Slice(turns, func(i, j int) bool { return turns[i].Start < turns[j].Start })

	for i := range segments {
		mid := (segments[i].Start + segments[i].End) / 2
		segments[i].SpeakerLabel = labelAt(turns, mid)
	}
}

// labelAt resolves the speaker at one point on the timeline. turns must be
// sorted by start time.
func labelAt(turns []model.DiarizationTurn, t float64) string {
	idx := sort.Search(len(turns), func(j int) bool { return turns[j].End > t })
	if idx < len(turns) && turns[idx].Start <= t {
		return turns[idx].SpeakerLabel
	}

	// t sits in a gap: before turns[idx], after turns[idx-1]
	if idx == len(turns) {
		return turns[len(turns)-1].SpeakerLabel
	}
	if idx == 0 {
		return turns[0].SpeakerLabel
	}
	if t-turns[idx-1].End <= turns[idx].Start-t {
		return turns[idx-1].SpeakerLabel
	}
	return turns[idx].SpeakerLabel
}

// SynthesizeDiarization fabricates a speaker timeline when the diarization
// capability is unavailable. Fixed-length windows cycle through the expected
// participant labels so downstream code sees the usual shape; IsSynthetic
// tells consumers not to trust the attribution.
func SynthesizeDiarization(duration float64, participantCount int) *model.Diarization {
	if participantCount < 1 {
		participantCount = 1
	}

	d := &model.Diarization{IsSynthetic: true}
	i := 0
	for start := 0.0; start < duration; start += syntheticWindow {
		end := start + syntheticWindow
		if end > duration {
			end = duration
		}
		d.Turns = append(d.Turns, model.DiarizationTurn{
			Start:        start,
			End:          end,
			SpeakerLabel: fmt.Sprintf("SPEAKER_%02d", i%participantCount),
		})
		i++
	}
	return d
}

// ApplySpeakerNames rewrites the display names on the segments from a
// positional name list. The distinct labels sort lexicographically and
// position i maps to names[i]; labels beyond the list get an empty display
// name so clients fall back to the bare label. Nothing but SpeakerName is
// touched.
func ApplySpeakerNames(segments []model.TranscriptSegment, names []string) {
	seen := make(map[string]bool)
	var labels []string
	for i := range segments {
		l := segments[i].SpeakerLabel
		if l != "" && !seen[l] {
			seen[l] = true
			labels = append(labels, l)
		}
	}
	sort.Strings(labels)

	byLabel := make(map[string]string, len(labels))
	for i, l := range labels {
		if i < len(names) {
			byLabel[l] = names[i]
		} else {
			byLabel[l] = ""
		}
	}

	for i := range segments {
		segments[i].SpeakerName = byLabel[segments[i].SpeakerLabel]
	}
}

// ComputeSpeakerStats aggregates talk time and word count per speaker label.
func ComputeSpeakerStats(segments []model.TranscriptSegment) map[string]model.SpeakerStats {
	stats := make(map[string]model.SpeakerStats)
	for i := range segments {
		l := segments[i].SpeakerLabel
		if l == "" {
			continue
		}
		s := stats[l]
		s.TotalDuration += segments[i].End - segments[i].Start
		s.WordCount += len(strings.Fields(segments[i].Text))
		stats[l] = s
	}
	return stats
}
