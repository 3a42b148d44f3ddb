package transcript

import (
	"strings"

	"github.com/leonablue2016/real-speech-to-text/internal/annotation"
)

// Align maps recognized segments onto a merged diarization annotation,
// producing ordered speaker turns. Each labeled interval, in chronological
// order, claims the not-yet-claimed segments whose midpoint falls inside it;
// a segment is attributed at most once. Intervals that claim no text yield no
// turn.
func Align(ann *annotation.TimeAnnotation, segments []RecognizedSegment) []SpeakerTurn {
	used := make([]bool, len(segments))

	var turns []SpeakerTurn
	for _, track := range ann.Itertracks() {
		var text strings.Builder
		for i, segment := range segments {
			if used[i] {
				continue
			}
			mid := (segment.Start + segment.End) / 2
			if mid >= track.Start && mid < track.End {
				text.WriteString(segment.Text)
				used[i] = true
			}
		}
		if text.Len() == 0 {
			continue
		}
		turns = append(turns, SpeakerTurn{
			Speaker: ExtractSpeakerID(track.Label),
			Text:    strings.TrimSpace(text.String()),
			Start:   track.Start,
			End:     track.End,
		})
	}
	return turns
}
