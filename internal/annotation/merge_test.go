package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeWaveform(frames int, start float64) WaveformFeature {
	data := make([][]float32, frames)
	for i := range data {
		data[i] = []float32{float32(i)}
	}
	return WaveformFeature{
		Data:   data,
		Window: SlidingWindow{Duration: 0.5, Step: 0.5, Start: start},
	}
}

func TestConcatEmptyInput(t *testing.T) {
	_, _, err := Concat(nil, DefaultCollar)
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestConcatSampleRateMismatch(t *testing.T) {
	a := NewTimeAnnotation("stream-1")
	a.Add("SPEAKER_00", Interval{Start: 0, End: 1})

	good := makeWaveform(4, 0)
	bad := makeWaveform(4, 2)
	bad.Window.Step = 0.25

	_, _, err := Concat([]Chunk{
		{Annotation: a, Waveform: good},
		{Annotation: a, Waveform: bad},
	}, DefaultCollar)
	require.ErrorIs(t, err, ErrSampleRateMismatch)
}

func TestConcatWaveformLength(t *testing.T) {
	a := NewTimeAnnotation("stream-1")
	a.Add("SPEAKER_00", Interval{Start: 0, End: 2})

	b := NewTimeAnnotation("stream-1")
	b.Add("SPEAKER_00", Interval{Start: 2.5, End: 4})

	chunks := []Chunk{
		{Annotation: a, Waveform: makeWaveform(7, 0)},
		{Annotation: b, Waveform: makeWaveform(5, 3.5)},
	}

	_, wav, err := Concat(chunks, DefaultCollar)
	require.NoError(t, err)
	assert.Equal(t, 12, wav.Frames())

	// Window origin stays anchored to the first chunk.
	assert.Equal(t, 0.0, wav.Window.Start)
	assert.Equal(t, 0.5, wav.Window.Duration)
}

func TestConcatCollarMerging(t *testing.T) {
	tests := []struct {
		name   string
		collar float64
		want   []Interval
	}{
		{
			name:   "gap within collar collapses",
			collar: 0.05,
			want:   []Interval{{Start: 0, End: 4}},
		},
		{
			name:   "gap beyond collar stays split",
			collar: 0.01,
			want:   []Interval{{Start: 0, End: 2}, {Start: 2.03, End: 4}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := NewTimeAnnotation("stream-1")
			a.Add("SPEAKER_00", Interval{Start: 0, End: 2})

			b := NewTimeAnnotation("stream-1")
			b.Add("SPEAKER_00", Interval{Start: 2.03, End: 4})

			chunks := []Chunk{
				{Annotation: a, Waveform: makeWaveform(4, 0)},
				{Annotation: b, Waveform: makeWaveform(4, 2)},
			}

			merged, _, err := Concat(chunks, tc.collar)
			require.NoError(t, err)
			assert.Equal(t, tc.want, merged.Intervals("SPEAKER_00"))
		})
	}
}

func TestConcatSingleChunkUnchanged(t *testing.T) {
	a := NewTimeAnnotation("stream-1")
	a.Add("SPEAKER_00", Interval{Start: 0.5, End: 1.5})
	a.Add("SPEAKER_01", Interval{Start: 1.6, End: 2.2})

	wav := makeWaveform(5, 0)
	merged, out, err := Concat([]Chunk{{Annotation: a, Waveform: wav}}, DefaultCollar)
	require.NoError(t, err)

	assert.Equal(t, "stream-1", merged.URI)
	assert.Equal(t, []Interval{{Start: 0.5, End: 1.5}}, merged.Intervals("SPEAKER_00"))
	assert.Equal(t, []Interval{{Start: 1.6, End: 2.2}}, merged.Intervals("SPEAKER_01"))
	assert.Equal(t, wav.Data, out.Data)
	assert.Equal(t, wav.Window, out.Window)
}

func TestConcatDoesNotMutateInputs(t *testing.T) {
	a := NewTimeAnnotation("stream-1")
	a.Add("SPEAKER_00", Interval{Start: 0, End: 1})

	b := NewTimeAnnotation("stream-1")
	b.Add("SPEAKER_00", Interval{Start: 1.01, End: 2})

	chunks := []Chunk{
		{Annotation: a, Waveform: makeWaveform(2, 0)},
		{Annotation: b, Waveform: makeWaveform(2, 1)},
	}

	_, _, err := Concat(chunks, DefaultCollar)
	require.NoError(t, err)

	// Inputs keep their original, unmerged intervals.
	assert.Equal(t, []Interval{{Start: 0, End: 1}}, a.Intervals("SPEAKER_00"))
	assert.Equal(t, []Interval{{Start: 1.01, End: 2}}, b.Intervals("SPEAKER_00"))
}

func TestSupportOverlappingIntervals(t *testing.T) {
	a := NewTimeAnnotation("stream-1")
	a.Add("SPEAKER_00", Interval{Start: 0, End: 2})
	a.Add("SPEAKER_00", Interval{Start: 1.5, End: 3})
	a.Add("SPEAKER_01", Interval{Start: 0, End: 1})

	supported := a.Support(0.05)
	assert.Equal(t, []Interval{{Start: 0, End: 3}}, supported.Intervals("SPEAKER_00"))
	assert.Equal(t, []Interval{{Start: 0, End: 1}}, supported.Intervals("SPEAKER_01"))
}

func TestItertracksChronological(t *testing.T) {
	a := NewTimeAnnotation("stream-1")
	a.Add("SPEAKER_01", Interval{Start: 2, End: 3})
	a.Add("SPEAKER_00", Interval{Start: 0, End: 1})
	a.Add("SPEAKER_00", Interval{Start: 4, End: 5})

	tracks := a.Itertracks()
	require.Len(t, tracks, 3)
	assert.Equal(t, "SPEAKER_00", tracks[0].Label)
	assert.Equal(t, "SPEAKER_01", tracks[1].Label)
	assert.Equal(t, 4.0, tracks[2].Start)
}

func TestFlattenRowMajor(t *testing.T) {
	w := WaveformFeature{Data: [][]float32{{1, 2}, {3, 4}, {5, 6}}}
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, w.Flatten())

	var empty WaveformFeature
	assert.Nil(t, empty.Flatten())
}
