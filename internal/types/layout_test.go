package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLine_Aggregates(t *testing.T) {
	line := Line{
		Page: 1,
		Spans: []Span{
			{Text: "Revenue", BBox: BBox{X0: 10, X1: 70}, FontSize: 11},
			{Text: "  ", BBox: BBox{X0: 70, X1: 80}, FontSize: 11},
			{Text: "2024", BBox: BBox{X0: 80, X1: 110}, FontSize: 12.5},
		},
	}

	assert.Equal(t, 2, line.SpanCount())
	assert.InDelta(t, 50.0, line.AvgSpanWidth(), 1e-9)
	assert.Equal(t, 12.5, line.AggregateFontSize())
}

func TestLine_EmptyLine(t *testing.T) {
	line := Line{Spans: []Span{{Text: " "}}}
	assert.Equal(t, 0, line.SpanCount())
	assert.Equal(t, 0.0, line.AvgSpanWidth())
}

func TestHeadingLevel_Depth(t *testing.T) {
	tests := []struct {
		level     HeadingLevel
		depth     int
		isHeading bool
	}{
		{LevelH1, 1, true},
		{LevelH2, 2, true},
		{LevelH3, 3, true},
		{LevelH4, 4, true},
		{LevelNone, 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.depth, tt.level.Depth())
			assert.Equal(t, tt.isHeading, tt.level.IsHeading())
		})
	}
}

func TestOutline_JSONShape(t *testing.T) {
	outline := Outline{
		Title: "Understanding AI",
		Outline: []OutlineEntry{
			{Level: LevelH1, Text: "1 Introduction", Page: 1},
		},
	}

	data, err := json.Marshal(outline)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Understanding AI","outline":[{"level":"H1","text":"1 Introduction","page":1}]}`, string(data))
}

func TestCollectionInput_MissingFieldsDecodeEmpty(t *testing.T) {
	var input CollectionInput
	require.NoError(t, json.Unmarshal([]byte(`{"documents":[{"filename":"a.pdf"}]}`), &input))

	assert.Len(t, input.Documents, 1)
	assert.Equal(t, "", input.Persona.Role)
	assert.Equal(t, "", input.JobToBeDone.Task)
}

func TestFontProfile_Empty(t *testing.T) {
	assert.True(t, FontProfile{}.Empty())
	assert.False(t, FontProfile{BodyFontSize: 11}.Empty())
}
