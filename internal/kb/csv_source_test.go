package kb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const csvHeader = "id,issue_keywords,road_types,environment_tags,intervention,reference,rationale,priority\n"

func TestParseCSV_PythonStyleLists(t *testing.T) {
	src := csvHeader +
		`1,"['blind curve', 'chevron signs']","['highway', 'rural']","['curve']",Install chevrons,IRC 67,Guides drivers,High` + "\n"

	records, err := ParseCSV(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, 1, rec.ID)
	assert.Equal(t, []string{"blind curve", "chevron signs"}, rec.IssueKeywords)
	assert.Equal(t, []string{"highway", "rural"}, rec.RoadTypes)
	assert.Equal(t, []string{"curve"}, rec.EnvironmentTags)
	assert.Equal(t, PriorityHigh, rec.Priority)
	assert.Equal(t, defaultAssumptions, rec.Assumptions)
}

func TestParseCSV_SemicolonLists(t *testing.T) {
	src := csvHeader +
		"2,potholes;broken pavement,urban;rural,,Patch potholes,IRC SP:83,Restores pavement,Medium\n"

	records, err := ParseCSV(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, []string{"potholes", "broken pavement"}, rec.IssueKeywords)
	assert.Equal(t, []string{"urban", "rural"}, rec.RoadTypes)
	assert.Empty(t, rec.EnvironmentTags)
}

func TestParseCSV_SingleValueList(t *testing.T) {
	src := csvHeader +
		"3,poor lighting,urban,,Install street lights,IRC SP:87,Improves visibility,Low\n"

	records, err := ParseCSV(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"poor lighting"}, records[0].IssueKeywords)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "empty source", src: ""},
		{name: "wrong column count", src: csvHeader + "1,kw,urban,,only six,cols\n"},
		{name: "non-integer id", src: csvHeader + "abc,kw,urban,,Fix it,IRC 67,Because,High\n"},
		{name: "unknown priority", src: csvHeader + "1,kw,urban,,Fix it,IRC 67,Because,Critical\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.src))
			require.Error(t, err)

			var loadErr *LoadError
			assert.ErrorAs(t, err, &loadErr)
		})
	}
}

func TestParseListField_BracketFallback(t *testing.T) {
	// Unparseable bracketed text degrades to a single opaque value instead of
	// failing the load.
	got := parseListField("[not json")
	assert.Equal(t, []string{"[not json"}, got)

	assert.Nil(t, parseListField("   "))
}
