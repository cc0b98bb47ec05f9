package ai

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAnalysisAcceptsFencedJSON(t *testing.T) {
	t.Parallel()
	for _, content := range []string{
		validAnalysis,
		"```json\n" + validAnalysis + "\n```",
		"```\n" + validAnalysis + "```",
		"  \n" + validAnalysis + "\n",
		validAnalysis + "\n```",
		"```json\n" + validAnalysis,
	} {
		result, err := ParseAnalysis(content)
		require.NoError(t, err)
		require.Equal(t, "One idea", result.Summary)
		require.InDelta(t, 120, result.TotalPotentialSavings, 0.001)
	}
}

func TestParseAnalysisAllowsZeroAndEmpty(t *testing.T) {
	t.Parallel()
	result, err := ParseAnalysis(`{"insights":[{"title":"Max","description":"Keep it","potentialSavings":0,"priority":0,"type":"Lifestyle"}],"summary":"","totalPotentialSavings":0}`)
	require.NoError(t, err)
	require.Len(t, result.Insights, 1)

	result, err = ParseAnalysis(`{"insights":[],"summary":"Nothing to do","totalPotentialSavings":0}`)
	require.NoError(t, err)
	require.Empty(t, result.Insights)
}

func TestParseAnalysisRejectsDeviations(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"empty":              "",
		"not json":           "not json",
		"prose around":       "Here you go: " + validAnalysis,
		"missing summary":    `{"insights":[],"totalPotentialSavings":0}`,
		"missing total":      `{"insights":[],"summary":"x"}`,
		"null insights":      `{"insights":null,"summary":"x","totalPotentialSavings":0}`,
		"string number":      `{"insights":[],"summary":"x","totalPotentialSavings":"12"}`,
		"unknown field":      `{"insights":[],"summary":"x","totalPotentialSavings":0,"currency":"USD"}`,
		"trailing data":      validAnalysis + `{"again":true}`,
		"negative total":     `{"insights":[],"summary":"x","totalPotentialSavings":-1}`,
		"negative savings":   `{"insights":[{"title":"A","description":"b","potentialSavings":-5,"priority":0.5,"type":"Duplicate"}],"summary":"x","totalPotentialSavings":0}`,
		"priority above one": `{"insights":[{"title":"A","description":"b","potentialSavings":5,"priority":1.5,"type":"Duplicate"}],"summary":"x","totalPotentialSavings":5}`,
		"unknown type":       `{"insights":[{"title":"A","description":"b","potentialSavings":5,"priority":0.5,"type":"Savings"}],"summary":"x","totalPotentialSavings":5}`,
		"missing priority":   `{"insights":[{"title":"A","description":"b","potentialSavings":5,"type":"Duplicate"}],"summary":"x","totalPotentialSavings":5}`,
		"blank title":        `{"insights":[{"title":"  ","description":"b","potentialSavings":5,"priority":0.5,"type":"Duplicate"}],"summary":"x","totalPotentialSavings":5}`,
	}

	for name, content := range cases {
		_, err := ParseAnalysis(content)
		require.Error(t, err, name)
	}
}

func TestParseAnalysisBoundsInsights(t *testing.T) {
	t.Parallel()
	items := make([]string, 0, 14)
	for i := 0; i < 14; i++ {
		items = append(items, fmt.Sprintf(`{"title":"S%d","description":"d","potentialSavings":1,"priority":0.5,"type":"Optimization"}`, i))
	}
	content := `{"insights":[` + strings.Join(items, ",") + `],"summary":"many","totalPotentialSavings":14}`

	result, err := ParseAnalysis(content)
	require.NoError(t, err)
	require.Len(t, result.Insights, MaxInsights)
	require.Equal(t, "S0", result.Insights[0].Title)
}

func TestParseNotification(t *testing.T) {
	t.Parallel()
	notification, err := ParseNotification("```json\n{\"title\":\"Netflix tomorrow\",\"body\":\"Enjoy the show\"}\n```")
	require.NoError(t, err)
	require.Equal(t, Notification{Title: "Netflix tomorrow", Body: "Enjoy the show"}, notification)

	_, err = ParseNotification(`{"title":"only title"}`)
	require.ErrorIs(t, err, ErrInvalidResponse)

	_, err = ParseNotification(`{"title":"","body":"x"}`)
	require.ErrorIs(t, err, ErrInvalidResponse)
}
