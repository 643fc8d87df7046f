package template

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptarena/promptarena/internal/models"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestRenderReplacesRecognizedPlaceholders(t *testing.T) {
	vars := Variables{
		ChatContent: "大家好",
		StartDate:   date("2025-06-01"),
		EndDate:     date("2025-06-02"),
	}.Resolve()

	got := Render("范围：{start_date} 至 {end_date}\n{chat_content}", vars)
	assert.Equal(t, "范围：2025-06-01 至 2025-06-02\n大家好", got)
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	vars := map[string]string{"chat_content": "hello"}

	got := Render("{chat_content} {not_wired_yet} {chat_content}", vars)
	assert.Equal(t, "hello {not_wired_yet} hello", got)

	// Rendering again changes nothing.
	assert.Equal(t, got, Render(got, vars))
}

func TestRenderMissingOptionalBecomesEmpty(t *testing.T) {
	vars := Variables{ChatContent: "x"}.Resolve()

	got := Render("[{start_date}][{member_filter_text}]{chat_content}", vars)
	assert.Equal(t, "[][]x", got)
}

func TestRenderDoesNotEvaluateValues(t *testing.T) {
	// A value that itself looks like a placeholder is inserted literally.
	vars := map[string]string{"chat_content": "{end_date}"}

	got := Render("{chat_content}", vars)
	assert.Equal(t, "{end_date}", got)
}

func TestResolveMemberFilter(t *testing.T) {
	vars := Variables{MemberFilter: []string{"小明", "小红"}}.Resolve()
	assert.Equal(t, "关注成员：小明, 小红", vars[VarMemberFilterText])

	empty := Variables{}.Resolve()
	assert.Equal(t, "", empty[VarMemberFilterText])
}

func TestResolveExtraOverrides(t *testing.T) {
	vars := Variables{
		ChatContent: "original",
		Extra:       map[string]string{"chat_content": "override", "topic": "股票"},
	}.Resolve()

	assert.Equal(t, "override", vars[VarChatContent])
	assert.Equal(t, "股票", vars["topic"])
}

func TestExtractVariables(t *testing.T) {
	names := ExtractVariables("{chat_content} and {topic}, then {chat_content} again")
	assert.Equal(t, []string{"chat_content", "topic"}, names)

	assert.Nil(t, ExtractVariables("no placeholders here"))
}

func TestLookupBuiltinFallsBackToAnalytical(t *testing.T) {
	// technology/daily has no summary entry; the analytical one is served.
	tmpl, ok := LookupBuiltin(models.GroupTechnology, models.GranularityDaily, models.StyleSummary)
	require.True(t, ok)

	analytical, ok := LookupBuiltin(models.GroupTechnology, models.GranularityDaily, models.StyleAnalytical)
	require.True(t, ok)
	assert.Equal(t, analytical, tmpl)
}

func TestLookupBuiltinUnknownCombination(t *testing.T) {
	_, ok := LookupBuiltin(models.GroupNews, models.GranularityDaily, models.StyleAnalytical)
	assert.False(t, ok)

	_, ok = LookupBuiltin(models.GroupInvestment, models.GranularityYearly, models.StyleAnalytical)
	assert.False(t, ok)
}

func TestBuiltinTemplatesRenderCleanly(t *testing.T) {
	vars := Variables{
		ChatContent:  "聊天内容",
		StartDate:    date("2025-06-01"),
		EndDate:      date("2025-06-30"),
		MemberFilter: []string{"a"},
	}.Resolve()

	for gt, byGran := range builtins {
		for gran, byStyle := range byGran {
			for style, tmpl := range byStyle {
				rendered := Render(tmpl, vars)
				assert.NotContains(t, rendered, "{chat_content}", "%s/%s/%s", gt, gran, style)
				assert.NotContains(t, rendered, "{start_date}", "%s/%s/%s", gt, gran, style)
				assert.Contains(t, rendered, "聊天内容")
			}
		}
	}
}
