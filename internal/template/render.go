// Package template holds the prompt template store, the built-in prompt
// library, and placeholder rendering.
package template

import (
	"regexp"
	"strings"
	"time"
)

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Recognized placeholder names. Anything else in a template passes through
// verbatim so templates can be drafted before every variable is wired up.
const (
	VarChatContent      = "chat_content"
	VarStartDate        = "start_date"
	VarEndDate          = "end_date"
	VarMemberFilterText = "member_filter_text"
)

// Variables carries the values substituted into a template. Extra entries
// override the built-in names when both are present.
type Variables struct {
	ChatContent  string
	StartDate    *time.Time
	EndDate      *time.Time
	MemberFilter []string
	Extra        map[string]string
}

// Resolve flattens Variables into the name → value mapping used for
// rendering. Dates format as ISO-8601 days; a nil date resolves to the
// empty string, as does an empty member filter.
func (v Variables) Resolve() map[string]string {
	out := map[string]string{
		VarChatContent:      v.ChatContent,
		VarStartDate:        formatDate(v.StartDate),
		VarEndDate:          formatDate(v.EndDate),
		VarMemberFilterText: memberFilterText(v.MemberFilter),
	}
	for k, val := range v.Extra {
		out[k] = val
	}
	return out
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func memberFilterText(members []string) string {
	if len(members) == 0 {
		return ""
	}
	return "关注成员：" + strings.Join(members, ", ")
}

// Render substitutes every recognized placeholder in tmpl with its value
// from vars. Placeholders whose name is not in vars stay in the output
// untouched. Replacement is literal text, never evaluated.
func Render(tmpl string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(tok string) string {
		name := tok[1 : len(tok)-1]
		if val, ok := vars[name]; ok {
			return val
		}
		return tok
	})
}

// ExtractVariables lists the distinct placeholder names appearing in tmpl,
// in first-appearance order.
func ExtractVariables(tmpl string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
