package llmutils

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/crystaldolphin/toolcalc/internal/schema"
)

var reThink = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Truncate shortens a string to at most n characters, adding "..." if it was truncated.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// StripThink removes <think>…</think> blocks that some models embed.
func StripThink(s string) string {
	return strings.TrimSpace(reThink.ReplaceAllString(s, ""))
}

// StringOrDefault returns s if it's not empty, or def if s is empty.
func StringOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ToolHint generates a short hint string for a list of tool calls,
// e.g. `add(a=2, b=3), calculator(expression="2^10")`. Arguments are listed
// in key order.
func ToolHint(tcs []schema.ToolCallRequest) string {
	parts := make([]string, 0, len(tcs))
	for _, tc := range tcs {
		keys := make([]string, 0, len(tc.Arguments))
		for k := range tc.Arguments {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		args := make([]string, 0, len(keys))
		for _, k := range keys {
			var v string
			switch val := tc.Arguments[k].(type) {
			case string:
				if len(val) > 40 {
					val = val[:40] + "…"
				}
				v = fmt.Sprintf("%q", val)
			default:
				v = fmt.Sprint(val)
			}
			args = append(args, k+"="+v)
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", tc.Name, strings.Join(args, ", ")))
	}
	return strings.Join(parts, ", ")
}
