package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/brendan.keane/urlquery/internal/values"
	"github.com/brendan.keane/urlquery/pkg/urlquery"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5B47E0")).
			Padding(0, 2)

	baseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5C07B")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61AFEF")).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98C379"))

	nullStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E06C75")).
			Italic(true)

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ABB2BF"))
)

// RenderURL renders a decomposed URL as an indented tree of parameters
func RenderURL(title string, u urlquery.URLWithQueryParams) string {
	var output strings.Builder

	output.WriteString(titleStyle.Render(" " + title + " "))
	output.WriteString("\n\n")
	output.WriteString(baseStyle.Render(u.BaseURL))
	output.WriteString("\n")

	output.WriteString(sectionStyle.Render("Query"))
	output.WriteString("\n")

	if len(u.QueryParams) == 0 {
		output.WriteString(summaryStyle.Render("  (no parameters)"))
		output.WriteString("\n")
		return output.String()
	}

	renderMap(&output, u.QueryParams, 1)
	return output.String()
}

func renderMap(out *strings.Builder, m map[string]any, depth int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		renderEntry(out, keyStyle.Render(k), m[k], depth)
	}
}

func renderEntry(out *strings.Builder, label string, v any, depth int) {
	indent := strings.Repeat("  ", depth)

	if nested, ok := values.AsMap(v); ok {
		fmt.Fprintf(out, "%s%s\n", indent, label)
		renderMap(out, nested, depth+1)
		return
	}
	if list, ok := values.AsSlice(v); ok {
		fmt.Fprintf(out, "%s%s\n", indent, label)
		for i, item := range list {
			renderEntry(out, summaryStyle.Render(fmt.Sprintf("[%d]", i)), item, depth+1)
		}
		return
	}
	if values.IsNil(v) {
		fmt.Fprintf(out, "%s%s = %s\n", indent, label, nullStyle.Render("null"))
		return
	}
	fmt.Fprintf(out, "%s%s = %s\n", indent, label, values.FormatScalar(v))
}
