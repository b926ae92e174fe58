package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "Rock&#39;s", expected: "Rock's"},
		{input: "A &amp; B", expected: "A & B"},
		{input: "a&nbsp;b", expected: "a b"},
		{input: `line\nbreak\ttab`, expected: "line break tab"},
		{input: "&amp;nbsp;", expected: "&nbsp;"},
	}
	for _, row := range table {
		require.Equal(t, row.expected, Normalize(row.input))
	}
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "a b c", CleanText("  a \n\t b   c "))
	require.Equal(t, "", CleanText(" \n "))
}

func TestRowsAndCells(t *testing.T) {
	doc := Parse(`<table id="outer">
		<tr><th>Code</th><th>Title</th></tr>
		<tr><td> CSE1001 </td><td><b>Problem</b>
			Solving</td></tr>
		<tr><td colspan="2"><table><tr><td>nested</td></tr></table></td></tr>
	</table>`)
	outer := doc.Find("#outer")
	rows := OwnRows(outer)
	require.Equal(t, 3, rows.Length())
	require.True(t, IsHeaderRow(rows.Eq(0)))
	require.False(t, IsHeaderRow(rows.Eq(1)))
	require.Equal(t, []string{"CSE1001", "Problem Solving"}, Cells(rows.Eq(1)))
}

func TestParseNeverFails(t *testing.T) {
	doc := Parse("<<<not html")
	require.NotNil(t, doc)
	require.Equal(t, 0, doc.Find("table").Length())
}
