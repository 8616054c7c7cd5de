package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"vkprofiler/pkg/profile"
)

// Report formats accepted by Write
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Report is the outcome of one comparison run
type Report struct {
	Candidate  string                   `json:"candidate"`
	References []string                 `json:"references"`
	Documents  int                      `json:"documents"`
	Dimension  int                      `json:"dimension"`
	TopTerms   []string                 `json:"top_terms,omitempty"`
	TopGroups  []profile.GroupCount     `json:"top_groups,omitempty"`
	Result     profile.ComparisonResult `json:"result"`
}

// NewReport summarizes p and result, listing up to top terms and groups
func NewReport(candidate string, references []string, p *profile.ReferenceProfile, result profile.ComparisonResult, top int) Report {
	return Report{
		Candidate:  candidate,
		References: references,
		Documents:  p.Documents(),
		Dimension:  p.Dimension(),
		TopTerms:   p.TopTerms(top),
		TopGroups:  p.TopGroups(top),
		Result:     result,
	}
}

// WriteJSON writes the report as indented JSON
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes the report for humans
func (r Report) WriteText(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n", Magenta("Reference users:"), strings.Join(r.References, ", "))
	fmt.Fprintf(w, "%s %d posts, %d terms\n", Magenta("Profile:"), r.Documents, r.Dimension)
	if len(r.TopTerms) > 0 {
		fmt.Fprintf(w, "%s %s\n", Magenta("Top terms:"), Dim(strings.Join(r.TopTerms, ", ")))
	}
	for _, g := range r.TopGroups {
		fmt.Fprintf(w, "  %s %s %s\n", Dim("•"), g.Name, Dim(fmt.Sprintf("×%d", g.Count)))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", Cyan("Candidate:"), Yellow(r.Candidate))
	fmt.Fprintf(w, "%s %s\n", Cyan("Text similarity:"), Green(fmt.Sprintf("%.4f", r.Result.TextSimilarity)))
	fmt.Fprintf(w, "%s %s\n", Cyan("Group similarity:"), Green(fmt.Sprintf("%.4f", r.Result.GroupSimilarity)))
}

// WriteMarkdown writes the report as a Markdown document
func (r Report) WriteMarkdown(w io.Writer) error {
	md := markdown.NewMarkdown(w)

	md.H1("vkprofiler report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Candidate", "`" + r.Candidate + "`"},
			{"Reference users", strings.Join(r.References, ", ")},
			{"Profile posts", strconv.Itoa(r.Documents)},
			{"Vocabulary size", strconv.Itoa(r.Dimension)},
			{"Text similarity", fmt.Sprintf("%.4f", r.Result.TextSimilarity)},
			{"Group similarity", fmt.Sprintf("%.4f", r.Result.GroupSimilarity)},
		},
	})
	md.PlainText("")

	if len(r.TopTerms) > 0 {
		md.H2("Top terms")
		md.PlainText("")
		md.BulletList(r.TopTerms...)
		md.PlainText("")
	}

	if len(r.TopGroups) > 0 {
		rows := make([][]string, len(r.TopGroups))
		for i, g := range r.TopGroups {
			rows[i] = []string{g.Name, strconv.Itoa(g.Count)}
		}
		md.H2("Top groups")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Group", "Reference users"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	return md.Build()
}

// ParseFormat normalizes a report format name
func ParseFormat(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want text, json or markdown)", name)
	}
}

// Write renders the report in format: text, json or markdown
func (r Report) Write(w io.Writer, format string) error {
	format, err := ParseFormat(format)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		return r.WriteJSON(w)
	case FormatMarkdown:
		return r.WriteMarkdown(w)
	default:
		r.WriteText(w)
		return nil
	}
}
