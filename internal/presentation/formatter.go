package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Format selects how results are written.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a --format value. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatMarkdown:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or markdown)", s)
	}
}

// DefaultWidth is the wrap width when none is configured.
const DefaultWidth = 100

// noMarginStyle removes glamour's document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	color  bool
	width  int
	pal    palette
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithColor enables ANSI styling.
func WithColor(color bool) Option {
	return func(f *Formatter) { f.color = color }
}

// WithWidth sets the wrap width for text and markdown output.
func WithWidth(width int) Option {
	return func(f *Formatter) {
		if width > 0 {
			f.width = width
		}
	}
}

// NewFormatter creates a new formatter. Output is plain unless WithColor is given.
func NewFormatter(writer io.Writer, opts ...Option) *Formatter {
	f := &Formatter{writer: writer, width: DefaultWidth}
	for _, opt := range opts {
		opt(f)
	}
	f.pal = newPalette(writer, f.color)
	return f
}

// JSON writes v as indented JSON.
func (f *Formatter) JSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// write emits s, dropping escape sequences when color is off.
func (f *Formatter) write(s string) error {
	if !f.color {
		s = ansi.Strip(s)
	}
	_, err := io.WriteString(f.writer, s)
	return err
}

// FormatSkeletonReport writes a skeleton validation report.
func (f *Formatter) FormatSkeletonReport(dto SkeletonReportDTO, format Format) error {
	switch format {
	case FormatJSON:
		return f.JSON(dto)
	case FormatMarkdown:
		return f.markdown(skeletonMarkdown(dto))
	}

	var b strings.Builder
	b.WriteString(f.pal.heading.Render(dto.Skeleton) + "\n")
	fmt.Fprintf(&b, "  %d joints, %d chains, %d twist sets\n", dto.Joints, len(dto.Chains), len(dto.TwistSets))
	if dto.Valid() {
		b.WriteString(f.pal.success.Render("  no problems found") + "\n")
		return f.write(b.String())
	}

	b.WriteString(f.pal.err.Render(fmt.Sprintf("  %d problems", len(dto.Violations))) + "\n")
	indent := "      "
	wrap := max(f.width-len(indent), 20)
	for _, c := range sortedCategories(dto.Counts) {
		fmt.Fprintf(&b, "\n  %s %s\n", f.pal.warning.Render(c), f.pal.muted.Render("("+strconv.Itoa(dto.Counts[c])+")"))
		for _, v := range dto.Violations {
			if v.Category != c {
				continue
			}
			lines := strings.Split(wordwrap.String(v.Message, wrap), "\n")
			b.WriteString("    - " + lines[0] + "\n")
			for _, l := range lines[1:] {
				b.WriteString(indent + l + "\n")
			}
			if len(v.Nodes) > 0 {
				b.WriteString(indent + f.pal.muted.Render(strings.Join(v.Nodes, ", ")) + "\n")
			}
		}
	}
	return f.write(b.String())
}

func skeletonMarkdown(dto SkeletonReportDTO) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Skeleton `%s`\n\n", dto.Skeleton)
	fmt.Fprintf(&b, "%d joints, %d chains, %d twist sets.\n\n", dto.Joints, len(dto.Chains), len(dto.TwistSets))
	if len(dto.Chains) > 0 {
		b.WriteString("## Chains\n\n")
		for _, c := range dto.Chains {
			fmt.Fprintf(&b, "- `%s`\n", c)
		}
		b.WriteString("\n")
	}
	if dto.Valid() {
		b.WriteString("**No problems found.**\n")
		return b.String()
	}
	for _, c := range sortedCategories(dto.Counts) {
		fmt.Fprintf(&b, "## %s (%d)\n\n", c, dto.Counts[c])
		for _, v := range dto.Violations {
			if v.Category != c {
				continue
			}
			b.WriteString("- " + v.Message)
			if len(v.Nodes) > 0 {
				b.WriteString(" (`" + strings.Join(v.Nodes, "`, `") + "`)")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func sortedCategories(counts map[string]int) []string {
	cats := make([]string, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	slices.Sort(cats)
	return cats
}

// markdown renders md through glamour. Without color the notty style is used.
func (f *Formatter) markdown(md string) error {
	style := glamour.WithAutoStyle()
	if !f.color {
		style = glamour.WithStandardStyle(styles.NoTTYStyle)
	}
	r, err := glamour.NewTermRenderer(
		style,
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(f.width),
	)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	return f.write(out)
}

// FormatBuild writes a build summary.
func (f *Formatter) FormatBuild(dto BuildDTO, format Format) error {
	if format == FormatJSON {
		return f.JSON(dto)
	}
	var b strings.Builder
	status := f.pal.success.Render("ok")
	if !dto.OK {
		status = f.pal.err.Render("failed")
	}
	fmt.Fprintf(&b, "%s %s v%s %s\n", f.pal.heading.Render(dto.Rig), status,
		strconv.FormatFloat(dto.Version, 'f', -1, 64), f.pal.muted.Render(fmt.Sprintf("(%dms)", dto.ElapsedMs)))
	fmt.Fprintf(&b, "  skeleton  %s\n  rig       %s\n", dto.Skeleton, dto.RigFile)
	fmt.Fprintf(&b, "  built %d, skipped %d, failed %d, derived %d\n",
		len(dto.Built), len(dto.Skipped), len(dto.Failed), dto.Derived)
	for _, fl := range dto.Failed {
		b.WriteString(f.pal.err.Render(fmt.Sprintf("  ! [%d] %s", fl.Index, fl.Component)) + "\n")
		for _, l := range strings.Split(wordwrap.String(fl.Error, max(f.width-6, 20)), "\n") {
			b.WriteString("      " + l + "\n")
		}
	}
	return f.write(b.String())
}

// FormatStale writes the components whose definitions changed since they were built.
func (f *Formatter) FormatStale(stale []StaleDTO, format Format) error {
	if format == FormatJSON {
		return f.JSON(stale)
	}
	if len(stale) == 0 {
		return f.write(f.pal.success.Render("rig is up to date") + "\n")
	}
	rows := make([][]string, len(stale))
	for i, s := range stale {
		rows[i] = []string{s.Component, strconv.Itoa(s.Built), strconv.Itoa(s.Current)}
	}
	return f.write(f.table([]string{"COMPONENT", "BUILT", "CURRENT"}, rows))
}

// FormatHistory writes history records newest first.
func (f *Formatter) FormatHistory(records []HistoryDTO, format Format) error {
	if format == FormatJSON {
		return f.JSON(records)
	}
	if len(records) == 0 {
		return f.write(f.pal.muted.Render("no history") + "\n")
	}
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Action,
			strconv.FormatFloat(r.Version, 'f', -1, 64),
			fmt.Sprintf("%d/%d/%d", r.Built, r.Skipped, r.Failed),
			r.File,
		}
	}
	return f.write(f.table([]string{"ID", "WHEN", "ACTION", "VERSION", "B/S/F", "FILE"}, rows))
}

// FormatTypes writes the registered component types.
func (f *Formatter) FormatTypes(types []TypeDTO, format Format) error {
	if format == FormatJSON {
		return f.JSON(types)
	}
	rows := make([][]string, len(types))
	for i, t := range types {
		var tags []string
		if t.SingleInstance {
			tags = append(tags, "single")
		}
		if t.Nested {
			tags = append(tags, "nested")
		}
		if t.AutoDerived {
			tags = append(tags, "derived")
		}
		rows[i] = []string{t.Type, strconv.Itoa(t.Version), strings.Join(tags, ","), t.Description}
	}
	return f.write(f.table([]string{"TYPE", "VERSION", "TAGS", "DESCRIPTION"}, rows))
}

// table pads columns to their widest cell. The header is styled after padding
// so escape sequences do not count towards the width.
func (f *Formatter) table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			if i == len(cells)-1 {
				parts[i] = c
				continue
			}
			parts[i] = runewidth.FillRight(c, widths[i])
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	var b strings.Builder
	b.WriteString(f.pal.heading.Render(line(header)) + "\n")
	for _, row := range rows {
		b.WriteString(line(row) + "\n")
	}
	return b.String()
}

// FormatDiff writes a line diff. Insertions are prefixed "+" and deletions "-".
func (f *Formatter) FormatDiff(diffs []diffmatchpatch.Diff) error {
	var b strings.Builder
	for _, d := range diffs {
		for _, l := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				b.WriteString(f.pal.muted.Render("  "+l) + "\n")
			case diffmatchpatch.DiffDelete:
				b.WriteString(f.pal.delete.Render("- "+l) + "\n")
			case diffmatchpatch.DiffInsert:
				b.WriteString(f.pal.insert.Render("+ "+l) + "\n")
			}
		}
	}
	return f.write(b.String())
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
