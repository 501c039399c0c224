package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/kbukum/benchhttp/bench"
	"github.com/kbukum/benchhttp/version"
)

// Report is a set of summaries plus the context they were measured in.
type Report struct {
	Title     string
	Target    string
	Generated time.Time
	Summaries []*bench.Summary
}

// Markdown writes summaries as a Markdown report to w.
func Markdown(w io.Writer, summaries []*bench.Summary) error {
	r := &Report{Summaries: summaries}
	return r.WriteMarkdown(w)
}

// WriteMarkdown writes the report to w, one table per job in first-seen order.
func (r *Report) WriteMarkdown(w io.Writer) error {
	md := markdown.NewMarkdown(w)

	r.writeHeader(md)

	for _, group := range groupByJob(r.Summaries) {
		writeJob(md, group)
	}

	r.writeErrors(md)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by benchhttp %s*", version.Get().Short())

	return md.Build()
}

func (r *Report) writeHeader(md *markdown.Markdown) {
	title := r.Title
	if title == "" {
		title = "HTTP Strategy Benchmark"
	}
	md.H1(title)
	md.PlainText("")

	generated := r.Generated
	if generated.IsZero() {
		generated = time.Now()
	}
	rows := [][]string{
		{"Generated", generated.Format("2006-01-02 15:04:05 MST")},
		{"Runs", strconv.Itoa(len(r.Summaries))},
	}
	if r.Target != "" {
		rows = append(rows, []string{"Target", "`" + r.Target + "`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(r.Summaries) == 0 {
		md.Note("No runs were recorded.")
		md.PlainText("")
	}
}

type jobGroup struct {
	job       bench.Job
	summaries []*bench.Summary
}

func groupByJob(summaries []*bench.Summary) []jobGroup {
	var groups []jobGroup
	index := map[string]int{}
	for _, s := range summaries {
		i, ok := index[s.Job.ID]
		if !ok {
			i = len(groups)
			index[s.Job.ID] = i
			groups = append(groups, jobGroup{job: s.Job})
		}
		groups[i].summaries = append(groups[i].summaries, s)
	}
	return groups
}

func writeJob(md *markdown.Markdown, g jobGroup) {
	md.H2(g.job.ID)
	md.PlainText("")
	md.PlainTextf("GC percent: %s, forced GC per iteration: %t", gcPercent(g.job.GCPercent), g.job.ForceGC)
	md.PlainText("")

	rows := make([][]string, len(g.summaries))
	for i, s := range g.summaries {
		rows[i] = []string{
			s.Strategy,
			strconv.FormatInt(s.Iterations, 10),
			strconv.FormatInt(s.Errors, 10),
			fmt.Sprintf("%.1f", s.Throughput),
			formatDuration(s.Mean),
			formatDuration(s.P50),
			formatDuration(s.P90),
			formatDuration(s.P99),
			formatDuration(s.Max),
			strconv.FormatUint(s.AllocsPerOp, 10),
			strconv.FormatUint(s.BytesPerOp, 10),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Strategy", "Iterations", "Errors", "Ops/s", "Mean", "P50", "P90", "P99", "Max", "Allocs/op", "B/op"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (r *Report) writeErrors(md *markdown.Markdown) {
	byType := map[string]uint64{}
	var total int64
	for _, s := range r.Summaries {
		total += s.Errors
		for k, v := range s.ErrorsByType {
			byType[k] += uint64(v)
		}
	}
	if total == 0 {
		return
	}

	md.H2("Errors")
	md.PlainText("")
	md.Warningf("%d iteration(s) failed. Failed iterations are included in latency figures.", total)
	md.PlainText("")

	types := make([]string, 0, len(byType))
	for k := range byType {
		types = append(types, k)
	}
	sort.Strings(types)

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Failures by type"),
		piechart.WithShowData(true),
	)
	for _, k := range types {
		chart.LabelAndIntValue(k, byType[k])
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func gcPercent(p int) string {
	switch p {
	case 0:
		return "unchanged"
	case -1:
		return "off"
	default:
		return strconv.Itoa(p)
	}
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	return d.Round(time.Microsecond).String()
}
