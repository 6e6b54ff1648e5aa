// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracez

import (
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// URLPath is the fixed path this package's PageHandler is meant to be
// registered under.
const URLPath = "/tracez"

// Query parameter names recognised by PageHandler.EmitHTML.
const (
	paramSpanName = "zspanname"
	paramType     = "ztype"
	paramSubtype  = "zsubtype"
)

// DrillType selects which of a name's buckets a drill-down view shows.
// Values are wire ordinals for the ztype query parameter; reordering
// them is a breaking change.
type DrillType int

const (
	DrillTypeRunning DrillType = 0
	DrillTypeLatency DrillType = 1
	DrillTypeError   DrillType = 2
)

// PageHandler renders the TraceZ summary table and per-span drill-down
// views as HTML. A PageHandler built with a nil aggregator renders a
// fallback "implementation not available" message, per spec §9.
type PageHandler struct {
	aggregator *DataAggregator
}

var _ http.Handler = (*PageHandler)(nil)

// NewPageHandler returns a PageHandler backed by aggregator. aggregator
// may be nil.
func NewPageHandler(aggregator *DataAggregator) *PageHandler {
	return &PageHandler{aggregator: aggregator}
}

// URLPath returns the fixed route this handler expects to be mounted
// under ("/tracez").
func (h *PageHandler) URLPath() string { return URLPath }

// ServeHTTP is the net/http adapter: it splits the request's query
// string into the single-valued map EmitHTML expects (first value
// wins, matching spec §6's "single-value semantics") and always
// responds 200, since rendering errors are reported in the body.
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// A malformed pair does not stop parsing: r.Form still holds every
	// pair that did parse, so the error is not fatal here.
	_ = r.ParseForm()
	query := make(map[string]string, len(r.Form))
	for k, vs := range r.Form {
		if len(vs) > 0 {
			query[k] = vs[0]
		} else {
			query[k] = ""
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	h.EmitHTML(query, w)
}

// EmitHTML renders the page described by query into out. Any panic
// raised while emitting the body is caught and replaced with a short
// diagnostic line; the HTTP status, if any, has already been sent by
// the caller (spec §7 RenderFailure).
func (h *PageHandler) EmitHTML(query map[string]string, out io.Writer) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(out, "\n<!-- tracez: render failed: %v -->\n", r)
		}
	}()

	if err := headerTemplate.Execute(out, nil); err != nil {
		return
	}
	defer footerTemplate.Execute(out, nil) //nolint:errcheck

	if h.aggregator == nil {
		io.WriteString(out, `<p>zpages implementation not available.</p>`)
		return
	}

	io.WriteString(out, h.renderSummaryTable())

	name := query[paramSpanName]
	if name == "" {
		return
	}
	typ, typErr := strconv.Atoi(query[paramType])
	if typErr != nil {
		return
	}
	subtype, _ := strconv.Atoi(query[paramSubtype])
	io.WriteString(out, h.renderDetails(name, DrillType(typ), subtype))
}

// --- summary table ---

type summaryCell struct {
	Text string
	Link string // empty when the cell should not be a link
}

type summaryRow struct {
	Name    string
	Running summaryCell
	Latency [numLatencyBuckets]summaryCell
	Errors  summaryCell
	Zebra   bool
}

func (h *PageHandler) renderSummaryTable() string {
	names := h.aggregator.SpanNames()
	sort.Strings(names)

	running := h.aggregator.RunningSpanCounts()
	latency := h.aggregator.SpanLatencyCounts()
	errors := h.aggregator.ErrorSpanCounts()

	rows := make([]summaryRow, 0, len(names))
	for i, name := range names {
		row := summaryRow{Name: name, Zebra: i%2 == 1}
		row.Running = cellFor(running[name], name, DrillTypeRunning, 0)
		counts := latency[name]
		for b := 0; b < numLatencyBuckets; b++ {
			row.Latency[b] = cellFor(counts[b], name, DrillTypeLatency, b)
		}
		row.Errors = cellFor(errors[name], name, DrillTypeError, 0)
		rows = append(rows, row)
	}

	var buf strings.Builder
	data := summaryTableData{Headers: summaryTableHeaders, Rows: rows}
	if err := summaryTableTemplate.Execute(&buf, data); err != nil {
		panic(err)
	}
	return buf.String()
}

// cellFor builds the summary table's cell for a count: plain "0" for
// zero, "N/A" for a negative sentinel, and a link to the drill-down
// view for any positive count.
func cellFor(count int, name string, typ DrillType, subtype int) summaryCell {
	switch {
	case count < 0:
		return summaryCell{Text: "N/A"}
	case count == 0:
		return summaryCell{Text: "0"}
	default:
		return summaryCell{Text: strconv.Itoa(count), Link: drillDownURL(name, typ, subtype)}
	}
}

func drillDownURL(name string, typ DrillType, subtype int) string {
	v := url.Values{}
	v.Set(paramSpanName, name)
	v.Set(paramType, strconv.Itoa(int(typ)))
	v.Set(paramSubtype, strconv.Itoa(subtype))
	return "?" + v.Encode()
}

// --- drill-down details ---

func (h *PageHandler) renderDetails(name string, typ DrillType, subtype int) string {
	var spans []FinishedSpanSnapshot
	var kind string

	switch typ {
	case DrillTypeRunning:
		spans = h.aggregator.RunningSpansByName(name)
		sort.Slice(spans, func(i, j int) bool { return spans[i].StartTime.Before(spans[j].StartTime) })
		kind = "running"
	case DrillTypeLatency:
		if subtype < 0 || subtype >= numLatencyBuckets {
			return ""
		}
		spans = h.aggregator.OKSpansInBucket(name, LatencyBucket(subtype))
		sort.Slice(spans, func(i, j int) bool { return newestFirst(spans[i], spans[j]) })
		kind = "latency samples"
	case DrillTypeError:
		if subtype < 0 || subtype >= numErrorCodes+1 {
			return ""
		}
		if subtype == 0 {
			spans = h.aggregator.ErrorSpansByName(name)
		} else {
			spans = h.aggregator.ErrorSpansByCode(name, ErrorCode(subtype-1))
		}
		sort.Slice(spans, func(i, j int) bool { return newestFirst(spans[i], spans[j]) })
		kind = "error samples"
	default:
		return ""
	}

	data := detailsData{
		Name:  name,
		Kind:  kind,
		Count: len(spans),
		Spans: make([]spanBlock, 0, len(spans)),
	}
	for _, s := range spans {
		data.Spans = append(data.Spans, buildSpanBlock(s))
	}

	var buf strings.Builder
	if err := detailsTemplate.Execute(&buf, data); err != nil {
		panic(err)
	}
	return buf.String()
}

// newestFirst orders finished spans newest-first by end time, falling
// back to start time for spans with a zero end time. The Java source
// this is derived from compares one span's start to another's end for
// its "non-incremental" sort, which spec §9 flags as likely a bug;
// this implementation only preserves the observable newest-first
// intent, not that comparator.
func newestFirst(a, b FinishedSpanSnapshot) bool {
	at, bt := a.EndTime, b.EndTime
	if at.IsZero() {
		at = a.StartTime
	}
	if bt.IsZero() {
		bt = b.StartTime
	}
	return at.After(bt)
}

type detailsData struct {
	Name  string
	Kind  string
	Count int
	Spans []spanBlock
}

type spanBlock struct {
	HeaderHTML template.HTML
	Lines      []template.HTML
}

func buildSpanBlock(s FinishedSpanSnapshot) spanBlock {
	traceColor := "black"
	if s.SpanContext.IsSampled() {
		traceColor = "#C1272D"
	}

	var elapsed string
	if !s.EndTime.IsZero() {
		elapsed = fmt.Sprintf("%.6f", s.EndTime.Sub(s.StartTime).Seconds())
	}

	header := fmt.Sprintf(
		`%s  %s  TraceId: <span style="color:%s">%s</span>  SpanId: %s  ParentSpanId: %s`,
		formatWholeTime(s.StartTime),
		template.HTMLEscapeString(elapsed),
		traceColor,
		template.HTMLEscapeString(s.SpanContext.TraceID().String()),
		template.HTMLEscapeString(s.SpanContext.SpanID().String()),
		template.HTMLEscapeString(s.ParentSpanID.String()),
	)

	lines := make([]template.HTML, 0, len(s.Events)+3)
	lastDay := s.StartTime
	lastTime := s.StartTime
	for _, ev := range s.Events {
		prefix := ""
		if !sameDay(lastDay, ev.Time) {
			prefix = ev.Time.Format("2006/01/02-")
			lastDay = ev.Time
		}
		delta := formatElapsed(ev.Time.Sub(lastTime))
		lastTime = ev.Time

		msg := template.HTMLEscapeString(ev.Name)
		if len(ev.Attributes) != 0 {
			msg += "  " + formatAttributes(ev.Attributes)
		}
		lines = append(lines, template.HTML(fmt.Sprintf("%s%s  %s  %s", prefix, formatClock(ev.Time), delta, msg)))
	}

	lines = append(lines, template.HTML(fmt.Sprintf(
		"Status{Code=%s, description=%s}",
		template.HTMLEscapeString(s.StatusCode.String()),
		template.HTMLEscapeString(strconv.Quote(s.StatusDescription)),
	)))
	if len(s.Attributes) != 0 {
		lines = append(lines, template.HTML(formatAttributes(s.Attributes)))
	}
	if len(s.ResourceAttrs) != 0 {
		lines = append(lines, template.HTML(formatAttributes(s.ResourceAttrs)))
	}

	return spanBlock{HeaderHTML: template.HTML(header), Lines: lines} //nolint:gosec // all dynamic values above are escaped individually
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func formatWholeTime(t time.Time) string {
	return t.Format("2006/01/02-15:04:05") + fmt.Sprintf(".%06d", t.Nanosecond()/1000)
}

func formatClock(t time.Time) string {
	return t.Format("15:04:05") + fmt.Sprintf(".%06d", t.Nanosecond()/1000)
}

// formatElapsed renders a duration the way the zpages reference
// renders inter-event deltas: seconds with six decimals once the delta
// reaches a full second, else a bare ".NNNNNN" microsecond count.
func formatElapsed(d time.Duration) string {
	micros := d.Microseconds()
	if micros >= 1_000_000 {
		return fmt.Sprintf("%.6f", d.Seconds())
	}
	return fmt.Sprintf(".%06d", micros)
}

// formatAttributes renders an attribute list as
// "Attributes:{k1=v1, k2=v2, ...}", sorted by key, escaped for HTML.
func formatAttributes(attrs []attribute.KeyValue) string {
	sorted := make([]attribute.KeyValue, len(attrs))
	copy(sorted, attrs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	parts := make([]string, 0, len(sorted))
	for _, kv := range sorted {
		s := fmt.Sprintf("%s=%v", kv.Key, kv.Value.Emit())
		parts = append(parts, template.HTMLEscapeString(s))
	}
	return "Attributes:{" + strings.Join(parts, ", ") + "}"
}
