// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracez

import "html/template"

// Page chrome and tables are rendered through named templates, the same
// layering the zpages reference uses (headerTemplate / summaryTableTemplate /
// tracesTableTemplate / footerTemplate), so each piece can be executed
// independently as EmitHTML streams the page.

const pageCSS = `
body{font-family:monospace;background:#fff;color:#222}
h1{font-size:1.2em}
table{border-collapse:collapse;margin-bottom:1em}
th,td{border:1px solid #ccc;padding:2px 8px;text-align:right}
th:first-child,td:first-child{text-align:left}
tr.even{background:#f4f4f4}
a{color:#0645ad;text-decoration:none}
pre{white-space:pre;font-family:monospace}
`

var headerTemplate = template.Must(template.New("header").Parse(`<!DOCTYPE html>
<html>
<head>
<title>TraceZ</title>
<style>` + pageCSS + `</style>
</head>
<body>
<img src="data:image/svg+xml;base64,PHN2ZyB4bWxucz0iaHR0cDovL3d3dy53My5vcmcvMjAwMC9zdmciLz4=" alt="logo" width="1" height="1">
<h1>TraceZ</h1>
`))

var footerTemplate = template.Must(template.New("footer").Parse(`
</body>
</html>
`))

// summaryTableHeaders are the nine latency-bucket column headers; built
// once from LatencyBucket's String() rather than hardcoded, so the
// header row can never drift from the bucket boundaries.
var summaryTableHeaders = func() [numLatencyBuckets]string {
	var out [numLatencyBuckets]string
	for i := range out {
		out[i] = LatencyBucket(i).String()
	}
	return out
}()

var summaryTableTemplate = template.Must(template.New("summary").Funcs(template.FuncMap{
	"cell": renderCell,
}).Parse(`
<table>
<tr>
<th>Name</th><th>Running</th>
{{range $.Headers}}<th>{{.}}</th>{{end}}
<th>Errors</th>
</tr>
{{range $.Rows}}
<tr class="{{if .Zebra}}even{{else}}odd{{end}}">
<td>{{.Name}}</td>
{{cell .Running}}
{{range .Latency}}{{cell .}}{{end}}
{{cell .Errors}}
</tr>
{{end}}
</table>
`))

type summaryTableData struct {
	Headers [numLatencyBuckets]string
	Rows    []summaryRow
}

func renderCell(c summaryCell) template.HTML {
	if c.Link == "" {
		return template.HTML("<td>" + template.HTMLEscapeString(c.Text) + "</td>")
	}
	return template.HTML(`<td><a href="` + template.HTMLEscapeString(c.Link) + `">` + template.HTMLEscapeString(c.Text) + `</a></td>`)
}

var detailsTemplate = template.Must(template.New("details").Parse(`
<h2>Span Name: {{.Name}}</h2>
<p>Number of {{.Kind}}: {{.Count}}</p>
{{range .Spans}}
<pre>{{.HeaderHTML}}
{{range .Lines}}{{.}}
{{end}}</pre>
{{end}}
`))
