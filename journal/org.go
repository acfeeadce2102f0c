package journal

import (
	"io"
	"text/template"
	"time"
)

var orgFuncs = template.FuncMap{
	"unix": func(ts int64) string {
		if ts == 0 {
			return "-"
		}
		return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04")
	},
	"stamp": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 Mon 15:04")
	},
}

const orgTemplate = `* SYNC HISTORY
| Run | Series | TF | Started | Window | Fetched | Length | Result |
|-----+--------+----+---------+--------+---------+--------+--------|
{{- range . }}
| {{.ID}} | {{.Exchange}}/{{.Symbol}} | {{.Timeframe}} | [{{stamp .Started}}] | {{unix .WindowStart}} .. {{unix .WindowEnd}} | {{.Fetched}} | {{.Length}} | {{.Result}} |
{{- end }}
{{- range . }}{{ if .Error }}

** {{.ID}} failed
:PROPERTIES:
:EXCHANGE:  {{.Exchange}}
:SYMBOL:    {{.Symbol}}
:DURATION:  {{.Duration}}
:END:
{{.Error}}
{{- end }}{{ end }}
`

var orgTmpl = template.Must(template.New("history").Funcs(orgFuncs).Parse(orgTemplate))

// WriteOrg renders runs as an org-mode table, with a section for each
// failed run.
func WriteOrg(w io.Writer, runs []SyncRun) error {
	return orgTmpl.Execute(w, runs)
}
