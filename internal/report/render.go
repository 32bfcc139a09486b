package report

import (
	"fmt"
	"html/template"
	"strings"
)

var htmlTmpl = template.Must(template.New("report").Parse(`<html>
<body>
<h2>{{.Title}}</h2>
<table border="1" cellpadding="4" cellspacing="0">
  <tr><td>Total documents</td><td>{{.TotalReported}}</td></tr>
  <tr><td>Expired</td><td>{{.TotalExpired}}</td></tr>
  <tr><td>Expiring within 30 days</td><td>{{.TotalExpiringSoon}}</td></tr>
</table>
{{range .Sections}}
<h3>{{.DisplayName}}</h3>
<ul>
{{range .Expired}}  <li><b>{{.PatientName}}</b>{{if .Contact}} ({{.Contact}}){{end}} &mdash; {{.Status}}</li>
{{end}}{{range .ExpiringSoon}}  <li><b>{{.PatientName}}</b>{{if .Contact}} ({{.Contact}}){{end}} &mdash; {{.Status}}</li>
{{end}}</ul>
{{end}}
</body>
</html>
`))

// RenderHTML 渲染邮件 HTML 正文
func (s *Summary) RenderHTML() (string, error) {
	var b strings.Builder
	if err := htmlTmpl.Execute(&b, s); err != nil {
		return "", fmt.Errorf("failed to render report html: %w", err)
	}
	return b.String(), nil
}

// RenderText 渲染纯文本正文（邮件 alternative part 以及 console 输出）
func (s *Summary) RenderText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", s.Title)
	fmt.Fprintf(&b, "Total documents: %d\n", s.TotalReported)
	fmt.Fprintf(&b, "Expired: %d\n", s.TotalExpired)
	fmt.Fprintf(&b, "Expiring within 30 days: %d\n", s.TotalExpiringSoon)
	for _, sec := range s.Sections {
		fmt.Fprintf(&b, "\n== %s ==\n", sec.DisplayName)
		for _, line := range append(append([]Line{}, sec.Expired...), sec.ExpiringSoon...) {
			if line.Contact != "" {
				fmt.Fprintf(&b, "  %s (%s) - %s\n", line.PatientName, line.Contact, line.Status)
			} else {
				fmt.Fprintf(&b, "  %s - %s\n", line.PatientName, line.Status)
			}
		}
	}
	return b.String()
}
