package procurement

import (
	"bytes"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/costing"
)

var analysisTemplate = template.Must(template.New("analysis").Funcs(template.FuncMap{
	"amount": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"optAmount": func(d *decimal.Decimal) string {
		if d == nil {
			return "-"
		}
		return d.StringFixed(2)
	},
}).Parse(`<!DOCTYPE html>
<html lang="el"><head><meta charset="utf-8"><title>Ανάλυση Πληρωμής {{.P.SerialNo}}</title>
<style>
body { font-family: sans-serif; font-size: 12px; }
table { border-collapse: collapse; width: 100%; }
td, th { border: 1px solid #999; padding: 4px 6px; }
td.num { text-align: right; }
</style></head>
<body>
<h1>Ανάλυση Πληρωμής</h1>
<p>Α/Α: {{.P.SerialNo}}<br>Περιγραφή: {{.P.Description}}{{if .P.AAY}}<br>ΑΑΥ: {{.P.AAY}}{{end}}</p>
<table>
<tr><th>Καθαρή αξία</th><td class="num">{{amount .A.Subtotal}}</td></tr>
{{range .A.Withholdings.Items}}<tr><th>{{.Label}} ({{amount .Percent}}%)</th><td class="num">{{amount .Amount}}</td></tr>
{{end}}<tr><th>Σύνολο κρατήσεων ({{amount .A.Withholdings.TotalPercent}}%)</th><td class="num">{{amount .A.Withholdings.TotalAmount}}</td></tr>
<tr><th>Φόρος εισοδήματος{{with .A.IncomeTax.Description}} ({{.}}){{end}} {{optAmount .A.IncomeTax.RatePercent}}%</th><td class="num">{{amount .A.IncomeTax.Amount}}</td></tr>
<tr><th>ΦΠΑ ({{amount .A.VATPercent}}%)</th><td class="num">{{amount .A.VATAmount}}</td></tr>
<tr><th>Πληρωτέο</th><td class="num"><strong>{{amount .A.PayableTotal}}</strong></td></tr>
</table>
</body></html>
`))

func renderAnalysisHTML(p Procurement, a costing.PaymentAnalysis) (string, error) {
	var buf bytes.Buffer
	err := analysisTemplate.Execute(&buf, struct {
		P Procurement
		A costing.PaymentAnalysis
	}{p, a})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
