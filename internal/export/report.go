package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

// MonthlyReport holds the data rendered into the monthly summary page.
type MonthlyReport struct {
	Month    string
	Currency string
	Income   decimal.Decimal
	Expense  decimal.Decimal
	Net      decimal.Decimal
	Budgets  []models.Budget
	Goals    []models.Goal
	Holdings []models.Holding
}

var reportTmpl = template.Must(template.New("monthly").Funcs(template.FuncMap{
	"fixed": func(d decimal.Decimal) string { return d.StringFixed(2) },
}).Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Monthly Report {{.Month}}</title>
  <style>
    body { font-family: Arial, sans-serif; padding: 24px; }
    h1 { margin: 0 0 6px; }
    .muted { color: #666; }
    .grid { display: grid; grid-template-columns: 1fr 1fr; gap: 12px; margin-top: 14px; }
    .card { border: 1px solid #ddd; border-radius: 10px; padding: 12px; margin-top: 14px; }
    table { width: 100%; border-collapse: collapse; margin-top: 8px; }
    th, td { border-bottom: 1px solid #eee; padding: 8px; text-align: left; font-size: 12px; }
    .kpi { font-size: 18px; font-weight: bold; }
  </style>
</head>
<body>
  <h1>Monthly Summary</h1>
  <div class="muted">Month: {{.Month}}</div>

  <div class="grid">
    <div class="card">
      <div class="muted">Income</div>
      <div class="kpi">{{.Currency}} {{fixed .Income}}</div>
    </div>
    <div class="card">
      <div class="muted">Expense</div>
      <div class="kpi">{{.Currency}} {{fixed .Expense}}</div>
    </div>
    <div class="card">
      <div class="muted">Net</div>
      <div class="kpi">{{.Currency}} {{fixed .Net}}</div>
    </div>
  </div>

  <div class="card">
    <h3 style="margin:0;">Budgets</h3>
    {{if .Budgets}}
    <table><thead><tr><th>Category</th><th>Limit</th></tr></thead><tbody>
      {{range .Budgets}}<tr><td>{{.Category}}</td><td>{{$.Currency}} {{fixed .Amount}}</td></tr>{{end}}
    </tbody></table>
    {{else}}<div class="muted" style="margin-top:8px;">No budgets found.</div>{{end}}
  </div>

  <div class="card">
    <h3 style="margin:0;">Goals</h3>
    {{if .Goals}}
    <table><thead><tr><th>Title</th><th>Saved</th><th>Target</th><th>Status</th></tr></thead><tbody>
      {{range .Goals}}<tr><td>{{.Title}}</td><td>{{$.Currency}} {{fixed .CurrentAmount}}</td><td>{{$.Currency}} {{fixed .TargetAmount}}</td><td>{{.Status}}</td></tr>{{end}}
    </tbody></table>
    {{else}}<div class="muted" style="margin-top:8px;">No goals found.</div>{{end}}
  </div>

  <div class="card">
    <h3 style="margin:0;">Portfolio</h3>
    {{if .Holdings}}
    <table><thead><tr><th>Name</th><th>Type</th><th>Invested</th><th>Current</th></tr></thead><tbody>
      {{range .Holdings}}<tr><td>{{.Name}}</td><td>{{.HoldingType}}</td><td>{{$.Currency}} {{fixed .InvestedAmount}}</td><td>{{$.Currency}} {{fixed .CurrentValue}}</td></tr>{{end}}
    </tbody></table>
    {{else}}<div class="muted" style="margin-top:8px;">No holdings found.</div>{{end}}
  </div>
</body>
</html>
`))

// MonthlyHTML renders the monthly summary report as a standalone HTML page.
func MonthlyHTML(report MonthlyReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, report); err != nil {
		return nil, fmt.Errorf("render monthly report: %w", err)
	}
	return buf.Bytes(), nil
}
