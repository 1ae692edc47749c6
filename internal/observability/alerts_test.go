package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type alertFile struct {
	Groups []struct {
		Name  string `yaml:"name"`
		Rules []struct {
			Alert       string            `yaml:"alert"`
			Expr        string            `yaml:"expr"`
			For         string            `yaml:"for"`
			Labels      map[string]string `yaml:"labels"`
			Annotations map[string]string `yaml:"annotations"`
		} `yaml:"rules"`
	} `yaml:"groups"`
}

var metricName = regexp.MustCompile(`procman_[a-z_]+`)

func loadAlerts(t *testing.T) alertFile {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "deploy", "prometheus", "alerts", "procman.yml"))
	require.NoError(t, err)
	var file alertFile
	require.NoError(t, yaml.Unmarshal(data, &file))
	require.Len(t, file.Groups, 1)
	require.Equal(t, "procman", file.Groups[0].Name)
	return file
}

func TestAlertRulesAreComplete(t *testing.T) {
	severities := map[string]string{
		"HighErrorRate":    "critical",
		"HighLatency":      "warning",
		"ForbiddenSpike":   "warning",
		"TotalsRefreshJob": "warning",
	}
	runbook, err := os.ReadFile(filepath.Join("..", "..", "docs", "runbook.md"))
	require.NoError(t, err)

	rules := loadAlerts(t).Groups[0].Rules
	require.Len(t, rules, len(severities))
	for _, rule := range rules {
		want, ok := severities[rule.Alert]
		require.True(t, ok, "unexpected alert %s", rule.Alert)
		require.Equal(t, want, rule.Labels["severity"], rule.Alert)
		require.NotEmpty(t, rule.Expr, rule.Alert)
		require.NotEmpty(t, rule.For, rule.Alert)
		require.NotEmpty(t, rule.Annotations["summary"], rule.Alert)
		require.NotEmpty(t, rule.Annotations["description"], rule.Alert)

		anchor, ok := strings.CutPrefix(rule.Annotations["runbook"], "docs/runbook.md#")
		require.True(t, ok, rule.Alert)
		require.Contains(t, headingAnchors(string(runbook)), anchor, rule.Alert)
	}
}

func TestAlertExpressionsUseExportedMetrics(t *testing.T) {
	m := NewMetrics()
	m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	m.RecordDenial("admin")
	_ = m.Jobs().Start("totals:refresh").Finish(errors.New("boom"))

	families, err := m.registry.Gather()
	require.NoError(t, err)
	exported := map[string]bool{}
	for _, mf := range families {
		exported[mf.GetName()] = true
	}

	for _, rule := range loadAlerts(t).Groups[0].Rules {
		for _, name := range metricName.FindAllString(rule.Expr, -1) {
			base := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(name, "_bucket"), "_sum"), "_count")
			require.True(t, exported[base], "%s references unknown metric %s", rule.Alert, name)
		}
	}
}

// headingAnchors returns the GitHub style anchors of markdown headings.
func headingAnchors(doc string) []string {
	var anchors []string
	for _, line := range strings.Split(doc, "\n") {
		if !strings.HasPrefix(line, "#") {
			continue
		}
		title := strings.ToLower(strings.TrimSpace(strings.TrimLeft(line, "#")))
		var b strings.Builder
		for _, r := range title {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
				b.WriteRune(r)
			case r == ' ':
				b.WriteRune('-')
			}
		}
		anchors = append(anchors, b.String())
	}
	return anchors
}
