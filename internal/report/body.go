package report

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxExtraSettings caps how many uncurated metadata rows make it into
// the email before we truncate.
const maxExtraSettings = 15

var bodyTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; background-color: #f5f5f5; }
.container { background-color: white; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); overflow: hidden; }
.header { background: linear-gradient(135deg, #FF6B35 0%, #F7931E 100%); color: white; padding: 30px; text-align: center; }
.header h1 { margin: 0; font-size: 28px; }
.content { padding: 30px; }
.info-row { display: flex; justify-content: space-between; padding: 6px 0; border-bottom: 1px solid #eee; }
.info-label { color: #777; }
.highlight { background-color: #fff8e1; border-radius: 4px; padding: 12px; margin: 16px 0; }
.settings-table { width: 100%; border-collapse: collapse; margin-top: 8px; }
.settings-table td { padding: 6px 8px; border-bottom: 1px solid #eee; }
.footer { text-align: center; color: #999; padding: 20px; font-size: 12px; }
</style>
</head>
<body>
<div class="container">
  <div class="header"><h1>Print Complete</h1></div>
  <div class="content">
    <div class="info-row"><div class="info-label">Print</div><div><strong>{{.Name}}</strong></div></div>
    <div class="info-row"><div class="info-label">Started</div><div>{{.Started}}</div></div>
    <div class="info-row"><div class="info-label">Finished</div><div>{{.Finished}}</div></div>
    <div class="info-row"><div class="info-label">Duration</div><div><strong>{{.Duration}}</strong></div></div>
    <div class="info-row"><div class="info-label">Frames Captured</div><div>{{.Frames}}</div></div>
{{- if .Comparison}}
    <div class="highlight"><strong>Time Comparison:</strong><br>Estimated: {{.Comparison.Estimated}} | Actual: {{.Duration}} ({{.Comparison.Diff}})</div>
{{- end}}
{{- if .Settings}}
    <table class="settings-table">
{{- range .Settings}}
      <tr><td>{{.Label}}</td><td>{{.Value}}</td></tr>
{{- end}}
{{- if .Truncated}}
      <tr><td colspan="2" style="text-align: center; color: #999;">... and {{.Truncated}} more settings</td></tr>
{{- end}}
    </table>
{{- end}}
    <p>The timelapse video is attached.</p>
  </div>
  <div class="footer">lapse</div>
</div>
</body>
</html>
`))

type settingRow struct {
	Label string
	Value string
}

type timeComparison struct {
	Estimated string
	Diff      string
}

type bodyData struct {
	Name       string
	Started    string
	Finished   string
	Duration   string
	Frames     int
	Comparison *timeComparison
	Settings   []settingRow
	Truncated  int
}

// BuildEmailBody renders the HTML completion email for a finished
// print.
func BuildEmailBody(summary *Summary) (string, error) {
	data := bodyData{
		Name:     summary.RawName,
		Started:  summary.StartedAt.Format("2006-01-02 15:04"),
		Finished: summary.EndedAt.Format("2006-01-02 15:04"),
		Duration: FormatDuration(summary.Duration),
		Frames:   summary.FrameCount,
	}
	if data.Name == "" {
		data.Name = summary.Name
	}

	if estimated := summary.estimatedPrintTime(); estimated > 0 {
		diffMinutes := (int64(summary.Duration.Seconds()) - estimated) / 60
		sign := "+"
		if diffMinutes < 0 {
			sign = "-"
			diffMinutes = -diffMinutes
		}
		data.Comparison = &timeComparison{
			Estimated: FormatDuration(secondsDuration(estimated)),
			Diff:      fmt.Sprintf("%s%d min", sign, diffMinutes),
		}
	}

	data.Settings, data.Truncated = settingsRows(summary)

	var b strings.Builder
	if err := bodyTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render email body: %w", err)
	}
	return b.String(), nil
}

// curatedSettings are metadata keys shown first, in this order.
var curatedSettings = []struct {
	key   string
	label string
}{
	{"filament_type", "Filament"},
	{"layer_height", "Layer Height"},
	{"nozzle_diameter", "Nozzle Diameter"},
	{"fill_density", "Infill Density"},
	{"support_material", "Support Material"},
	{"brim_width", "Brim Width"},
	{"ironing", "Ironing"},
}

// hiddenSettings never appear as extra rows, either because they are
// rendered elsewhere or are binary blobs.
var hiddenSettings = map[string]bool{
	"estimated printing time (normal mode)": true,
	"estimated_print_time":                  true,
	"thumbnail":                             true,
	"file_type":                             true,
	"display_name":                          true,
	"name":                                  true,
}

func settingsRows(summary *Summary) ([]settingRow, int) {
	if summary.Job == nil || len(summary.Job.File.Meta) == 0 {
		return nil, 0
	}
	meta := summary.Job.File.Meta

	var rows []settingRow
	shown := make(map[string]bool, len(curatedSettings))
	for _, setting := range curatedSettings {
		shown[setting.key] = true
		if value, ok := meta[setting.key]; ok {
			rows = append(rows, settingRow{Label: setting.label, Value: fmt.Sprint(value)})
		}
	}

	var extraKeys []string
	for key := range meta {
		if !shown[key] && !hiddenSettings[key] {
			extraKeys = append(extraKeys, key)
		}
	}
	sort.Strings(extraKeys)

	titler := cases.Title(language.English)
	truncated := 0
	for i, key := range extraKeys {
		if i >= maxExtraSettings {
			truncated = len(extraKeys) - maxExtraSettings
			break
		}
		label := titler.String(strings.ReplaceAll(key, "_", " "))
		rows = append(rows, settingRow{Label: label, Value: fmt.Sprint(meta[key])})
	}
	return rows, truncated
}

func secondsDuration(seconds int64) time.Duration {
	return time.Duration(seconds) * time.Second
}
