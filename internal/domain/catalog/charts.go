package catalog

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/ringlens/internal/domain/chart"
	"github.com/okian/ringlens/internal/domain/stats"
	"github.com/okian/ringlens/internal/domain/table"
)

// Palette for contributor lines, in contributor order.
var contributorPalette = []string{
	"#667eea", "#764ba2", "#f093fb", "#4facfe", "#43e97b", "#fa709a", "#fee140", "#30cfd0",
}

const hourLayout = "2006-01-02 15:04"

func scoreChart(id, title, color string) func([]table.Row) chart.Spec {
	return func(rows []table.Row) chart.Spec {
		return chart.Plot(id, title, "Date", "Score").
			WithRange(0, 100).
			Add(chart.Series(rows, "day", "score", 1).As("Score", chart.Line, color))
	}
}

var (
	sleepScoreChart = scoreChart("score", "Sleep Score Trend", "#667eea")
	readinessChart  = scoreChart("score", "Readiness Score", "#8b5cf6")
)

func contributorsChart(title string, keys []string) func([]table.Row) chart.Spec {
	return func(rows []table.Row) chart.Spec {
		spec := chart.Plot("contributors", title, "Date", "Score").WithRange(0, 100)
		for i, k := range keys {
			spec = spec.Add(chart.Series(rows, "day", k, 1).
				As(humanize(k), chart.Line, contributorPalette[i%len(contributorPalette)]))
		}
		return spec
	}
}

var (
	sleepContributorsChart    = contributorsChart("Sleep Contributors", SleepContributors)
	activityContributorsChart = contributorsChart("Activity Contributors", ActivityContributors)
)

func stepsChart(rows []table.Row) chart.Spec {
	t := chart.Series(rows, "day", "steps", 1).As("Steps", chart.Bar, "")
	t.ColorScale = "Viridis"
	return chart.Plot("steps", "Daily Steps", "Date", "Steps").Add(t)
}

func caloriesChart(rows []table.Row) chart.Spec {
	return chart.Plot("calories", "Calories Burned", "Date", "Calories").Add(
		chart.Series(rows, "day", "total_calories", 1).As("Total Calories", chart.Line, "#635bff").Filled("tonexty"),
		chart.Series(rows, "day", "active_calories", 1).As("Active Calories", chart.Line, "#00d4ff").Filled("tozeroy"),
	)
}

func stressChart(rows []table.Row) chart.Spec {
	spec := chart.Plot("stress_recovery", "Stress vs Recovery", "Date", "Hours").Add(
		chart.Series(rows, "day", "stress_high_hours", 1).As("High Stress", chart.Bar, "#ff9800"),
		chart.Series(rows, "day", "recovery_high_hours", 1).As("High Recovery", chart.Bar, "#4caf50"),
	)
	spec.BarMode = "group"
	return spec
}

func spo2Chart(rows []table.Row) chart.Spec {
	return chart.Plot("spo2", "Blood Oxygen (SpO2)", "Date", "SpO2 %").
		WithRange(90, 100).
		Add(chart.Series(rows, "day", "spo2_avg", 1).As("SpO2", chart.Line, "#00d4ff"))
}

func resilienceTable(rows []table.Row) chart.Spec {
	spec := chart.Table("levels", "Resilience Levels", "day", "level")
	for i := len(rows) - 1; i >= 0; i-- {
		spec.Rows = append(spec.Rows, []any{rows[i]["day"], rows[i]["level"]})
	}
	return spec
}

func heartRateChart(rows []table.Row) chart.Spec {
	points := stats.BucketMean(rows, "timestamp", "bpm", stats.Hourly)
	return chart.Plot("hourly", "Average Heart Rate by Hour", "Time", "BPM").
		Add(chart.FromPoints(points, hourLayout).As("Heart Rate", chart.Line, "#ef5350").Lines())
}

// workoutChart draws one scatter trace per activity, sized by calories.
func workoutChart(rows []table.Row) chart.Spec {
	byActivity := make(map[string][]table.Row)
	for _, r := range rows {
		name, _ := r["activity"].(string)
		if name == "" {
			name = "other"
		}
		byActivity[name] = append(byActivity[name], r)
	}
	names := make([]string, 0, len(byActivity))
	for n := range byActivity {
		names = append(names, n)
	}
	sort.Strings(names)

	spec := chart.Plot("calories", "Workouts", "Date", "Calories")
	for i, n := range names {
		group := byActivity[n]
		t := chart.Series(group, "day", "calories", 1).As(humanize(n), chart.Scatter, contributorPalette[i%len(contributorPalette)])
		t.Mode = "markers"
		t.Size = make([]any, len(group))
		t.Text = make([]any, len(group))
		for j, r := range group {
			t.Size[j] = r["calories_size"]
			t.Text[j] = fmt.Sprintf("distance: %v, intensity: %v", display(r["distance"]), display(r["intensity"]))
		}
		spec = spec.Add(t)
	}
	return spec
}

func temperatureTrendChart(rows []table.Row) chart.Spec {
	return chart.Plot("trend", "Skin Temperature", "Time", "°C").
		Add(chart.Series(rows, "timestamp", "skin_temp", 1).As("Skin Temperature", chart.Line, "#ef4444").Lines())
}

func temperatureDailyChart(rows []table.Row) chart.Spec {
	points := stats.BucketMean(rows, "timestamp", "skin_temp", stats.Daily)
	return chart.Plot("daily", "Daily Average Temperature", "Date", "°C").
		Add(chart.FromPoints(points, "2006-01-02").As("Daily Average", chart.Bar, "#ef4444"))
}

func vo2MaxChart(rows []table.Row) chart.Spec {
	return chart.Plot("trend", "VO2 Max", "Date", "ml/kg/min").
		Add(chart.Series(rows, "day", "vo2_max", 1).As("VO2 Max", chart.Line, "#10b981"))
}

// vascularAgeChart pads the y axis two years beyond the observed range.
func vascularAgeChart(rows []table.Row) chart.Spec {
	spec := chart.Plot("trend", "Cardiovascular Age", "Date", "Years").
		Add(chart.Series(rows, "day", "vascular_age", 1).As("Vascular Age", chart.Line, "#3b82f6"))
	vals := stats.Values(rows, "vascular_age")
	if len(vals) > 0 {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range vals {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		spec = spec.WithRange(lo-2, hi+2)
	}
	return spec
}

func sleepStagesChart(rows []table.Row) chart.Spec {
	spec := chart.Plot("stages", "Sleep Stages", "Date", "Hours").Add(
		chart.Series(rows, "day", "deep_sleep_hours", 1).As("Deep", chart.Bar, "#3b82f6"),
		chart.Series(rows, "day", "rem_sleep_hours", 1).As("REM", chart.Bar, "#8b5cf6"),
		chart.Series(rows, "day", "light_sleep_hours", 1).As("Light", chart.Bar, "#06b6d4"),
		chart.Series(rows, "day", "awake_hours", 1).As("Awake", chart.Bar, "#ef4444"),
	)
	spec.BarMode = "stack"
	return spec
}

func sleepEfficiencyChart(rows []table.Row) chart.Spec {
	return chart.Plot("efficiency", "Sleep Efficiency", "Date", "%").
		WithRange(0, 100).
		Add(chart.Series(rows, "day", "efficiency", 1).As("Efficiency", chart.Line, "#10b981"))
}

func sleepHeartChart(rows []table.Row) chart.Spec {
	return chart.Plot("heart", "Heart Rate & HRV During Sleep", "Date", "").Add(
		chart.Series(rows, "day", "average_heart_rate", 1).As("Avg Heart Rate", chart.Line, "#ef4444"),
		chart.Series(rows, "day", "average_hrv", 1).As("Avg HRV", chart.Line, "#8b5cf6"),
	)
}

var sessionColors = map[string]string{
	"meditation": "#8b5cf6",
	"breathing":  "#3b82f6",
	"rest":       "#10b981",
}

func sessionDurationChart(rows []table.Row) chart.Spec {
	byType := make(map[string][]table.Row)
	for _, r := range rows {
		typ, _ := r["type"].(string)
		byType[typ] = append(byType[typ], r)
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)

	spec := chart.Plot("duration", "Session Duration", "Date", "Minutes")
	for _, typ := range types {
		color, ok := sessionColors[typ]
		if !ok {
			color = "#6b7280"
		}
		name := humanize(typ)
		if name == "" {
			name = "Other"
		}
		spec = spec.Add(chart.Series(byType[typ], "day", "duration_minutes", 1).As(name, chart.Bar, color))
	}
	return spec
}

func sessionHeartChart(rows []table.Row) chart.Spec {
	return chart.Plot("heart_rate", "Average Session Heart Rate", "Date", "BPM").
		Add(chart.Series(rows, "day", "avg_heart_rate", 1).As("Heart Rate", chart.Line, "#ef4444"))
}

func sleepTimeTable(rows []table.Row) chart.Spec {
	spec := chart.Table("recommendations", "Bedtime Recommendations", "day", "status", "recommendation", "optimal_bedtime")
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		spec.Rows = append(spec.Rows, []any{r["day"], r["status"], r["recommendation"], r["optimal_bedtime"]})
	}
	return spec
}

// humanize turns snake_case keys into labels: "deep_sleep" -> "Deep Sleep".
func humanize(key string) string {
	out := []rune(key)
	upper := true
	for i, r := range out {
		switch {
		case r == '_':
			out[i] = ' '
			upper = true
		case upper && r >= 'a' && r <= 'z':
			out[i] = r - 'a' + 'A'
			upper = false
		default:
			upper = false
		}
	}
	return string(out)
}

func display(v any) string {
	if v == nil {
		return "n/a"
	}
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%g", f)
	}
	return fmt.Sprint(v)
}
