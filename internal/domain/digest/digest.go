// Package digest turns uploaded data into the short prose blocks sent to the
// language model, and holds the fixed prompts and fallback messages.
package digest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/ringlens/internal/domain/catalog"
	"github.com/okian/ringlens/internal/domain/stats"
	"github.com/okian/ringlens/internal/domain/table"
)

// Fixed messages.
const (
	SummarySystemPrompt = "You are a health data analyst. Provide a brief, encouraging 2-3 sentence summary of the user's health data trends. Focus on positives and actionable insights."

	ChatSystemPrompt = `You are a helpful health and wellness assistant for Oura Ring users. Your role is to:
- Answer questions about the user's specific health data with personalized insights
- Explain health metrics (sleep score, HRV, readiness, activity, stress, recovery, SpO2, etc.)
- Provide science-based lifestyle advice for improving health metrics
- Answer questions about the dashboard features
- Give actionable tips for better sleep, stress management, and overall wellness

When the user has uploaded data, use their specific numbers in your responses. Keep responses concise (2-4 sentences), friendly, and evidence-based. If asked about medical concerns, remind users to consult healthcare professionals.`

	// UploadedMessage is returned when there is nothing to summarise.
	UploadedMessage = "Your health data has been uploaded successfully! Explore the tabs to view detailed insights."
	// SummaryFallback replaces a failed summary call.
	SummaryFallback = "Your health data has been uploaded successfully! Explore the tabs below to view detailed insights and trends."
	// ChatFailure is the error text of a failed chat call.
	ChatFailure = "Failed to get response. Please try again."

	summaryHeader = "Health Data Summary:\n\n"
	contextHeader = "User's Health Data Summary:\n"
	recentStress  = 5
)

// SummaryText describes sleep, activity and readiness for the summary call.
// Values are filtered for presence only. It returns "" when none of the three
// exports was uploaded.
func SummaryText(ds catalog.Dataset) string {
	var b strings.Builder
	if _, rows, ok := ds.Find(catalog.DailySleep); ok {
		fmt.Fprintf(&b, "Sleep: %d nights tracked, average score %.1f\n", len(rows), stats.Mean(present(rows, "score")))
	}
	if _, rows, ok := ds.Find(catalog.DailyActivity); ok {
		fmt.Fprintf(&b, "Activity: %d days tracked, average %.0f steps/day\n", len(rows), stats.Mean(present(rows, "steps")))
	}
	if _, rows, ok := ds.Find(catalog.DailyReadiness); ok {
		fmt.Fprintf(&b, "Readiness: Average score %.1f\n", stats.Mean(present(rows, "score")))
	}
	if b.Len() == 0 {
		return ""
	}
	return summaryHeader + b.String()
}

// SummaryPrompt is the user message of the summary call.
func SummaryPrompt(text string) string {
	return "Summarize this health data in 2-3 sentences:\n" + text
}

// ChatContext describes the user's data for the chat system prompt. Values
// are filtered for truthiness, and "latest" is the last row as uploaded. It
// returns "" when nothing qualifies.
func ChatContext(ds catalog.Dataset) string {
	var b strings.Builder

	if _, rows, ok := ds.Find(catalog.DailySleep); ok && len(rows) > 0 {
		if scores := truthy(rows, "score"); len(scores) > 0 {
			last := rows[len(rows)-1]
			fmt.Fprintf(&b, "- Sleep: %d nights, avg score %.1f\n", len(rows), stats.Mean(scores))
			fmt.Fprintf(&b, "  Latest: %s - Score: %s\n", format(last["day"]), format(last["score"]))
		}
	}

	if _, rows, ok := ds.Find(catalog.DailyActivity); ok && len(rows) > 0 {
		if steps := truthy(rows, "steps"); len(steps) > 0 {
			last := rows[len(rows)-1]
			fmt.Fprintf(&b, "- Activity: %d days, avg %.0f steps, %.0f calories\n",
				len(rows), stats.Mean(steps), stats.Mean(truthy(rows, "total_calories")))
			fmt.Fprintf(&b, "  Latest: %s - %s steps\n", format(last["day"]), format(last["steps"]))
		}
	}

	if _, rows, ok := ds.Find(catalog.DailyReadiness); ok && len(rows) > 0 {
		if scores := truthy(rows, "score"); len(scores) > 0 {
			last := rows[len(rows)-1]
			fmt.Fprintf(&b, "- Readiness: avg score %.1f\n", stats.Mean(scores))
			fmt.Fprintf(&b, "  Latest: %s - Score: %s\n", format(last["day"]), format(last["score"]))
		}
	}

	if _, rows, ok := ds.Find(catalog.DailyStress); ok {
		var days []string
		for _, r := range rows {
			if table.Truthy(r["day_summary"]) {
				days = append(days, format(r["day_summary"]))
			}
		}
		if len(days) > recentStress {
			days = days[len(days)-recentStress:]
		}
		if len(days) > 0 {
			fmt.Fprintf(&b, "- Stress: Recent days - %s\n", strings.Join(days, ", "))
		}
	}

	if _, rows, ok := ds.Find(catalog.DailySpO2); ok && len(rows) > 0 {
		fmt.Fprintf(&b, "- SpO2: %d measurements tracked\n", len(rows))
	}

	if _, rows, ok := ds.Find(catalog.HeartRate); ok && len(rows) > 0 {
		if bpms := truthy(rows, "bpm"); len(bpms) > 0 {
			fmt.Fprintf(&b, "- Heart Rate: %d measurements, avg %.0f bpm\n", len(rows), stats.Mean(bpms))
		}
	}

	if b.Len() == 0 {
		return ""
	}
	return contextHeader + b.String()
}

// ChatSystem appends the data context, if any, to the chat system prompt.
func ChatSystem(context string) string {
	if context == "" {
		return ChatSystemPrompt
	}
	return ChatSystemPrompt + "\n\n" + context
}

func present(rows []table.Row, column string) []any {
	out := make([]any, 0, len(rows))
	for _, r := range rows {
		if v := r[column]; v != nil {
			out = append(out, v)
		}
	}
	return out
}

func truthy(rows []table.Row, column string) []any {
	out := make([]any, 0, len(rows))
	for _, r := range rows {
		if v := r[column]; table.Truthy(v) {
			out = append(out, v)
		}
	}
	return out
}

// format prints a cell the way it reads in prose: whole numbers without a
// decimal point and missing values as "unknown".
func format(v any) string {
	switch x := v.(type) {
	case nil:
		return "unknown"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
