package digest

import (
	"math"
	"strings"
	"testing"

	"github.com/okian/ringlens/internal/domain/catalog"
	"github.com/okian/ringlens/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSummaryText(t *testing.T) {
	Convey("Given sleep, activity and readiness data", t, func() {
		ds := catalog.Dataset{
			"dailysleep.csv": {
				{"day": "2024-01-01", "score": 80.0},
				{"day": "2024-01-02", "score": nil},
				{"day": "2024-01-03", "score": 0.0},
			},
			"dailyactivity.csv": {
				{"day": "2024-01-01", "steps": 5000.0},
				{"day": "2024-01-02", "steps": 15000.0},
			},
			"dailyreadiness.csv": {
				{"day": "2024-01-01", "score": 75.0},
			},
		}
		text := SummaryText(ds)

		Convey("Then each line follows the fixed format", func() {
			So(text, ShouldEqual, "Health Data Summary:\n\n"+
				"Sleep: 3 nights tracked, average score 40.0\n"+
				"Activity: 2 days tracked, average 10000 steps/day\n"+
				"Readiness: Average score 75.0\n")
		})

		Convey("Then the prompt wraps the text", func() {
			So(SummaryPrompt(text), ShouldStartWith, "Summarize this health data in 2-3 sentences:\nHealth Data Summary:")
		})
	})

	Convey("Given files named with separators", t, func() {
		ds := catalog.Dataset{"daily-readiness.csv": {{"day": "2024-01-01", "score": 60.0}}}

		Convey("Then they are still recognised", func() {
			So(SummaryText(ds), ShouldContainSubstring, "Readiness: Average score 60.0")
		})
	})

	Convey("Given NaN scores only", t, func() {
		ds := catalog.Dataset{"dailysleep.csv": {{"score": math.NaN()}}}

		Convey("Then the mean falls back to zero", func() {
			So(SummaryText(ds), ShouldContainSubstring, "average score 0.0")
		})
	})

	Convey("Given none of the summarised exports", t, func() {
		ds := catalog.Dataset{"heartrate.csv": {{"bpm": 60.0}}}

		Convey("Then the text is empty", func() {
			So(SummaryText(ds), ShouldEqual, "")
		})
	})
}

func TestChatContext(t *testing.T) {
	Convey("Given a full data set", t, func() {
		ds := catalog.Dataset{
			"dailysleep.csv": {
				{"day": "2024-01-01", "score": 80.0},
				{"day": "2024-01-02", "score": 0.0},
				{"day": "2024-01-03", "score": 90.0},
			},
			"dailyactivity.csv": {
				{"day": "2024-01-01", "steps": 4000.0, "total_calories": 2000.0},
				{"day": "2024-01-02", "steps": 6000.0, "total_calories": nil},
			},
			"dailyreadiness.csv": {
				{"day": "2024-01-02", "score": 71.0},
			},
			"dailystress.csv": {
				{"day_summary": "stressful"}, {"day_summary": ""}, {"day_summary": "normal"},
				{"day_summary": "restored"}, {"day_summary": "normal"}, {"day_summary": "normal"},
				{"day_summary": "restored"},
			},
			"dailyspo2.csv": {{"day": "2024-01-01"}, {"day": "2024-01-02"}},
			"heartrate.csv": {{"bpm": 60.0}, {"bpm": 0.0}, {"bpm": 70.0}},
		}
		ctx := ChatContext(ds)

		Convey("Then zero scores are excluded from averages", func() {
			So(ctx, ShouldContainSubstring, "- Sleep: 3 nights, avg score 85.0\n  Latest: 2024-01-03 - Score: 90\n")
		})

		Convey("Then activity reports steps and calories", func() {
			So(ctx, ShouldContainSubstring, "- Activity: 2 days, avg 5000 steps, 2000 calories\n  Latest: 2024-01-02 - 6000 steps\n")
		})

		Convey("Then readiness, stress, SpO2 and heart rate lines follow", func() {
			So(ctx, ShouldContainSubstring, "- Readiness: avg score 71.0\n  Latest: 2024-01-02 - Score: 71\n")
			So(ctx, ShouldContainSubstring, "- Stress: Recent days - normal, restored, normal, normal, restored\n")
			So(ctx, ShouldContainSubstring, "- SpO2: 2 measurements tracked\n")
			So(ctx, ShouldContainSubstring, "- Heart Rate: 3 measurements, avg 65 bpm\n")
			So(ctx, ShouldStartWith, "User's Health Data Summary:\n- Sleep")
		})

		Convey("Then the system prompt carries the context", func() {
			sys := ChatSystem(ctx)
			So(sys, ShouldStartWith, ChatSystemPrompt)
			So(sys, ShouldEndWith, ctx)
		})
	})

	Convey("Given data with nothing truthy", t, func() {
		ds := catalog.Dataset{"dailysleep.csv": {{"day": "2024-01-01", "score": 0.0}}}

		Convey("Then there is no context and the prompt is unchanged", func() {
			So(ChatContext(ds), ShouldEqual, "")
			So(ChatSystem(""), ShouldEqual, ChatSystemPrompt)
		})
	})

	Convey("Given a missing latest value", t, func() {
		ds := catalog.Dataset{"dailyreadiness.csv": []table.Row{{"day": "2024-01-01", "score": 60.0}, {"day": nil, "score": nil}}}

		Convey("Then it reads as unknown", func() {
			So(strings.Contains(ChatContext(ds), "Latest: unknown - Score: unknown"), ShouldBeTrue)
		})
	})
}
