package catalog

import (
	"github.com/okian/ringlens/internal/domain/jsonfield"
	"github.com/okian/ringlens/internal/domain/stats"
	"github.com/okian/ringlens/internal/domain/table"
)

// Export kind names.
const (
	DailySleep        = "dailysleep"
	DailyActivity     = "dailyactivity"
	DailyReadiness    = "dailyreadiness"
	DailyStress       = "dailystress"
	DailySpO2         = "dailyspo2"
	DailyResilience   = "dailyresilience"
	HeartRate         = "heartrate"
	Workout           = "workout"
	Temperature       = "temperature"
	VO2Max            = "vo2max"
	CardiovascularAge = "dailycardiovascularage"
	SleepModel        = "sleepmodel"
	Session           = "session"
	SleepTime         = "sleeptime"
)

// SleepContributors are the sub-scores of the daily sleep score.
var SleepContributors = []string{
	"deep_sleep", "efficiency", "latency", "rem_sleep", "restfulness", "timing", "total_sleep",
}

// ActivityContributors are the sub-scores of the daily activity score.
var ActivityContributors = []string{
	"stay_active", "move_every_hour", "meet_daily_targets", "training_volume", "recovery_time",
}

// ReadinessContributors are the sub-scores of the readiness score.
var ReadinessContributors = []string{
	"activity_balance", "body_temperature", "hrv_balance", "previous_day_activity",
	"previous_night", "recovery_index", "resting_heart_rate", "sleep_balance",
}

const secondsPerHour = 3600

var kinds = []*Kind{
	{
		Name:         DailySleep,
		Title:        "Sleep",
		TimeColumn:   "day",
		Contributors: SleepContributors,
		Metrics: []Metric{
			{Key: "sleep_score", Label: "Avg Sleep Score", Column: "score", Headline: true},
		},
		Charts: []Builder{
			{ID: "score", Build: sleepScoreChart},
			{ID: "contributors", Build: sleepContributorsChart},
		},
	},
	{
		Name:         DailyActivity,
		Title:        "Activity",
		TimeColumn:   "day",
		Contributors: ActivityContributors,
		Metrics: []Metric{
			{Key: "activity_score", Label: "Avg Activity Score", Column: "score", Headline: true},
			{Key: "steps", Label: "Avg Daily Steps", Column: "steps", Unit: "steps", Headline: true},
			{Key: "total_calories", Label: "Avg Total Calories", Column: "total_calories", Unit: "kcal"},
			{Key: "active_calories", Label: "Avg Active Calories", Column: "active_calories", Unit: "kcal"},
		},
		Charts: []Builder{
			{ID: "steps", Build: stepsChart},
			{ID: "calories", Build: caloriesChart},
			{ID: "contributors", Build: activityContributorsChart},
		},
	},
	{
		Name:         DailyReadiness,
		Title:        "Readiness",
		TimeColumn:   "day",
		Contributors: ReadinessContributors,
		Metrics: []Metric{
			{Key: "readiness_score", Label: "Avg Readiness Score", Column: "score", Headline: true},
			{Key: "temperature_deviation", Label: "Avg Temperature Deviation", Column: "temperature_deviation", Unit: "°C", Precision: 2},
		},
		Charts: []Builder{
			{ID: "score", Build: readinessChart},
		},
	},
	{
		Name:       DailyStress,
		Title:      "Stress",
		TimeColumn: "day",
		Derived: []Derivation{
			{As: "stress_high_hours", Fn: hours("stress_high")},
			{As: "recovery_high_hours", Fn: hours("recovery_high")},
		},
		Metrics: []Metric{
			{Key: "stress_high", Label: "Avg High Stress", Column: "stress_high_hours", Unit: "h", Precision: 1},
			{Key: "recovery_high", Label: "Avg High Recovery", Column: "recovery_high_hours", Unit: "h", Precision: 1},
		},
		Charts: []Builder{
			{ID: "stress_recovery", Build: stressChart},
		},
	},
	{
		Name:       DailySpO2,
		Title:      "Blood Oxygen",
		TimeColumn: "day",
		Extracts: []Extract{
			{Column: "spo2_percentage", Key: "average", As: "spo2_avg"},
		},
		Metrics: []Metric{
			{Key: "spo2", Label: "Avg SpO2", Column: "spo2_avg", Unit: "%", Precision: 1},
			{Key: "breathing_disturbance", Label: "Avg Breathing Disturbance Index", Column: "breathing_disturbance_index", Precision: 1},
		},
		Charts: []Builder{
			{ID: "spo2", Build: spo2Chart},
		},
	},
	{
		Name:       DailyResilience,
		Title:      "Resilience",
		TimeColumn: "day",
		Charts: []Builder{
			{ID: "levels", Build: resilienceTable},
		},
	},
	{
		Name:        HeartRate,
		Title:       "Heart Rate",
		TimeColumn:  "timestamp",
		Timestamped: true,
		Metrics: []Metric{
			{Key: "heart_rate", Label: "Avg Heart Rate", Column: "bpm", Unit: "bpm"},
		},
		Charts: []Builder{
			{ID: "hourly", Build: heartRateChart},
		},
	},
	{
		Name:       Workout,
		Title:      "Workouts",
		TimeColumn: "day",
		Derived: []Derivation{
			{As: "calories_size", Fn: zeroIfMissing("calories")},
		},
		Metrics: []Metric{
			{Key: "workout_calories", Label: "Avg Workout Calories", Column: "calories", Unit: "kcal"},
		},
		Charts: []Builder{
			{ID: "calories", Build: workoutChart},
		},
	},
	{
		Name:        Temperature,
		Title:       "Temperature",
		TimeColumn:  "timestamp",
		Timestamped: true,
		Metrics: []Metric{
			{Key: "skin_temp", Label: "Avg Skin Temperature", Column: "skin_temp", Unit: "°C", Precision: 2},
		},
		Charts: []Builder{
			{ID: "trend", Build: temperatureTrendChart},
			{ID: "daily", Build: temperatureDailyChart},
		},
	},
	{
		Name:       VO2Max,
		Title:      "VO2 Max",
		TimeColumn: "day",
		Metrics: []Metric{
			{Key: "vo2_max", Label: "Avg VO2 Max", Column: "vo2_max", Unit: "ml/kg/min", Precision: 1},
		},
		Charts: []Builder{
			{ID: "trend", Build: vo2MaxChart},
		},
	},
	{
		Name:       CardiovascularAge,
		Title:      "Cardiovascular Age",
		TimeColumn: "day",
		Metrics: []Metric{
			{Key: "vascular_age", Label: "Avg Vascular Age", Column: "vascular_age", Unit: "years", Precision: 1},
		},
		Charts: []Builder{
			{ID: "trend", Build: vascularAgeChart},
		},
	},
	{
		Name:       SleepModel,
		Title:      "Sleep Stages",
		TimeColumn: "day",
		Derived: []Derivation{
			{As: "deep_sleep_hours", Fn: hours("deep_sleep_duration")},
			{As: "rem_sleep_hours", Fn: hours("rem_sleep_duration")},
			{As: "light_sleep_hours", Fn: hours("light_sleep_duration")},
			{As: "awake_hours", Fn: hours("awake_time")},
			{As: "total_sleep_hours", Fn: hours("total_sleep_duration")},
		},
		Metrics: []Metric{
			{Key: "total_sleep", Label: "Avg Total Sleep", Column: "total_sleep_hours", Unit: "h", Precision: 1},
			{Key: "sleep_efficiency", Label: "Avg Sleep Efficiency", Column: "efficiency", Unit: "%"},
			{Key: "sleep_heart_rate", Label: "Avg Sleeping Heart Rate", Column: "average_heart_rate", Unit: "bpm", Precision: 1},
			{Key: "hrv", Label: "Avg HRV", Column: "average_hrv", Unit: "ms"},
		},
		Charts: []Builder{
			{ID: "stages", Build: sleepStagesChart},
			{ID: "efficiency", Build: sleepEfficiencyChart},
			{ID: "heart", Build: sleepHeartChart},
		},
	},
	{
		Name:       Session,
		Title:      "Sessions",
		TimeColumn: "day",
		Derived: []Derivation{
			{As: "duration_minutes", Fn: sessionMinutes},
			{As: "avg_heart_rate", Fn: sessionHeartRate},
		},
		Metrics: []Metric{
			{Key: "session_minutes", Label: "Avg Session Length", Column: "duration_minutes", Unit: "min", Precision: 1},
		},
		Charts: []Builder{
			{ID: "duration", Build: sessionDurationChart},
			{ID: "heart_rate", Build: sessionHeartChart},
		},
	},
	{
		Name:       SleepTime,
		Title:      "Bedtime Guidance",
		TimeColumn: "day",
		Charts: []Builder{
			{ID: "recommendations", Build: sleepTimeTable},
		},
	},
}

// hours converts a seconds column to hours.
func hours(column string) func(table.Row) any {
	return func(r table.Row) any {
		f, ok := table.Float(r[column])
		if !ok {
			return nil
		}
		return f / secondsPerHour
	}
}

func zeroIfMissing(column string) func(table.Row) any {
	return func(r table.Row) any {
		if f, ok := table.Float(r[column]); ok {
			return f
		}
		return 0.0
	}
}

func sessionMinutes(r table.Row) any {
	start, ok1 := table.ParseTime(r["start_datetime"])
	end, ok2 := table.ParseTime(r["end_datetime"])
	if !ok1 || !ok2 {
		return nil
	}
	return end.Sub(start).Minutes()
}

func sessionHeartRate(r table.Row) any {
	items := jsonfield.Items(r["heart_rate"], "items")
	if len(items) == 0 {
		return nil
	}
	vs := make([]any, len(items))
	for i, v := range items {
		vs[i] = v
	}
	return stats.Mean(vs)
}
