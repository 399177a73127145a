package predict

import "time"

// Confidence qualifies how much weight a forecast deserves.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Projections are the forecast scores at each horizon, clamped to [0,100].
type Projections struct {
	OneWeek     float64 `json:"one_week"`
	OneMonth    float64 `json:"one_month"`
	ThreeMonths float64 `json:"three_months"`
}

// Details exposes the intermediate values behind a forecast.
type Details struct {
	DaysAnalyzed      int       `json:"days_analyzed"`
	WindowDays        int       `json:"window_days"` // regression window actually used
	Slope             float64   `json:"slope"`       // score units per day
	R2                float64   `json:"r2"`
	FirstDay          time.Time `json:"first_day"`
	LastDay           time.Time `json:"last_day"`
	AvgDailyStudyTime float64   `json:"avg_daily_study_time"` // minutes, over the window
}

// Result is the full score forecast.
type Result struct {
	CurrentAvg           float64     `json:"current_avg"`  // 7-day moving average
	WeeklyTrend          float64     `json:"weekly_trend"` // score change per week
	MonthlyAvg           float64     `json:"monthly_avg"`  // 30-day moving average
	Predictions          Projections `json:"predictions"`
	Confidence           Confidence  `json:"confidence"`
	StudyTimeCorrelation float64     `json:"study_time_correlation"`
	Recommendations      []string    `json:"recommendations"`
	AnalysisDetails      Details     `json:"analysis_details"`
}

// Forecast parameters.
const (
	DefaultMinDays    = 7  // minimum distinct days before forecasting
	DefaultWindowDays = 30 // regression window over the most recent days

	shortWindow = 7
	longWindow  = 30

	horizonWeek     = 7
	horizonMonth    = 30
	horizonQuarter  = 90
	quarterDiscount = 0.9 // long-horizon extrapolation is discounted

	highR2       = 0.7
	mediumR2     = 0.4
	highMinDays  = 30
	mediumMinDay = 14
)
