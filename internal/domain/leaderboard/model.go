package leaderboard

// Row is one league member's derived standing. Rows are computed on demand
// and never stored.
type Row struct {
	UserID         string
	Username       string
	Rank           int
	OverallPoints  int
	MonthPoints    int
	WeekPoints     int
	LastWeekPoints int
	WeekDelta      int
}

// MonthlyHonour names the top scorer of one calendar month.
type MonthlyHonour struct {
	MonthLabel string
	UserID     string
	Username   string
	Points     int
}

// UserStats summarises one member's prediction record on settled fixtures.
type UserStats struct {
	UserID    string
	Username  string
	Predicted int
	Exact     int
	Outcome   int
	Wrong     int
	BonusUsed int
}
