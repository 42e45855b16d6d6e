package leaderboard

import (
	"sort"
	"time"

	"github.com/matchcall/predictor-league/internal/domain/fixture"
	"github.com/matchcall/predictor-league/internal/domain/prediction"
)

// Input carries everything Build needs. Members must arrive in a stable
// first-seen order (join order); that order is the tiebreak for equal points.
type Input struct {
	Members     []string
	Usernames   map[string]string
	Predictions []prediction.Prediction
	Fixtures    []fixture.Fixture
	AsOf        time.Time
	Rules       prediction.ScoringRules
}

// currentWindows returns the matchday currently being scored and the one
// before it. The current window is the highest matchday with at least one
// kickoff at or before asOf; before any kickoff both are zero.
func currentWindows(fixtures []fixture.Fixture, asOf time.Time) (week, lastWeek int) {
	seen := make(map[int]struct{})
	var started []int
	for _, f := range fixtures {
		if f.KickoffAt.After(asOf) {
			continue
		}
		if _, ok := seen[f.Matchday]; ok {
			continue
		}
		seen[f.Matchday] = struct{}{}
		started = append(started, f.Matchday)
	}
	if len(started) == 0 {
		return 0, 0
	}
	sort.Ints(started)
	week = started[len(started)-1]
	if len(started) > 1 {
		lastWeek = started[len(started)-2]
	}
	return week, lastWeek
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

func sameMonth(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// Build derives one Row per member from raw predictions and fixtures. Every
// member gets a row even without predictions. Only settled fixtures
// contribute points; pending predictions contribute nothing to any column.
// The result is deterministic for identical inputs.
func Build(in Input) []Row {
	fixturesByID := make(map[string]fixture.Fixture, len(in.Fixtures))
	for _, f := range in.Fixtures {
		fixturesByID[f.ID] = f
	}
	predsByUser := make(map[string][]prediction.Prediction, len(in.Members))
	for _, p := range in.Predictions {
		predsByUser[p.UserID] = append(predsByUser[p.UserID], p)
	}

	week, lastWeek := currentWindows(in.Fixtures, in.AsOf)

	rows := make([]Row, 0, len(in.Members))
	for _, userID := range in.Members {
		row := Row{UserID: userID, Username: in.Usernames[userID]}
		for _, p := range predsByUser[userID] {
			f, ok := fixturesByID[p.FixtureID]
			if !ok {
				continue
			}
			res := prediction.Score(p, f, in.Rules)
			if !res.Settled {
				continue
			}
			row.OverallPoints += res.Points
			if sameMonth(f.KickoffAt, in.AsOf) {
				row.MonthPoints += res.Points
			}
			if week != 0 && f.Matchday == week {
				row.WeekPoints += res.Points
			}
			if lastWeek != 0 && f.Matchday == lastWeek {
				row.LastWeekPoints += res.Points
			}
		}
		row.WeekDelta = row.WeekPoints - row.LastWeekPoints
		rows = append(rows, row)
	}

	// Stable sort keeps member order as the tiebreak for equal points.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].OverallPoints > rows[j].OverallPoints
	})
	for i := range rows {
		if i > 0 && rows[i].OverallPoints == rows[i-1].OverallPoints {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
	return rows
}

// Honours returns the top scorer of each of the most recent limit calendar
// months that have settled points, newest first. Ties go to the earlier
// member in join order.
func Honours(in Input, limit int) []MonthlyHonour {
	fixturesByID := make(map[string]fixture.Fixture, len(in.Fixtures))
	for _, f := range in.Fixtures {
		fixturesByID[f.ID] = f
	}
	memberIndex := make(map[string]int, len(in.Members))
	for i, userID := range in.Members {
		memberIndex[userID] = i
	}

	type monthKey struct {
		year  int
		month time.Month
	}
	points := make(map[monthKey]map[string]int)
	for _, p := range in.Predictions {
		if _, isMember := memberIndex[p.UserID]; !isMember {
			continue
		}
		f, ok := fixturesByID[p.FixtureID]
		if !ok || f.KickoffAt.After(in.AsOf) {
			continue
		}
		res := prediction.Score(p, f, in.Rules)
		if !res.Settled {
			continue
		}
		kickoff := f.KickoffAt.UTC()
		key := monthKey{year: kickoff.Year(), month: kickoff.Month()}
		if points[key] == nil {
			points[key] = make(map[string]int)
		}
		points[key][p.UserID] += res.Points
	}

	months := make([]monthKey, 0, len(points))
	for key := range points {
		months = append(months, key)
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].year != months[j].year {
			return months[i].year > months[j].year
		}
		return months[i].month > months[j].month
	})
	if limit > 0 && len(months) > limit {
		months = months[:limit]
	}

	honours := make([]MonthlyHonour, 0, len(months))
	for _, key := range months {
		winner := ""
		best := 0
		for _, userID := range in.Members {
			pts, ok := points[key][userID]
			if !ok {
				continue
			}
			if winner == "" || pts > best {
				winner, best = userID, pts
			}
		}
		if winner == "" {
			continue
		}
		label := time.Date(key.year, key.month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
		honours = append(honours, MonthlyHonour{
			MonthLabel: label,
			UserID:     winner,
			Username:   in.Usernames[winner],
			Points:     best,
		})
	}
	return honours
}

// Stats derives per-member prediction tallies over settled fixtures.
func Stats(in Input) []UserStats {
	fixturesByID := make(map[string]fixture.Fixture, len(in.Fixtures))
	for _, f := range in.Fixtures {
		fixturesByID[f.ID] = f
	}
	predsByUser := make(map[string][]prediction.Prediction, len(in.Members))
	for _, p := range in.Predictions {
		predsByUser[p.UserID] = append(predsByUser[p.UserID], p)
	}

	stats := make([]UserStats, 0, len(in.Members))
	for _, userID := range in.Members {
		s := UserStats{UserID: userID, Username: in.Usernames[userID]}
		for _, p := range predsByUser[userID] {
			f, ok := fixturesByID[p.FixtureID]
			if !ok {
				continue
			}
			if p.IsBonus {
				s.BonusUsed++
			}
			if !f.IsSettled() {
				continue
			}
			s.Predicted++
			switch {
			case p.PredictedHome == *f.HomeScore && p.PredictedAway == *f.AwayScore:
				s.Exact++
			case sign(p.PredictedHome-p.PredictedAway) == sign(*f.HomeScore-*f.AwayScore):
				s.Outcome++
			default:
				s.Wrong++
			}
		}
		stats = append(stats, s)
	}
	return stats
}
