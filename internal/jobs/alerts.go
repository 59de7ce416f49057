package job

import (
	"math"
	"time"

	"github.com/maheshrc27/instaflow/internal/models"
)

const (
	engagementDropThreshold = 0.15
	alertWindow             = 7
	lowPostingWindow        = 10 * 24 * time.Hour
	aggregationWindow       = 30 * 24 * time.Hour

	lowPostingMessage = "Posting frequency is low. Consider posting more regularly."
)

func utcDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// engagementRate is (likes+comments)/followers as a percentage. No followers
// means no measurable engagement.
func engagementRate(likes, comments, followers int64) float64 {
	if followers <= 0 {
		return 0
	}
	return round3(float64(likes+comments) / float64(followers) * 100)
}

// engagementDrop compares the mean engagement rate of the last seven days
// (today included) with the seven days before. It reports the drop as a whole
// percentage when it exceeds the threshold.
func engagementDrop(snapshots []*models.AnalyticsSnapshot, today time.Time) (int, bool) {
	if len(snapshots) < 2 {
		return 0, false
	}

	today = utcDate(today)
	recentStart := today.AddDate(0, 0, -alertWindow)
	previousStart := today.AddDate(0, 0, -2*alertWindow)

	var recentSum, previousSum float64
	var recentN, previousN int
	for _, s := range snapshots {
		d := utcDate(s.SnapshotDate)
		switch {
		case !d.Before(recentStart):
			recentSum += s.EngagementRate
			recentN++
		case !d.Before(previousStart):
			previousSum += s.EngagementRate
			previousN++
		}
	}

	if recentN == 0 || previousN == 0 {
		return 0, false
	}

	recent := recentSum / float64(recentN)
	previous := previousSum / float64(previousN)
	if previous <= 0 || recent >= previous {
		return 0, false
	}

	drop := (previous - recent) / previous
	if drop <= engagementDropThreshold {
		return 0, false
	}
	return int(math.Round(drop * 100)), true
}
