package pattern

// Leaderboard represents a ranked metric list. loopcheck uses it to rank
// suspect data lines by how many patterns they corrupted.
type Leaderboard struct {
	Label    string
	Items    []LeaderboardItem
	ShowRank bool
}

// LeaderboardItem is one ranked entry.
type LeaderboardItem struct {
	Rank   int
	Name   string // e.g., "line 5 (bit 5)"
	Metric string // e.g., "12 failures"
}

func (l *Leaderboard) Type() PatternType { return PatternTypeLeaderboard }
