package models

// LeaderboardEntry is one ranked row of the leaderboard, ranks start at 1
type LeaderboardEntry struct {
	Rank int
	User *User
}

// RankUsers assigns ranks in the order given
func RankUsers(users []*User) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, LeaderboardEntry{Rank: i + 1, User: u})
	}
	return entries
}
