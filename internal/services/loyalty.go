package services

// Loyalty configuration: one point per Rp 10.000 spent, level thresholds in
// ascending order (highest threshold at or below the balance wins).
const PointsPerRupiah = 10000

var levelRules = []struct {
	MinPoints int
	Name      string
}{
	{0, "Bronze"},
	{1000, "Silver"},
	{5000, "Gold"},
}

// PointsForTotal converts a transaction total into earned points.
// Non-positive totals earn nothing.
func PointsForTotal(total float64) int {
	if total <= 0 {
		return 0
	}
	return int(total / PointsPerRupiah)
}

// LevelForPoints derives the member level name from a points balance.
func LevelForPoints(points int) string {
	level := levelRules[0].Name
	for _, rule := range levelRules {
		if points >= rule.MinPoints {
			level = rule.Name
		}
	}
	return level
}
