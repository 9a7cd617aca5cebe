package engine

// Event categories.
const (
	CategoryTurn     = "turn"
	CategoryAction   = "action"
	CategoryAbort    = "abort"
	CategoryDeath    = "death"
	CategoryGameOver = "gameover"
	CategoryLoad     = "load"
)

// Event is a notable occurrence during a match.
type Event struct {
	Tick        uint64 `json:"tick" db:"tick"`
	Turn        uint64 `json:"turn" db:"turn"`
	Category    string `json:"category" db:"category"`
	Description string `json:"description" db:"description"`
}

// CountByCategory tallies events per category.
func CountByCategory(events []Event) map[string]int {
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.Category]++
	}
	return counts
}
