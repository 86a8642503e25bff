package models

// Team represents a pitch team in the session
type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Context string   `json:"context"`
	Members []string `json:"members"`
	Score   float64  `json:"score"`
}
