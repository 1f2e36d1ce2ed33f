package models

// Card is the single aggregate shown on a dashboard card.
type Card struct {
	Source  string  `json:"source"`
	Filter  string  `json:"filter"`
	Field   string  `json:"field"`
	Value   float64 `json:"value"`
	Partial bool    `json:"partial"`
}

// SourceInfo describes one registered metric source.
type SourceInfo struct {
	Name          string      `json:"name"`
	DefaultFields []string    `json:"defaultFields"`
	Policy        FetchPolicy `json:"policy"`
}
