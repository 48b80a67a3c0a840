package entity

// Sample is a labeled text as produced by a corpus loader.
type Sample struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// TokenizedSample is a Sample after preprocessing. Tokens may be empty.
type TokenizedSample struct {
	Tokens []string
	Label  string
}
