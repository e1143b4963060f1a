package model

// Settings is the singleton user preference record. Saving replaces it
// wholesale.
type Settings struct {
	APIKey             string `json:"apiKey"`
	CelebrationEnabled bool   `json:"celebrationEnabled"`
}
