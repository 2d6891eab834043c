package model

// Symbol pairs an exchange ticker with the company name users ask for.
type Symbol struct {
	Ticker  string `yaml:"ticker" json:"ticker"`
	Company string `yaml:"company" json:"company"`
}
