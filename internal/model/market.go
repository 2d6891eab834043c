package model

import "time"

// PricePoint is one stored price sample for a ticker.
type PricePoint struct {
	Symbol string    `json:"symbol"`
	Time   time.Time `json:"timestamp"`
	Price  float64   `json:"price"`
}

// Quote is the latest price reported by a data source.
type Quote struct {
	Symbol string
	Price  float64
	AsOf   time.Time
}
