package domain

import "time"

// Bar represents a single OHLC price sample.
// A bar sequence for an instrument is ordered oldest to newest.
type Bar struct {
	Time   time.Time // End time of the interval
	Open   float64   // Opening price
	High   float64   // Highest price
	Low    float64   // Lowest price
	Close  float64   // Closing price
	Volume float64   // Traded volume
}
