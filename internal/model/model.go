package model

import "time"

// URLMapping is one row of the urls table. ShortCode lives in the short_url
// column; Clicks is the only field that changes after insert.
type URLMapping struct {
	ID          int64     `db:"id" json:"id"`
	ShortCode   string    `db:"short_url" json:"short_url"`
	OriginalURL string    `db:"original_url" json:"original_url"`
	Clicks      int64     `db:"clicks" json:"clicks"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
