package models

import "time"

// NumberRecord is one generated number. Rows are immutable once inserted.
type NumberRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

// Stats aggregates a user's generation history.
type Stats struct {
	TotalNumbersGenerated int `json:"totalNumbersGenerated"`
	BestNumber            int `json:"bestNumber"`
}

// NumberPage is one page of a user's history, newest first.
type NumberPage struct {
	Numbers    []NumberRecord `json:"numbers"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	Next       *string        `json:"next"`
}
