package model

import "encoding/json"

// FindPlaceResponse is the findplacefromtext/json payload.
type FindPlaceResponse struct {
	Candidates   []Candidate `json:"candidates"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// Candidate is a single text search hit. Only place_id is requested.
type Candidate struct {
	PlaceID string `json:"place_id"`
}

// DetailsResponse is the details/json payload. Result is kept raw so that
// callers can tell absent fields apart from zero values.
type DetailsResponse struct {
	Result       map[string]json.RawMessage `json:"result"`
	Status       string                     `json:"status"`
	ErrorMessage string                     `json:"error_message,omitempty"`
}

// OpeningHours mirrors the opening_hours sub-document. Pointer and nil-able
// fields distinguish "missing" from "false"/"empty".
type OpeningHours struct {
	OpenNow     *bool    `json:"open_now,omitempty"`
	WeekdayText []string `json:"weekday_text,omitempty"`
	Periods     []Period `json:"periods,omitempty"`
}

// Period is one open/close pair. Close is absent for places open 24/7.
type Period struct {
	Open  DayTime  `json:"open"`
	Close *DayTime `json:"close,omitempty"`
}

// DayTime is a weekday index (Sunday=0) plus an "HHMM" time string.
type DayTime struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}
