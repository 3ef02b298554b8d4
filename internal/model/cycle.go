package model

import "time"

// CycleReport 单次刷新周期的结果
type CycleReport struct {
	Fetched    int       `json:"fetched"`
	Inserted   int       `json:"inserted"`
	Rescored   int       `json:"rescored"`
	Evicted    int       `json:"evicted"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
}
