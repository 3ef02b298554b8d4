package model

import "time"

type Article struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	URL         string    `gorm:"size:1000;uniqueIndex;not null" json:"url"`
	Title       string    `gorm:"size:500;not null" json:"title"`
	Source      string    `gorm:"size:255" json:"source"`
	PublishedAt time.Time `gorm:"index" json:"published_at"`
	Votes       int       `gorm:"not null;default:0" json:"votes"`
	Score       int       `gorm:"index;not null;default:0" json:"score"`
	InsertedAt  time.Time `gorm:"not null" json:"inserted_at"`
}

// Record 抓取适配器输出的标准化文章记录
type Record struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// VoteResult 投票后的最新票数与分数
type VoteResult struct {
	Votes int `json:"votes"`
	Score int `json:"score"`
}
