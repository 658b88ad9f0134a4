package model

import "time"

const (
	SourceUserFriends = "user-friends"
	SourceUser        = "user"
	SourceDefault     = "default"
)

type Submission struct {
	Title        string `json:"title"`
	Time         string `json:"time"` // HH:mm:ss, UTC
	SubmissionID string `json:"submissionId"`
	TitleSlug    string `json:"titleSlug"`
}

type Totals struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
	Total  int `json:"total"`
}

// Add puts count into the bucket of d and keeps Total equal to the sum of
// the buckets. Unknown difficulties are ignored.
func (t *Totals) Add(d Difficulty, count int) {
	switch d {
	case DifficultyEasy:
		t.Easy += count
	case DifficultyMedium:
		t.Medium += count
	case DifficultyHard:
		t.Hard += count
	default:
		return
	}
	t.Total = t.Easy + t.Medium + t.Hard
}

type UserReport struct {
	Username  string       `json:"username"`
	TodaySubs []Submission `json:"todaySubs"`
	Totals    Totals       `json:"totals"`
	Error     string       `json:"error,omitempty"`
}

type Report struct {
	ID                string       `json:"id"`
	ReportGeneratedAt time.Time    `json:"reportGeneratedAt"`
	Data              []UserReport `json:"data"`
	Source            string       `json:"source,omitempty"`
}
