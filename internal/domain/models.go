package domain

import "time"

// OptionKeys is the fixed alphabet a question's options may use.
var OptionKeys = []string{"a", "b", "c", "d"}

// ValidOptionKey reports whether key belongs to the recognized option alphabet.
func ValidOptionKey(key string) bool {
	for _, k := range OptionKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Question is a single multiple-choice quiz question. Options maps an option
// key (a..d) to its display text; CorrectOption names the winning key. The
// correctOption tag carries omitempty so sanitized listings never leak the
// answer.
type Question struct {
	ID            string            `json:"id"`
	Text          string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectOption string            `json:"correctOption,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// Sanitized returns a copy with the correct option stripped, safe to serve to
// quiz takers.
func (q Question) Sanitized() Question {
	q.CorrectOption = ""
	return q
}

// Submission is a student's finalized quiz attempt. Answers are not stored,
// only the resulting score. Seq is a monotonic insertion sequence used as the
// final tie-break when two submissions share a timestamp.
type Submission struct {
	StudentID   string    `json:"studentId"`
	Score       int       `json:"score"`
	SubmittedAt time.Time `json:"timestamp"`
	Seq         int64     `json:"-"`
}

// LeaderboardEntry is one ranked row of the leaderboard, enriched with the
// student's display name.
type LeaderboardEntry struct {
	StudentID   string    `json:"studentId"`
	Name        string    `json:"name"`
	Score       int       `json:"score"`
	SubmittedAt time.Time `json:"timestamp"`
	Rank        int       `json:"rank"`
}

// Leaderboard is the truncated ranking returned by the status and leaderboard
// queries. StudentRank is 0 when the requester has not submitted.
type Leaderboard struct {
	Entries       []LeaderboardEntry `json:"leaderboard"`
	StudentRank   int                `json:"studentRank"`
	TotalStudents int                `json:"totalStudents"`
}

// Status reports whether a student has completed the quiz; the leaderboard is
// present only when they have.
type Status struct {
	Completed   bool
	Leaderboard *Leaderboard
}

// Completion is the full, untruncated report: every ranked entry plus the
// requester's own name, score and the question count.
type Completion struct {
	Completed      bool               `json:"completed"`
	Entries        []LeaderboardEntry `json:"leaderboard,omitempty"`
	StudentRank    int                `json:"studentRank,omitempty"`
	StudentName    string             `json:"studentName,omitempty"`
	StudentScore   int                `json:"studentScore"`
	TotalQuestions int                `json:"totalQuestions,omitempty"`
}

// UnknownName is substituted when a student id cannot be resolved to a name.
const UnknownName = "Unknown"
