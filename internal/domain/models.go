package domain

import "time"

// Villager is the entity of record for a registered program participant.
// QuizScore is nil until the villager completes the entrepreneurship quiz;
// it then holds the latest score even though QuizResult keeps the full log.
type Villager struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Age           int       `json:"age"`
	Gender        string    `json:"gender"`
	Contact       string    `json:"contact"`
	Education     string    `json:"education"`
	Occupation    string    `json:"occupation"`
	Income        int       `json:"income"`
	FamilySize    int       `json:"familySize"`
	Address       string    `json:"address"`
	Skills        string    `json:"skills"`
	Experience    string    `json:"experience"`
	RegisteredAt  time.Time `json:"registeredAt"`
	QuizCompleted bool      `json:"quizCompleted"`
	QuizScore     *int      `json:"quizScore"`
}

// Question is one entry of the fixed quiz bank. Correct is the index into
// Options; Category is a display label and never affects scoring.
type Question struct {
	ID       int      `json:"id"`
	Prompt   string   `json:"question"`
	Options  []string `json:"options"`
	Correct  int      `json:"correct"`
	Category string   `json:"category"`
}

// QuizResult is one completed attempt. The log is append-only; a villager
// re-taking the quiz appends a new result and the summary fields on the
// Villager record are overwritten (last completion wins).
type QuizResult struct {
	VillagerID   string      `json:"villagerId"`
	VillagerName string      `json:"villagerName"`
	Score        int         `json:"score"`
	Answers      map[int]int `json:"answers"`
	CompletedAt  time.Time   `json:"completedAt"`
}

// Candidate joins a villager with their summary quiz score. Derived on every
// read, never persisted.
type Candidate struct {
	Villager     Villager `json:"villager"`
	Score        int      `json:"score"`
	IsAlreadyVLE bool     `json:"isAlreadyVLE"`
}

// SelectionStatus is the approval state of a confirmed VLE.
type SelectionStatus string

const (
	StatusPendingApproval SelectionStatus = "pending-approval"
	StatusApproved        SelectionStatus = "approved"
	StatusRejected        SelectionStatus = "rejected"
)

// Valid reports whether s is a known status value.
func (s SelectionStatus) Valid() bool {
	switch s {
	case StatusPendingApproval, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status may move to next.
// Approval and rejection are terminal.
func (s SelectionStatus) CanTransitionTo(next SelectionStatus) bool {
	return s == StatusPendingApproval && (next == StatusApproved || next == StatusRejected)
}

// VLESelection is a confirmed selection entry: a candidate snapshot taken at
// confirmation time. The persisted set is keyed by villager id.
type VLESelection struct {
	Villager   Villager        `json:"villager"`
	Score      int             `json:"score"`
	SelectedAt time.Time       `json:"selectedAt"`
	Status     SelectionStatus `json:"status"`
}

// ID returns the villager id the entry is keyed by.
func (v VLESelection) ID() string { return v.Villager.ID }

// Analysis is a machine recommendation produced for an uploaded file, either
// by the generative model or by the rule-based fallback.
type Analysis struct {
	Machine string `json:"machine"`
	Reason  string `json:"reason"`
}

// Recommendation records one analysis run for a selected VLE.
type Recommendation struct {
	VLEID      string    `json:"vleId"`
	VLEName    string    `json:"vleName"`
	FileName   string    `json:"fileName"`
	FileType   string    `json:"fileType"`
	FileSize   int64     `json:"fileSize"`
	Machine    string    `json:"machine"`
	Reason     string    `json:"reason"`
	Provider   string    `json:"aiProvider"`
	AnalyzedAt time.Time `json:"analyzedAt"`
}

// Stats is the dashboard summary.
type Stats struct {
	TotalVillagers   int `json:"totalVillagers"`
	CompletedQuizzes int `json:"completedQuizzes"`
	PendingQuizzes   int `json:"pendingQuizzes"`
	SelectedVLEs     int `json:"selectedVLEs"`
	Recommendations  int `json:"aiRecommendations"`
}

// NotificationLevel classifies user-facing notifications.
type NotificationLevel string

const (
	NotifySuccess NotificationLevel = "success"
	NotifyInfo    NotificationLevel = "info"
	NotifyError   NotificationLevel = "error"
)

// Notification is a fire-and-forget message shown to the user.
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
	At      time.Time         `json:"at"`
}
