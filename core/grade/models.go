package grade

import "github.com/scholarhub/backend/core"

type Grade struct {
	ID            int     `json:"Id"`
	StudentID     int     `json:"studentId"`
	AssignmentID  int     `json:"assignmentId"`
	Score         float64 `json:"score"`
	SubmittedDate string  `json:"submittedDate"`
}

// NewGrade contains information needed to create a new Grade.
type NewGrade struct {
	StudentID    int     `json:"studentId" validate:"required,gt=0"`
	AssignmentID int     `json:"assignmentId" validate:"required,gt=0"`
	Score        float64 `json:"score" validate:"gte=0"`
}

func (ng *NewGrade) Validate() error {
	return core.Validate.Struct(ng)
}

// UpdateGrade defines what information may be provided to modify an existing Grade.
type UpdateGrade struct {
	StudentID     *int     `json:"studentId" validate:"omitempty,gt=0"`
	AssignmentID  *int     `json:"assignmentId" validate:"omitempty,gt=0"`
	Score         *float64 `json:"score" validate:"omitempty,gte=0"`
	SubmittedDate *string  `json:"submittedDate" validate:"omitempty,isoday"`
}

func (ug *UpdateGrade) Validate() error {
	return core.Validate.Struct(ug)
}

// Apply merges the set fields into `g`.
func (ug UpdateGrade) Apply(g Grade) Grade {
	if ug.StudentID != nil {
		g.StudentID = *ug.StudentID
	}
	if ug.AssignmentID != nil {
		g.AssignmentID = *ug.AssignmentID
	}
	if ug.Score != nil {
		g.Score = *ug.Score
	}
	if ug.SubmittedDate != nil {
		g.SubmittedDate = *ug.SubmittedDate
	}
	return g
}

type QueryFilter struct {
	StudentID    int `query:"student_id"`
	AssignmentID int `query:"assignment_id"`
}

// Keep reports whether `g` passes the filter.
func (qf *QueryFilter) Keep(g Grade) bool {
	if qf == nil {
		return true
	}
	if qf.StudentID != 0 && g.StudentID != qf.StudentID {
		return false
	}
	return qf.AssignmentID == 0 || g.AssignmentID == qf.AssignmentID
}

// Scores extracts the scores of `grades`.
func Scores(grades []Grade) []float64 {
	scores := make([]float64, 0, len(grades))
	for _, g := range grades {
		scores = append(scores, g.Score)
	}
	return scores
}
