package attendance

import "github.com/scholarhub/backend/core"

// Statuses
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusTardy   = "Tardy"
)

var Statuses = []string{StatusPresent, StatusAbsent, StatusTardy}

type Record struct {
	ID        int    `json:"Id"`
	StudentID int    `json:"studentId"`
	ClassID   int    `json:"classId"`
	Date      string `json:"date"` // YYYY-MM-DD
	Status    string `json:"status"`
}

func (r Record) IsPresent() bool {
	return r.Status == StatusPresent
}

// NewRecord contains information needed to create a new attendance Record.
type NewRecord struct {
	StudentID int    `json:"studentId" validate:"required,gt=0"`
	ClassID   int    `json:"classId" validate:"required,gt=0"`
	Date      string `json:"date" validate:"required,isoday"`
	Status    string `json:"status" validate:"required,attendancestatus"`
}

func (nr *NewRecord) Validate() error {
	nr.Date = core.CleanString(nr.Date)
	nr.Status = core.CleanString(nr.Status)
	return core.Validate.Struct(nr)
}

// UpdateRecord defines what information may be provided to modify an existing Record.
type UpdateRecord struct {
	StudentID *int    `json:"studentId" validate:"omitempty,gt=0"`
	ClassID   *int    `json:"classId" validate:"omitempty,gt=0"`
	Date      *string `json:"date" validate:"omitempty,isoday"`
	Status    *string `json:"status" validate:"omitempty,attendancestatus"`
}

func (ur *UpdateRecord) Validate() error {
	return core.Validate.Struct(ur)
}

// Apply merges the set fields into `r`.
func (ur UpdateRecord) Apply(r Record) Record {
	if ur.StudentID != nil {
		r.StudentID = *ur.StudentID
	}
	if ur.ClassID != nil {
		r.ClassID = *ur.ClassID
	}
	if ur.Date != nil {
		r.Date = *ur.Date
	}
	if ur.Status != nil {
		r.Status = *ur.Status
	}
	return r
}

type QueryFilter struct {
	StudentID int    `query:"student_id"`
	ClassID   int    `query:"class_id"`
	Date      string `query:"date"`
}

// Keep reports whether `r` passes the filter.
func (qf *QueryFilter) Keep(r Record) bool {
	if qf == nil {
		return true
	}
	if qf.StudentID != 0 && r.StudentID != qf.StudentID {
		return false
	}
	if qf.ClassID != 0 && r.ClassID != qf.ClassID {
		return false
	}
	return qf.Date == "" || r.Date == qf.Date
}
