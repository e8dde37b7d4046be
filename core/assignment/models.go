package assignment

import "github.com/scholarhub/backend/core"

type Assignment struct {
	ID          int    `json:"Id"`
	Name        string `json:"name"`
	ClassID     int    `json:"classId"`
	TotalPoints int    `json:"totalPoints"`
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Name        string `json:"name" validate:"notblank"`
	ClassID     int    `json:"classId" validate:"required,gt=0"`
	TotalPoints int    `json:"totalPoints" validate:"required,gt=0"`
}

func (na *NewAssignment) Validate() error {
	na.Name = core.CleanString(na.Name)
	return core.Validate.Struct(na)
}

// UpdateAssignment defines what information may be provided to modify an existing Assignment.
type UpdateAssignment struct {
	Name        *string `json:"name" validate:"omitempty,notblank"`
	ClassID     *int    `json:"classId" validate:"omitempty,gt=0"`
	TotalPoints *int    `json:"totalPoints" validate:"omitempty,gt=0"`
}

func (ua *UpdateAssignment) Validate() error {
	if ua.Name != nil {
		*ua.Name = core.CleanString(*ua.Name)
	}
	return core.Validate.Struct(ua)
}

// Apply merges the set fields into `a`.
func (ua UpdateAssignment) Apply(a Assignment) Assignment {
	if ua.Name != nil {
		a.Name = *ua.Name
	}
	if ua.ClassID != nil {
		a.ClassID = *ua.ClassID
	}
	if ua.TotalPoints != nil {
		a.TotalPoints = *ua.TotalPoints
	}
	return a
}

type QueryFilter struct {
	ClassID int `query:"class_id"`
}

// Keep reports whether `a` passes the filter.
func (qf *QueryFilter) Keep(a Assignment) bool {
	return qf == nil || qf.ClassID == 0 || a.ClassID == qf.ClassID
}
