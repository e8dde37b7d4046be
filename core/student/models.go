package student

import (
	"sort"
	"strings"

	"github.com/scholarhub/backend/core"
)

// Statuses
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

var (
	Statuses = []string{StatusActive, StatusInactive}

	// OrderingFields maps the orderable JSON fields to their column names.
	OrderingFields = map[string]string{
		"Id":             "id",
		"firstName":      "first_name",
		"lastName":       "last_name",
		"email":          "email",
		"grade":          "grade",
		"studentId":      "student_id",
		"enrollmentDate": "enrollment_date",
		"status":         "status",
	}
)

type Student struct {
	ID             int    `json:"Id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Grade          string `json:"grade"`
	StudentID      string `json:"studentId"`
	EnrollmentDate string `json:"enrollmentDate"`
	Status         string `json:"status"`
}

func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

func (s Student) IsActive() bool {
	return s.Status == StatusActive
}

// Matches does a case-insensitive match of `search` on the first name, last name, email or student code.
func (s Student) Matches(search string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(s.FirstName), search) ||
		strings.Contains(strings.ToLower(s.LastName), search) ||
		strings.Contains(strings.ToLower(s.Email), search) ||
		strings.Contains(strings.ToLower(s.StudentID), search)
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	FirstName string `json:"firstName" validate:"notblank"`
	LastName  string `json:"lastName" validate:"notblank"`
	Email     string `json:"email" validate:"notblank,email"`
	Grade     string `json:"grade" validate:"notblank"`
	StudentID string `json:"studentId" validate:"notblank"`
}

func (ns *NewStudent) Validate() error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Grade = core.CleanString(ns.Grade)
	ns.StudentID = core.CleanString(ns.StudentID)
	return core.Validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// nil fields are left untouched.
type UpdateStudent struct {
	FirstName      *string `json:"firstName" validate:"omitempty,notblank"`
	LastName       *string `json:"lastName" validate:"omitempty,notblank"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Grade          *string `json:"grade" validate:"omitempty,notblank"`
	StudentID      *string `json:"studentId" validate:"omitempty,notblank"`
	EnrollmentDate *string `json:"enrollmentDate" validate:"omitempty,isoday"`
	Status         *string `json:"status" validate:"omitempty,studentstatus"`
}

func (us *UpdateStudent) Validate() error {
	cleanPtr(us.FirstName)
	cleanPtr(us.LastName)
	cleanPtr(us.Email, true /* lower */)
	cleanPtr(us.Grade)
	cleanPtr(us.StudentID)
	cleanPtr(us.EnrollmentDate)
	cleanPtr(us.Status)
	return core.Validate.Struct(us)
}

// Apply merges the set fields into `s`.
func (us UpdateStudent) Apply(s Student) Student {
	if us.FirstName != nil {
		s.FirstName = *us.FirstName
	}
	if us.LastName != nil {
		s.LastName = *us.LastName
	}
	if us.Email != nil {
		s.Email = *us.Email
	}
	if us.Grade != nil {
		s.Grade = *us.Grade
	}
	if us.StudentID != nil {
		s.StudentID = *us.StudentID
	}
	if us.EnrollmentDate != nil {
		s.EnrollmentDate = *us.EnrollmentDate
	}
	if us.Status != nil {
		s.Status = *us.Status
	}
	return s
}

type QueryFilter struct {
	Search string `query:"search"`
	Status string `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Status == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status)
}

// Keep reports whether `s` passes the filter.
func (qf *QueryFilter) Keep(s Student) bool {
	if qf == nil {
		return true
	}
	if qf.Status != "" && s.Status != qf.Status {
		return false
	}
	return s.Matches(qf.Search)
}

func cleanPtr(s *string, lower ...bool) {
	if s != nil {
		*s = core.CleanString(*s, lower...)
	}
}

func sortKey(s Student, name string) string {
	switch name {
	case "firstName":
		return strings.ToLower(s.FirstName)
	case "lastName":
		return strings.ToLower(s.LastName)
	case "email":
		return s.Email
	case "grade":
		return s.Grade
	case "studentId":
		return s.StudentID
	case "enrollmentDate":
		return s.EnrollmentDate
	case "status":
		return s.Status
	}
	return ""
}

// Sort applies the orderings in sequence; IDs break the remaining ties.
func Sort(students []Student, ordering []core.DBOrdering) {
	sort.SliceStable(students, func(i, j int) bool {
		a, b := students[i], students[j]
		for _, ord := range ordering {
			var less, greater bool
			if ord.Field == "Id" {
				less, greater = a.ID < b.ID, a.ID > b.ID
			} else {
				fa, fb := sortKey(a, ord.Field), sortKey(b, ord.Field)
				less, greater = fa < fb, fa > fb
			}
			if !less && !greater {
				continue
			}
			if ord.Ascending {
				return less
			}
			return greater
		}
		return a.ID < b.ID
	})
}
