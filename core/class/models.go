package class

import (
	"sort"
	"strconv"
	"strings"

	"github.com/scholarhub/backend/core"
)

type Class struct {
	ID         int    `json:"Id"`
	Name       string `json:"name"`
	Subject    string `json:"subject"`
	Period     string `json:"period"`
	StudentIDs []int  `json:"studentIds"`

	// Tags is kept by the hosted backend only and never exposed by the API.
	Tags string `json:"-"`
}

// HasStudent reports whether the Student is a member of the Class.
func (c Class) HasStudent(studentID int) bool {
	for _, id := range c.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// Size is the number of enrolled students.
func (c Class) Size() int {
	return len(c.StudentIDs)
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Name       string `json:"name" validate:"notblank"`
	Subject    string `json:"subject"`
	Period     string `json:"period"`
	StudentIDs []int  `json:"studentIds" validate:"omitempty,dive,gt=0"`
}

func (nc *NewClass) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Subject = core.CleanString(nc.Subject)
	nc.Period = core.CleanString(nc.Period)
	nc.StudentIDs = UniqueIDs(nc.StudentIDs)
	return core.Validate.Struct(nc)
}

// UpdateClass defines what information may be provided to modify an existing Class.
type UpdateClass struct {
	Name       *string `json:"name" validate:"omitempty,notblank"`
	Subject    *string `json:"subject"`
	Period     *string `json:"period"`
	StudentIDs *[]int  `json:"studentIds" validate:"omitempty,dive,gt=0"`
}

func (uc *UpdateClass) Validate() error {
	for _, s := range []*string{uc.Name, uc.Subject, uc.Period} {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	if uc.StudentIDs != nil {
		ids := UniqueIDs(*uc.StudentIDs)
		uc.StudentIDs = &ids
	}
	return core.Validate.Struct(uc)
}

// Apply merges the set fields into `c`.
func (uc UpdateClass) Apply(c Class) Class {
	if uc.Name != nil {
		c.Name = *uc.Name
	}
	if uc.Subject != nil {
		c.Subject = *uc.Subject
	}
	if uc.Period != nil {
		c.Period = *uc.Period
	}
	if uc.StudentIDs != nil {
		c.StudentIDs = append([]int{}, *uc.StudentIDs...)
	}
	return c
}

// UniqueIDs drops duplicated IDs, keeping the first occurrence order.
func UniqueIDs(ids []int) []int {
	if ids == nil {
		return nil
	}
	seen := make(map[int]struct{}, len(ids))
	unique := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

// ParseStudentIDs parses the comma-separated representation of Class.StudentIDs.
// Non-numeric parts are dropped.
func ParseStudentIDs(s string) []int {
	ids := make([]int, 0)
	if strings.TrimSpace(s) == "" {
		return ids
	}
	for _, part := range strings.Split(s, ",") {
		if id, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// FormatStudentIDs joins Class.StudentIDs with commas.
func FormatStudentIDs(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}

// SortByName sorts classes by name, then ID.
func SortByName(classes []Class) {
	sort.SliceStable(classes, func(i, j int) bool {
		if classes[i].Name == classes[j].Name {
			return classes[i].ID < classes[j].ID
		}
		return classes[i].Name < classes[j].Name
	})
}
