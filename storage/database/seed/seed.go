// Package seed holds the demo data set loaded in mock mode and by the `seed` admin command.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/scholarhub/backend/core/assignment"
	"github.com/scholarhub/backend/core/attendance"
	"github.com/scholarhub/backend/core/class"
	"github.com/scholarhub/backend/core/grade"
	"github.com/scholarhub/backend/core/student"
)

//go:embed data.json
var raw []byte

type (
	Data struct {
		Students    []student.Student       `json:"students"`
		Classes     []class.Class           `json:"classes"`
		Assignments []assignment.Assignment `json:"assignments"`
		Grades      []grade.Grade           `json:"grades"`
		Attendance  []attendance.Record     `json:"attendance"`
	}

	Repositories struct {
		Students    student.Repository
		Classes     class.Repository
		Assignments assignment.Repository
		Grades      grade.Repository
		Attendance  attendance.Repository
	}

	// Counts reports how many records of each kind were inserted.
	Counts struct {
		Students, Classes, Assignments, Grades, Attendance int
	}
)

// Load decodes the embedded demo data set.
func Load() (Data, error) {
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return Data{}, errors.Wrap(err, "decoding seed data")
	}
	return data, nil
}

// Apply inserts `data` through the repositories. Stores assign new IDs, so every
// foreign key (class members, grade and attendance references) is remapped.
func Apply(ctx context.Context, repos Repositories, data Data) (Counts, error) {
	var counts Counts
	studentIDs := make(map[int]int, len(data.Students))
	for _, s := range data.Students {
		created, err := repos.Students.CreateStudent(ctx, s)
		if err != nil {
			return counts, errors.Wrapf(err, "seeding student %s", s.StudentID)
		}
		studentIDs[s.ID] = created.ID
		counts.Students++
	}

	classIDs := make(map[int]int, len(data.Classes))
	for _, c := range data.Classes {
		members := make([]int, 0, len(c.StudentIDs))
		for _, id := range c.StudentIDs {
			if newID, ok := studentIDs[id]; ok {
				members = append(members, newID)
			}
		}
		c.StudentIDs = members
		created, err := repos.Classes.CreateClass(ctx, c)
		if err != nil {
			return counts, errors.Wrapf(err, "seeding class %s", c.Name)
		}
		classIDs[c.ID] = created.ID
		counts.Classes++
	}

	assignmentIDs := make(map[int]int, len(data.Assignments))
	for _, a := range data.Assignments {
		a.ClassID = classIDs[a.ClassID]
		created, err := repos.Assignments.CreateAssignment(ctx, a)
		if err != nil {
			return counts, errors.Wrapf(err, "seeding assignment %s", a.Name)
		}
		assignmentIDs[a.ID] = created.ID
		counts.Assignments++
	}

	for _, g := range data.Grades {
		g.StudentID = studentIDs[g.StudentID]
		g.AssignmentID = assignmentIDs[g.AssignmentID]
		if _, err := repos.Grades.CreateGrade(ctx, g); err != nil {
			return counts, errors.Wrap(err, "seeding grade")
		}
		counts.Grades++
	}

	for _, r := range data.Attendance {
		r.StudentID = studentIDs[r.StudentID]
		r.ClassID = classIDs[r.ClassID]
		if _, err := repos.Attendance.CreateRecord(ctx, r); err != nil {
			return counts, errors.Wrap(err, "seeding attendance")
		}
		counts.Attendance++
	}
	return counts, nil
}
