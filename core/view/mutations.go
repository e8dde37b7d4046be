package view

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/core/attendance"
	"github.com/scholarhub/backend/core/grade"
	"github.com/scholarhub/backend/services/metrics"
)

// ScoreInput is the payload of the gradebook cell editor.
type ScoreInput struct {
	StudentID    int     `json:"studentId" validate:"required,gt=0"`
	AssignmentID int     `json:"assignmentId" validate:"required,gt=0"`
	Score        float64 `json:"score" validate:"gte=0"`
}

func (in *ScoreInput) Validate() error {
	return core.Validate.Struct(in)
}

// checkScore rejects scores above the total points of the assignment.
func (v *Views) checkScore(ctx context.Context, assignmentID int, score float64) error {
	a, err := v.svc.Assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return errors.Wrap(err, "getting assignment")
	}
	if score < 0 || score > float64(a.TotalPoints) {
		return core.NewValidationError(nil, core.FieldError{
			Field: "score",
			Error: fmt.Sprintf("must be between 0 and %d", a.TotalPoints),
		})
	}
	return nil
}

// CreateGrade creates a grade after checking the score against the assignment.
func (v *Views) CreateGrade(ctx context.Context, ng grade.NewGrade) (grade.Grade, error) {
	if err := v.checkScore(ctx, ng.AssignmentID, ng.Score); err != nil {
		return grade.Grade{}, err
	}
	g, err := v.svc.Grades.Create(ctx, ng)
	return g, errors.Wrap(err, "creating grade")
}

// SetScore updates the grade of the student for the assignment, or creates it.
func (v *Views) SetScore(ctx context.Context, in ScoreInput) (grade.Grade, error) {
	if err := in.Validate(); err != nil {
		return grade.Grade{}, err
	}

	v.gradeMu.Lock()
	defer v.gradeMu.Unlock()

	g, created, err := v.setScore(ctx, in)
	if err != nil {
		v.logger.Error("Failed to save grade", err, map[string]interface{}{
			"studentId": in.StudentID, "assignmentId": in.AssignmentID,
		})
		return grade.Grade{}, err
	}
	metrics.ObserveUpsert("grade", created)
	v.logger.Info("Grade saved", map[string]interface{}{"id": g.ID, "created": created})
	return g, nil
}

func (v *Views) setScore(ctx context.Context, in ScoreInput) (grade.Grade, bool, error) {
	if err := v.checkScore(ctx, in.AssignmentID, in.Score); err != nil {
		return grade.Grade{}, false, err
	}

	existing, err := v.svc.Grades.Query(ctx, &grade.QueryFilter{StudentID: in.StudentID, AssignmentID: in.AssignmentID})
	if err != nil {
		return grade.Grade{}, false, errors.Wrap(err, "fetching grades")
	}
	if len(existing) > 0 {
		score := in.Score
		g, err := v.svc.Grades.Update(ctx, existing[0].ID, grade.UpdateGrade{Score: &score})
		return g, false, errors.Wrap(err, "updating grade")
	}

	g, err := v.svc.Grades.Create(ctx, grade.NewGrade{StudentID: in.StudentID, AssignmentID: in.AssignmentID, Score: in.Score})
	return g, true, errors.Wrap(err, "creating grade")
}

// Mark sets the attendance status of the student in the class on the day, creating the record if needed.
func (v *Views) Mark(ctx context.Context, nr attendance.NewRecord) (attendance.Record, error) {
	if err := nr.Validate(); err != nil {
		return attendance.Record{}, err
	}

	v.attendanceMu.Lock()
	defer v.attendanceMu.Unlock()

	r, created, err := v.mark(ctx, nr)
	if err != nil {
		v.logger.Error("Failed to save attendance", err, map[string]interface{}{
			"studentId": nr.StudentID, "classId": nr.ClassID, "date": nr.Date,
		})
		return attendance.Record{}, err
	}
	metrics.ObserveUpsert("attendance", created)
	v.logger.Info("Attendance saved", map[string]interface{}{"id": r.ID, "status": r.Status, "created": created})
	return r, nil
}

func (v *Views) mark(ctx context.Context, nr attendance.NewRecord) (attendance.Record, bool, error) {
	existing, err := v.svc.Attendance.Query(ctx, &attendance.QueryFilter{
		StudentID: nr.StudentID, ClassID: nr.ClassID, Date: nr.Date,
	})
	if err != nil {
		return attendance.Record{}, false, errors.Wrap(err, "fetching attendance")
	}
	if len(existing) > 0 {
		status := nr.Status
		r, err := v.svc.Attendance.Update(ctx, existing[0].ID, attendance.UpdateRecord{Status: &status})
		return r, false, errors.Wrap(err, "updating attendance")
	}

	r, err := v.svc.Attendance.Create(ctx, nr)
	return r, true, errors.Wrap(err, "creating attendance")
}
