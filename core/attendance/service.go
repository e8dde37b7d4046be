package attendance

import (
	"context"
	"errors"
)

var (
	// errors
	ErrNotFound = errors.New("attendance record not found")
)

type (
	Repository interface {
		QueryRecords(ctx context.Context, filter *QueryFilter) ([]Record, error)
		GetRecord(ctx context.Context, id int) (Record, error)
		CreateRecord(ctx context.Context, r Record) (Record, error)
		UpdateRecord(ctx context.Context, r Record) (Record, error)
		DeleteRecord(ctx context.Context, id int) (Record, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nr NewRecord) (Record, error) {
	return svc.repo.CreateRecord(ctx, Record{
		StudentID: nr.StudentID,
		ClassID:   nr.ClassID,
		Date:      nr.Date,
		Status:    nr.Status,
	})
}

func (svc *Service) GetAll(ctx context.Context) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, nil)
}

func (svc *Service) GetByStudentID(ctx context.Context, studentID int) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, &QueryFilter{StudentID: studentID})
}

func (svc *Service) GetByClassID(ctx context.Context, classID int) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, &QueryFilter{ClassID: classID})
}

func (svc *Service) GetByDate(ctx context.Context, date string) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, &QueryFilter{Date: date})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Record, error) {
	return svc.repo.GetRecord(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, ur UpdateRecord) (Record, error) {
	r, err := svc.repo.GetRecord(ctx, id)
	if err != nil {
		return Record{}, err
	}
	return svc.repo.UpdateRecord(ctx, ur.Apply(r))
}

func (svc *Service) Delete(ctx context.Context, id int) (Record, error) {
	return svc.repo.DeleteRecord(ctx, id)
}
