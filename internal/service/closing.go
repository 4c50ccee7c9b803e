package service

import (
	"context"
	"strings"
)

// ClosedDayStore persists closed dates.  Insert must ignore duplicates.
type ClosedDayStore interface {
	Insert(ctx context.Context, date string) error
	Exists(ctx context.Context, date string) (bool, error)
	List(ctx context.Context) ([]string, error)
}

type ClosingService struct {
	days     ClosedDayStore
	validate *Validator
}

func NewClosingService(days ClosedDayStore) *ClosingService {
	return &ClosingService{days: days, validate: NewValidator()}
}

// Close marks date unavailable.  Closing the same date twice is a no-op.
func (s *ClosingService) Close(ctx context.Context, date string) error {
	date = strings.TrimSpace(date)
	if err := s.validate.Var("date", date, "required,date"); err != nil {
		return err
	}
	if err := s.days.Insert(ctx, date); err != nil {
		return storageErr("close day", err)
	}
	return nil
}

func (s *ClosingService) IsClosed(ctx context.Context, date string) (bool, error) {
	ok, err := s.days.Exists(ctx, date)
	if err != nil {
		return false, storageErr("closed day lookup", err)
	}
	return ok, nil
}

func (s *ClosingService) List(ctx context.Context) ([]string, error) {
	days, err := s.days.List(ctx)
	if err != nil {
		return nil, storageErr("list closed days", err)
	}
	return days, nil
}
