package service

import (
	"errors"
	"time"

	"github.com/alexanderramin/tempo/internal/repository"
)

// absentOnNotFound turns a repository miss into an explicit absent result.
func absentOnNotFound[T any](v *T, err error) (*T, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
