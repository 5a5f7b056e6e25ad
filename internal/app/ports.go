package app

import (
	"context"

	"github.com/alexanderramin/tempo/internal/domain"
)

type ReportUseCase interface {
	Report(ctx context.Context, req ReportRequest) (*ReportResponse, error)
}

// TrackTimeUseCase drives the active session and its timer. Finish commits
// the active session as a Session.
type TrackTimeUseCase interface {
	Start(ctx context.Context, projectID string) (*TimerStatus, error)
	Pause(ctx context.Context) (*TimerStatus, error)
	Resume(ctx context.Context) (*TimerStatus, error)
	Status(ctx context.Context) (*TimerStatus, error)
	Finish(ctx context.Context) (*domain.Session, error)
	Reset(ctx context.Context) error
	// OnTick forwards refreshes of the running timer. The returned func
	// unregisters fn.
	OnTick(fn func(seconds int64)) (cancel func())
}
