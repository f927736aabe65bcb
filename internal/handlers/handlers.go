package handlers

import (
	"github.com/kubev2v/transfer-agent/internal/services"
	"github.com/kubev2v/transfer-agent/pkg/scheduler"
)

type Handler struct {
	transferSrv *services.TransferService
	scheduler   *scheduler.Scheduler
}

func New(transferSrv *services.TransferService, s *scheduler.Scheduler) *Handler {
	return &Handler{
		transferSrv: transferSrv,
		scheduler:   s,
	}
}
