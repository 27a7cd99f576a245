//go:build !unix

package service

import (
	"errors"
	"log/slog"
	"time"

	"github.com/harborview/bosun/internal/project"
)

var ErrNotRunning = errors.New("service not running")

var ErrAlreadyRunning = errors.New("service already running")

var errUnsupported = errors.New("service management is only supported on unix platforms")

type Manager struct {
	Root   project.Root
	Shell  string
	Env    []string
	Grace  time.Duration
	Logger *slog.Logger
}

type Status struct {
	Name    string `json:"name"`
	Running bool   `json:"running"`
	PID     int    `json:"pid,omitempty"`
	LogFile string `json:"logFile"`
}

func (m *Manager) Start(name string, svc project.Service) (int, error) {
	return 0, errUnsupported
}

func (m *Manager) Stop(name string) error { return errUnsupported }

func (m *Manager) Status(name string) Status { return Status{Name: name} }

func (m *Manager) LogTail(name string, n int) ([]string, error) {
	return nil, errUnsupported
}
