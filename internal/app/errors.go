package service

import (
	"errors"
	"fmt"

	"github.com/okian/nobeldash/internal/adapters/repository"
)

// Sentinel kinds for service errors. ErrNotReady matches repository.ErrNotLoaded.
var (
	ErrNotReady      = fmt.Errorf("dataset not loaded yet: %w", repository.ErrNotLoaded)
	ErrNotExportable = errors.New("view has no table export")
)
