package asset

import (
	"errors"
	"fmt"
)

var (
	ErrAssetNotFound    = errors.New("asset not found")
	ErrTitleRequired    = errors.New("asset title is required")
	ErrNegativePrice    = errors.New("asset price cannot be negative")
	ErrYouTubeIDMissing = errors.New("youtube assets require a video id")
)

func ErrInvalidStatusTransition(from, to Status) error {
	return fmt.Errorf("invalid status transition from %s to %s", from, to)
}
