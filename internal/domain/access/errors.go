package access

import "errors"

var (
	ErrUserIDRequired  = errors.New("user ID is required")
	ErrAssetIDRequired = errors.New("asset ID is required")
	ErrInvalidSource   = errors.New("invalid grant source")
	ErrGrantNotFound   = errors.New("access grant not found")
)
