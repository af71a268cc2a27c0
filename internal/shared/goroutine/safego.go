// Package goroutine launches background work that must not take the process
// down when it panics.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/scoutystream/scouty/internal/shared/logger"
)

// SafeGo runs fn in a new goroutine and logs, instead of propagating, any panic.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("goroutine panicked",
					"goroutine", name,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)
			}
		}()
		fn()
	}()
}
