package common

import (
	"runtime/debug"
)

// HandlePanic recovers a panic raised inside the named stage and logs it, so the
// remaining stages still run. It must be deferred directly.
func HandlePanic(stage string) {
	if r := recover(); r != nil {
		Logger.Sugar().Errorf("[%s] catch panic: %v \n stack: %s", stage, r, string(debug.Stack()))
	}
}
