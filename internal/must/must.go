// Package must provides startup-time assertions: failures here are
// configuration/build defects, not request-time conditions, so they log
// and exit rather than propagate an error up a call stack that has no
// sensible way to recover (e.g. an embedded resource that should always
// be present in a correctly built binary).
package must

import (
	"fmt"
	"os"

	"github.com/mallardmetrics/mallard/internal/logger"
)

func Must[T any](r T, err error) func(msg string, args ...any) T {
	return func(msg string, args ...any) T {
		if err != nil {
			logger.Get().Error().Err(err).Msg(fmt.Sprintf(msg, args...))
			os.Exit(1)
		}
		return r
	}
}

func One(err error) func(msg string, args ...any) {
	return func(msg string, args ...any) {
		if err != nil {
			logger.Get().Error().Err(err).Msg(fmt.Sprintf(msg, args...))
			os.Exit(1)
		}
	}
}

func Assert(ok bool) func(msg ...any) {
	return func(msg ...any) {
		if !ok {
			logger.Get().Error().Msg(fmt.Sprint(msg...))
			os.Exit(1)
		}
	}
}

func AssertFMT(ok bool) func(msg string, a ...any) {
	return func(msg string, a ...any) {
		if !ok {
			logger.Get().Error().Msg(fmt.Sprintf(msg, a...))
			os.Exit(1)
		}
	}
}
