// Copyright (c) Microsoft. All rights reserved.

package main

import (
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
)

func newLogger(output io.Writer, level slog.Level) *slog.Logger {
	handler := tint.NewHandler(output, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Value.Kind() == slog.KindAny {
				if _, ok := a.Value.Any().(error); ok {
					return tint.Attr(9, a)
				}
			}
			return a
		},
	})
	return slog.New(handler)
}
