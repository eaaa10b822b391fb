// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"log/slog"
	"strings"

	af "github.com/agentloop/agentloop-go/agentloop"
)

const (
	sseDataPrefix = "data:"
	sseDone       = "[DONE]"
)

// sseDecoder turns a server-sent event body into decoded chunks. Lines may
// be split across reads in any way; the bufio.Reader carries the incomplete
// tail over to the next read.
type sseDecoder struct {
	r *bufio.Reader
}

func newSSEDecoder(r io.Reader) *sseDecoder {
	return &sseDecoder{r: bufio.NewReader(r)}
}

// chunks returns a lazy, single-use sequence of decoded chunks. It ends at
// the [DONE] sentinel or at end of body. Bytes after the last line break
// are discarded. Frames whose payload is not valid JSON are skipped. A read
// failure ends the sequence with an [af.TransportError].
func (d *sseDecoder) chunks(ctx context.Context) iter.Seq2[*chatCompletionChunk, error] {
	return func(yield func(*chatCompletionChunk, error) bool) {
		for {
			line, err := d.r.ReadString('\n')
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(nil, &af.TransportError{Op: "read stream", Err: err})
				}
				return
			}

			payload, ok := ssePayload(line)
			if !ok {
				continue
			}
			if payload == sseDone {
				return
			}

			var chunk chatCompletionChunk
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				slog.DebugContext(ctx, "skipping malformed stream frame", "error", err)
				continue
			}
			if !yield(&chunk, nil) {
				return
			}
		}
	}
}

// ssePayload extracts the payload of a data line. ok is false for blank
// lines, comments, and other event fields.
func ssePayload(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	rest, ok := strings.CutPrefix(line, sseDataPrefix)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(rest), true
}
