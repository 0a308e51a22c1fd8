// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"
)

// Lines delivers lines read from an io.Reader by a background goroutine,
// so the session can wait for input with a timeout.
type Lines struct {
	lines chan string
	done  chan struct{}

	// err is the read error that ended input; written before done closes.
	err error
}

// NewLines starts reading r. The goroutine ends with r.
func NewLines(r io.Reader) *Lines {
	l := &Lines{
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go l.read(bufio.NewReader(r))
	return l
}

func (l *Lines) read(br *bufio.Reader) {
	defer close(l.done)
	for {
		line, err := br.ReadString('\n')
		// A final line without a newline still counts.
		if err == nil || line != "" {
			l.lines <- strings.TrimRight(line, "\r\n")
		}
		if err != nil {
			l.err = err
			return
		}
	}
}

// Poll waits up to timeout for a line. It returns io.EOF once input ended.
func (l *Lines) Poll(ctx context.Context, timeout time.Duration) (string, bool, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case line := <-l.lines:
		return line, true, nil
	case <-l.done:
		return "", false, l.err
	case <-ctx.Done():
		return "", false, ctx.Err()
	case <-t.C:
		return "", false, nil
	}
}

// Await blocks until a line arrives, input ends or ctx is done.
func (l *Lines) Await(ctx context.Context) (string, error) {
	select {
	case line := <-l.lines:
		return line, nil
	case <-l.done:
		return "", l.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
