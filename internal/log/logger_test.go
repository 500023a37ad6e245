/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in).Level(); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("CPK_LOG_LEVEL", "debug")
	t.Setenv("CPK_LOG_FORMAT", "json")
	t.Setenv("CPK_LOG_SOURCE", "true")
	t.Setenv("CPK_LOG_FILE", "/tmp/cpk.log")

	opts := FromEnv()
	if opts.Level != "debug" || opts.Format != "json" || !opts.AddSource || opts.File != "/tmp/cpk.log" {
		t.Fatalf("FromEnv wrong: %+v", opts)
	}
}

func TestInitAndHelpers(t *testing.T) {
	Init(Options{Level: "debug", Format: "json"})
	if L() == nil {
		t.Fatalf("default logger nil after Init")
	}
	l := WithOperation(WithComponent("storage"), "open")
	if l == nil {
		t.Fatalf("helper returned nil logger")
	}
	l.Debug("probe")
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := multiHandler(
		slog.NewJSONHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	l := slog.New(h).With(slog.String("component", "test"))

	l.Info("only first")
	l.Error("both")

	countLines := func(buf *bytes.Buffer) int {
		n := 0
		for _, line := range bytes.Split(buf.Bytes(), []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				n++
			}
		}
		return n
	}
	if countLines(&a) != 2 {
		t.Fatalf("first handler lines = %d, want 2", countLines(&a))
	}
	if countLines(&b) != 1 {
		t.Fatalf("second handler lines = %d, want 1", countLines(&b))
	}

	// Attributes added via With must reach every sink.
	var rec map[string]any
	if err := json.Unmarshal(bytes.Split(b.Bytes(), []byte("\n"))[0], &rec); err != nil {
		t.Fatalf("parse record: %v", err)
	}
	if rec["component"] != "test" {
		t.Fatalf("attribute lost in fan-out: %+v", rec)
	}

	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("multi handler must be enabled when any sink is")
	}
}
