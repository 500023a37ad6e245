/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"

	// register decoders for embedded media
	_ "image/gif"
	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"

	// webp sprites are common in imported character packs
	_ "golang.org/x/image/webp"
)

// decodeDataURL extracts the raw bytes and file extension from a
// "data:image/...;base64," URL. ok is false for anything else (plain URLs,
// asset references), which callers record as references instead.
func decodeDataURL(v string) (data []byte, ext string, ok bool) {
	if !strings.HasPrefix(v, "data:image/") {
		return nil, "", false
	}
	rest := strings.TrimPrefix(v, "data:image/")
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return nil, "", false
	}
	ext = rest[:sep]
	if i := strings.Index(ext, "+"); i >= 0 { // e.g. svg+xml
		ext = ext[:i]
	}
	raw, err := base64.StdEncoding.DecodeString(rest[sep+len(";base64,"):])
	if err != nil {
		return nil, "", false
	}
	return raw, ext, true
}

// thumbnailPNG scales img data down so its longest edge is at most maxEdge
// pixels and re-encodes it as PNG. Images already small enough are re-encoded
// unscaled.
func thumbnailPNG(data []byte, maxEdge int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxEdge || h > maxEdge {
		scale := float64(maxEdge) / float64(w)
		if h > w {
			scale = float64(maxEdge) / float64(h)
		}
		dw := int(float64(w) * scale)
		dh := int(float64(h) * scale)
		if dw < 1 {
			dw = 1
		}
		if dh < 1 {
			dh = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
		src = dst
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeName makes a media key safe as an archive member name.
func sanitizeName(s string) string {
	repl := strings.NewReplacer("/", "_", "\\", "_", "..", "_", ":", "_")
	out := repl.Replace(s)
	if out == "" {
		out = "unnamed"
	}
	return out
}
