// Package archive reads compressed tape archives for the version merger.
// It accepts gzip-compressed, lz4-compressed and plain tar files; the codec
// is sniffed from magic bytes with the file extension as a fallback.
package archive

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// Stats summarizes one archive scan.
type Stats struct {
	Members int   // regular-file members delivered to the callback
	Skipped int   // members skipped due to read errors
	Bytes   int64 // total content bytes delivered
}

// Options controls scanning behavior.
type Options struct {
	// MaxMemberBytes skips members larger than this (0 = no limit).
	MaxMemberBytes int64
	// OnMember is invoked once per visited member, before reading it.
	// Used by callers to drive a progress indicator.
	OnMember func(name string)
}

// Scan opens the archive at path and invokes fn for every regular-file
// member with its sanitized path and full content. Open/parse failures of
// the archive itself are returned as errors; a member that fails to read is
// logged and skipped so the rest of the archive still extracts.
func Scan(path string, opt Options, logger *slog.Logger, fn func(member string, data []byte)) (Stats, error) {
	var st Stats
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return st, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	dec, err := decompressor(f, path)
	if err != nil {
		return st, fmt.Errorf("open archive %s: %w", filepath.Base(path), err)
	}
	if c, ok := dec.(io.Closer); ok {
		defer c.Close()
	}

	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return st, fmt.Errorf("read archive %s: %w", filepath.Base(path), err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name := SanitizePath(hdr.Name)
		if opt.OnMember != nil {
			opt.OnMember(name)
		}
		if opt.MaxMemberBytes > 0 && hdr.Size > opt.MaxMemberBytes {
			logger.Warn("member exceeds size limit, skipped", "member", name, "size", hdr.Size)
			st.Skipped++
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			logger.Warn("member read failed, skipped", "member", name, "error", truncate(err.Error(), 120))
			st.Skipped++
			continue
		}
		st.Members++
		st.Bytes += int64(len(data))
		fn(name, data)
	}
	return st, nil
}

// decompressor wraps r in the codec matching the archive's magic bytes.
// Plain tar streams are passed through unchanged.
func decompressor(r io.Reader, path string) (io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return nil, err
	}
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return gzip.NewReader(br)
	case bytes.HasPrefix(head, lz4Magic):
		return lz4.NewReader(br), nil
	}
	// Magic inconclusive (e.g. truncated header); fall back to the extension.
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".tgz":
		return gzip.NewReader(br)
	case ".lz4":
		return lz4.NewReader(br), nil
	}
	return br, nil
}

// SanitizePath normalizes tar member paths (forward slashes, no drive, no
// leading '/'), and removes '.' and '..' segments without escaping the root.
func SanitizePath(p string) string {
	s := filepath.ToSlash(p)
	if len(s) > 1 && s[1] == ':' {
		s = s[2:]
	}
	s = strings.TrimLeft(s, "/")
	parts := strings.Split(s, "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		if part == ".." {
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
			continue
		}
		stack = append(stack, part)
	}
	s = strings.Join(stack, "/")
	if s == "" {
		return "entry"
	}
	return s
}

// truncate shortens error text for log lines.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
