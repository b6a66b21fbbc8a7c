package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Options controls one Tail call. A negative Offset asks for the trailing
// Lines of the file; a non-negative Offset resumes where a previous call
// left off. With Follow set, a read that produced nothing polls the file
// for up to Wait before returning.
type Options struct {
	Offset int64
	Lines  int
	Follow bool
	Wait   time.Duration
}

// Chunk is one Tail read. Offset points just past the last consumed byte
// and feeds the next call.
type Chunk struct {
	Lines  []string
	Offset int64
}

const (
	pollInterval = 250 * time.Millisecond
	maxLineBytes = 1 << 20
)

// Tail reads the daemon log at path. A missing file is not an error, the
// daemon may simply not have logged anything yet.
func Tail(ctx context.Context, path string, opts Options) (Chunk, error) {
	if opts.Wait < 0 {
		opts.Wait = 0
	}

	var (
		chunk Chunk
		err   error
	)
	if opts.Offset < 0 {
		chunk, err = tailEnd(path, opts.Lines)
	} else {
		chunk, err = readFrom(path, opts.Offset)
	}
	if err != nil {
		return chunk, err
	}
	if opts.Follow && opts.Wait > 0 && len(chunk.Lines) == 0 {
		return poll(ctx, path, chunk.Offset, opts.Wait)
	}
	return chunk, nil
}

// tailEnd scans the whole file keeping only the last limit lines. Log files
// here are rotated by size, so a single forward pass with a bounded window
// is cheap enough.
func tailEnd(path string, limit int) (Chunk, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Chunk{}, nil
		}
		return Chunk{}, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Chunk{}, fmt.Errorf("stat log: %w", err)
	}
	if info.IsDir() {
		return Chunk{}, fmt.Errorf("log path %s is a directory", path)
	}
	chunk := Chunk{Offset: info.Size()}
	if limit <= 0 {
		return chunk, nil
	}

	scanner := newLineScanner(file)
	for scanner.Scan() {
		chunk.Lines = append(chunk.Lines, scanner.Text())
		if len(chunk.Lines) > limit {
			copy(chunk.Lines, chunk.Lines[1:])
			chunk.Lines = chunk.Lines[:limit]
		}
	}
	if err := scanner.Err(); err != nil {
		return Chunk{}, fmt.Errorf("scan log: %w", err)
	}
	return chunk, nil
}

// readFrom returns every full line written at or after offset. A rotated or
// truncated file invalidates the caller's offset, so anything past the
// current size clamps to the end.
func readFrom(path string, offset int64) (Chunk, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Chunk{}, nil
		}
		return Chunk{}, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Chunk{}, fmt.Errorf("stat log: %w", err)
	}
	if offset > info.Size() {
		offset = info.Size()
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return Chunk{}, fmt.Errorf("seek log: %w", err)
	}

	chunk := Chunk{Offset: offset}
	scanner := newLineScanner(file)
	for scanner.Scan() {
		chunk.Lines = append(chunk.Lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Chunk{}, fmt.Errorf("scan log: %w", err)
	}
	end, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return Chunk{}, fmt.Errorf("seek log: %w", err)
	}
	chunk.Offset = end
	return chunk, nil
}

func poll(ctx context.Context, path string, offset int64, wait time.Duration) (Chunk, error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		chunk, err := readFrom(path, offset)
		if err != nil || len(chunk.Lines) > 0 {
			return chunk, err
		}
		offset = chunk.Offset
		if time.Now().After(deadline) {
			return chunk, nil
		}
		select {
		case <-ctx.Done():
			return chunk, ctx.Err()
		case <-ticker.C:
		}
	}
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return sc
}
