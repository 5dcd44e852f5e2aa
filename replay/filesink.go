// Package replay implements the replay-sink external port (spec §6): a
// gzipped, append-only, length-delimited event log per game ID, grounded
// on runtime/game/engines/mahjong/persist.go's GamePersister append
// pattern (collect-then-flush-at-close). Records are [seq][length][payload],
// not the wire codec's [type][length][payload] frames (events.EncodeFrame);
// the session layer writes each engine.Event as JSON, and ReadAll is the
// matching reader.
package replay

import (
	"compress/gzip"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileSink writes one gzip file per game under a single owner-only
// directory (spec §6: "a single owner-only directory"), each record
// [4-byte big-endian seq][4-byte big-endian length][payload].
type FileSink struct {
	dir string

	mu    sync.Mutex
	files map[string]*gameFile
}

type gameFile struct {
	f  *os.File
	gz *gzip.Writer
}

func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("replay dir: %w", err)
	}
	return &FileSink{dir: dir, files: make(map[string]*gameFile)}, nil
}

func (s *FileSink) pathFor(gameID string) string {
	return filepath.Join(s.dir, gameID+".replay.gz")
}

func (s *FileSink) open(gameID string) (*gameFile, error) {
	if gf, ok := s.files[gameID]; ok {
		return gf, nil
	}
	f, err := os.OpenFile(s.pathFor(gameID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	gf := &gameFile{f: f, gz: gzip.NewWriter(f)}
	s.files[gameID] = gf
	return gf, nil
}

// Append writes one event's payload, keyed by its sequence number within
// the game so a reader can detect gaps or reordering.
func (s *FileSink) Append(ctx context.Context, gameID string, seq int, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	gf, err := s.open(gameID)
	if err != nil {
		return err
	}
	header := make([]byte, 8)
	binary.BigEndian.PutUint32(header[0:4], uint32(seq))
	binary.BigEndian.PutUint32(header[4:8], uint32(len(payload)))
	if _, err := gf.gz.Write(header); err != nil {
		return err
	}
	_, err = gf.gz.Write(payload)
	return err
}

// Close flushes and closes every still-open game file, used on process
// shutdown.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for id, gf := range s.files {
		if err := gf.gz.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := gf.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.files, id)
	}
	return firstErr
}

// Finalize flushes the gzip stream and closes a single game's replay file
// once the game has ended, dropping it from the open-file table. It does
// not fsync the file.
func (s *FileSink) Finalize(gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	gf, ok := s.files[gameID]
	if !ok {
		return nil
	}
	delete(s.files, gameID)
	if err := gf.gz.Close(); err != nil {
		gf.f.Close()
		return err
	}
	return gf.f.Close()
}

// ReadAll decompresses and returns every raw record payload for gameID,
// in the order they were appended. Nothing in this module calls it yet;
// it is the read side of the record format Append writes.
func ReadAll(dir, gameID string) ([][]byte, error) {
	f, err := os.Open(filepath.Join(dir, gameID+".replay.gz"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	var out [][]byte
	header := make([]byte, 8)
	for {
		if _, err := readFull(gz, header); err != nil {
			break
		}
		n := binary.BigEndian.Uint32(header[4:8])
		payload := make([]byte, n)
		if _, err := readFull(gz, payload); err != nil {
			break
		}
		out = append(out, payload)
	}
	return out, nil
}

func readFull(r interface{ Read([]byte) (int, error) }, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
