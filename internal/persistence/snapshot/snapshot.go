// Package snapshot writes zstd-compressed per-turn campaign archives.
//
// A snapshot is a JSON header line followed by the JSON campaign record,
// compressed as one zstd stream.
package snapshot

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/frontline/internal/campaign"
)

// Version is the current snapshot format.
const Version = 1

const ext = ".json.zst"

// ErrNotFound is returned by Latest when a directory holds no snapshots.
var ErrNotFound = errors.New("no snapshot found")

// Header identifies a snapshot without decoding the record.
type Header struct {
	Version    int    `json:"version"`
	CampaignID string `json:"campaign_id"`
	Turn       int    `json:"turn"`
	State      string `json:"state"`
}

// Filename returns the archive name for a turn. Names sort by turn.
func Filename(turn int) string {
	return fmt.Sprintf("turn-%06d%s", turn, ext)
}

// Write stores rec under dir and returns the file path.
func Write(dir string, rec *campaign.Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, Filename(rec.Turn))
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	if err := encode(f, rec); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}

func encode(f *os.File, rec *campaign.Record) error {
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	state, _ := rec.State.MarshalText()
	hb, _ := json.Marshal(Header{
		Version:    Version,
		CampaignID: rec.ID.String(),
		Turn:       rec.Turn,
		State:      string(state),
	})
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(rec); err != nil {
		enc.Close()
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Read decodes a snapshot. The record's theater comes back without terrain.
func Read(path string) (Header, *campaign.Record, error) {
	var hdr Header
	f, err := os.Open(path)
	if err != nil {
		return hdr, nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return hdr, nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return hdr, nil, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &hdr); err != nil {
		return hdr, nil, fmt.Errorf("decode header: %w", err)
	}
	if hdr.Version != Version {
		return hdr, nil, fmt.Errorf("unsupported snapshot version %d", hdr.Version)
	}

	var rec campaign.Record
	if err := json.NewDecoder(br).Decode(&rec); err != nil {
		return hdr, nil, fmt.Errorf("json decode: %w", err)
	}
	return hdr, &rec, nil
}

// List returns the snapshot paths in dir, oldest turn first.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Latest returns the path of the highest-turn snapshot in dir.
func Latest(dir string) (string, error) {
	paths, err := List(dir)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", ErrNotFound
	}
	return paths[len(paths)-1], nil
}
