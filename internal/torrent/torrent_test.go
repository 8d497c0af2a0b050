package torrent

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/chrispritchard/torrentmeta/internal/bencode"
	. "github.com/chrispritchard/torrentmeta/internal/torrent_files"
)

func must_marshal(t *testing.T, v any) []byte {
	t.Helper()
	encoded, err := bencode.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	return encoded
}

var (
	v2_root  = bytes.Repeat([]byte{0xbb}, 32)
	v2_layer = append(bytes.Repeat([]byte{0x03}, 32), bytes.Repeat([]byte{0x86}, 32)...)
	v2_info  = map[string]any{
		"file tree": map[string]any{
			"test-file.txt": map[string]any{
				"": map[string]any{"length": 65536, "pieces root": v2_root},
			},
		},
		"meta version": 2,
		"name":         "test-v2-torrent",
		"piece length": 32768,
	}
	v1_info = map[string]any{
		"files": []any{
			map[string]any{"length": 1000, "path": []any{"dir", "a.txt"}},
			map[string]any{"length": 24, "path": []any{"b.txt"}},
		},
		"name":         "myTorrent",
		"piece length": 512,
		"pieces":       bytes.Repeat([]byte{0x5a}, 40),
	}
)

func v2_torrent(t *testing.T) []byte {
	return must_marshal(t, map[string]any{
		"info":         v2_info,
		"piece layers": map[string][]byte{string(v2_root): v2_layer},
	})
}

func v1_torrent(t *testing.T) []byte {
	return must_marshal(t, map[string]any{
		"announce": "http://tracker.example.com/announce",
		"info":     v1_info,
	})
}

func TestClassifyVersion(t *testing.T) {
	tree := bencode.Dictionary(bencode.Dict{})
	tests := []struct {
		name string
		info bencode.Dict
		want Version
	}{
		{name: "pieces only", info: bencode.Dict{"pieces": bencode.String("")}, want: V1},
		{name: "files only", info: bencode.Dict{"files": bencode.List()}, want: V1},
		{name: "length only", info: bencode.Dict{"length": bencode.Int(0)}, want: V1},
		{name: "length that is not an integer", info: bencode.Dict{"length": bencode.String("1"), "file tree": tree}, want: V2},
		{name: "file tree only", info: bencode.Dict{"file tree": tree}, want: V2},
		{name: "both", info: bencode.Dict{"file tree": tree, "pieces": bencode.String("")}, want: Hybrid},
		{name: "neither", info: bencode.Dict{"name": bencode.String("x")}, want: V1},
		{name: "unrelated fields ignored", info: bencode.Dict{"file tree": tree, "name": bencode.String("x"), "private": bencode.Int(1)}, want: V2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyVersion(tt.info); got != tt.want {
				t.Errorf("ClassifyVersion() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		want_err error
	}{
		{name: "empty", input: nil, want_err: ErrNotDict},
		{name: "root is a list", input: []byte("le"), want_err: ErrNotDict},
		{name: "no info", input: []byte("d8:announce3:urle"), want_err: ErrMissingInfo},
		{name: "info is a string", input: []byte("d4:info3:abce"), want_err: bencode.ErrWrongType},
		{name: "malformed", input: []byte("d4:infod"), want_err: bencode.ErrUnterminatedContainer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.input)
			if !errors.Is(err, tt.want_err) {
				t.Errorf("Load() error = %v, want %v", err, tt.want_err)
			}
		})
	}
}

func TestInfoHashes(t *testing.T) {
	v1_encoded := must_marshal(t, v1_info)
	v2_encoded := must_marshal(t, v2_info)
	sha1_hex := func(b []byte) string { h := sha1.Sum(b); return hex.EncodeToString(h[:]) }
	sha256_hex := func(b []byte) string { h := sha256.Sum256(b); return hex.EncodeToString(h[:]) }

	tests := []struct {
		name  string
		input []byte
		want  Hashes
	}{
		{
			name:  "v1",
			input: v1_torrent(t),
			want:  Hashes{InfoHash: sha1_hex(v1_encoded), Version: V1},
		},
		{
			name:  "v2",
			input: v2_torrent(t),
			want:  Hashes{InfoHash: sha1_hex(v2_encoded), InfoHashV2: sha256_hex(v2_encoded), Version: V2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InfoHashes(tt.input)
			if err != nil {
				t.Fatalf("InfoHashes() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("InfoHashes() = %+v, want %+v", got, tt.want)
			}

			v1, err := InfoHash(tt.input)
			if err != nil || v1 != tt.want.InfoHash {
				t.Errorf("InfoHash() = %s, %v, want %s", v1, err, tt.want.InfoHash)
			}
			if tt.want.InfoHashV2 != "" {
				v2, err := InfoHashV2(tt.input)
				if err != nil || v2 != tt.want.InfoHashV2 {
					t.Errorf("InfoHashV2() = %s, %v, want %s", v2, err, tt.want.InfoHashV2)
				}
			}
		})
	}
}

func TestInfoHashIsCanonical(t *testing.T) {
	// same info dict, the second with its keys written out of order
	sorted := []byte("d4:infod6:lengthi3e4:name1:a12:piece lengthi16e6:pieces0:ee")
	reordered := []byte("d4:infod4:name1:a6:lengthi3e6:pieces0:12:piece lengthi16eee")

	want, err := InfoHash(sorted)
	if err != nil {
		t.Fatalf("InfoHash() error = %v", err)
	}
	got, err := InfoHash(reordered)
	if err != nil {
		t.Fatalf("InfoHash() error = %v", err)
	}
	if got != want {
		t.Errorf("InfoHash() = %s for reordered keys, want %s", got, want)
	}
}

func TestParserHashers(t *testing.T) {
	p := Parser{V1Hash: sha256.New}
	m, err := p.Load(v1_torrent(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got, err := m.InfoHash()
	if err != nil {
		t.Fatalf("InfoHash() error = %v", err)
	}
	if len(got) != 64 {
		t.Errorf("InfoHash() with sha256 = %s, want 64 hex chars", got)
	}
}
