package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chrispritchard/torrentmeta/internal/torrent"
)

const sample_torrent = "d8:announce31:http://tracker.example/announce4:infod6:lengthi10e4:name5:a.txt12:piece lengthi16384e6:pieces20:aaaaaaaaaaaaaaaaaaaaee"

func TestOutPath(t *testing.T) {
	tests := []struct {
		name   string
		source string
		dir    string
		want   string
	}{
		{name: "alongside", source: filepath.Join("in", "x.torrent"), want: filepath.Join("in", "x.rebuilt.torrent")},
		{name: "no extension", source: "x", want: "x.rebuilt.torrent"},
		{name: "into a directory", source: filepath.Join("in", "x.torrent"), dir: "out", want: filepath.Join("out", "x.torrent")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := out_path(tt.source, tt.dir); got != tt.want {
				t.Errorf("out_path() = %s, want %s", got, tt.want)
			}
		})
	}
}

func write_sample(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(sample_torrent), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestRunHash(t *testing.T) {
	dir := t.TempDir()
	path := write_sample(t, dir, "a.torrent")
	want, err := torrent.InfoHash([]byte(sample_torrent))
	if err != nil {
		t.Fatalf("InfoHash() error = %v", err)
	}

	var out bytes.Buffer
	if failed := run(commands["hash"], []string{path}, &out); failed != 0 {
		t.Fatalf("run() failed %d files, want 0", failed)
	}
	if !strings.Contains(out.String(), "info hash: "+want) {
		t.Errorf("output %q does not contain info hash %s", out.String(), want)
	}
}

func TestRunReportsFailures(t *testing.T) {
	dir := t.TempDir()
	good := write_sample(t, dir, "a.torrent")
	missing := filepath.Join(dir, "missing.torrent")

	var out bytes.Buffer
	if failed := run(commands["info"], []string{missing, good}, &out); failed != 1 {
		t.Errorf("run() failed %d files, want 1", failed)
	}
	if !strings.Contains(out.String(), "name: a.txt") {
		t.Errorf("output %q does not describe the readable torrent", out.String())
	}
}

func TestRebuild(t *testing.T) {
	dir := t.TempDir()
	path := write_sample(t, dir, "a.torrent")

	var out bytes.Buffer
	if failed := run(commands["rebuild"], []string{path}, &out); failed != 0 {
		t.Fatalf("run() failed %d files, want 0", failed)
	}

	data, err := os.ReadFile(filepath.Join(dir, "a.rebuilt.torrent"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	info, err := torrent.Info(data)
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if len(info.Announce) != 1 || info.Announce[0] != "http://tracker.example/announce" {
		t.Errorf("Announce = %v, want the original tracker", info.Announce)
	}

	want, _ := torrent.InfoHash([]byte(sample_torrent))
	got, _ := torrent.InfoHash(data)
	if got != want {
		t.Errorf("rebuilt InfoHash() = %s, want %s", got, want)
	}
}

func TestRebuildReportsWrittenHash(t *testing.T) {
	dir := t.TempDir()
	// private i2e is written back as i1e, which changes the info hash
	source := []byte("d4:infod6:lengthi10e4:name5:a.txt12:piece lengthi16384e6:pieces20:aaaaaaaaaaaaaaaaaaaa7:privatei2eee")
	path := filepath.Join(dir, "p.torrent")
	if err := os.WriteFile(path, source, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	m, err := torrent.Load(source)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	result, err := rebuild(m, path)
	if err != nil {
		t.Fatalf("rebuild() error = %v", err)
	}
	report := result.(rebuilt)

	data, err := os.ReadFile(report.Output)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want, _ := torrent.InfoHash(data)
	if report.InfoHash != want {
		t.Errorf("reported InfoHash = %s, want %s of the written file", report.InfoHash, want)
	}
	if old, _ := torrent.InfoHash(source); report.InfoHash == old {
		t.Errorf("reported InfoHash = %s, the hash of the unnormalised source", report.InfoHash)
	}
}
