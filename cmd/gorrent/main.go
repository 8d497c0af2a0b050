package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chrispritchard/torrentmeta/internal/bencode"
	"github.com/chrispritchard/torrentmeta/internal/terminal"
	"github.com/chrispritchard/torrentmeta/internal/torrent"
	"github.com/chrispritchard/torrentmeta/internal/util"
)

var (
	verbose bool
	as_json bool
	workers int
	out_dir string
	legacy  bool
)

func vprintfln(format string, a ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", a...)
	}
}

// a command turns one loaded torrent into something printable
type command func(m *torrent.Metainfo, source string) (any, error)

var commands = map[string]command{
	"info":    func(m *torrent.Metainfo, _ string) (any, error) { return m.Info() },
	"files":   func(m *torrent.Metainfo, _ string) (any, error) { return m.Files() },
	"hash":    func(m *torrent.Metainfo, _ string) (any, error) { return m.InfoHashes() },
	"rebuild": rebuild,
}

func main() {
	flag.BoolVar(&verbose, "v", false, "enable verbose output")
	flag.BoolVar(&as_json, "json", false, "print results as JSON")
	flag.IntVar(&workers, "workers", 4, "number of torrent files processed at the same time")
	flag.StringVar(&out_dir, "out", "", "directory for rebuilt torrents (default: alongside each source)")
	flag.BoolVar(&legacy, "legacy", false, "accept non-canonical integers such as i+5e, i007e and i12.5e")
	flag.Parse()

	if len(flag.Args()) < 2 {
		usage()
		os.Exit(1)
	}
	name, files := flag.Arg(0), flag.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", name)
		usage()
		os.Exit(1)
	}

	if !as_json {
		fmt.Print("\033[38;5;153m") // pale blue
	}
	failed := run(cmd, files, os.Stdout)
	if !as_json {
		fmt.Print("\033[0m")
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: gorrent [options] <info|files|hash|rebuild> <torrent-file>...")
	flag.PrintDefaults()
}

func new_parser() torrent.Parser {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return torrent.Parser{
		Decoder: bencode.Decoder{LegacyIntegers: legacy, Logger: logger},
		Logger:  logger,
	}
}

// run applies cmd to every file, printing the results in argument order. It returns the number
// of files that failed.
func run(cmd command, files []string, out io.Writer) int {
	parser := new_parser()

	var progress *terminal.Progress
	if len(files) > 1 && !verbose {
		progress = terminal.NewProgress(len(files), "processing", os.Stderr)
	}

	ops := make([]util.Op[any], len(files))
	for i, path := range files {
		ops[i] = func() (any, error) {
			if progress != nil {
				defer progress.Step()
			}
			return process(parser, cmd, path)
		}
	}
	results, errs := util.Concurrent(ops, workers)
	if progress != nil {
		progress.Close()
	}

	failed := 0
	for i, path := range files {
		if errs[i] != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, errs[i])
			continue
		}
		if err := print_result(out, path, results[i], len(files) > 1); err != nil {
			fmt.Fprintf(os.Stderr, "%s: unable to print result: %v\n", path, err)
			failed++
		}
	}
	return failed
}

func process(parser torrent.Parser, cmd command, path string) (any, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read file at path %s: %w", path, err)
	}
	vprintfln("read %d bytes from %s", len(d), path)

	m, err := parser.Load(d)
	if err != nil {
		return nil, fmt.Errorf("unable to parse torrent file: %w", err)
	}
	vprintfln("parsed %s successfully (%s)", path, m.Version())

	return cmd(m, path)
}

// rebuilt is the result of the rebuild command
type rebuilt struct {
	Source   string `json:"source"`
	Output   string `json:"output"`
	InfoHash string `json:"infoHash"`
}

func rebuild(m *torrent.Metainfo, source string) (any, error) {
	input, err := m.EncodeInput()
	if err != nil {
		return nil, err
	}
	data, err := torrent.BuildTorrentFile(input)
	if err != nil {
		return nil, fmt.Errorf("unable to encode torrent: %w", err)
	}

	target := out_path(source, out_dir)
	if same_file(source, target) {
		return nil, fmt.Errorf("refusing to overwrite the source torrent %s", source)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return nil, fmt.Errorf("unable to write %s: %w", target, err)
	}
	vprintfln("wrote %d bytes to %s", len(data), target)

	// the private flag is normalised on the way out, so the written file can hash differently
	hash, err := torrent.InfoHash(data)
	if err != nil {
		return nil, fmt.Errorf("unable to hash %s: %w", target, err)
	}
	return rebuilt{Source: source, Output: target, InfoHash: hash}, nil
}

// out_path puts the rebuilt torrent in dir under the source's name, or next to the source with a
// .rebuilt.torrent suffix when dir is empty.
func out_path(source, dir string) string {
	if dir != "" {
		return filepath.Join(dir, filepath.Base(source))
	}
	return strings.TrimSuffix(source, ".torrent") + ".rebuilt.torrent"
}

func same_file(a, b string) bool {
	abs_a, err_a := filepath.Abs(a)
	abs_b, err_b := filepath.Abs(b)
	return err_a == nil && err_b == nil && abs_a == abs_b
}

func print_result(out io.Writer, path string, result any, with_header bool) error {
	if as_json {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}
	if with_header {
		fmt.Fprintf(out, "== %s\n", path)
	}
	describe(out, result)
	return nil
}
