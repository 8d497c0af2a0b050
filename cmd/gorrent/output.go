package main

import (
	"fmt"
	"io"
	"time"

	. "github.com/chrispritchard/torrentmeta/internal/torrent_files"
)

// describe writes a command result as plain text
func describe(out io.Writer, result any) {
	switch r := result.(type) {
	case TorrentInfo:
		describe_info(out, r)
	case TorrentFileData:
		describe_files(out, r)
	case Hashes:
		fmt.Fprintf(out, "version: %s\n", r.Version)
		fmt.Fprintf(out, "info hash: %s\n", r.InfoHash)
		if r.InfoHashV2 != "" {
			fmt.Fprintf(out, "info hash v2: %s\n", r.InfoHashV2)
		}
	case rebuilt:
		fmt.Fprintf(out, "wrote %s (info hash %s)\n", r.Output, r.InfoHash)
	default:
		fmt.Fprintf(out, "%+v\n", r)
	}
}

func describe_info(out io.Writer, info TorrentInfo) {
	fmt.Fprintf(out, "name: %s\n", info.Name)
	fmt.Fprintf(out, "version: %s\n", info.Version)
	if info.Private != nil {
		fmt.Fprintf(out, "private: %t\n", *info.Private)
	}
	if !info.Created.IsZero() {
		fmt.Fprintf(out, "created: %s\n", info.Created.Format(time.RFC3339))
	}
	if info.CreatedBy != "" {
		fmt.Fprintf(out, "created by: %s\n", info.CreatedBy)
	}
	if info.Comment != "" {
		fmt.Fprintf(out, "comment: %s\n", info.Comment)
	}
	fmt.Fprintf(out, "trackers: %d\n", len(info.Announce))
	for _, a := range info.Announce {
		fmt.Fprintf(out, "\t%s\n", a)
	}
	if len(info.URLList) > 0 {
		fmt.Fprintf(out, "web seeds: %d\n", len(info.URLList))
		for _, u := range info.URLList {
			fmt.Fprintf(out, "\t%s\n", u)
		}
	}
}

func describe_files(out io.Writer, data TorrentFileData) {
	max_width := len(fmt.Sprintf("%d", data.Length))
	for _, f := range data.Files {
		fmt.Fprintf(out, "%*d  %s\n", max_width, f.Length, f.Path)
		if f.PiecesRoot != "" {
			fmt.Fprintf(out, "%*s  pieces root %s\n", max_width, "", f.PiecesRoot)
		}
	}
	fmt.Fprintf(out, "total: %d bytes in %d files\n", data.Length, len(data.Files))
	fmt.Fprintf(out, "piece length: %d (last %d)\n", data.PieceLength, data.LastPieceLength)
	if data.Pieces != nil {
		fmt.Fprintf(out, "v1 pieces: %d\n", len(data.Pieces))
	}
	if data.PieceLayers != nil {
		fmt.Fprintf(out, "v2 piece layers: %d\n", len(data.PieceLayers))
	}
}
