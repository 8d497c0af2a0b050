package torrent

import (
	"crypto/sha1"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"log/slog"

	"github.com/chrispritchard/torrentmeta/internal/bencode"
	. "github.com/chrispritchard/torrentmeta/internal/torrent_files"
)

// Decodes a torrent file into application friendly structures: identity hashes, file listings and a summary

var (
	ErrNotDict        = errors.New("root is not a dict")
	ErrMissingInfo    = errors.New("no info dict found")
	ErrNegativeLength = errors.New("length can not be negative")
)

// Parser carries the collaborators the interpreter needs. The zero value uses SHA-1, SHA-256,
// a '/' path separator and the strict decoder.
type Parser struct {
	Decoder   bencode.Decoder
	V1Hash    func() hash.Hash
	V2Hash    func() hash.Hash
	Separator string
	Logger    *slog.Logger
}

var default_parser Parser

// Metainfo is a decoded torrent file. Loading once and calling several methods avoids decoding
// the same buffer repeatedly; nothing is cached beyond the decoded document itself.
type Metainfo struct {
	root   bencode.Dict
	info   bencode.Dict
	parser Parser
}

// Load decodes file_data with the default Parser.
func Load(file_data []byte) (*Metainfo, error) {
	return default_parser.Load(file_data)
}

func (p Parser) Load(file_data []byte) (*Metainfo, error) {
	decoded, err := p.Decoder.Decode(file_data)
	if err != nil {
		return nil, fmt.Errorf("invalid torrent: %w", err)
	}

	root, ok := decoded.AsDict()
	if !ok {
		return nil, fmt.Errorf("invalid torrent: %w", ErrNotDict)
	}

	info, err := root.Dict("info")
	if err != nil {
		return nil, fmt.Errorf("invalid torrent: %w: %w", ErrMissingInfo, err)
	}

	return &Metainfo{root: root, info: info, parser: p}, nil
}

func (p Parser) v1_hash() hash.Hash {
	if p.V1Hash != nil {
		return p.V1Hash()
	}
	return sha1.New()
}

func (p Parser) v2_hash() hash.Hash {
	if p.V2Hash != nil {
		return p.V2Hash()
	}
	return sha256.New()
}

func (p Parser) separator() string {
	if p.Separator != "" {
		return p.Separator
	}
	return "/"
}

func (p Parser) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Root is the decoded top-level dictionary. Callers must not modify it.
func (m *Metainfo) Root() bencode.Dict {
	return m.root
}

// InfoDict is the decoded info dictionary. Callers must not modify it.
func (m *Metainfo) InfoDict() bencode.Dict {
	return m.info
}

func (m *Metainfo) Version() Version {
	return ClassifyVersion(m.info)
}

// ClassifyVersion depends only on which v1 and v2 marker keys the info dict carries.
func ClassifyVersion(info bencode.Dict) Version {
	has_v1, has_v2 := markers(info)
	switch {
	case has_v1 && has_v2:
		return Hybrid
	case has_v2:
		return V2
	}
	return V1
}

func markers(info bencode.Dict) (has_v1, has_v2 bool) {
	_, length_err := info.Int("length")
	has_v1 = info.Has("pieces") || info.Has("files") || length_err == nil
	has_v2 = info.Has("file tree")
	return has_v1, has_v2
}

func InfoHash(file_data []byte) (string, error) {
	m, err := Load(file_data)
	if err != nil {
		return "", err
	}
	return m.InfoHash()
}

func InfoHashV2(file_data []byte) (string, error) {
	m, err := Load(file_data)
	if err != nil {
		return "", err
	}
	return m.InfoHashV2()
}

func InfoHashes(file_data []byte) (Hashes, error) {
	m, err := Load(file_data)
	if err != nil {
		return Hashes{}, err
	}
	return m.InfoHashes()
}

func Files(file_data []byte) (TorrentFileData, error) {
	m, err := Load(file_data)
	if err != nil {
		return TorrentFileData{}, err
	}
	return m.Files()
}

func Info(file_data []byte) (TorrentInfo, error) {
	m, err := Load(file_data)
	if err != nil {
		return TorrentInfo{}, err
	}
	return m.Info()
}
