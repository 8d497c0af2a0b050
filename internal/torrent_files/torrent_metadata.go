package torrent_files

import "time"

// Version is derived from the info dict on every read, never stored in it.
type Version string

const (
	V1     Version = "v1"
	V2     Version = "v2"
	Hybrid Version = "hybrid"
)

// Hashes holds the hex identity hashes of a torrent. InfoHashV2 is empty for v1 torrents.
type Hashes struct {
	InfoHash   string  `json:"infoHash"`
	InfoHashV2 string  `json:"infoHashV2,omitempty"`
	Version    Version `json:"version"`
}

type TorrentInfo struct {
	Name     string    `json:"name"`
	Announce []string  `json:"announce"`
	Comment  string    `json:"comment,omitempty"`
	Private  *bool     `json:"private,omitempty"` // nil when the info dict has no private key
	Created  time.Time `json:"created,omitzero"`
	// name and version of the program used to create the .torrent
	CreatedBy string   `json:"createdBy,omitempty"`
	URLList   []string `json:"urlList"` // web seeds
	Version   Version  `json:"version"`
}

type TorrentFile struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Length int64  `json:"length"`
	Offset int64  `json:"offset"`
	// hex SHA-256 pieces root, v2 and hybrid only
	PiecesRoot string `json:"piecesRoot,omitempty"`
}

type TorrentFileData struct {
	Length          int64         `json:"length"`
	Files           []TorrentFile `json:"files"`
	PieceLength     int64         `json:"pieceLength"`
	LastPieceLength int64         `json:"lastPieceLength"`
	// hex SHA-1 piece hashes, nil for v2-only torrents
	Pieces []string `json:"pieces,omitempty"`
	// hex pieces root to hex SHA-256 piece hashes, nil unless v2 piece layers are present
	PieceLayers map[string][]string `json:"pieceLayers,omitempty"`
	Version     Version             `json:"version"`
}
