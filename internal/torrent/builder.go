package torrent

import (
	"encoding/hex"
	"fmt"
	"maps"
	"time"

	"github.com/chrispritchard/torrentmeta/internal/bencode"
)

// EncodeInput holds the application level fields of a .torrent file. Zero fields are left out.
type EncodeInput struct {
	Info      bencode.Dict // passed through, apart from the private flag
	Announce  []string
	URLList   []string
	Private   *bool
	Created   time.Time
	CreatedBy string
	Comment   string
	// raw 32 byte pieces root to the concatenated raw SHA-256 piece hashes
	PieceLayers map[string][]byte
}

// BuildTorrentFile assembles and encodes the top-level dictionary of a .torrent file.
//
// Every announce URL becomes its own announce-list tier, with the first also written to
// announce for v1-only clients. The private flag is written into the info dict as 0 or 1,
// which changes the identity hashes; the caller's Info is not modified.
func BuildTorrentFile(input EncodeInput) ([]byte, error) {
	torrent := bencode.Dict{}

	info := input.Info
	if input.Private != nil {
		info = maps.Clone(info)
		if info == nil {
			info = bencode.Dict{}
		}
		private := int64(0)
		if *input.Private {
			private = 1
		}
		info["private"] = bencode.Int(private)
	}
	if info != nil {
		torrent["info"] = bencode.Dictionary(info)
	}

	if len(input.Announce) > 0 {
		tiers := make([]bencode.Value, len(input.Announce))
		for i, url := range input.Announce {
			tiers[i] = bencode.List(bencode.String(url))
		}
		torrent["announce-list"] = bencode.List(tiers...)
		torrent["announce"] = bencode.String(input.Announce[0])
	}

	if len(input.PieceLayers) > 0 {
		layers := make(bencode.Dict, len(input.PieceLayers))
		for root, hashes := range input.PieceLayers {
			layers[root] = bencode.Bytes(hashes)
		}
		torrent["piece layers"] = bencode.Dictionary(layers)
	}

	if len(input.URLList) > 0 {
		urls := make([]bencode.Value, len(input.URLList))
		for i, url := range input.URLList {
			urls[i] = bencode.String(url)
		}
		torrent["url-list"] = bencode.List(urls...)
	}

	if !input.Created.IsZero() {
		torrent["creation date"] = bencode.Int(input.Created.Unix())
	}
	if input.CreatedBy != "" {
		torrent["created by"] = bencode.String(input.CreatedBy)
	}
	if input.Comment != "" {
		torrent["comment"] = bencode.String(input.Comment)
	}

	return bencode.Encode(bencode.Dictionary(torrent))
}

// RawPieceLayers turns the hex piece layers reported by Files back into builder input.
func RawPieceLayers(layers map[string][]string) (map[string][]byte, error) {
	raw := make(map[string][]byte, len(layers))
	for root_hex, hashes := range layers {
		root, err := hex.DecodeString(root_hex)
		if err != nil {
			return nil, fmt.Errorf("invalid pieces root %q: %w", root_hex, err)
		}
		var joined []byte
		for _, h := range hashes {
			b, err := hex.DecodeString(h)
			if err != nil {
				return nil, fmt.Errorf("invalid piece hash %q in layer %s: %w", h, root_hex, err)
			}
			joined = append(joined, b...)
		}
		raw[string(root)] = joined
	}
	return raw, nil
}

// EncodeInput lifts a loaded torrent back into builder fields, so that it can be written again
// with normalised announce, url-list and private fields.
func (m *Metainfo) EncodeInput() (EncodeInput, error) {
	summary, err := m.Info()
	if err != nil {
		return EncodeInput{}, err
	}

	input := EncodeInput{
		Info:      m.info,
		Announce:  summary.Announce,
		URLList:   summary.URLList,
		Private:   summary.Private,
		Created:   summary.Created,
		CreatedBy: summary.CreatedBy,
		Comment:   summary.Comment,
	}

	if m.root.Has("piece layers") {
		layers, err := m.root.Dict("piece layers")
		if err != nil {
			return EncodeInput{}, fmt.Errorf("invalid torrent: %w", err)
		}
		input.PieceLayers = make(map[string][]byte, len(layers))
		for root, value := range layers {
			if hashes, ok := value.AsBytes(); ok {
				input.PieceLayers[root] = hashes
			}
		}
	}
	return input, nil
}
