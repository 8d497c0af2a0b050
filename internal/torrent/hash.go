package torrent

import (
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/chrispritchard/torrentmeta/internal/bencode"
	. "github.com/chrispritchard/torrentmeta/internal/torrent_files"
)

// InfoBytes is the canonical encoding of the info dict, the input to both identity hashes.
// It differs from the raw file bytes when the producer did not sort its keys.
func (m *Metainfo) InfoBytes() ([]byte, error) {
	encoded, err := bencode.Encode(bencode.Dictionary(m.info))
	if err != nil {
		return nil, fmt.Errorf("unable to encode info dict: %w", err)
	}
	return encoded, nil
}

// InfoHash is the hex SHA-1 of the info dict, the identifier used by v1 and hybrid clients.
func (m *Metainfo) InfoHash() (string, error) {
	encoded, err := m.InfoBytes()
	if err != nil {
		return "", err
	}
	return digest(m.parser.v1_hash(), encoded), nil
}

// InfoHashV2 is the hex SHA-256 of the info dict.
func (m *Metainfo) InfoHashV2() (string, error) {
	encoded, err := m.InfoBytes()
	if err != nil {
		return "", err
	}
	return digest(m.parser.v2_hash(), encoded), nil
}

// InfoHashes encodes the info dict once and hashes it both ways, leaving InfoHashV2 empty when
// there is no file tree.
func (m *Metainfo) InfoHashes() (Hashes, error) {
	encoded, err := m.InfoBytes()
	if err != nil {
		return Hashes{}, err
	}

	_, has_v2 := markers(m.info)
	result := Hashes{
		InfoHash: digest(m.parser.v1_hash(), encoded),
		Version:  m.Version(),
	}
	if has_v2 {
		result.InfoHashV2 = digest(m.parser.v2_hash(), encoded)
	}
	return result, nil
}

func digest(h hash.Hash, data []byte) string {
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
