package torrent

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/chrispritchard/torrentmeta/internal/bencode"
	. "github.com/chrispritchard/torrentmeta/internal/torrent_files"
)

const (
	v1_hash_size = 20
	v2_hash_size = 32
)

// Files lists the torrent's files in on-disk order with their byte offsets, plus the piece hashes.
//
// v2-only torrents are listed from the file tree. v1 and hybrid torrents are listed from the
// files list (or the info dict itself for a single file); a hybrid torrent's pieces roots are
// matched onto that list by relative path, since the v1 list may hold padding files the tree
// does not.
func (m *Metainfo) Files() (TorrentFileData, error) {
	var nil_data TorrentFileData
	info := m.info
	has_v1, has_v2 := markers(info)
	sep := m.parser.separator()

	piece_length, err := optional_int(info, "piece length")
	if err != nil {
		return nil_data, fmt.Errorf("invalid torrent: %w", err)
	}
	if piece_length < 0 {
		return nil_data, fmt.Errorf("invalid torrent: piece length %d: %w", piece_length, ErrNegativeLength)
	}
	name, err := best_name(info)
	if err != nil {
		return nil_data, fmt.Errorf("invalid torrent: %w", err)
	}

	result := TorrentFileData{
		Files:       []TorrentFile{},
		PieceLength: piece_length,
		Version:     ClassifyVersion(info),
	}

	if has_v2 && !has_v1 {
		leaves, err := tree_leaves(info)
		if err != nil {
			return nil_data, err
		}
		var offset int64
		for _, leaf := range leaves {
			parts := append([]string{name}, leaf.path...)
			file := TorrentFile{
				Path:   strings.Join(parts, sep),
				Name:   parts[len(parts)-1],
				Length: leaf.length,
				Offset: offset,
			}
			if leaf.pieces_root != nil {
				file.PiecesRoot = hex.EncodeToString(leaf.pieces_root)
			}
			result.Files = append(result.Files, file)
			offset += leaf.length
		}
	} else {
		files, err := v1_files(info, name, sep)
		if err != nil {
			return nil_data, err
		}
		result.Files = files

		if has_v2 {
			if err := m.attach_pieces_roots(result.Files, name, sep); err != nil {
				return nil_data, err
			}
		}

		pieces, err := optional_bytes(info, "pieces")
		if err != nil {
			return nil_data, fmt.Errorf("invalid torrent: %w", err)
		}
		result.Pieces = split_hex(pieces, v1_hash_size)
	}

	for _, f := range result.Files {
		result.Length += f.Length
	}

	result.LastPieceLength = piece_length
	if n := len(result.Files); n > 0 && piece_length > 0 {
		last := result.Files[n-1]
		if remainder := (last.Offset + last.Length) % piece_length; remainder != 0 {
			result.LastPieceLength = remainder
		}
	}

	if has_v2 && m.root.Has("piece layers") {
		layers, err := m.root.Dict("piece layers")
		if err != nil {
			return nil_data, fmt.Errorf("invalid torrent: %w", err)
		}
		result.PieceLayers = make(map[string][]string, len(layers))
		for _, root := range layers.Keys() {
			hashes, ok := layers[root].AsBytes()
			if !ok {
				m.parser.logger().Debug("skipping piece layer that is not a byte string",
					"pieces_root", hex.EncodeToString([]byte(root)), "kind", layers[root].Kind())
				continue
			}
			result.PieceLayers[hex.EncodeToString([]byte(root))] = split_hex(hashes, v2_hash_size)
		}
	}

	return result, nil
}

func v1_files(info bencode.Dict, name, sep string) ([]TorrentFile, error) {
	entries := []bencode.Value{bencode.Dictionary(info)}
	if info.Has("files") {
		list, err := info.List("files")
		if err != nil {
			return nil, fmt.Errorf("invalid torrent: %w", err)
		}
		entries = list
	}

	file_set := make([]TorrentFile, 0, len(entries))
	var offset int64
	for i, entry := range entries {
		file, ok := entry.AsDict()
		if !ok {
			return nil, fmt.Errorf("invalid torrent: file entry %d is not a valid dictionary", i)
		}
		file_length, err := file.Int("length")
		if err != nil {
			return nil, fmt.Errorf("invalid torrent: file entry %d: %w", i, err)
		}
		if file_length < 0 {
			return nil, fmt.Errorf("invalid torrent: file entry %d length %d: %w", i, file_length, ErrNegativeLength)
		}

		parts := []string{name}
		path_key := "path"
		if file.Has("path.utf-8") {
			path_key = "path.utf-8"
		}
		if file.Has(path_key) {
			path, err := file.List(path_key)
			if err != nil {
				return nil, fmt.Errorf("invalid torrent: file entry %d: %w", i, err)
			}
			segments, err := bencode.Strings(path)
			if err != nil {
				return nil, fmt.Errorf("invalid torrent: file entry %d %s: %w", i, path_key, err)
			}
			parts = append(parts, segments...)
		}

		file_set = append(file_set, TorrentFile{
			Path:   strings.Join(parts, sep),
			Name:   parts[len(parts)-1],
			Length: file_length,
			Offset: offset,
		})
		offset += file_length
	}
	return file_set, nil
}

// attach_pieces_roots fills PiecesRoot on v1 entries whose path, less the torrent name, is a file tree leaf.
func (m *Metainfo) attach_pieces_roots(files []TorrentFile, name, sep string) error {
	leaves, err := tree_leaves(m.info)
	if err != nil {
		return err
	}

	by_path := make(map[string][]byte, len(leaves))
	for _, leaf := range leaves {
		if leaf.pieces_root != nil {
			by_path[strings.Join(leaf.path, sep)] = leaf.pieces_root
		}
	}

	prefix := name + sep
	for i := range files {
		relative := strings.TrimPrefix(files[i].Path, prefix)
		if root, ok := by_path[relative]; ok {
			files[i].PiecesRoot = hex.EncodeToString(root)
		}
	}
	return nil
}

type tree_leaf struct {
	path        []string
	length      int64
	pieces_root []byte
}

func tree_leaves(info bencode.Dict) ([]tree_leaf, error) {
	tree, err := info.Dict("file tree")
	if err != nil {
		return nil, fmt.Errorf("invalid torrent: %w", err)
	}
	return flatten_file_tree(tree)
}

// flatten_file_tree walks a BEP-52 file tree depth first in canonical key order. The empty key
// marks a file at the current path and sorts before every directory name, so a leaf is emitted
// before the subtrees beside it. An explicit stack keeps hostile nesting off the call stack.
func flatten_file_tree(tree bencode.Dict) ([]tree_leaf, error) {
	type frame struct {
		node bencode.Dict
		path []string
	}

	leaves := []tree_leaf{}
	stack := []frame{{node: tree}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		keys := top.node.Keys()
		for i := len(keys) - 1; i >= 0; i-- {
			key := keys[i]
			if key == "" {
				continue
			}
			child, ok := top.node[key].AsDict()
			if !ok {
				return nil, fmt.Errorf("invalid torrent: file tree entry %q is not a dictionary", strings.Join(append(slices.Clone(top.path), key), "/"))
			}
			stack = append(stack, frame{node: child, path: append(slices.Clone(top.path), key)})
		}

		if !top.node.Has("") {
			continue
		}
		leaf, err := parse_leaf(top.node[""], top.path)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, leaf)
	}
	return leaves, nil
}

func parse_leaf(node bencode.Value, path []string) (tree_leaf, error) {
	entry, ok := node.AsDict()
	if !ok {
		return tree_leaf{}, fmt.Errorf("invalid torrent: file tree leaf %q is not a dictionary", strings.Join(path, "/"))
	}
	length, err := entry.Int("length")
	if err != nil {
		return tree_leaf{}, fmt.Errorf("invalid torrent: file tree leaf %q: %w", strings.Join(path, "/"), err)
	}
	if length < 0 {
		return tree_leaf{}, fmt.Errorf("invalid torrent: file tree leaf %q length %d: %w", strings.Join(path, "/"), length, ErrNegativeLength)
	}
	root, err := optional_bytes(entry, "pieces root")
	if err != nil {
		return tree_leaf{}, fmt.Errorf("invalid torrent: file tree leaf %q: %w", strings.Join(path, "/"), err)
	}
	return tree_leaf{path: path, length: length, pieces_root: root}, nil
}

// split_hex cuts buf into size byte chunks, hex-encoding each. A short final chunk is kept.
func split_hex(buf []byte, size int) []string {
	pieces_parsed := make([]string, 0, (len(buf)+size-1)/size)
	for chunk := range slices.Chunk(buf, size) {
		pieces_parsed = append(pieces_parsed, hex.EncodeToString(chunk))
	}
	return pieces_parsed
}
