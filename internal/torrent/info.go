package torrent

import (
	"fmt"
	"time"

	"github.com/chrispritchard/torrentmeta/internal/bencode"
	. "github.com/chrispritchard/torrentmeta/internal/torrent_files"
)

// Info summarises the descriptive fields of the torrent. Announce and URLList are never nil.
func (m *Metainfo) Info() (TorrentInfo, error) {
	var nil_info TorrentInfo
	root, info := m.root, m.info

	name, err := best_name(info)
	if err != nil {
		return nil_info, fmt.Errorf("invalid torrent: %w", err)
	}
	result := TorrentInfo{
		Name:     name,
		Announce: []string{},
		URLList:  []string{},
		Version:  ClassifyVersion(info),
	}

	if info.Has("private") {
		private, err := info.Int("private")
		if err != nil {
			return nil_info, fmt.Errorf("invalid torrent: %w", err)
		}
		is_private := private != 0
		result.Private = &is_private
	}

	created, err := optional_int(root, "creation date")
	if err != nil {
		return nil_info, fmt.Errorf("invalid torrent: %w", err)
	}
	if created != 0 {
		result.Created = time.Unix(created, 0).UTC()
	}

	if result.CreatedBy, err = optional_text(root, "created by"); err != nil {
		return nil_info, fmt.Errorf("invalid torrent: %w", err)
	}
	if result.Comment, err = optional_text(root, "comment"); err != nil {
		return nil_info, fmt.Errorf("invalid torrent: %w", err)
	}

	if result.Announce, err = announcers(root); err != nil {
		return nil_info, fmt.Errorf("invalid torrent: %w", err)
	}
	if result.URLList, err = web_seeds(root); err != nil {
		return nil_info, fmt.Errorf("invalid torrent: %w", err)
	}

	return result, nil
}

// announcers flattens announce-list in order, falling back to announce when the list is absent
// or empty. Both are missing from metadata fetched from peers.
func announcers(root bencode.Dict) ([]string, error) {
	announce_list, err := root.List("announce-list")
	if err == nil && len(announce_list) > 0 {
		urls := []string{}
		for i, entry := range announce_list {
			group, ok := entry.AsList()
			if !ok {
				return nil, fmt.Errorf("invalid announce-list entry %d: %w", i, bencode.ErrWrongType)
			}
			tier, err := bencode.Strings(group)
			if err != nil {
				return nil, fmt.Errorf("invalid announce-list entry %d: %w", i, err)
			}
			urls = append(urls, tier...)
		}
		return unique(urls), nil
	}

	announce, err := optional_text(root, "announce")
	if err != nil {
		return nil, err
	}
	if announce == "" {
		return []string{}, nil
	}
	return []string{announce}, nil
}

// web_seeds reads url-list, which some producers write as a single string, or an empty one.
func web_seeds(root bencode.Dict) ([]string, error) {
	if !root.Has("url-list") {
		return []string{}, nil
	}

	value := root["url-list"]
	if single, ok := value.AsString(); ok {
		if single == "" {
			return []string{}, nil
		}
		return []string{single}, nil
	}

	list, err := root.List("url-list")
	if err != nil {
		return nil, err
	}
	urls, err := bencode.Strings(list)
	if err != nil {
		return nil, fmt.Errorf("invalid url-list: %w", err)
	}
	return unique(urls), nil
}

// unique drops repeats, keeping the first occurrence of each entry.
func unique(entries []string) []string {
	seen := make(map[string]struct{}, len(entries))
	result := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, exists := seen[e]; exists {
			continue
		}
		seen[e] = struct{}{}
		result = append(result, e)
	}
	return result
}

// best_name prefers name.utf-8 over name.
func best_name(info bencode.Dict) (string, error) {
	if info.Has("name.utf-8") {
		return info.Text("name.utf-8")
	}
	return optional_text(info, "name")
}

func optional_text(d bencode.Dict, key string) (string, error) {
	if !d.Has(key) {
		return "", nil
	}
	return d.Text(key)
}

func optional_int(d bencode.Dict, key string) (int64, error) {
	if !d.Has(key) {
		return 0, nil
	}
	return d.Int(key)
}

func optional_bytes(d bencode.Dict, key string) ([]byte, error) {
	if !d.Has(key) {
		return nil, nil
	}
	return d.Bytes(key)
}
