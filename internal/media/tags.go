// Package media reads display tags from FLAC files. The healthy-file path
// goes through a dedicated tag library; files it cannot read fall back to the
// fields the native container parser recovered, so a corrupt tag block never
// hides the rest of the metadata.
package media

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"flackit/internal/flac"
)

// ErrCorrupt marks metadata the tag reader rejected. The file itself was
// readable; the distinction matters because an I/O failure should abort the
// file while corrupt tags are merely a degraded report.
var ErrCorrupt = errors.New("unreadable tag metadata")

// Tags is the display subset of a track's metadata.
type Tags struct {
	Title      string `json:"title,omitempty"`
	Artist     string `json:"artist,omitempty"`
	Album      string `json:"album,omitempty"`
	Year       int    `json:"year,omitempty"`
	Track      int    `json:"track,omitempty"`
	TrackTotal int    `json:"track_total,omitempty"`
}

// Empty reports whether no field is set.
func (t Tags) Empty() bool { return t == Tags{} }

// ReadTags extracts display tags from the file at path. I/O errors are
// returned as-is; parse failures come back wrapped in ErrCorrupt.
func ReadTags(path string) (Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tags{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Tags{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	track, total := m.Track()
	return Tags{
		Title:      m.Title(),
		Artist:     m.Artist(),
		Album:      m.Album(),
		Year:       m.Year(),
		Track:      track,
		TrackTotal: total,
	}, nil
}

// FromComment builds tags from an already-parsed VORBIS_COMMENT block, the
// fallback when ReadTags reports ErrCorrupt but the native parser recovered
// the block. Field names are case-insensitive per the tag format.
func FromComment(vc *flac.VorbisComment) Tags {
	var t Tags
	if vc == nil {
		return t
	}
	for _, field := range vc.Fields {
		name, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch strings.ToUpper(name) {
		case "TITLE":
			t.Title = value
		case "ARTIST":
			t.Artist = value
		case "ALBUM":
			t.Album = value
		case "DATE":
			if year, err := strconv.Atoi(yearPrefix(value)); err == nil {
				t.Year = year
			}
		case "TRACKNUMBER":
			num, total, _ := strings.Cut(value, "/")
			if n, err := strconv.Atoi(strings.TrimSpace(num)); err == nil {
				t.Track = n
			}
			if n, err := strconv.Atoi(strings.TrimSpace(total)); err == nil {
				t.TrackTotal = n
			}
		case "TRACKTOTAL", "TOTALTRACKS":
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				t.TrackTotal = n
			}
		}
	}
	return t
}

// yearPrefix trims "2023-05-01" style dates down to the year digits.
func yearPrefix(date string) string {
	date = strings.TrimSpace(date)
	if len(date) > 4 {
		date = date[:4]
	}
	return date
}
