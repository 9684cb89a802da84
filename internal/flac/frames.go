package flac

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// ScanFrames counts frame-header sync candidates in the audio-data region.
// The 15-bit sync pattern (0xFF followed by 0b1111100x) can also occur inside
// compressed payloads, so the count is an upper bound on the real frame
// count, never an exact accounting. Callers use it for one-sided consistency
// checks only.
func ScanFrames(r io.Reader) (int, error) {
	br := bufio.NewReaderSize(r, 64<<10)
	count := 0
	prev := byte(0)
	havePrev := false
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return count, nil
			}
			return count, fmt.Errorf("scan frames: %w", err)
		}
		if havePrev && prev == 0xFF && b&0xFE == 0xF8 {
			count++
		}
		prev = b
		havePrev = true
	}
}

// ScanFramesFile scans path starting at audioOffset.
func ScanFramesFile(path string, audioOffset int64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open for frame scan: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(audioOffset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek to audio region: %w", err)
	}
	return ScanFrames(f)
}
