// internal/screenshot/compress.go
package screenshot

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// CompressResult reports what a Compress pass did.
type CompressResult struct {
	Scanned    int   `json:"scanned"`
	Rewritten  int   `json:"rewritten"`
	Failed     int   `json:"failed"`
	BytesSaved int64 `json:"bytes_saved"`
}

// Compress re-encodes every PNG under the screenshots root at the best
// compression level. A file is only replaced when the new encoding is
// smaller. Undecodable files are counted as failed and left alone.
func (c *Capturer) Compress() (CompressResult, error) {
	var res CompressResult
	encoder := png.Encoder{CompressionLevel: png.BestCompression}

	err := filepath.WalkDir(c.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == c.root {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".png") {
			return nil
		}
		res.Scanned++

		saved, err := recompress(path, &encoder)
		if err != nil {
			res.Failed++
			c.logger.Warn("Cannot compress screenshot.", zap.String("file", path), zap.Error(err))
			return nil
		}
		if saved > 0 {
			res.Rewritten++
			res.BytesSaved += saved
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("walk %s: %w", c.root, err)
	}

	c.logger.Info("Screenshots compressed.",
		zap.Int("scanned", res.Scanned),
		zap.Int("rewritten", res.Rewritten),
		zap.Int64("bytes_saved", res.BytesSaved),
	)
	return res, nil
}

func recompress(path string, enc *png.Encoder) (int64, error) {
	orig, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	img, err := png.Decode(bytes.NewReader(orig))
	if err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, img); err != nil {
		return 0, fmt.Errorf("encode: %w", err)
	}
	if buf.Len() >= len(orig) {
		return 0, nil
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return 0, err
	}
	return int64(len(orig) - buf.Len()), nil
}
