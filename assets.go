package stagefx

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/webp"
)

// LoadImage decodes a PNG, JPEG or WebP file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

// LoadImages decodes every path. An image that fails to load is logged and
// left nil, which hides its tile without affecting the intro's timing.
func LoadImages(paths []string) []image.Image {
	imgs := make([]image.Image, len(paths))
	for i, p := range paths {
		img, err := LoadImage(p)
		if err != nil {
			Logger().Warn("intro: image unavailable", "index", i, "path", p, "error", err)
			continue
		}
		imgs[i] = img
	}
	return imgs
}
