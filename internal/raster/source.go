// internal/raster/source.go
package raster

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	// MaxImageBytes caps downloaded and embedded logos
	MaxImageBytes = 5 << 20

	// MaxImageDimension and MaxImagePixels bound the decoded size. A small
	// compressed file can declare a huge canvas.
	MaxImageDimension = 10000
	MaxImagePixels    = 16_000_000
)

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// decodeInline accepts a data URI or bare base64 payload
func decodeInline(source string) ([]byte, error) {
	payload := strings.TrimSpace(source)
	if strings.HasPrefix(strings.ToLower(payload), "data:") {
		meta, data, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, fmt.Errorf("malformed data URI")
		}
		if !strings.HasSuffix(strings.ToLower(meta), ";base64") {
			return nil, fmt.Errorf("data URI is not base64 encoded")
		}
		payload = data
	}

	payload = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, payload)

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, fmt.Errorf("invalid base64 image: %w", err)
		}
	}
	if len(raw) > MaxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxImageBytes)
	}
	return raw, nil
}

func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build logo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("logo fetch returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read logo: %w", err)
	}
	if len(raw) > MaxImageBytes {
		return nil, fmt.Errorf("logo exceeds %d bytes", MaxImageBytes)
	}
	return raw, nil
}

func decodeImage(raw []byte) (image.Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 ||
		cfg.Width > MaxImageDimension || cfg.Height > MaxImageDimension ||
		cfg.Width*cfg.Height > MaxImagePixels {
		return nil, fmt.Errorf("%s image %dx%d exceeds the %d pixel limit", format, cfg.Width, cfg.Height, MaxImagePixels)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
