// internal/raster/raster.go
package raster

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Rasterizer loads logos and converts them to raster image commands
type Rasterizer struct {
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewRasterizer creates a rasterizer whose remote fetches are bounded by timeout
func NewRasterizer(timeout time.Duration, logger *zap.Logger) *Rasterizer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Rasterizer{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger.With(zap.String("component", "rasterizer")),
	}
}

// Load resolves source (URL, data URI or base64) to an image
func (r *Rasterizer) Load(ctx context.Context, source string) (image.Image, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("empty image source")
	}

	var raw []byte
	var err error
	if isRemote(source) {
		fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		raw, err = fetch(fetchCtx, r.client, source)
	} else {
		raw, err = decodeInline(source)
	}
	if err != nil {
		return nil, err
	}
	return decodeImage(raw)
}

// Rasterize returns the GS v 0 command for source scaled to at most maxWidth pixels, or
// nil when the image cannot be loaded.
func (r *Rasterizer) Rasterize(ctx context.Context, source string, maxWidth int) []byte {
	img, err := r.Load(ctx, source)
	if err != nil {
		r.logger.Warn("Logo unavailable", zap.Error(err), zap.Bool("remote", isRemote(source)))
		return nil
	}

	bm := ToBitmap(Scale(img, maxWidth))
	if bm.Width == 0 || bm.Height == 0 {
		r.logger.Warn("Logo has no pixels")
		return nil
	}
	if bm.Height > MaxLogoHeight {
		r.logger.Warn("Logo too tall, cropping",
			zap.Int("height", bm.Height),
			zap.Int("max_height", MaxLogoHeight),
		)
		bm = bm.Crop(MaxLogoHeight)
	}

	r.logger.Debug("Logo rasterized",
		zap.Int("width", bm.Width),
		zap.Int("height", bm.Height),
		zap.Int("bytes", len(bm.Data)),
	)
	return bm.Command()
}
