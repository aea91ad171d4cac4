package checkers

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	corecheckers "github.com/park285/cheese-checkers/internal/checkers"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

type pieceStyle struct {
	fill   string
	stroke string
	ring   string
}

var pieceStyles = map[corecheckers.Color]pieceStyle{
	corecheckers.Black: {fill: "#26232b", stroke: "#0b0a0d", ring: "#55505e"},
	corecheckers.Red:   {fill: "#c0392b", stroke: "#6e1a12", ring: "#e8776b"},
}

const crownPath = `<path d="M28 62 L28 40 L39 51 L50 33 L61 51 L72 40 L72 62 Z" fill="#f2c94c" stroke="#8a6d1a" stroke-width="2.5"/>`

type pieceCacheKey struct {
	color corecheckers.Color
	king  bool
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func pieceSVG(c corecheckers.Color, king bool) (string, error) {
	style, ok := pieceStyles[c]
	if !ok {
		return "", fmt.Errorf("no piece style for %s", c)
	}
	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100" width="100" height="100">`)
	b.WriteString(`<circle cx="50" cy="54" r="38" fill="#000000" fill-opacity="0.3"/>`)
	fmt.Fprintf(&b, `<circle cx="50" cy="50" r="38" fill="%s" stroke="%s" stroke-width="4"/>`, style.fill, style.stroke)
	fmt.Fprintf(&b, `<circle cx="50" cy="50" r="27" fill="none" stroke="%s" stroke-width="3"/>`, style.ring)
	if king {
		b.WriteString(crownPath)
	}
	b.WriteString(`</svg>`)
	return b.String(), nil
}

func renderPieceImage(p corecheckers.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{color: p.Color, king: p.King, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	src, err := pieceSVG(p.Color, p.King)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}
