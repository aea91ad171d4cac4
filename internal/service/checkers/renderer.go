package checkers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strconv"
	"strings"

	corecheckers "github.com/park285/cheese-checkers/internal/checkers"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type RenderOptions struct {
	// LastMove is the path of the most recent move, start first.
	LastMove     []corecheckers.Position
	Captured     []corecheckers.Position
	// Selected is the highlighted piece; NoPiece highlights nothing.
	Selected     corecheckers.PieceID
	Destinations []corecheckers.Position
	HUDHeader    string
	HUDTurn      string
	HUDScore     string
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, board *corecheckers.Board, opts RenderOptions) ([]byte, error)
}

type svgBoardRenderer struct {
	squareSize int
}

func NewSVGBoardRenderer() BoardRenderer {
	return &svgBoardRenderer{squareSize: 64}
}

const (
	sideMargin   = 28
	topMargin    = 76
	bottomMargin = 28
	panelHeight  = 28
	panelGap     = 12
	panelRadius  = 10
	panelPadX    = 16
)

var (
	lightSquare       = color.RGBA{240, 217, 181, 255}
	darkSquare        = color.RGBA{120, 84, 58, 255}
	backgroundColor   = color.RGBA{22, 24, 34, 255}
	lastMoveFill      = color.NRGBA{R: 255, G: 228, B: 120, A: 120}
	capturedFill      = color.NRGBA{R: 230, G: 80, B: 70, A: 110}
	selectedFill      = color.NRGBA{R: 120, G: 200, B: 255, A: 150}
	destinationDot    = color.NRGBA{R: 120, G: 220, B: 140, A: 200}
	hudPanelColor     = color.NRGBA{R: 34, G: 38, B: 54, A: 255}
	hudTextPrimary    = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTextSecondary  = color.NRGBA{R: 190, G: 196, B: 222, A: 255}
	coordinateTextClr = color.NRGBA{R: 170, G: 176, B: 200, A: 255}
)

// RenderPNG draws the board with y=0 at the top, matching Board.String.
func (r *svgBoardRenderer) RenderPNG(ctx context.Context, board *corecheckers.Board, opts RenderOptions) ([]byte, error) {
	if board == nil {
		return nil, fmt.Errorf("board is nil")
	}
	sq := r.squareSize
	boardSize := sq * corecheckers.Size
	origin := image.Point{X: sideMargin, Y: topMargin}
	boardRect := image.Rect(origin.X, origin.Y, origin.X+boardSize, origin.Y+boardSize)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img := image.NewRGBA(image.Rect(0, 0, boardSize+sideMargin*2, boardSize+topMargin+bottomMargin))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	drawHUD(img, opts, boardRect)
	drawSquares(img, sq, origin)
	for _, pos := range opts.LastMove {
		drawSquareOverlay(img, pos, sq, origin, lastMoveFill)
	}
	for _, pos := range opts.Captured {
		drawSquareOverlay(img, pos, sq, origin, capturedFill)
	}
	if pos, ok := selectedSquare(board, opts.Selected); ok {
		drawSquareOverlay(img, pos, sq, origin, selectedFill)
	}
	if err := drawPieces(img, board, sq, origin); err != nil {
		return nil, err
	}
	for _, pos := range opts.Destinations {
		rect := squareRect(pos, sq, origin)
		center := image.Pt(rect.Min.X+sq/2, rect.Min.Y+sq/2)
		drawDisc(img, center, sq/6, destinationDot)
	}
	drawCoordinates(img, sq, origin)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// selectedSquare finds the square of a selected piece. A captured piece
// has none.
func selectedSquare(board *corecheckers.Board, id corecheckers.PieceID) (corecheckers.Position, bool) {
	if _, ok := board.Piece(id); !ok {
		return corecheckers.Position{}, false
	}
	return board.FindPosition(id)
}

func drawSquares(dst imagedraw.Image, squareSize int, origin image.Point) {
	for x := 0; x < corecheckers.Size; x++ {
		for y := 0; y < corecheckers.Size; y++ {
			pos := corecheckers.Pos(x, y)
			clr := lightSquare
			if corecheckers.IsPlayableSquare(pos) {
				clr = darkSquare
			}
			imagedraw.Draw(dst, squareRect(pos, squareSize, origin), image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(dst imagedraw.Image, board *corecheckers.Board, squareSize int, origin image.Point) error {
	for x := 0; x < corecheckers.Size; x++ {
		for y := 0; y < corecheckers.Size; y++ {
			pos := corecheckers.Pos(x, y)
			p, ok := board.PieceAt(pos)
			if !ok {
				continue
			}
			pieceImg, err := renderPieceImage(p, squareSize)
			if err != nil {
				return err
			}
			imagedraw.Draw(dst, squareRect(pos, squareSize, origin), pieceImg, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

func drawSquareOverlay(img *image.RGBA, pos corecheckers.Position, squareSize int, origin image.Point, clr color.Color) {
	if img == nil || !corecheckers.IsPlayableSquare(pos) {
		return
	}
	imagedraw.Draw(img, squareRect(pos, squareSize, origin), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func squareRect(pos corecheckers.Position, squareSize int, origin image.Point) image.Rectangle {
	x := origin.X + pos.X*squareSize
	y := origin.Y + pos.Y*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func drawHUD(img *image.RGBA, opts RenderOptions, boardRect image.Rectangle) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Face: face}

	title := strings.TrimSpace(opts.HUDHeader)
	if title == "" {
		title = "Player vs Computer"
	}
	turn := strings.TrimSpace(opts.HUDTurn)
	score := strings.TrimSpace(opts.HUDScore)

	bottom := boardRect.Min.Y - panelGap
	rowTop := bottom - panelHeight
	titleRect := image.Rect(boardRect.Min.X, rowTop-panelGap-panelHeight, boardRect.Max.X, rowTop-panelGap)
	drawRoundedPanel(img, titleRect, panelRadius, hudPanelColor)
	drawCenteredString(drawer, titleRect, truncateWithEllipsis(face, title, titleRect.Dx()-panelPadX*2), hudTextPrimary)

	half := boardRect.Dx() / 2
	if turn != "" {
		rect := image.Rect(boardRect.Min.X, rowTop, boardRect.Min.X+half-panelGap/2, bottom)
		drawRoundedPanel(img, rect, panelRadius, hudPanelColor)
		drawCenteredString(drawer, rect, truncateWithEllipsis(face, turn, rect.Dx()-panelPadX*2), hudTextSecondary)
	}
	if score != "" {
		rect := image.Rect(boardRect.Min.X+half+panelGap/2, rowTop, boardRect.Max.X, bottom)
		drawRoundedPanel(img, rect, panelRadius, hudPanelColor)
		drawCenteredString(drawer, rect, truncateWithEllipsis(face, score, rect.Dx()-panelPadX*2), hudTextSecondary)
	}
}

// drawCoordinates labels columns along the bottom edge and rows along the
// left edge with the raw 0-7 indices used by the API.
func drawCoordinates(dst imagedraw.Image, squareSize int, origin image.Point) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(coordinateTextClr)}
	ascent := face.Metrics().Ascent.Ceil()
	boardEnd := origin.Y + corecheckers.Size*squareSize

	for i := 0; i < corecheckers.Size; i++ {
		label := strconv.Itoa(i)
		center := origin.X + i*squareSize + squareSize/2
		drawCenteredText(drawer, label, center, boardEnd+ascent+4)
		rowCenter := origin.Y + i*squareSize + squareSize/2
		drawCenteredText(drawer, label, origin.X-sideMargin/2, rowCenter+ascent/2)
	}
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	if drawer == nil || text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := rect.Min.X + (rect.Dx()-width)/2
	if x < rect.Min.X {
		x = rect.Min.X
	}
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	if text == "" || maxWidth <= 0 {
		return text
	}
	drawer := font.Drawer{Face: face}
	if drawer.MeasureString(text).Round() <= maxWidth {
		return text
	}
	const ellipsis = "..."
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if rect.Empty() {
		return
	}
	if m := min(rect.Dx(), rect.Dy()) / 2; radius > m {
		radius = m
	}
	fill := image.NewUniform(clr)
	imagedraw.Draw(img, image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Min.X+radius, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Max.X-radius, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	corners := []image.Point{
		{rect.Min.X + radius, rect.Min.Y + radius},
		{rect.Max.X - radius - 1, rect.Min.Y + radius},
		{rect.Min.X + radius, rect.Max.Y - radius - 1},
		{rect.Max.X - radius - 1, rect.Max.Y - radius - 1},
	}
	for _, c := range corners {
		drawQuarterDisc(img, c, radius, clr, rect)
	}
}

// drawQuarterDisc fills the part of the disc that lies in the corner
// outside the already painted cross.
func drawQuarterDisc(img *image.RGBA, center image.Point, radius int, clr color.Color, bounds image.Rectangle) {
	inner := image.Rect(bounds.Min.X+radius, bounds.Min.Y+radius, bounds.Max.X-radius, bounds.Max.Y-radius)
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			p := image.Pt(center.X+dx, center.Y+dy)
			if !p.In(bounds) {
				continue
			}
			if p.X >= inner.Min.X && p.X < inner.Max.X {
				continue
			}
			if p.Y >= inner.Min.Y && p.Y < inner.Max.Y {
				continue
			}
			blendPixel(img, p.X, p.Y, clr)
		}
	}
}

func drawDisc(img *image.RGBA, center image.Point, radius int, clr color.Color) {
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= r2 {
				blendPixel(img, center.X+dx, center.Y+dy, clr)
			}
		}
	}
}

func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	sr, sg, sb, sa := clr.RGBA()
	if sa == 0 {
		return
	}
	dst := img.RGBAAt(x, y)
	inv := 0xffff - sa
	img.SetRGBA(x, y, color.RGBA{
		R: uint8((sr + uint32(dst.R)*0x101*inv/0xffff) >> 8),
		G: uint8((sg + uint32(dst.G)*0x101*inv/0xffff) >> 8),
		B: uint8((sb + uint32(dst.B)*0x101*inv/0xffff) >> 8),
		A: uint8((sa + uint32(dst.A)*0x101*inv/0xffff) >> 8),
	})
}
