package tui

import (
	"strings"

	"github.com/skip2/go-qrcode"
)

// renderQR draws content as a QR code using half-block characters, two
// modules per character cell. It returns "" if content is empty or cannot be encoded.
func renderQR(content string) string {
	if content == "" {
		return ""
	}
	code, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return ""
	}

	bitmap := code.Bitmap()
	var b strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bottom := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}
