package profile

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	_ "image/gif"

	"golang.org/x/image/draw"
)

// shrink downscales oversized JPEG and PNG avatars to maxEdge on the
// longer side. Anything it cannot decode or re-encode is stored as
// uploaded; the size cap has already been applied.
func (s *Service) shrink(data []byte) []byte {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	b := src.Bounds()
	edge := b.Dx()
	if b.Dy() > edge {
		edge = b.Dy()
	}
	if s.maxEdge <= 0 || edge <= s.maxEdge {
		return data
	}

	ratio := float64(s.maxEdge) / float64(edge)
	dst := image.NewRGBA(image.Rect(0, 0,
		int(float64(b.Dx())*ratio), int(float64(b.Dy())*ratio)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, nil)
	case "png":
		err = png.Encode(&buf, dst)
	default:
		return data
	}
	if err != nil {
		s.log.Warn().Err(err).Str("format", format).Msg("avatar re-encode failed")
		return data
	}
	return buf.Bytes()
}
