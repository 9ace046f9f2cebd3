package normalize

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/hoadon-ai/extractor/constants"
	"github.com/hoadon-ai/extractor/internal/common"
)

const jpegQuality = 95

// normalizeImage decodes the upload and re-encodes it to a canonical
// transport format: JPEG (quality 95) for JPEG-family sources, lossless PNG
// for everything else. Sources with an alpha channel are flattened onto an
// opaque white background before a lossy re-encode.
func (n *Normalizer) normalizeImage(doc Document) (Result, error) {
	src, err := imaging.Decode(bytes.NewReader(doc.Content))
	if err != nil {
		n.logger.Warn("normalize.image.decode_failed", "name", doc.Name, "error", err)
		return Result{}, common.NewAppError("NORMALIZATION_ERROR", "image decode failed", common.ErrNormalization)
	}

	bounds := src.Bounds()
	toJPEG := constants.IsJPEGFamily(doc.MIMEType)

	if toJPEG && !isOpaque(src) {
		src = flattenOnWhite(src)
	}

	var buf bytes.Buffer
	var outMIME string
	if toJPEG {
		err = imaging.Encode(&buf, src, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
		outMIME = constants.MIMEJPEG
	} else {
		err = imaging.Encode(&buf, src, imaging.PNG)
		outMIME = constants.MIMEPNG
	}
	if err != nil {
		n.logger.Warn("normalize.image.encode_failed", "name", doc.Name, "error", err)
		return Result{}, common.NewAppError("NORMALIZATION_ERROR", "image encode failed", common.ErrNormalization)
	}

	n.logger.Debug("normalize.image.ok",
		"name", doc.Name,
		"mime", outMIME,
		"width", bounds.Dx(),
		"height", bounds.Dy(),
		"bytes", buf.Len(),
	)
	return Result{
		Format:     constants.IMAGE,
		ImageBytes: buf.Bytes(),
		ImageMIME:  outMIME,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
	}, nil
}

func isOpaque(img image.Image) bool {
	type opaquer interface{ Opaque() bool }
	if o, ok := img.(opaquer); ok {
		return o.Opaque()
	}
	return false
}

func flattenOnWhite(img image.Image) image.Image {
	bg := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
	return imaging.OverlayCenter(bg, img, 1.0)
}
