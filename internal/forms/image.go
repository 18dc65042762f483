package forms

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/pkg/errors"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 5 << 20

const invalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// Image is an uploaded file that decoded as a GIF, PNG or JPEG.
type Image struct {
	FileName string
	Format   string
	Width    int
	Height   int
	Data     []byte
}

func (i *Image) Size() int { return len(i.Data) }

func (i *Image) Reader() io.Reader { return bytes.NewReader(i.Data) }

// readImage returns the uploaded image of field, nil when nothing was
// uploaded, or a validation message.
func readImage(r *http.Request, field string) (*Image, string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to read upload")
	}
	defer file.Close()
	return decodeImage(file, header)
}

func decodeImage(file multipart.File, header *multipart.FileHeader) (*Image, string, error) {
	if header.Size == 0 {
		return nil, "The submitted file is empty.", nil
	}
	if header.Size > MaxImageSize {
		return nil, "The submitted image is larger than 5 MB.", nil
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to read upload")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, invalidImage, nil
	}
	return &Image{
		FileName: header.Filename,
		Format:   format,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Data:     data,
	}, "", nil
}
