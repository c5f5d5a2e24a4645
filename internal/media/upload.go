package media

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// FormUpload reads the file in the named multipart field of a parsed form.
// It returns nil without error when the field is absent.
func FormUpload(r *http.Request, field string) (*Upload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %v", ErrInvalidImage, err)
	}

	return &Upload{
		Data:        data,
		Filename:    header.Filename,
		ContentType: DetectContentType(header.Header.Get("Content-Type"), data),
	}, nil
}
