package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/cheahjs/leangen/internal/upload"
)

const (
	refImagesField = "refImages"
	maxRefImages   = 10
	maxFieldBytes  = 1 << 20
)

// readForm streams a multipart body. Text parts end up in the returned values,
// refImages file parts are spooled into batch in submission order.
func (router *Router) readForm(r *http.Request, batch *upload.Batch) (url.Values, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, newFormError("expected a multipart form body: %v", err)
	}

	form := make(url.Values)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return form, nil
		}
		if err != nil {
			return nil, newFormError("malformed multipart body: %v", err)
		}

		err = router.readPart(part, form, batch)
		part.Close()
		if err != nil {
			return nil, err
		}
	}
}

func (router *Router) readPart(part *multipart.Part, form url.Values, batch *upload.Batch) error {
	name := part.FormName()
	if name == "" {
		return nil
	}

	// An empty file input is submitted as a part without a filename.
	if part.FileName() == "" {
		value, err := readField(name, part)
		if err != nil {
			return err
		}
		form.Add(name, value)
		return nil
	}

	if name != refImagesField {
		return newFormError("unexpected file field %q", name)
	}
	if batch.Len() >= maxRefImages {
		return newFormError("too many reference images: at most %d are allowed", maxRefImages)
	}

	_, err := batch.Save(part.FileName(), part.Header.Get("Content-Type"), part, router.maxUploadBytes)
	return err
}

func readField(name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFieldBytes+1))
	if err != nil {
		return "", newFormError("failed to read field %q: %v", name, err)
	}
	if len(data) > maxFieldBytes {
		return "", newFormError("field %q is too large", name)
	}
	return string(data), nil
}
