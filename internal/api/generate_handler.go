package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/hlog"
	"golang.org/x/sync/errgroup"

	"github.com/cheahjs/leangen/internal/imageapi"
	"github.com/cheahjs/leangen/internal/upload"
)

func (router *Router) generateHandler(w http.ResponseWriter, r *http.Request) {
	batch := router.spool.NewBatch()
	defer batch.Release()

	form, err := router.readForm(r, batch)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	opts, err := buildOptions(router.model, form)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	// An issued remote call runs to completion even if the browser goes away.
	ctx := context.WithoutCancel(r.Context())
	logger := hlog.FromRequest(r)

	var resp *imageapi.Response
	if batch.Len() > 0 {
		images, err := wrapImages(batch)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		logger.Info().Int("images", len(images)).Int("n", opts.N).Str("size", opts.Size).Msg("Editing with reference images")
		resp, err = router.images.Edit(ctx, opts, images)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
	} else {
		logger.Info().Int("n", opts.N).Str("size", opts.Size).Msg("Generating from prompt")
		resp, err = router.images.Generate(ctx, opts)
		if err != nil {
			respondWithError(w, r, err)
			return
		}
	}

	respondWithJSON(w, r, http.StatusOK, convertResponse(resp, opts.OutputFormat))
}

// wrapImages opens every spooled file concurrently and returns them in the
// order they were submitted.
func wrapImages(batch *upload.Batch) ([]imageapi.File, error) {
	files := batch.Files()
	images := make([]imageapi.File, len(files))

	var g errgroup.Group
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			rf, err := batch.Open(f)
			if err != nil {
				return err
			}
			contentType := f.ContentType
			if contentType == "" || contentType == "application/octet-stream" {
				if contentType, err = sniffContentType(rf); err != nil {
					return fmt.Errorf("%s: %w", f.Name, err)
				}
			}
			images[i] = imageapi.File{Name: f.Name, ContentType: contentType, Content: rf}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func sniffContentType(rs io.ReadSeeker) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(rs, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}
	return http.DetectContentType(head[:n]), nil
}

func convertResponse(resp *imageapi.Response, outputFormat string) GenerateResponse {
	prefix := "data:image/" + mimeSubtype(outputFormat) + ";base64,"
	out := GenerateResponse{Images: make([]string, 0, len(resp.Data))}
	for _, img := range resp.Data {
		out.Images = append(out.Images, prefix+img.B64JSON)
	}
	return out
}
