package api

import (
	"context"

	"github.com/cheahjs/leangen/internal/imageapi"
)

// Images is the remote image collaborator used by the relay handler.
type Images interface {
	Generate(ctx context.Context, opts imageapi.Options) (*imageapi.Response, error)
	Edit(ctx context.Context, opts imageapi.Options, images []imageapi.File) (*imageapi.Response, error)
}

// GenerateResponse is the body of a successful POST /generate.
type GenerateResponse struct {
	Images []string `json:"images"`
}

type healthResponse struct {
	Status string `json:"status"`
}
