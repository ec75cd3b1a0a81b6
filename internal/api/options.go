package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/cheahjs/leangen/internal/imageapi"
)

const (
	// autoValue means "leave the option out and let the remote choose",
	// which is not the same as sending the literal "auto".
	autoValue   = "auto"
	defaultSize = "auto"
	defaultMime = "png"
)

// optionalField describes a form field that is only forwarded when include
// accepts the submitted value.
type optionalField struct {
	name    string
	include func(value string) bool
	apply   func(opts *imageapi.Options, value string) error
}

var optionalFields = []optionalField{
	{"background", notAuto, func(o *imageapi.Options, v string) error { o.Background = v; return nil }},
	{"moderation", notAuto, func(o *imageapi.Options, v string) error { o.Moderation = v; return nil }},
	{"quality", notAuto, func(o *imageapi.Options, v string) error { o.Quality = v; return nil }},
	{"output_format", nonEmpty, func(o *imageapi.Options, v string) error { o.OutputFormat = v; return nil }},
	{"output_compression", nonEmpty, applyCompression},
}

func notAuto(v string) bool  { return v != "" && v != autoValue }
func nonEmpty(v string) bool { return v != "" }

func applyCompression(o *imageapi.Options, v string) error {
	c, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return newFormError("output_compression must be an integer, got %q", v)
	}
	o.OutputCompression = &c
	return nil
}

// buildOptions normalizes the submitted form into the option set for the
// remote call.
func buildOptions(model string, form url.Values) (imageapi.Options, error) {
	opts := imageapi.Options{
		Model:  model,
		Prompt: form.Get("prompt"),
		N:      parseCount(form.Get("n")),
		Size:   form.Get("size"),
	}
	if opts.Size == "" {
		opts.Size = defaultSize
	}

	for _, field := range optionalFields {
		values, ok := form[field.name]
		if !ok || len(values) == 0 || !field.include(values[0]) {
			continue
		}
		if err := field.apply(&opts, values[0]); err != nil {
			return imageapi.Options{}, err
		}
	}

	return opts, nil
}

// parseCount falls back to a single image for anything that is not a
// positive integer.
func parseCount(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// mimeSubtype is the image/<subtype> used for the returned data URIs.
func mimeSubtype(outputFormat string) string {
	if outputFormat == "" {
		return defaultMime
	}
	return strings.ToLower(outputFormat)
}
