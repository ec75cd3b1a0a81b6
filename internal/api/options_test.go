package api

import (
	"net/url"
	"testing"

	"github.com/cheahjs/leangen/internal/imageapi"
)

func TestBuildOptionsDefaults(t *testing.T) {
	opts, err := buildOptions(imageapi.DefaultModel, url.Values{"prompt": {"a red cube"}})
	if err != nil {
		t.Fatal(err)
	}

	want := imageapi.Options{Model: "gpt-image-1", Prompt: "a red cube", N: 1, Size: "auto"}
	if opts != want {
		t.Errorf("opts = %+v, want %+v", opts, want)
	}
}

func TestBuildOptionsAutoSentinel(t *testing.T) {
	for _, name := range []string{"background", "moderation", "quality"} {
		t.Run(name, func(t *testing.T) {
			opts, err := buildOptions("m", url.Values{name: {"auto"}})
			if err != nil {
				t.Fatal(err)
			}
			if opts.Background != "" || opts.Moderation != "" || opts.Quality != "" {
				t.Errorf("auto should be omitted, got %+v", opts)
			}

			opts, err = buildOptions("m", url.Values{name: {"low"}})
			if err != nil {
				t.Fatal(err)
			}
			got := map[string]string{
				"background": opts.Background,
				"moderation": opts.Moderation,
				"quality":    opts.Quality,
			}
			for field, value := range got {
				want := ""
				if field == name {
					want = "low"
				}
				if value != want {
					t.Errorf("%s = %q, want %q", field, value, want)
				}
			}
		})
	}
}

func TestBuildOptionsCount(t *testing.T) {
	tests := map[string]int{
		"":    1,
		"1":   1,
		"4":   4,
		" 3 ": 3,
		"0":   1,
		"-2":  1,
		"abc": 1,
		"2.5": 1,
	}
	for input, want := range tests {
		opts, err := buildOptions("m", url.Values{"n": {input}})
		if err != nil {
			t.Fatal(err)
		}
		if opts.N != want {
			t.Errorf("n=%q: N = %d, want %d", input, opts.N, want)
		}
	}
}

func TestBuildOptionsCompression(t *testing.T) {
	opts, err := buildOptions("m", url.Values{"output_compression": {""}})
	if err != nil {
		t.Fatal(err)
	}
	if opts.OutputCompression != nil {
		t.Errorf("empty compression should be omitted, got %d", *opts.OutputCompression)
	}

	for input, want := range map[string]int{"0": 0, "75": 75, "100": 100} {
		opts, err := buildOptions("m", url.Values{"output_compression": {input}})
		if err != nil {
			t.Fatal(err)
		}
		if opts.OutputCompression == nil || *opts.OutputCompression != want {
			t.Errorf("compression=%q: got %v, want %d", input, opts.OutputCompression, want)
		}
	}

	if _, err := buildOptions("m", url.Values{"output_compression": {"high"}}); err == nil {
		t.Error("expected error for non-numeric compression")
	} else if _, ok := err.(*formError); !ok {
		t.Errorf("err = %T, want *formError", err)
	}
}

func TestBuildOptionsPassThrough(t *testing.T) {
	opts, err := buildOptions("m", url.Values{
		"prompt":        {"p"},
		"size":          {"1536x1024"},
		"output_format": {"WebP"},
		"background":    {"transparent"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if opts.Size != "1536x1024" || opts.OutputFormat != "WebP" || opts.Background != "transparent" {
		t.Errorf("opts = %+v", opts)
	}
}

func TestMimeSubtype(t *testing.T) {
	tests := map[string]string{"": "png", "png": "png", "JPEG": "jpeg", "webp": "webp"}
	for input, want := range tests {
		if got := mimeSubtype(input); got != want {
			t.Errorf("mimeSubtype(%q) = %q, want %q", input, got, want)
		}
	}
}
