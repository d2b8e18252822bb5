package pipeline

import (
	"context"

	"github.com/matzehuels/lineageview/pkg/errors"
	"github.com/matzehuels/lineageview/pkg/explore"
	"github.com/matzehuels/lineageview/pkg/render"
	"github.com/matzehuels/lineageview/pkg/render/nodelink"
	"github.com/matzehuels/lineageview/pkg/render/svg"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, v explore.View, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, v, format, opts)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat generates one artifact.
func RenderFormat(ctx context.Context, v explore.View, format string, opts Options) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case render.FormatJSON:
		data, err = render.JSON(v)
	case render.FormatDOT:
		data = []byte(nodelink.ToDOT(v, nodelink.Options{Detailed: opts.Detailed}))
	case render.FormatSVG:
		data, err = svg.Bytes(v, svg.Options{Background: true, Types: opts.Detailed})
	case render.FormatPNG:
		data, err = nodelink.RenderPNG(ctx, nodelink.ToDOT(v, nodelink.Options{Detailed: opts.Detailed}))
	default:
		return nil, errors.ValidateFormat(format, render.Formats())
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	return data, nil
}
