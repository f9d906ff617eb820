package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/matzehuels/mavenresolve/pkg/errors"
)

// rsvgConvert is the librsvg command line converter looked up on PATH.
const rsvgConvert = "rsvg-convert"

const installHint = "install librsvg (brew install librsvg, apt install librsvg2-bin)"

// ToPDF converts a rendered dependency graph from SVG to PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convertSVG(ctx, svg, "pdf")
}

// ToPNG converts a rendered dependency graph from SVG to PNG. A scale of 2
// doubles the resolution; it must be positive.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be positive, got %g", scale)
	}
	return convertSVG(ctx, svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
}

func convertSVG(ctx context.Context, svg []byte, format string, args ...string) ([]byte, error) {
	if len(bytes.TrimSpace(svg)) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no svg to convert to %s", format)
	}
	bin, err := exec.LookPath(rsvgConvert)
	if err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "%s output needs %s: %s", format, rsvgConvert, installHint)
	}

	cmd := exec.CommandContext(ctx, bin, append([]string{"--format", format}, args...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", rsvgConvert, strings.TrimSpace(stderr.String()))
	}
	if out.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInternal, "%s produced no %s output", rsvgConvert, format)
	}
	return out.Bytes(), nil
}
