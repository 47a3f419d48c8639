package svgxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	s "strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
)

const Namespace = "http://www.w3.org/2000/svg"

// ErrParse wraps any failure to read the source document as XML.
var ErrParse = errors.New("svg parse error")

// Shape is one drawable primitive. Style fields are nil when the source
// element did not carry the attribute.
type Shape struct {
	PathData       string
	FillColor      *string
	StrokeColor    *string
	StrokeWidth    *string
	Alpha          *string
	FillAlpha      *string
	StrokeAlpha    *string
	StrokeLineCap  *string
	StrokeLineJoin *string
}

type Viewport struct {
	MinX, MinY    float64
	Width, Height float64
}

// DefaultViewport is used when viewBox is missing or malformed.
var DefaultViewport = Viewport{0, 0, 24, 24}

// path attribute -> Shape field
var pathAttrs = []struct {
	name  string
	field func(*Shape) **string
}{
	{"fill", func(sh *Shape) **string { return &sh.FillColor }},
	{"stroke", func(sh *Shape) **string { return &sh.StrokeColor }},
	{"stroke-width", func(sh *Shape) **string { return &sh.StrokeWidth }},
	{"opacity", func(sh *Shape) **string { return &sh.Alpha }},
	{"fill-opacity", func(sh *Shape) **string { return &sh.FillAlpha }},
	{"stroke-opacity", func(sh *Shape) **string { return &sh.StrokeAlpha }},
	{"stroke-linecap", func(sh *Shape) **string { return &sh.StrokeLineCap }},
	{"stroke-linejoin", func(sh *Shape) **string { return &sh.StrokeLineJoin }},
}

// Extract reads an SVG document and returns its shapes in document order.
// A malformed document is logged and yields no shapes and DefaultViewport;
// callers treat that as nothing to convert.
func Extract(r io.Reader, name string) ([]Shape, Viewport) {
	shapes, vb, err := Parse(r)
	if err != nil {
		log.Warnf("%s: %v", name, err)
		return nil, DefaultViewport
	}
	log.Debugf("%s: %d shapes, viewport %gx%g", name, len(shapes), vb.Width, vb.Height)
	return shapes, vb
}

// Parse is Extract without the recovery: XML errors come back wrapped in
// ErrParse and any shapes read so far are dropped.
func Parse(r io.Reader) ([]Shape, Viewport, error) {
	var (
		shapes []Shape
		vb     = DefaultViewport
		root   = true
	)

	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, DefaultViewport, fmt.Errorf("%w: %v", ErrParse, err)
		}

		se, ok := t.(xml.StartElement)
		if !ok {
			continue
		}
		if root {
			root = false
			vb = readViewport(se)
		}
		if !inSvgSpace(se.Name) {
			continue
		}

		var (
			shape Shape
			keep  bool
		)
		switch se.Name.Local {
		case "path":
			shape, keep = pathShape(se.Attr)
		case "circle":
			shape, keep = circleShape(se.Attr)
		case "ellipse":
			shape, keep = ellipseShape(se.Attr)
		}
		if keep && shape.PathData != "" {
			shapes = append(shapes, shape)
		}
	}
	if root {
		return nil, DefaultViewport, fmt.Errorf("%w: empty document", ErrParse)
	}
	return shapes, vb, nil
}

// Elements and attributes match with or without the SVG namespace, so
// documents from tools that omit xmlns behave the same as those that set it.
func inSvgSpace(n xml.Name) bool {
	return n.Space == "" || n.Space == Namespace
}

func attr(attrs []xml.Attr, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Local == name && inSvgSpace(a.Name) {
			return a.Value, true
		}
	}
	return "", false
}

func attrPtr(attrs []xml.Attr, name string) *string {
	if v, ok := attr(attrs, name); ok {
		return &v
	}
	return nil
}

func pathShape(attrs []xml.Attr) (Shape, bool) {
	d, ok := attr(attrs, "d")
	if !ok {
		return Shape{}, false
	}
	shape := Shape{PathData: d}
	for _, pa := range pathAttrs {
		*pa.field(&shape) = attrPtr(attrs, pa.name)
	}
	return shape, true
}

func circleShape(attrs []xml.Attr) (Shape, bool) {
	n, err := numbers(attrs, "cx", "cy", "r")
	if err != nil {
		log.Warnf("circle skipped: %v", err)
		return Shape{}, false
	}
	if n[2] < 0 {
		log.Warnf("circle skipped: negative radius %g", n[2])
		return Shape{}, false
	}
	return Shape{
		PathData:    ArcLoop(n[0], n[1], n[2], n[2]),
		FillColor:   attrPtr(attrs, "fill"),
		StrokeColor: attrPtr(attrs, "stroke"),
		StrokeWidth: attrPtr(attrs, "stroke-width"),
	}, true
}

func ellipseShape(attrs []xml.Attr) (Shape, bool) {
	n, err := numbers(attrs, "cx", "cy", "rx", "ry")
	if err != nil {
		log.Warnf("ellipse skipped: %v", err)
		return Shape{}, false
	}
	if n[2] < 0 || n[3] < 0 {
		log.Warnf("ellipse skipped: negative radius %g,%g", n[2], n[3])
		return Shape{}, false
	}
	return Shape{
		PathData:  ArcLoop(n[0], n[1], n[2], n[3]),
		FillColor: attrPtr(attrs, "fill"),
	}, true
}

// numbers reads the named attributes as floats; missing ones are 0.
func numbers(attrs []xml.Attr, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, name := range names {
		v, ok := attr(attrs, name)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(s.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("%s=%q: not a number", name, v)
		}
		out[i] = f
	}
	return out, nil
}

// ArcLoop returns path data for a closed ellipse centred at (cx, cy) made of
// two half-ellipse arcs.
func ArcLoop(cx, cy, rx, ry float64) string {
	return fmt.Sprintf("M %s %s m -%s 0 a %s %s 0 1 1 %s 0 a %s %s 0 1 1 -%s 0",
		num(cx), num(cy), num(rx),
		num(rx), num(ry), num(2*rx),
		num(rx), num(ry), num(2*rx))
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func readViewport(se xml.StartElement) Viewport {
	if w, ok := attr(se.Attr, "width"); ok {
		log.Debugf("root width=%q (ignored)", w)
	}
	if h, ok := attr(se.Attr, "height"); ok {
		log.Debugf("root height=%q (ignored)", h)
	}
	v, ok := attr(se.Attr, "viewBox")
	if !ok {
		return DefaultViewport
	}
	vb, err := ParseViewBox(v)
	if err != nil {
		log.Debugf("viewBox %q: %v, using default", v, err)
		return DefaultViewport
	}
	return vb
}

// ParseViewBox parses "min-x min-y width height"; separators may be
// whitespace or commas.
func ParseViewBox(v string) (Viewport, error) {
	fields := s.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 4 {
		return DefaultViewport, fmt.Errorf("want 4 values, got %d", len(fields))
	}
	var n [4]float64
	for i, f := range fields {
		var err error
		if n[i], err = strconv.ParseFloat(f, 64); err != nil {
			return DefaultViewport, fmt.Errorf("value %q: not a number", f)
		}
	}
	return Viewport{n[0], n[1], n[2], n[3]}, nil
}
