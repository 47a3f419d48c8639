package drawable

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	s "strings"

	"github.com/jeff-blank/svg2vd/pkg/svgxml"
	log "github.com/sirupsen/logrus"
)

const (
	AndroidNS   = "http://schemas.android.com/apk/res/android"
	Transparent = "@android:color/transparent"
	Black       = "@android:color/black"
	White       = "@android:color/white"
)

// ErrEmptyGeometry is returned when there is nothing to draw.
var ErrEmptyGeometry = errors.New("no paths found")

// Emitter writes vector drawables with a fixed display size.
type Emitter struct {
	Width  string
	Height string
}

func New(width, height string) *Emitter {
	if width == "" {
		width = "24dp"
	}
	if height == "" {
		height = "24dp"
	}
	return &Emitter{Width: width, Height: height}
}

var std = New("", "")

// Emit writes the drawable for shapes to w in a single Write call.
func Emit(w io.Writer, shapes []svgxml.Shape, vb svgxml.Viewport) error {
	return std.Emit(w, shapes, vb)
}

// WriteFile writes the drawable to path via a temp file and rename.
func WriteFile(path string, shapes []svgxml.Shape, vb svgxml.Viewport) error {
	return std.WriteFile(path, shapes, vb)
}

// MapColor converts an SVG colour token to a drawable colour. Its output
// maps to itself.
func MapColor(c string) string {
	switch {
	case c == "" || c == "none":
		return Transparent
	case c == "currentColor":
		return Black
	case s.HasPrefix(c, "#"):
		return c
	case c == "black":
		return Black
	case c == "white":
		return White
	}
	return c
}

type attr struct {
	name, value string
}

// attrList keeps insertion order; setting a name again overwrites the value
// in its original slot.
type attrList []attr

func (l *attrList) set(name, value string) {
	for i := range *l {
		if (*l)[i].name == name {
			(*l)[i].value = value
			return
		}
	}
	*l = append(*l, attr{name, value})
}

func pathAttrs(sh svgxml.Shape) attrList {
	var l attrList

	l.set("pathData", sh.PathData)
	if sh.StrokeWidth != nil {
		l.set("strokeWidth", *sh.StrokeWidth)
	}
	if sh.StrokeColor != nil {
		l.set("strokeColor", MapColor(*sh.StrokeColor))
	}
	switch {
	case sh.FillColor != nil:
		l.set("fillColor", MapColor(*sh.FillColor))
	case sh.StrokeColor == nil:
		l.set("fillColor", Black)
	default:
		l.set("fillColor", Transparent)
	}
	if sh.StrokeLineCap != nil {
		l.set("strokeLineCap", *sh.StrokeLineCap)
	}
	if sh.StrokeLineJoin != nil {
		l.set("strokeLineJoin", *sh.StrokeLineJoin)
	}
	if sh.StrokeAlpha != nil {
		l.set("strokeAlpha", *sh.StrokeAlpha)
	}
	if sh.FillAlpha != nil {
		l.set("fillAlpha", *sh.FillAlpha)
	}
	// overall opacity wins over the per-channel values
	if sh.Alpha != nil {
		l.set("strokeAlpha", *sh.Alpha)
		l.set("fillAlpha", *sh.Alpha)
	}
	return l
}

// Encode renders the whole document.
func (e *Emitter) Encode(shapes []svgxml.Shape, vb svgxml.Viewport) ([]byte, error) {
	var buf bytes.Buffer
	n := 0

	buf.WriteString(`<vector xmlns:android="` + AndroidNS + `"` + "\n")
	writeAttr(&buf, "    ", "width", e.Width)
	writeAttr(&buf, "    ", "height", e.Height)
	writeAttr(&buf, "    ", "viewportWidth", num(vb.Width))
	buf.WriteString(`    android:viewportHeight="`)
	escape(&buf, num(vb.Height))
	buf.WriteString("\">\n")

	for _, sh := range shapes {
		if sh.PathData == "" {
			continue
		}
		buf.WriteString("    <path\n")
		for _, a := range pathAttrs(sh) {
			writeAttr(&buf, "        ", a.name, a.value)
		}
		buf.WriteString("        />\n")
		n++
	}
	if n == 0 {
		return nil, ErrEmptyGeometry
	}
	buf.WriteString("</vector>\n")
	return buf.Bytes(), nil
}

func (e *Emitter) Emit(w io.Writer, shapes []svgxml.Shape, vb svgxml.Viewport) error {
	out, err := e.Encode(shapes, vb)
	if err != nil {
		log.Warn("drawable: ", err)
		return err
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write drawable: %w", err)
	}
	return nil
}

func (e *Emitter) WriteFile(path string, shapes []svgxml.Shape, vb svgxml.Viewport) error {
	out, err := e.Encode(shapes, vb)
	if err != nil {
		log.Warnf("%s: %v", path, err)
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for '%s': %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write '%s': %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close '%s': %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		log.Debugf("chmod '%s': %v", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename to '%s': %w", path, err)
	}
	return nil
}

func writeAttr(buf *bytes.Buffer, indent, name, value string) {
	buf.WriteString(indent + "android:" + name + `="`)
	escape(buf, value)
	buf.WriteString("\"\n")
}

func escape(buf *bytes.Buffer, v string) {
	// EscapeText only fails when the writer does
	_ = xml.EscapeText(buf, []byte(v))
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
