package svgxml

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/cheekybits/is"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const iconSvg = `<?xml version="1.0" encoding="UTF-8"?>
<svg width="24" height="24" viewBox="0 0 32 48" fill="none" xmlns="http://www.w3.org/2000/svg">
<path opacity="0.5" d="M2 12C2 7.28595 2 4.92893 3.46447 3.46447" stroke="#1C274C" stroke-width="1.5" stroke-linecap="round"/>
<circle cx="12" cy="12" r="3" fill="#1C274C"/>
<path d="M7 12H17" stroke="currentColor" fill-opacity=".3" stroke-opacity="0.8" stroke-linejoin="bevel"/>
<ellipse cx="5" cy="6" rx="2" ry="1" fill="white" stroke="red"/>
</svg>`

func TestParseIcon(t *testing.T) {
	is := is.New(t)

	shapes, vb, err := Parse(strings.NewReader(iconSvg))
	is.NoErr(err)
	is.Equal(len(shapes), 4)
	is.Equal(vb, Viewport{0, 0, 32, 48})

	is.Equal(shapes[0].PathData, "M2 12C2 7.28595 2 4.92893 3.46447 3.46447")
	is.Equal(*shapes[0].Alpha, "0.5")
	is.Equal(*shapes[0].StrokeColor, "#1C274C")
	is.Equal(*shapes[0].StrokeWidth, "1.5")
	is.Equal(*shapes[0].StrokeLineCap, "round")
	is.Nil(shapes[0].FillColor)

	is.Equal(shapes[1].PathData, "M 12 12 m -3 0 a 3 3 0 1 1 6 0 a 3 3 0 1 1 -6 0")
	is.Equal(*shapes[1].FillColor, "#1C274C")
}

func TestPathAttributes(t *testing.T) {
	shapes, _, err := Parse(strings.NewReader(iconSvg))
	require.NoError(t, err)
	require.Len(t, shapes, 4)

	p := shapes[2]
	assert.Equal(t, "M7 12H17", p.PathData)
	assert.Equal(t, "currentColor", *p.StrokeColor)
	assert.Equal(t, ".3", *p.FillAlpha)
	assert.Equal(t, "0.8", *p.StrokeAlpha)
	assert.Equal(t, "bevel", *p.StrokeLineJoin)
	assert.Nil(t, p.FillColor)
	assert.Nil(t, p.Alpha)
	assert.Nil(t, p.StrokeWidth)
	assert.Nil(t, p.StrokeLineCap)
}

func TestEllipseCopiesFillOnly(t *testing.T) {
	shapes, _, err := Parse(strings.NewReader(iconSvg))
	require.NoError(t, err)

	e := shapes[3]
	assert.Equal(t, "M 5 6 m -2 0 a 2 1 0 1 1 4 0 a 2 1 0 1 1 -4 0", e.PathData)
	assert.Equal(t, "white", *e.FillColor)
	assert.Nil(t, e.StrokeColor)
}

func TestCircleStroke(t *testing.T) {
	doc := `<svg><circle cx="1.5" cy="2" r="0.25" stroke="#000" stroke-width="2" opacity="0.4"/></svg>`
	shapes, _, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, shapes, 1)

	c := shapes[0]
	assert.Equal(t, "M 1.5 2 m -0.25 0 a 0.25 0.25 0 1 1 0.5 0 a 0.25 0.25 0 1 1 -0.5 0", c.PathData)
	assert.Equal(t, "#000", *c.StrokeColor)
	assert.Equal(t, "2", *c.StrokeWidth)
	assert.Nil(t, c.FillColor)
	assert.Nil(t, c.Alpha, "opacity is not mapped for circles")
}

var reArc = regexp.MustCompile(`a (\S+) (\S+) 0 1 1 (\S+) 0`)

func TestArcLoopCloses(t *testing.T) {
	for _, r := range []float64{0.5, 1, 3, 7.25, 100} {
		d := ArcLoop(10, 20, r, r)
		arcs := reArc.FindAllStringSubmatch(d, -1)
		require.Len(t, arcs, 2, d)

		var sum float64
		for _, a := range arcs {
			rx, err := strconv.ParseFloat(a[1], 64)
			require.NoError(t, err)
			dx, err := strconv.ParseFloat(a[3], 64)
			require.NoError(t, err)
			assert.Equal(t, r, rx)
			assert.Equal(t, 2*r, abs(dx), "each arc spans the diameter")
			sum += dx
		}
		assert.Zero(t, sum, d)
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func TestNamespacesDoNotDuplicate(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
	}{
		{"default namespace", `<svg xmlns="http://www.w3.org/2000/svg"><path d="M0 0"/><circle r="1"/></svg>`},
		{"no namespace", `<svg><path d="M0 0"/><circle r="1"/></svg>`},
		{"prefixed", `<svg:svg xmlns:svg="http://www.w3.org/2000/svg"><svg:path d="M0 0"/><svg:circle r="1"/></svg:svg>`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			shapes, _, err := Parse(strings.NewReader(tc.doc))
			require.NoError(t, err)
			require.Len(t, shapes, 2)
			assert.Equal(t, "M0 0", shapes[0].PathData)
			assert.Equal(t, "M 0 0 m -1 0 a 1 1 0 1 1 2 0 a 1 1 0 1 1 -2 0", shapes[1].PathData)
		})
	}
}

func TestForeignNamespaceIgnored(t *testing.T) {
	doc := `<svg xmlns="http://www.w3.org/2000/svg" xmlns:x="urn:editor">
<x:path d="M9 9"/>
<path d="M1 1" x:fill="red"/>
</svg>`
	shapes, _, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, shapes, 1)
	assert.Equal(t, "M1 1", shapes[0].PathData)
	assert.Nil(t, shapes[0].FillColor)
}

func TestDocumentOrderAcrossGroups(t *testing.T) {
	doc := `<svg><g><path d="A"/><ellipse rx="1" ry="2"/></g><path d="B"/><path fill="red"/><path d=""/></svg>`
	shapes, _, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, shapes, 3)
	assert.Equal(t, "A", shapes[0].PathData)
	assert.True(t, strings.HasPrefix(shapes[1].PathData, "M 0 0 m -1 0 a 1 2"))
	assert.Equal(t, "B", shapes[2].PathData)
}

func TestBadShapeSkipped(t *testing.T) {
	doc := `<svg><circle r="3px"/><ellipse rx="-1" ry="1"/><circle r="-2"/><path d="M0 0"/></svg>`
	shapes, _, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, shapes, 1)
	assert.Equal(t, "M0 0", shapes[0].PathData)
}

func TestParseErrors(t *testing.T) {
	for _, doc := range []string{
		"",
		"<svg><path d='M0 0'>",
		"<svg><path d='M0 0'/></g></svg>",
		"not xml at all <",
	} {
		shapes, vb, err := Parse(strings.NewReader(doc))
		assert.True(t, errors.Is(err, ErrParse), "%q: %v", doc, err)
		assert.Nil(t, shapes)
		assert.Equal(t, DefaultViewport, vb)
	}
}

func TestExtractRecovers(t *testing.T) {
	shapes, vb := Extract(strings.NewReader("<svg><path d='M0 0'>"), "broken.svg")
	assert.Empty(t, shapes)
	assert.Equal(t, DefaultViewport, vb)

	shapes, vb = Extract(strings.NewReader(`<svg><path d="M0 0L10 10" fill="#FF0000"/></svg>`), "ok.svg")
	require.Len(t, shapes, 1)
	assert.Equal(t, DefaultViewport, vb)
}

func TestCharset(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<svg><title>caf\xe9</title><path d=\"M0 0\"/></svg>"
	shapes, _, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Len(t, shapes, 1)
}

func TestParseViewBox(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Viewport
		ok   bool
	}{
		{"0 0 24 24", Viewport{0, 0, 24, 24}, true},
		{"-1 2.5 100 50", Viewport{-1, 2.5, 100, 50}, true},
		{" 0,0, 16,16 ", Viewport{0, 0, 16, 16}, true},
		{"0\t0\n48 48", Viewport{0, 0, 48, 48}, true},
		{"0 0 24", DefaultViewport, false},
		{"0 0 24 24 1", DefaultViewport, false},
		{"0 0 a b", DefaultViewport, false},
		{"", DefaultViewport, false},
	} {
		vb, err := ParseViewBox(tc.in)
		assert.Equal(t, tc.want, vb, tc.in)
		assert.Equal(t, tc.ok, err == nil, tc.in)
	}
}

func TestViewportFromRootOnly(t *testing.T) {
	doc := `<svg viewBox="0 0 10 twenty"><svg viewBox="0 0 1 1"/><path d="M0 0"/></svg>`
	_, vb, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, DefaultViewport, vb)
}
