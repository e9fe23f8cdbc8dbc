// Package mimeconv converts a namespace value into a typed Output bundle.
// The original recognizes matplotlib/plotly/Altair/pandas objects by
// Python type; Go has no equivalent ecosystem objects, so rich-output
// values are represented as first-class Go marker types carrying the same
// semantic tag, and recognition switches on Go type instead of a Python
// class check. The dispatch order and produced MIME types are unchanged.
package mimeconv

import (
	"encoding/base64"
	"fmt"

	"github.com/carter293/reactive-notebook/pkg/notebook"
)

// PNGImage stands in for a matplotlib figure already rendered to PNG bytes.
type PNGImage struct {
	Data []byte
}

// PlotlyFigure stands in for a plotly figure's JSON-serializable spec.
type PlotlyFigure struct {
	Spec any
}

// VegaLiteChart stands in for an Altair/vega-lite chart's dict spec.
type VegaLiteChart struct {
	Spec any
}

// Table stands in for a pandas DataFrame.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Convert returns a single Output for value; a value of no recognized
// rich type becomes a text/plain Output of its %v form. Conversion failures degrade to text/plain with a short diagnostic
// string rather than propagating.
func Convert(value any) *notebook.Output {
	defer func() { recover() }() // a broken custom Stringer must not crash the executor

	switch v := value.(type) {
	case PNGImage:
		return &notebook.Output{
			MIMEType: "image/png",
			Data:     base64.StdEncoding.EncodeToString(v.Data),
		}
	case PlotlyFigure:
		return &notebook.Output{
			MIMEType: "application/vnd.plotly.v1+json",
			Data:     v.Spec,
		}
	case VegaLiteChart:
		return &notebook.Output{
			MIMEType: "application/vnd.vegalite.v5+json",
			Data:     v.Spec,
		}
	case Table:
		return &notebook.Output{
			MIMEType: "application/json",
			Data: map[string]any{
				"type":    "table",
				"columns": v.Columns,
				"rows":    v.Rows,
			},
		}
	default:
		return &notebook.Output{
			MIMEType: "text/plain",
			Data:     safeString(value),
		}
	}
}

func safeString(value any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("<unrenderable value: %v>", r)
		}
	}()
	return fmt.Sprintf("%v", value)
}
