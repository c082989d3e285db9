package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/piwi3910/CreaseStack/internal/model"
)

// dxfLayers lists the layer written for each line type together with its
// colour. The names are recognised by the DXF importer.
var dxfLayers = []struct {
	Type  model.LineType
	Name  string
	Color color.ColorNumber
}{
	{model.LineCut, "Cut", color.White},
	{model.LineMountain, "Mountain", color.Red},
	{model.LineValley, "Valley", color.Blue},
	{model.LineAuxiliary, "Aux", color.Cyan},
}

// ExportDXF writes the crease pattern as LINE entities, one layer per line
// type. Layers without lines are still declared.
func ExportDXF(path string, cp model.CreasePattern) error {
	if len(cp.Lines) == 0 {
		return fmt.Errorf("no lines to export")
	}

	d := dxf.NewDrawing()
	for _, l := range dxfLayers {
		if _, err := d.AddLayer(l.Name, l.Color, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", l.Name, err)
		}
	}

	for _, l := range dxfLayers {
		if err := d.ChangeLayer(l.Name); err != nil {
			return fmt.Errorf("failed to select layer %s: %w", l.Name, err)
		}
		for _, line := range cp.Lines {
			if line.Type != l.Type {
				continue
			}
			if _, err := d.Line(line.P0.X, line.P0.Y, 0, line.P1.X, line.P1.Y, 0); err != nil {
				return fmt.Errorf("failed to add line %s: %w", line.ID, err)
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF: %w", err)
	}
	return nil
}
