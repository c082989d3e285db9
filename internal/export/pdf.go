// Package export writes crease patterns and folding results to PDF, Excel,
// DXF, ORIPA .cp and PNG files.
package export

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/piwi3910/CreaseStack/internal/engine"
	"github.com/piwi3910/CreaseStack/internal/geom"
	"github.com/piwi3910/CreaseStack/internal/model"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	previewPx    = 800
)

var printer = message.NewPrinter(language.English)

// FormatCount renders a foldable pattern count with digit grouping.
// NotFoldable is spelled out.
func FormatCount(n int64) string {
	switch {
	case n == engine.NotFoldable:
		return "not foldable"
	case n == math.MaxInt64:
		return printer.Sprintf("at least %d", n)
	}
	return printer.Sprintf("%d", n)
}

// ExportPDF writes a report with the crease pattern on the first page,
// one page per model showing its folded state and check results, and a
// closing summary page. result may be nil to print the crease pattern only.
func ExportPDF(path, title string, cp model.CreasePattern, result *engine.ComputationResult, settings model.FoldSettings) error {
	if len(cp.Lines) == 0 {
		return fmt.Errorf("no lines to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle(title, true)
	pdf.SetCreator("CreaseStack", true)

	pdf.AddPage()
	renderCreasePatternPage(pdf, title, cp)

	if result != nil {
		for i, mr := range result.Models {
			pdf.AddPage()
			if err := renderModelPage(pdf, mr, i+1); err != nil {
				return fmt.Errorf("failed to render model %d: %w", i+1, err)
			}
		}
		pdf.AddPage()
		renderSummaryPage(pdf, result, settings)
	}

	return pdf.OutputFileAndClose(path)
}

// renderCreasePatternPage draws the crease pattern lines in vector form.
func renderCreasePatternPage(pdf *fpdf.Fpdf, title string, cp model.CreasePattern) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	counts := cp.CountByType()
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := printer.Sprintf("Lines: %d | Mountain: %d | Valley: %d | Cut: %d | Auxiliary: %d | Paper: %.1f",
		len(cp.Lines), counts[model.LineMountain], counts[model.LineValley],
		counts[model.LineCut], counts[model.LineAuxiliary], cp.PaperSize)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight
	side := math.Min(drawWidth, drawHeight)

	var pts []geom.Vec
	for _, l := range cp.Lines {
		pts = append(pts, geom.FromPoint(l.P0), geom.FromPoint(l.P1))
	}
	vp := fitViewport(pts, side, 0)
	offsetX := marginLeft + (drawWidth-side)/2
	offsetY := drawAreaTop

	for _, t := range []model.LineType{model.LineAuxiliary, model.LineValley, model.LineMountain, model.LineCut} {
		c := lineColor(t)
		pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
		switch t {
		case model.LineCut:
			pdf.SetLineWidth(0.5)
			pdf.SetDashPattern([]float64{}, 0)
		case model.LineAuxiliary:
			pdf.SetLineWidth(0.15)
			pdf.SetDashPattern([]float64{1, 1}, 0)
		case model.LineValley:
			pdf.SetLineWidth(0.3)
			pdf.SetDashPattern([]float64{2, 1}, 0)
		default:
			pdf.SetLineWidth(0.3)
			pdf.SetDashPattern([]float64{}, 0)
		}
		for _, l := range cp.Lines {
			if l.Type != t {
				continue
			}
			x0, y0 := vp.apply(geom.FromPoint(l.P0))
			x1, y1 := vp.apply(geom.FromPoint(l.P1))
			pdf.Line(offsetX+x0, offsetY+y0, offsetX+x1, offsetY+y1)
		}
	}
	pdf.SetDashPattern([]float64{}, 0)

	drawLegend(pdf, offsetY+side+5)
}

// drawLegend renders the line type legend below the crease pattern.
func drawLegend(pdf *fpdf.Fpdf, y float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)
	x := marginLeft
	for _, t := range []model.LineType{model.LineMountain, model.LineValley, model.LineCut, model.LineAuxiliary} {
		c := lineColor(t)
		pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		pdf.Rect(x, y+0.5, 3, 3, "F")
		pdf.SetXY(x+4, y)
		pdf.CellFormat(25, 4, t.String(), "", 0, "L", false, 0, "")
		x += 30
	}
}

// renderModelPage shows one model: the folded preview and its outcome.
func renderModelPage(pdf *fpdf.Fpdf, mr engine.ModelResult, modelNum int) error {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	v, e, f := mr.Model.Stats()
	title := fmt.Sprintf("Model %d: %d faces, %d edges, %d vertices", modelNum, f, e, v)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	rel := mr.FirstRelation()
	png, err := EncodePNG(RenderFolded(mr.Model, rel, previewPx))
	if err != nil {
		return err
	}
	imgName := fmt.Sprintf("folded_%d", modelNum)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))

	side := pageHeight - drawAreaTop - marginBottom
	pdf.ImageOptions(imgName, marginLeft, drawAreaTop, side, side, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	x := marginLeft + side + 10
	y := drawAreaTop
	items := []struct {
		label string
		value string
	}{
		{"Status", mr.Status()},
		{"Foldable patterns", FormatCount(mr.Count())},
		{"Locally flat-foldable", yesNo(mr.Check.OK)},
		{"Checked vertices", printer.Sprintf("%d", mr.Check.CheckedVertices)},
	}
	if mr.SubFaces != nil {
		items = append(items,
			struct{ label, value string }{"Subfaces", printer.Sprintf("%d", len(mr.SubFaces.SubFaces))},
			struct{ label, value string }{"Overlapping pairs", printer.Sprintf("%d", mr.SubFaces.OverlapCount())})
	}
	if mr.Stacking != nil {
		items = append(items,
			struct{ label, value string }{"Clusters", printer.Sprintf("%d", len(mr.Stacking.Clusters))})
		if mr.Stacking.TimedOut {
			items = append(items, struct{ label, value string }{"Search", "timed out"})
		}
	}
	if mr.FoldError != "" {
		items = append(items, struct{ label, value string }{"Fold error", mr.FoldError})
	}

	for _, item := range items {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(x, y)
		pdf.CellFormat(45, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(pageWidth-marginRight-x-45, 6, item.value, "", 0, "L", false, 0, "")
		y += 7
	}

	if len(mr.Check.Violations) > 0 {
		y += 4
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(x, y)
		pdf.CellFormat(100, 7, "Violations", "", 0, "L", false, 0, "")
		y += 8
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, viol := range mr.Check.Violations {
			if y > pageHeight-marginBottom-5 {
				pdf.SetXY(x, y)
				pdf.CellFormat(100, 5, "...", "", 0, "L", false, 0, "")
				break
			}
			pdf.SetXY(x+3, y)
			text := fmt.Sprintf("- vertex %d (%.2f, %.2f): %s", viol.Vertex, viol.Position[0], viol.Position[1], viol.Rule)
			pdf.CellFormat(120, 5, text, "", 0, "L", false, 0, "")
			y += 5
		}
	}
	pdf.SetTextColor(0, 0, 0)
	return nil
}

// renderSummaryPage draws the final summary page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, result *engine.ComputationResult, settings model.FoldSettings) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Folding Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	summary := result.Summary()

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Models", printer.Sprintf("%d", summary.Models)},
		{"Faces", printer.Sprintf("%d", summary.Faces)},
		{"Subfaces", printer.Sprintf("%d", summary.SubFaces)},
		{"Locally flat-foldable", yesNo(summary.LocallyFlatFoldable)},
		{"Foldable patterns", FormatCount(result.FoldablePatternCount)},
		{"Status", summary.Status},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Model Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{20, 30, 30, 40, 60, 60}
	headers := []string{"Model", "Faces", "Subfaces", "Violations", "Patterns", "Status"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, mr := range result.Models {
		if y > pageHeight-marginBottom-40 {
			break
		}
		subfaces := "-"
		if mr.SubFaces != nil {
			subfaces = printer.Sprintf("%d", len(mr.SubFaces.SubFaces))
		}
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			printer.Sprintf("%d", len(mr.Model.Faces)),
			subfaces,
			printer.Sprintf("%d", len(mr.Check.Violations)),
			FormatCount(mr.Count()),
			mr.Status(),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Fold Settings", "", 0, "L", false, 0, "")
	y += 9

	settingsItems := []struct {
		label string
		value string
	}{
		{"Point Tolerance", fmt.Sprintf("%g", settings.PointEps)},
		{"Angle Tolerance", fmt.Sprintf("%g rad", settings.AngleEps)},
		{"Kawasaki Check", yesNo(settings.CheckKawasaki)},
		{"Full Estimation", yesNo(settings.FullEstimation)},
		{"Step Budget", printer.Sprintf("%d", settings.SearchStepBudget)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by CreaseStack - Flat Fold Layer Ordering", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
