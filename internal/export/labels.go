package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/CreaseStack/internal/engine"
	"github.com/piwi3910/CreaseStack/internal/model"
)

// LabelInfo holds the data encoded into a model label's QR code.
type LabelInfo struct {
	Project    string `json:"project"`
	ModelIndex int    `json:"model"`
	Faces      int    `json:"faces"`
	Creases    int    `json:"creases"`
	Patterns   int64  `json:"patterns"`
	Status     string `json:"status"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
const (
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// CollectLabelInfos extracts one label per model of a computation.
func CollectLabelInfos(project string, result *engine.ComputationResult) []LabelInfo {
	var labels []LabelInfo
	for i, mr := range result.Models {
		creases := 0
		for _, e := range mr.Model.Edges {
			if e.Type.IsFold() {
				creases++
			}
		}
		labels = append(labels, LabelInfo{
			Project:    project,
			ModelIndex: i + 1,
			Faces:      len(mr.Model.Faces),
			Creases:    creases,
			Patterns:   mr.Count(),
			Status:     mr.Status(),
		})
	}
	return labels
}

// SummaryQR encodes a result summary as a QR code PNG.
func SummaryQR(project string, summary model.ResultSummary, size int) ([]byte, error) {
	payload := struct {
		Project string `json:"project"`
		model.ResultSummary
	}{project, summary}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}

// ExportLabels generates a PDF sheet of QR-coded labels, one per model.
// Each label shows the model's face and crease counts and carries its
// outcome as JSON in the QR code. Labels are laid out on the Avery 5160
// format (3 columns x 10 rows on US Letter).
func ExportLabels(path, project string, result *engine.ComputationResult) error {
	if result == nil || len(result.Models) == 0 {
		return fmt.Errorf("no models to generate labels for")
	}
	labels := CollectLabelInfos(project, result)

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for model %d: %w", label.ModelIndex, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_model_%d", info.ModelIndex)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	title := fmt.Sprintf("%s #%d", info.Project, info.ModelIndex)
	if pdf.GetStringWidth(title) > textW {
		for len(title) > 0 && pdf.GetStringWidth(title+"...") > textW {
			title = title[:len(title)-1]
		}
		title += "..."
	}
	pdf.CellFormat(textW, 4.5, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%d faces, %d creases", info.Faces, info.Creases), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, "Patterns: "+FormatCount(info.Patterns), "", 1, "L", false, 0, "")

	pdf.SetXY(textX, y+labelPadding+12.5)
	pdf.SetFont("Helvetica", "I", 6)
	pdf.SetTextColor(150, 100, 0)
	pdf.CellFormat(textW, 3, info.Status, "", 0, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}
