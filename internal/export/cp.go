package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/piwi3910/CreaseStack/internal/importer"
	"github.com/piwi3910/CreaseStack/internal/model"
)

// WriteCP writes the crease pattern in ORIPA .cp format, one
// "type x0 y0 x1 y1" record per line.
func WriteCP(w io.Writer, cp model.CreasePattern) error {
	bw := bufio.NewWriter(w)
	for _, l := range cp.Lines {
		fmt.Fprintf(bw, "%d %s %s %s %s\n", importer.CPCode(l.Type),
			formatFloat(l.P0.X), formatFloat(l.P0.Y), formatFloat(l.P1.X), formatFloat(l.P1.Y))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write crease pattern: %w", err)
	}
	return nil
}

// ExportCP writes the crease pattern to an ORIPA .cp file.
func ExportCP(path string, cp model.CreasePattern) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteCP(f, cp); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
