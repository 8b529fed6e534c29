package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/drape/internal/experiment"
)

type ExportData struct {
	Run     RunMetadata `json:"run"`
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

func NewExportData(meta RunMetadata, frames []experiment.Frame) ExportData {
	data := ExportData{
		Run:     meta,
		Columns: experiment.Columns,
		Rows:    make([][]float64, len(frames)),
	}
	for i, f := range frames {
		data.Rows[i] = f.Values()
	}
	return data
}

// WriteJSON writes a run and its frame records as one indented document.
func WriteJSON(w io.Writer, meta RunMetadata, frames []experiment.Frame) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(meta, frames))
}

func ExportJSON(path string, meta RunMetadata, frames []experiment.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := WriteJSON(f, meta, frames); err != nil {
		return err
	}
	return f.Close()
}

// WriteCSV writes frame records with a header row in experiment.Columns order.
func WriteCSV(w io.Writer, frames []experiment.Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(experiment.Columns); err != nil {
		return err
	}
	row := make([]string, len(experiment.Columns))
	for _, f := range frames {
		for i, v := range f.Values() {
			row[i] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
