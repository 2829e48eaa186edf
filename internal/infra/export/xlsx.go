package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Column asocia una cabecera con una ruta de campo ("location.city").
type Column struct {
	Header string
	Path   string
	Width  float64
}

// WriteXLSX escribe una hoja con cabecera en negrita y una fila por registro.
func WriteXLSX(w io.Writer, sheet string, columns []Column, records []map[string]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headers := make([]interface{}, len(columns))
	for i, col := range columns {
		headers[i] = col.Header
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}

	for i, rec := range records {
		flat, err := Flatten(rec)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(columns))
		for j, col := range columns {
			row[j] = cellValue(flat[col.Path])
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	for i, col := range columns {
		if col.Width <= 0 {
			continue
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, name, name, col.Width); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// Flatten normaliza el registro vía JSON (los tipos del driver se convierten en
// tipos básicos) y aplana los objetos anidados con claves "a.b".
func Flatten(rec map[string]interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("flatten record: %w", err)
	}
	var plain map[string]interface{}
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, fmt.Errorf("flatten record: %w", err)
	}
	out := make(map[string]interface{}, len(plain))
	flattenInto(out, "", plain)
	return out, nil
}

func flattenInto(out map[string]interface{}, prefix string, m map[string]interface{}) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			flattenInto(out, key, nested)
			continue
		}
		out[key] = v
	}
}

func cellValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return ""
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			if _, isMap := p.(map[string]interface{}); isMap {
				continue
			}
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ", ")
	default:
		return val
	}
}
