package core

import (
	"bytes"
	"strings"

	"github.com/JonMunkholm/giftcrm/internal/record"
	"github.com/JonMunkholm/giftcrm/internal/sheet"
)

// ExportHeader is the courier's import layout.
var ExportHeader = []string{
	"NOME DESTINATARIO",
	"INDIRIZZO",
	"LOCALITA'",
	"PROV",
	"CAP",
	"TIPO MERCE",
	"COLLI",
	"NOTE SPEDIZIONE",
	"RIFERIMENTO MITTENTE",
	"TELEFONO",
}

var exportWidths = []float64{30, 40, 25, 6, 8, 15, 6, 40, 25, 15}

const (
	DefaultMerchandiseLabel = "REGALI"
	DefaultExportSheet      = "Spedizioni GLS"
	exportParcels           = "1"
)

// Exporter renders GLS-flagged records as a courier shipment sheet.
type Exporter struct {
	MerchandiseLabel string
	SheetName        string
}

// Rows returns one shipment line per record with the GLS flag set, in
// input order.
func (e Exporter) Rows(records []record.Record) [][]string {
	label := e.MerchandiseLabel
	if label == "" {
		label = DefaultMerchandiseLabel
	}

	var rows [][]string
	for i := range records {
		r := &records[i]
		if !bool(r.GLS) {
			continue
		}
		nome := strings.TrimSpace(r.Nome)
		recipient := strings.TrimSpace(r.Azienda)
		if recipient == "" {
			recipient = nome
		}
		rows = append(rows, []string{
			recipient,
			joinAddress(r.Indirizzo, r.Civico),
			r.Localita,
			r.Provincia,
			r.Cap,
			label,
			exportParcels,
			r.Note,
			nome,
			r.Telefono,
		})
	}
	return rows
}

// Table builds the shipment sheet, or fails with ErrNoRecordsToExport when
// no record is flagged.
func (e Exporter) Table(records []record.Record) (sheet.Table, error) {
	rows := e.Rows(records)
	if len(rows) == 0 {
		return sheet.Table{}, ErrNoRecordsToExport
	}
	name := e.SheetName
	if name == "" {
		name = DefaultExportSheet
	}
	return sheet.Table{
		SheetName: name,
		Header:    ExportHeader,
		Rows:      rows,
		Widths:    exportWidths,
	}, nil
}

// XLSX renders the shipment sheet as a workbook.
func (e Exporter) XLSX(records []record.Record) (*bytes.Buffer, int, error) {
	table, err := e.Table(records)
	if err != nil {
		return nil, 0, err
	}
	buf, err := table.XLSX()
	if err != nil {
		return nil, 0, err
	}
	return buf, len(table.Rows), nil
}

func joinAddress(street, number string) string {
	street, number = strings.TrimSpace(street), strings.TrimSpace(number)
	if number == "" {
		return street
	}
	if street == "" {
		return number
	}
	return street + " " + number
}
