package sink

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/ChrisGrossi/sportsbet/internal/htmltable"
)

// SheetsWriter replaces a worksheet's contents with a table on every
// write. Each worksheet holds exactly one run's snapshot.
type SheetsWriter struct {
	service        *sheets.Service
	spreadsheetKey string
	log            *logrus.Entry
}

// NewSheetsWriter authenticates against the Sheets API with a service
// account credentials file
func NewSheetsWriter(ctx context.Context, credentialsFile, spreadsheetKey string, log *logrus.Entry) (*SheetsWriter, error) {
	service, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsWriter{
		service:        service,
		spreadsheetKey: spreadsheetKey,
		log:            log.WithField("component", "sheets"),
	}, nil
}

// Write clears the worksheet and uploads the table, header row first
func (w *SheetsWriter) Write(ctx context.Context, worksheet string, table *htmltable.Table) error {
	_, err := w.service.Spreadsheets.Values.
		Clear(w.spreadsheetKey, worksheet, &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear worksheet %s: %w", worksheet, err)
	}

	values := make([][]interface{}, 0, len(table.Rows)+1)

	header := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	values = append(values, header)

	for _, row := range table.Rows {
		cells := make([]interface{}, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		values = append(values, cells)
	}

	_, err = w.service.Spreadsheets.Values.
		Update(w.spreadsheetKey, worksheet+"!A1", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update worksheet %s: %w", worksheet, err)
	}

	w.log.WithFields(logrus.Fields{
		"worksheet": worksheet,
		"rows":      len(table.Rows),
	}).Info("uploaded worksheet")

	return nil
}
