package loader

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"fashionetl/internal/model"
)

// SheetsSink overwrites one named sheet of a Google spreadsheet, using a
// service account key file for authentication.
type SheetsSink struct {
	CredentialsFile string
	SpreadsheetID   string
	SheetName       string

	// Options are appended to the client options; tests point the service
	// at a fake endpoint with them.
	Options []option.ClientOption
}

var _ Sink = (*SheetsSink)(nil)

func (s *SheetsSink) Name() string { return "Google Sheets" }

func (s *SheetsSink) Load(ctx context.Context, table model.Table) Outcome {
	return outcome(s.Name(), table.Len(), s.write(ctx, table))
}

func (s *SheetsSink) write(ctx context.Context, table model.Table) error {
	if s.CredentialsFile == "" {
		return unavailable("no credentials configured")
	}
	if s.SpreadsheetID == "" {
		return unavailable("no spreadsheet id configured")
	}

	svc, err := s.service(ctx)
	if err != nil {
		return err
	}

	if err := s.ensureSheet(ctx, svc); err != nil {
		return err
	}

	rng := sheetRange(s.SheetName)
	if _, err := svc.Spreadsheets.Values.Clear(s.SpreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return wrapSheetsError("clear sheet", err)
	}

	_, err = svc.Spreadsheets.Values.Update(s.SpreadsheetID, rng+"!A1", &sheets.ValueRange{Values: sheetValues(table)}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return wrapSheetsError("write rows", err)
	}
	return nil
}

func (s *SheetsSink) service(ctx context.Context) (*sheets.Service, error) {
	data, err := os.ReadFile(s.CredentialsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, unavailable("credentials file " + s.CredentialsFile + " not found")
		}
		return nil, &AuthenticationError{Err: err}
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, &AuthenticationError{Err: err}
	}

	opts := append([]option.ClientOption{option.WithTokenSource(creds.TokenSource)}, s.Options...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, &ServiceError{Op: "create sheets client", Err: err}
	}
	return svc, nil
}

func (s *SheetsSink) ensureSheet(ctx context.Context, svc *sheets.Service) error {
	ss, err := svc.Spreadsheets.Get(s.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return wrapSheetsError("get spreadsheet", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.SheetName {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: s.SheetName},
			},
		}},
	}
	if _, err := svc.Spreadsheets.BatchUpdate(s.SpreadsheetID, req).Context(ctx).Do(); err != nil {
		return wrapSheetsError("add sheet", err)
	}
	return nil
}

// sheetRange quotes a sheet title for A1 notation.
func sheetRange(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func sheetValues(table model.Table) [][]any {
	values := make([][]any, 0, table.Len()+1)

	header := make([]any, len(model.Columns))
	for i, c := range model.Columns {
		header[i] = c
	}
	values = append(values, header)

	for _, r := range table.Rows {
		var rating any = ""
		if r.Rating != nil {
			rating = *r.Rating
		}
		values = append(values, []any{
			r.Title, r.Price, rating, r.Size, r.Gender, r.Colors,
			r.Timestamp.Format(model.TimestampLayout), r.Image,
		})
	}
	return values
}

func wrapSheetsError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden {
			return &AuthenticationError{Err: err}
		}
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return &AuthenticationError{Err: err}
	}
	return &ServiceError{Op: op, Err: err}
}
