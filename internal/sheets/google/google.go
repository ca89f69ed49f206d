package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	ports "contas/internal/sheets"
)

// Client mirrors transactions into one sheet of a Google spreadsheet.
// Column A holds the transaction id; upserts and deletes locate their
// row by scanning it.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.TransactionMirror = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Transações").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Transações"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "credentials_size", len(credentialsJSON))
	return service, nil
}

// Upsert writes the row for the transaction, overwriting the existing
// row when the id is already present and appending otherwise.
func (c *Client) Upsert(ctx context.Context, row ports.TransactionRow) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if row.ID == "" {
		return errors.New("missing transaction id")
	}

	rowNum, found, err := c.findRow(ctx, row.ID)
	if err != nil {
		return err
	}
	if !found {
		rowNum, err = c.nextRow(ctx)
		if err != nil {
			return err
		}
	}

	paid := "não"
	if row.IsPaid {
		paid = "sim"
	}
	rng := fmt.Sprintf("%s!A%d:I%d", c.sheetName, rowNum, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{{
		row.ID,
		row.OwnerID,
		row.Date.Format("2006-01-02"),
		row.Description,
		row.Category,
		row.Account,
		row.Type,
		row.Value,
		paid,
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write row %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Mirrored transaction to spreadsheet",
		"transaction_id", row.ID,
		"row", rowNum,
		"appended", !found)
	return nil
}

// Delete clears the row holding the transaction. Unknown ids are a
// no-op so deletes stay idempotent.
func (c *Client) Delete(ctx context.Context, transactionID string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rowNum, found, err := c.findRow(ctx, transactionID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:I%d", c.sheetName, rowNum, rowNum)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear row %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Cleared mirrored transaction row",
		"transaction_id", transactionID,
		"row", rowNum)
	return nil
}

func (c *Client) findRow(ctx context.Context, transactionID string) (int, bool, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("scan id column: %w", err)
	}
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == transactionID {
			return i + 1, true, nil
		}
	}
	return 0, false, nil
}

func (c *Client) nextRow(ctx context.Context) (int, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get sheet dimensions: %w", err)
	}
	return len(resp.Values) + 1, nil
}
