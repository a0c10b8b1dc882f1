package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"socialshop/internal/domain"

	"go.uber.org/zap"
)

type ItemWriter interface {
	Upsert(ctx context.Context, item domain.ShopItem) (*domain.ShopItem, error)
}

type SellerWriter interface {
	Ensure(ctx context.Context, key, displayName, avatarURL string) (*domain.Seller, error)
}

// CSVImporter reads shop item CSV exports and inserts/updates items. Rows
// without a key that only carry an image url belong to the item above them.
type CSVImporter struct {
	reader  *csv.Reader
	items   ItemWriter
	sellers SellerWriter
	logger  *zap.Logger

	sellerIDs map[string]string
}

func NewCSVImporter(r io.Reader, items ItemWriter, sellers SellerWriter, logger *zap.Logger) *CSVImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:    csvr,
		items:     items,
		sellers:   sellers,
		logger:    logger,
		sellerIDs: make(map[string]string),
	}
}

type csvRow struct {
	ID            string
	Key           string
	Title         string
	Desc          string
	Cents         int64
	OriginalCents *int64
	Stock         int
	Category      string
	SellerKey     string
	SellerName    string
	SellerAvatar  string
	ImageURLs     []string
}

// Run parses CSV rows and upserts items grouped by item key.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *csvRow
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}

		row, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if row == nil {
			continue
		}

		if row.Key != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		if current != nil && len(row.ImageURLs) > 0 {
			current.ImageURLs = append(current.ImageURLs, row.ImageURLs...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	i.logger.Info("import finished", zap.Int("items", imported), zap.Int("sellers", len(i.sellerIDs)))
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.Key == "" || row.Title == "" || row.Cents <= 0 || row.SellerKey == "" {
		return fmt.Errorf("invalid item row (missing required fields) for key %q", row.Key)
	}
	if row.ID != "" && len(row.ID) != 36 {
		return fmt.Errorf("invalid id for key %q: %s", row.Key, row.ID)
	}

	sellerID, err := i.sellerID(ctx, row)
	if err != nil {
		return err
	}

	_, err = i.items.Upsert(ctx, domain.ShopItem{
		ID:                 row.ID,
		Key:                row.Key,
		Title:              row.Title,
		Description:        row.Desc,
		PriceCents:         row.Cents,
		OriginalPriceCents: row.OriginalCents,
		Images:             row.ImageURLs,
		Stock:              row.Stock,
		Category:           row.Category,
		Seller:             domain.SellerRef{ID: sellerID},
	})
	if err != nil {
		return fmt.Errorf("upsert item %q: %w", row.Key, err)
	}
	return nil
}

func (i *CSVImporter) sellerID(ctx context.Context, row *csvRow) (string, error) {
	if id, ok := i.sellerIDs[row.SellerKey]; ok {
		return id, nil
	}
	name := row.SellerName
	if name == "" {
		name = row.SellerKey
	}
	s, err := i.sellers.Ensure(ctx, row.SellerKey, name, row.SellerAvatar)
	if err != nil {
		return "", fmt.Errorf("ensure seller %q: %w", row.SellerKey, err)
	}
	i.sellerIDs[row.SellerKey] = s.ID
	return s.ID, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	key := pick(record, index, "key")
	imageURL := pick(record, index, "images.url")
	if key == "" && imageURL == "" {
		return nil, nil
	}

	row := &csvRow{
		ID:           pick(record, index, "id"),
		Key:          key,
		Title:        pick(record, index, "title"),
		Desc:         pick(record, index, "description"),
		Category:     strings.ToLower(pick(record, index, "category")),
		SellerKey:    pick(record, index, "seller.key"),
		SellerName:   pick(record, index, "seller.name"),
		SellerAvatar: pick(record, index, "seller.avatar"),
	}
	if imageURL != "" {
		row.ImageURLs = []string{imageURL}
	}
	if key == "" {
		return row, nil
	}

	var err error
	if row.Cents, err = parseCents(pick(record, index, "price_cents")); err != nil {
		return nil, fmt.Errorf("price_cents: %w", err)
	}
	if raw := pick(record, index, "original_price_cents"); raw != "" {
		orig, err := parseCents(raw)
		if err != nil {
			return nil, fmt.Errorf("original_price_cents: %w", err)
		}
		row.OriginalCents = &orig
	}
	if raw := pick(record, index, "stock"); raw != "" {
		if row.Stock, err = strconv.Atoi(raw); err != nil || row.Stock < 0 {
			return nil, fmt.Errorf("stock: invalid value %q", raw)
		}
	}
	return row, nil
}

func parseCents(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid value %q", raw)
	}
	return n, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
