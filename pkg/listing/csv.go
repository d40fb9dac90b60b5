package listing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	domain "github.com/jdevries/crosslister/pkg/types"
)

// LoadListings reads every row of a listings CSV file into ListingRecords.
// The first row is the header; subsequent rows are indexed from 1 for the
// positional identifier fallback. When path is a directory it is treated as
// a single listing directory instead.
func LoadListings(
	path string,
	imagesDir string,
	platforms []domain.Platform,
) ([]*domain.ListingRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat listings path: %w", err)
	}
	if info.IsDir() {
		rec, err := LoadDirectory(path)
		if err != nil {
			return nil, err
		}
		return []*domain.ListingRecord{rec}, nil
	}

	file, err := os.Open(path) //nolint:gosec // CSV path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("opening listings CSV: %w", err)
	}
	defer file.Close()

	records, err := ReadListings(file, imagesDir, platforms)
	if err != nil {
		return nil, fmt.Errorf("reading listings CSV %s: %w", path, err)
	}
	return records, nil
}

// ReadListings parses CSV content from a reader. Short rows are padded with
// empty cells; extra cells beyond the header are ignored.
func ReadListings(
	r io.Reader,
	imagesDir string,
	platforms []domain.Platform,
) ([]*domain.ListingRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var listings []*domain.ListingRecord
	for index := 1; ; index++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", index, err)
		}

		row := make(RawRow, 0, len(header))
		for i, key := range header {
			value := ""
			if i < len(record) {
				value = record[i]
			}
			row = append(row, Cell{Key: key, Value: value})
		}

		rec := BuildListing(index, row, imagesDir, platforms)
		slog.Debug("loaded listing",
			"identifier", rec.Identifier,
			"overrides", len(rec.Overrides),
		)
		listings = append(listings, rec)
	}

	return listings, nil
}
