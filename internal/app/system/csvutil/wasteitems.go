// Package csvutil parses spreadsheet uploads into content documents.
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/civickey/civickey/internal/app/system/validators"
	"github.com/civickey/civickey/internal/domain/models"
)

// Upload size and row limits for CSV imports.
const (
	MaxUploadSize = 5 << 20 // 5 MB
	MaxRows       = 5000
)

// maxReported caps how many bad rows are listed in the error.
const maxReported = 5

// ParseWasteItems reads a waste-item catalog with the columns
//
//	name_fr,name_en,bin_id,note_fr,note_en,keywords
//
// The header row is optional and keywords are separated by semicolons.
// Every row is checked before anything is returned, so a rejected upload
// never reaches the store. Row problems come back as validators.Problems
// naming the offending lines.
func ParseWasteItems(r io.Reader) ([]models.WasteItem, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		items []models.WasteItem
		probs validators.Problems
		bad   int
		first = true
	)
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, validators.Problems{err.Error()}
		}
		line, _ := reader.FieldPos(0)
		if first {
			first = false
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			if isHeader(rec) {
				continue
			}
		}
		if blank(rec) {
			continue
		}
		if len(items) >= MaxRows {
			return nil, validators.Problems{fmt.Sprintf("too many rows (max %d)", MaxRows)}
		}

		it, reason := wasteItemRow(rec)
		if reason != "" {
			bad++
			if bad <= maxReported {
				probs = append(probs, fmt.Sprintf("line %d: %s", line, reason))
			}
			continue
		}
		it.SortOrder = len(items)
		items = append(items, it)
	}
	if bad > maxReported {
		probs = append(probs, fmt.Sprintf("and %d more invalid rows", bad-maxReported))
	}
	if len(probs) > 0 {
		return nil, probs
	}
	return items, nil
}

func wasteItemRow(rec []string) (models.WasteItem, string) {
	col := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	it := models.WasteItem{
		Name:  models.Localized{FR: col(0), EN: col(1)},
		BinID: col(2),
		Note:  models.Localized{FR: col(3), EN: col(4)},
	}
	for _, k := range strings.Split(col(5), ";") {
		if k = strings.TrimSpace(k); k != "" {
			it.Keywords = append(it.Keywords, k)
		}
	}
	switch {
	case it.Name.IsZero():
		return it, "name is required"
	case it.BinID == "":
		return it, "bin_id is required"
	}
	return it, ""
}

func isHeader(rec []string) bool {
	first := strings.ToLower(strings.TrimSpace(rec[0]))
	return first == "name_fr" || first == "nom"
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
