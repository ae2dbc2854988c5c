package store

import (
	"encoding/json"

	"github.com/base-indexer/baseindexer/internal/enrich"
)

func encodeTopContracts(rows []enrich.ContractActivity) (string, error) {
	if rows == nil {
		rows = []enrich.ContractActivity{}
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
