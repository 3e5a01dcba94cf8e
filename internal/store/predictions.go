package store

import (
	"encoding/json"
	"os"
	"strings"

	"crypto-watchtower/internal/domain"
)

// LoadPredictions reads the user's prediction targets from path. The file
// maps asset symbols to lists of targets:
//
//	{"BTC": [{"target": 120000, "currency": "USD", "source": "...", "note": "..."}]}
//
// A missing or corrupt file yields no targets. The result is static
// configuration; nothing in the monitor mutates it.
func LoadPredictions(path string) map[string][]domain.PredictionTarget {
	out := make(map[string][]domain.PredictionTarget)
	data, err := os.ReadFile(path)
	if err != nil {
		return out
	}
	var raw map[string][]domain.PredictionTarget
	if err := json.Unmarshal(data, &raw); err != nil {
		return out
	}
	for asset, targets := range raw {
		for i := range targets {
			targets[i].Asset = asset
			targets[i].Index = i
			targets[i].Currency = strings.ToUpper(targets[i].Currency)
			if targets[i].Currency == "" {
				targets[i].Currency = "USD"
			}
		}
		out[asset] = targets
	}
	return out
}
