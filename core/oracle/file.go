package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"

	tmos "github.com/tendermint/tendermint/libs/os"
)

type priceFile struct {
	Rate      string `json:"rate"`
	UpdatedAt int64  `json:"updated_at"`
}

// File is a Source reading the price a relayer writes to a JSON file.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Price(context.Context) (Price, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return Price{}, err
	}

	var p priceFile
	if err := json.Unmarshal(data, &p); err != nil {
		return Price{}, fmt.Errorf("decode %s: %w", f.path, err)
	}

	rate, ok := big.NewInt(0).SetString(p.Rate, 10)
	if !ok {
		return Price{}, fmt.Errorf("rate %q in %s is not a number", p.Rate, f.path)
	}

	return Price{Rate: rate, UpdatedAt: time.Unix(p.UpdatedAt, 0)}, nil
}

// WritePriceFile stores rate stamped with updatedAt at path.
func WritePriceFile(path string, rate *big.Int, updatedAt time.Time) error {
	data, err := json.Marshal(priceFile{Rate: rate.String(), UpdatedAt: updatedAt.Unix()})
	if err != nil {
		return err
	}

	return tmos.WriteFile(path, data, 0644)
}
