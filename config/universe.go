package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"swingTraderBot/internal/domain"
)

// UniverseEntry is one instrument definition in the universe file.
type UniverseEntry struct {
	Symbol   string `yaml:"symbol" validate:"required"`
	BrokerID string `yaml:"broker_id" validate:"required"`
	LotSize  int    `yaml:"lot_size" validate:"required,gt=0"`
}

type universeFile struct {
	Instruments []UniverseEntry `yaml:"instruments" validate:"required,min=1,dive"`
}

// LoadUniverse reads and validates the instrument universe. The
// universe is fixed for the lifetime of a run; it is loaded once at
// startup and cached by the caller.
func LoadUniverse(path string) ([]domain.Instrument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read universe file '%s': %w", path, err)
	}

	var file universeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse universe file '%s': %w", path, err)
	}

	validate := validator.New()
	if err := validate.Struct(&file); err != nil {
		return nil, fmt.Errorf("universe file '%s' is invalid: %w", path, err)
	}

	seen := make(map[string]struct{}, len(file.Instruments))
	instruments := make([]domain.Instrument, 0, len(file.Instruments))
	for _, entry := range file.Instruments {
		if _, dup := seen[entry.Symbol]; dup {
			return nil, fmt.Errorf("universe file '%s' lists symbol %s more than once", path, entry.Symbol)
		}
		seen[entry.Symbol] = struct{}{}
		instruments = append(instruments, domain.Instrument{
			Symbol:   entry.Symbol,
			BrokerID: entry.BrokerID,
			LotSize:  entry.LotSize,
		})
	}
	return instruments, nil
}
