package repository

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/change-compliance/internal/domain"
)

//go:embed seed/tickets.yaml
var defaultSeed []byte

// LoadSeed returns the seed records from path, or the embedded reference
// seed when path is empty.
func LoadSeed(path string) ([]domain.TicketRecord, error) {
	if path == "" {
		return DecodeSeed(bytes.NewReader(defaultSeed))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed %s: %w", path, err)
	}
	defer f.Close()

	records, err := DecodeSeed(f)
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", path, err)
	}
	return records, nil
}

// DecodeSeed parses a YAML sequence of ticket records. Unknown keys are
// rejected.
func DecodeSeed(r io.Reader) ([]domain.TicketRecord, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var records []domain.TicketRecord
	if err := dec.Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("decode seed: empty document")
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return records, nil
}

// LoadCatalog reads the seed at path (or the embedded seed) and builds the
// catalog from it.
func LoadCatalog(path string) (TicketRepository, error) {
	records, err := LoadSeed(path)
	if err != nil {
		return nil, err
	}
	return NewCatalog(records)
}
