package pipeline

import (
	"log/slog"

	"github.com/couchcryptid/hechos-map-service/internal/domain"
)

// Transformer turns a raw document into a normalized collection.
type Transformer struct {
	normalizer domain.Normalizer
	logger     *slog.Logger
}

// NewTransformer creates a Transformer around the given normalizer.
func NewTransformer(normalizer domain.Normalizer, logger *slog.Logger) *Transformer {
	return &Transformer{
		normalizer: normalizer,
		logger:     logger,
	}
}

// Transform decodes data and normalizes every record. A document that cannot
// be decoded yields an empty collection and the decode error.
func (t *Transformer) Transform(data []byte) (domain.Collection, error) {
	raws, err := domain.DecodeDocument(data)
	if err != nil {
		return domain.Collection{Events: []domain.Event{}}, err
	}

	c := t.normalizer.NormalizeCollection(raws)
	if c.Received > 0 {
		for _, f := range c.KeyMap.Unresolved() {
			t.logger.Debug("field not resolved", "field", string(f))
		}
	}
	return c, nil
}
