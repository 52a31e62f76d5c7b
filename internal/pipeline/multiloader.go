package pipeline

import (
	"context"

	"github.com/couchcryptid/fire-inspection-etl/internal/domain"
)

// MultiLoader fans a batch out to several loaders in order. It stops at the
// first failure and the pipeline retries the whole batch, so loaders ahead of
// the failing one see the batch again.
type MultiLoader struct {
	loaders []BatchLoader
}

// NewMultiLoader combines loaders. Nil loaders are ignored.
func NewMultiLoader(loaders ...BatchLoader) *MultiLoader {
	m := &MultiLoader{}
	for _, l := range loaders {
		if l != nil {
			m.loaders = append(m.loaders, l)
		}
	}
	return m
}

func (m *MultiLoader) LoadBatch(ctx context.Context, reports []domain.InspectionReport) error {
	for _, l := range m.loaders {
		if err := l.LoadBatch(ctx, reports); err != nil {
			return err
		}
	}
	return nil
}
