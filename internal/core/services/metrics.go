package services

import (
	"time"

	"github.com/custodia-labs/pricecollect/internal/core/ports/driven"
)

// nopMetrics discards everything. Used when no Metrics port is configured.
type nopMetrics struct{}

func (nopMetrics) CatalogLoaded(bool, int, time.Duration) {}
func (nopMetrics) SuggestionServed(string, int)           {}
func (nopMetrics) ResolveLookup(string, bool)             {}
func (nopMetrics) ObservationConfirmed(string)            {}
func (nopMetrics) PersistCompleted(bool, time.Duration)   {}

func metricsOrNop(m driven.Metrics) driven.Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
