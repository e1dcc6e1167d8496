package tui

import "errors"

// ErrMissingSuggestionService is returned when the suggestion service is not provided.
var ErrMissingSuggestionService = errors.New("tui: suggestion service is required")

// ErrMissingResolverService is returned when the resolver service is not provided.
var ErrMissingResolverService = errors.New("tui: resolver service is required")

// ErrMissingObservationService is returned when the observation service is not provided.
var ErrMissingObservationService = errors.New("tui: observation service is required")

// ErrMissingPriceFormatter is returned when the price formatter is not provided.
var ErrMissingPriceFormatter = errors.New("tui: price formatter is required")
