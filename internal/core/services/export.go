package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driven"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driving"
	"github.com/custodia-labs/pricecollect/internal/logger"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// Delimited text layout.
const (
	FieldDelimiter  = ";"
	RecordDelimiter = "\n"
	NotAvailable    = "N/A"
)

// ExportHeader holds the fixed column titles, in column order.
var ExportHeader = []string{"Localization", "Concorrente", "IDProduto", "PrecoColetado", "NomeProduto", "Marca"}

var cellReplacer = strings.NewReplacer(FieldDelimiter, ",", "\r\n", " ", "\n", " ", "\r", " ")

func cell(value string) string {
	value = strings.TrimSpace(cellReplacer.Replace(value))
	if value == "" {
		return NotAvailable
	}
	return value
}

// ToDelimitedText serializes observations as semicolon separated records
// preceded by the header row. Records are separated by a newline with no
// trailing newline. Empty values render as "N/A" so every record has the
// same number of fields. Prices use the canonical decimal form.
func ToDelimitedText(observations []domain.Observation, prices driving.PriceFormatter) string {
	rows := make([]string, 0, len(observations)+1)
	rows = append(rows, strings.Join(ExportHeader, FieldDelimiter))

	for _, obs := range observations {
		location := ""
		if obs.Location != nil {
			location = obs.Location.String()
		}
		fields := []string{
			cell(location),
			cell(obs.Competitor),
			cell(obs.ProductKey),
			cell(prices.Canonical(obs.PriceMinor)),
			cell(obs.ProductName),
			cell(obs.Brand),
		}
		rows = append(rows, strings.Join(fields, FieldDelimiter))
	}

	return strings.Join(rows, RecordDelimiter)
}

// ExportFileStem names export files "<device>_<timestamp>" where the
// timestamp is ISO 8601 UTC with ':' and '.' replaced by '-'.
func ExportFileStem(device string, at time.Time) string {
	device = strings.TrimSpace(device)
	if device == "" {
		device = domain.DefaultDeviceName
	}
	device = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, device)

	ts := at.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return device + "_" + ts
}

// ExportService writes the observation list to the file sink and uploads
// the raw list when an uploader is configured.
type ExportService struct {
	observations driving.ObservationService
	prices       driving.PriceFormatter
	sink         driven.FileSink
	uploader     driven.Uploader
	deviceName   string
	now          func() time.Time
}

// NewExportService creates an export service. The uploader is optional.
func NewExportService(
	observations driving.ObservationService,
	prices driving.PriceFormatter,
	sink driven.FileSink,
	uploader driven.Uploader,
	deviceName string,
) *ExportService {
	return &ExportService{
		observations: observations,
		prices:       prices,
		sink:         sink,
		uploader:     uploader,
		deviceName:   deviceName,
		now:          time.Now,
	}
}

// Text returns the delimited text export of the current list.
func (s *ExportService) Text() string {
	return ToDelimitedText(s.observations.List(), s.prices)
}

// Export writes "<stem>.csv" through the file sink and, when an uploader is
// set, uploads the list as "<stem>.json". An upload failure is reported in
// the result; the export itself still succeeds.
func (s *ExportService) Export(ctx context.Context) (domain.ExportResult, error) {
	logger.Section("Export")

	list := s.observations.List()
	if len(list) == 0 {
		return domain.ExportResult{}, domain.ErrNothingToExport
	}
	if s.sink == nil {
		return domain.ExportResult{}, errors.New("no export file sink configured")
	}

	stem := ExportFileStem(s.deviceName, s.now())
	result := domain.ExportResult{
		FileName: stem + ".csv",
		Rows:     len(list),
	}

	location, err := s.sink.Save(ctx, result.FileName, []byte(ToDelimitedText(list, s.prices)))
	if err != nil {
		return result, fmt.Errorf("save export %s: %w", result.FileName, err)
	}
	result.Location = location
	logger.Debug("export written", "file", result.FileName, "location", location, "rows", len(list))

	if s.uploader == nil {
		return result, nil
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		result.UploadErr = fmt.Errorf("%w: encode list: %w", domain.ErrUploadFailed, err)
		return result, nil
	}
	result.UploadName = stem + ".json"
	if err := s.uploader.Upload(ctx, result.UploadName, "application/json", data); err != nil {
		result.UploadErr = fmt.Errorf("%w: %w", domain.ErrUploadFailed, err)
		logger.Warn("upload failed, export kept locally", "name", result.UploadName, "error", err)
		return result, nil
	}
	result.Uploaded = true
	return result, nil
}
