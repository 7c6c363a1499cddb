package seeder

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alexivanou/aqimap-api/internal/config"
	"github.com/alexivanou/aqimap-api/internal/model"
	"github.com/alexivanou/aqimap-api/internal/provider"
)

// Snapshot file names inside the data directory
const (
	ReadingsFile  = "results.json"
	ForecastsFile = "forecast_results.json"
	WidgetsFile   = "province_widget.json"
)

// Parser reads snapshot files written by the fetcher
type Parser struct {
	dataDir   string
	batchSize int
}

// NewParser creates a new parser instance with config
func NewParser(seederCfg config.SeederConfig) *Parser {
	batchSize := seederCfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Parser{
		dataDir:   seederCfg.DataDir,
		batchSize: batchSize,
	}
}

// open returns the named file, or the matching entry of name-without-ext.zip
func (p *Parser) open(name string) (io.ReadCloser, error) {
	zipPath := filepath.Join(p.dataDir, strings.TrimSuffix(name, filepath.Ext(name))+".zip")
	if _, err := os.Stat(zipPath); err == nil {
		return openFromZip(zipPath, name)
	}

	file, err := os.Open(filepath.Join(p.dataDir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return file, nil
}

type zipEntry struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (z *zipEntry) Close() error {
	err := z.ReadCloser.Close()
	if cerr := z.archive.Close(); err == nil {
		err = cerr
	}
	return err
}

func openFromZip(zipPath, name string) (io.ReadCloser, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}

	for _, f := range r.File {
		if filepath.Base(f.Name) == name {
			rc, err := f.Open()
			if err != nil {
				r.Close()
				return nil, fmt.Errorf("failed to open file in zip: %w", err)
			}
			return &zipEntry{ReadCloser: rc, archive: r}, nil
		}
	}

	r.Close()
	return nil, fmt.Errorf("no %s found in zip", name)
}

func (p *Parser) decode(name string, out any) error {
	rc, err := p.open(name)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := json.NewDecoder(rc).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// ParseReadings parses results.json, a map of province to city response.
// Provinces whose response is not a success are skipped and returned.
func (p *Parser) ParseReadings() ([]model.Reading, []string, error) {
	var raw map[string]provider.CityResponse
	if err := p.decode(ReadingsFile, &raw); err != nil {
		return nil, nil, err
	}

	var (
		readings []model.Reading
		skipped  []string
	)
	for _, province := range sortedKeys(raw) {
		resp := raw[province]
		reading, err := resp.Reading(province)
		if err != nil {
			skipped = append(skipped, province)
			continue
		}
		readings = append(readings, reading)
	}
	return readings, skipped, nil
}

// ParseForecasts parses forecast_results.json, a map of province to daily
// forecast. Entries that only carry a status are skipped.
func (p *Parser) ParseForecasts() (map[string][]model.ForecastDay, error) {
	var raw map[string]json.RawMessage
	if err := p.decode(ForecastsFile, &raw); err != nil {
		return nil, err
	}

	forecasts := make(map[string][]model.ForecastDay, len(raw))
	for province, msg := range raw {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(msg, &fields); err != nil {
			continue
		}
		if _, failed := fields["status"]; failed {
			continue
		}

		var daily provider.Daily
		if err := json.Unmarshal(msg, &daily); err != nil {
			return nil, fmt.Errorf("failed to decode forecast for %s: %w", province, err)
		}
		if days := daily.Days(province); len(days) > 0 {
			forecasts[province] = days
		}
	}
	return forecasts, nil
}

// ParseWidgetKeys parses province_widget.json. A missing file yields no keys.
func (p *Parser) ParseWidgetKeys() ([]model.WidgetKey, error) {
	var raw map[string]string
	if err := p.decode(WidgetsFile, &raw); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	keys := make([]model.WidgetKey, 0, len(raw))
	for _, province := range sortedKeys(raw) {
		if raw[province] == "" {
			continue
		}
		keys = append(keys, model.WidgetKey{Province: province, Key: raw[province]})
	}
	return keys, nil
}

// Batches splits readings into slices of at most the configured batch size
func (p *Parser) Batches(readings []model.Reading, fn func([]model.Reading) error) error {
	for i := 0; i < len(readings); i += p.batchSize {
		end := i + p.batchSize
		if end > len(readings) {
			end = len(readings)
		}
		if err := fn(readings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
