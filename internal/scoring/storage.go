package scoring

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ScoreStorage defines the interface for loading and saving finished games.
// This allows for mocking the storage layer during tests.
type ScoreStorage interface {
	// LoadAll loads all records from the persistence layer.
	LoadAll() ([]Record, error)
	// SaveAll saves a slice of records to the persistence layer, overwriting existing data.
	SaveAll(records []Record) error
}

// JSONFileStorage is an implementation of ScoreStorage that uses a file
// holding a stream of JSON records.
type JSONFileStorage struct {
	path string
}

// DefaultScoresPath is ~/.config/akaun-master/scores.json.
func DefaultScoresPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "akaun-master", "scores.json"), nil
}

// NewJSONFileStorage stores records at path, or at DefaultScoresPath when
// path is empty.
func NewJSONFileStorage(path string) (*JSONFileStorage, error) {
	if path == "" {
		p, err := DefaultScoresPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &JSONFileStorage{path: path}, nil
}

func (jfs *JSONFileStorage) Path() string { return jfs.path }

// LoadAll reads and decodes all records from the JSON file.
func (jfs *JSONFileStorage) LoadAll() ([]Record, error) {
	file, err := os.Open(jfs.path)
	// A missing file just means nobody has finished a game yet.
	if errors.Is(err, os.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error opening scores file for reading: %w", err)
	}
	defer file.Close()

	records := make([]Record, 0)
	decoder := json.NewDecoder(file)
	for decoder.More() {
		var r Record
		if err := decoder.Decode(&r); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("error decoding JSON record: %w", err)
		}
		records = append(records, r)
	}

	return records, nil
}

// SaveAll encodes and writes all records to the JSON file.
func (jfs *JSONFileStorage) SaveAll(records []Record) error {
	if err := os.MkdirAll(filepath.Dir(jfs.path), 0755); err != nil {
		return fmt.Errorf("error creating scores directory: %w", err)
	}

	file, err := os.OpenFile(jfs.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error opening scores file for writing: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)

	for _, r := range records {
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("error encoding JSON record: %w", err)
		}
	}

	return writer.Flush()
}
