package filtering

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/ensa-hoceima/hr-assistant/internal/matching"
)

// ExcludedCandidates is the on-disk format of the exclude file.
type ExcludedCandidates struct {
	Items []*ExcludedCandidate
}

type ExcludedCandidate struct {
	ID         string
	Name       string
	Reason     string
	ExcludedAt time.Time
}

// LoadExcluded reads an exclude file. A missing or empty file yields an empty list.
func LoadExcluded(path string) (*ExcludedCandidates, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ExcludedCandidates{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedCandidates{}, nil
	}

	var excluded ExcludedCandidates
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// ToExcluded converts ranked candidates into exclude entries.
func ToExcluded(items []matching.Ranked, reason string) *ExcludedCandidates {
	excluded := &ExcludedCandidates{}
	for _, item := range items {
		excluded.Items = append(excluded.Items, &ExcludedCandidate{
			ID:         item.CandidateID,
			Name:       item.CandidateName,
			Reason:     reason,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

func (e *ExcludedCandidates) Append(s *ExcludedCandidates) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedCandidates) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, c := range e.Items {
		ids = append(ids, c.ID)
	}
	return ids
}

func (e *ExcludedCandidates) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
