package cmd

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/hr"
	"github.com/ensa-hoceima/hr-assistant/internal/store"
)

//go:embed seed.schema.json
var seedSchema string

// Seed is the document accepted by the seed command. Records may reference
// each other by id, so ids should be set when they do.
type Seed struct {
	Employees   []*hr.Employee   `json:"employees"`
	Evaluations []*hr.Evaluation `json:"evaluations"`
	Internships []*hr.Internship `json:"internships"`
	Projects    []*hr.Project    `json:"projects"`
	Trainings   []*hr.Training   `json:"trainings"`
	Equipment   []*hr.Equipment  `json:"equipment"`
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load HR records from a JSON file into the store",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		rt := setup(ctx, needs{store: true})
		defer rt.close()

		path, _ := cmd.Flags().GetString("file")
		data, err := os.ReadFile(path)
		if err != nil {
			rt.logger.Fatal("reading the seed file", zap.Error(err))
		}
		seed, err := parseSeed(data)
		if err != nil {
			rt.logger.Fatal("parsing the seed file", zap.String("filename", path), zap.Error(err))
		}

		counts, err := seedRecords(ctx, rt.store, seed, time.Now())
		if err != nil {
			rt.logger.Fatal("seeding", zap.Error(err))
		}
		rt.logger.Info("store seeded", zap.Any("records", counts))
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringP("file", "f", "", "JSON file with the records")
	seedCmd.MarkFlagRequired("file")
}

// parseSeed checks data against the seed schema before decoding it.
func parseSeed(data []byte) (*Seed, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(seedSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("invalid seed: %s", strings.Join(msgs, "; "))
	}

	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, err
	}
	return &seed, nil
}

// seedRecords saves every record, referenced kinds first. It stops at the
// first invalid record.
func seedRecords(ctx context.Context, st *store.Store, seed *Seed, now time.Time) (map[string]int, error) {
	counts := map[string]int{}

	for _, e := range seed.Employees {
		if err := st.SaveEmployee(ctx, e); err != nil {
			return counts, fmt.Errorf("employee %q: %w", e.Name, err)
		}
		counts["employees"]++
	}
	for _, p := range seed.Projects {
		if err := st.SaveProject(ctx, p); err != nil {
			return counts, fmt.Errorf("project %q: %w", p.Title, err)
		}
		counts["projects"]++
	}
	for _, in := range seed.Internships {
		if err := st.SaveInternship(ctx, in); err != nil {
			return counts, fmt.Errorf("internship of %q: %w", in.StudentName, err)
		}
		counts["internships"]++
	}
	for _, t := range seed.Trainings {
		if err := st.SaveTraining(ctx, t); err != nil {
			return counts, fmt.Errorf("training %q: %w", t.Title, err)
		}
		counts["trainings"]++
	}
	for _, eq := range seed.Equipment {
		if err := st.SaveEquipment(ctx, eq); err != nil {
			return counts, fmt.Errorf("equipment %q: %w", eq.Name, err)
		}
		counts["equipment"]++
	}
	for _, ev := range seed.Evaluations {
		fillEvaluation(ev, now)
		if err := st.SaveEvaluation(ctx, ev); err != nil {
			return counts, fmt.Errorf("evaluation %s: %w", ev.Reference, err)
		}
		counts["evaluations"]++
	}
	return counts, nil
}

// fillEvaluation gives a seeded evaluation the id, reference, date and state a
// new one would have.
func fillEvaluation(ev *hr.Evaluation, now time.Time) {
	fresh := hr.NewEvaluation(ev.EmployeeID, now)
	if ev.ID == "" {
		ev.ID = fresh.ID
	}
	if ev.Reference == "" {
		ev.Reference = fresh.Reference
	}
	if ev.Date.IsZero() {
		ev.Date = fresh.Date
	}
	if ev.State == "" {
		ev.State = fresh.State
	}
}
