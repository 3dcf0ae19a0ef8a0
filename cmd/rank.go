package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/export"
	"github.com/ensa-hoceima/hr-assistant/internal/matching"
	"github.com/ensa-hoceima/hr-assistant/internal/service"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank students for an internship or supervisors for a project",
	Long: `Rank candidates for an opportunity.

With --kind internship the opportunity file holds an internship offer and the
candidates file a JSON list of students. With --kind project the opportunity
file holds a project and the candidates file a list of supervisors; --project
ranks the employees of the store for a stored project instead.`,
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("kind", "k", string(matching.KindInternship), "ranking kind: internship or project")
	rankCmd.Flags().StringP("opportunity", "o", "", "JSON file with the internship or project")
	rankCmd.Flags().StringP("candidates", "c", "", "JSON file with the students or supervisors")
	rankCmd.Flags().String("project", "", "id of a stored project to rank supervisors for")
	rankCmd.Flags().String("export", "", "write the ranking to this .xlsx file")
	rankCmd.Flags().Bool("no-filter", false, "print the ranking without threshold, exclude file and top steps")
}

func rank(cmd *cobra.Command) {
	ctx := cmd.Context()
	kind, _ := cmd.Flags().GetString("kind")
	projectID, _ := cmd.Flags().GetString("project")

	// Embeddings need a provider when configured; the store only for stored projects.
	rt := setup(ctx, needs{optionalAI: true, store: projectID != ""})
	defer rt.close()

	svc, err := rt.matchingService()
	if err != nil {
		rt.logger.Fatal("building the matching engine", zap.Error(err))
	}

	ranking, title, err := buildRanking(ctx, cmd, svc, matching.Kind(kind), projectID)
	if err == nil {
		rt.logger.Info("ranked candidates", zap.String("kind", kind), zap.Int("count", len(ranking.Items)))
		if skip, _ := cmd.Flags().GetBool("no-filter"); !skip {
			ranking, err = svc.Filter(ctx, rt.filterConfig(), ranking)
		}
	}
	if !reportRanking(cmd, rt.logger, ranking, err) {
		return
	}

	if path, _ := cmd.Flags().GetString("export"); path != "" {
		written, err := export.Ranking(path, title, ranking)
		if err != nil {
			rt.logger.Fatal("exporting the ranking", zap.Error(err))
		}
		rt.logger.Info("ranking exported", zap.String("filename", written))
	}
}

const noRanking = "no ranking could be produced"

// reportRanking prints the ranking, or logs why there is none. It reports
// whether a ranking was printed.
func reportRanking(cmd *cobra.Command, log *zap.Logger, ranking *matching.Ranking, err error) bool {
	if err != nil {
		log.Warn("ranking failed", zap.Error(err))
		log.Info(noRanking)
		return false
	}
	if ranking == nil {
		log.Info(noRanking)
		return false
	}
	printJSON(cmd, ranking)
	return true
}

func buildRanking(ctx context.Context, cmd *cobra.Command, svc *service.MatchingService, kind matching.Kind, projectID string) (*matching.Ranking, string, error) {
	opportunity, _ := cmd.Flags().GetString("opportunity")
	candidates, _ := cmd.Flags().GetString("candidates")

	switch kind {
	case matching.KindInternship:
		var in matching.Internship
		var students []matching.Student
		if err := readJSON(opportunity, &in); err != nil {
			return nil, "", err
		}
		if err := readJSON(candidates, &students); err != nil {
			return nil, "", err
		}
		r, err := svc.Students(ctx, students, in)
		return r, in.Title, err
	case matching.KindProject:
		if projectID != "" {
			r, err := svc.Supervisors(ctx, projectID)
			return r, "Supervisors for project " + projectID, err
		}
		var p matching.Project
		var supervisors []matching.Supervisor
		if err := readJSON(opportunity, &p); err != nil {
			return nil, "", err
		}
		if err := readJSON(candidates, &supervisors); err != nil {
			return nil, "", err
		}
		r, err := svc.SupervisorCandidates(ctx, supervisors, p)
		return r, p.Title, err
	default:
		return nil, "", fmt.Errorf("unknown ranking kind %q", kind)
	}
}

func readJSON(path string, v any) error {
	if path == "" {
		return fmt.Errorf("a JSON file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// printJSON writes v indented to the command output.
func printJSON(cmd *cobra.Command, v any) {
	pretty, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
}
