package commands

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgeo/internal/cli/config"
	"github.com/leapstack-labs/leapgeo/internal/cli/output"
	"github.com/leapstack-labs/leapgeo/pkg/format"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run a project health check",
		Long: `Analyze the LeapGeo environment for potential issues.

The doctor command checks:
- Configuration file discovery
- Basemap readability and reference system
- Overlay run journal
- Registered layer format drivers

It reports a health score (0-100) and actionable recommendations.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run health check
  leapgeo doctor

  # Output as JSON
  leapgeo doctor -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Checks          []HealthCheck `json:"checks"`
	Score           int           `json:"score"`
	Recommendations []string      `json:"recommendations,omitempty"`
	IssueCount      int           `json:"issue_count"`
}

// HealthCheck is a single health check result.
type HealthCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "pass", "warn", "error"
	Detail string `json:"detail,omitempty"`
}

func runDoctor(cmd *cobra.Command) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	out := buildDoctorOutput(cmdCtx)

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		return renderDoctorMarkdown(r, out)
	default:
		return renderDoctorText(r, out)
	}
}

func buildDoctorOutput(cmdCtx *CommandContext) *DoctorOutput {
	cfg := cmdCtx.Cfg

	checks := []HealthCheck{
		checkConfigFile(),
		checkBasemap(cfg.Basemap),
		checkJournal(cmdCtx),
		checkFormats(),
	}

	issues := 0
	for _, c := range checks {
		if c.Status != "pass" {
			issues++
		}
	}

	return &DoctorOutput{
		Checks:          checks,
		Score:           calculateHealthScore(checks),
		Recommendations: generateRecommendations(checks),
		IssueCount:      issues,
	}
}

func checkConfigFile() HealthCheck {
	check := HealthCheck{Name: "config file"}
	if path := config.GetConfigFileUsed(); path != "" {
		check.Status = "pass"
		check.Detail = path
		return check
	}
	check.Status = "warn"
	check.Detail = "no leapgeo.yaml found (using defaults)"
	return check
}

func checkBasemap(path string) HealthCheck {
	check := HealthCheck{Name: "basemap"}
	if path == "" {
		check.Status = "warn"
		check.Detail = "not configured"
		return check
	}

	if _, err := os.Stat(path); err != nil {
		check.Status = "error"
		check.Detail = fmt.Sprintf("%s: not readable", path)
		return check
	}

	driver, err := format.ForPath(path)
	if err != nil {
		check.Status = "error"
		check.Detail = err.Error()
		return check
	}

	ds, err := driver.Read(path)
	if err != nil {
		check.Status = "error"
		check.Detail = fmt.Sprintf("reading %s: %v", path, err)
		return check
	}

	check.Status = "pass"
	check.Detail = fmt.Sprintf("%s (%d features, %s)", path, ds.Len(), ds.CRS.String())
	return check
}

func checkJournal(cmdCtx *CommandContext) HealthCheck {
	check := HealthCheck{Name: "journal"}
	cfg := cmdCtx.Cfg

	if cfg.JournalPath == ":memory:" {
		check.Status = "warn"
		check.Detail = "in-memory journal (runs are not persisted)"
		return check
	}

	eng, err := createEngine(cfg, cmdCtx.Logger)
	if err != nil {
		check.Status = "error"
		check.Detail = fmt.Sprintf("opening journal: %v", err)
		return check
	}
	defer func() { _ = eng.Close() }()

	runs, err := eng.GetJournal().ListRuns(0)
	if err != nil {
		check.Status = "error"
		check.Detail = fmt.Sprintf("reading journal: %v", err)
		return check
	}

	check.Status = "pass"
	check.Detail = fmt.Sprintf("%s (%d runs recorded)", cfg.JournalPath, len(runs))
	return check
}

func checkFormats() HealthCheck {
	check := HealthCheck{Name: "layer formats"}
	names := format.List()
	if len(names) == 0 {
		check.Status = "error"
		check.Detail = "no layer format drivers registered"
		return check
	}
	check.Status = "pass"
	check.Detail = strings.Join(names, ", ")
	return check
}

// calculateHealthScore computes a health score from 0-100. Errors weigh
// more than warnings.
func calculateHealthScore(checks []HealthCheck) int {
	score := 100
	for _, check := range checks {
		switch check.Status {
		case "error":
			score -= 25
		case "warn":
			score -= 10
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// generateRecommendations creates actionable recommendations based on findings.
func generateRecommendations(checks []HealthCheck) []string {
	var recommendations []string

	for _, check := range checks {
		if check.Status == "pass" {
			continue
		}
		switch check.Name {
		case "config file":
			recommendations = append(recommendations, "Run 'leapgeo init' to create a starter leapgeo.yaml")
		case "basemap":
			if check.Status == "warn" {
				recommendations = append(recommendations, "Set basemap in leapgeo.yaml or pass --basemap to load one")
			} else {
				recommendations = append(recommendations, "Fix the basemap path or convert the layer to a supported format")
			}
		case "journal":
			if check.Status == "warn" {
				recommendations = append(recommendations, "Point journal at a file path to keep run history across sessions")
			} else {
				recommendations = append(recommendations, "Check permissions on the journal directory or pass --journal")
			}
		case "layer formats":
			recommendations = append(recommendations, "Rebuild with the geojson and shapefile drivers linked in")
		}
	}

	return recommendations
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header.Render("LeapGeo Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	titleCaser := cases.Title(language.English)
	for _, check := range out.Checks {
		icon := styles.Success.Render("✓")
		switch check.Status {
		case "warn":
			icon = styles.Warning.Render("!")
		case "error":
			icon = styles.Error.Render("✗")
		}

		line := fmt.Sprintf("   %s %s", icon, titleCaser.String(check.Name))
		if check.Detail != "" {
			line += styles.Muted.Render(": " + check.Detail)
		}
		r.Println(line)
	}
	r.Println("")

	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Header(2, "Recommendations")
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println("# LeapGeo Health Report")
	r.Println("")

	r.Println("## Checks")
	r.Println("")

	titleCaser := cases.Title(language.English)
	for _, check := range out.Checks {
		status := "PASS"
		switch check.Status {
		case "warn":
			status = "WARN"
		case "error":
			status = "ERROR"
		}
		r.Printf("- **[%s]** %s", status, titleCaser.String(check.Name))
		if check.Detail != "" {
			r.Printf(": %s", check.Detail)
		}
		r.Println("")
	}
	r.Println("")

	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}
