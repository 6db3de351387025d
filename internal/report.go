package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Video report file names written next to the audio root
const (
	VideoReportMarkdown = "audio_infos.md"
	VideoReportCSV      = "audio_infos.csv"
)

var videoHeader = table.Row{"Title", "Audio Dir", "Published at", "ID", "Source URL"}

func videoTable(videos []VideoInfo) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(videoHeader)
	for _, v := range videos {
		tw.AppendRow(table.Row{v.Title, v.AudioDir, v.PublishedAt, v.ID, v.SourceURL})
	}
	return tw
}

// VideoMarkdownTable renders videos as a markdown table
func VideoMarkdownTable(videos []VideoInfo) string {
	return videoTable(videos).RenderMarkdown()
}

// VideoCSV renders videos as CSV
func VideoCSV(videos []VideoInfo) string {
	return videoTable(videos).RenderCSV()
}

// WriteVideoReports writes audio_infos.md and audio_infos.csv into dir
func WriteVideoReports(dir string, videos []VideoInfo) (string, string, error) {
	if err := EnsureDirs(dir); err != nil {
		return "", "", fmt.Errorf("creating report directory: %w", err)
	}

	mdPath := filepath.Join(dir, VideoReportMarkdown)
	if err := os.WriteFile(mdPath, []byte(VideoMarkdownTable(videos)+"\n"), 0644); err != nil {
		return "", "", fmt.Errorf("writing markdown report: %w", err)
	}
	csvPath := filepath.Join(dir, VideoReportCSV)
	if err := os.WriteFile(csvPath, []byte(VideoCSV(videos)+"\n"), 0644); err != nil {
		return "", "", fmt.Errorf("writing csv report: %w", err)
	}
	return mdPath, csvPath, nil
}

// IntegrityTable renders check reports for the terminal
func IntegrityTable(reports []Report) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Stage", "Success", "Failure", "Total", "Success rate"})
	for _, r := range reports {
		tw.AppendRow(table.Row{
			string(r.Stage),
			strconv.Itoa(r.Success),
			strconv.Itoa(r.Failure),
			strconv.Itoa(r.Total),
			r.RateString(),
		})
	}

	configs := []table.ColumnConfig{{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}}
	for i := 2; i <= 5; i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// PlanRow is one planned artifact and whether it exists
type PlanRow struct {
	Kind   string
	Path   string
	Exists bool
}

// PlanTable renders planned artifacts for the terminal
func PlanTable(rows []PlanRow) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Kind", "Path", "Exists"})
	for _, r := range rows {
		exists := "no"
		if r.Exists {
			exists = "yes"
		}
		tw.AppendRow(table.Row{r.Kind, r.Path, exists})
	}
	return tw.Render()
}

// FineTuneJobsTable renders fine-tuning jobs for the terminal
func FineTuneJobsTable(jobs []FineTuneJob) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Fine-tuned model", "Job ID", "Status", "Training file", "Created"})
	for _, j := range jobs {
		model := j.FineTunedModel
		if model == "" {
			model = "-"
		}
		tw.AppendRow(table.Row{model, j.ID, j.Status, j.TrainingFile, j.CreatedAt.Format("2006-01-02 15:04")})
	}
	return tw.Render()
}
