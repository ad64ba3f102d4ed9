package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/lingocode-app/practice-service/internal/models"
	"github.com/lingocode-app/practice-service/internal/repositories"
)

const (
	tasksSheetName  = "Tasks"
	exportBatchSize = 500
)

var taskSheetHeader = []string{"ID", "Title", "Kind", "Content", "Tags", "Answer Key"}

type importExportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewImportExportService(repo repositories.Repository, logger *slog.Logger) ImportExportService {
	return &importExportService{repo: repo, logger: logger}
}

// ExportTasks writes the whole catalog to one workbook, a row per task.
// Content cells hold the same JSON the API serves.
func (s *importExportService) ExportTasks(ctx context.Context) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(tasksSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for col, title := range taskSheetHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(tasksSheetName, cell, title); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	row := 2
	offset := 0
	for {
		tasks, _, err := s.repo.Task().List(ctx, nil, exportBatchSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list tasks: %w", err)
		}
		for _, task := range tasks {
			if err := s.writeTaskRow(f, row, task); err != nil {
				return nil, err
			}
			row++
		}
		if len(tasks) < exportBatchSize {
			break
		}
		offset += exportBatchSize
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Tasks exported", "count", row-2)
	return buf.Bytes(), nil
}

func (s *importExportService) writeTaskRow(f *excelize.File, row int, task *models.Task) error {
	content, err := json.Marshal(task.Content)
	if err != nil {
		return fmt.Errorf("failed to encode task %s: %w", task.ID, err)
	}

	kind := "open"
	if task.Content.MultipleChoice != nil {
		kind = "multiple_choice"
	}

	names := make([]string, 0, len(task.Tags))
	for _, tag := range task.Tags {
		names = append(names, tag.Name)
	}

	values := []interface{}{
		task.ID.String(),
		task.Title,
		kind,
		string(content),
		strings.Join(names, ","),
		string(task.RawAnswer),
	}
	for col, value := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		if err := f.SetCellValue(tasksSheetName, cell, value); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}
	return nil
}

// ImportTasks reads a workbook produced by ExportTasks and creates every
// row as a new task. IDs in the sheet are ignored so an import never
// collides with existing rows. The whole import is one transaction.
func (s *importExportService) ImportTasks(ctx context.Context, data []byte) (int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(tasksSheetName)
	if err != nil {
		return 0, fmt.Errorf("failed to read sheet %q: %w", tasksSheetName, err)
	}
	if len(rows) <= 1 {
		return 0, nil
	}

	tasks := make([]*models.Task, 0, len(rows)-1)
	for i, row := range rows[1:] {
		task, err := parseTaskRow(row)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+2, err)
		}
		tasks = append(tasks, task)
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		for _, task := range tasks {
			if err := s.repo.Task().Create(ctx, tx, task); err != nil {
				return fmt.Errorf("failed to import task %q: %w", task.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Tasks imported", "count", len(tasks))
	return len(tasks), nil
}

func parseTaskRow(row []string) (*models.Task, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	title := cell(1)
	if title == "" {
		return nil, fmt.Errorf("missing title")
	}

	var content models.TaskContent
	if err := json.Unmarshal([]byte(cell(3)), &content); err != nil {
		return nil, fmt.Errorf("bad content: %w", err)
	}

	task := &models.Task{
		ID:      models.NewID(),
		Title:   title,
		Content: content,
	}

	if names := cell(4); names != "" {
		for _, name := range strings.Split(names, ",") {
			if name = strings.TrimSpace(name); name != "" {
				task.Tags = append(task.Tags, models.Tag{Name: name})
			}
		}
	}

	if raw := cell(5); raw != "" {
		var key models.TaskAnswerKey
		if err := json.Unmarshal([]byte(raw), &key); err != nil {
			return nil, fmt.Errorf("bad answer key: %w", err)
		}
		if err := task.SetAnswerKey(&key); err != nil {
			return nil, err
		}
	}
	return task, nil
}
