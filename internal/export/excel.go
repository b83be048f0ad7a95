// Package export renders a reconstructed review as a spreadsheet score
// sheet, one row per question.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/linguaflow/delivery-client/internal/review"
)

const sheetName = "Review"

// WriteReviewSheet writes an .xlsx score sheet for the review result.
func WriteReviewSheet(result *review.Result, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headers := []string{"#", "Part", "Group", "Question", "Your Answer", "Correct Answer", "Verdict"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	row := 2
	for _, view := range result.Questions {
		values := []interface{}{
			view.Question.Sequence,
			partName(result, view),
			view.Group.Title,
			view.Question.Prompt,
			givenAnswer(view),
			expectedAnswer(view),
			verdict(view),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
		row++
	}

	scoreCell, _ := excelize.CoordinatesToCellName(1, row+1)
	if result.Session.Score != nil {
		if err := f.SetCellValue(sheetName, scoreCell, fmt.Sprintf("Score: %.1f", *result.Session.Score)); err != nil {
			return fmt.Errorf("failed to write score: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func partName(result *review.Result, view review.QuestionView) string {
	for _, p := range result.Structure.Parts {
		for i := range p.Groups {
			if p.Groups[i].ID == view.Group.ID {
				return p.Name
			}
		}
	}
	return ""
}

func givenAnswer(view review.QuestionView) string {
	if !view.Answered {
		return ""
	}
	if view.Record.Display != "" {
		return view.Record.Display
	}
	return view.Record.Text
}

func expectedAnswer(view review.QuestionView) string {
	if len(view.Question.CorrectAnswers) > 0 {
		return view.Question.CorrectAnswers[0]
	}
	for _, opt := range view.Question.Options {
		if opt.Correct != nil && *opt.Correct {
			return opt.Text
		}
	}
	return ""
}

func verdict(view review.QuestionView) string {
	switch {
	case !view.Answered:
		return "unanswered"
	case view.Correct == nil:
		return "ungraded"
	case *view.Correct:
		return "correct"
	default:
		return "incorrect"
	}
}
