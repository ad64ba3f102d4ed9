package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// MultipleChoiceAnswer holds the option indices a user picked. Order does
// not matter for grading.
type MultipleChoiceAnswer struct {
	SelectedAnswersIndices []uint32 `json:"selected_answers_indices"`
}

// OpenQuestionAnswer is a free-text submission.
type OpenQuestionAnswer struct {
	Content string `json:"content"`
}

// AnswerContent is a tagged union: {"MultipleChoice": {...}} or
// {"OpenQuestion": {...}}.
type AnswerContent struct {
	MultipleChoice *MultipleChoiceAnswer
	OpenQuestion   *OpenQuestionAnswer
}

func (c AnswerContent) MarshalJSON() ([]byte, error) {
	switch {
	case c.MultipleChoice != nil && c.OpenQuestion == nil:
		return json.Marshal(map[string]*MultipleChoiceAnswer{"MultipleChoice": c.MultipleChoice})
	case c.OpenQuestion != nil && c.MultipleChoice == nil:
		return json.Marshal(map[string]*OpenQuestionAnswer{"OpenQuestion": c.OpenQuestion})
	default:
		return nil, fmt.Errorf("answer content: %w", ErrUnknownVariant)
	}
}

func (c *AnswerContent) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("answer content: %w", ErrUnknownVariant)
	}
	if payload, ok := raw["MultipleChoice"]; ok {
		var v MultipleChoiceAnswer
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		*c = AnswerContent{MultipleChoice: &v}
		return nil
	}
	if payload, ok := raw["OpenQuestion"]; ok {
		var v OpenQuestionAnswer
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		*c = AnswerContent{OpenQuestion: &v}
		return nil
	}
	return fmt.Errorf("answer content: %w", ErrUnknownVariant)
}

// Equal compares variants structurally, index order included.
func (c AnswerContent) Equal(other AnswerContent) bool {
	if (c.MultipleChoice == nil) != (other.MultipleChoice == nil) ||
		(c.OpenQuestion == nil) != (other.OpenQuestion == nil) {
		return false
	}
	if c.OpenQuestion != nil {
		return c.OpenQuestion.Content == other.OpenQuestion.Content
	}
	if c.MultipleChoice != nil {
		a, b := c.MultipleChoice.SelectedAnswersIndices, other.MultipleChoice.SelectedAnswersIndices
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}

// Answer is a user's submission for a task. It starts unsolved (nil
// content) and is solved once by attaching content. Grading outcome fields
// are filled by a separate write after verification.
type Answer struct {
	ID     ID `json:"id" gorm:"primaryKey"`
	TaskID ID `json:"task_id" gorm:"not null;index"`
	UserID ID `json:"user_id" gorm:"not null;index"`

	Content *AnswerContent `json:"content" gorm:"-"`

	// Raw storage form of Content; SQL NULL while unsolved.
	RawContent datatypes.JSON `json:"-" gorm:"column:content;type:jsonb"`

	Correct     *bool      `json:"correct,omitempty" gorm:"column:correct"`
	Explanation *string    `json:"explanation,omitempty" gorm:"type:text"`
	GradedAt    *time.Time `json:"graded_at,omitempty"`
}

func (Answer) TableName() string {
	return "answers"
}

// NewAnswer creates an unsolved answer for a task.
func NewAnswer(userID, taskID ID) *Answer {
	return &Answer{
		ID:     NewID(),
		TaskID: taskID,
		UserID: userID,
	}
}

// Solve returns a copy with the submitted content attached.
func (a *Answer) Solve(content AnswerContent) *Answer {
	solved := *a
	solved.Content = &content
	return &solved
}

// EncodeContent refreshes RawContent from Content before a write.
func (a *Answer) EncodeContent() error {
	if a.Content == nil {
		a.RawContent = nil
		return nil
	}
	data, err := json.Marshal(a.Content)
	if err != nil {
		return err
	}
	a.RawContent = datatypes.JSON(data)
	return nil
}

// DecodeContent refreshes Content from RawContent after a read.
func (a *Answer) DecodeContent() error {
	if len(a.RawContent) == 0 || string(a.RawContent) == "null" {
		a.Content = nil
		return nil
	}
	var content AnswerContent
	if err := json.Unmarshal(a.RawContent, &content); err != nil {
		return err
	}
	a.Content = &content
	return nil
}
