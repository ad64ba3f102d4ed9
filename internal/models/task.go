package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
)

// ErrUnknownVariant reports a tagged payload that decodes as JSON but does
// not match exactly one known variant.
var ErrUnknownVariant = errors.New("unknown content variant")

// OpenQuestionTask is a free-text exercise statement.
type OpenQuestionTask struct {
	Content string `json:"content"`
}

// MultipleChoiceTask is a pick-from-options exercise.
type MultipleChoiceTask struct {
	Choices []string `json:"choices"`
}

// TaskContent is a tagged union: exactly one variant is set. The wire form
// is {"Open": {...}} or {"MultipleChoice": {...}}.
type TaskContent struct {
	Open           *OpenQuestionTask
	MultipleChoice *MultipleChoiceTask
}

func (c TaskContent) MarshalJSON() ([]byte, error) {
	switch {
	case c.Open != nil && c.MultipleChoice == nil:
		return json.Marshal(map[string]*OpenQuestionTask{"Open": c.Open})
	case c.MultipleChoice != nil && c.Open == nil:
		return json.Marshal(map[string]*MultipleChoiceTask{"MultipleChoice": c.MultipleChoice})
	default:
		return nil, fmt.Errorf("task content: %w", ErrUnknownVariant)
	}
}

func (c *TaskContent) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("task content: %w", ErrUnknownVariant)
	}
	if payload, ok := raw["Open"]; ok {
		var v OpenQuestionTask
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		*c = TaskContent{Open: &v}
		return nil
	}
	if payload, ok := raw["MultipleChoice"]; ok {
		var v MultipleChoiceTask
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		*c = TaskContent{MultipleChoice: &v}
		return nil
	}
	return fmt.Errorf("task content: %w", ErrUnknownVariant)
}

// Equal compares variants structurally.
func (c TaskContent) Equal(other TaskContent) bool {
	if (c.Open == nil) != (other.Open == nil) || (c.MultipleChoice == nil) != (other.MultipleChoice == nil) {
		return false
	}
	if c.Open != nil {
		return c.Open.Content == other.Open.Content
	}
	if c.MultipleChoice != nil {
		if len(c.MultipleChoice.Choices) != len(other.MultipleChoice.Choices) {
			return false
		}
		for i, choice := range c.MultipleChoice.Choices {
			if choice != other.MultipleChoice.Choices[i] {
				return false
			}
		}
	}
	return true
}

// Tag labels tasks. Names are globally unique: two tasks sharing a name
// share one tag row.
type Tag struct {
	ID   ID     `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null;size:64"`
}

func (Tag) TableName() string {
	return "tags"
}

// TaskTag is one task-to-tag join row.
type TaskTag struct {
	TaskID ID `gorm:"column:task_id;primaryKey"`
	TagID  ID `gorm:"column:tag_id;primaryKey"`
}

func (TaskTag) TableName() string {
	return "task_tags"
}

// TaskAnswerKey is the grading key stored alongside a task, outside the
// content payload that students see. Only multiple choice uses it today.
type TaskAnswerKey struct {
	CorrectIndices []uint32 `json:"correct_indices,omitempty"`
}

// Task is one exercise. Content is a tagged union stored as JSONB; tags are
// reconciled against the task_tags join table.
type Task struct {
	ID      ID          `json:"id" gorm:"primaryKey"`
	Title   string      `json:"title" gorm:"not null;size:255"`
	Content TaskContent `json:"content" gorm:"-"`

	// Raw storage forms of Content and the answer key.
	RawContent datatypes.JSON `json:"-" gorm:"column:content;type:jsonb"`
	RawAnswer  datatypes.JSON `json:"-" gorm:"column:answer;type:jsonb"`

	Tags []Tag `json:"tags" gorm:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

// EncodeContent refreshes RawContent from Content before a write.
func (t *Task) EncodeContent() error {
	data, err := json.Marshal(t.Content)
	if err != nil {
		return err
	}
	t.RawContent = datatypes.JSON(data)
	return nil
}

// DecodeContent refreshes Content from RawContent after a read.
func (t *Task) DecodeContent() error {
	return json.Unmarshal(t.RawContent, &t.Content)
}

// AnswerKey decodes the stored grading key; (nil, nil) when absent.
func (t *Task) AnswerKey() (*TaskAnswerKey, error) {
	if len(t.RawAnswer) == 0 {
		return nil, nil
	}
	var key TaskAnswerKey
	if err := json.Unmarshal(t.RawAnswer, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// SetAnswerKey encodes the grading key for storage; nil clears it.
func (t *Task) SetAnswerKey(key *TaskAnswerKey) error {
	if key == nil {
		t.RawAnswer = nil
		return nil
	}
	data, err := json.Marshal(key)
	if err != nil {
		return err
	}
	t.RawAnswer = datatypes.JSON(data)
	return nil
}

// Equal reports attribute identity: scalars, content, the grading key and
// the order-independent tag set.
func (t *Task) Equal(other *Task) bool {
	if t.ID != other.ID || t.Title != other.Title || !t.Content.Equal(other.Content) {
		return false
	}
	if !t.answerKeyEqual(other) {
		return false
	}
	if len(t.Tags) != len(other.Tags) {
		return false
	}
	names := make(map[string]struct{}, len(t.Tags))
	for _, tag := range t.Tags {
		names[tag.Name] = struct{}{}
	}
	for _, tag := range other.Tags {
		if _, ok := names[tag.Name]; !ok {
			return false
		}
	}
	return true
}

// answerKeyEqual compares the decoded grading keys as index sets. A key
// that fails to decode never compares equal, so the write goes through.
func (t *Task) answerKeyEqual(other *Task) bool {
	key, err := t.AnswerKey()
	if err != nil {
		return false
	}
	otherKey, err := other.AnswerKey()
	if err != nil {
		return false
	}
	if (key == nil) != (otherKey == nil) {
		return false
	}
	if key == nil {
		return true
	}
	if len(key.CorrectIndices) != len(otherKey.CorrectIndices) {
		return false
	}
	indices := make(map[uint32]struct{}, len(key.CorrectIndices))
	for _, idx := range key.CorrectIndices {
		indices[idx] = struct{}{}
	}
	for _, idx := range otherKey.CorrectIndices {
		if _, ok := indices[idx]; !ok {
			return false
		}
	}
	return true
}
