package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestTaskContentWireForm(t *testing.T) {
	tests := []struct {
		name    string
		content TaskContent
		want    string
	}{
		{
			name:    "open",
			content: TaskContent{Open: &OpenQuestionTask{Content: "What is a goroutine?"}},
			want:    `{"Open":{"content":"What is a goroutine?"}}`,
		},
		{
			name:    "multiple choice",
			content: TaskContent{MultipleChoice: &MultipleChoiceTask{Choices: []string{"a", "b"}}},
			want:    `{"MultipleChoice":{"choices":["a","b"]}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.content)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal = %s, want %s", data, tt.want)
			}

			var decoded TaskContent
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !decoded.Equal(tt.content) {
				t.Errorf("round trip changed content")
			}
		})
	}
}

func TestTaskContentRejectsBadVariants(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty object", data: `{}`},
		{name: "unknown variant", data: `{"Essay":{"content":"x"}}`},
		{name: "two variants", data: `{"Open":{"content":"x"},"MultipleChoice":{"choices":[]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c TaskContent
			err := json.Unmarshal([]byte(tt.data), &c)
			if !errors.Is(err, ErrUnknownVariant) {
				t.Errorf("Unmarshal error = %v, want ErrUnknownVariant", err)
			}
		})
	}

	t.Run("marshal empty union", func(t *testing.T) {
		if _, err := json.Marshal(TaskContent{}); err == nil {
			t.Error("Marshal of empty union succeeded, want error")
		}
	})
}

func TestAnswerContentWireForm(t *testing.T) {
	mc := AnswerContent{MultipleChoice: &MultipleChoiceAnswer{SelectedAnswersIndices: []uint32{2, 0, 1}}}
	data, err := json.Marshal(mc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"MultipleChoice":{"selected_answers_indices":[2,0,1]}}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	open := AnswerContent{OpenQuestion: &OpenQuestionAnswer{Content: "a closure"}}
	data, err = json.Marshal(open)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want = `{"OpenQuestion":{"content":"a closure"}}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func TestAnswerEncodeDecodeContent(t *testing.T) {
	answer := NewAnswer(NewID(), NewID())

	// Unsolved answers store SQL NULL.
	if err := answer.EncodeContent(); err != nil {
		t.Fatalf("EncodeContent failed: %v", err)
	}
	if answer.RawContent != nil {
		t.Errorf("RawContent = %s, want nil", answer.RawContent)
	}

	solved := answer.Solve(AnswerContent{OpenQuestion: &OpenQuestionAnswer{Content: "fmt.Println"}})
	if answer.Content != nil {
		t.Error("Solve mutated the receiver")
	}
	if err := solved.EncodeContent(); err != nil {
		t.Fatalf("EncodeContent failed: %v", err)
	}

	solved.Content = nil
	if err := solved.DecodeContent(); err != nil {
		t.Fatalf("DecodeContent failed: %v", err)
	}
	if solved.Content == nil || solved.Content.OpenQuestion == nil || solved.Content.OpenQuestion.Content != "fmt.Println" {
		t.Errorf("decoded content = %+v", solved.Content)
	}

	// A JSON null column reads back as unsolved.
	solved.RawContent = []byte("null")
	if err := solved.DecodeContent(); err != nil {
		t.Fatalf("DecodeContent(null) failed: %v", err)
	}
	if solved.Content != nil {
		t.Error("null column decoded to content")
	}
}

func TestTaskAnswerKeyRoundTrip(t *testing.T) {
	task := &Task{ID: NewID(), Title: "t", Content: TaskContent{MultipleChoice: &MultipleChoiceTask{Choices: []string{"a", "b", "c", "d"}}}}

	key, err := task.AnswerKey()
	if err != nil {
		t.Fatalf("AnswerKey failed: %v", err)
	}
	if key != nil {
		t.Errorf("AnswerKey on fresh task = %+v, want nil", key)
	}

	if err := task.SetAnswerKey(&TaskAnswerKey{CorrectIndices: []uint32{1, 3}}); err != nil {
		t.Fatalf("SetAnswerKey failed: %v", err)
	}
	key, err = task.AnswerKey()
	if err != nil {
		t.Fatalf("AnswerKey failed: %v", err)
	}
	if key == nil || len(key.CorrectIndices) != 2 || key.CorrectIndices[0] != 1 || key.CorrectIndices[1] != 3 {
		t.Errorf("AnswerKey = %+v", key)
	}

	if err := task.SetAnswerKey(nil); err != nil {
		t.Fatalf("SetAnswerKey(nil) failed: %v", err)
	}
	if task.RawAnswer != nil {
		t.Error("SetAnswerKey(nil) left raw bytes behind")
	}
}

func TestTaskEqual(t *testing.T) {
	id := NewID()
	base := func() *Task {
		return &Task{
			ID:      id,
			Title:   "t",
			Content: TaskContent{MultipleChoice: &MultipleChoiceTask{Choices: []string{"a", "b"}}},
			Tags:    []Tag{{Name: "go"}},
		}
	}

	a, b := base(), base()
	if !a.Equal(b) {
		t.Error("identical tasks compared unequal")
	}

	if err := b.SetAnswerKey(&TaskAnswerKey{CorrectIndices: []uint32{1}}); err != nil {
		t.Fatalf("SetAnswerKey failed: %v", err)
	}
	if a.Equal(b) {
		t.Error("tasks differing only in answer key compared equal")
	}

	if err := a.SetAnswerKey(&TaskAnswerKey{CorrectIndices: []uint32{0, 1}}); err != nil {
		t.Fatalf("SetAnswerKey failed: %v", err)
	}
	if a.Equal(b) {
		t.Error("different answer keys compared equal")
	}

	if err := b.SetAnswerKey(&TaskAnswerKey{CorrectIndices: []uint32{1, 0}}); err != nil {
		t.Fatalf("SetAnswerKey failed: %v", err)
	}
	if !a.Equal(b) {
		t.Error("key index order should not affect equality")
	}

	a, b = base(), base()
	b.Tags = []Tag{{Name: "sql"}}
	if a.Equal(b) {
		t.Error("different tag sets compared equal")
	}
}

func TestUserPasswordHashNeverSerialized(t *testing.T) {
	user := &User{
		ID:           NewID(),
		Username:     "gopher",
		PasswordHash: "secret-hash",
	}

	data, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "secret-hash") {
		t.Errorf("password hash leaked into JSON: %s", data)
	}
}

func TestUserEqual(t *testing.T) {
	email := "a@b.com"
	f1, f2 := NewID(), NewID()
	base := func() *User {
		return &User{
			ID:       NilID,
			Username: "gopher",
			Email:    &email,
			Level:    UserLevel{Level: 2, XP: 30},
			Friends:  []ID{f1, f2},
			Progress: UserProgress{Course: 1, Unit: 2},
		}
	}

	a, b := base(), base()
	b.Friends = []ID{f2, f1}
	if !a.Equal(b) {
		t.Error("friend order should not affect equality")
	}

	token := NewID()
	b.AuthToken = &token
	if !a.Equal(b) {
		t.Error("auth token should not affect equality")
	}

	b = base()
	b.Friends = []ID{f1}
	if a.Equal(b) {
		t.Error("different friend sets compared equal")
	}

	b = base()
	b.Progress.Task = 9
	if a.Equal(b) {
		t.Error("different progress compared equal")
	}
}
