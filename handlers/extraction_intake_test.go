package handlers

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"p9e.in/ocpipeline/models"
	"p9e.in/ocpipeline/utils"
)

func TestSelectCandidates(t *testing.T) {
	candidates := []SubmittalCandidate{
		{SubmittalNumber: "03-001", Title: "Concrete mix design"},
		{SubmittalNumber: "05-001", Title: "Steel shop drawings"},
		{SubmittalNumber: "09-001", Title: "Paint samples"},
	}

	t.Run("nil selection returns all", func(t *testing.T) {
		picked, err := selectCandidates(candidates, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(picked) != 3 {
			t.Errorf("expected all 3 candidates, got %d", len(picked))
		}
	})

	t.Run("explicit indices pick in order", func(t *testing.T) {
		picked, err := selectCandidates(candidates, []int{2, 0})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(picked) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(picked))
		}
		if picked[0].SubmittalNumber != "09-001" || picked[1].SubmittalNumber != "03-001" {
			t.Errorf("wrong selection order: %v, %v",
				picked[0].SubmittalNumber, picked[1].SubmittalNumber)
		}
	})

	t.Run("repeated index allowed", func(t *testing.T) {
		picked, err := selectCandidates(candidates, []int{1, 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(picked) != 2 {
			t.Errorf("expected both picks, got %d", len(picked))
		}
	})

	t.Run("empty non-nil selection picks nothing", func(t *testing.T) {
		picked, err := selectCandidates(candidates, []int{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(picked) != 0 {
			t.Errorf("expected empty pick, got %d", len(picked))
		}
	})

	t.Run("out of range index rejected", func(t *testing.T) {
		_, err := selectCandidates(candidates, []int{3})
		if err == nil {
			t.Fatal("expected error for index past end")
		}
		if utils.HTTPStatus(err) != 400 {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("negative index rejected", func(t *testing.T) {
		_, err := selectCandidates(candidates, []int{-1})
		if err == nil {
			t.Fatal("expected error for negative index")
		}
	})
}

func TestNewSubmittalFromCandidate(t *testing.T) {
	docID := uuid.New()
	doc := models.SpecificationDocument{
		ID:           docID,
		ProjectID:    uuid.New(),
		SpecSections: pq.StringArray{"03 30 00", "05 12 00"},
	}

	t.Run("candidate fields carried over", func(t *testing.T) {
		s := newSubmittalFromCandidate(doc, SubmittalCandidate{
			SubmittalNumber: "03-001",
			SpecSection:     "03 30 00",
			Title:           "Concrete mix design",
			Type:            "mix_design",
			Priority:        "high",
			ConfidenceScore: 92.5,
		}, "user-1")

		if s.SubmittalNumber != "03-001" {
			t.Errorf("number = %q", s.SubmittalNumber)
		}
		if s.Type != "mix_design" || s.Priority != "high" {
			t.Errorf("type/priority = %q/%q", s.Type, s.Priority)
		}
		if s.Status != models.SubmittalStatusNotStarted {
			t.Errorf("new submittal must start not_started, got %q", s.Status)
		}
		if s.SourceType != models.SourceTypeSpecAI || !s.AIExtracted {
			t.Errorf("provenance not recorded: %q, %v", s.SourceType, s.AIExtracted)
		}
		if s.SourceDocumentID == nil || *s.SourceDocumentID != docID {
			t.Error("source document not linked")
		}
		if s.AIConfidenceScore == nil || *s.AIConfidenceScore != 92.5 {
			t.Error("confidence score not carried")
		}
		if s.CreatedBy != "user-1" {
			t.Errorf("created_by = %q", s.CreatedBy)
		}
	})

	t.Run("missing number gets generated fallback", func(t *testing.T) {
		s := newSubmittalFromCandidate(doc, SubmittalCandidate{Title: "Untitled"}, "user-1")
		if !strings.HasPrefix(s.SubmittalNumber, "AI-") {
			t.Errorf("expected AI- fallback number, got %q", s.SubmittalNumber)
		}
	})

	t.Run("missing spec section falls back to document", func(t *testing.T) {
		s := newSubmittalFromCandidate(doc, SubmittalCandidate{Title: "Untitled"}, "user-1")
		if s.SpecSection != "03 30 00" {
			t.Errorf("expected first document section, got %q", s.SpecSection)
		}
	})

	t.Run("empty title coerced from number", func(t *testing.T) {
		s := newSubmittalFromCandidate(doc, SubmittalCandidate{SubmittalNumber: "09-002"}, "user-1")
		if s.Title == "" {
			t.Fatal("intake must never create a submittal without a title")
		}
		if s.Title != "Submittal 09-002" {
			t.Errorf("title = %q", s.Title)
		}
	})

	t.Run("unknown type and priority coerced", func(t *testing.T) {
		s := newSubmittalFromCandidate(doc, SubmittalCandidate{
			Title:    "Untitled",
			Type:     "blueprint",
			Priority: "asap",
		}, "user-1")
		if s.Type != "other" {
			t.Errorf("expected type coerced to other, got %q", s.Type)
		}
		if s.Priority != "normal" {
			t.Errorf("expected priority coerced to normal, got %q", s.Priority)
		}
	})
}

func TestGuessTypeForSection(t *testing.T) {
	tests := []struct {
		name     string
		section  string
		expected string
	}{
		{"concrete division", "03 30 00", "mix_design"},
		{"metals division", "05 12 00", "shop_drawing"},
		{"finishes division", "09 91 23", "sample"},
		{"general requirements", "01 33 00", "certification"},
		{"unmapped division", "23 05 00", "product_data"},
		{"bare division number", "03", "mix_design"},
		{"empty section", "", "product_data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := guessTypeForSection(tt.section)
			if result != tt.expected {
				t.Errorf("guessTypeForSection(%q) = %q, expected %q",
					tt.section, result, tt.expected)
			}
		})
	}
}
