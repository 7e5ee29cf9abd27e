package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"gorm.io/gorm"
	"p9e.in/ocpipeline/models"
	"p9e.in/ocpipeline/utils"
)

func TestIsValidSubmittalStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		expected bool
	}{
		{"not started", "not_started", true},
		{"in progress", "in_progress", true},
		{"submitted", "submitted", true},
		{"under review", "under_review", true},
		{"approved", "approved", true},
		{"approved as noted", "approved_as_noted", true},
		{"revise resubmit", "revise_resubmit", true},
		{"rejected", "rejected", true},
		{"for record only", "for_record_only", true},
		{"void", "void", true},

		{"empty string", "", false},
		{"unknown status", "pending", false},
		{"case sensitive", "Approved", false},
		{"spaces instead of underscores", "not started", false},
		{"legacy open", "open", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidSubmittalStatus(tt.status)
			if result != tt.expected {
				t.Errorf("IsValidSubmittalStatus(%q) = %v, expected %v",
					tt.status, result, tt.expected)
			}
		})
	}
}

func TestIsValidSubmittalType(t *testing.T) {
	tests := []struct {
		name     string
		typ      string
		expected bool
	}{
		{"product data", "product_data", true},
		{"shop drawing", "shop_drawing", true},
		{"sample", "sample", true},
		{"mix design", "mix_design", true},
		{"test report", "test_report", true},
		{"certification", "certification", true},
		{"other", "other", true},

		{"empty string", "", false},
		{"unknown type", "warranty", false},
		{"case sensitive", "Sample", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidSubmittalType(tt.typ)
			if result != tt.expected {
				t.Errorf("IsValidSubmittalType(%q) = %v, expected %v",
					tt.typ, result, tt.expected)
			}
		})
	}
}

func TestIsValidSubmittalPriority(t *testing.T) {
	tests := []struct {
		name     string
		priority string
		expected bool
	}{
		{"low", "low", true},
		{"normal", "normal", true},
		{"high", "high", true},
		{"critical", "critical", true},

		{"empty string", "", false},
		{"unknown priority", "urgent", false},
		{"case sensitive", "High", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidSubmittalPriority(tt.priority)
			if result != tt.expected {
				t.Errorf("IsValidSubmittalPriority(%q) = %v, expected %v",
					tt.priority, result, tt.expected)
			}
		})
	}
}

func TestSubmittalOrderClause(t *testing.T) {
	tests := []struct {
		name      string
		sort      string
		order     string
		expected  string
		expectErr bool
	}{
		{"default when sort empty", "", "", "created_at DESC", false},
		{"default ignores order when sort empty", "", "asc", "created_at DESC", false},
		{"explicit ascending", "submittal_number", "asc", "submittal_number ASC", false},
		{"explicit descending", "submittal_number", "desc", "submittal_number DESC", false},
		{"order is case insensitive", "status", "DESC", "status DESC", false},
		{"missing order defaults ascending", "priority", "", "priority ASC", false},
		{"unknown order treated as ascending", "spec_section", "sideways", "spec_section ASC", false},
		{"required date sortable", "required_date", "asc", "required_date ASC", false},
		{"created at sortable", "created_at", "asc", "created_at ASC", false},

		{"unknown column rejected", "title; DROP TABLE submittals", "asc", "", true},
		{"raw column name not in allow list", "submittals.id", "asc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, err := submittalOrderClause(tt.sort, tt.order)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("submittalOrderClause(%q, %q) expected error, got %q",
						tt.sort, tt.order, clause)
				}
				if utils.HTTPStatus(err) != 400 {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("submittalOrderClause(%q, %q) unexpected error: %v",
					tt.sort, tt.order, err)
			}
			if clause != tt.expected {
				t.Errorf("submittalOrderClause(%q, %q) = %q, expected %q",
					tt.sort, tt.order, clause, tt.expected)
			}
		})
	}
}

func TestNormalizePagination(t *testing.T) {
	tests := []struct {
		name          string
		page, limit   int
		wantPage      int
		wantLimit     int
	}{
		{"defaults applied", 0, 0, 1, 20},
		{"negative page clamped", -5, 10, 1, 10},
		{"valid values pass through", 3, 50, 3, 50},
		{"limit at max", 2, 100, 2, 100},
		{"limit over max reset to default", 2, 101, 2, 20},
		{"huge limit reset to default", 1, 100000, 1, 20},
		{"negative limit reset to default", 1, -1, 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := NormalizePagination(tt.page, tt.limit)
			if page != tt.wantPage || limit != tt.wantLimit {
				t.Errorf("NormalizePagination(%d, %d) = (%d, %d), expected (%d, %d)",
					tt.page, tt.limit, page, limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestBuildSubmittalUpdates(t *testing.T) {
	strptr := func(s string) *string { return &s }
	boolptr := func(b bool) *bool { return &b }

	t.Run("empty input yields no updates", func(t *testing.T) {
		updates := buildSubmittalUpdates(UpdateSubmittalInput{})
		if len(updates) != 0 {
			t.Errorf("expected empty update map, got %v", updates)
		}
	})

	t.Run("zero values still count when pointer set", func(t *testing.T) {
		updates := buildSubmittalUpdates(UpdateSubmittalInput{
			Description: strptr(""),
			IsLongLead:  boolptr(false),
		})
		if v, ok := updates["description"]; !ok || v != "" {
			t.Errorf("expected description cleared to empty string, got %v", updates)
		}
		if v, ok := updates["is_long_lead"]; !ok || v != false {
			t.Errorf("expected is_long_lead set false, got %v", updates)
		}
	})

	t.Run("only named fields pass through", func(t *testing.T) {
		updates := buildSubmittalUpdates(UpdateSubmittalInput{
			Title:    strptr("Rebar shop drawings"),
			Priority: strptr("high"),
		})
		if len(updates) != 2 {
			t.Fatalf("expected 2 updates, got %d: %v", len(updates), updates)
		}
		if updates["title"] != "Rebar shop drawings" {
			t.Errorf("title = %v", updates["title"])
		}
		if updates["priority"] != "high" {
			t.Errorf("priority = %v", updates["priority"])
		}
	})

	t.Run("status never updatable through update path", func(t *testing.T) {
		updates := buildSubmittalUpdates(UpdateSubmittalInput{Title: strptr("x")})
		if _, ok := updates["status"]; ok {
			t.Error("status must only change via the transition endpoint")
		}
	})
}

func TestTransitionAllowed(t *testing.T) {
	t.Run("currently permissive", func(t *testing.T) {
		// Every pair within the closed set is accepted, including
		// self-transitions and moves backwards from terminal states.
		for _, from := range models.SubmittalStatuses {
			for _, to := range models.SubmittalStatuses {
				if !transitionAllowed(from, to) {
					t.Errorf("transitionAllowed(%q, %q) = false, every pair in the status set is permitted", from, to)
				}
			}
		}
	})

	t.Run("targets outside the set rejected", func(t *testing.T) {
		if transitionAllowed("not_started", "cancelled") {
			t.Error("unknown target status must be rejected")
		}
		if transitionAllowed("not_started", "") {
			t.Error("empty target status must be rejected")
		}
		if transitionAllowed("not_started", "Approved") {
			t.Error("status check is case sensitive")
		}
	})
}

func TestShouldAppendReview(t *testing.T) {
	t.Run("no review without comments", func(t *testing.T) {
		if shouldAppendReview("") {
			t.Error("a comment-less transition must not write a ledger entry")
		}
	})

	t.Run("comments produce a ledger entry", func(t *testing.T) {
		if !shouldAppendReview("Approved as noted, see markups.") {
			t.Error("a commented transition must write a ledger entry")
		}
	})

	t.Run("whitespace counts as a comment", func(t *testing.T) {
		// Only the empty string is skipped; whitespace is the caller's
		// comment, odd as it is.
		if !shouldAppendReview(" ") {
			t.Error("non-empty comments must write a ledger entry")
		}
	})
}

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm duplicated key", fmt.Errorf("create failed: %w", gorm.ErrDuplicatedKey), true},
		{"postgres duplicate key message", errors.New(`pq: duplicate key value violates unique constraint "idx_submittals_project_number"`), true},
		{"unrelated database error", errors.New("pq: connection refused"), false},
		{"record not found", gorm.ErrRecordNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isDuplicateKey(tt.err)
			if result != tt.expected {
				t.Errorf("isDuplicateKey(%v) = %v, expected %v", tt.err, result, tt.expected)
			}
		})
	}

	t.Run("duplicate number surfaces as conflict", func(t *testing.T) {
		err := utils.ConflictError("submittal number '%s' already exists in this project", "03-001")
		if utils.HTTPStatus(err) != http.StatusConflict {
			t.Errorf("conflict must map to 409, got %d", utils.HTTPStatus(err))
		}
	})
}
