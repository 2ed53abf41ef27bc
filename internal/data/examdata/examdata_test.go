package examdata

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedCatalogue(t *testing.T) {
	c, err := Load("", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := map[string]struct {
		questions int
		duration  int
		pos, neg  float64
	}{
		"neet":     {180, 200, 4, 1},
		"jee-main": {75, 180, 4, 1},
		"bitsat":   {130, 180, 3, 1},
	}
	for id, w := range want {
		e, ok := c.Exam(id)
		if !ok {
			t.Fatalf("missing exam %s", id)
		}
		if e.QuestionCount() != w.questions || e.DurationMinutes != w.duration ||
			e.PositiveMarks != w.pos || e.NegativeMarks != w.neg {
			t.Fatalf("%s: unexpected exam %+v", id, e)
		}
	}
	if len(c.Bank("Physics")) == 0 || len(c.Bank("Logical Reasoning")) == 0 {
		t.Fatalf("expected bank questions for every subject")
	}
}

func TestLoadOverrideRejectsUnknownSubject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exams.yaml")
	body := "version: 1\nexams:\n  - id: x\n    name: X\n    duration_minutes: 10\n    positive_marks: 1\n    negative_marks: 0\n    subjects:\n      - name: Astrology\n        count: 3\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path, ""); err == nil {
		t.Fatalf("expected error for subject without bank questions")
	}
}
