// Package examdata loads the mock-test exam catalogue and question bank.
package examdata

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/bytesolver-backend/internal/domain"
)

//go:embed exams.yaml question_bank.json
var files embed.FS

type SubjectQuota struct {
	Name  string `yaml:"name" json:"name"`
	Count int    `yaml:"count" json:"count"`
}

type Exam struct {
	ID              string         `yaml:"id" json:"id"`
	Name            string         `yaml:"name" json:"name"`
	Description     string         `yaml:"description" json:"description"`
	DurationMinutes int            `yaml:"duration_minutes" json:"durationMinutes"`
	PositiveMarks   float64        `yaml:"positive_marks" json:"positiveMarks"`
	NegativeMarks   float64        `yaml:"negative_marks" json:"negativeMarks"`
	Subjects        []SubjectQuota `yaml:"subjects" json:"subjects"`
}

func (e Exam) QuestionCount() int {
	n := 0
	for _, s := range e.Subjects {
		n += s.Count
	}
	return n
}

func (e Exam) MaxScore() float64 {
	return float64(e.QuestionCount()) * e.PositiveMarks
}

type catalogueFile struct {
	Version int    `yaml:"version"`
	Exams   []Exam `yaml:"exams"`
}

// Catalogue is immutable after Load.
type Catalogue struct {
	exams []Exam
	byID  map[string]Exam
	bank  map[string][]types.MockQuestion
}

// Load reads the embedded catalogue, or the YAML at examsPath when set.
// The question bank is always the embedded one unless bankPath is set.
func Load(examsPath, bankPath string) (*Catalogue, error) {
	rawExams, err := read(examsPath, "exams.yaml")
	if err != nil {
		return nil, err
	}
	rawBank, err := read(bankPath, "question_bank.json")
	if err != nil {
		return nil, err
	}

	var cf catalogueFile
	if err := yaml.Unmarshal(rawExams, &cf); err != nil {
		return nil, fmt.Errorf("examdata: parse exams: %w", err)
	}
	var questions []types.MockQuestion
	if err := json.Unmarshal(rawBank, &questions); err != nil {
		return nil, fmt.Errorf("examdata: parse question bank: %w", err)
	}

	c := &Catalogue{
		byID: make(map[string]Exam, len(cf.Exams)),
		bank: make(map[string][]types.MockQuestion),
	}
	for _, q := range questions {
		if len(q.Options) != 4 || q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex > 3 {
			return nil, fmt.Errorf("examdata: question %q must have 4 options and a valid answer", q.ID)
		}
		c.bank[q.Subject] = append(c.bank[q.Subject], q)
	}
	for _, e := range cf.Exams {
		if err := validateExam(e); err != nil {
			return nil, err
		}
		for _, s := range e.Subjects {
			if len(c.bank[s.Name]) == 0 {
				return nil, fmt.Errorf("examdata: exam %q: no bank questions for subject %q", e.ID, s.Name)
			}
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("examdata: duplicate exam id %q", e.ID)
		}
		c.byID[e.ID] = e
		c.exams = append(c.exams, e)
	}
	if len(c.exams) == 0 {
		return nil, errors.New("examdata: catalogue is empty")
	}
	return c, nil
}

// MustLoadEmbedded is for tests and tools.
func MustLoadEmbedded() *Catalogue {
	c, err := Load("", "")
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalogue) Exams() []Exam {
	out := make([]Exam, len(c.exams))
	copy(out, c.exams)
	return out
}

func (c *Catalogue) Exam(id string) (Exam, bool) {
	e, ok := c.byID[strings.TrimSpace(strings.ToLower(id))]
	return e, ok
}

// Bank returns a copy of the subject's question pool.
func (c *Catalogue) Bank(subject string) []types.MockQuestion {
	src := c.bank[subject]
	out := make([]types.MockQuestion, len(src))
	copy(out, src)
	return out
}

func validateExam(e Exam) error {
	switch {
	case strings.TrimSpace(e.ID) == "":
		return errors.New("examdata: exam without id")
	case e.DurationMinutes <= 0:
		return fmt.Errorf("examdata: exam %q: duration must be positive", e.ID)
	case e.PositiveMarks <= 0 || e.NegativeMarks < 0:
		return fmt.Errorf("examdata: exam %q: invalid marking scheme", e.ID)
	case len(e.Subjects) == 0:
		return fmt.Errorf("examdata: exam %q: no subjects", e.ID)
	}
	for _, s := range e.Subjects {
		if s.Count <= 0 {
			return fmt.Errorf("examdata: exam %q: subject %q needs a positive count", e.ID, s.Name)
		}
	}
	return nil
}

func read(path, embedded string) ([]byte, error) {
	if p := strings.TrimSpace(path); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("examdata: read %s: %w", p, err)
		}
		return b, nil
	}
	return files.ReadFile(embedded)
}
