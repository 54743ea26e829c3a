package judgment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AuditFile lists judge verdicts so a person can review or regrade them.
type AuditFile struct {
	Judge   string       `yaml:"judge"`
	Entries []AuditEntry `yaml:"entries"`
}

type AuditEntry struct {
	BatchIndex int     `yaml:"batch_index"`
	Question   string  `yaml:"question"`
	Reference  string  `yaml:"reference"`
	Answer     string  `yaml:"answer"`
	Verdict    Verdict `yaml:"verdict"`
	// HumanGrade is -1 until a reviewer fills it in.
	HumanGrade float64 `yaml:"human_grade"`
}

func NewAuditEntry(batchIndex int, c Case, v Verdict) AuditEntry {
	return AuditEntry{
		BatchIndex: batchIndex,
		Question:   c.Question,
		Reference:  c.Reference,
		Answer:     c.Answer,
		Verdict:    v,
		HumanGrade: -1,
	}
}

func ExportForAudit(af *AuditFile, outputPath string) error {
	data, err := yaml.Marshal(af)
	if err != nil {
		return fmt.Errorf("marshal judge audit: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write judge audit: %w", err)
	}
	return nil
}

func ImportAudit(path string) (*AuditFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read judge audit: %w", err)
	}
	var af AuditFile
	if err := yaml.Unmarshal(data, &af); err != nil {
		return nil, fmt.Errorf("parse judge audit: %w", err)
	}
	return &af, nil
}

// Agreement is the share of reviewed entries where the human grade equals
// the judge grade. Entries still at -1 are skipped.
func Agreement(af *AuditFile) (float64, int) {
	var reviewedCount, agree int
	for _, e := range af.Entries {
		if e.HumanGrade < 0 {
			continue
		}
		reviewedCount++
		if Snap(e.HumanGrade) == e.Verdict.Grade {
			agree++
		}
	}
	if reviewedCount == 0 {
		return 0, 0
	}
	return float64(agree) / float64(reviewedCount), reviewedCount
}
