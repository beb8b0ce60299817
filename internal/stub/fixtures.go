package stub

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/PavaniTiago/jurista-ai-frontend/internal/models"
)

// FixtureDocument seeds one pre-processed document.
type FixtureDocument struct {
	ID       string `yaml:"id"`
	Filename string `yaml:"filename"`
	Status   string `yaml:"status"`
	FileSize int64  `yaml:"fileSize"`
	MimeType string `yaml:"mimeType"`
}

// FixtureChunk seeds one source chunk for a document.
type FixtureChunk struct {
	DocumentID   string  `yaml:"documentId"`
	Content      string  `yaml:"content"`
	ChunkIndex   int     `yaml:"chunkIndex"`
	Similarity   float64 `yaml:"similarity"`
	PageNumber   *int    `yaml:"pageNumber"`
	SectionTitle *string `yaml:"sectionTitle"`
}

// CannedAnswer maps a question substring to a fixed answer.
type CannedAnswer struct {
	Match  string `yaml:"match"`
	Answer string `yaml:"answer"`
}

// Duration lets fixture files write delays as "2s" or "50ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Fixtures drives the stub service entirely from a YAML file, so offline
// runs and harnesses get deterministic documents and answers.
type Fixtures struct {
	Environment     string            `yaml:"environment"`
	Model           string            `yaml:"model"`
	ProcessingDelay Duration          `yaml:"processingDelay"`
	Documents       []FixtureDocument `yaml:"documents"`
	Chunks          []FixtureChunk    `yaml:"chunks"`
	Answers         []CannedAnswer    `yaml:"answers"`
	DefaultAnswer   string            `yaml:"defaultAnswer"`
}

// DefaultFixtures covers runs without a fixture file.
func DefaultFixtures() *Fixtures {
	return &Fixtures{
		Environment:     "development",
		Model:           "stub-model",
		ProcessingDelay: Duration(2 * time.Second),
		Documents: []FixtureDocument{
			{
				ID:       "doc-fixture-1",
				Filename: "service-agreement.pdf",
				Status:   string(models.StatusCompleted),
				FileSize: 182400,
				MimeType: "application/pdf",
			},
		},
		Chunks: []FixtureChunk{
			{
				DocumentID: "doc-fixture-1",
				Content:    "This agreement may be terminated by either party with thirty days written notice.",
				ChunkIndex: 0,
				Similarity: 0.91,
			},
		},
		DefaultAnswer: "Based on the document, no specific provision addresses that question.",
	}
}

// LoadFixtures reads the YAML fixture file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}

	fixtures := DefaultFixtures()
	if err := yaml.Unmarshal(data, fixtures); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return fixtures, nil
}
