package importer

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/quickmark/qr-management/internal"
	"github.com/quickmark/qr-management/internal/auth"
	"github.com/quickmark/qr-management/internal/qrcode"
	"github.com/quickmark/qr-management/pkg/logger"
)

// Row outcome statuses for the generation report.
const (
	OutcomeCreated = "created"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// RowOutcome reports what happened to one source row. Every parsed row gets
// an entry; nothing is dropped silently.
type RowOutcome struct {
	RowIndex int    `json:"row_index"` // zero-based position in the parsed file
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
	QRCodeID int64  `json:"qr_code_id,omitempty"`
}

// Result is the final report of a bulk generation run.
type Result struct {
	TotalRows int              `json:"total_rows"`
	Created   int              `json:"created"`
	Skipped   int              `json:"skipped"`
	Failed    int              `json:"failed"`
	Outcomes  []RowOutcome     `json:"outcomes"`
	Samples   []*qrcode.QRCode `json:"samples"`
	More      string           `json:"more,omitempty"` // "+N more" when created > samples
}

// QRCreator is the slice of the QR code service the pipeline needs.
type QRCreator interface {
	Create(actor *auth.User, dto qrcode.CreateDTO) (*qrcode.QRCode, error)
}

type Service struct {
	creator QRCreator
	config  internal.ImportConfig
	logger  *slog.Logger
}

func NewService(creator QRCreator, cfg internal.ImportConfig) *Service {
	cfg.ApplyDefaults()
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Service{
		creator: creator,
		config:  cfg,
		logger:  lg,
	}
}

// Parse reads an uploaded file into keyed rows, enforcing the size and row
// limits from configuration. An oversized upload is rejected outright rather
// than parsed up to the cutoff, which would drop tail rows without a trace.
func (s *Service) Parse(r io.Reader, filename string) (*ParsedFile, error) {
	limited := &io.LimitedReader{R: r, N: s.config.MaxFileBytes + 1}
	parsed, err := ParseFile(limited, filename, s.config.MaxRows)
	if err != nil {
		return nil, err
	}
	if limited.N == 0 {
		return nil, internal.NewValidationError(
			fmt.Sprintf("file exceeds the %d byte limit", s.config.MaxFileBytes),
			internal.ErrCodeFileTooLarge)
	}
	return parsed, nil
}

// PreviewRow is one annotated preview line: the mapped name and content the
// generator would use for that row.
type PreviewRow struct {
	RowIndex int    `json:"row_index"`
	Name     string `json:"name"`
	Content  string `json:"content"`
}

// Preview validates the mapping and renders the first few rows through it.
func (s *Service) Preview(parsed *ParsedFile, mapping Mapping) ([]PreviewRow, error) {
	if err := mapping.Validate(parsed.Headers); err != nil {
		return nil, err
	}

	n := s.config.PreviewRows
	if n > len(parsed.Rows) {
		n = len(parsed.Rows)
	}

	preview := make([]PreviewRow, 0, n)
	for i := 0; i < n; i++ {
		preview = append(preview, PreviewRow{
			RowIndex: i,
			Name:     parsed.Rows[i][mapping.NameColumn],
			Content:  parsed.Rows[i][mapping.ContentColumn],
		})
	}
	return preview, nil
}

// Generate walks the parsed rows in order and creates one QR code per row
// with both mapped fields present. Rows missing a field are reported as
// skipped; a store failure marks that row failed and the loop continues, so
// one bad row never aborts the rest. The run is not atomic: codes created
// before a failure stay created.
func (s *Service) Generate(actor *auth.User, parsed *ParsedFile, mapping Mapping) (*Result, error) {
	if err := mapping.Validate(parsed.Headers); err != nil {
		return nil, err
	}

	result := &Result{
		TotalRows: len(parsed.Rows),
		Outcomes:  make([]RowOutcome, 0, len(parsed.Rows)),
	}

	for i, row := range parsed.Rows {
		name := row[mapping.NameColumn]
		content := row[mapping.ContentColumn]

		if name == "" || content == "" {
			reason := "missing name"
			if name != "" {
				reason = "missing content"
			}
			result.Skipped++
			result.Outcomes = append(result.Outcomes, RowOutcome{
				RowIndex: i,
				Status:   OutcomeSkipped,
				Reason:   reason,
			})
			continue
		}

		created, err := s.creator.Create(actor, qrcode.CreateDTO{
			Name:    name,
			Type:    mapping.Type,
			Content: mapping.content(content),
		})
		if err != nil {
			s.logger.Error("bulk import row failed",
				"row_index", i, "owner_id", actor.ID, "error", err)
			result.Failed++
			result.Outcomes = append(result.Outcomes, RowOutcome{
				RowIndex: i,
				Status:   OutcomeFailed,
				Reason:   err.Error(),
			})
			continue
		}

		result.Created++
		result.Outcomes = append(result.Outcomes, RowOutcome{
			RowIndex: i,
			Status:   OutcomeCreated,
			QRCodeID: created.ID,
		})
		if len(result.Samples) < s.config.SampleResults {
			result.Samples = append(result.Samples, created)
		}
	}

	if extra := result.Created - len(result.Samples); extra > 0 {
		result.More = fmt.Sprintf("+%d more", extra)
	}

	s.logger.Info("bulk import finished",
		"owner_id", actor.ID, "total", result.TotalRows,
		"created", result.Created, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}
