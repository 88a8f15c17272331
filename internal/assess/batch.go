package assess

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/oakmere/auditflow/internal/model"
	"github.com/oakmere/auditflow/internal/service"
)

// maxRecordBytes bounds a single JSONL line.
const maxRecordBytes = 1 << 20

// BatchResult is the outcome of one line in a batch run.
type BatchResult struct {
	Err    error
	Result model.AssessmentResult
	Line   int
}

// RunBatch assesses one JSONL record per line. A bad line is reported
// through onResult and the run continues; only ctx cancellation or a
// read failure stops it early. onResult may be nil.
func (s *Service) RunBatch(ctx context.Context, r io.Reader, onResult func(BatchResult)) (service.BatchStats, error) {
	stats := service.BatchStats{
		ByLevel: make(map[model.RiskLevel]int),
	}
	start := time.Now()

	report := func(res BatchResult) {
		if onResult != nil {
			onResult(res)
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)

	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}

		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		stats.Total++

		var record model.TaxDataRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			stats.Failed++
			report(BatchResult{Line: line, Err: fmt.Errorf("line %d: invalid record: %w", line, err)})
			continue
		}

		result, err := s.Analyze(ctx, record)
		if err != nil {
			stats.Failed++
			report(BatchResult{Line: line, Err: fmt.Errorf("line %d: %w", line, err)})
			continue
		}

		stats.Assessed++
		stats.ByLevel[result.Level]++
		report(BatchResult{Line: line, Result: result})
	}
	if err := scanner.Err(); err != nil {
		stats.Duration = time.Since(start)
		return stats, fmt.Errorf("reading batch input: %w", err)
	}

	stats.Duration = time.Since(start)
	s.logger.Info("batch run complete",
		"total", stats.Total,
		"assessed", stats.Assessed,
		"failed", stats.Failed,
		"duration", stats.Duration)

	return stats, nil
}
