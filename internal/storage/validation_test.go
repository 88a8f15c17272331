package storage

import (
	"context"
	"testing"
	"time"

	"github.com/oakmere/auditflow/internal/model"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name      string
		str       string
		paramName string
		wantErr   bool
	}{
		{
			name:      "valid string",
			str:       "test",
			paramName: "param",
			wantErr:   false,
		},
		{
			name:      "empty string",
			str:       "",
			paramName: "param",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			str:       "   ",
			paramName: "param",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, tt.paramName)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateReferenceEntry(t *testing.T) {
	valid := model.ReferenceEntry{
		Kind:      model.KindSection,
		ID:        "162",
		Title:     "Trade or business expenses",
		Content:   "Deductible trade and business expenses.",
		Source:    "embedded",
		FetchedAt: time.Now(),
	}

	tests := []struct {
		mutate  func(*model.ReferenceEntry)
		name    string
		nilArg  bool
		wantErr bool
	}{
		{
			name:    "valid entry",
			mutate:  func(*model.ReferenceEntry) {},
			wantErr: false,
		},
		{
			name:    "nil entry",
			nilArg:  true,
			wantErr: true,
		},
		{
			name:    "unknown kind",
			mutate:  func(e *model.ReferenceEntry) { e.Kind = "statute" },
			wantErr: true,
		},
		{
			name:    "blank id",
			mutate:  func(e *model.ReferenceEntry) { e.ID = "  " },
			wantErr: true,
		},
		{
			name:    "zero fetch time",
			mutate:  func(e *model.ReferenceEntry) { e.FetchedAt = time.Time{} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.nilArg {
				err = validateReferenceEntry(nil)
			} else {
				entry := valid
				tt.mutate(&entry)
				err = validateReferenceEntry(&entry)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("validateReferenceEntry() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAssessmentRecord(t *testing.T) {
	valid := model.AssessmentRecord{
		ID:         "rec-1",
		AssessedAt: time.Now(),
		Result: model.AssessmentResult{
			Level: model.RiskLevelLow,
		},
	}

	tests := []struct {
		mutate  func(*model.AssessmentRecord)
		name    string
		nilArg  bool
		wantErr bool
	}{
		{
			name:    "valid record",
			mutate:  func(*model.AssessmentRecord) {},
			wantErr: false,
		},
		{
			name:    "nil record",
			nilArg:  true,
			wantErr: true,
		},
		{
			name:    "blank id",
			mutate:  func(r *model.AssessmentRecord) { r.ID = "" },
			wantErr: true,
		},
		{
			name:    "zero assessment time",
			mutate:  func(r *model.AssessmentRecord) { r.AssessedAt = time.Time{} },
			wantErr: true,
		},
		{
			name:    "unknown risk level",
			mutate:  func(r *model.AssessmentRecord) { r.Result.Level = "Critical" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.nilArg {
				err = validateAssessmentRecord(nil)
			} else {
				record := valid
				tt.mutate(&record)
				err = validateAssessmentRecord(&record)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAssessmentRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
