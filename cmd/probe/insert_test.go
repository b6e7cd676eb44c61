package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/banglehouse/bangles-backend/internal/diagnostics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSample(t *testing.T) {
	sample, err := parseSample(`{"name":"Probe","sizes":["2.4"]}`)
	require.NoError(t, err)
	assert.Equal(t, "Probe", sample["name"])

	_, err = parseSample(`null`)
	assert.Error(t, err)

	_, err = parseSample(`[1,2]`)
	assert.Error(t, err)

	_, err = parseSample(`{`)
	assert.Error(t, err)
}

func sampleReport() *diagnostics.Report {
	return &diagnostics.Report{
		Table: "bangles",
		Steps: []diagnostics.StepResult{
			{Step: diagnostics.StepTableExists, OK: true, Duration: time.Millisecond},
			{Step: diagnostics.StepInsertSample, OK: false, Code: "VALIDATION_REQUIRED", Error: "price is required"},
		},
		RequiredColumns: []string{"price"},
	}
}

func TestWriteReport_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, sampleReport(), "text"))

	out := buf.String()
	assert.Contains(t, out, "Insert probe: bangles")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "[VALIDATION_REQUIRED] price is required")
	assert.Contains(t, out, "Required columns missing from sample: [price]")
	assert.Contains(t, out, "1 step(s) failed.")
}

func TestWriteReport_SkippedSteps(t *testing.T) {
	report := sampleReport()
	report.Steps = append(report.Steps, diagnostics.StepResult{
		Step: diagnostics.StepDeleteSample, Skipped: true, Detail: "sample row was not inserted",
	})

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, report, "text"))

	out := buf.String()
	assert.Contains(t, out, "skip")
	assert.Contains(t, out, "sample row was not inserted")
	assert.Contains(t, out, "1 step(s) failed.")
}

func TestWriteReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, sampleReport(), "json"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "bangles", decoded["table"])
	assert.Len(t, decoded["steps"], 2)
}
