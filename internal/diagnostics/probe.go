// Package diagnostics narrows down why inserts into a table fail by running
// a fixed sequence of small CRUD probes against it.
package diagnostics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	apperrors "github.com/banglehouse/bangles-backend/internal/errors"
	"github.com/banglehouse/bangles-backend/pkg/logger"
)

type Step string

const (
	StepTableExists  Step = "table_exists"
	StepColumns      Step = "columns"
	StepSelect       Step = "select"
	StepInsertSample Step = "insert_sample"
	StepReadBack     Step = "read_back"
	StepDeleteSample Step = "delete_sample"
)

// Steps is the order the prober runs in.
var Steps = []Step{
	StepTableExists,
	StepColumns,
	StepSelect,
	StepInsertSample,
	StepReadBack,
	StepDeleteSample,
}

// StepResult is the outcome of one probe. A skipped step did not touch the
// database and is neither OK nor failed.
type StepResult struct {
	Step     Step          `json:"step"`
	OK       bool          `json:"ok"`
	Skipped  bool          `json:"skipped,omitempty"`
	Detail   string        `json:"detail,omitempty"`
	Code     string        `json:"code,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Report collects every step. MissingColumns are sample keys the table does
// not have; RequiredColumns are NOT NULL columns without a default that the
// sample leaves out.
type Report struct {
	Table           string       `json:"table"`
	Steps           []StepResult `json:"steps"`
	MissingColumns  []string     `json:"missing_columns,omitempty"`
	RequiredColumns []string     `json:"required_columns,omitempty"`
}

// OK reports whether every step passed.
func (r *Report) OK() bool {
	return len(r.Failed()) == 0
}

func (r *Report) Failed() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if !s.OK && !s.Skipped {
			failed = append(failed, s)
		}
	}
	return failed
}

// Step returns the result of step, or false when it did not run.
func (r *Report) Step(step Step) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Step == step {
			return s, true
		}
	}
	return StepResult{}, false
}

type Prober struct {
	db *gorm.DB
}

func NewProber(db *gorm.DB) *Prober {
	return &Prober{db: db}
}

// errSkipped marks a step that must not run because an earlier one failed.
var errSkipped = errors.New("skipped")

// probeRun carries state between the steps of one run. tx is opened by
// insert_sample and always rolled back, so nothing the probe writes or
// deletes survives the run.
type probeRun struct {
	table    string
	sample   map[string]interface{}
	columns  map[string]gorm.ColumnType
	row      map[string]interface{}
	tx       *gorm.DB
	inserted bool
}

func (r *probeRun) rollback() {
	if r.tx == nil {
		return
	}
	if err := r.tx.Rollback().Error; err != nil {
		logger.Warn("Probe rollback failed", map[string]interface{}{
			"table": r.table,
			"error": err.Error(),
		})
	}
	r.tx = nil
}

// ProbeInsert runs every step in order against table, inserting sample and
// removing it again inside a transaction that is rolled back. A failed step
// is recorded and the next one still runs, except that read_back and
// delete_sample are skipped when the insert failed.
func (p *Prober) ProbeInsert(ctx context.Context, table string, sample map[string]interface{}) *Report {
	log := logger.WithContext(map[string]interface{}{
		"table": table,
	})
	log.Info("Starting insert probe", map[string]interface{}{
		"sample_keys": sortedKeys(sample),
	})

	report := &Report{Table: table}
	run := &probeRun{table: table, sample: sample}
	defer run.rollback()
	db := p.db.WithContext(ctx)

	for _, step := range Steps {
		start := time.Now()
		detail, err := p.runStep(db, step, run, report)

		result := StepResult{
			Step:     step,
			OK:       err == nil,
			Detail:   detail,
			Duration: time.Since(start),
		}
		if errors.Is(err, errSkipped) {
			result.Skipped = true
			log.Debug("Probe step skipped", map[string]interface{}{
				"step":   step,
				"detail": detail,
			})
		} else if err != nil {
			info := apperrors.ParseError(err, "insert "+table)
			result.Code = info.Code
			result.Error = err.Error()
			if result.Detail == "" {
				result.Detail = info.Message
			}
			log.Warn("Probe step failed", map[string]interface{}{
				"step":  step,
				"code":  info.Code,
				"error": err.Error(),
			})
		} else {
			log.Debug("Probe step passed", map[string]interface{}{
				"step":   step,
				"detail": detail,
			})
		}
		report.Steps = append(report.Steps, result)
	}

	log.Info("Insert probe finished", map[string]interface{}{
		"ok":     report.OK(),
		"failed": len(report.Failed()),
	})
	return report
}

func (p *Prober) runStep(db *gorm.DB, step Step, run *probeRun, report *Report) (string, error) {
	switch step {
	case StepTableExists:
		if !db.Migrator().HasTable(run.table) {
			return "", fmt.Errorf("no such table: %s", run.table)
		}
		return "table found", nil

	case StepColumns:
		return p.checkColumns(db, run, report)

	case StepSelect:
		var rows []map[string]interface{}
		if err := db.Table(run.table).Limit(1).Find(&rows).Error; err != nil {
			return "", err
		}
		return fmt.Sprintf("read %d row(s)", len(rows)), nil

	case StepInsertSample:
		run.row = prepareRow(run.sample, run.columns)
		tx := db.Begin()
		if tx.Error != nil {
			return "", tx.Error
		}
		run.tx = tx
		if err := tx.Table(run.table).Create(run.row).Error; err != nil {
			return "", err
		}
		run.inserted = true
		return "sample row inserted", nil

	case StepReadBack:
		if !run.inserted {
			return "sample row was not inserted", errSkipped
		}
		var rows []map[string]interface{}
		if err := run.tx.Table(run.table).Where(rowKey(run.row)).Limit(1).Find(&rows).Error; err != nil {
			return "", err
		}
		if len(rows) == 0 {
			return "", fmt.Errorf("sample row not found after insert")
		}
		return "sample row read back", nil

	case StepDeleteSample:
		if !run.inserted {
			return "sample row was not inserted", errSkipped
		}
		where, args := whereClause(run.tx, rowKey(run.row))
		res := run.tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s", run.tx.Statement.Quote(run.table), where), args...)
		if res.Error != nil {
			return "", res.Error
		}
		return fmt.Sprintf("%d row(s) deleted", res.RowsAffected), nil
	}
	return "", fmt.Errorf("unknown step %q", step)
}

func (p *Prober) checkColumns(db *gorm.DB, run *probeRun, report *Report) (string, error) {
	columnTypes, err := db.Migrator().ColumnTypes(run.table)
	if err != nil {
		return "", err
	}
	if len(columnTypes) == 0 {
		return "", fmt.Errorf("no such table: %s", run.table)
	}

	run.columns = make(map[string]gorm.ColumnType, len(columnTypes))
	for _, ct := range columnTypes {
		run.columns[strings.ToLower(ct.Name())] = ct
	}

	for _, key := range sortedKeys(run.sample) {
		if _, ok := run.columns[strings.ToLower(key)]; !ok {
			report.MissingColumns = append(report.MissingColumns, key)
		}
	}

	for _, ct := range columnTypes {
		name := strings.ToLower(ct.Name())
		if _, given := lookup(run.sample, name); given || !requiresValue(ct) {
			continue
		}
		if name == "id" && generatesID(ct) {
			continue
		}
		report.RequiredColumns = append(report.RequiredColumns, ct.Name())
	}
	sort.Strings(report.RequiredColumns)

	switch {
	case len(report.MissingColumns) > 0:
		return "", fmt.Errorf("table %s has no column named %s", run.table, report.MissingColumns[0])
	case len(report.RequiredColumns) > 0:
		return "", fmt.Errorf("NOT NULL constraint failed: %s.%s", run.table, report.RequiredColumns[0])
	}
	return fmt.Sprintf("%d columns, sample matches", len(columnTypes)), nil
}

// requiresValue is true for NOT NULL columns with no default that are not
// filled in by the database.
func requiresValue(ct gorm.ColumnType) bool {
	if nullable, ok := ct.Nullable(); !ok || nullable {
		return false
	}
	if _, ok := ct.DefaultValue(); ok {
		return false
	}
	if auto, ok := ct.AutoIncrement(); ok && auto {
		return false
	}
	if pk, ok := ct.PrimaryKey(); ok && pk && isIntegerType(ct) {
		return false
	}
	return true
}

// generatesID reports whether the prober fills in a uuid for this id column.
func generatesID(ct gorm.ColumnType) bool {
	t := strings.ToLower(ct.DatabaseTypeName())
	return strings.Contains(t, "char") || strings.Contains(t, "text") || strings.Contains(t, "uuid")
}

func isIntegerType(ct gorm.ColumnType) bool {
	return strings.Contains(strings.ToLower(ct.DatabaseTypeName()), "int")
}

// prepareRow converts JSON values into driver values and adds an id when the
// table has a string id column the sample does not set.
func prepareRow(sample map[string]interface{}, columns map[string]gorm.ColumnType) map[string]interface{} {
	row := make(map[string]interface{}, len(sample)+1)
	for k, v := range sample {
		row[k] = toDriverValue(v)
	}
	if ct, ok := columns["id"]; ok && generatesID(ct) {
		if _, given := lookup(row, "id"); !given {
			row["id"] = uuid.New().String()
		}
	}
	return row
}

func toDriverValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []interface{}:
		strs := make(pq.StringArray, 0, len(val))
		for _, e := range val {
			strs = append(strs, fmt.Sprint(e))
		}
		return strs
	case map[string]interface{}:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
	return v
}

// rowKey identifies the inserted row: by id when present, otherwise by every
// sample column.
func rowKey(row map[string]interface{}) map[string]interface{} {
	if id, ok := lookup(row, "id"); ok {
		return map[string]interface{}{"id": id}
	}
	return row
}

func whereClause(db *gorm.DB, key map[string]interface{}) (string, []interface{}) {
	parts := make([]string, 0, len(key))
	args := make([]interface{}, 0, len(key))
	for _, col := range sortedKeys(key) {
		parts = append(parts, db.Statement.Quote(col)+" = ?")
		args = append(args, key[col])
	}
	return strings.Join(parts, " AND "), args
}

func lookup(m map[string]interface{}, column string) (interface{}, bool) {
	for k, v := range m {
		if strings.EqualFold(k, column) {
			return v, true
		}
	}
	return nil, false
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
