package errors

import (
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a classified error.
type ErrorInfo struct {
	Code    string
	Message string
	Column  string // offending column, when the driver names one
}

var (
	// postgres: null value in column "price" of relation "bangles" violates not-null constraint
	pgNotNullColumn = regexp.MustCompile(`null value in column "([^"]+)"`)
	// postgres: column "sizes" of relation "bangles" does not exist / column "x" does not exist
	pgMissingColumn = regexp.MustCompile(`column "([^"]+)"(?: of relation "[^"]+")? does not exist`)
	// sqlite: NOT NULL constraint failed: bangles.price
	sqliteNotNullColumn = regexp.MustCompile(`not null constraint failed: [a-z0-9_]+\.([a-z0-9_]+)`)
	// sqlite: table bangles has no column named sizes / no such column: sizes
	sqliteMissingColumn = regexp.MustCompile(`(?:has no column named|no such column:) ([a-z0-9_."]+)`)
)

// ParseError classifies database, driver and network errors into a code and
// a message that is safe to show. context names the operation, e.g.
// "create bangle".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// Missing tables and columns (postgres 42P01 / 42703, sqlite)
	if strings.Contains(errStrLower, "no such table") ||
		(strings.Contains(errStrLower, "relation") && strings.Contains(errStrLower, "does not exist") && !strings.Contains(errStrLower, "column")) {
		return ErrorInfo{
			Code:    SchemaTableMissing,
			Message: "The table does not exist. Run migrations first",
		}
	}
	if m := firstMatch(errStrLower, pgMissingColumn, sqliteMissingColumn); m != "" {
		return ErrorInfo{
			Code:    SchemaColumnMissing,
			Message: "Column " + m + " does not exist",
			Column:  m,
		}
	}

	// Unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower)
	}

	// Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStrLower, context)
	}

	// Not null constraint violation (23502)
	if strings.Contains(errStrLower, "not-null constraint") || strings.Contains(errStrLower, "not null constraint") {
		return parseNotNullError(errStrLower)
	}

	// Check constraint violation (23514)
	if strings.Contains(errStrLower, "check constraint") {
		return ErrorInfo{
			Code:    ValidationInvalidInput,
			Message: "A value is outside the allowed range",
		}
	}

	// Type mismatch (22P02) e.g. a string sent for a numeric column
	if strings.Contains(errStrLower, "invalid input syntax") || strings.Contains(errStrLower, "malformed array literal") {
		return ErrorInfo{
			Code:    ValidationInvalidFormat,
			Message: "A value has the wrong type for its column",
		}
	}

	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "Could not reach an upstream service. Please try again shortly",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func firstMatch(s string, patterns ...*regexp.Regexp) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(s); len(m) > 1 {
			return strings.Trim(m[1], `"`)
		}
	}
	return ""
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "pkey") || strings.Contains(errLower, "primary key") || strings.Contains(errLower, ".id") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "A record with this ID already exists",
		}
	}
	if strings.Contains(errLower, "entry_key") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "A snapshot with this key is already being written",
		}
	}
	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "This record already exists",
	}
}

func parseForeignKeyError(errLower string, context string) ErrorInfo {
	if strings.Contains(errLower, "still referenced") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "Other records still reference this " + subject(context),
		}
	}
	if strings.Contains(errLower, "bangle_id") || strings.Contains(errLower, "fk_bangles") {
		return ErrorInfo{
			Code:    BangleNotFound,
			Message: "The referenced bangle does not exist",
		}
	}
	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "A referenced record does not exist",
	}
}

func parseNotNullError(errLower string) ErrorInfo {
	column := firstMatch(errLower, pgNotNullColumn, sqliteNotNullColumn)
	if column == "" {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}
	return ErrorInfo{
		Code:    ValidationRequired,
		Message: column + " is required",
		Column:  column,
	}
}

func subject(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "bangle"), strings.Contains(contextLower, "product"):
		return "bangle"
	case strings.Contains(contextLower, "color"):
		return "color"
	case strings.Contains(contextLower, "cart"):
		return "cart"
	case strings.Contains(contextLower, "wishlist"):
		return "wishlist"
	}
	return "record"
}

func getNotFoundMessage(context string) string {
	s := subject(context)
	if s == "record" {
		return "The requested data was not found"
	}
	return strings.ToUpper(s[:1]) + s[1:] + " not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create"), strings.Contains(contextLower, "insert"):
		return "Failed to save. Please try again shortly"
	case strings.Contains(contextLower, "update"):
		return "Failed to update. Please try again shortly"
	case strings.Contains(contextLower, "delete"):
		return "Failed to delete. Please try again shortly"
	}
	return "Something went wrong. Please try again shortly"
}

// ParseAndRespond classifies err and writes it as an ErrorResponse.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
