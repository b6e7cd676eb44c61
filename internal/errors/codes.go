package errors

// Error codes returned in the "error" field of every error response.
// Format: CATEGORY_SPECIFIC_DETAIL. The storefront maps codes to copy.

const (
	// Validation
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// Resources
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// Sessions
	SessionMissing = "SESSION_MISSING"

	// Cart
	CartInvalidItem      = "CART_INVALID_ITEM"
	CartInvalidColor     = "CART_INVALID_COLOR"
	CartInvalidOrderType = "CART_INVALID_ORDER_TYPE"

	// Wishlist
	WishlistInvalidItem = "WISHLIST_INVALID_ITEM"

	// Catalog
	BangleNotFound     = "BANGLE_NOT_FOUND"
	BangleInvalid      = "BANGLE_INVALID"
	CatalogExportError = "CATALOG_EXPORT_FAILED"

	// Translation
	TranslateInvalidRequest = "TRANSLATE_INVALID_REQUEST"

	// Uploads
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFailed          = "UPLOAD_FAILED"

	// Schema (reported by the insert probe)
	SchemaTableMissing  = "SCHEMA_TABLE_MISSING"
	SchemaColumnMissing = "SCHEMA_COLUMN_MISSING"

	// Internal
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
	InternalStorageError  = "INTERNAL_STORAGE_UNAVAILABLE"
)
