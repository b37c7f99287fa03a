package errors

// Error codes returned alongside the message so the dashboard can branch on them.
// Format: CATEGORY_SPECIFIC_DETAIL

const (
	// Validation
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationRequired      = "VALIDATION_REQUIRED"
	RequestBodyTooLarge     = "REQUEST_BODY_TOO_LARGE"

	// Resources
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// Parts, sets and orders
	PartNotFound      = "PART_NOT_FOUND"
	PartAlreadyExists = "PART_ALREADY_EXISTS"
	SetNotFound       = "SET_NOT_FOUND"
	SetNameExists     = "SET_NAME_EXISTS"
	OrderNotFound     = "ORDER_NOT_FOUND"
	OrderIDExists     = "ORDER_ID_EXISTS"

	// Uploads and imports
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFailed          = "UPLOAD_FAILED"
	ImportInvalidFile     = "IMPORT_INVALID_FILE"

	// Internal
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	RouteNotFound         = "ROUTE_NOT_FOUND"
)
