package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldMethod      = "method"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldUserID      = "user_id"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldDate        = "date"
	FieldCurrency    = "currency"
	FieldSubcategory = "subcategory"
	FieldCategory    = "category"
	FieldAccount     = "account"
	FieldCacheHit    = "cache_hit"
	FieldCacheKey    = "cache_key"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentGRPC      = "grpc"
	ComponentStorage   = "storage"
	ComponentCache     = "cache"
	ComponentAggregate = "aggregate"
	ComponentOverview  = "overview"
	ComponentPlanning  = "planning"
	ComponentConfig    = "config"
)

// Operations defines standard operation names
const (
	OpProject  = "project"
	OpSync     = "sync"
	OpLoad     = "load"
	OpMigrate  = "migrate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
