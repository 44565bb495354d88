package audithook

// Action constants for audit events.
const (
	// Beat actions
	ActionBeatCreated  = "beat.created"
	ActionBeatUpdated  = "beat.updated"
	ActionBeatDeleted  = "beat.deleted"
	ActionPlaysFlushed = "plays.flushed"

	// Sale actions
	ActionSaleRecorded  = "sale.recorded"
	ActionExclusiveSold = "sale.exclusive_sold"
	ActionPaymentFailed = "payment.failed"
	ActionOrderCreated  = "order.created"
	ActionOrderCaptured = "order.captured"

	// Entitlement actions
	ActionEntitlementChecked = "entitlement.checked"
	ActionEntitlementDenied  = "entitlement.denied"

	// Account actions
	ActionUserRegistered = "user.registered"
	ActionNotifyFailed   = "notify.failed"

	// Cart actions
	ActionCartSaved = "cart.saved"
)

// Resource constants for audit events.
const (
	ResourceBeat        = "beat"
	ResourceSale        = "sale"
	ResourceOrder       = "order"
	ResourceEntitlement = "entitlement"
	ResourceAccount     = "account"
	ResourceCart        = "cart"
	ResourceNotify      = "notify"
)

// Category constants for audit events.
const (
	CategoryCatalog = "catalog"
	CategorySales   = "sales"
	CategoryPayment = "payment"
	CategoryAccess  = "access"
	CategoryAccount = "account"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
