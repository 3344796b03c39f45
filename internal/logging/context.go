package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType is the standardized key used to classify notable log records.
	FieldEventType = "event_type"
	// FieldErrorHint is the standardized key for a short operator-facing remediation hint.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldSessionID identifies the discovery session a record belongs to.
	FieldSessionID = "session_id"
	// FieldShow is the standardized key for a show title.
	FieldShow = "show"
	// FieldSeed is the library title a discovery result came from.
	FieldSeed = "seed"
	// FieldYear is the first-air year of a show.
	FieldYear = "year"
	// FieldTVDBID is the TVDB series id a title resolved to.
	FieldTVDBID = "tvdb_id"
	// FieldDecisionType is the standardized key for match/filter decision logs.
	FieldDecisionType = "decision_type"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)
