package model

// DataType tags an ingestion payload with the processor that handles it.
// The set is closed; the registry builds an exhaustive table at startup.
type DataType string

const (
	TypeRecoveryMetrics DataType = "RECOVERY_METRICS"
	TypeInjuryUpdate    DataType = "INJURY_UPDATE"
	TypeInjuryResolved  DataType = "INJURY_RESOLVED"
	TypeTherapySession  DataType = "THERAPY_SESSION"
	TypeStatUpdate      DataType = "STAT_UPDATE"
	TypeProfileUpdate   DataType = "PROFILE_UPDATE"
	TypeAIFeedback      DataType = "AI_FEEDBACK"
	TypeLinkRequest     DataType = "LINK_REQUEST"
)

// DataTypes lists every registered data type.
func DataTypes() []DataType {
	return []DataType{
		TypeRecoveryMetrics,
		TypeInjuryUpdate,
		TypeInjuryResolved,
		TypeTherapySession,
		TypeStatUpdate,
		TypeProfileUpdate,
		TypeAIFeedback,
		TypeLinkRequest,
	}
}

// Event names published on the bus.
const (
	EventDataUpdated        = "DATA_UPDATED"
	EventSystemAlert        = "SYSTEM_ALERT"
	EventUIFeedback         = "UI_FEEDBACK"
	EventSimulationComplete = "SIMULATION_COMPLETE"
)

// Alert levels carried by SYSTEM_ALERT payloads.
const (
	AlertLevelInfo     = "INFO"
	AlertLevelWarning  = "WARNING"
	AlertLevelCritical = "CRITICAL"
)
