package entities

// Urgency is the coarse follow-up classification used for card coloring
type Urgency string

const (
	UrgencyNone    Urgency = "none"
	UrgencyWarning Urgency = "warning"
	UrgencyUrgent  Urgency = "urgent"
)

// FollowUpAlert pairs a doctor with the number of whole days since the
// most recent interaction.
type FollowUpAlert struct {
	Doctor       *Doctor `json:"doctor"`
	DaysInactive int     `json:"days_inactive"`
}
