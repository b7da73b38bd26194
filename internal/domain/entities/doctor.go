package entities

// DoctorStatus represents where a doctor sits in the partnership funnel
type DoctorStatus string

const (
	DoctorStatusProspecting   DoctorStatus = "prospecting"
	DoctorStatusPresented     DoctorStatus = "presented"
	DoctorStatusActivePartner DoctorStatus = "active_partner"
	DoctorStatusMonitoring    DoctorStatus = "monitoring"
)

// VisitLogKind categorizes a single interaction with a doctor
type VisitLogKind string

const (
	VisitLogKindInPerson     VisitLogKind = "in_person"
	VisitLogKindPhoneCall    VisitLogKind = "phone_call"
	VisitLogKindMaterialSent VisitLogKind = "material_sent"
)

// VisitLog is one dated note attached to a doctor record. Logs are
// append-only; the slice is kept newest first but persisted order is
// not guaranteed after a round trip through the remote store.
type VisitLog struct {
	ID        string       `json:"id"`
	Timestamp string       `json:"timestamp"` // RFC3339
	Note      string       `json:"note"`
	Kind      VisitLogKind `json:"kind,omitempty"`
}

// Doctor is a tracked contact record owned by a single sales rep.
// Timestamps are carried as strings because the record travels as-is
// between the local cache and the remote document collection, and
// historic data may hold values that do not parse.
type Doctor struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Specialty     string       `json:"specialty"`
	Phone         string       `json:"phone"`
	Status        DoctorStatus `json:"status"`
	LastContactAt string       `json:"last_contact_at"` // RFC3339, may be empty
	Location      string       `json:"location"`
	Tags          []string     `json:"tags,omitempty"`
	NextVisitAt   string       `json:"next_visit_at,omitempty"`
	VisitLogs     []VisitLog   `json:"visit_logs"`
	Consultant    string       `json:"consultant,omitempty"`
	OwnerUID      string       `json:"owner_uid,omitempty"`
}

// VipTag is a classification label a rep can pin on doctors
type VipTag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DefaultVipTags is the starter tag set for a fresh account
var DefaultVipTags = []VipTag{
	{ID: "1", Name: "High Prescriber", Color: "green"},
	{ID: "2", Name: "Potential", Color: "blue"},
	{ID: "3", Name: "KOL", Color: "purple"},
}
