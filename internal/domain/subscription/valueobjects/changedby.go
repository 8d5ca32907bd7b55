package valueobjects

// ChangedBy identifies who initiated a tier or lifecycle change.
type ChangedBy string

const (
	ChangedBySystem ChangedBy = "system"
	ChangedByActor  ChangedBy = "actor"
	ChangedByAdmin  ChangedBy = "admin"
)

// IsValid checks if the initiator belongs to the known set.
func (c ChangedBy) IsValid() bool {
	switch c {
	case ChangedBySystem, ChangedByActor, ChangedByAdmin:
		return true
	default:
		return false
	}
}

func (c ChangedBy) String() string {
	return string(c)
}
