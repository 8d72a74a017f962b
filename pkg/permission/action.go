package permission

//go:generate go run github.com/dmarkham/enumer -type Action -trimprefix Action -transform lower -json -yaml -output action.gen.go

// Action is one of the four operations a permission covers
type Action int

const (
	ActionRead Action = iota
	ActionWrite
	ActionUpdate
	ActionDelete
)

// Label returns the column heading used when rendering tables
func (a Action) Label() string {
	switch a {
	case ActionRead:
		return "Read"
	case ActionWrite:
		return "Write"
	case ActionUpdate:
		return "Update"
	case ActionDelete:
		return "Delete"
	default:
		return a.String()
	}
}
