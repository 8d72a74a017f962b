package policy

//go:generate go run github.com/dmarkham/enumer -type Kind -trimprefix Kind -transform lower -yaml -output kind.gen.go

// Kind is the type of a statement in a rights document
type Kind int

const (
	KindRole Kind = iota
	KindUser
)

// Tag returns the YAML tag introducing statements of this kind
func (k Kind) Tag() string {
	return "!" + k.String()
}
