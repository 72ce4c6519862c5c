package toast

// Kind is the presentational severity of a toast.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// Kinds lists every kind in display priority order.
var Kinds = []Kind{KindSuccess, KindError, KindWarning, KindInfo}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSuccess, KindError, KindWarning, KindInfo:
		return true
	}
	return false
}

// ParseKind converts s to a Kind, falling back to KindInfo for unknown input.
func ParseKind(s string) Kind {
	if k := Kind(s); k.Valid() {
		return k
	}
	return KindInfo
}

func (k Kind) String() string {
	return string(k)
}
