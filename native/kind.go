package native

// ObjectKind identifies the layout of the object that lives at an Address. Every operation checks the
// kind of the address it receives, so a Unit address can never be used as a VecUnit.
type ObjectKind byte

const (
	KindUnit ObjectKind = iota
	KindVecUnit
	// KindVecUnitBuffer is the element storage of a VecUnit. It is never handed out to callers.
	KindVecUnitBuffer

	objectKindCount
)

var objectKindMapping = make(map[ObjectKind]string)

func (k ObjectKind) String() string {
	str, ok := objectKindMapping[k]
	if !ok {
		return "UnknownKind"
	}
	return str
}

func init() {
	objectKindMapping[KindUnit] = "Unit"
	objectKindMapping[KindVecUnit] = "VecUnit"
	objectKindMapping[KindVecUnitBuffer] = "VecUnitBuffer"
}
