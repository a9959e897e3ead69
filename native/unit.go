package native

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/exp/slog"
)

type Team uint8

const (
	TeamRed Team = iota
	TeamBlue
)

var teamMapping = map[Team]string{
	TeamRed:  "Red",
	TeamBlue: "Blue",
}

func (t Team) String() string {
	return enumString(t, teamMapping, "Team")
}

func (t Team) MarshalText() ([]byte, error) {
	return enumMarshalText(t, teamMapping, "Team")
}

func (t *Team) UnmarshalText(b []byte) error {
	return enumUnmarshalText(t, b, teamMapping, "Team")
}

type UnitType uint8

const (
	UnitTypeWorker UnitType = iota
	UnitTypeKnight
	UnitTypeRanger
	UnitTypeMage
	UnitTypeHealer
	UnitTypeFactory
	UnitTypeRocket
)

var unitTypeMapping = map[UnitType]string{
	UnitTypeWorker:  "Worker",
	UnitTypeKnight:  "Knight",
	UnitTypeRanger:  "Ranger",
	UnitTypeMage:    "Mage",
	UnitTypeHealer:  "Healer",
	UnitTypeFactory: "Factory",
	UnitTypeRocket:  "Rocket",
}

func (t UnitType) String() string {
	return enumString(t, unitTypeMapping, "UnitType")
}

func (t UnitType) MarshalText() ([]byte, error) {
	return enumMarshalText(t, unitTypeMapping, "UnitType")
}

func (t *UnitType) UnmarshalText(b []byte) error {
	return enumUnmarshalText(t, b, unitTypeMapping, "UnitType")
}

// IsStructure is true for unit types that can hold other units in their garrison
func (t UnitType) IsStructure() bool {
	return t == UnitTypeFactory || t == UnitTypeRocket
}

type Planet uint8

const (
	PlanetEarth Planet = iota
	PlanetMars
)

var planetMapping = map[Planet]string{
	PlanetEarth: "Earth",
	PlanetMars:  "Mars",
}

func (p Planet) String() string {
	return enumString(p, planetMapping, "Planet")
}

func (p Planet) MarshalText() ([]byte, error) {
	return enumMarshalText(p, planetMapping, "Planet")
}

func (p *Planet) UnmarshalText(b []byte) error {
	return enumUnmarshalText(p, b, planetMapping, "Planet")
}

// LocationKind distinguishes units standing on a planet from units held inside a structure or
// travelling between planets
type LocationKind uint8

const (
	LocationOnMap LocationKind = iota
	LocationInGarrison
	LocationInSpace
)

var locationKindMapping = map[LocationKind]string{
	LocationOnMap:      "OnMap",
	LocationInGarrison: "InGarrison",
	LocationInSpace:    "InSpace",
}

func (k LocationKind) String() string {
	return enumString(k, locationKindMapping, "LocationKind")
}

func (k LocationKind) MarshalText() ([]byte, error) {
	return enumMarshalText(k, locationKindMapping, "LocationKind")
}

func (k *LocationKind) UnmarshalText(b []byte) error {
	return enumUnmarshalText(k, b, locationKindMapping, "LocationKind")
}

func enumString[T ~uint8](value T, mapping map[T]string, typeName string) string {
	str, ok := mapping[value]
	if !ok {
		return fmt.Sprintf("Unknown%s(%d)", typeName, uint8(value))
	}
	return str
}

func enumMarshalText[T ~uint8](value T, mapping map[T]string, typeName string) ([]byte, error) {
	str, ok := mapping[value]
	if !ok {
		return nil, errors.Newf("%d is not a valid %s", uint8(value), typeName)
	}
	return []byte(str), nil
}

func enumUnmarshalText[T ~uint8](value *T, text []byte, mapping map[T]string, typeName string) error {
	for candidate, str := range mapping {
		if strings.EqualFold(str, string(text)) {
			*value = candidate
			return nil
		}
	}

	return errors.Newf("unknown %s '%s'", typeName, string(text))
}

// Location is where a unit currently is. X, Y and Planet are only meaningful for LocationOnMap, and
// Garrison is the id of the holding structure for LocationInGarrison.
type Location struct {
	Kind     LocationKind `cbor:"1,keyasint" toml:"kind"`
	Planet   Planet       `cbor:"2,keyasint" toml:"planet"`
	X        int32        `cbor:"3,keyasint" toml:"x"`
	Y        int32        `cbor:"4,keyasint" toml:"y"`
	Garrison uint32       `cbor:"5,keyasint" toml:"garrison"`
}

func (l Location) String() string {
	switch l.Kind {
	case LocationOnMap:
		return fmt.Sprintf("OnMap(%s, %d, %d)", l.Planet, l.X, l.Y)
	case LocationInGarrison:
		return fmt.Sprintf("InGarrison(%d)", l.Garrison)
	case LocationInSpace:
		return "InSpace"
	}

	return l.Kind.String()
}

// UnitData is the record stored in native memory for every Unit object
type UnitData struct {
	ID        uint32   `cbor:"1,keyasint" toml:"id"`
	Team      Team     `cbor:"2,keyasint" toml:"team"`
	Type      UnitType `cbor:"3,keyasint" toml:"type"`
	Health    uint32   `cbor:"4,keyasint" toml:"health"`
	MaxHealth uint32   `cbor:"5,keyasint" toml:"max_health"`
	Location  Location `cbor:"6,keyasint" toml:"location"`
}

func (d UnitData) String() string {
	return fmt.Sprintf("Unit{id: %d, team: %s, type: %s, health: %d/%d, location: %s}",
		d.ID, d.Team, d.Type, d.Health, d.MaxHealth, d.Location)
}

var unitEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("native: failed to create CBOR enc mode: %v", err))
	}
	unitEncMode = em
}

func (h *Heap) newUnit(data UnitData) (*allocation, error) {
	payload, err := unitEncMode.Marshal(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode unit %d", data.ID)
	}

	alloc, err := h.alloc(KindUnit, len(payload))
	if err != nil {
		return nil, err
	}

	copy(alloc.bytes(), payload)
	return alloc, nil
}

func (h *Heap) cloneUnit(src *allocation) (*allocation, error) {
	alloc, err := h.alloc(KindUnit, src.size)
	if err != nil {
		return nil, err
	}

	copy(alloc.bytes(), src.bytes())
	return alloc, nil
}

func (h *Heap) unitData(alloc *allocation) UnitData {
	var data UnitData
	err := cbor.Unmarshal(alloc.bytes(), &data)
	if err != nil {
		panic(errors.Wrapf(err, "unit at %s could not be decoded", alloc.address))
	}

	return data
}

func (h *Heap) logCreateFailure(operation string, err error) {
	h.logger.Error(operation+" failed, returning the null address", slog.Any("error", err))
}

// NewUnit stores a new Unit object and returns its address, or Null if the heap cannot hold it
func (h *Heap) NewUnit(data UnitData) Address {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	alloc, err := h.newUnit(data)
	if err != nil {
		h.logCreateFailure("NewUnit", err)
		return Null
	}

	return alloc.address
}

// DeleteUnit frees a Unit object. The address must not be used afterward.
func (h *Heap) DeleteUnit(unit Address) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.free(h.lookup(unit, KindUnit))
}

// UnitClone copies a Unit object and returns the address of the copy, or Null if the heap cannot hold
// it
func (h *Heap) UnitClone(unit Address) Address {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	alloc, err := h.cloneUnit(h.lookup(unit, KindUnit))
	if err != nil {
		h.logCreateFailure("UnitClone", err)
		return Null
	}

	return alloc.address
}

func (h *Heap) UnitToString(unit Address) string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return h.unitData(h.lookup(unit, KindUnit)).String()
}

// UnitData decodes the record stored for a Unit object
func (h *Heap) UnitData(unit Address) UnitData {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return h.unitData(h.lookup(unit, KindUnit))
}
