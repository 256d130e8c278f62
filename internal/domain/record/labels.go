package record

import "strings"

// Equipment codes with friendlier labels. Codes not listed display as-is.
var equipmentLabels = map[string]string{
	"Multi-ply": "Equipped",
	"Bare":      "Raw",
}

var equipmentCodes = func() map[string]string {
	m := make(map[string]string, len(equipmentLabels))
	for code, label := range equipmentLabels {
		m[label] = code
	}
	return m
}()

// EquipmentLabel maps a raw equipment code to its display label.
func EquipmentLabel(code string) string {
	if label, ok := equipmentLabels[code]; ok {
		return label
	}
	return code
}

// EquipmentCode is the inverse of EquipmentLabel.
func EquipmentCode(label string) string {
	if code, ok := equipmentCodes[label]; ok {
		return code
	}
	return label
}

// Lift type labels.
const (
	FullPower  = "Full Power"
	SingleLift = "Single Lift"
)

var singleLiftMarkers = []string{"single", "bench only", "deadlift only"}

// IsSingleLiftType reports whether a record type describes a single-lift
// competition (case-insensitive).
func IsSingleLiftType(recordType string) bool {
	lower := strings.ToLower(recordType)
	for _, m := range singleLiftMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// LiftType classifies a record type as Full Power or Single Lift.
func LiftType(recordType string) string {
	if IsSingleLiftType(recordType) {
		return SingleLift
	}
	return FullPower
}
