package mapdata

import (
	"strconv"
	"strings"
)

// Section identifies a block of records introduced by a marker record.
type Section int

const (
	// SectionNone is the state before the first marker, or after an
	// unrecognised one. Records in this state are ignored.
	SectionNone Section = iota
	SectionMeta
	SectionMaintainers
	SectionNamespaces
	SectionDistributions
)

var sectionMarkers = map[string]Section{
	"[META]":          SectionMeta,
	"[MAINTAINERS]":   SectionMaintainers,
	"[NAMESPACES]":    SectionNamespaces,
	"[DISTRIBUTIONS]": SectionDistributions,
}

// String returns the marker text for the section.
func (s Section) String() string {
	switch s {
	case SectionMeta:
		return "[META]"
	case SectionMaintainers:
		return "[MAINTAINERS]"
	case SectionNamespaces:
		return "[NAMESPACES]"
	case SectionDistributions:
		return "[DISTRIBUTIONS]"
	}
	return "[NONE]"
}

// Sections lists the known sections in the order producers emit them.
func Sections() []Section {
	return []Section{SectionMeta, SectionMaintainers, SectionNamespaces, SectionDistributions}
}

// IsMarker reports whether field has the shape of a section marker
// ("[" ... "]"), whether or not the section is known.
func IsMarker(field string) bool {
	return len(field) >= 2 && strings.HasPrefix(field, "[") && strings.HasSuffix(field, "]")
}

// IsBrokenMarker reports whether field starts like a marker but is not
// closed, e.g. "[DISTRIBUTIONS". Such a record cannot be attributed to any
// section.
func IsBrokenMarker(field string) bool {
	return strings.HasPrefix(field, "[") && !strings.HasSuffix(field, "]")
}

// ParseMarker maps a marker field to its section. ok is false for fields
// that are not markers; an unknown marker returns SectionNone with ok true.
func ParseMarker(field string) (s Section, ok bool) {
	if !IsMarker(field) {
		return SectionNone, false
	}
	return sectionMarkers[field], true
}

// ParseHex decodes a lowercase hexadecimal integer field. Signs and the
// "0x" prefix are rejected.
func ParseHex(field string) (int, error) {
	n, err := strconv.ParseUint(field, 16, 31)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// FormatHex encodes n the way ParseHex expects it.
func FormatHex(n int) string {
	return strconv.FormatInt(int64(n), 16)
}
