package nexus

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ParseUniq parses a record's "u" (identity) field: 4 or 5 pipe-delimited
// parts, group|artifact|version|classifier|extension?. The literal "NA"
// in the classifier slot means absent.
func ParseUniq(value string) (UniqID, error) {
	parts := strings.Split(value, "|")

	get := func(i int, label string) (string, error) {
		if i >= len(parts) {
			return "", fmt.Errorf("short uniq: %s", label)
		}
		return parts[i], nil
	}

	group, err := get(0, "group")
	if err != nil {
		return UniqID{}, err
	}
	artifact, err := get(1, "artifact")
	if err != nil {
		return UniqID{}, err
	}
	version, err := get(2, "version")
	if err != nil {
		return UniqID{}, err
	}
	classifierRaw, err := get(3, "classifier")
	if err != nil {
		return UniqID{}, err
	}

	id := UniqID{Group: group, Artifact: artifact, Version: version}
	if classifierRaw != "NA" {
		c := classifierRaw
		id.Classifier = &c
	}
	if len(parts) > 4 {
		e := parts[4]
		id.Extension = &e
	}
	return id, nil
}

// ParseInfo parses a record's "i" (object info) field: exactly 7
// pipe-delimited parts, packaging|last_modified|size|src|doc|sig|extension.
func ParseInfo(value string) (FullInfo, error) {
	parts := strings.Split(value, "|")
	if len(parts) > 7 {
		return FullInfo{}, fmt.Errorf("long info: %d parts, want 7", len(parts))
	}

	get := func(i int, label string) (string, error) {
		if i >= len(parts) {
			return "", fmt.Errorf("short info: %s", label)
		}
		return parts[i], nil
	}

	packaging, err := get(0, "packaging")
	if err != nil {
		return FullInfo{}, err
	}
	lastModRaw, err := get(1, "time")
	if err != nil {
		return FullInfo{}, err
	}
	lastModified, err := strconv.ParseUint(lastModRaw, 10, 64)
	if err != nil {
		return FullInfo{}, fmt.Errorf("reading time: %w", err)
	}
	sizeRaw, err := get(2, "size")
	if err != nil {
		return FullInfo{}, err
	}
	size, err := ParseSize(sizeRaw)
	if err != nil {
		return FullInfo{}, err
	}
	srcRaw, err := get(3, "sources flag")
	if err != nil {
		return FullInfo{}, err
	}
	src, err := ParseAttachmentStatus(srcRaw)
	if err != nil {
		return FullInfo{}, err
	}
	docRaw, err := get(4, "flag 2")
	if err != nil {
		return FullInfo{}, err
	}
	doc, err := ParseAttachmentStatus(docRaw)
	if err != nil {
		return FullInfo{}, err
	}
	sigRaw, err := get(5, "flag 3")
	if err != nil {
		return FullInfo{}, err
	}
	sig, err := ParseAttachmentStatus(sigRaw)
	if err != nil {
		return FullInfo{}, err
	}
	extension, err := get(6, "extension")
	if err != nil {
		return FullInfo{}, err
	}

	return FullInfo{
		Packaging:         packaging,
		LastModified:      lastModified,
		Size:              size,
		SourceAttached:    src,
		JavadocAttached:   doc,
		SignatureAttached: sig,
		Extension:         extension,
	}, nil
}

// ParseSize parses the "i" field's size part. "-1" means absent.
func ParseSize(value string) (*uint64, error) {
	if value == "-1" {
		return nil, nil
	}
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("reading size: %w", err)
	}
	return &v, nil
}

// ParseAttachmentStatus parses a single-digit attachment flag: "0"
// Absent, "1" Present, "2" Unavailable.
func ParseAttachmentStatus(value string) (AttachmentStatus, error) {
	v, err := strconv.ParseUint(value, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid attachment value: %q: %w", value, err)
	}
	switch v {
	case 0:
		return Absent, nil
	case 1:
		return Present, nil
	case 2:
		return Unavailable, nil
	default:
		return 0, fmt.Errorf("invalid attachment value: %q", value)
	}
}

// ParseChecksum decodes a lowercase hex SHA-1 (40 characters, 20 bytes).
func ParseChecksum(value string) (Checksum, error) {
	var c Checksum
	if len(value) != hex.EncodedLen(len(c)) {
		return Checksum{}, fmt.Errorf("decoding checksum: wrong length %d", len(value))
	}
	if _, err := hex.Decode(c[:], []byte(value)); err != nil {
		return Checksum{}, fmt.Errorf("decoding checksum: %w", err)
	}
	return c, nil
}
