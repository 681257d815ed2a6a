package nexus

import (
	"fmt"
	"io"
	"strconv"

	"nexidx/javaio"
)

// formatVersion is the single supported stream version byte.
const formatVersion = 1

// Read drives the decoder over source, invoking cb once per decoded
// record. cb's error return aborts the stream immediately and is
// propagated to the caller (the callback's failure aborts the
// stream").
//
// Framing errors (bad version byte, unknown field flag bits, a negative
// length prefix, a short read, invalid Modified-UTF-8) are fatal and
// returned directly. Per-record classification and parse failures are
// never fatal: they're delivered as an Error event and the stream
// continues.
func Read(source io.Reader, cb func(Event) error) error {
	r := javaio.NewReader(source)

	version, err := r.ReadI8()
	if err != nil {
		return fmt.Errorf("nexus: reading version byte: %w", err)
	}
	if version != formatVersion {
		return fmt.Errorf("nexus: version byte: want %d, got %d", formatVersion, version)
	}

	if _, err := r.ReadI64BE(); err != nil {
		return fmt.Errorf("nexus: reading stream timestamp: %w", err)
	}

	for {
		fields, done, err := readFields(r)
		if err != nil {
			return fmt.Errorf("nexus: reading fields: %w", err)
		}
		if done {
			return nil
		}

		ev := classify(fields)
		if ev.isEmpty() {
			continue
		}
		if err := cb(ev); err != nil {
			return err
		}
	}
}

// readFields reads one record's field list, or reports clean stream
// termination when the source is at EOF before the field count.
func readFields(r *javaio.Reader) (fields []Field, done bool, err error) {
	atEOF, err := r.AtEOF()
	if err != nil {
		return nil, false, err
	}
	if atEOF {
		return nil, true, nil
	}

	count, err := r.ReadI32BE()
	if err != nil {
		return nil, false, fmt.Errorf("reading field count (first field): %w", err)
	}
	if count < 0 {
		return nil, false, fmt.Errorf("negative field count: %d", count)
	}

	fields = make([]Field, 0, count)
	for i := int32(0); i < count; i++ {
		f, err := readField(r)
		if err != nil {
			return nil, false, fmt.Errorf("reading field %d: %w", i, err)
		}
		fields = append(fields, f)
	}
	return fields, false, nil
}

// readField reads a single flags-prefixed (name, value) pair.
func readField(r *javaio.Reader) (Field, error) {
	flagsByte, err := r.ReadI8()
	if err != nil {
		return Field{}, err
	}
	flags := FieldFlag(uint8(flagsByte))
	if flags&^knownFlagBits != 0 {
		return Field{}, fmt.Errorf("decoding field flags: unknown bits in 0x%02x", uint8(flags))
	}

	nameLen, err := r.ReadU16BE()
	if err != nil {
		return Field{}, err
	}
	if nameLen == 0 {
		return Field{}, fmt.Errorf("zero-length field name")
	}
	name, err := r.ReadUTF8(int(nameLen))
	if err != nil {
		return Field{}, err
	}

	valueLen, err := r.ReadI32BE()
	if err != nil {
		return Field{}, err
	}
	if valueLen < 0 {
		return Field{}, fmt.Errorf("negative value length: %d", valueLen)
	}
	value, err := r.ReadUTF8(int(valueLen))
	if err != nil {
		return Field{}, err
	}

	return Field{Name: name, Value: value}, nil
}

// classify implements the classification order over one record's
// raw fields: delete, known metadata skips, unrecognised doc type, or a
// parsed Doc/Error.
func classify(fields []Field) Event {
	if v, ok := fieldValue(fields, "del"); ok {
		id, err := ParseUniq(v)
		if err != nil {
			return Event{Error: &ErrorEvent{Cause: fmt.Errorf("reading 'del': %w", err), Raw: fields}}
		}
		return Event{Delete: &id}
	}

	if len(fields) == 2 {
		has := func(name string) bool { _, ok := fieldValue(fields, name); return ok }
		switch {
		case has("DESCRIPTOR") && has("IDXINFO"):
			return skipEvent()
		case has("rootGroups") && has("rootGroupsList"):
			return skipEvent()
		case has("allGroups") && has("allGroupsList"):
			return skipEvent()
		}
	}

	_, hasU := fieldValue(fields, "u")
	_, hasI := fieldValue(fields, "i")
	_, hasM := fieldValue(fields, "m")
	if !(hasU && hasI && hasM) {
		return Event{Error: &ErrorEvent{Cause: fmt.Errorf("unrecognised doc type"), Raw: fields}}
	}

	doc, err := readDoc(fields)
	if err != nil {
		return Event{Error: &ErrorEvent{Cause: err, Raw: fields}}
	}
	return Event{Doc: doc}
}

// skipEvent represents a header/summary record that carries no useful
// information; Read's loop checks Event.isEmpty and never invokes cb for it.
func skipEvent() Event { return Event{} }

// fieldValue returns the value of the first field with the given name.
func fieldValue(fields []Field, name string) (string, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// readDoc walks a record's fields and assembles a Doc, applying the
// per-field parse rules. A malformed checksum ("1") is
// downgraded to an absent checksum rather than failing the whole record;
// every other per-field parse failure fails the record.
func readDoc(fields []Field) (*Doc, error) {
	var (
		id          *UniqID
		info        *FullInfo
		modified    *uint64
		name        *string
		description *string
		checksum    *Checksum
	)

	for _, f := range fields {
		switch f.Name {
		case "u":
			parsed, err := ParseUniq(f.Value)
			if err != nil {
				return nil, fmt.Errorf("reading 'u': %q: %w", f.Value, err)
			}
			id = &parsed
		case "i":
			parsed, err := ParseInfo(f.Value)
			if err != nil {
				return nil, fmt.Errorf("reading 'i': %q: %w", f.Value, err)
			}
			info = &parsed
		case "m":
			parsed, err := strconv.ParseUint(f.Value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("reading 'm': %q: %w", f.Value, err)
			}
			modified = &parsed
		case "n":
			v := f.Value
			name = &v
		case "d":
			v := f.Value
			description = &v
		case "1":
			if parsed, err := ParseChecksum(f.Value); err == nil {
				checksum = &parsed
			}
			// malformed checksum silently degrades to absent
		default:
			// unrecognised field names are ignored
		}
	}

	if id == nil {
		return nil, fmt.Errorf("no 'u'")
	}
	if info == nil {
		return nil, fmt.Errorf("no 'i'")
	}
	if modified == nil {
		return nil, fmt.Errorf("no modified")
	}

	return &Doc{
		ID:          *id,
		ObjectInfo:  *info,
		Modified:    *modified,
		Name:        name,
		Description: description,
		Checksum:    checksum,
	}, nil
}
