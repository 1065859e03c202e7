package stats

import "google.golang.org/protobuf/encoding/protowire"

// Field numbers are fixed; changing one breaks decoding of journaled
// samples.
const (
	fieldRunID      = 1
	fieldSeq        = 2
	fieldUnixNanos  = 3
	fieldGeneration = 4
	fieldPending    = 5
	fieldLag        = 6
	fieldReaders    = 7
	fieldRetired    = 8
	fieldReclaimed  = 9
)

// Marshal encodes s in protobuf wire format.
func Marshal(s *Sample) []byte {
	b := make([]byte, 0, 64)
	b = protowire.AppendTag(b, fieldRunID, protowire.BytesType)
	b = protowire.AppendString(b, s.RunID)
	b = appendUint(b, fieldSeq, s.Seq)
	b = appendUint(b, fieldUnixNanos, uint64(s.UnixNanos))
	b = appendUint(b, fieldGeneration, s.Generation)
	b = appendUint(b, fieldPending, s.Pending)
	b = appendUint(b, fieldLag, s.Lag)
	b = appendUint(b, fieldReaders, s.Readers)
	b = appendUint(b, fieldRetired, s.Retired)
	b = appendUint(b, fieldReclaimed, s.Reclaimed)
	return b
}

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// Unmarshal decodes buf into s. Unknown fields are skipped.
func Unmarshal(buf []byte, s *Sample) error {
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return protowire.ParseError(n)
		}
		buf = buf[n:]

		if num == fieldRunID && typ == protowire.BytesType {
			v, m := protowire.ConsumeString(buf)
			if m < 0 {
				return protowire.ParseError(m)
			}
			s.RunID = v
			buf = buf[m:]
			continue
		}
		if typ != protowire.VarintType {
			m := protowire.ConsumeFieldValue(num, typ, buf)
			if m < 0 {
				return protowire.ParseError(m)
			}
			buf = buf[m:]
			continue
		}

		v, m := protowire.ConsumeVarint(buf)
		if m < 0 {
			return protowire.ParseError(m)
		}
		buf = buf[m:]
		switch num {
		case fieldSeq:
			s.Seq = v
		case fieldUnixNanos:
			s.UnixNanos = int64(v)
		case fieldGeneration:
			s.Generation = v
		case fieldPending:
			s.Pending = v
		case fieldLag:
			s.Lag = v
		case fieldReaders:
			s.Readers = v
		case fieldRetired:
			s.Retired = v
		case fieldReclaimed:
			s.Reclaimed = v
		}
	}
	return nil
}
