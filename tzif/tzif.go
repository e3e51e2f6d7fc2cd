// Package tzif implements the TZif file format according to RFC8536.
// https://datatracker.ietf.org/doc/html/rfc8536
//
// Decoded data is held in 64-bit form regardless of the block that
// carried it: version 1 time values are sign-extended when read and
// narrowed with a range check when written.
package tzif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// NOTE: All multi-octet integer values MUST be stored in network octet
// order format (high-order octet first, otherwise known as big-endian),
// with all bits significant.  Signed integer values MUST be represented
// using two's complement.
var order = binary.BigEndian

// ErrMalformed is wrapped by every error returned from Decode and
// Validate, so callers can classify bad input with errors.Is.
var ErrMalformed = errors.New("malformed TZif data")

// Version represents the version of a TZif file.
// The version is an octet identifying the version of the file's format.
// In V1, time values are 32bit (four-octets) and in V2 upwards time values
// are 64bit (eight-octets). The first data block of a file always uses the
// four-octet form regardless of the file's version.
type Version byte

func (v Version) String() string {
	switch v {
	case V1:
		return "V1 (0x00)"
	case V2:
		return "V2 (0x32)"
	case V3:
		return "V3 (0x33)"
	case V4:
		return "V4 (0x34)"
	default:
		return fmt.Sprintf("<undefined version (%d)>", v)
	}
}

const (
	// V1 represents a version 1 TZif file.
	//
	// NUL (0x00)  Version 1 - The file contains only the version 1
	// header and data block.  Version 1 files MUST NOT contain a
	// version 2+ header, data block, or footer.
	V1 Version = 0x00
	// V2 represents a version 2 TZif file.
	//
	// '2' (0x32)  Version 2 - The file MUST contain the version 1 header
	// and data block, a version 2+ header and data block, and a
	// footer.  The TZ string in the footer (Section 3.3), if
	// nonempty, MUST strictly adhere to the requirements for the TZ
	// environment variable as defined in Section 8.3 of the "Base
	// Definitions" volume of [POSIX] and MUST encode the POSIX
	// portable character set as ASCII.
	V2 Version = 0x32
	// V3 represents a version 3 TZif file.
	//
	// '3' (0x33)  Version 3 - The file MUST contain the version 1 header
	// and data block, a version 2+ header and data block, and a
	// footer.  The TZ string in the footer (Section 3.3), if
	// nonempty, MUST conform to POSIX requirements with ASCII
	// encoding, except that it MAY use the TZ string extensions
	// described in Section 3.3.1 of RFC8536.
	V3 Version = 0x33 // '3'
	// V4 represents a version 4 TZif file.
	// It is not specified in RFC8536 as of Feb 2019, but is specified in the
	// tzfile(5) man page.
	//
	// The man page says:
	//
	//  For version-4-format TZif files, the first leap second record can
	//  have a correction that is neither +1 nor -1, to represent
	//  truncation of the TZif file at the start.  Also, if two or more
	//  leap second transitions are present and the last entry's
	//  correction equals the previous one, the last entry denotes the
	//  expiration of the leap second table instead of a leap second;
	//  timestamps after this expiration are unreliable in that future
	//  releases will likely add leap second entries after the
	//  expiration, and the added leap seconds will change how post-
	//  expiration timestamps are treated.
	V4 Version = 0x34 // '4'
)

func (v Version) defined() bool {
	switch v {
	case V1, V2, V3, V4:
		return true
	default:
		return false
	}
}

// Magic is the four-octet ASCII sequence "TZif" (0x54 0x5A 0x69 0x66),
// which identifies the file as utilizing the Time Zone Information Format.
var Magic = [4]byte{'T', 'Z', 'i', 'f'}

// Header is the header of a TZif file.
//
// A TZif header is structured as follows (the lengths of multi-octet
// fields are shown in parentheses):
//
//	+---------------+---+
//	|  magic    (4) |ver|
//	+---------------+---+---------------------------------------+
//	|           [unused - reserved for future use] (15)         |
//	+---------------+---------------+---------------+-----------+
//	|  isutcnt  (4) |  isstdcnt (4) |  leapcnt  (4) |
//	+---------------+---------------+---------------+
//	|  timecnt  (4) |  typecnt  (4) |  charcnt  (4) |
//	+---------------+---------------+---------------+
type Header struct {
	// Version is an octet identifying the version of the file's format.
	Version Version
	// Reserved for future use.
	Reserved [15]byte

	// Isutcnt is a four-octet unsigned integer specifying the number of UT/
	// local indicators contained in the data block -- MUST either be
	// zero or equal to "typecnt".
	Isutcnt uint32

	// Isstdcnt is a four-octet unsigned integer specifying the number of
	// standard/wall indicators contained in the data block -- MUST
	// either be zero or equal to "typecnt".
	Isstdcnt uint32

	// Leapcnt is a four-octet unsigned integer specifying the number of
	// leap-second records contained in the data block.
	Leapcnt uint32

	// Timecnt is a four-octet unsigned integer specifying the number of
	// transition times contained in the data block.
	Timecnt uint32

	// Typecnt is a four-octet unsigned integer specifying the number of
	// local time type records contained in the data block -- MUST NOT be
	// zero.  (Although local time type records convey no useful
	// information in files that have nonempty TZ strings but no
	// transitions, at least one such record is nevertheless required
	// because many TZif readers reject files that have zero time types.)
	Typecnt uint32

	// Charcnt is a four-octet unsigned integer specifying the total number
	// of octets used by the set of time zone designations contained in
	// the data block - MUST NOT be zero.  The count includes the
	// trailing NUL (0x00) octet at the end of the last time zone
	// designation.
	Charcnt uint32
}

// Write writes the Header to w.
func (h Header) Write(w io.Writer) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	return binary.Write(w, order, h)
}

func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	magic := make([]byte, len(Magic))
	if err := binary.Read(r, order, &magic); err != nil {
		return h, fmt.Errorf("reading magic: %w", err)
	}
	if !bytes.Equal(magic, Magic[:]) {
		return h, fmt.Errorf("invalid magic: %v", magic)
	}
	err := binary.Read(r, order, &h)
	return h, err
}

// DataBlock is the data block of a TZif file, with time values widened to
// 64 bits.  Version 1 blocks and version 2+ blocks share this
// representation; only the on-disk width of time values differs.  A data
// block is structured as follows with TIME_SIZE being 4 in version 1
// blocks and 8 in version 2+ blocks:
//
//	+---------------------------------------------------------+
//	|  transition times          (timecnt x TIME_SIZE)        |
//	+---------------------------------------------------------+
//	|  transition types          (timecnt)                    |
//	+---------------------------------------------------------+
//	|  local time type records   (typecnt x 6)                |
//	+---------------------------------------------------------+
//	|  time zone designations    (charcnt)                    |
//	+---------------------------------------------------------+
//	|  leap-second records       (leapcnt x (TIME_SIZE + 4))  |
//	+---------------------------------------------------------+
//	|  standard/wall indicators  (isstdcnt)                   |
//	+---------------------------------------------------------+
//	|  UT/local indicators       (isutcnt)                    |
//	+---------------------------------------------------------+
type DataBlock struct {
	// TransitionTimes is a series of UNIX leap-time values sorted in
	// strictly ascending order.  Each value is used as a transition time
	// at which the rules for computing local time may change.  Each time
	// value SHOULD be at least -2**59.  (-2**59 is the greatest negated
	// power of 2 that predates the Big Bang, and avoiding earlier
	// timestamps works around known TZif reader bugs relating to
	// outlandishly negative timestamps.)
	TransitionTimes []int64

	// TransitionTypes is a series of one-octet unsigned integers specifying
	// the type of local time of the corresponding transition time.
	// These values serve as zero-based indices into the array of local
	// time type records.  Each type index MUST be in the range
	// [0, "typecnt" - 1].
	TransitionTypes []uint8

	// LocalTimeTypes is a series of six-octet records specifying a
	// local time type.
	LocalTimeTypes []LocalTimeType

	// Designations is a series of octets constituting an array of
	// NUL-terminated (0x00) time zone designation strings.  Note that two
	// designations MAY overlap if one is a suffix of the other.  The
	// character encoding of time zone designation strings is not
	// specified; however, see Section 4 of RFC8536.
	Designations []byte

	// LeapSecondRecords is a series of records specifying the corrections
	// that need to be applied to UTC in order to determine TAI.  The
	// records are sorted by the occurrence time in strictly ascending
	// order.
	LeapSecondRecords []LeapSecondRecord

	// StandardWallIndicators is a series of one-octet values indicating
	// whether the transition times associated with local time types were
	// specified as standard time or wall-clock time.  A value of true
	// indicates standard time and MUST be set if the corresponding
	// UT/local indicator is set.  If there are no standard/wall
	// indicators, all transition times associated with local time types
	// are assumed to be specified as wall time.
	StandardWallIndicators []bool

	// UTLocalIndicators is a series of one-octet values indicating whether
	// the transition times associated with local time types were
	// specified as UT or local time.  If a value is true, the
	// corresponding standard/wall indicator MUST also be true.  If there
	// are no UT/local indicators, all transition times associated with
	// local time types are assumed to be specified as local time.
	UTLocalIndicators []bool
}

// Header derives the block's header for format version v.  The counts are
// taken from the slice lengths.
func (b DataBlock) Header(v Version) Header {
	return Header{
		Version:  v,
		Isutcnt:  uint32(len(b.UTLocalIndicators)),
		Isstdcnt: uint32(len(b.StandardWallIndicators)),
		Leapcnt:  uint32(len(b.LeapSecondRecords)),
		Timecnt:  uint32(len(b.TransitionTimes)),
		Typecnt:  uint32(len(b.LocalTimeTypes)),
		Charcnt:  uint32(len(b.Designations)),
	}
}

// Designation returns the NUL-terminated designation string starting at
// index idx in the block's designation octets, or "" if idx is out of
// range.
func (b DataBlock) Designation(idx uint8) string {
	i := int(idx)
	if i >= len(b.Designations) {
		return ""
	}
	end := bytes.IndexByte(b.Designations[i:], 0)
	if end < 0 {
		return string(b.Designations[i:])
	}
	return string(b.Designations[i : i+end])
}

// WriteV1 writes the block with four-octet time values.  Time values
// outside the 32-bit range are an error.
func (b DataBlock) WriteV1(w io.Writer) error {
	return b.write(w, false)
}

// WriteV2 writes the block with eight-octet time values.
func (b DataBlock) WriteV2(w io.Writer) error {
	return b.write(w, true)
}

func (b DataBlock) write(w io.Writer, wide bool) error {
	for _, t := range b.TransitionTimes {
		if err := writeTime(w, t, wide); err != nil {
			return fmt.Errorf("writing transition times: %w", err)
		}
	}
	if err := binary.Write(w, order, b.TransitionTypes); err != nil {
		return fmt.Errorf("writing transition types: %w", err)
	}
	for _, r := range b.LocalTimeTypes {
		if err := r.Write(w); err != nil {
			return fmt.Errorf("writing local time type record: %w", err)
		}
	}
	if _, err := w.Write(b.Designations); err != nil {
		return fmt.Errorf("writing time zone designations: %w", err)
	}
	for _, r := range b.LeapSecondRecords {
		if err := writeTime(w, r.Occur, wide); err != nil {
			return fmt.Errorf("writing leap second record: %w", err)
		}
		if err := binary.Write(w, order, r.Corr); err != nil {
			return fmt.Errorf("writing leap second record: %w", err)
		}
	}
	for _, ind := range b.StandardWallIndicators {
		if err := binary.Write(w, order, ind); err != nil {
			return fmt.Errorf("writing standard/wall indicator: %w", err)
		}
	}
	for _, ind := range b.UTLocalIndicators {
		if err := binary.Write(w, order, ind); err != nil {
			return fmt.Errorf("writing UT/local indicator: %w", err)
		}
	}
	return nil
}

func writeTime(w io.Writer, t int64, wide bool) error {
	if wide {
		return binary.Write(w, order, t)
	}
	if t < math.MinInt32 || t > math.MaxInt32 {
		return fmt.Errorf("time value %d out of range for a version 1 block", t)
	}
	return binary.Write(w, order, int32(t))
}

// ReadV1DataBlock reads a data block whose time values are four octets
// wide, sign-extending them to 64 bits.
func ReadV1DataBlock(r io.Reader, h Header) (DataBlock, error) {
	return readDataBlock(r, h, false)
}

// ReadV2DataBlock reads a data block whose time values are eight octets
// wide.
func ReadV2DataBlock(r io.Reader, h Header) (DataBlock, error) {
	if h.Version < V2 {
		return DataBlock{}, fmt.Errorf("invalid header version: %v", h.Version)
	}
	return readDataBlock(r, h, true)
}

func readDataBlock(r io.Reader, h Header, wide bool) (DataBlock, error) {
	var b DataBlock
	if h.Timecnt > 0 {
		b.TransitionTimes = make([]int64, h.Timecnt)
		for i := range b.TransitionTimes {
			t, err := readTime(r, wide)
			if err != nil {
				return b, fmt.Errorf("reading transition times: %w", err)
			}
			b.TransitionTimes[i] = t
		}
	}
	if h.Timecnt > 0 {
		b.TransitionTypes = make([]uint8, h.Timecnt)
		if err := binary.Read(r, order, &b.TransitionTypes); err != nil {
			return b, fmt.Errorf("reading transition types: %w", err)
		}
	}
	if h.Typecnt > 0 {
		b.LocalTimeTypes = make([]LocalTimeType, h.Typecnt)
		for i := range b.LocalTimeTypes {
			if err := binary.Read(r, order, &b.LocalTimeTypes[i]); err != nil {
				return b, fmt.Errorf("reading local time type record: %w", err)
			}
		}
	}
	if h.Charcnt > 0 {
		b.Designations = make([]byte, h.Charcnt)
		if _, err := io.ReadFull(r, b.Designations); err != nil {
			return b, fmt.Errorf("reading time zone designations: %w", err)
		}
	}
	if h.Leapcnt > 0 {
		b.LeapSecondRecords = make([]LeapSecondRecord, h.Leapcnt)
		for i := range b.LeapSecondRecords {
			occur, err := readTime(r, wide)
			if err != nil {
				return b, fmt.Errorf("reading leap second record: %w", err)
			}
			var corr int32
			if err := binary.Read(r, order, &corr); err != nil {
				return b, fmt.Errorf("reading leap second record: %w", err)
			}
			b.LeapSecondRecords[i] = LeapSecondRecord{Occur: occur, Corr: corr}
		}
	}
	if h.Isstdcnt > 0 {
		b.StandardWallIndicators = make([]bool, h.Isstdcnt)
		for i := range b.StandardWallIndicators {
			if err := binary.Read(r, order, &b.StandardWallIndicators[i]); err != nil {
				return b, fmt.Errorf("reading standard/wall indicator: %w", err)
			}
		}
	}
	if h.Isutcnt > 0 {
		b.UTLocalIndicators = make([]bool, h.Isutcnt)
		for i := range b.UTLocalIndicators {
			if err := binary.Read(r, order, &b.UTLocalIndicators[i]); err != nil {
				return b, fmt.Errorf("reading UT/local indicator: %w", err)
			}
		}
	}
	return b, nil
}

func readTime(r io.Reader, wide bool) (int64, error) {
	if wide {
		var t int64
		err := binary.Read(r, order, &t)
		return t, err
	}
	var t int32
	err := binary.Read(r, order, &t)
	return int64(t), err
}

// LeapSecondRecord specifies a correction that needs to be applied to UTC
// in order to determine TAI.  On disk each record has one of the following
// structures depending on the block (the lengths of multi-octet fields are
// shown in parentheses):
//
//	+---------------+---------------+
//	|  occur (4)    |  corr (4)     |
//	+---------------+---------------+
//
//	+---------------+---------------+---------------+
//	|  occur (8)                    |  corr (4)     |
//	+---------------+---------------+---------------+
type LeapSecondRecord struct {
	// Occur is a UNIX leap time value specifying the time at which a
	// leap-second correction occurs.  The first value, if present, MUST
	// be nonnegative, and each later value MUST be at least 2419199
	// greater than the previous value.  (This is 28 days' worth of
	// seconds, minus a potential negative leap second.)
	Occur int64

	// Corr is a four-octet signed integer specifying the value of
	// LEAPCORR on or after the occurrence.  The correction value in
	// the first leap-second record, if present, MUST be either one
	// (1) or minus one (-1).  The correction values in adjacent leap-
	// second records MUST differ by exactly one (1).  The value of
	// LEAPCORR is zero for timestamps that occur before the
	// occurrence time in the first leap-second record (or for all
	// timestamps if there are no leap-second records).
	Corr int32
}

// LocalTimeType represents a local time type record.
// Each record has the following format (the lengths of multi-octet fields
// are shown in parentheses):
//
//	+---------------+---+---+
//	|  utoff (4)    |dst|idx|
//	+---------------+---+---+
type LocalTimeType struct {
	// Utoff is a four-octet signed integer specifying the number of
	// seconds to be added to UT in order to determine local time.
	// The value MUST NOT be -2**31 and SHOULD be in the range
	// [-89999, 93599] (i.e., its value SHOULD be more than -25 hours
	// and less than 26 hours).  Avoiding -2**31 allows 32-bit clients
	// to negate the value without overflow.  Restricting it to
	// [-89999, 93599] allows easy support by implementations that
	// already support the POSIX-required range [-24:59:59, 25:59:59].
	Utoff int32

	// Dst is a one-octet value indicating whether local time should
	// be considered Daylight Saving Time (DST).  A value of true
	// indicates that this type of time is DST.  A value of false
	// indicates that this time type is standard time.
	Dst bool

	// Idx is a one-octet unsigned integer specifying a zero-based
	// index into the series of time zone designation octets, thereby
	// selecting a particular designation string.  Each index MUST be
	// in the range [0, "charcnt" - 1]; it designates the
	// NUL-terminated string of octets starting at position "idx" in
	// the time zone designations.  (This string MAY be empty.)  A NUL
	// octet MUST exist in the time zone designations at or after
	// position "idx".
	Idx uint8
}

func (r LocalTimeType) Write(w io.Writer) error {
	if err := binary.Write(w, order, r.Utoff); err != nil {
		return err
	}
	if err := binary.Write(w, order, r.Dst); err != nil {
		return err
	}
	return binary.Write(w, order, r.Idx)
}

// Footer represents the footer of a TZif file.
// The footer is structured as follows (the lengths of multi-octet
// fields are shown in parentheses):
//
//	+---+--------------------+---+
//	| NL|  TZ string (0...)  |NL |
//	+---+--------------------+---+
type Footer struct {
	// TZString contains a rule for computing local time changes after the last
	// transition time stored in the version 2+ data block.  The string
	// is either empty or uses the expanded format of the "TZ"
	// environment variable as defined in Section 8.3 of the "Base
	// Definitions" volume of [POSIX] with ASCII encoding, possibly
	// utilizing extensions described in Section 3.3.1 of RFC8536 in
	// version 3 files.  If the string is empty, the corresponding
	// information is not available.  If the string is nonempty and one or
	// more transitions appear in the version 2+ data, the string MUST be
	// consistent with the last version 2+ transition.  In other words,
	// evaluating the TZ string at the time of the last transition should
	// yield the same time type as was specified in the last transition.
	// The string MUST NOT contain NUL octets or be NUL-terminated, and
	// it SHOULD NOT begin with the ':' (colon) character.
	TZString []byte
}

var asciiNewLine = byte(0x0A)

func (f Footer) Write(w io.Writer) error {
	if _, err := w.Write([]byte{asciiNewLine}); err != nil {
		return err
	}
	if _, err := w.Write(f.TZString); err != nil {
		return err
	}
	_, err := w.Write([]byte{asciiNewLine})
	return err
}

func ReadFooter(r io.Reader) (Footer, error) {
	var f Footer
	buf := make([]byte, 1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return f, fmt.Errorf("reading newline: %w", err)
	}
	if buf[0] != asciiNewLine {
		return f, fmt.Errorf("expected newline: %v", buf[0])
	}
	var b []byte
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return f, fmt.Errorf("reading TZ string: %w", err)
		}
		if buf[0] == asciiNewLine {
			break
		}
		b = append(b, buf[0])
	}
	f.TZString = b
	return f, nil
}
