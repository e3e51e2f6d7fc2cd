package tzif

import (
	"bytes"
	"fmt"
	"io"
)

// File represents a TZif file.
//
// Version 1 files carry only the V1 block.  Version 2+ files carry both
// blocks and a footer; readers are expected to prefer the V2 block.
// Headers are not retained: Encode derives them from the block contents.
type File struct {
	Version Version

	V1 DataBlock
	V2 DataBlock

	Footer Footer
}

// Block returns the data block a reader should use: the V2 block for
// version 2+ files and the V1 block otherwise.
func (f File) Block() DataBlock {
	if f.Version > V1 {
		return f.V2
	}
	return f.V1
}

// Encode writes the file to w.
// If the version is V1, the V2 block and footer are not written.
func (f File) Encode(w io.Writer) error {
	if err := f.V1.Header(f.Version).Write(w); err != nil {
		return fmt.Errorf("write v1 header: %w", err)
	}
	if err := f.V1.WriteV1(w); err != nil {
		return fmt.Errorf("write v1 data: %w", err)
	}
	if f.Version > V1 {
		if err := f.V2.Header(f.Version).Write(w); err != nil {
			return fmt.Errorf("write v2 header: %w", err)
		}
		if err := f.V2.WriteV2(w); err != nil {
			return fmt.Errorf("write v2 data: %w", err)
		}
		if err := f.Footer.Write(w); err != nil {
			return fmt.Errorf("write footer: %w", err)
		}
	}
	return nil
}

// AppendTo encodes the file and appends the result to b.
func (f File) AppendTo(b []byte) ([]byte, error) {
	buf := bytes.NewBuffer(b)
	if err := f.Encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a TZif File from the given reader.
// If the version is V1, the V2 block and footer are left zero.
// All errors wrap ErrMalformed.
func Decode(r io.Reader) (File, error) {
	f, err := decode(r)
	if err != nil {
		return f, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return f, nil
}

// DecodeBytes is a convenience wrapper around Decode for in-memory data.
func DecodeBytes(b []byte) (File, error) {
	return Decode(bytes.NewReader(b))
}

func decode(r io.Reader) (File, error) {
	var (
		f   File
		err error
	)
	h1, err := ReadHeader(r)
	if err != nil {
		return f, fmt.Errorf("read v1 header: %w", err)
	}
	f.Version = h1.Version

	f.V1, err = ReadV1DataBlock(r, h1)
	if err != nil {
		return f, fmt.Errorf("read v1 data block: %w", err)
	}

	if f.Version > V1 {
		h2, err := ReadHeader(r)
		if err != nil {
			return f, fmt.Errorf("read v2 header: %w", err)
		}
		if h2.Version != f.Version {
			return f, fmt.Errorf("inconsistent version: v1 header = %v, v2 header = %v", f.Version, h2.Version)
		}
		f.V2, err = ReadV2DataBlock(r, h2)
		if err != nil {
			return f, fmt.Errorf("read v2 data block: %w", err)
		}
		f.Footer, err = ReadFooter(r)
		if err != nil {
			return f, fmt.Errorf("read footer: %w", err)
		}
	}

	return f, nil
}
