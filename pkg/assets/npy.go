package assets

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/augmedical/pkg/errors"
	"github.com/matzehuels/augmedical/pkg/tensor"
)

// npyMagic opens every NumPy array file.
const npyMagic = "\x93NUMPY"

// npyAlign is the boundary the header is padded to, counting the preamble.
const npyAlign = 64

var npyShape = regexp.MustCompile(`'shape':\s*\(([^)]*)\)`)

// EncodeNPY writes img as a NumPy .npy array of little-endian float64 with
// shape (H, W, C). Values are written as they are, without clamping, so it
// suits transforms whose output leaves [0, 1].
func EncodeNPY(w io.Writer, img *tensor.Image) error {
	if err := img.Validate(); err != nil {
		return err
	}
	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%d, %d, %d), }", img.H, img.W, img.C)
	// magic + version (2) + header length (2) + header + '\n'
	pad := npyAlign - (len(npyMagic)+4+len(header)+1)%npyAlign
	if pad == npyAlign {
		pad = 0
	}
	header += strings.Repeat(" ", pad) + "\n"

	bw := bufio.NewWriter(w)
	bw.WriteString(npyMagic)
	bw.Write([]byte{1, 0})
	binary.Write(bw, binary.LittleEndian, uint16(len(header)))
	bw.WriteString(header)
	if err := binary.Write(bw, binary.LittleEndian, img.Pix); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode npy")
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode npy")
	}
	return nil
}

// DecodeNPY reads a C-order little-endian float64 array of rank 2 or 3, as
// written by EncodeNPY. Rank 2 arrays decode to a single channel.
func DecodeNPY(r io.Reader) (*tensor.Image, error) {
	var pre [len(npyMagic) + 2]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read npy preamble")
	}
	if string(pre[:len(npyMagic)]) != npyMagic {
		return nil, errors.New(errors.ErrCodeInvalidInput, "not an npy file")
	}

	var size uint32
	switch major := pre[len(npyMagic)]; major {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read npy header length")
		}
		size = uint32(n)
	case 2, 3:
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read npy header length")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported npy version %d", major)
	}
	raw := make([]byte, size)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read npy header")
	}
	header := string(bytes.TrimSpace(raw))

	if !strings.Contains(header, "'descr': '<f8'") {
		return nil, errors.New(errors.ErrCodeInvalidInput, "npy dtype must be '<f8': %s", header)
	}
	if !strings.Contains(header, "'fortran_order': False") {
		return nil, errors.New(errors.ErrCodeInvalidInput, "npy arrays must be C-ordered")
	}
	dims, err := parseShape(header)
	if err != nil {
		return nil, err
	}
	if len(dims) == 2 {
		dims = append(dims, 1)
	}
	if len(dims) != 3 {
		return nil, errors.InvalidShape("npy array has rank %d, want 2 or 3", len(dims))
	}
	if dims[0] <= 0 || dims[1] <= 0 || dims[2] <= 0 {
		return nil, errors.InvalidShape("npy shape %v has an empty axis", dims)
	}

	pix := make([]float64, dims[0]*dims[1]*dims[2])
	if err := binary.Read(r, binary.LittleEndian, pix); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read npy data")
	}
	return tensor.FromSlice(dims[0], dims[1], dims[2], pix)
}

func parseShape(header string) ([]int, error) {
	m := npyShape.FindStringSubmatch(header)
	if m == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "npy header has no shape: %s", header)
	}
	var dims []int
	for _, f := range strings.Split(m[1], ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "npy shape %q", m[1])
		}
		dims = append(dims, n)
	}
	return dims, nil
}
