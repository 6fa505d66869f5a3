package objects

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KostasZigo/clony/internal/constants"
	"github.com/KostasZigo/clony/utils"
	"github.com/klauspost/compress/zlib"
)

// Compress deflates framed object bytes into the zlib stream stored on disk.
func Compress(framed []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := zlib.NewWriter(&buffer)

	if _, err := writer.Write(framed); err != nil {
		writer.Close()
		return nil, err
	}

	// Close flushes buffered data and writes the checksum trailer
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// Decompress inflates stored bytes back into framed object bytes.
// Any zlib failure is reported as ErrCorruptObject.
func Decompress(stored []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(stored))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create zlib reader: %v", ErrCorruptObject, err)
	}
	defer reader.Close()

	framed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read decompressed data: %v", ErrCorruptObject, err)
	}

	return framed, nil
}

// ParseFrame splits framed bytes into object type and payload.
// The header must be "<type> <size>" followed by a null byte, and size
// must match the payload length exactly.
func ParseFrame(framed []byte) (utils.ObjectType, []byte, error) {
	nullByteIndex := bytes.IndexByte(framed, constants.NullByte)
	if nullByteIndex == -1 {
		return "", nil, fmt.Errorf("%w: no null byte found", ErrCorruptObject)
	}

	header := string(framed[:nullByteIndex])
	content := framed[nullByteIndex+1:]

	typeName, sizeField, found := strings.Cut(header, " ")
	if !found {
		return "", nil, fmt.Errorf("%w: invalid header %q", ErrCorruptObject, header)
	}

	objectType := utils.ObjectType(typeName)
	if !objectType.IsValid() {
		return "", nil, fmt.Errorf("%w: unknown object type %q", ErrCorruptObject, typeName)
	}

	size, err := strconv.Atoi(sizeField)
	if err != nil || size < 0 {
		return "", nil, fmt.Errorf("%w: invalid size %q", ErrCorruptObject, sizeField)
	}
	if size != len(content) {
		return "", nil, fmt.Errorf("%w: size mismatch (header=%d, actual=%d)", ErrCorruptObject, size, len(content))
	}

	return objectType, content, nil
}
