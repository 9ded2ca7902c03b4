package id

import (
	"crypto/md5"
	"io"
	"strconv"
	"strings"

	"github.com/gofrs/uuid"
)

// Separator between key segments
const Separator = "-"

// Composite joins key segments with the separator
func Composite(parts ...string) string {
	return strings.Join(parts, Separator)
}

// EventScoped deterministic id for a record derived from one source
// event. Replaying the same event reproduces the same id.
func EventScoped(txHash string, logIndex int, kind int) string {
	return Composite(txHash, strconv.Itoa(logIndex), strconv.Itoa(kind))
}

// Bucketed suffixes an id with a time bucket ordinal
func Bucketed(base string, bucket int64) string {
	return Composite(base, strconv.FormatInt(bucket, 10))
}

// Versioned suffixes a base key with an instance ordinal
func Versioned(base string, instance int64) string {
	return Composite(base, strconv.FormatInt(instance, 10))
}

// TraceIDFrom deterministic traceID from text
func TraceIDFrom(text string) string {
	h := md5.New()
	io.WriteString(h, text)
	sum := h.Sum(nil)
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	return uuid.FromBytesOrNil(sum).String()
}
