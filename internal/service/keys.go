package service

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// keyBuilder derives bucket keys from caller-supplied file names
type keyBuilder struct {
	prefix string
	now    func() time.Time
	newID  func() string
}

func newKeyBuilder(prefix string) *keyBuilder {
	return &keyBuilder{
		prefix: prefix,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// timestamped returns <prefix><unix-millis>_<name>.
// Two uploads of the same name within one millisecond share a key.
func (b *keyBuilder) timestamped(name string) string {
	return fmt.Sprintf("%s%d_%s", b.prefix, b.now().UnixMilli(), baseName(name))
}

// unique returns <prefix><uuid>-<name>, never reusing a caller name verbatim
func (b *keyBuilder) unique(name string) string {
	return fmt.Sprintf("%s%s-%s", b.prefix, b.newID(), baseName(name))
}

// baseName strips any directory components a client sent with the file name
func baseName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == ".." || name == "/" || name == "" {
		return "file"
	}
	return name
}
