package log

import (
	"sync"

	"gopkg.in/Sirupsen/logrus.v0"
)

// EntryZ is a log entry being built. Fields are accumulated in a fixed size
// buffer and only converted to strings when the entry is emitted.
type EntryZ struct {
	lvl Level
	msg string
	mod Module

	zfbuf [16]ZField
	zfidx int
}

var entryPool = sync.Pool{
	New: func() any { return new(EntryZ) },
}

func NewEntryZ() *EntryZ {
	z := entryPool.Get().(*EntryZ)
	z.zfidx = 0
	return z
}

// End emits the entry and recycles it. It must be the last call of a chain.
func (z *EntryZ) End() {
	if z == nil {
		return
	}

	for _, c := range contexts {
		c.AddLogContext(z)
	}

	fields := make(logrus.Fields, z.zfidx+1)
	fields["_mod"] = modNames[z.mod]
	for i := range z.zfbuf[:z.zfidx] {
		fields[z.zfbuf[i].Key] = z.zfbuf[i].Value()
	}

	entry := logrus.StandardLogger().WithFields(fields)
	lvl, msg := z.lvl, z.msg

	clear(z.zfbuf[:z.zfidx])
	z.zfidx = 0
	entryPool.Put(z)

	switch lvl {
	case DebugLevel:
		entry.Debug(msg)
	case InfoLevel:
		entry.Info(msg)
	case WarnLevel:
		entry.Warn(msg)
	case ErrorLevel:
		entry.Error(msg)
	case FatalLevel:
		entry.Fatal(msg)
	case PanicLevel:
		entry.Panic(msg)
	}
}

// A Context adds fields to every log entry, for example the current
// emulated cycle.
type Context interface {
	AddLogContext(z *EntryZ)
}

var contexts []Context

// AddContext registers c. Contexts are not meant to be added or removed while
// other goroutines are logging.
func AddContext(c Context) {
	contexts = append(contexts, c)
}

func RemoveContext(c Context) {
	for i := range contexts {
		if contexts[i] == c {
			contexts = append(contexts[:i], contexts[i+1:]...)
			return
		}
	}
}
